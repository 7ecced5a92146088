package tml

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Result is the outcome of a single compilation: the finalized store, its
// active-subset view, every raw span seen (for -c mode), and an aggregated
// warning list. Compilation never fails outright — a malformed model still
// produces a best-effort Result (§7).
type Result struct {
	Store    *Store
	Active   *ActiveView
	Spans    map[string][]rawSpan
	Warnings *multierror.Error
}

// Compile runs the full pipeline — load, interpret, resolve, finalize — on
// rootPath (§2). Each stage's warnings are folded into a single
// multierror.Error so callers can choose to print, log, or ignore them.
func Compile(rootPath string) *Result {
	load := Load(rootPath)
	return compileFrom(load)
}

// CompileRaw runs the pipeline over an in-memory buffer (stdin), with no
// include resolution (§4.2).
func CompileRaw(label, text string) *Result {
	load := LoadRaw(label, text)
	return compileFrom(load)
}

func compileFrom(load *LoadResult) *Result {
	store := NewStore()

	var warn error
	for _, w := range load.Warnings {
		warn = multierror.Append(warn, w)
	}

	for _, w := range Interpret(store, load.Directives) {
		warn = multierror.Append(warn, w)
	}

	active := Finalize(store)

	var merr *multierror.Error
	if warn != nil {
		merr = warn.(*multierror.Error)
	}

	return &Result{
		Store:    store,
		Active:   active,
		Spans:    load.Spans,
		Warnings: merr,
	}
}

// Summary returns a short human-readable count of every component kind.
func (r *Result) Summary() string {
	s := r.Store
	return fmt.Sprintf(
		"%d clusters, %d elements, %d data, %d threats, %d measures, %d notes, %d interactions",
		s.Clusters.Len(), s.Elements.Len(), s.Data.Len(), s.Threats.Len(),
		s.Measures.Len(), s.Notes.Len(), len(s.Interactions),
	)
}
