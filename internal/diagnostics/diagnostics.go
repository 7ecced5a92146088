// Package diagnostics implements the -c/--check-file diagnostic mode
// (spec.md §4.2, §6): it highlights which byte ranges of a source file
// matched a directive and which didn't, formatted with columnize the way
// the teacher's cmd/hcltm/list.go formats tabular CLI output.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/ryanuber/columnize"
)

// Span is the minimal shape diagnostics needs from a loader span: whether
// the grammar matched it, and its source offsets.
type Span struct {
	Text       string
	Start, End int
	Matched    bool
}

// Report renders one line per span across every absorbed file, in the
// columnize format: FILE | STATUS | RANGE | TEXT.
func Report(spansByFile map[string][]Span) string {
	var lines []string
	lines = append(lines, "FILE | STATUS | RANGE | TEXT")
	for file, spans := range spansByFile {
		label := file
		if label == "" {
			label = "(stdin)"
		}
		for _, s := range spans {
			status := "matched"
			if !s.Matched {
				status = "UNMATCHED"
			}
			text := strings.TrimSpace(s.Text)
			if len(text) > 60 {
				text = text[:57] + "..."
			}
			lines = append(lines, fmt.Sprintf("%s | %s | %d-%d | %s", label, status, s.Start, s.End, text))
		}
	}
	return columnize.SimpleFormat(lines)
}
