package tml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadResult is everything the source loader produces: the flattened
// directive stream (with include directives already expanded in place),
// the set of absorbed files, and any non-fatal warnings (§4.2, §7).
type LoadResult struct {
	Directives []*Directive
	Absorbed   []string
	Warnings   []error
	// Spans records every candidate directive span seen across every
	// absorbed file, keyed by file, for -c/--check-file diagnostics (§4.2,
	// §6). The root is keyed "" when loading raw text.
	Spans map[string][]rawSpan
}

// pathValid implements the PATH validator (§4.1): must end in .tml, must
// not begin with "../", must not contain "*", an interior "/../", or any
// whitespace other than a plain space.
func pathValid(path string) bool {
	if !strings.HasSuffix(path, ".tml") {
		return false
	}
	if strings.HasPrefix(path, "../") {
		return false
	}
	if strings.Contains(path, "*") {
		return false
	}
	if strings.Contains(path, "/../") {
		return false
	}
	for _, r := range path {
		if r == ' ' {
			continue
		}
		if r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			return false
		}
	}
	return true
}

// resolveIncludePath scans rootDir and its ancestors for relPath, returning
// the first match. This is intentionally anchored at the root model file's
// directory rather than the including file's directory — a surprising but
// specified behavior (§4.2, §9).
func resolveIncludePath(rootDir, relPath string) (string, bool) {
	dir := rootDir
	for {
		candidate := filepath.Join(dir, relPath)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load reads rootPath and resolves its include graph into a single
// directive stream (§4.2).
func Load(rootPath string) *LoadResult {
	res := &LoadResult{Spans: map[string][]rawSpan{}}
	rootDir := filepath.Dir(rootPath)
	absorbed := map[string]bool{}

	abs, err := filepath.Abs(rootPath)
	if err == nil {
		absorbed[abs] = true
	}

	var walk func(path string) []*Directive
	walk = func(path string) []*Directive {
		data, err := os.ReadFile(path)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Errorf("include: could not read %q: %w", path, err))
			return nil
		}
		return process(path, string(data))
	}

	var process func(label, text string) []*Directive
	process = func(label, text string) []*Directive {
		spans := splitDirectives(text)
		res.Spans[label] = spans
		var out []*Directive
		for _, sp := range spans {
			d, ok := ParseDirective(sp.Text, sp.Start, sp.End)
			if !ok {
				continue
			}
			if d.Kind != DirInclude {
				out = append(out, d)
				continue
			}

			if !pathValid(d.Path) {
				res.Warnings = append(res.Warnings, fmt.Errorf("include: rejected path %q (fails PATH validation)", d.Path))
				continue
			}

			resolved, found := resolveIncludePath(rootDir, d.Path)
			if !found {
				res.Warnings = append(res.Warnings, fmt.Errorf("include: could not locate %q", d.Path))
				continue
			}

			absPath, err := filepath.Abs(resolved)
			if err != nil {
				absPath = resolved
			}
			if absorbed[absPath] {
				res.Warnings = append(res.Warnings, fmt.Errorf("include: %q already absorbed, skipping", d.Path))
				continue
			}
			absorbed[absPath] = true
			res.Absorbed = append(res.Absorbed, resolved)
			out = append(out, walk(resolved)...)
		}
		return out
	}

	res.Directives = walk(rootPath)
	return res
}

// LoadRaw parses a model from an in-memory text buffer (stdin, tests) — no
// includes are resolved, matching the loader's STDIN behavior (§4.2).
func LoadRaw(label, text string) *LoadResult {
	res := &LoadResult{Spans: map[string][]rawSpan{}}
	spans := splitDirectives(text)
	res.Spans[label] = spans
	for _, sp := range spans {
		d, ok := ParseDirective(sp.Text, sp.Start, sp.End)
		if !ok {
			continue
		}
		if d.Kind == DirInclude {
			res.Warnings = append(res.Warnings, fmt.Errorf("include: not supported when reading from stdin"))
			continue
		}
		res.Directives = append(res.Directives, d)
	}
	return res
}
