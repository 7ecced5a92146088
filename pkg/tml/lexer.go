package tml

import (
	"fmt"
	"strings"
)

// token is either a bare word, punctuation, or a placeholder standing in for
// a quoted string literal extracted before tokenizing (§4.1: "quoted strings
// use \" with \"\" as the escape for a literal quote").
type token struct {
	text        string
	isQuoted    bool
	literal     string
	start, end  int
}

const placeholderMarker = '\x01'

// extractQuotes scans s for "..."-quoted literals (with "" as an escaped
// quote), replacing each with a single placeholder rune sequence so that
// keyword tokenizing never has to look inside quoted text. Returns the
// rewritten skeleton and the literal values in order of appearance.
func extractQuotes(s string) (skeleton string, literals []string) {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '"' {
			b.WriteByte(s[i])
			i++
			continue
		}
		// inside a quote
		i++
		var lit strings.Builder
		for i < len(s) {
			if s[i] == '"' {
				if i+1 < len(s) && s[i+1] == '"' {
					lit.WriteByte('"')
					i += 2
					continue
				}
				i++
				break
			}
			lit.WriteByte(s[i])
			i++
		}
		idx := len(literals)
		literals = append(literals, lit.String())
		fmt.Fprintf(&b, "%c%d%c", placeholderMarker, idx, placeholderMarker)
	}
	return b.String(), literals
}

// tokenize splits a quote-free skeleton into words, punctuation, and
// placeholder tokens.
func tokenize(skeleton string) []token {
	var toks []token
	i := 0
	n := len(skeleton)
	isWordByte := func(c byte) bool {
		return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}
	for i < n {
		c := skeleton[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == byte(placeholderMarker):
			j := i + 1
			for j < n && skeleton[j] != byte(placeholderMarker) {
				j++
			}
			toks = append(toks, token{text: skeleton[i : j+1], isQuoted: true, start: i, end: j + 1})
			i = j + 1
		case c == ',' || c == '.' || c == ';' || c == ':':
			toks = append(toks, token{text: string(c), start: i, end: i + 1})
			i++
		case isWordByte(c):
			j := i
			for j < n && isWordByte(skeleton[j]) {
				j++
			}
			toks = append(toks, token{text: skeleton[i:j], start: i, end: j})
			i = j
		default:
			i++
		}
	}
	return toks
}

// cursor walks a token slice with lookahead, used by the directive parsers.
type cursor struct {
	toks []token
	pos  int
	lits []string
}

func newCursor(toks []token, lits []string) *cursor {
	return &cursor{toks: toks, lits: lits}
}

func (c *cursor) eof() bool { return c.pos >= len(c.toks) }

func (c *cursor) peek() (token, bool) {
	if c.eof() {
		return token{}, false
	}
	return c.toks[c.pos], true
}

// word returns the lowercase text of the current token if it is a plain
// word, else "".
func (c *cursor) word() string {
	t, ok := c.peek()
	if !ok || t.isQuoted {
		return ""
	}
	return strings.ToLower(t.text)
}

func (c *cursor) acceptWord(words ...string) bool {
	w := c.word()
	for _, want := range words {
		if w == want {
			c.pos++
			return true
		}
	}
	return false
}

func (c *cursor) expectWord(words ...string) bool {
	return c.acceptWord(words...)
}

// quoted returns the literal value and consumes the token if the current
// token is a quoted placeholder.
func (c *cursor) quoted() (string, bool) {
	t, ok := c.peek()
	if !ok || !t.isQuoted {
		return "", false
	}
	idx := 0
	fmt.Sscanf(t.text, "\x01%d\x01", &idx)
	c.pos++
	if idx < 0 || idx >= len(c.lits) {
		return "", false
	}
	return c.lits[idx], true
}

// nameList parses a comma-separated list of quoted names.
func (c *cursor) nameList() ([]string, bool) {
	save := c.pos
	first, ok := c.quoted()
	if !ok {
		c.pos = save
		return nil, false
	}
	names := []string{first}
	for {
		save2 := c.pos
		t, ok := c.peek()
		if !ok || t.isQuoted || t.text != "," {
			break
		}
		c.pos++
		n, ok := c.quoted()
		if !ok {
			c.pos = save2
			break
		}
		names = append(names, n)
	}
	return names, true
}

func (c *cursor) clone() *cursor {
	return &cursor{toks: c.toks, pos: c.pos, lits: c.lits}
}

func (c *cursor) restore(other *cursor) {
	c.pos = other.pos
}

// remaining returns the number of unconsumed tokens. splitDirectives has
// already removed each directive's terminating period, so callers treat
// any nonzero count as trailing garbage.
func (c *cursor) remaining() int {
	return len(c.toks) - c.pos
}
