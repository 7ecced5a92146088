package tml

import "testing"

func TestExtractQuotesRoundTrip(t *testing.T) {
	skeleton, literals := extractQuotes(`"A" is a black box`)
	if len(literals) != 1 || literals[0] != "A" {
		t.Fatalf("literals = %v, want [A]", literals)
	}
	if skeleton == `"A" is a black box` {
		t.Fatal("skeleton should have the quoted literal replaced by a placeholder")
	}
}

func TestExtractQuotesHandlesEscapedQuote(t *testing.T) {
	_, literals := extractQuotes(`"say ""hi"" now"`)
	if len(literals) != 1 || literals[0] != `say "hi" now` {
		t.Fatalf("literals = %v, want [say \"hi\" now]", literals)
	}
}

func TestTokenizeWordsAndPunctuation(t *testing.T) {
	toks := tokenize("foo, bar-baz.qux")
	var words []string
	for _, tok := range toks {
		if !tok.isQuoted {
			words = append(words, tok.text)
		}
	}
	want := []string{"foo", ",", "bar-baz", ".", "qux"}
	if len(words) != len(want) {
		t.Fatalf("got %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("got %v, want %v", words, want)
		}
	}
}

func TestCursorNameList(t *testing.T) {
	skeleton, literals := extractQuotes(`"A", "B", "C" rest`)
	c := newCursor(tokenize(skeleton), literals)
	names, ok := c.nameList()
	if !ok {
		t.Fatal("nameList() returned false")
	}
	want := []string{"A", "B", "C"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
	if c.word() != "rest" {
		t.Fatalf("cursor should be positioned on %q, got %q", "rest", c.word())
	}
}

func TestCursorWordIsCaseInsensitive(t *testing.T) {
	skeleton, literals := extractQuotes("IS are")
	c := newCursor(tokenize(skeleton), literals)
	if !c.acceptWord("is") {
		t.Fatal("acceptWord(is) should match uppercase IS token")
	}
}
