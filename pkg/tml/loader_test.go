package tml

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathValidRejectsTraversalAndGlobs(t *testing.T) {
	cases := map[string]bool{
		"shared.tml":       true,
		"sub/shared.tml":   true,
		"../shared.tml":    false,
		"sub/../../x.tml":  false,
		"*.tml":            false,
		"shared.txt":       false,
		"shared\t.tml":     false,
		"has space.tml":    true,
	}
	for path, want := range cases {
		if got := pathValid(path); got != want {
			t.Errorf("pathValid(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestLoadResolvesIncludeRelativeToRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	shared := filepath.Join(dir, "shared.tml")
	if err := os.WriteFile(shared, []byte(`"S" is a white box service.`), 0o644); err != nil {
		t.Fatal(err)
	}

	root := filepath.Join(sub, "model.tml")
	rootSrc := "include shared.tml.\n\"U\" is a black box agent."
	if err := os.WriteFile(root, []byte(rootSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	res := Load(root)
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Absorbed) != 1 {
		t.Fatalf("Absorbed = %v, want 1 file", res.Absorbed)
	}

	var sawInclude bool
	for _, d := range res.Directives {
		if d.Kind == DirElement && len(d.Names) == 1 && d.Names[0] == "S" {
			sawInclude = true
		}
	}
	if !sawInclude {
		t.Fatal("included file's directive was not absorbed into the stream")
	}
}

func TestLoadSkipsAlreadyAbsorbedInclude(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.tml")
	if err := os.WriteFile(shared, []byte(`"S" is a white box service.`), 0o644); err != nil {
		t.Fatal(err)
	}
	root := filepath.Join(dir, "model.tml")
	rootSrc := "include shared.tml.\ninclude shared.tml."
	if err := os.WriteFile(root, []byte(rootSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	res := Load(root)
	if len(res.Absorbed) != 1 {
		t.Fatalf("Absorbed = %v, want exactly 1 (second include should be skipped)", res.Absorbed)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning about the repeated include")
	}
}

func TestLoadRawRejectsInclude(t *testing.T) {
	res := LoadRaw("stdin", "include shared.tml.")
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning: include isn't supported from stdin")
	}
	if len(res.Directives) != 0 {
		t.Fatal("an include directive should not be added to the stream when reading from stdin")
	}
}
