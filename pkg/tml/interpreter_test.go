package tml

import "testing"

func compileSrc(t *testing.T, src string) *Result {
	t.Helper()
	return CompileRaw("test", src)
}

func TestInterpretCreatesComponentsAndInteraction(t *testing.T) {
	src := `
"U" is a black box agent as "User".
"S" is a white box service as "Server".
"creds" is a confidential datum.
"U" sends "creds" to "S".
`
	res := compileSrc(t, src)
	if _, ok := res.Store.Elements.Get("U"); !ok {
		t.Fatal("element U not created")
	}
	if _, ok := res.Store.Elements.Get("S"); !ok {
		t.Fatal("element S not created")
	}
	if len(res.Store.Interactions) != 1 {
		t.Fatalf("got %d interactions, want 1", len(res.Store.Interactions))
	}
	in := res.Store.Interactions[0]
	if !in.Sources.Has("U") || !in.Targets.Has("S") {
		t.Fatalf("send interaction sources/targets wrong: %+v", in)
	}
}

func TestInterpretReceiveInvertsSourcesAndTargets(t *testing.T) {
	src := `
"U" is a black box agent.
"S" is a white box service.
"creds" is a confidential datum.
"S" receives "creds" from "U".
`
	res := compileSrc(t, src)
	in := res.Store.Interactions[0]
	if !in.Sources.Has("U") || !in.Targets.Has("S") {
		t.Fatalf("receive should put the counterpart in Sources and the subject in Targets, got %+v", in)
	}
}

func TestInterpretAliasExpansionIsTransitive(t *testing.T) {
	src := `
"U" is a black box agent.
"S" is a white box service.
"pair" is "U", "S".
"all" is "pair".
`
	store := NewStore()
	load := LoadRaw("test", src)
	Interpret(store, load.Directives)

	resolved := store.expandOne("all", map[string]bool{})
	want := map[string]bool{"U": true, "S": true}
	if len(resolved) != 2 {
		t.Fatalf("expandOne(all) = %v, want 2 names", resolved)
	}
	for _, n := range resolved {
		if !want[n] {
			t.Fatalf("expandOne(all) = %v, unexpected name %q", resolved, n)
		}
	}
}

func TestInterpretAliasCycleTerminates(t *testing.T) {
	store := NewStore()
	store.Aliases.Set("a", &Alias{Name: "a", Targets: []string{"b"}})
	store.Aliases.Set("b", &Alias{Name: "b", Targets: []string{"a"}})

	got := store.expandOne("a", map[string]bool{})
	if len(got) != 0 {
		t.Fatalf("cyclic alias expansion should resolve to nothing, got %v", got)
	}
}

func TestInterpretAliasCollisionOverwritesComponent(t *testing.T) {
	src := `
"U" is a black box agent.
"U" is "S".
`
	store := NewStore()
	load := LoadRaw("test", src)
	warnings := Interpret(store, load.Directives)

	if store.Elements.Has("U") {
		t.Fatal("U should have been removed from Elements once it became an alias")
	}
	if _, ok := store.Aliases.Get("U"); !ok {
		t.Fatal("U should now be an alias")
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning about the alias/component collision")
	}
}

func TestInterpretComponentRedefinitionWarnsAndOverwrites(t *testing.T) {
	src := `
"U" is a black box agent as "First".
"U" is a white box service as "Second".
`
	store := NewStore()
	load := LoadRaw("test", src)
	warnings := Interpret(store, load.Directives)

	e, ok := store.Elements.Get("U")
	if !ok {
		t.Fatal("U should still exist as an element")
	}
	if e.Label != "Second" || e.Profile != ProfileWhite || e.Role != RoleService {
		t.Fatalf("redefinition should overwrite fields, got %+v", e)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a redefinition warning")
	}
}

func TestInterpretUnknownNameWarns(t *testing.T) {
	src := `
"creds" is a confidential datum.
"ghost" sends "creds" to "creds".
`
	store := NewStore()
	load := LoadRaw("test", src)
	warnings := Interpret(store, load.Directives)
	if len(warnings) == 0 {
		t.Fatal("expected warnings for unknown element name and type mismatch")
	}
	if len(store.Interactions) != 0 {
		t.Fatal("interaction with no valid subjects should be skipped")
	}
}

func TestInterpretNoteDefaultsParentToLowestCommonAncestor(t *testing.T) {
	src := `
"Net" is a cluster.
"U" is a black box agent in "Net".
"S" is a white box service in "Net".
"n1" is a note attached to "U", "S".
`
	store := NewStore()
	load := LoadRaw("test", src)
	Interpret(store, load.Directives)

	n, ok := store.Notes.Get("n1")
	if !ok {
		t.Fatal("note n1 not created")
	}
	if n.Parent == nil || n.Parent.Name != "Net" {
		t.Fatalf("note parent = %v, want Net", n.Parent)
	}
}

func TestInterpretMeasureLinksThreatBothWays(t *testing.T) {
	src := `
"spoof" is a high impact high probability threat.
"mfa" is a full measure against "spoof".
`
	store := NewStore()
	load := LoadRaw("test", src)
	Interpret(store, load.Directives)

	measure, _ := store.Measures.Get("mfa")
	threat, _ := store.Threats.Get("spoof")
	if !measure.MitigableThreats.Has("spoof") {
		t.Fatal("measure should list spoof in MitigableThreats")
	}
	if !threat.ApplicableMeasures.Has("mfa") {
		t.Fatal("threat should list mfa in ApplicableMeasures")
	}
}

func TestInterpretCopyThreatClonesFields(t *testing.T) {
	src := `
"spoof" is a high impact medium probability threat described as "Original".
copy threat "spoof" as "spoof2".
`
	store := NewStore()
	load := LoadRaw("test", src)
	Interpret(store, load.Directives)

	clone, ok := store.Threats.Get("spoof2")
	if !ok {
		t.Fatal("spoof2 not created")
	}
	if clone.Impact != High || clone.Probability != Medium || clone.Description != "Original" {
		t.Fatalf("clone fields = %+v, want copied from source", clone)
	}
}

func TestInterpretDisproveMarksNoteDisproved(t *testing.T) {
	src := `disprove "sqli".`
	store := NewStore()
	load := LoadRaw("test", src)
	Interpret(store, load.Directives)

	n, ok := store.Notes.Get("sqli")
	if !ok {
		t.Fatal("sqli note not created")
	}
	if n.Color != "disproved" {
		t.Fatalf("Color = %q, want disproved", n.Color)
	}
}

func TestInterpretModificationUpdatesExistingComponent(t *testing.T) {
	src := `
"U" is a black box agent.
"U" is now as "Renamed".
`
	store := NewStore()
	load := LoadRaw("test", src)
	Interpret(store, load.Directives)

	e, _ := store.Elements.Get("U")
	if e.Label != "Renamed" {
		t.Fatalf("Label = %q, want Renamed", e.Label)
	}
}

func TestInterpretModificationOnWrongKindWarns(t *testing.T) {
	src := `
"creds" is a confidential datum.
"creds" is now red.
`
	store := NewStore()
	load := LoadRaw("test", src)
	warnings := Interpret(store, load.Directives)
	if len(warnings) == 0 {
		t.Fatal("expected a warning: color modification only applies to notes")
	}
}
