package tml

import "testing"

func TestRendererExposesFullAndActiveViews(t *testing.T) {
	src := `
"U" is a black box agent.
"S" is a white box service.
"Idle" is a black box agent.
"creds" is a confidential datum.
"U" sends "creds" to "S".
`
	res := CompileRaw("test", src)
	r := res.NewRenderer(nil)

	if len(r.Elements()) != 3 {
		t.Fatalf("Elements() = %d, want 3", len(r.Elements()))
	}
	if len(r.ActiveElements()) != 2 {
		t.Fatalf("ActiveElements() = %d, want 2 (Idle excluded)", len(r.ActiveElements()))
	}
}

func TestRendererNewRendererDefaultsConfigWhenNil(t *testing.T) {
	res := CompileRaw("test", `"U" is a black box agent.`)
	r := res.NewRenderer(nil)
	opts := r.GetDiagramOptions()
	if opts.GraphAttrs == nil {
		t.Fatal("GetDiagramOptions() with a nil cfg should still return non-nil attr maps")
	}
}

func TestRendererGetDiagramOptionsForwardsSeedAndAttrs(t *testing.T) {
	res := CompileRaw("test", `"U" is a black box agent.`)
	cfg := DefaultConfig()
	cfg.Seed = "deadbeef"
	cfg.GraphAttrs["rankdir"] = "LR"

	r := res.NewRenderer(cfg)
	opts := r.GetDiagramOptions()
	if opts.Seed != "deadbeef" {
		t.Fatalf("Seed = %q, want deadbeef", opts.Seed)
	}
	if opts.GraphAttrs["rankdir"] != "LR" {
		t.Fatalf("GraphAttrs[rankdir] = %q, want LR", opts.GraphAttrs["rankdir"])
	}
}
