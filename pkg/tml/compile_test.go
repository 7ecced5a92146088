package tml

import (
	"strings"
	"testing"
)

func TestCompileRawProducesSummary(t *testing.T) {
	src := `
"U" is a black box agent.
"S" is a white box service.
"creds" is a confidential datum.
"U" sends "creds" to "S".
`
	res := CompileRaw("test", src)
	if res.Warnings != nil && res.Warnings.Len() > 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.Store.Elements.Len() != 2 {
		t.Fatalf("Elements.Len() = %d, want 2", res.Store.Elements.Len())
	}
	if len(res.Store.Interactions) != 1 {
		t.Fatalf("Interactions = %d, want 1", len(res.Store.Interactions))
	}
	if !strings.Contains(res.Summary(), "2 elements") {
		t.Fatalf("Summary() = %q, want it to mention 2 elements", res.Summary())
	}
}

func TestCompileRawAggregatesWarningsFromEveryStage(t *testing.T) {
	src := `"ghost" sends "nothing" to "void".`
	res := CompileRaw("test", src)
	if res.Warnings == nil || res.Warnings.Len() == 0 {
		t.Fatal("expected aggregated warnings for an entirely-unknown interaction")
	}
}

func TestCompileNeverPanicsOnGarbageInput(t *testing.T) {
	src := `this is not TML at all, just plain prose with periods. And more.`
	res := CompileRaw("test", src)
	if res.Store == nil || res.Active == nil {
		t.Fatal("Compile should always return a best-effort Result, never nil fields")
	}
}

func TestCompileRawScenarioMeasureLowersRiskRating(t *testing.T) {
	// Mirrors spec.md's worked example: a full-capability verified measure
	// should lower an otherwise-critical risk by its capability.
	src := `
"U" is a black box agent.
"S" is a white box service.
"creds" is a confidential datum.
"spoof" is a high impact, high probability threat.
"mfa" is a full measure against "spoof".
"U" sends "creds" to "S".
"spoof" applies to all data between all elements.
"mfa" has been verified on all data between all elements.
`
	res := CompileRaw("test", src)
	in := res.Store.Interactions[0]
	risks := in.Risks["creds"]
	risk, ok := risks.Get("spoof")
	if !ok {
		t.Fatal("expected a risk for spoof on creds")
	}
	if risk.Rating() != RatingHigh {
		t.Fatalf("rating = %v, want High (critical sum 7 minus full capability 2 = 5)", risk.Rating())
	}
}
