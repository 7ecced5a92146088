package tml

import "testing"

func TestSortElementsByProfileThenRoleThenLabel(t *testing.T) {
	store := NewStore()
	store.Elements.Set("b", &Element{Name: "b", Label: "B", Profile: ProfileWhite, Role: RoleAgent})
	store.Elements.Set("a", &Element{Name: "a", Label: "A", Profile: ProfileWhite, Role: RoleAgent})
	store.Elements.Set("c", &Element{Name: "c", Label: "C", Profile: ProfileBlack, Role: RoleAgent})

	sortElements(store)

	order := store.Elements.Keys()
	// white (2) sorts before black (0) since profile is descending; within
	// white, label A before B.
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSortDataByClassificationDescending(t *testing.T) {
	store := NewStore()
	store.Data.Set("pub", &Datum{Name: "pub", Label: "Pub", Classification: Public})
	store.Data.Set("conf", &Datum{Name: "conf", Label: "Conf", Classification: Confidential})
	store.Data.Set("res", &Datum{Name: "res", Label: "Res", Classification: Restricted})

	sortData(store)

	order := store.Data.Keys()
	want := []string{"conf", "res", "pub"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSortClustersDeeplyByLabel(t *testing.T) {
	store := NewStore()
	root := newCluster("root")
	root.Label = "Root"
	store.Clusters.Set("root", root)

	childB := newCluster("childB")
	childB.Label = "B"
	childA := newCluster("childA")
	childA.Label = "A"
	childB.reparent(root)
	childA.reparent(root)
	root.Children.Set("childB", childB)
	root.Children.Set("childA", childA)

	sortClusters(store)

	order := root.Children.Keys()
	want := []string{"childA", "childB"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("children order = %v, want %v", order, want)
		}
	}
}

func TestThreatLessOrdersByPotentialRiskThenLabel(t *testing.T) {
	low := &Threat{Name: "low", Label: "Low", Impact: Low, Probability: Low}
	high := &Threat{Name: "high", Label: "High", Impact: High, Probability: High}
	if !threatLess(high, low) {
		t.Fatal("a higher-potential-risk threat should sort first")
	}
}

func TestBuildActiveViewFiltersToActiveComponents(t *testing.T) {
	src := `
"U" is a black box agent.
"S" is a white box service.
"Idle" is a black box agent.
"creds" is a confidential datum.
"idle_datum" is a public datum.
"U" sends "creds" to "S".
`
	res := compileSrc(t, src)

	foundU, foundIdle := false, false
	for _, e := range res.Active.Elements {
		if e.Name == "U" {
			foundU = true
		}
		if e.Name == "Idle" {
			foundIdle = true
		}
	}
	if !foundU {
		t.Fatal("U participates in an interaction and should be active")
	}
	if foundIdle {
		t.Fatal("Idle never appears in an interaction and should not be active")
	}

	foundCreds, foundIdleDatum := false, false
	for _, d := range res.Active.Data {
		if d.Name == "creds" {
			foundCreds = true
		}
		if d.Name == "idle_datum" {
			foundIdleDatum = true
		}
	}
	if !foundCreds || foundIdleDatum {
		t.Fatalf("active data = %v, want only creds", res.Active.Data)
	}
}

func TestBuildActiveViewKeepsClusterChainForActiveElement(t *testing.T) {
	src := `
"Net" is a cluster.
"Sub" is a cluster in "Net".
"U" is a black box agent in "Sub".
"S" is a white box service.
"creds" is a confidential datum.
"U" sends "creds" to "S".
`
	res := compileSrc(t, src)

	names := map[string]bool{}
	for _, c := range res.Active.Clusters {
		names[c.Name] = true
	}
	if !names["Net"] || !names["Sub"] {
		t.Fatalf("active clusters = %v, want Net and Sub kept via U's parent chain", names)
	}
}

func TestBuildActiveViewKeepsTargetlessNotes(t *testing.T) {
	src := `disprove "sqli".`
	res := compileSrc(t, src)
	if len(res.Active.Notes) != 1 {
		t.Fatalf("got %d active notes, want 1 (targetless notes always kept)", len(res.Active.Notes))
	}
}
