package tml

import "sort"

// Finalize marks Active flags, applies the §4.6 ordering contract to every
// container in store, and returns the active-subset views. It must run
// exactly once, after interpretation and resolution are complete.
func Finalize(store *Store) *ActiveView {
	markActive(store)
	sortClusters(store)
	sortElements(store)
	sortData(store)
	sortThreats(store)
	sortMeasures(store)
	sortInteractions(store)
	return buildActiveView(store)
}

// markActive flags every Measure used in at least one Mitigation and every
// Threat used in at least one Risk, across all interactions.
func markActive(store *Store) {
	for _, in := range store.Interactions {
		for _, mits := range in.Mitigations {
			for _, mit := range mits.values {
				mit.Measure.Active = true
			}
		}
		for _, risks := range in.Risks {
			for _, r := range risks.values {
				r.Threat.Active = true
			}
		}
	}
}

// sortClusters sorts the flat Clusters container by (label, description),
// then recursively re-sorts every Cluster's Children the same way — the
// "deep" sort of §4.6 rule 1.
func sortClusters(store *Store) {
	order := store.Clusters.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		a, _ := store.Clusters.Get(order[i])
		b, _ := store.Clusters.Get(order[j])
		return clusterLess(a, b)
	})
	store.Clusters.reorder(order)

	for _, c := range store.Clusters.values {
		sortClusterChildren(c)
	}
}

func sortClusterChildren(c *Cluster) {
	order := c.Children.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		a, _ := c.Children.Get(order[i])
		b, _ := c.Children.Get(order[j])
		return clusterLess(a, b)
	})
	c.Children.reorder(order)
	for _, child := range c.Children.values {
		sortClusterChildren(child)
	}
}

func clusterLess(a, b *Cluster) bool {
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Description < b.Description
}

func sortElements(store *Store) {
	order := store.Elements.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		a, _ := store.Elements.Get(order[i])
		b, _ := store.Elements.Get(order[j])
		if a.Profile != b.Profile {
			return a.Profile > b.Profile
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Description < b.Description
	})
	store.Elements.reorder(order)
}

func sortData(store *Store) {
	order := store.Data.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		a, _ := store.Data.Get(order[i])
		b, _ := store.Data.Get(order[j])
		if a.Classification != b.Classification {
			return a.Classification > b.Classification
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.Description < b.Description
	})
	store.Data.reorder(order)
}

func measureLess(a, b *Measure) bool {
	if a.Capability != b.Capability {
		return a.Capability > b.Capability
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Description < b.Description
}

func threatLess(a, b *Threat) bool {
	ra, rb := a.PotentialRisk(), b.PotentialRisk()
	if ra != rb {
		return ra > rb
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Description < b.Description
}

func sortThreats(store *Store) {
	order := store.Threats.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		a, _ := store.Threats.Get(order[i])
		b, _ := store.Threats.Get(order[j])
		return threatLess(a, b)
	})
	store.Threats.reorder(order)

	for _, t := range store.Threats.values {
		mo := t.ApplicableMeasures.Keys()
		sort.SliceStable(mo, func(i, j int) bool {
			a, _ := t.ApplicableMeasures.Get(mo[i])
			b, _ := t.ApplicableMeasures.Get(mo[j])
			return measureLess(a, b)
		})
		t.ApplicableMeasures.reorder(mo)
	}
}

func sortMeasures(store *Store) {
	order := store.Measures.Keys()
	sort.SliceStable(order, func(i, j int) bool {
		a, _ := store.Measures.Get(order[i])
		b, _ := store.Measures.Get(order[j])
		return measureLess(a, b)
	})
	store.Measures.reorder(order)

	for _, m := range store.Measures.values {
		to := m.MitigableThreats.Keys()
		sort.SliceStable(to, func(i, j int) bool {
			a, _ := m.MitigableThreats.Get(to[i])
			b, _ := m.MitigableThreats.Get(to[j])
			return threatLess(a, b)
		})
		m.MitigableThreats.reorder(to)
	}
}

// sortInteractions preserves source order (§4.6 rule 6) but sorts each
// interaction's data by classification descending, and the risks/
// mitigations attached to each datum by their natural (threat/measure)
// orders.
func sortInteractions(store *Store) {
	for _, in := range store.Interactions {
		order := in.Data.Keys()
		sort.SliceStable(order, func(i, j int) bool {
			a, _ := in.Data.Get(order[i])
			b, _ := in.Data.Get(order[j])
			if a.Classification != b.Classification {
				return a.Classification > b.Classification
			}
			if a.Label != b.Label {
				return a.Label < b.Label
			}
			return a.Description < b.Description
		})
		in.Data.reorder(order)

		for _, risks := range in.Risks {
			ro := risks.Keys()
			sort.SliceStable(ro, func(i, j int) bool {
				a, _ := risks.Get(ro[i])
				b, _ := risks.Get(ro[j])
				return threatLess(a.Threat, b.Threat)
			})
			risks.reorder(ro)
		}
		for _, mits := range in.Mitigations {
			mo := mits.Keys()
			sort.SliceStable(mo, func(i, j int) bool {
				a, _ := mits.Get(mo[i])
				b, _ := mits.Get(mo[j])
				return measureLess(a.Measure, b.Measure)
			})
			mits.reorder(mo)
		}
	}
}

// ActiveView is the read-only active-subset projection of a finalized
// Store: each container filtered to active==true components (§4.6 rule 7).
// The components are the same objects the Store holds, so their own
// cross-references (a threat's ApplicableMeasures, a measure's
// MitigableThreats, a note's Targets, a cluster's Children) are not
// filtered and can name inactive components.
type ActiveView struct {
	Clusters []*Cluster
	Elements []*Element
	Data     []*Datum
	Threats  []*Threat
	Measures []*Measure
	Notes    []*Note
}

func buildActiveView(store *Store) *ActiveView {
	v := &ActiveView{}
	for _, e := range store.Elements.values {
		if e.Active {
			v.Elements = append(v.Elements, e)
		}
	}
	for _, d := range store.Data.values {
		if d.Active {
			v.Data = append(v.Data, d)
		}
	}
	for _, t := range store.Threats.values {
		if t.Active {
			v.Threats = append(v.Threats, t)
		}
	}
	for _, m := range store.Measures.values {
		if m.Active {
			v.Measures = append(v.Measures, m)
		}
	}
	activeClusters := map[string]bool{}
	for _, e := range v.Elements {
		for c := e.Parent; c != nil; c = c.Parent {
			activeClusters[c.Name] = true
		}
	}
	for _, c := range store.Clusters.values {
		if activeClusters[c.Name] {
			v.Clusters = append(v.Clusters, c)
		}
	}
	for _, n := range store.Notes.values {
		keep := n.Targets.Len() == 0
		for _, e := range n.Targets.values {
			if e.Active {
				keep = true
			}
		}
		if keep {
			v.Notes = append(v.Notes, n)
		}
	}
	return v
}
