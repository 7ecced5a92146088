package tml

import "sort"

// Alias maps a name to the set of component names it expands to. Expansion
// is transitive and must terminate (§3, §4.3).
type Alias struct {
	Name    string
	Targets []string
}

// Store is the compilation-scoped model: every component kind, the alias
// table, and the monotonic interaction ordinal allocator (§3, §9 — "no
// process-wide state").
type Store struct {
	Clusters  *orderedMap[*Cluster]
	Elements  *orderedMap[*Element]
	Data      *orderedMap[*Datum]
	Threats   *orderedMap[*Threat]
	Measures  *orderedMap[*Measure]
	Notes     *orderedMap[*Note]
	Aliases   *orderedMap[*Alias]

	Interactions []*Interaction

	nextOrdinal int
	absorbed    map[string]bool
}

func NewStore() *Store {
	return &Store{
		Clusters: newOrderedMap[*Cluster](),
		Elements: newOrderedMap[*Element](),
		Data:     newOrderedMap[*Datum](),
		Threats:  newOrderedMap[*Threat](),
		Measures: newOrderedMap[*Measure](),
		Notes:    newOrderedMap[*Note](),
		Aliases:  newOrderedMap[*Alias](),
		absorbed: map[string]bool{},
	}
}

// allocateOrdinal returns the next interaction ordinal, in source order
// regardless of any user-supplied readability prefix (§4.3).
func (s *Store) allocateOrdinal() int {
	s.nextOrdinal++
	return s.nextOrdinal
}

// kindOf identifies which container a name currently lives in, if any. Used
// to detect aliases that collide with a component name (the component is
// then overwritten), and to enforce name uniqueness across kinds (§3
// invariants).
func (s *Store) kindOf(name string) string {
	switch {
	case s.Clusters.Has(name):
		return "cluster"
	case s.Elements.Has(name):
		return "element"
	case s.Data.Has(name):
		return "datum"
	case s.Threats.Has(name):
		return "threat"
	case s.Measures.Has(name):
		return "measure"
	case s.Notes.Has(name):
		return "note"
	}
	return ""
}

// deleteComponent removes name from the container for kind (as returned by
// kindOf), used when an alias is declared over an existing component name
// (§7 "Alias collision").
func (s *Store) deleteComponent(kind, name string) {
	switch kind {
	case "cluster":
		s.Clusters.Delete(name)
	case "element":
		s.Elements.Delete(name)
	case "datum":
		s.Data.Delete(name)
	case "threat":
		s.Threats.Delete(name)
	case "measure":
		s.Measures.Delete(name)
	case "note":
		s.Notes.Delete(name)
	}
}

// lowestCommonAncestor returns the deepest Cluster that contains every
// element in elems, or nil if there is none (used to default a Note's
// parent, §4.3).
func lowestCommonAncestor(elems []*Element) *Cluster {
	if len(elems) == 0 {
		return nil
	}
	chain := func(e *Element) []*Cluster {
		var chain []*Cluster
		for c := e.Parent; c != nil; c = c.Parent {
			chain = append(chain, c)
		}
		// reverse so chain[0] is the root
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
		return chain
	}

	common := chain(elems[0])
	for _, e := range elems[1:] {
		other := chain(e)
		max := len(common)
		if len(other) < max {
			max = len(other)
		}
		i := 0
		for i < max && common[i] == other[i] {
			i++
		}
		common = common[:i]
	}

	if len(common) == 0 {
		return nil
	}
	return common[len(common)-1]
}

// activeElementPairUniverse returns every (source,target) element-name pair
// observed across all interactions (the universe for "all elements", §4.4).
func (s *Store) activeElementPairUniverse() map[[2]string]bool {
	universe := map[[2]string]bool{}
	for _, i := range s.Interactions {
		for _, pair := range i.sourceTargetPairs() {
			universe[pair] = true
		}
	}
	return universe
}

// activeDatumNames returns the names of all data referenced by at least one
// interaction, sorted for deterministic iteration where order doesn't
// otherwise matter.
func (s *Store) activeDatumNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, i := range s.Interactions {
		for _, d := range i.Data.values {
			if !seen[d.Name] {
				seen[d.Name] = true
				names = append(names, d.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}
