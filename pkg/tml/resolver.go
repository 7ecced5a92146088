package tml

import "fmt"

// pairMatcher reports whether a directed (source, target) element-name pair
// is selected by an AFFECTED_COMPONENTS element clause.
type pairMatcher func(source, target string) bool

// resolveAffectedData expands an affectedSpec's data selector into a
// concrete set of datum names (§4.4).
func resolveAffectedData(store *Store, spec *affectedSpec, warnings *[]error) []string {
	if spec.dataAll {
		except := map[string]bool{}
		for _, n := range store.expandAndFilter(spec.dataExcept, "datum", warnings) {
			except[n] = true
		}
		var out []string
		for _, n := range store.activeDatumNames() {
			if !except[n] {
				out = append(out, n)
			}
		}
		return out
	}
	return store.expandAndFilter(spec.dataExplicit, "datum", warnings)
}

// expandPairs expands a list of raw (a,b) name pairs through aliases,
// producing the cartesian product of each side's resolved element names,
// and stores both orderings since `between` pairs are unordered (§4.4).
func expandPairs(store *Store, raw [][2]string, warnings *[]error) map[[2]string]bool {
	out := map[[2]string]bool{}
	for _, p := range raw {
		as := store.expandAndFilter([]string{p[0]}, "element", warnings)
		bs := store.expandAndFilter([]string{p[1]}, "element", warnings)
		for _, a := range as {
			for _, b := range bs {
				out[[2]string{a, b}] = true
				out[[2]string{b, a}] = true
			}
		}
	}
	return out
}

// resolvePairMatcher builds the element-pair selector function for an
// affectedSpec, per the three shapes in §4.4: `between`, `within` (and the
// bare-list equivalent), and `all elements [except …]`.
func resolvePairMatcher(store *Store, spec *affectedSpec, warnings *[]error) pairMatcher {
	switch spec.elemMode {
	case selectBetween:
		pairs := expandPairs(store, spec.pairs, warnings)
		return func(s, t string) bool { return pairs[[2]string{s, t}] }

	case selectWithin, selectExplicit:
		set := map[string]bool{}
		for _, n := range store.expandAndFilter(spec.elems, "element", warnings) {
			set[n] = true
		}
		exceptSet := map[string]bool{}
		for _, n := range store.expandAndFilter(spec.exceptElems, "element", warnings) {
			exceptSet[n] = true
		}
		return func(s, t string) bool {
			return s == t && set[s] && !exceptSet[s]
		}

	case selectAllElements:
		universe := store.activeElementPairUniverse()
		excludedSelf := map[string]bool{}
		for _, n := range store.expandAndFilter(spec.exceptElems, "element", warnings) {
			excludedSelf[n] = true
		}
		excludedPairs := expandPairs(store, spec.exceptPairs, warnings)
		return func(s, t string) bool {
			if !universe[[2]string{s, t}] {
				return false
			}
			if excludedPairs[[2]string{s, t}] {
				return false
			}
			if s == t && excludedSelf[s] {
				return false
			}
			return true
		}
	}
	return func(s, t string) bool { return false }
}

// interactionMatches reports whether every one of interaction's
// source/target pairs is selected by match: the interaction's full
// sources x targets product must be a subset of the selector's set (§4.4),
// not merely intersect it.
func interactionMatches(in *Interaction, match pairMatcher) bool {
	pairs := in.sourceTargetPairs()
	if len(pairs) == 0 {
		return false
	}
	for _, p := range pairs {
		if !match(p[0], p[1]) {
			return false
		}
	}
	return true
}

// deriveMitigationStatus implements the exact property-derivation table of
// §4.4: the imperative form always yields a not-yet-achieved status one
// rung below its target verb, while the has/have-been form states a fact.
func deriveMitigationStatus(d *Directive) Status {
	if d.Imperative != ImperativeNone {
		if d.HasBeenTo == "implemented" {
			return Pending
		}
		return Implemented
	}
	if d.HasBeenTo == "implemented" {
		return Implemented
	}
	return Verified
}

func applyMitigation(store *Store, d *Directive, warnings *[]error) {
	measure, ok := store.Measures.Get(d.Subject)
	if !ok {
		*warnings = append(*warnings, fmt.Errorf("mitigation: unknown measure %q [%d:%d]", d.Subject, d.Start, d.End))
		return
	}

	datumNames := resolveAffectedData(store, &d.Affected, warnings)
	if len(datumNames) == 0 {
		return
	}
	match := resolvePairMatcher(store, &d.Affected, warnings)
	status := deriveMitigationStatus(d)

	for _, in := range store.Interactions {
		if !interactionMatches(in, match) {
			continue
		}
		for _, dn := range datumNames {
			if !in.Data.Has(dn) {
				continue
			}
			in.mitigationsFor(dn).Set(measure.Name, &Mitigation{
				Measure:    measure,
				Imperative: d.Imperative,
				Status:     status,
			})
		}
	}
}

func applyRisk(store *Store, d *Directive, warnings *[]error) {
	threat, ok := store.Threats.Get(d.Subject)
	if !ok {
		*warnings = append(*warnings, fmt.Errorf("risk: unknown threat %q [%d:%d]", d.Subject, d.Start, d.End))
		return
	}

	datumNames := resolveAffectedData(store, &d.Affected, warnings)
	if len(datumNames) == 0 {
		return
	}
	match := resolvePairMatcher(store, &d.Affected, warnings)

	for _, in := range store.Interactions {
		if !interactionMatches(in, match) {
			continue
		}
		for _, dn := range datumNames {
			datum, ok := store.Data.Get(dn)
			if !ok || !in.Data.Has(dn) {
				continue
			}
			in.risksFor(dn).Set(threat.Name, &Risk{
				Threat:        threat,
				AffectedDatum: datum,
				mitigations:   in.mitigationsFor(dn),
			})
		}
	}
}
