package tml

import "fmt"

// expandOne recursively expands name through the alias table, one level at
// a time, using visited to guarantee termination on a cyclic definition
// (§3, §4.3). A name that isn't an alias expands to itself.
func (s *Store) expandOne(name string, visited map[string]bool) []string {
	if visited[name] {
		return nil
	}
	visited[name] = true
	if alias, ok := s.Aliases.Get(name); ok {
		var out []string
		for _, t := range alias.Targets {
			out = append(out, s.expandOne(t, visited)...)
		}
		return out
	}
	return []string{name}
}

// expandAndFilter expands every raw name through aliases, then drops any
// resolved name that doesn't exist or doesn't match kind — an "unknown
// name" or "type mismatch" warning respectively (§7).
func (s *Store) expandAndFilter(names []string, kind string, warnings *[]error) []string {
	var out []string
	seen := map[string]bool{}
	for _, n := range names {
		for _, e := range s.expandOne(n, map[string]bool{}) {
			k := s.kindOf(e)
			if k == "" {
				*warnings = append(*warnings, fmt.Errorf("unknown name %q", e))
				continue
			}
			if k != kind {
				*warnings = append(*warnings, fmt.Errorf("type mismatch: %q is a %s, not a %s", e, k, kind))
				continue
			}
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// Interpret walks directives in the fixed §4.3 priority order, mutating
// store. Directives are first partitioned by kind (stable, preserving
// source order within each class) then applied class by class, per §4.3
// and §5's determinism requirement.
func Interpret(store *Store, directives []*Directive) []error {
	var warnings []error

	var aliases, components, mods, interactions, mitigations, risks []*Directive
	for _, d := range directives {
		switch d.Kind {
		case DirAlias:
			aliases = append(aliases, d)
		case DirNote, DirCluster, DirElement, DirDatum, DirThreat, DirMeasure, DirCopyThreat, DirDisprove:
			components = append(components, d)
		case DirModification:
			mods = append(mods, d)
		case DirInteraction:
			interactions = append(interactions, d)
		case DirMitigation:
			mitigations = append(mitigations, d)
		case DirRisk:
			risks = append(risks, d)
		}
	}

	for _, d := range aliases {
		applyAlias(store, d, &warnings)
	}
	for _, d := range components {
		applyComponent(store, d, &warnings)
	}
	for _, d := range mods {
		applyModification(store, d, &warnings)
	}
	for _, d := range interactions {
		applyInteraction(store, d, &warnings)
	}
	for _, d := range mitigations {
		applyMitigation(store, d, &warnings)
	}
	for _, d := range risks {
		applyRisk(store, d, &warnings)
	}

	return warnings
}

// applyAlias installs a NAME_LIST `is/are` NAME_LIST alias. §7 and §3 give
// conflicting treatments of a name colliding with an existing component (one
// says "rejected", the other "warn; overwrite component"); this
// implementation follows the more operational §7 text — the component is
// removed and the name becomes an alias — and documents the choice in
// DESIGN.md.
func applyAlias(store *Store, d *Directive, warnings *[]error) {
	for _, name := range d.Names {
		if kind := store.kindOf(name); kind != "" {
			*warnings = append(*warnings, fmt.Errorf("alias %q collides with an existing %s, overwriting it", name, kind))
			store.deleteComponent(kind, name)
		} else if _, exists := store.Aliases.Get(name); exists {
			*warnings = append(*warnings, fmt.Errorf("alias %q redefined", name))
		}
		store.Aliases.Set(name, &Alias{Name: name, Targets: append([]string(nil), d.Targets...)})
	}
}

func applyComponent(store *Store, d *Directive, warnings *[]error) {
	switch d.Kind {
	case DirNote:
		createNote(store, d, warnings)
	case DirCluster:
		createCluster(store, d, warnings)
	case DirElement:
		createElement(store, d, warnings)
	case DirDatum:
		createDatum(store, d, warnings)
	case DirThreat:
		createThreat(store, d, warnings)
	case DirMeasure:
		createMeasure(store, d, warnings)
	case DirCopyThreat:
		copyThreat(store, d, warnings)
	case DirDisprove:
		disproveNote(store, d, warnings)
	}
}

// guardKindCollision reports whether name already belongs to a different
// kind (a hard collision, no redefinition possible), warning and returning
// true if so. Aliases are applied before components, so a name that is
// already an alias also counts as a collision: the alias wins and the
// component is not created.
func guardKindCollision(store *Store, name, kind string, warnings *[]error) bool {
	if store.Aliases.Has(name) {
		*warnings = append(*warnings, fmt.Errorf("alias %q collides with a %s declaration, overwriting it", name, kind))
		return true
	}
	existing := store.kindOf(name)
	if existing != "" && existing != kind {
		*warnings = append(*warnings, fmt.Errorf("%q is already a %s, cannot redeclare as %s", name, existing, kind))
		return true
	}
	if existing == kind {
		*warnings = append(*warnings, fmt.Errorf("%q redefined", name))
	}
	return false
}

func resolveParentCluster(store *Store, parentName string, warnings *[]error) *Cluster {
	if parentName == "" {
		return nil
	}
	names := store.expandAndFilter([]string{parentName}, "cluster", warnings)
	if len(names) == 0 {
		return nil
	}
	c, _ := store.Clusters.Get(names[0])
	return c
}

func createCluster(store *Store, d *Directive, warnings *[]error) {
	parent := resolveParentCluster(store, d.Parent, warnings)
	for _, name := range d.Names {
		if guardKindCollision(store, name, "cluster", warnings) {
			continue
		}
		c, ok := store.Clusters.Get(name)
		if !ok {
			c = newCluster(name)
			store.Clusters.Set(name, c)
		}
		if d.HasLabel {
			c.Label = d.Label
		}
		if d.HasDescription {
			c.Description = d.Description
		}
		c.reparent(parent)
		if parent != nil {
			parent.Children.Set(name, c)
		}
	}
}

func createElement(store *Store, d *Directive, warnings *[]error) {
	parent := resolveParentCluster(store, d.Parent, warnings)
	for _, name := range d.Names {
		if guardKindCollision(store, name, "element", warnings) {
			continue
		}
		e, ok := store.Elements.Get(name)
		if !ok {
			e = newElement(name)
			store.Elements.Set(name, e)
		}
		e.Profile, e.Role = d.Profile, d.Role
		if d.HasLabel {
			e.Label = d.Label
		}
		if d.HasDescription {
			e.Description = d.Description
		}
		e.Parent = parent
	}
}

func createDatum(store *Store, d *Directive, warnings *[]error) {
	for _, name := range d.Names {
		if guardKindCollision(store, name, "datum", warnings) {
			continue
		}
		datum, ok := store.Data.Get(name)
		if !ok {
			datum = newDatum(name)
			store.Data.Set(name, datum)
		}
		datum.Classification = d.Classification
		if d.HasLabel {
			datum.Label = d.Label
		}
		if d.HasDescription {
			datum.Description = d.Description
		}
	}
}

func createThreat(store *Store, d *Directive, warnings *[]error) {
	for _, name := range d.Names {
		if guardKindCollision(store, name, "threat", warnings) {
			continue
		}
		t, ok := store.Threats.Get(name)
		if !ok {
			t = newThreat(name)
			store.Threats.Set(name, t)
		}
		t.Impact, t.Probability = d.Impact, d.Probability
		if d.HasLabel {
			t.Label = d.Label
		}
		if d.HasDescription {
			t.Description = d.Description
		}
	}
}

func createMeasure(store *Store, d *Directive, warnings *[]error) {
	threatNames := store.expandAndFilter(d.ThreatRefs, "threat", warnings)
	for _, name := range d.Names {
		if guardKindCollision(store, name, "measure", warnings) {
			continue
		}
		m, ok := store.Measures.Get(name)
		if !ok {
			m = newMeasure(name)
			store.Measures.Set(name, m)
		}
		m.Capability = d.Capability
		if d.HasLabel {
			m.Label = d.Label
		}
		if d.HasDescription {
			m.Description = d.Description
		}
		for _, tn := range threatNames {
			t, _ := store.Threats.Get(tn)
			m.MitigableThreats.Set(tn, t)
			t.ApplicableMeasures.Set(name, m)
		}
	}
}

func createNote(store *Store, d *Directive, warnings *[]error) {
	var targetElems []*Element
	var targetNames []string
	if d.HasTargets {
		targetNames = store.expandAndFilter(d.Targets, "element", warnings)
		for _, tn := range targetNames {
			e, _ := store.Elements.Get(tn)
			targetElems = append(targetElems, e)
		}
	}

	var parent *Cluster
	if d.HasParent {
		parent = resolveParentCluster(store, d.Parent, warnings)
	} else if len(targetElems) > 0 {
		parent = lowestCommonAncestor(targetElems)
	}

	for _, name := range d.Names {
		if guardKindCollision(store, name, "note", warnings) {
			continue
		}
		n, ok := store.Notes.Get(name)
		if !ok {
			n = newNote(name)
			store.Notes.Set(name, n)
		}
		if d.HasColor {
			n.Color = d.Color
		}
		if d.HasLabel {
			n.Label = d.Label
		}
		if d.HasDescription {
			n.Description = d.Description
		}
		n.Parent = parent
		for i, tn := range targetNames {
			n.Targets.Set(tn, targetElems[i])
		}
	}
}

// copyThreat implements the supplemented `copy threat "X" as "Y"` directive
// (SPEC_FULL.md): clone an existing threat's impact/probability/description
// under a new name.
func copyThreat(store *Store, d *Directive, warnings *[]error) {
	src, ok := store.Threats.Get(d.Subject)
	if !ok {
		*warnings = append(*warnings, fmt.Errorf("copy threat: unknown source threat %q", d.Subject))
		return
	}
	newName := d.Names[0]
	if guardKindCollision(store, newName, "threat", warnings) {
		return
	}
	clone := newThreat(newName)
	clone.Impact, clone.Probability, clone.Description = src.Impact, src.Probability, src.Description
	clone.Label = newName
	store.Threats.Set(newName, clone)
}

// disproveNote implements the supplemented `disprove NAME_LIST` directive: a
// bare assertion that an anti-pattern is absent, modeled as a parentless,
// targetless Note marked with the "disproved" color (SPEC_FULL.md).
func disproveNote(store *Store, d *Directive, warnings *[]error) {
	for _, name := range d.Names {
		if guardKindCollision(store, name, "note", warnings) {
			continue
		}
		n, ok := store.Notes.Get(name)
		if !ok {
			n = newNote(name)
			store.Notes.Set(name, n)
		}
		n.Color = "disproved"
		store.Notes.Set(name, n)
	}
}

func applyModification(store *Store, d *Directive, warnings *[]error) {
	for _, name := range d.Names {
		kind := store.kindOf(name)
		if kind == "" {
			*warnings = append(*warnings, fmt.Errorf("modification: unknown name %q", name))
			continue
		}
		applyModificationAttr(store, kind, name, d, warnings)
	}
}

func applyModificationAttr(store *Store, kind, name string, d *Directive, warnings *[]error) {
	badAttr := func() {
		*warnings = append(*warnings, fmt.Errorf(
			"modification: %q (%s) does not carry attribute %q, ignored [%d:%d]",
			name, kind, d.ModAttr, d.Start, d.End,
		))
	}

	switch d.ModAttr {
	case "label":
		switch kind {
		case "cluster":
			c, _ := store.Clusters.Get(name)
			c.Label = d.Label
		case "element":
			e, _ := store.Elements.Get(name)
			e.Label = d.Label
		case "datum":
			dt, _ := store.Data.Get(name)
			dt.Label = d.Label
		case "threat":
			t, _ := store.Threats.Get(name)
			t.Label = d.Label
		case "measure":
			m, _ := store.Measures.Get(name)
			m.Label = d.Label
		case "note":
			n, _ := store.Notes.Get(name)
			n.Label = d.Label
		}
	case "description":
		switch kind {
		case "cluster":
			c, _ := store.Clusters.Get(name)
			c.Description = d.Description
		case "element":
			e, _ := store.Elements.Get(name)
			e.Description = d.Description
		case "datum":
			dt, _ := store.Data.Get(name)
			dt.Description = d.Description
		case "threat":
			t, _ := store.Threats.Get(name)
			t.Description = d.Description
		case "measure":
			m, _ := store.Measures.Get(name)
			m.Description = d.Description
		case "note":
			n, _ := store.Notes.Get(name)
			n.Description = d.Description
		}
	case "color":
		if kind != "note" {
			badAttr()
			return
		}
		n, _ := store.Notes.Get(name)
		n.Color = d.Color
	case "profile_role":
		if kind != "element" {
			badAttr()
			return
		}
		e, _ := store.Elements.Get(name)
		e.Profile, e.Role = d.Profile, d.Role
	case "classification":
		if kind != "datum" {
			badAttr()
			return
		}
		dt, _ := store.Data.Get(name)
		dt.Classification = d.Classification
	case "impact_probability":
		if kind != "threat" {
			badAttr()
			return
		}
		t, _ := store.Threats.Get(name)
		t.Impact, t.Probability = d.Impact, d.Probability
	case "capability":
		if kind != "measure" {
			badAttr()
			return
		}
		m, _ := store.Measures.Get(name)
		m.Capability = d.Capability
	}
}

func applyInteraction(store *Store, d *Directive, warnings *[]error) {
	subjects := store.expandAndFilter(d.Names, "element", warnings)
	if len(subjects) == 0 {
		*warnings = append(*warnings, fmt.Errorf("interaction: empty subject list, skipped [%d:%d]", d.Start, d.End))
		return
	}
	data := store.expandAndFilter(d.Data, "datum", warnings)
	if len(data) == 0 {
		*warnings = append(*warnings, fmt.Errorf("interaction: empty data list, skipped [%d:%d]", d.Start, d.End))
		return
	}

	in := newInteraction(store.allocateOrdinal(), d.Action)

	switch d.Action {
	case ActionProcess, ActionStore:
		for _, s := range subjects {
			e, _ := store.Elements.Get(s)
			in.Sources.Set(s, e)
			in.Targets.Set(s, e)
		}
	case ActionSend:
		counterparts := store.expandAndFilter(d.Targets, "element", warnings)
		if len(counterparts) == 0 {
			*warnings = append(*warnings, fmt.Errorf("interaction: empty target list, skipped [%d:%d]", d.Start, d.End))
			return
		}
		for _, s := range subjects {
			e, _ := store.Elements.Get(s)
			in.Sources.Set(s, e)
		}
		for _, tname := range counterparts {
			e, _ := store.Elements.Get(tname)
			in.Targets.Set(tname, e)
		}
	case ActionReceive:
		counterparts := store.expandAndFilter(d.Targets, "element", warnings)
		if len(counterparts) == 0 {
			*warnings = append(*warnings, fmt.Errorf("interaction: empty source list, skipped [%d:%d]", d.Start, d.End))
			return
		}
		for _, tname := range counterparts {
			e, _ := store.Elements.Get(tname)
			in.Sources.Set(tname, e)
		}
		for _, s := range subjects {
			e, _ := store.Elements.Get(s)
			in.Targets.Set(s, e)
		}
	}

	for _, dn := range data {
		dt, _ := store.Data.Get(dn)
		dt.Active = true
		in.Data.Set(dn, dt)
	}
	for _, e := range in.Sources.values {
		e.Active = true
	}
	for _, e := range in.Targets.values {
		e.Active = true
	}

	if len(d.Notes) > 0 {
		noteNames := store.expandAndFilter(d.Notes, "note", warnings)
		in.Notes = noteNames
	}

	store.Interactions = append(store.Interactions, in)
}
