package tml

import (
	"regexp"
	"strings"
)

// DirCopyThreat and DirDisprove are supplemented grammar alternatives (see
// SPEC_FULL.md "Supplemented features"), folded into the DirectiveKind
// space used by the twelve core dispatch kinds.
const (
	DirCopyThreat DirectiveKind = iota + 100
	DirDisprove
)

var includeRe = regexp.MustCompile(`(?i)^include\s+(\S+)\s*$`)

var colorWords = map[string]bool{
	"red": true, "orange": true, "yellow": true, "green": true,
	"blue": true, "purple": true, "grey": true, "gray": true,
	"black": true, "white": true, "pink": true, "brown": true,
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseDirective attempts every grammar alternative, in the order given in
// §4.1, against a single directive's raw text. Returns (nil, false) if the
// text matches nothing — a "grammar miss" (§7), silent outside -c mode.
func ParseDirective(raw string, start, end int) (*Directive, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	if m := includeRe.FindStringSubmatch(trimmed); m != nil {
		return &Directive{Kind: DirInclude, Path: m[1], Start: start, End: end}, true
	}

	skeleton, literals := extractQuotes(trimmed)
	toks := tokenize(skeleton)
	cur := newCursor(toks, literals)

	type attempt func(*cursor) (*Directive, bool)
	attempts := []attempt{
		parseCopy,
		parseDisprove,
		parseNameListDirective,
		parseInteraction,
		parseMitigation,
		parseRisk,
	}

	for _, a := range attempts {
		c := cur.clone()
		if d, ok := a(c); ok {
			d.Start, d.End = start, end
			return d, true
		}
	}
	return nil, false
}

func parseCopy(cur *cursor) (*Directive, bool) {
	if !cur.acceptWord("copy") {
		return nil, false
	}
	if !cur.acceptWord("threat") {
		return nil, false
	}
	src, ok := cur.quoted()
	if !ok {
		return nil, false
	}
	if !cur.acceptWord("as") {
		return nil, false
	}
	newName, ok := cur.quoted()
	if !ok {
		return nil, false
	}
	return &Directive{Kind: DirCopyThreat, Subject: src, Names: []string{newName}}, true
}

func parseDisprove(cur *cursor) (*Directive, bool) {
	if !cur.acceptWord("disprove") {
		return nil, false
	}
	names, ok := cur.nameList()
	if !ok {
		return nil, false
	}
	return &Directive{Kind: DirDisprove, Names: names}, true
}

// parseLabelAndDesc consumes an optional `as "Label"` and/or
// `described as "Description"` suffix, in either order.
func parseLabelAndDesc(cur *cursor) (label string, hasLabel bool, desc string, hasDesc bool) {
	for i := 0; i < 2; i++ {
		if !hasDesc && cur.word() == "described" {
			save := cur.pos
			cur.pos++
			if cur.acceptWord("as") {
				if d, ok := cur.quoted(); ok {
					desc, hasDesc = d, true
					continue
				}
			}
			cur.pos = save
		}
		if !hasLabel && cur.word() == "as" {
			save := cur.pos
			cur.pos++
			if l, ok := cur.quoted(); ok {
				label, hasLabel = l, true
				continue
			}
			cur.pos = save
		}
		break
	}
	return
}

func parseNameListDirective(cur *cursor) (*Directive, bool) {
	names, ok := cur.nameList()
	if !ok {
		return nil, false
	}
	if !cur.acceptWord("is", "are") {
		return nil, false
	}

	if cur.acceptWord("now") {
		return parseModificationBody(cur, names)
	}

	cur.acceptWord("a", "an", "the")

	if d, ok := tryNote(cur.clone(), names); ok {
		return d, true
	}
	if d, ok := tryCluster(cur.clone(), names); ok {
		return d, true
	}
	if d, ok := tryElement(cur.clone(), names); ok {
		return d, true
	}
	if d, ok := tryDatum(cur.clone(), names); ok {
		return d, true
	}
	if d, ok := tryThreat(cur.clone(), names); ok {
		return d, true
	}
	if d, ok := tryMeasure(cur.clone(), names); ok {
		return d, true
	}
	if d, ok := tryAlias(cur.clone(), names); ok {
		return d, true
	}
	return nil, false
}

func tryNote(cur *cursor, names []string) (*Directive, bool) {
	d := &Directive{Kind: DirNote, Names: names}
	if w := cur.word(); colorWords[w] {
		d.Color, d.HasColor = w, true
		cur.pos++
	}
	if !cur.acceptWord("note") {
		return nil, false
	}
	if cur.acceptWord("in") {
		parent, ok := cur.quoted()
		if !ok {
			return nil, false
		}
		d.Parent, d.HasParent = parent, true
	}
	if cur.acceptWord("attached") {
		if !cur.acceptWord("to") {
			return nil, false
		}
		targets, ok := cur.nameList()
		if !ok {
			return nil, false
		}
		d.Targets, d.HasTargets = targets, true
	}
	d.Label, d.HasLabel, d.Description, d.HasDescription = parseLabelAndDesc(cur)
	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func tryCluster(cur *cursor, names []string) (*Directive, bool) {
	if !cur.acceptWord("cluster") {
		return nil, false
	}
	d := &Directive{Kind: DirCluster, Names: names}
	if cur.acceptWord("in") {
		parent, ok := cur.quoted()
		if !ok {
			return nil, false
		}
		d.Parent, d.HasParent = parent, true
	}
	d.Label, d.HasLabel, d.Description, d.HasDescription = parseLabelAndDesc(cur)
	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func tryElement(cur *cursor, names []string) (*Directive, bool) {
	profile, ok := parseProfile(cur.word())
	if !ok {
		return nil, false
	}
	cur.pos++
	cur.acceptWord("box")
	role, ok := parseRole(cur.word())
	if !ok {
		return nil, false
	}
	cur.pos++
	d := &Directive{Kind: DirElement, Names: names, Profile: profile, Role: role}
	if cur.acceptWord("in") {
		parent, ok := cur.quoted()
		if !ok {
			return nil, false
		}
		d.Parent, d.HasParent = parent, true
	}
	d.Label, d.HasLabel, d.Description, d.HasDescription = parseLabelAndDesc(cur)
	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func tryDatum(cur *cursor, names []string) (*Directive, bool) {
	cls, ok := parseClassification(cur.word())
	if !ok {
		return nil, false
	}
	cur.pos++
	if !cur.acceptWord("datum", "data") {
		return nil, false
	}
	d := &Directive{Kind: DirDatum, Names: names, Classification: cls}
	d.Label, d.HasLabel, d.Description, d.HasDescription = parseLabelAndDesc(cur)
	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func tryThreat(cur *cursor, names []string) (*Directive, bool) {
	var impact Impact
	var probability Probability
	var gotImpact, gotProbability bool

	for i := 0; i < 2 && (!gotImpact || !gotProbability); i++ {
		if i > 0 && cur.word() == "," {
			cur.pos++
		}
		s, ok := parseScale(cur.word())
		if !ok {
			break
		}
		save := cur.pos
		cur.pos++
		if !gotImpact && cur.word() == "impact" {
			cur.pos++
			impact, gotImpact = s, true
			continue
		}
		if !gotProbability && cur.word() == "probability" {
			cur.pos++
			probability, gotProbability = s, true
			continue
		}
		cur.pos = save
		break
	}
	if !gotImpact || !gotProbability {
		return nil, false
	}
	if !cur.acceptWord("threat") {
		return nil, false
	}
	d := &Directive{Kind: DirThreat, Names: names, Impact: impact, Probability: probability}
	d.Label, d.HasLabel, d.Description, d.HasDescription = parseLabelAndDesc(cur)
	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func tryMeasure(cur *cursor, names []string) (*Directive, bool) {
	capability, ok := parseCapability(cur.word())
	if !ok {
		return nil, false
	}
	cur.pos++
	if !cur.acceptWord("measure") {
		return nil, false
	}
	if !cur.acceptWord("against") {
		return nil, false
	}
	threatRefs, ok := cur.nameList()
	if !ok {
		return nil, false
	}
	d := &Directive{Kind: DirMeasure, Names: names, Capability: capability, ThreatRefs: threatRefs}
	d.Label, d.HasLabel, d.Description, d.HasDescription = parseLabelAndDesc(cur)
	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func tryAlias(cur *cursor, names []string) (*Directive, bool) {
	targets, ok := cur.nameList()
	if !ok || cur.remaining() != 0 {
		return nil, false
	}
	return &Directive{Kind: DirAlias, Names: names, Targets: targets}, true
}

func parseModificationBody(cur *cursor, names []string) (*Directive, bool) {
	d := &Directive{Kind: DirModification, Names: names}

	if cur.word() == "described" {
		save := cur.pos
		cur.pos++
		if cur.acceptWord("as") {
			if desc, ok := cur.quoted(); ok && cur.remaining() == 0 {
				d.Description, d.HasDescription, d.ModAttr = desc, true, "description"
				return d, true
			}
		}
		cur.pos = save
	}

	if cur.word() == "as" {
		save := cur.pos
		cur.pos++
		if label, ok := cur.quoted(); ok && cur.remaining() == 0 {
			d.Label, d.HasLabel, d.ModAttr = label, true, "label"
			return d, true
		}
		cur.pos = save
	}

	if colorWords[cur.word()] {
		save := cur.pos
		color := cur.word()
		cur.pos++
		if cur.remaining() == 0 {
			d.Color, d.ModAttr = color, "color"
			return d, true
		}
		cur.pos = save
	}

	if profile, ok := parseProfile(cur.word()); ok {
		save := cur.pos
		cur.pos++
		cur.acceptWord("box")
		if role, ok := parseRole(cur.word()); ok {
			cur.pos++
			if cur.remaining() == 0 {
				d.Profile, d.Role, d.ModAttr = profile, role, "profile_role"
				return d, true
			}
		}
		cur.pos = save
	}

	if cls, ok := parseClassification(cur.word()); ok {
		save := cur.pos
		cur.pos++
		cur.acceptWord("datum", "data")
		if cur.remaining() == 0 {
			d.Classification, d.ModAttr = cls, "classification"
			return d, true
		}
		cur.pos = save
	}

	{
		save := cur.pos
		var impact, probability scale
		var gotImpact, gotProbability bool
		for i := 0; i < 2 && (!gotImpact || !gotProbability); i++ {
			s, ok := parseScale(cur.word())
			if !ok {
				break
			}
			inner := cur.pos
			cur.pos++
			if !gotImpact && cur.word() == "impact" {
				cur.pos++
				impact, gotImpact = s, true
				continue
			}
			if !gotProbability && cur.word() == "probability" {
				cur.pos++
				probability, gotProbability = s, true
				continue
			}
			cur.pos = inner
			break
		}
		if gotImpact && gotProbability && cur.remaining() == 0 {
			d.Impact, d.Probability, d.ModAttr = impact, probability, "impact_probability"
			return d, true
		}
		cur.pos = save
	}

	if capability, ok := parseCapability(cur.word()); ok {
		save := cur.pos
		cur.pos++
		if cur.remaining() == 0 {
			d.Capability, d.ModAttr = capability, "capability"
			return d, true
		}
		cur.pos = save
	}

	return nil, false
}

func parseActionWord(cur *cursor) (Action, bool) {
	switch cur.word() {
	case "process", "processes":
		cur.pos++
		return ActionProcess, true
	case "store", "stores":
		cur.pos++
		return ActionStore, true
	case "send", "sends":
		cur.pos++
		return ActionSend, true
	case "receive", "receives":
		cur.pos++
		return ActionReceive, true
	}
	return 0, false
}

func parseInteraction(cur *cursor) (*Directive, bool) {
	if w := cur.word(); isAllDigits(w) {
		cur.pos++
	}
	subjects, ok := cur.nameList()
	if !ok {
		return nil, false
	}
	action, ok := parseActionWord(cur)
	if !ok {
		return nil, false
	}
	data, ok := cur.nameList()
	if !ok {
		return nil, false
	}

	d := &Directive{Kind: DirInteraction, Names: subjects, Action: action, Data: data}

	switch action {
	case ActionSend:
		if !cur.acceptWord("to") {
			return nil, false
		}
		targets, ok := cur.nameList()
		if !ok {
			return nil, false
		}
		d.Targets = targets
	case ActionReceive:
		if !cur.acceptWord("from") {
			return nil, false
		}
		targets, ok := cur.nameList()
		if !ok {
			return nil, false
		}
		d.Targets = targets
	}

	if cur.acceptWord("with") {
		if !cur.acceptWord("notes") {
			return nil, false
		}
		notes, ok := cur.nameList()
		if !ok {
			return nil, false
		}
		d.Notes = notes
	}

	if cur.remaining() != 0 {
		return nil, false
	}
	return d, true
}

func parsePairList(cur *cursor) ([][2]string, bool) {
	var pairs [][2]string
	for {
		a, ok := cur.quoted()
		if !ok {
			break
		}
		if !cur.acceptWord("and") {
			return nil, false
		}
		b, ok := cur.quoted()
		if !ok {
			return nil, false
		}
		pairs = append(pairs, [2]string{a, b})
		if cur.word() == "," {
			cur.pos++
			continue
		}
		break
	}
	if len(pairs) == 0 {
		return nil, false
	}
	return pairs, true
}

func parseAffected(cur *cursor) (affectedSpec, bool) {
	var spec affectedSpec
	cur.acceptWord("to", "on")

	if cur.word() == "all" {
		probe := cur.clone()
		probe.pos++
		if probe.word() == "data" {
			probe.pos++
			spec.dataAll = true
			if probe.word() == "except" {
				probe.pos++
				if names, ok := probe.nameList(); ok {
					spec.dataExcept = names
				}
			}
			cur.restore(probe)
		} else {
			names, ok := cur.nameList()
			if !ok {
				return spec, false
			}
			spec.dataExplicit = names
		}
	} else {
		names, ok := cur.nameList()
		if !ok {
			return spec, false
		}
		spec.dataExplicit = names
	}

	switch cur.word() {
	case "between":
		cur.pos++
		if cur.word() == "all" {
			cur.pos++
			cur.acceptWord("elements")
			spec.elemMode = selectAllElements
			if cur.word() == "except" {
				cur.pos++
				if cur.word() == "between" {
					cur.pos++
					if pairs, ok := parsePairList(cur); ok {
						spec.exceptPairs = pairs
					}
				} else if ex, ok := cur.nameList(); ok {
					spec.exceptElems = ex
				}
			}
			break
		}
		pairs, ok := parsePairList(cur)
		if !ok {
			return spec, false
		}
		spec.elemMode = selectBetween
		spec.pairs = pairs
	case "within":
		cur.pos++
		names, ok := cur.nameList()
		if !ok {
			return spec, false
		}
		spec.elemMode = selectWithin
		spec.elems = names
		if cur.word() == "except" {
			cur.pos++
			if ex, ok := cur.nameList(); ok {
				spec.exceptElems = ex
			}
		}
	case "all":
		cur.pos++
		if !cur.acceptWord("elements") {
			return spec, false
		}
		spec.elemMode = selectAllElements
		if cur.word() == "except" {
			cur.pos++
			if cur.word() == "between" {
				cur.pos++
				if pairs, ok := parsePairList(cur); ok {
					spec.exceptPairs = pairs
				}
			} else if ex, ok := cur.nameList(); ok {
				spec.exceptElems = ex
			}
		}
	default:
		names, ok := cur.nameList()
		if !ok {
			return spec, false
		}
		spec.elemMode = selectExplicit
		spec.elems = names
		if cur.word() == "except" {
			cur.pos++
			if ex, ok := cur.nameList(); ok {
				spec.exceptElems = ex
			}
		}
	}

	return spec, true
}

func parseMitigation(cur *cursor) (*Directive, bool) {
	name, ok := cur.quoted()
	if !ok {
		return nil, false
	}

	var imperative Imperative = ImperativeNone
	if imp, ok := parseImperative(cur.word()); ok {
		cur.pos++
		imperative = imp
		if !cur.acceptWord("be") {
			return nil, false
		}
	} else if cur.acceptWord("has", "have") {
		if !cur.acceptWord("been") {
			return nil, false
		}
	} else {
		return nil, false
	}

	verb := cur.word()
	if verb != "implemented" && verb != "verified" {
		return nil, false
	}
	cur.pos++

	affected, ok := parseAffected(cur)
	if !ok {
		return nil, false
	}
	if cur.remaining() != 0 {
		return nil, false
	}

	return &Directive{
		Kind:       DirMitigation,
		Subject:    name,
		Imperative: imperative,
		HasBeenTo:  verb,
		Affected:   affected,
	}, true
}

func parseRisk(cur *cursor) (*Directive, bool) {
	name, ok := cur.quoted()
	if !ok {
		return nil, false
	}
	if !cur.acceptWord("applies", "apply") {
		return nil, false
	}
	affected, ok := parseAffected(cur)
	if !ok {
		return nil, false
	}
	if cur.remaining() != 0 {
		return nil, false
	}
	return &Directive{Kind: DirRisk, Subject: name, Affected: affected}, true
}
