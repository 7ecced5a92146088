package tml

// Cluster groups Elements and Notes into a nested namespace. Level 1 is the
// root; a Cluster's level is always 1 + its parent's.
type Cluster struct {
	Name        string
	Label       string
	Description string
	Level       int
	Parent      *Cluster
	Children    *orderedMap[*Cluster]
}

func newCluster(name string) *Cluster {
	return &Cluster{
		Name:     name,
		Label:    name,
		Level:    1,
		Children: newOrderedMap[*Cluster](),
	}
}

func (c *Cluster) reparent(parent *Cluster) {
	c.Parent = parent
	if parent == nil {
		c.Level = 1
	} else {
		c.Level = parent.Level + 1
	}
	for _, child := range c.Children.values {
		child.reparent(c)
	}
}

// Element is an agent, service, or storage node that can appear as an
// Interaction source or target.
type Element struct {
	Name        string
	Label       string
	Description string
	Profile     Profile
	Role        Role
	Parent      *Cluster
	Active      bool
}

func newElement(name string) *Element {
	return &Element{Name: name, Label: name}
}

// Datum is a named piece of data with a classification level.
type Datum struct {
	Name           string
	Label          string
	Description    string
	Classification Classification
	Active         bool
}

func newDatum(name string) *Datum {
	return &Datum{Name: name, Label: name}
}

// Threat is a potential risk characterized by impact and probability; it
// becomes Active once used in a risk directive against some interaction.
type Threat struct {
	Name                string
	Label               string
	Description         string
	Impact              Impact
	Probability         Probability
	ApplicableMeasures  *orderedMap[*Measure]
	Active              bool
}

func newThreat(name string) *Threat {
	return &Threat{Name: name, Label: name, ApplicableMeasures: newOrderedMap[*Measure]()}
}

// PotentialRisk is the Threat's rating computed with no mitigations applied
// and a neutral (restricted) classification — used only for ordering (§4.6).
func (t *Threat) PotentialRisk() Rating {
	sum := int(t.Impact) + int(t.Probability) + int(Restricted)
	return ratingForSum(sum)
}

// Measure is a security control that can mitigate one or more Threats.
type Measure struct {
	Name              string
	Label             string
	Description       string
	Capability        Capability
	MitigableThreats  *orderedMap[*Threat]
	Active            bool
}

func newMeasure(name string) *Measure {
	return &Measure{Name: name, Label: name, MitigableThreats: newOrderedMap[*Threat]()}
}

// Note is a free-form annotation optionally attached to a set of Elements.
type Note struct {
	Name        string
	Label       string
	Color       string
	Description string
	Parent      *Cluster
	Targets     *orderedMap[*Element]
}

func newNote(name string) *Note {
	return &Note{Name: name, Label: name, Targets: newOrderedMap[*Element]()}
}

// Mitigation instantiates a Measure against one (interaction, datum) pair.
type Mitigation struct {
	Measure    *Measure
	Imperative Imperative
	Status     Status
}

// Risk instantiates a Threat against one (interaction, datum) pair. Its
// rating is computed on demand from the shared Mitigations map (§4.5).
type Risk struct {
	Threat        *Threat
	AffectedDatum *Datum
	mitigations   *orderedMap[*Mitigation]
}

// Rating computes this Risk's rating from its threat, datum classification,
// and any verified applicable mitigations (§4.5).
func (r *Risk) Rating() Rating {
	sum := int(r.Threat.Impact) + int(r.Threat.Probability) + int(r.AffectedDatum.Classification)
	if r.mitigations != nil {
		for _, m := range r.mitigations.values {
			if m.Status != Verified {
				continue
			}
			if _, ok := r.Threat.ApplicableMeasures.Get(m.Measure.Name); !ok {
				continue
			}
			sum -= int(m.Measure.Capability)
		}
	}
	return ratingForSum(sum)
}

// Interaction is a directed action between elements, carrying the data
// flowing in it and the risks/mitigations that have accumulated against it.
type Interaction struct {
	Ordinal int
	Action  Action
	Sources *orderedMap[*Element]
	Targets *orderedMap[*Element]
	Data    *orderedMap[*Datum]

	// Risks and Mitigations are keyed by datum name, then by threat/measure
	// name respectively, per §3.
	Risks       map[string]*orderedMap[*Risk]
	Mitigations map[string]*orderedMap[*Mitigation]

	Notes []string
}

func newInteraction(ordinal int, action Action) *Interaction {
	return &Interaction{
		Ordinal:     ordinal,
		Action:      action,
		Sources:     newOrderedMap[*Element](),
		Targets:     newOrderedMap[*Element](),
		Data:        newOrderedMap[*Datum](),
		Risks:       map[string]*orderedMap[*Risk]{},
		Mitigations: map[string]*orderedMap[*Mitigation]{},
	}
}

// mitigationsFor returns (creating if necessary) the mitigations map for a
// given datum name, which a Risk shares a reference to (§4.4).
func (i *Interaction) mitigationsFor(datumName string) *orderedMap[*Mitigation] {
	m, ok := i.Mitigations[datumName]
	if !ok {
		m = newOrderedMap[*Mitigation]()
		i.Mitigations[datumName] = m
	}
	return m
}

func (i *Interaction) risksFor(datumName string) *orderedMap[*Risk] {
	r, ok := i.Risks[datumName]
	if !ok {
		r = newOrderedMap[*Risk]()
		i.Risks[datumName] = r
	}
	return r
}

// HighestRisk is the maximum rating over all of this interaction's risks, or
// RatingUnknown if it has none (§4.5).
func (i *Interaction) HighestRisk() Rating {
	best := RatingUnknown
	for _, risks := range i.Risks {
		for _, r := range risks.values {
			if rating := r.Rating(); rating > best {
				best = rating
			}
		}
	}
	return best
}

// EntirelyAffectedBy reports whether threatName is present in every datum's
// risk set for this interaction (§4.5). An interaction with no data never
// satisfies this.
func (i *Interaction) EntirelyAffectedBy(threatName string) bool {
	if i.Data.Len() == 0 {
		return false
	}
	for _, d := range i.Data.values {
		risks, ok := i.Risks[d.Name]
		if !ok {
			return false
		}
		if _, ok := risks.Get(threatName); !ok {
			return false
		}
	}
	return true
}

// sourceTargetPairs returns every (source, target) name pair implied by this
// interaction, used by the affected-set calculus (§4.4).
func (i *Interaction) sourceTargetPairs() [][2]string {
	pairs := make([][2]string, 0, i.Sources.Len()*i.Targets.Len())
	for _, s := range i.Sources.values {
		for _, t := range i.Targets.values {
			pairs = append(pairs, [2]string{s.Name, t.Name})
		}
	}
	return pairs
}
