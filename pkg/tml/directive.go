package tml

// DirectiveKind tags which grammar alternative (§4.1) a Directive matched.
type DirectiveKind int

const (
	DirInclude DirectiveKind = iota
	DirAlias
	DirNote
	DirCluster
	DirElement
	DirDatum
	DirThreat
	DirMeasure
	DirModification
	DirInteraction
	DirMitigation
	DirRisk
)

// elementSelectorMode identifies which shape an AFFECTED_COMPONENTS element
// clause took (§4.4).
type elementSelectorMode int

const (
	selectExplicit elementSelectorMode = iota
	selectBetween
	selectWithin
	selectAllElements
)

// affectedSpec is the parsed AFFECTED_COMPONENTS clause shared by mitigation
// and risk directives (§4.4).
type affectedSpec struct {
	dataAll      bool
	dataExcept   []string
	dataExplicit []string

	elemMode      elementSelectorMode
	pairs         [][2]string // for selectBetween
	elems         []string    // for selectWithin / selectExplicit / except-names
	exceptElems   []string
	exceptPairs   [][2]string
}

// Directive is a plain attribute bundle produced by the grammar layer.
// Downstream code reads fields by Kind, mirroring the "attribute presence"
// dispatch described in §4.1/§9 but made explicit via a tagged enum.
type Directive struct {
	Kind       DirectiveKind
	Start, End int

	// include
	Path string

	// alias / note / cluster / element / datum / threat / measure /
	// modification: the subject name list this directive declares or
	// modifies.
	Names []string

	Parent         string
	HasParent      bool
	Label          string
	HasLabel       bool
	Description    string
	HasDescription bool

	// note
	Color      string
	HasColor   bool
	Targets    []string
	HasTargets bool

	// element
	Profile Profile
	Role    Role

	// datum
	Classification Classification

	// threat
	Impact      Impact
	Probability Probability

	// measure
	Capability Capability
	ThreatRefs []string

	// modification: which attribute group is being replaced.
	ModAttr string

	// interaction
	Action Action
	Data   []string
	Notes  []string

	// mitigation / risk
	Subject    string
	Imperative Imperative
	HasBeenTo  string // "implemented" or "verified" for the has/have-been form
	Affected   affectedSpec
}
