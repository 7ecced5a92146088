package tml

// DiagramOptions are the defaults an external diagram renderer starts from
// before CLI flags override them (§6 get_diagram_options()).
type DiagramOptions struct {
	WrapLabels   int
	CombineEdges bool
	NoNumbers    bool
	Seed         string
	GraphAttrs   map[string]string
	ClusterAttrs map[string]string
	NodeAttrs    map[string]string
	EdgeAttrs    map[string]string
}

// Renderer is the immutable snapshot external collaborators (diagram/table
// renderers) consume. Renderers must not mutate anything reachable through
// it (§6).
type Renderer interface {
	Clusters() []*Cluster
	Elements() []*Element
	Notes() []*Note
	Data() []*Datum
	Threats() []*Threat
	Measures() []*Measure
	Interactions() []*Interaction

	ActiveClusters() []*Cluster
	ActiveElements() []*Element
	ActiveNotes() []*Note
	ActiveData() []*Datum
	ActiveThreats() []*Threat
	ActiveMeasures() []*Measure

	GetDiagramOptions() DiagramOptions
}

// view is the Result's Renderer implementation: a thin read-only wrapper
// over a finalized Store and its ActiveView.
type view struct {
	store  *Store
	active *ActiveView
	cfg    *CompilerConfig
}

// NewRenderer wraps a finalized Result for consumption by external
// collaborators. cfg may be nil, in which case diagram defaults are used.
func (r *Result) NewRenderer(cfg *CompilerConfig) Renderer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &view{store: r.Store, active: r.Active, cfg: cfg}
}

func (v *view) Clusters() []*Cluster         { return v.store.Clusters.Values() }
func (v *view) Elements() []*Element         { return v.store.Elements.Values() }
func (v *view) Notes() []*Note               { return v.store.Notes.Values() }
func (v *view) Data() []*Datum               { return v.store.Data.Values() }
func (v *view) Threats() []*Threat           { return v.store.Threats.Values() }
func (v *view) Measures() []*Measure         { return v.store.Measures.Values() }
func (v *view) Interactions() []*Interaction { return v.store.Interactions }

func (v *view) ActiveClusters() []*Cluster { return v.active.Clusters }
func (v *view) ActiveElements() []*Element { return v.active.Elements }
func (v *view) ActiveNotes() []*Note       { return v.active.Notes }
func (v *view) ActiveData() []*Datum       { return v.active.Data }
func (v *view) ActiveThreats() []*Threat   { return v.active.Threats }
func (v *view) ActiveMeasures() []*Measure { return v.active.Measures }

func (v *view) GetDiagramOptions() DiagramOptions {
	return DiagramOptions{
		WrapLabels:   0,
		CombineEdges: v.cfg.CombineEdges,
		NoNumbers:    v.cfg.NoNumbers,
		Seed:         v.cfg.Seed,
		GraphAttrs:   v.cfg.GraphAttrs,
		ClusterAttrs: v.cfg.ClusterAttrs,
		NodeAttrs:    v.cfg.NodeAttrs,
		EdgeAttrs:    v.cfg.EdgeAttrs,
	}
}
