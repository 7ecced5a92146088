// Package diagram renders a tml.Renderer snapshot to a data-flow diagram,
// adapted from threatcl's pkg/spec/dfd.go: trust boundaries hold process,
// external-entity, and data-store nodes; interactions become flows between
// them.
package diagram

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"

	"github.com/goccy/go-graphviz"
	dfd "github.com/marqeta/go-dfd/dfd"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"

	"github.com/elespike/dfdone/pkg/tml"
)

// Format selects the output encoding for Render.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Options mirror tml.DiagramOptions plus the output format (spec.md §6).
// Render uses only Format and Seed: WrapLabels, CombineEdges and the four
// attribute maps are carried but not applied to the graph, and repeated
// flows between the same source and target are always drawn as one edge.
type Options struct {
	Format       Format
	WrapLabels   int
	CombineEdges bool
	GraphAttrs   map[string]string
	ClusterAttrs map[string]string
	NodeAttrs    map[string]string
	EdgeAttrs    map[string]string
	// Seed, when non-empty, shuffles sibling node order for layout variety
	// (spec.md §6 -s/--seed); the same seed always produces the same order.
	Seed string
}

// seededRand hashes a seed string with fnv and feeds it to x/exp/rand,
// giving -s/--seed deterministic-but-arbitrary reshuffling of sibling
// element order without depending on the string's numeric value.
func seededRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return rand.New(rand.NewSource(h.Sum64()))
}

// shuffleElements Fisher-Yates shuffles a copy of elems when seed is set,
// leaving discovery order untouched when it isn't.
func shuffleElements(elems []*tml.Element, seed string) []*tml.Element {
	if seed == "" {
		return elems
	}
	out := append([]*tml.Element(nil), elems...)
	r := seededRand(seed)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func newDfdNode(role tml.Role, name string) (graph.Node, error) {
	var err error
	switch role {
	case tml.RoleAgent:
		n := dfd.NewExternalService(name)
		err = n.SetAttribute(encoding.Attribute{Key: "style", Value: "filled"})
		return n, err
	case tml.RoleStorage:
		n := dfd.NewDataStore(name)
		err = n.SetAttribute(encoding.Attribute{Key: "style", Value: "filled"})
		return n, err
	default: // RoleService
		n := dfd.NewProcess(name)
		err = n.SetAttribute(encoding.Attribute{Key: "style", Value: "filled"})
		return n, err
	}
}

// buildDOT walks the renderer's (active or full) elements/clusters/
// interactions and assembles a DFD graph the way generateDfdDotFile does in
// the teacher, generalized from threatcl's static HCL blocks to tml's
// dynamically discovered component graph.
func buildDOT(name string, elements []*tml.Element, clusters []*tml.Cluster, interactions []*tml.Interaction, active bool) (string, error) {
	g := dfd.InitializeDFD(name)

	zones := map[string]*dfd.TrustBoundary{}
	nodeByName := map[string]graph.Node{}

	var ensureZone func(c *tml.Cluster) *dfd.TrustBoundary
	ensureZone = func(c *tml.Cluster) *dfd.TrustBoundary {
		if z, ok := zones[c.Name]; ok {
			return z
		}
		if c.Parent == nil {
			z, err := g.AddTrustBoundary(c.Label, "red")
			if err != nil {
				return nil
			}
			zones[c.Name] = z
			return z
		}
		parentZone := ensureZone(c.Parent)
		if parentZone == nil {
			return nil
		}
		z, err := parentZone.AddTrustBoundary(c.Label, "red")
		if err != nil {
			return nil
		}
		zones[c.Name] = z
		return z
	}

	for _, c := range clusters {
		ensureZone(c)
	}

	for _, e := range elements {
		if active && !e.Active {
			continue
		}
		node, err := newDfdNode(e.Role, e.Label)
		if err != nil {
			return "", fmt.Errorf("diagram: element %q: %w", e.Name, err)
		}
		nodeByName[e.Name] = node
		if e.Parent != nil {
			if z, ok := zones[e.Parent.Name]; ok {
				z.AddNodeElem(node)
				continue
			}
		}
		g.AddNodeElem(node)
	}

	seenEdges := map[[2]string]bool{}
	for _, in := range interactions {
		for _, sname := range in.Sources.Keys() {
			for _, tname := range in.Targets.Keys() {
				if sname == tname && in.Sources.Len() == in.Targets.Len() && in.Sources.Len() == 1 {
					continue
				}
				key := [2]string{sname, tname}
				if seenEdges[key] {
					continue
				}
				seenEdges[key] = true
				from, fok := nodeByName[sname]
				to, tok := nodeByName[tname]
				if !fok || !tok {
					continue
				}
				label := in.Action.String()
				for _, d := range in.Data.Values() {
					label += ": " + d.Label
				}
				g.AddFlow(from, to, label)
			}
		}
	}

	client := dfd.NewClient(name)
	return client.DFDToDOT(g)
}

// Render produces diagram bytes in opts.Format from a finalized renderer
// snapshot. The "all" vs "active" choice mirrors spec.md §6's -a flag.
func Render(r tml.Renderer, modelName string, active bool, opts Options) ([]byte, error) {
	var elems []*tml.Element
	var clusters []*tml.Cluster
	if active {
		elems, clusters = r.ActiveElements(), r.ActiveClusters()
	} else {
		elems, clusters = r.Elements(), r.Clusters()
	}
	elems = shuffleElements(elems, opts.Seed)

	dot, err := buildDOT(modelName, elems, clusters, r.Interactions(), active)
	if err != nil {
		return nil, err
	}

	if opts.Format == FormatDOT || opts.Format == "" {
		return []byte(dot), nil
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("diagram: parse dot: %w", err)
	}
	gv := graphviz.New()

	tmp, err := os.CreateTemp("", "tml-diagram-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	var gvFormat graphviz.Format
	switch opts.Format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("diagram: unsupported format %q", opts.Format)
	}

	if err := gv.RenderFilename(g, gvFormat, tmp.Name()); err != nil {
		return nil, fmt.Errorf("diagram: render: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(tmp)
}
