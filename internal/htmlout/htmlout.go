// Package htmlout assembles the self-contained HTML artifact (diagram +
// cross-linked tables) the compiler emits by default, adapted from
// threatcl's pkg/spec.RenderMarkdown/cmd/hcltm/dashboard.go template
// pipeline — html/template in place of text/template, since the output here
// is trusted, compiler-generated markup rather than free-form Markdown.
package htmlout

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strings"

	"github.com/elespike/dfdone/pkg/tml"
)

// Section names mirror spec.md §6's -i/-x include set.
const (
	SectionData         = "data"
	SectionDiagram      = "diagram"
	SectionInteractions = "interactions"
	SectionThreats      = "threats"
	SectionMeasures     = "measures"
)

// DefaultSections is the full include set in its documented order.
var DefaultSections = []string{SectionData, SectionDiagram, SectionInteractions, SectionThreats, SectionMeasures}

// Options controls which sections render and the presentation toggles from
// spec.md §6.
type Options struct {
	Sections  []string
	Active    bool
	NoNumbers bool
	NoCSS     bool
	NoAnchors bool
	CSSFile   string
	DiagramSVG template.HTML
}

func includes(opts Options, section string) bool {
	for _, s := range opts.Sections {
		if s == section {
			return true
		}
	}
	return false
}

type tableRow struct {
	Anchor string
	Cells  []template.HTML
}

type pageData struct {
	Title        string
	CSS          template.CSS
	ShowData     bool
	ShowDiagram  bool
	ShowInteract bool
	ShowThreats  bool
	ShowMeasures bool
	NoNumbers    bool
	Diagram      template.HTML
	DataRows     []tableRow
	ThreatRows   []tableRow
	MeasureRows  []tableRow
	InteractRows []tableRow
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .CSS}}<style>{{.CSS}}</style>{{end}}
</head>
<body>
<h1>{{.Title}}</h1>
{{if .ShowDiagram}}<section id="diagram">{{.Diagram}}</section>{{end}}
{{if .ShowData}}
<section id="data">
<h2>Data</h2>
<table><tr><th>#</th><th>Name</th><th>Classification</th><th>Description</th></tr>
{{range $i, $r := .DataRows}}<tr id="{{$r.Anchor}}">{{if not $.NoNumbers}}<td>{{inc $i}}</td>{{end}}{{range $r.Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</section>
{{end}}
{{if .ShowThreats}}
<section id="threats">
<h2>Threats</h2>
<table><tr><th>#</th><th>Name</th><th>Potential Risk</th><th>Description</th></tr>
{{range $i, $r := .ThreatRows}}<tr id="{{$r.Anchor}}">{{if not $.NoNumbers}}<td>{{inc $i}}</td>{{end}}{{range $r.Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</section>
{{end}}
{{if .ShowMeasures}}
<section id="measures">
<h2>Measures</h2>
<table><tr><th>#</th><th>Name</th><th>Capability</th><th>Description</th></tr>
{{range $i, $r := .MeasureRows}}<tr id="{{$r.Anchor}}">{{if not $.NoNumbers}}<td>{{inc $i}}</td>{{end}}{{range $r.Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</section>
{{end}}
{{if .ShowInteract}}
<section id="interactions">
<h2>Interactions</h2>
<table><tr><th>#</th><th>Action</th><th>Sources</th><th>Targets</th><th>Data</th><th>Highest risk</th></tr>
{{range $i, $r := .InteractRows}}<tr id="{{$r.Anchor}}">{{if not $.NoNumbers}}<td>{{inc $i}}</td>{{end}}{{range $r.Cells}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</section>
{{end}}
</body>
</html>
`

func parseTemplate() (*template.Template, error) {
	return template.New("page").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(pageTemplate)
}

func anchorFor(kind, name string) string {
	safe := regexp.MustCompile(`[^a-zA-Z0-9_-]+`).ReplaceAllString(name, "-")
	return fmt.Sprintf("%s-%s", kind, strings.ToLower(safe))
}

func crossLink(kind, name string) template.HTML {
	return template.HTML(fmt.Sprintf(`<a href="#%s">%s</a>`, anchorFor(kind, name), template.HTMLEscapeString(name)))
}

// Render assembles the full HTML document for r, per opts. Compilation
// warnings never block artifact emission (§7); an error here (unreadable
// CSS file, template failure) returns nil bytes.
func Render(r tml.Renderer, title string, opts Options) ([]byte, error) {
	if len(opts.Sections) == 0 {
		opts.Sections = DefaultSections
	}

	pd := pageData{
		Title:        title,
		ShowData:     includes(opts, SectionData),
		ShowDiagram:  includes(opts, SectionDiagram),
		ShowInteract: includes(opts, SectionInteractions),
		ShowThreats:  includes(opts, SectionThreats),
		ShowMeasures: includes(opts, SectionMeasures),
		NoNumbers:    opts.NoNumbers,
		Diagram:      opts.DiagramSVG,
	}

	data := r.Data()
	if opts.Active {
		data = r.ActiveData()
	}
	for _, d := range data {
		pd.DataRows = append(pd.DataRows, tableRow{
			Anchor: anchorFor("data", d.Name),
			Cells: []template.HTML{
				template.HTML(template.HTMLEscapeString(d.Label)),
				template.HTML(template.HTMLEscapeString(d.Classification.String())),
				template.HTML(template.HTMLEscapeString(d.Description)),
			},
		})
	}

	threats := r.Threats()
	if opts.Active {
		threats = r.ActiveThreats()
	}
	for _, t := range threats {
		pd.ThreatRows = append(pd.ThreatRows, tableRow{
			Anchor: anchorFor("threat", t.Name),
			Cells: []template.HTML{
				template.HTML(template.HTMLEscapeString(t.Label)),
				template.HTML(template.HTMLEscapeString(t.PotentialRisk().String())),
				template.HTML(template.HTMLEscapeString(t.Description)),
			},
		})
	}

	measures := r.Measures()
	if opts.Active {
		measures = r.ActiveMeasures()
	}
	for _, m := range measures {
		pd.MeasureRows = append(pd.MeasureRows, tableRow{
			Anchor: anchorFor("measure", m.Name),
			Cells: []template.HTML{
				template.HTML(template.HTMLEscapeString(m.Label)),
				template.HTML(template.HTMLEscapeString(m.Capability.String())),
				template.HTML(template.HTMLEscapeString(m.Description)),
			},
		})
	}

	for idx, in := range r.Interactions() {
		var sources, targets, datum []string
		for _, s := range in.Sources.Values() {
			sources = append(sources, string(crossLink("element", s.Name)))
		}
		for _, t := range in.Targets.Values() {
			targets = append(targets, string(crossLink("element", t.Name)))
		}
		for _, d := range in.Data.Values() {
			datum = append(datum, string(crossLink("data", d.Name)))
		}
		pd.InteractRows = append(pd.InteractRows, tableRow{
			Anchor: anchorFor("interaction", fmt.Sprintf("%d", idx)),
			Cells: []template.HTML{
				template.HTML(template.HTMLEscapeString(in.Action.String())),
				template.HTML(strings.Join(sources, ", ")),
				template.HTML(strings.Join(targets, ", ")),
				template.HTML(strings.Join(datum, ", ")),
				template.HTML(template.HTMLEscapeString(in.HighestRisk().String())),
			},
		})
	}

	if !opts.NoCSS && opts.CSSFile != "" {
		css, err := os.ReadFile(opts.CSSFile)
		if err != nil {
			return nil, fmt.Errorf("htmlout: reading css file: %w", err)
		}
		pd.CSS = template.CSS(css)
	}

	tmpl, err := parseTemplate()
	if err != nil {
		return nil, fmt.Errorf("htmlout: parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pd); err != nil {
		return nil, fmt.Errorf("htmlout: executing template: %w", err)
	}

	out := buf.Bytes()
	if opts.NoAnchors {
		out = stripAnchors(out)
	}
	return out, nil
}

var idAttrRe = regexp.MustCompile(`\s+id="[^"]*"`)
var hrefAttrRe = regexp.MustCompile(`<a href="#[^"]*">([^<]*)</a>`)

// stripAnchors removes id attributes and flattens cross-reference links
// down to their plain text, per spec.md §6's --no-anchors toggle.
func stripAnchors(html []byte) []byte {
	s := idAttrRe.ReplaceAll(html, nil)
	s = hrefAttrRe.ReplaceAll(s, []byte("$1"))
	return s
}
