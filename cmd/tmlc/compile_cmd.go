package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/elespike/dfdone/internal/diagnostics"
	"github.com/elespike/dfdone/internal/diagram"
	"github.com/elespike/dfdone/internal/htmlout"
	"github.com/elespike/dfdone/pkg/tml"
)

// CompileCommand implements the single flat flag surface of spec.md §6: the
// compiler's entire CLI is one command, the way the teacher splits
// functionality across cmd/hcltm/*.go subcommands — generalized here to one
// because spec.md has one pipeline, not many.
type CompileCommand struct {
	*GlobalCmdOptions

	flagInclude      stringSliceFlag
	flagExclude      stringSliceFlag
	flagActive       bool
	flagCheckFile    bool
	flagDiagram      string
	flagSeed         string
	flagVerbose      bool
	flagVeryVerbose  bool
	flagWrapLabels   int
	flagCombine      bool
	flagNoNumbers    bool
	flagNoCSS        bool
	flagNoAnchors    bool
	flagCSS          string
	flagGraphAttrs   stringSliceFlag
	flagClusterAttrs stringSliceFlag
	flagNodeAttrs    stringSliceFlag
	flagEdgeAttrs    stringSliceFlag
}

func (c *CompileCommand) Help() string {
	return `
Usage: tmlc [options] MODEL_FILE

  Compiles a TML threat model into a self-contained HTML artifact (or a
  standalone diagram with -d). MODEL_FILE may be "-" to read from stdin.

Options:

  -i INCLUDE            Section to include (data, diagram, interactions,
                         threats, measures); repeatable, order preserved.
                         Default: all five, in that order.
  -x EXCLUDE             Section to exclude; repeatable.
  -a, --active           Restrict output to the active-subset views.
  -c, --check-file        Diagnostic mode: print a table of directive spans,
                          each marked matched or UNMATCHED, and exit.
  -d, --diagram FORMAT    Emit only the diagram, in FORMAT (dot|svg|png).
  -s, --seed STRING       Deterministic shuffling of diagram layout order.
  -v, -vv                 Raise log verbosity (warn -> info -> debug).
  -w, --wrap-labels N     Accepted; diagram node labels are not wrapped.
  --combine               Accepted; parallel flows with equal endpoints are
                          always drawn as one edge.
  --no-numbers            Omit row numbers from rendered tables.
  --no-css                 Suppress CSS injection.
  --no-anchors            Strip cross-reference anchors and links.
  --css FILE               Inject FILE's contents as page CSS.
  --graph-attrs K=V       Passed to the diagram renderer, which does not
                          apply it to the graph.
  --cluster-attrs K=V     Same as --graph-attrs.
  --node-attrs K=V        Same as --graph-attrs.
  --edge-attrs K=V        Same as --graph-attrs.
`
}

func (c *CompileCommand) Synopsis() string {
	return "Compile a TML model into an HTML artifact or diagram"
}

func (c *CompileCommand) Run(args []string) int {
	flagSet := c.GetFlagset("tmlc")
	flagSet.Var(&c.flagInclude, "i", "")
	flagSet.Var(&c.flagExclude, "x", "")
	flagSet.BoolVar(&c.flagActive, "a", false, "")
	flagSet.BoolVar(&c.flagActive, "active", false, "")
	flagSet.BoolVar(&c.flagCheckFile, "c", false, "")
	flagSet.BoolVar(&c.flagCheckFile, "check-file", false, "")
	flagSet.StringVar(&c.flagDiagram, "d", "", "")
	flagSet.StringVar(&c.flagDiagram, "diagram", "", "")
	flagSet.StringVar(&c.flagSeed, "s", "", "")
	flagSet.StringVar(&c.flagSeed, "seed", "", "")
	flagSet.BoolVar(&c.flagVerbose, "v", false, "")
	flagSet.BoolVar(&c.flagVeryVerbose, "vv", false, "")
	flagSet.IntVar(&c.flagWrapLabels, "w", 0, "")
	flagSet.IntVar(&c.flagWrapLabels, "wrap-labels", 0, "")
	flagSet.BoolVar(&c.flagCombine, "combine", false, "")
	flagSet.BoolVar(&c.flagNoNumbers, "no-numbers", false, "")
	flagSet.BoolVar(&c.flagNoCSS, "no-css", false, "")
	flagSet.BoolVar(&c.flagNoAnchors, "no-anchors", false, "")
	flagSet.StringVar(&c.flagCSS, "css", "", "")
	flagSet.Var(&c.flagGraphAttrs, "graph-attrs", "")
	flagSet.Var(&c.flagClusterAttrs, "cluster-attrs", "")
	flagSet.Var(&c.flagNodeAttrs, "node-attrs", "")
	flagSet.Var(&c.flagEdgeAttrs, "edge-attrs", "")

	if err := flagSet.Parse(args); err != nil {
		return 1
	}

	rest := flagSet.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "tmlc: exactly one MODEL_FILE argument is required")
		return 1
	}
	modelFile := rest[0]

	logger := newLogger(c.flagVerbose, c.flagVeryVerbose)

	cfg := tml.DefaultConfig()
	for _, w := range tml.LoadConfigPath(cfg, c.flagConfig) {
		logger.Warn().Err(w).Msg("config")
	}
	applyAttrFlags(cfg, c.flagGraphAttrs, cfg.GraphAttrs)
	applyAttrFlags(cfg, c.flagClusterAttrs, cfg.ClusterAttrs)
	applyAttrFlags(cfg, c.flagNodeAttrs, cfg.NodeAttrs)
	applyAttrFlags(cfg, c.flagEdgeAttrs, cfg.EdgeAttrs)
	cfg.CombineEdges = c.flagCombine || cfg.CombineEdges
	cfg.NoNumbers = c.flagNoNumbers || cfg.NoNumbers
	cfg.NoCSS = c.flagNoCSS || cfg.NoCSS
	cfg.NoAnchors = c.flagNoAnchors || cfg.NoAnchors
	if c.flagCSS != "" {
		cfg.CSSFile = c.flagCSS
	}
	if c.flagSeed != "" {
		cfg.Seed = c.flagSeed
	}

	var load *tml.LoadResult
	var result *tml.Result
	if modelFile == "-" {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tmlc: reading stdin: %s\n", err)
			return 1
		}
		load = tml.LoadRaw("", string(text))
		result = tml.CompileRaw("", string(text))
	} else {
		load = tml.Load(modelFile)
		result = tml.Compile(modelFile)
	}

	if c.flagCheckFile {
		return runCheckFile(load)
	}

	if result.Warnings != nil {
		for _, w := range result.Warnings.Errors {
			logger.Warn().Msg(w.Error())
		}
	}

	sections := resolveSections(c.flagInclude, c.flagExclude)
	renderer := result.NewRenderer(cfg)

	if c.flagDiagram != "" {
		return runDiagramOnly(renderer, modelFile, c.flagActive, c.flagDiagram, cfg)
	}

	return runHTML(renderer, modelFile, sections, c.flagActive, cfg, c.flagDiagram)
}

func newLogger(v, vv bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if v {
		level = zerolog.InfoLevel
	}
	if vv {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func applyAttrFlags(cfg *tml.CompilerConfig, flags stringSliceFlag, target map[string]string) {
	for _, kv := range flags {
		k, v, ok := splitKV(kv)
		if !ok {
			continue
		}
		target[k] = v
	}
	_ = cfg
}

func resolveSections(include, exclude stringSliceFlag) []string {
	base := []string(include)
	if len(base) == 0 {
		base = htmlout.DefaultSections
	}
	excluded := map[string]bool{}
	for _, x := range exclude {
		excluded[x] = true
	}
	var out []string
	for _, s := range base {
		if !excluded[s] {
			out = append(out, s)
		}
	}
	return out
}

func runCheckFile(load *tml.LoadResult) int {
	spans := map[string][]diagnostics.Span{}
	for file, fileSpans := range load.Spans {
		for _, sp := range fileSpans {
			_, ok := tml.ParseDirective(sp.Text, sp.Start, sp.End)
			spans[file] = append(spans[file], diagnostics.Span{
				Text: sp.Text, Start: sp.Start, End: sp.End, Matched: ok,
			})
		}
	}
	fmt.Println(diagnostics.Report(spans))
	return 0
}

func runDiagramOnly(r tml.Renderer, modelFile string, active bool, format string, cfg *tml.CompilerConfig) int {
	opts := diagram.Options{
		Format:       diagram.Format(strings.ToLower(format)),
		GraphAttrs:   cfg.GraphAttrs,
		ClusterAttrs: cfg.ClusterAttrs,
		NodeAttrs:    cfg.NodeAttrs,
		EdgeAttrs:    cfg.EdgeAttrs,
		Seed:         cfg.Seed,
	}
	out, err := diagram.Render(r, modelFile, active, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmlc: %s\n", err)
		return 1
	}
	os.Stdout.Write(out)
	return 0
}

func runHTML(r tml.Renderer, modelFile string, sections []string, active bool, cfg *tml.CompilerConfig, diagFormat string) int {
	svg, err := diagram.Render(r, modelFile, active, diagram.Options{
		Format:       diagram.FormatSVG,
		GraphAttrs:   cfg.GraphAttrs,
		ClusterAttrs: cfg.ClusterAttrs,
		NodeAttrs:    cfg.NodeAttrs,
		EdgeAttrs:    cfg.EdgeAttrs,
		Seed:         cfg.Seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmlc: diagram: %s\n", err)
	}

	out, err := htmlout.Render(r, modelFile, htmlout.Options{
		Sections:   sections,
		Active:     active,
		NoNumbers:  cfg.NoNumbers,
		NoCSS:      cfg.NoCSS,
		NoAnchors:  cfg.NoAnchors,
		CSSFile:    cfg.CSSFile,
		DiagramSVG: htmlSVG(svg),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmlc: %s\n", err)
		return 1
	}
	os.Stdout.Write(out)
	return 0
}
