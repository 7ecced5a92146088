package main

import (
	"flag"
	"html/template"
)

// htmlSVG wraps raw SVG bytes for direct embedding by html/template without
// re-escaping, matching the teacher's pattern of trusting only
// compiler-generated markup (see internal/htmlout).
func htmlSVG(svg []byte) template.HTML {
	return template.HTML(svg)
}

// GlobalCmdOptions carries flags shared across the CLI surface, the same
// shape as the teacher's cmd/hcltm GlobalCmdOptions.
type GlobalCmdOptions struct {
	flagConfig string
}

func (g *GlobalCmdOptions) GetFlagset(name string) *flag.FlagSet {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.StringVar(&g.flagConfig, "config", "", "Optional config file")
	return flagSet
}

// splitKV parses a "K=V" CLI argument, used by --graph-attrs and its
// siblings (spec.md §6).
func splitKV(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
