package main

import (
	"fmt"

	"github.com/mitchellh/cli"

	"github.com/elespike/dfdone/version"
)

// Run wires the single compile command into mitchellh/cli, the same
// dispatch library cmd/hcltm and cmd/threatcl use in the teacher. Unlike the
// teacher's multi-command surface, spec.md §6 describes one flat CLI, so a
// bare invocation is rewritten onto the sole "compile" command.
func Run(args []string) int {
	globalCmdOptions := &GlobalCmdOptions{}

	commands := map[string]cli.CommandFactory{
		"compile": func() (cli.Command, error) {
			return &CompileCommand{GlobalCmdOptions: globalCmdOptions}, nil
		},
	}

	args = normalizeArgs(args)

	app := &cli.CLI{
		Name:         "tmlc",
		Version:      version.GetVersion(),
		Args:         args,
		Commands:     commands,
		Autocomplete: true,
	}

	exitCode, err := app.Run()
	if err != nil {
		fmt.Printf("Error running tmlc: %s\n", err)
		return 1
	}

	return exitCode
}

// normalizeArgs prepends the implicit "compile" subcommand when the first
// argument isn't already a known command name, so `tmlc model.tml -v` works
// without the user ever typing "compile".
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"compile"}
	}
	if args[0] == "compile" || args[0] == "--version" || args[0] == "--help" {
		return args
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, "compile")
	out = append(out, args...)
	return out
}
