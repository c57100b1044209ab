package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"gopkg.in/yaml.v3"

	"github.com/arbor-lang/arbor/internal/checker"
	"github.com/arbor-lang/arbor/internal/config"
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// runRepl is an incremental type-checking REPL: each line is a flow-style
// YAML docDef (the same dialect loadRoot reads from a file), checked against
// a running set of previously accepted definitions so later lines can
// reference earlier ones — directly analogous to the teacher's
// internal/repl.REPL.Start, which uses liner the same way (history file,
// multiline continuation) but evaluates expressions instead of checking
// definitions.
func runRepl(instances *types.InstanceEnv, cfg *config.CheckerConfig) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".arbor_typecheck_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s %s\n", bold("arbor typecheck"), "repl")
	fmt.Println("Enter one flow-style YAML def per line, e.g.:")
	fmt.Println(`  {name: double, params: [x], body: {binop: {op: "+", left: {var: x}, right: {var: x}}}}`)
	fmt.Println("Type :quit to exit.")
	fmt.Println()

	root := kindedast.NewRoot()

	for {
		input, err := line.Prompt("arbor> ")
		if err == io.EOF {
			fmt.Println(green("\nGoodbye!"))
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == ":quit" || input == ":q" {
			fmt.Println(green("Goodbye!"))
			return
		}

		var d docDef
		if err := yaml.Unmarshal([]byte(input), &d); err != nil {
			fmt.Printf("%s %v\n", red("parse error:"), err)
			continue
		}
		if d.Name == "" {
			fmt.Printf("%s def needs a name\n", red("error:"))
			continue
		}

		uses := map[string]bool{}
		def, err := buildDef("<repl>", d, uses)
		if err != nil {
			fmt.Printf("%s %v\n", red("error:"), err)
			continue
		}

		trial := &kindedast.Root{
			Classes:   root.Classes,
			Instances: root.Instances,
			Defs:      append(append([]*kindedast.Def{}, root.Defs...), def),
			Sigs:      root.Sigs,
			Enums:     root.Enums,
			Effects:   root.Effects,
			Aliases:   root.Aliases,
			Uses:      root.Uses,
			Sources:   root.Sources,
		}

		c := checker.NewFromConfig(trial, instances, cfg)
		typed, _ := c.CheckRoot()

		result := typed.Defs[len(typed.Defs)-1]
		for _, td := range typed.Defs {
			if td.Name == def.Name {
				result = td
			}
		}

		if errNode, ok := result.Body.(*typedast.Error); ok {
			fmt.Printf("%s %s: %s\n", red("✗"), bold(def.Name), errNode.Msg)
		} else {
			fmt.Printf("%s %s : %s\n", green("✓"), bold(def.Name), cyan(result.Scheme.Type.String()))
			root = trial
		}
	}
}
