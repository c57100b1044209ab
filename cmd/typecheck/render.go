package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/arbor-lang/arbor/internal/typedast"
)

// Color handles mirror the teacher's cmd/ailang/main.go package-level
// SprintFunc convention (SPEC_FULL §10.1): coloring happens only at this CLI
// boundary, never inside internal/types' plain-data error values.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// renderRoot prints one line per definition — its inferred scheme on
// success, or the sentinel's recorded message on failure — followed by a
// summary line, matching the teacher's "✓ ..." / "Error: ..." phrasing.
func renderRoot(w io.Writer, root *typedast.TypedRoot) {
	defs := append([]*typedast.TypedDef{}, root.Defs...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	failed := 0
	for _, d := range defs {
		if errNode, ok := d.Body.(*typedast.Error); ok {
			failed++
			fmt.Fprintf(w, "%s %s : %s\n", red("✗"), bold(d.Name), errNode.Msg)
			continue
		}
		scheme := "?"
		if d.Scheme != nil {
			scheme = d.Scheme.Type.String()
		}
		fmt.Fprintf(w, "%s %s : %s\n", green("✓"), bold(d.Name), cyan(scheme))
	}

	if len(root.Messages) > 0 {
		fmt.Fprintf(w, "\n%s %d diagnostic(s):\n", yellow("→"), len(root.Messages))
		for _, m := range root.Messages {
			fmt.Fprintf(w, "  %s %s\n", yellow("•"), m.Error())
		}
	}

	if failed == 0 {
		fmt.Fprintf(w, "\n%s %d definition(s) checked, no errors\n", green("✓"), len(defs))
	} else {
		fmt.Fprintf(w, "\n%s %d of %d definition(s) failed to check\n", red("✗"), failed, len(defs))
	}
}
