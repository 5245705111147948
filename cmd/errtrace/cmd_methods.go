package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/errtrace/cmd/ui"
	"github.com/utkarsh5026/errtrace/pkg/errtrace"
	"github.com/utkarsh5026/errtrace/pkg/ledger"
)

func newMethodsCmd() *cobra.Command {
	var (
		raw  bool
		kind string
	)

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the demo ledger's classes and their instrumented methods",
		Long: `Build the demo ledger, instrument it, and list every level of the
chosen account class together with the trace name each method reports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var l *ledger.Ledger
			if raw {
				l = ledger.NewUninstrumented()
			} else {
				l = ledger.New(errtrace.InstrumentOptions{})
			}

			class, err := l.Class(ledger.Kind(kind))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Header(" "+class.Name()+" "))
			renderMethodTable(out, class)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Show the classes before instrumentation")
	cmd.Flags().StringVarP(&kind, "kind", "k", string(ledger.KindSavings), "Account kind (checking, savings)")

	return cmd
}

// renderMethodTable lists each level from most derived to Base.
func renderMethodTable(out io.Writer, class *errtrace.Class) {
	levels := append(class.Ancestry(), errtrace.Base)

	table := tablewriter.NewWriter(out)
	table.Header("Level", "Method", "Instrumented", "Trace name")
	for _, level := range levels {
		for _, method := range level.OwnMethodNames() {
			fn, _ := level.OwnMethod(method)
			name, ok := errtrace.NameOf(fn)
			if !ok {
				name = "-"
			}
			table.Append(level.Name(), method, ui.YesNo(ok), name)
		}
	}
	table.Render()
}
