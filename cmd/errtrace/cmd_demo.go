package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/errtrace/cmd/ui"
	"github.com/utkarsh5026/errtrace/pkg/common/logger"
	"github.com/utkarsh5026/errtrace/pkg/errtrace"
	"github.com/utkarsh5026/errtrace/pkg/tracemetrics"
)

func newDemoCmd() *cobra.Command {
	var (
		raw         bool
		withMetrics bool
		list        bool
	)

	cmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Run an instrumented scenario and show the resulting trace",
		Long: `Run one of the built-in scenarios and print the error it ends with,
including every instrumented call the error crossed on its way out.

Scenarios: ` + strings.Join(scenarioNames(), ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if list || len(args) == 0 {
				renderScenarioTable(out)
				return nil
			}

			s, err := lookupScenario(args[0])
			if err != nil {
				return err
			}

			var collector *tracemetrics.Collector
			reg := prometheus.NewRegistry()
			if withMetrics {
				collector, err = tracemetrics.NewCollector(reg)
				if err != nil {
					return fmt.Errorf("failed to register metrics: %w", err)
				}
				previous := errtrace.CurrentConfig()
				errtrace.Configure(errtrace.Config{
					Annotator: collector.Wrap(previous.Annotator),
				})
				defer errtrace.Configure(previous)
			}

			logger.Debug("running scenario", "scenario", args[0])
			result := s.run(context.Background())

			if raw {
				if result == nil {
					fmt.Fprintln(out, "<nil>")
				} else {
					fmt.Fprintf(out, "%+v\n", result)
				}
			} else {
				fmt.Fprintln(out, ui.Header(" "+args[0]+" "))
				fmt.Fprintln(out, ui.Gray(s.summary))
				fmt.Fprintln(out)
				fmt.Fprintln(out, ui.FormatTrace(result))
			}

			if withMetrics {
				return renderMetrics(out, reg)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the annotated stack text without styling")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Count interceptions and print the counters")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the available scenarios")

	return cmd
}

func renderScenarioTable(out io.Writer) {
	table := tablewriter.NewWriter(out)
	table.Header("Scenario", "Description")
	for _, name := range scenarioNames() {
		table.Append(name, scenarios[name].summary)
	}
	table.Render()
}

// renderMetrics prints every counter sample gathered from reg.
func renderMetrics(out io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	fmt.Fprintln(out, ui.Section("Metrics"))
	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Labels", "Value")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			table.Append(mf.GetName(), strings.Join(labels, ","), fmt.Sprintf("%g", m.GetCounter().GetValue()))
		}
	}
	table.Render()
	return nil
}
