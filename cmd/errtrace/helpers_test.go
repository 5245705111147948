package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/errtrace/pkg/errtrace"
)

// runCmd executes cmd with args and returns what it wrote to stdout.
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(errtrace.ResetConfig)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
