package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rowml/onnxscore/internal/onnx"
	"github.com/rowml/onnxscore/internal/serialization"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the boundary metadata of a model or packed container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	model := data
	if bytes.HasPrefix(data, []byte(serialization.Signature)) {
		c, err := serialization.Decode(data)
		if err != nil {
			if errors.Is(err, serialization.ErrUnsupportedVersion) {
				return fmt.Errorf("container %s: %w", path, err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Container: input column %q, output column %q (format 0x%08x)\n\n",
			c.InputColumn, c.OutputColumn, c.VersionWritten)
		model = c.ModelBytes
	}

	handle, err := onnx.LoadFromBytes(model, loadOptions("")...)
	if err != nil {
		return err
	}
	defer handle.Close()

	renderNodes(cmd, "Inputs", handle.Inputs())
	renderNodes(cmd, "Outputs", handle.Outputs())
	return nil
}

func renderNodes(cmd *cobra.Command, title string, nodes []onnx.NodeInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Name", "Type", "Shape"})
	for _, n := range nodes {
		t.AppendRow(table.Row{n.Name, n.DType, n.Shape})
	}
	t.Render()
}
