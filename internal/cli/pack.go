package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowml/onnxscore/internal/score"
)

func newPackCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a model and its column bindings into a portable container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Model == "" {
				return fmt.Errorf("--model is required")
			}
			return runPack(cmd, out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output container path (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runPack(cmd *cobra.Command, out string) error {
	tr, err := score.FromFile(cfg.Model, cfg.Input, cfg.Output, loadOptions(cfg.Runtime)...)
	if err != nil {
		return err
	}
	defer tr.Close()

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := tr.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Packed %s (%q -> %q) into %s\n", cfg.Model, cfg.Input, cfg.Output, out)
	return nil
}
