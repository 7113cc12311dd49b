// Package cli provides the command-line interface for onnxscore.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowml/onnxscore/internal/cli/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "onnxscore",
		Short: "Score rows through ONNX models",
		Long: `onnxscore binds ONNX models to schema-typed row sources.

It inspects model boundary metadata, packs models with their column
bindings into portable containers, and scores rows pulled from SQL
sources through a linked inference runtime.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "model=%s input=%s output=%s\n", cfg.Model, cfg.Input, cfg.Output)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}} (commit ` + GitCommit + `)
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to config file (default onnxscore.yaml)")
	flags.String("model", "", "Path to an ONNX model or packed container")
	flags.String("input", "features", "Source column bound to the model input")
	flags.String("output", "score", "Name of the derived output column")
	flags.String("runtime", "", "Registered inference runtime name")
	flags.Int("limit", 20, "Maximum rows to process (0 for all)")
	flags.Bool("verbose", false, "Verbose output")

	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newPackCmd())
	rootCmd.AddCommand(newScoreCmd())

	return rootCmd
}
