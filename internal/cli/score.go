package cli

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/rowml/onnxscore/internal/row"
	"github.com/rowml/onnxscore/internal/score"
	"github.com/rowml/onnxscore/internal/serialization"
	"github.com/rowml/onnxscore/internal/tensor"
)

func newScoreCmd() *cobra.Command {
	var (
		db         string
		query      string
		vectorSize int
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score rows from a SQLite query through a model",
		Long: `Score reads rows from a SQLite database and runs each through the
model. The query must select exactly one column holding the input
vector as a JSON array, for example:

  onnxscore score --model model.onnx --db data.db \
      --query 'SELECT features FROM samples' --vector-size 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Flags win; config file and environment fill the gaps.
			if db == "" {
				db = cfg.DB
			}
			if query == "" {
				query = cfg.Query
			}
			if vectorSize == 0 {
				vectorSize = cfg.VectorSize
			}
			if cfg.Model == "" {
				return fmt.Errorf("--model is required")
			}
			if db == "" || query == "" {
				return fmt.Errorf("--db and --query are required")
			}
			return runScore(cmd, db, query, vectorSize)
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "Path to a SQLite database")
	cmd.Flags().StringVar(&query, "query", "", "Query selecting the input vector column")
	cmd.Flags().IntVar(&vectorSize, "vector-size", 0, "Input vector length (0 for variable)")
	return cmd
}

func loadTransform(path string) (*score.Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := loadOptions(cfg.Runtime)
	if bytes.HasPrefix(data, []byte(serialization.Signature)) {
		return score.Load(data, opts...)
	}
	return score.FromBytes(data, cfg.Input, cfg.Output, opts...)
}

func runScore(cmd *cobra.Command, dbPath, query string, vectorSize int) error {
	tr, err := loadTransform(cfg.Model)
	if err != nil {
		return err
	}
	defer tr.Close()

	colType := row.VarVector(tensor.Float32)
	if vectorSize > 0 {
		colType = row.Vector(tensor.Float32, vectorSize)
	}
	schema := row.Schema{{Name: tr.InputColumn(), Type: colType}}
	if err := tr.CheckBinding(schema); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	src, err := row.NewSQLSource(db, query, schema)
	if err != nil {
		return err
	}
	cur, err := src.Open()
	if err != nil {
		return err
	}
	defer cur.Close()

	get, err := tr.CreateGetter(cur)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", tr.OutputColumn()})

	count := 0
	var val row.Value
	for cur.Next() {
		if cfg.Limit > 0 && count >= cfg.Limit {
			break
		}
		if err := get(&val); err != nil {
			return fmt.Errorf("row %d: %w", count+1, err)
		}
		data, err := row.Elements[float32](&val)
		if err != nil {
			return fmt.Errorf("row %d: %w", count+1, err)
		}
		t.AppendRow(table.Row{count + 1, formatVector(data)})
		count++
	}
	if err := cur.Err(); err != nil {
		return err
	}

	t.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "Scored %d rows\n", count)
	return nil
}

// formatVector renders up to eight elements and elides the rest.
func formatVector(data []float32) string {
	const maxShown = 8
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range data {
		if i == maxShown {
			fmt.Fprintf(&b, " ... +%d", len(data)-maxShown)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.4g", v)
	}
	b.WriteByte(']')
	return b.String()
}
