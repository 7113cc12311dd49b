package row

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rowml/onnxscore/internal/tensor"
)

// SQLSource exposes the result of a SQL query as a row source. The declared
// schema maps positionally onto the selected columns: scalar columns scan
// from their native SQL types, and vector columns scan from TEXT cells
// holding a JSON number array.
type SQLSource struct {
	db     *sql.DB
	query  string
	schema Schema
}

// NewSQLSource builds a SQLSource over db. Vector columns must be Float32
// or Float64; other vector kinds have no SQL cell representation here.
func NewSQLSource(db *sql.DB, query string, schema Schema) (*SQLSource, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("empty schema")
	}
	for _, col := range schema {
		if col.Type.Vector && col.Type.Kind != tensor.Float32 && col.Type.Kind != tensor.Float64 {
			return nil, fmt.Errorf("column %q: vector kind %s not supported by SQL source", col.Name, col.Type.Kind)
		}
	}
	return &SQLSource{db: db, query: query, schema: schema}, nil
}

// Schema returns the declared schema.
func (s *SQLSource) Schema() Schema {
	return s.schema
}

// Open runs the query and returns a cursor over its rows.
func (s *SQLSource) Open() (Cursor, error) {
	rows, err := s.db.Query(s.query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	if len(cols) != len(s.schema) {
		_ = rows.Close()
		return nil, fmt.Errorf("query returned %d columns, schema declares %d", len(cols), len(s.schema))
	}

	c := &sqlCursor{src: s, rows: rows}
	c.current = make([]Value, len(s.schema))
	c.holders = make([]any, len(s.schema))
	for i, col := range s.schema {
		c.holders[i] = newHolder(col.Type)
	}
	return c, nil
}

type sqlCursor struct {
	src     *SQLSource
	rows    *sql.Rows
	holders []any
	current []Value
	err     error
}

func (c *sqlCursor) Schema() Schema {
	return c.src.schema
}

func (c *sqlCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	if err := c.rows.Scan(c.holders...); err != nil {
		c.err = fmt.Errorf("scan failed: %w", err)
		return false
	}
	for i, col := range c.src.schema {
		v, err := valueFromHolder(col, c.holders[i])
		if err != nil {
			c.err = err
			return false
		}
		c.current[i] = v
	}
	return true
}

func (c *sqlCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *sqlCursor) Getter(col int) (ValueGetter, error) {
	if col < 0 || col >= len(c.src.schema) {
		return nil, fmt.Errorf("column index %d out of range (%d columns)", col, len(c.src.schema))
	}
	return func(dst *Value) error {
		*dst = c.current[col]
		return nil
	}, nil
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}

// newHolder returns a scan destination for one declared column.
func newHolder(t ColumnType) any {
	if t.Vector {
		return new(sql.NullString) // JSON array cell
	}
	switch t.Kind {
	case tensor.Float32, tensor.Float64:
		return new(sql.NullFloat64)
	case tensor.Bool:
		return new(sql.NullBool)
	case tensor.String:
		return new(sql.NullString)
	default:
		return new(sql.NullInt64)
	}
}

//nolint:gocyclo,cyclop // One conversion arm per supported element kind.
func valueFromHolder(col Column, holder any) (Value, error) {
	if col.Type.Vector {
		ns := holder.(*sql.NullString)
		if !ns.Valid {
			return Value{}, fmt.Errorf("column %q: NULL vector cell", col.Name)
		}
		var vals []float64
		if err := json.Unmarshal([]byte(ns.String), &vals); err != nil {
			return Value{}, fmt.Errorf("column %q: invalid vector cell: %w", col.Name, err)
		}
		if col.Type.Size > 0 && len(vals) != col.Type.Size {
			return Value{}, fmt.Errorf("column %q: vector cell has %d elements, declared %d", col.Name, len(vals), col.Type.Size)
		}
		if col.Type.Kind == tensor.Float64 {
			return DenseOf(vals), nil
		}
		f32 := make([]float32, len(vals))
		for i, v := range vals {
			f32[i] = float32(v)
		}
		return DenseOf(f32), nil
	}

	switch col.Type.Kind {
	case tensor.Float32:
		return ScalarOf(float32(holder.(*sql.NullFloat64).Float64)), nil
	case tensor.Float64:
		return ScalarOf(holder.(*sql.NullFloat64).Float64), nil
	case tensor.Int16:
		return ScalarOf(int16(holder.(*sql.NullInt64).Int64)), nil
	case tensor.Int32:
		return ScalarOf(int32(holder.(*sql.NullInt64).Int64)), nil
	case tensor.Int64:
		return ScalarOf(holder.(*sql.NullInt64).Int64), nil
	case tensor.Uint16:
		return ScalarOf(uint16(holder.(*sql.NullInt64).Int64)), nil //nolint:gosec // G115: declared column kind.
	case tensor.Uint32:
		return ScalarOf(uint32(holder.(*sql.NullInt64).Int64)), nil //nolint:gosec // G115: declared column kind.
	case tensor.Uint64:
		return ScalarOf(uint64(holder.(*sql.NullInt64).Int64)), nil //nolint:gosec // G115: declared column kind.
	case tensor.Bool:
		return ScalarOf(holder.(*sql.NullBool).Bool), nil
	case tensor.String:
		return ScalarOf(holder.(*sql.NullString).String), nil
	default:
		return Value{}, fmt.Errorf("column %q: unsupported kind %s", col.Name, col.Type.Kind)
	}
}
