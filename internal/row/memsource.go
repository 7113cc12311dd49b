package row

import "fmt"

// MemSource is an in-memory row source. It backs tests and small CLI runs;
// every Open returns an independent cursor over the same rows.
type MemSource struct {
	schema Schema
	rows   [][]Value
}

// NewMemSource builds a MemSource. Every row must have one value per
// schema column.
func NewMemSource(schema Schema, rows [][]Value) (*MemSource, error) {
	for i, r := range rows {
		if len(r) != len(schema) {
			return nil, fmt.Errorf("row %d has %d values, schema has %d columns", i, len(r), len(schema))
		}
	}
	return &MemSource{schema: schema, rows: rows}, nil
}

// Schema returns the source schema.
func (s *MemSource) Schema() Schema {
	return s.schema
}

// Open returns a fresh cursor positioned before the first row.
func (s *MemSource) Open() (Cursor, error) {
	return &memCursor{src: s, pos: -1}, nil
}

type memCursor struct {
	src    *MemSource
	pos    int
	closed bool
}

func (c *memCursor) Schema() Schema {
	return c.src.schema
}

func (c *memCursor) Next() bool {
	if c.closed || c.pos+1 >= len(c.src.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *memCursor) Err() error {
	return nil
}

func (c *memCursor) Getter(col int) (ValueGetter, error) {
	if col < 0 || col >= len(c.src.schema) {
		return nil, fmt.Errorf("column index %d out of range (%d columns)", col, len(c.src.schema))
	}
	return func(dst *Value) error {
		if c.pos < 0 {
			return fmt.Errorf("cursor not positioned on a row")
		}
		*dst = c.src.rows[c.pos][col]
		return nil
	}, nil
}

func (c *memCursor) Close() error {
	c.closed = true
	return nil
}
