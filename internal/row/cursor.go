package row

// ValueGetter produces the value of one bound column for the cursor's
// current row, writing it into dst. The getter is bound to a live cursor
// and must be re-invoked after each advance; it performs no caching.
type ValueGetter func(dst *Value) error

// Cursor is a pull-based iterator over a row source, advanced one row at a
// time. A cursor is accessed by a single goroutine at a time.
type Cursor interface {
	// Schema describes the columns this cursor produces.
	Schema() Schema

	// Next advances to the next row, reporting false at the end of the
	// source or on error (check Err).
	Next() bool

	// Err returns the error that terminated iteration, if any.
	Err() error

	// Getter returns a value getter bound to this cursor for the column at
	// the given index.
	Getter(col int) (ValueGetter, error)

	Close() error
}

// Source is a row source that can be scanned by any number of independent
// cursors.
type Source interface {
	Schema() Schema
	Open() (Cursor, error)
}
