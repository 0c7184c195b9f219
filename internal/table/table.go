// Package table implements Table[T], the contiguous row-major matrix
// that underlies both the training data set and every on-disk block of
// the Balsa container format (spec.md §3, §4.1).
package table

import (
	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/binio"
)

// Scalar is the set of cell types Table[T] is instantiated for: the two
// feature-value variants plus the small integer types used by node and
// label tables and the vote table.
type Scalar interface {
	~float32 | ~float64 | ~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~bool
}

// Table is a contiguous, row-major MxN matrix. The zero value is not
// usable; construct with New or NewWithColumns.
type Table[T Scalar] struct {
	rows, cols int
	buf        []T
}

// New constructs a rows x cols table with every cell set to init.
func New[T Scalar](rows, cols int, init T) (*Table[T], error) {
	t, err := NewWithColumns[T](cols)
	if err != nil {
		return nil, err
	}
	n, err := binio.SafeMultiply(uint64(rows), uint64(cols))
	if err != nil {
		return nil, balsaerr.Wrap(balsaerr.KindResource, "table allocation", err)
	}
	t.buf = make([]T, n)
	if init != *new(T) {
		for i := range t.buf {
			t.buf[i] = init
		}
	}
	t.rows = rows
	return t, nil
}

// NewWithColumns constructs an empty (zero-row) table with the given
// column count, ready to receive rows via Append.
func NewWithColumns[T Scalar](cols int) (*Table[T], error) {
	if cols <= 0 {
		return nil, balsaerr.Inputf("column count must be positive, got %d", cols)
	}
	return &Table[T]{cols: cols}, nil
}

// RowCount returns the number of rows.
func (t *Table[T]) RowCount() int { return t.rows }

// ColumnCount returns the number of columns.
func (t *Table[T]) ColumnCount() int { return t.cols }

// Raw exposes the underlying row-major buffer. Callers must not retain
// it beyond the lifetime of the table, nor resize it; the codec uses
// this to serialize cell data directly.
func (t *Table[T]) Raw() []T { return t.buf }

// Cell returns the value at (row, col).
func (t *Table[T]) Cell(row, col int) T {
	return t.buf[row*t.cols+col]
}

// SetCell sets the value at (row, col).
func (t *Table[T]) SetCell(row, col int, v T) {
	t.buf[row*t.cols+col] = v
}

// Append appends whole rows from values. len(values) must be a multiple
// of ColumnCount(); otherwise ShapeMismatch (an InputError) is returned.
func (t *Table[T]) Append(values []T) error {
	if len(values)%t.cols != 0 {
		return balsaerr.Inputf("shape mismatch: %d values is not a multiple of %d columns", len(values), t.cols)
	}
	t.buf = append(t.buf, values...)
	t.rows += len(values) / t.cols
	return nil
}

// AppendRow appends exactly one row. len(row) must equal ColumnCount().
func (t *Table[T]) AppendRow(row []T) error {
	if len(row) != t.cols {
		return balsaerr.Inputf("shape mismatch: row has %d values, table has %d columns", len(row), t.cols)
	}
	return t.Append(row)
}

// RowMaxColumn returns the smallest column index c such that Cell(r, c)
// is maximal among row r's cells. Ties favor the lowest column.
func (t *Table[T]) RowMaxColumn(row int) (int, error) {
	if row < 0 || row >= t.rows {
		return 0, balsaerr.Inputf("row %d out of range [0, %d)", row, t.rows)
	}
	best := 0
	bestVal := t.Cell(row, 0)
	for c := 1; c < t.cols; c++ {
		v := t.Cell(row, c)
		if compareGreater(v, bestVal) {
			bestVal = v
			best = c
		}
	}
	return best, nil
}

// compareGreater compares two Scalar values. bool doesn't carry an
// ordering in Go, but RowMaxColumn is only ever invoked on numeric vote
// tables, so a type switch covers every instantiation Balsa actually
// uses without requiring a generic ordered constraint that would exclude
// bool from Scalar (bool is a supported table cell type, tagged "bool"
// by the codec). For bool cells it always reports false.
func compareGreater[T Scalar](a, b T) bool {
	switch av := any(a).(type) {
	case float32:
		return av > any(b).(float32)
	case float64:
		return av > any(b).(float64)
	case uint8:
		return av > any(b).(uint8)
	case uint16:
		return av > any(b).(uint16)
	case uint32:
		return av > any(b).(uint32)
	case int8:
		return av > any(b).(int8)
	case int16:
		return av > any(b).(int16)
	case int32:
		return av > any(b).(int32)
	default:
		return false
	}
}

// AddAssign adds other into t element-wise. Both tables must have
// identical shape.
func (t *Table[T]) AddAssign(other *Table[T]) error {
	if t.rows != other.rows || t.cols != other.cols {
		return balsaerr.Inputf("shape mismatch: %dx%d vs %dx%d", t.rows, t.cols, other.rows, other.cols)
	}
	for i := range t.buf {
		t.buf[i] = addScalar(t.buf[i], other.buf[i])
	}
	return nil
}

func addScalar[T Scalar](a, b T) T {
	switch av := any(a).(type) {
	case float32:
		return any(av + any(b).(float32)).(T)
	case float64:
		return any(av + any(b).(float64)).(T)
	case uint8:
		return any(av + any(b).(uint8)).(T)
	case uint16:
		return any(av + any(b).(uint16)).(T)
	case uint32:
		return any(av + any(b).(uint32)).(T)
	case int8:
		return any(av + any(b).(int8)).(T)
	case int16:
		return any(av + any(b).(int16)).(T)
	case int32:
		return any(av + any(b).(int32)).(T)
	default:
		return a
	}
}
