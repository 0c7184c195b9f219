package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAndCell(t *testing.T) {
	tb, err := New[float64](2, 3, 0)
	require.NoError(t, err)
	require.Equal(t, 2, tb.RowCount())
	require.Equal(t, 3, tb.ColumnCount())

	tb.SetCell(1, 2, 9.5)
	require.InDelta(t, 9.5, tb.Cell(1, 2), 1e-9)
}

func TestAppendRowRejectsShapeMismatch(t *testing.T) {
	tb, err := NewWithColumns[float32](2)
	require.NoError(t, err)

	err = tb.AppendRow([]float32{1, 2, 3})
	require.Error(t, err)
}

func TestAppendGrowsRowCount(t *testing.T) {
	tb, err := NewWithColumns[uint32](2)
	require.NoError(t, err)

	require.NoError(t, tb.Append([]uint32{1, 2, 3, 4, 5, 6}))
	require.Equal(t, 3, tb.RowCount())
	require.EqualValues(t, 5, tb.Cell(2, 0))
}

func TestRowMaxColumnTieBreaksLow(t *testing.T) {
	tb, err := New[uint32](1, 4, 0)
	require.NoError(t, err)
	tb.SetCell(0, 0, 3)
	tb.SetCell(0, 1, 7)
	tb.SetCell(0, 2, 7)
	tb.SetCell(0, 3, 1)

	col, err := tb.RowMaxColumn(0)
	require.NoError(t, err)
	require.Equal(t, 1, col)
}

func TestAddAssignRequiresIdenticalShape(t *testing.T) {
	a, _ := New[uint32](2, 2, 0)
	b, _ := New[uint32](2, 3, 0)
	require.Error(t, a.AddAssign(b))
}

func TestAddAssignSumsElementwise(t *testing.T) {
	a, _ := New[uint32](1, 2, 1)
	b, _ := New[uint32](1, 2, 2)
	require.NoError(t, a.AddAssign(b))
	require.EqualValues(t, 3, a.Cell(0, 0))
	require.EqualValues(t, 3, a.Cell(0, 1))
}
