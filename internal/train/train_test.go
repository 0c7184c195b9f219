package train

import (
	"testing"

	"github.com/balsa-rf/balsa/internal/rng"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/balsa-rf/balsa/internal/tree"
	"github.com/stretchr/testify/require"
)

func TestCross2x2ExactFit(t *testing.T) {
	data, err := table.New[float32](4, 2, 0)
	require.NoError(t, err)
	points := [][2]float32{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
	for i, p := range points {
		data.SetCell(i, 0, p[0])
		data.SetCell(i, 1, p[1])
	}
	labels := []uint8{0, 1, 1, 0}

	coin := rng.NewWeightedCoin(42)
	trainer, err := New(data, labels, 2, 2, maxDepthAll, 0, coin)
	require.NoError(t, err)
	trainer.Grow()

	treeData, err := trainer.Finish()
	require.NoError(t, err)
	classifier := tree.New(treeData)

	flat := make([]float32, 0, 8)
	for _, p := range points {
		flat = append(flat, p[0], p[1])
	}
	out := make([]uint8, 4)
	require.NoError(t, classifier.Classify(flat, 2, out))
	require.Equal(t, []uint8{0, 1, 1, 0}, out)
}

const maxDepthAll = 1 << 30

func TestLeafPurityUnderDefaultSettings(t *testing.T) {
	data, err := table.New[float32](6, 1, 0)
	require.NoError(t, err)
	values := []float32{0, 1, 2, 3, 4, 5}
	for i, v := range values {
		data.SetCell(i, 0, v)
	}
	labels := []uint8{0, 0, 0, 1, 1, 1}

	coin := rng.NewWeightedCoin(7)
	trainer, err := New(data, labels, 2, 1, maxDepthAll, 0, coin)
	require.NoError(t, err)
	trainer.Grow()

	for _, n := range trainer.nodes {
		if n.isLeaf() {
			require.Equal(t, 0.0, n.labelCounts.GiniImpurity())
		}
	}
}

func TestDeterminismGivenSameSeed(t *testing.T) {
	data, err := table.New[float32](8, 3, 0)
	require.NoError(t, err)
	values := [][3]float32{
		{0, 1, 2}, {1, 0, 3}, {2, 2, 1}, {3, 1, 0},
		{4, 3, 2}, {5, 0, 1}, {6, 2, 3}, {7, 1, 2},
	}
	for i, row := range values {
		data.SetCell(i, 0, row[0])
		data.SetCell(i, 1, row[1])
		data.SetCell(i, 2, row[2])
	}
	labels := []uint8{0, 1, 0, 1, 0, 1, 0, 1}

	build := func() *tree.Tree[float32] {
		coin := rng.NewWeightedCoin(99)
		trainer, err := New(data, labels, 2, 2, maxDepthAll, 0, coin)
		require.NoError(t, err)
		trainer.Grow()
		treeData, err := trainer.Finish()
		require.NoError(t, err)
		return tree.New(treeData)
	}

	a := build()
	b := build()
	require.Equal(t, a.Data.LeftChild.Raw(), b.Data.LeftChild.Raw())
	require.Equal(t, a.Data.SplitFeature.Raw(), b.Data.SplitFeature.Raw())
	require.Equal(t, a.Data.SplitValue.Raw(), b.Data.SplitValue.Raw())
}

func TestRejectsMismatchedLabelCount(t *testing.T) {
	data, err := table.New[float32](3, 1, 0)
	require.NoError(t, err)
	coin := rng.NewWeightedCoin(1)
	_, err = New(data, []uint8{0, 1}, 2, 1, 10, 0, coin)
	require.Error(t, err)
}
