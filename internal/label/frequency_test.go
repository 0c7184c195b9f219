package label

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGiniImpurityPureNodeIsZero(t *testing.T) {
	f := NewFrequencyTableFromLabels([]Label{1, 1, 1, 1}, 2)
	require.InDelta(t, 0.0, f.GiniImpurity(), 1e-12)
}

func TestGiniImpurityBalancedBinaryIsOneHalf(t *testing.T) {
	f := NewFrequencyTableFromLabels([]Label{0, 1, 0, 1}, 2)
	require.InDelta(t, 0.5, f.GiniImpurity(), 1e-12)
}

func TestGiniImpurityEmptyNodeIsZero(t *testing.T) {
	f := NewFrequencyTable(3)
	require.InDelta(t, 0.0, f.GiniImpurity(), 1e-12)
}

func TestMostFrequentLabelTieBreaksLow(t *testing.T) {
	f := NewFrequencyTableFromLabels([]Label{0, 1, 0, 1}, 2)
	require.EqualValues(t, 0, f.MostFrequentLabel())
}

func TestIncrementDecrementMaintainTotal(t *testing.T) {
	f := NewFrequencyTable(2)
	f.Increment(0)
	f.Increment(1)
	f.Increment(1)
	require.EqualValues(t, 3, f.Total())
	require.True(t, f.Invariant())

	f.Decrement(1)
	require.EqualValues(t, 2, f.Total())
	require.True(t, f.Invariant())
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFrequencyTableFromLabels([]Label{0, 1}, 2)
	g := f.Clone()
	g.Increment(0)
	require.NotEqual(t, f.Count(0), g.Count(0))
}
