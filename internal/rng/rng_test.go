package rng

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedSourceDeterministic(t *testing.T) {
	a := NewSeedSource(42)
	b := NewSeedSource(42)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestSeedSourceVariesBySeed(t *testing.T) {
	a := NewSeedSource(1)
	b := NewSeedSource(2)
	require.NotEqual(t, a.Next(), b.Next())
}

func TestWeightedCoinAlwaysTrueWhenNumeratorEqualsDenominator(t *testing.T) {
	c := NewWeightedCoin(7)
	for i := 0; i < 50; i++ {
		require.True(t, c.Flip(3, 3))
	}
}

func TestWeightedCoinNeverTrueWhenNumeratorZero(t *testing.T) {
	c := NewWeightedCoin(7)
	for i := 0; i < 50; i++ {
		require.False(t, c.Flip(0, 5))
	}
}

func TestWeightedCoinConvergesToExpectedFrequency(t *testing.T) {
	c := NewWeightedCoin(123)
	trueCount := 0
	const trials = 20000
	for i := 0; i < trials; i++ {
		if c.Flip(1, 4) {
			trueCount++
		}
	}
	ratio := float64(trueCount) / float64(trials)
	require.InDelta(t, 0.25, ratio, 0.02)
}

func TestWeightedCoinDeterministicGivenSameSeed(t *testing.T) {
	a := NewWeightedCoin(99)
	b := NewWeightedCoin(99)
	for i := 0; i < 200; i++ {
		require.Equal(t, a.Flip(2, 5), b.Flip(2, 5))
	}
}
