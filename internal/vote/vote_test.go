package vote

import (
	"sync"
	"testing"

	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/balsa-rf/balsa/internal/tree"
	"github.com/stretchr/testify/require"
)

// fakeStream replays a fixed slice of trees; Rewind resets its cursor.
type fakeStream struct {
	trees  []*tree.Tree[float32]
	cursor int
	mu     sync.Mutex
}

func (f *fakeStream) Rewind() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = 0
	return nil
}

func (f *fakeStream) Next() (*tree.Tree[float32], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursor == len(f.trees) {
		return nil, nil
	}
	t := f.trees[f.cursor]
	f.cursor++
	return t, nil
}

func stumpVotingFor(t *testing.T, class uint8) *tree.Tree[float32] {
	t.Helper()
	left, err := table.New[uint32](1, 1, 0)
	require.NoError(t, err)
	right, err := table.New[uint32](1, 1, 0)
	require.NoError(t, err)
	splitFeature, err := table.New[uint8](1, 1, 0)
	require.NoError(t, err)
	splitValue, err := table.New[float32](1, 1, 0)
	require.NoError(t, err)
	labelTable, err := table.New[uint8](1, 1, class)
	require.NoError(t, err)
	return tree.New(&format.TreeData[float32]{
		ClassCount: 2, FeatureCount: 1,
		LeftChild: left, RightChild: right,
		SplitFeature: splitFeature, SplitValue: splitValue, Label: labelTable,
	})
}

func TestSingleAndMultiThreadedAgree(t *testing.T) {
	trees := []*tree.Tree[float32]{
		stumpVotingFor(t, 0), stumpVotingFor(t, 1), stumpVotingFor(t, 1), stumpVotingFor(t, 0), stumpVotingFor(t, 1),
	}
	points := []float32{1, 2, 3}

	for _, threadCount := range []int{0, 1, 2, 4} {
		stream := &fakeStream{trees: trees}
		c := New[float32](stream, 2, 1, threadCount)
		labels := make([]uint8, 3)
		require.NoError(t, c.Classify(points, 1, labels))
		require.Equal(t, []uint8{1, 1, 1}, labels, "thread count %d", threadCount)
	}
}

func TestClassWeightSkew(t *testing.T) {
	trees := []*tree.Tree[float32]{stumpVotingFor(t, 0), stumpVotingFor(t, 1)}
	points := []float32{1, 2}

	stream := &fakeStream{trees: trees}
	c := New[float32](stream, 2, 1, 0)
	balanced := make([]uint8, 2)
	require.NoError(t, c.Classify(points, 1, balanced))

	stream2 := &fakeStream{trees: trees}
	c2 := New[float32](stream2, 2, 1, 0)
	require.NoError(t, c2.SetClassWeights([]float32{0, 1}))
	skewed := make([]uint8, 2)
	require.NoError(t, c2.Classify(points, 1, skewed))
	require.Equal(t, []uint8{1, 1}, skewed)
}

func TestSetClassWeightsRejectsNegative(t *testing.T) {
	stream := &fakeStream{}
	c := New[float32](stream, 2, 1, 0)
	err := c.SetClassWeights([]float32{-1, 1})
	require.Error(t, err)
}

func TestClassifyAndVoteReturnsVoterCount(t *testing.T) {
	trees := []*tree.Tree[float32]{stumpVotingFor(t, 0), stumpVotingFor(t, 1), stumpVotingFor(t, 0)}
	stream := &fakeStream{trees: trees}
	c := New[float32](stream, 2, 1, 0)
	votes, err := table.New[uint32](1, 2, 0)
	require.NoError(t, err)
	voters, err := c.ClassifyAndVote([]float32{1}, 1, votes)
	require.NoError(t, err)
	require.Equal(t, 3, voters)
}
