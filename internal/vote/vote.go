// Package vote implements EnsembleClassifier: dispatching a stream of
// trees to cast and tally votes, single-threaded or across a worker
// pool, plus weighted argmax labeling.
package vote

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/balsa-rf/balsa/internal/tree"
)

// TreeSource is the subset of treestream.Stream the classifier needs:
// a resettable stream of trees. Kept as an interface so tests and the
// root package can supply either a file-backed stream or an in-memory
// fake.
type TreeSource[F format.FeatureValue] interface {
	Rewind() error
	Next() (*tree.Tree[F], error)
}

// Classifier casts votes from every tree in a TreeSource and resolves
// them into labels, optionally weighted per class.
type Classifier[F format.FeatureValue] struct {
	trees        TreeSource[F]
	classCount   int
	featureCount int
	threadCount  int
	classWeights []float32
}

// New returns a classifier over trees, with all class weights defaulted
// to 1.0. threadCount == 0 selects the single-threaded path.
func New[F format.FeatureValue](trees TreeSource[F], classCount, featureCount, threadCount int) *Classifier[F] {
	weights := make([]float32, classCount)
	for i := range weights {
		weights[i] = 1.0
	}
	return &Classifier[F]{trees: trees, classCount: classCount, featureCount: featureCount, threadCount: threadCount, classWeights: weights}
}

// SetClassWeights validates and installs per-class weights; every
// weight must be finite and non-negative.
func (c *Classifier[F]) SetClassWeights(weights []float32) error {
	if len(weights) != c.classCount {
		return balsaerr.Inputf("class weights length %d does not match class count %d", len(weights), c.classCount)
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(float64(w)) || math.IsInf(float64(w), 0) {
			return balsaerr.Inputf("class weight %d (%v) must be finite and non-negative", i, w)
		}
	}
	copied := make([]float32, len(weights))
	copy(copied, weights)
	c.classWeights = copied
	return nil
}

// ClassifyAndVote rewinds the tree stream and casts every tree's votes
// into votes, returning the number of trees that voted.
func (c *Classifier[F]) ClassifyAndVote(points []F, featureCount int, votes *table.Table[uint32]) (int, error) {
	if featureCount != c.featureCount {
		return 0, balsaerr.Inputf("feature count %d does not match classifier's feature count %d", featureCount, c.featureCount)
	}
	if len(points)%featureCount != 0 {
		return 0, balsaerr.Input("points length is not a multiple of feature count")
	}
	if err := c.trees.Rewind(); err != nil {
		return 0, err
	}

	if c.threadCount <= 0 {
		return c.classifyAndVoteSingleThreaded(points, featureCount, votes)
	}
	return c.classifyAndVoteParallel(points, featureCount, votes)
}

func (c *Classifier[F]) classifyAndVoteSingleThreaded(points []F, featureCount int, votes *table.Table[uint32]) (int, error) {
	voterCount := 0
	for {
		t, err := c.trees.Next()
		if err != nil {
			return 0, err
		}
		if t == nil {
			break
		}
		if _, err := t.ClassifyAndVote(points, featureCount, votes); err != nil {
			return 0, err
		}
		voterCount++
	}
	return voterCount, nil
}

// job carries one tree to a worker, or is the zero value with tree==nil
// to mean "stop", matching the explicit Stop-sentinel protocol required
// by spec.md §5 (never relying on channel closure alone).
type job[F format.FeatureValue] struct {
	tree *tree.Tree[F]
}

func (c *Classifier[F]) classifyAndVoteParallel(points []F, featureCount int, votes *table.Table[uint32]) (int, error) {
	pointCount := votes.RowCount()
	jobs := make(chan job[F], c.threadCount)

	workerTables := make([]*table.Table[uint32], c.threadCount)
	for i := range workerTables {
		wt, err := table.New[uint32](pointCount, c.classCount, 0)
		if err != nil {
			return 0, err
		}
		workerTables[i] = wt
	}

	group, _ := errgroup.WithContext(context.Background())
	for w := 0; w < c.threadCount; w++ {
		w := w
		group.Go(func() error {
			private := workerTables[w]
			for j := range jobs {
				if j.tree == nil {
					return nil
				}
				if _, err := j.tree.ClassifyAndVote(points, featureCount, private); err != nil {
					return err
				}
			}
			return nil
		})
	}

	voterCount := 0
	var dispatchErr error
dispatch:
	for {
		t, err := c.trees.Next()
		if err != nil {
			dispatchErr = err
			break dispatch
		}
		if t == nil {
			break dispatch
		}
		jobs <- job[F]{tree: t}
		voterCount++
	}
	for i := 0; i < c.threadCount; i++ {
		jobs <- job[F]{tree: nil}
	}
	close(jobs)

	if err := group.Wait(); err != nil {
		return 0, err
	}
	if dispatchErr != nil {
		return 0, dispatchErr
	}

	for _, wt := range workerTables {
		if err := votes.AddAssign(wt); err != nil {
			return 0, err
		}
	}
	return voterCount, nil
}

// Classify casts votes with a fresh table, then assigns each point the
// class maximizing weight[c]*votes[p,c], ties broken to the smallest c.
func (c *Classifier[F]) Classify(points []F, featureCount int, outLabels []uint8) error {
	if featureCount == 0 || len(points)%featureCount != 0 {
		return balsaerr.Input("points length is not a multiple of feature count")
	}
	pointCount := len(points) / featureCount
	if len(outLabels) != pointCount {
		return balsaerr.Inputf("out_labels length %d does not match point count %d", len(outLabels), pointCount)
	}

	votes, err := table.New[uint32](pointCount, c.classCount, 0)
	if err != nil {
		return err
	}
	if _, err := c.ClassifyAndVote(points, featureCount, votes); err != nil {
		return err
	}

	for p := 0; p < pointCount; p++ {
		bestClass := 0
		bestScore := float64(c.classWeights[0]) * float64(votes.Cell(p, 0))
		for cls := 1; cls < c.classCount; cls++ {
			score := float64(c.classWeights[cls]) * float64(votes.Cell(p, cls))
			if score > bestScore {
				bestScore = score
				bestClass = cls
			}
		}
		outLabels[p] = uint8(bestClass)
	}
	return nil
}
