// Package train implements IndexedTreeTrainer: growing one randomized
// decision tree from a training table using per-feature sorted indices.
package train

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/label"
	"github.com/balsa-rf/balsa/internal/rng"
	"github.com/balsa-rf/balsa/internal/table"
)

// featureIndexEntry is one (featureValue, pointID, label) triple in a
// per-feature sorted index.
type featureIndexEntry[F format.FeatureValue] struct {
	value F
	point int
	label uint8
}

// nodeRec is one in-memory tree node, with the annotations the trainer
// needs while growing (label counts, index offset, depth) plus the
// fields that end up serialized (children, split).
type nodeRec[F format.FeatureValue] struct {
	indexOffset int
	pointCount  int
	depth       int
	labelCounts *label.FrequencyTable

	leftChild, rightChild uint32
	splitFeature          uint8
	splitValue            F
	outLabel              uint8
}

func (n *nodeRec[F]) isLeaf() bool { return n.leftChild == 0 }

// splitCandidate bundles a candidate split and the label counts it
// would produce on each side, to avoid recomputing histograms.
type splitCandidate[F format.FeatureValue] struct {
	feature    int
	value      F
	leftCounts *label.FrequencyTable
	// rightCounts holds the right side's label counts; splitNode installs
	// it as the right child's labelCounts.
	rightCounts *label.FrequencyTable
	impurity    float64
}

// Trainer grows one decision tree over a shared, read-only training
// table using its own RNG, node arena and growable-leaf FIFO.
type Trainer[F format.FeatureValue] struct {
	data   *table.Table[F]
	labels []uint8

	classCount         int
	featuresToConsider int
	maxDepth           int
	impurityThreshold  float64
	coin               *rng.WeightedCoin

	featureIndex [][]featureIndexEntry[F]
	nodes        []nodeRec[F]
	growable     []uint32
}

// SharedIndex is the per-feature sorted index of a training table,
// shared read-only across every tree trained on that table (spec.md
// §4.7): sort order depends only on the data and labels, never on a
// tree's own randomness, so it needs computing only once per ensemble.
type SharedIndex[F format.FeatureValue] struct {
	perFeature [][]featureIndexEntry[F]
}

// BuildSharedIndex builds the per-feature sorted index once. This is the
// single most expensive setup step in training an ensemble.
func BuildSharedIndex[F format.FeatureValue](data *table.Table[F], labels []uint8) SharedIndex[F] {
	pointCount := data.RowCount()
	featureCount := data.ColumnCount()
	perFeature := make([][]featureIndexEntry[F], featureCount)
	for f := 0; f < featureCount; f++ {
		entries := make([]featureIndexEntry[F], pointCount)
		for p := 0; p < pointCount; p++ {
			entries[p] = featureIndexEntry[F]{value: data.Cell(p, f), point: p, label: labels[p]}
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].value < entries[j].value })
		perFeature[f] = entries
	}
	return SharedIndex[F]{perFeature: perFeature}
}

// clone returns a tree-private copy of the shared index, since growing
// a tree partitions its index in place.
func (s SharedIndex[F]) clone() [][]featureIndexEntry[F] {
	out := make([][]featureIndexEntry[F], len(s.perFeature))
	for f, entries := range s.perFeature {
		cp := make([]featureIndexEntry[F], len(entries))
		copy(cp, entries)
		out[f] = cp
	}
	return out
}

// New builds the per-feature sorted indices from scratch and the root
// node. This is the expensive one-time setup step per tree; when
// training an ensemble, build a SharedIndex once with BuildSharedIndex
// and call NewFromSharedIndex per tree instead.
func New[F format.FeatureValue](data *table.Table[F], labels []uint8, classCount, featuresToConsider, maxDepth int, impurityThreshold float64, coin *rng.WeightedCoin) (*Trainer[F], error) {
	if err := validateParams(data, labels, featuresToConsider, impurityThreshold); err != nil {
		return nil, err
	}
	shared := BuildSharedIndex(data, labels)
	return newTrainer(data, labels, classCount, featuresToConsider, maxDepth, impurityThreshold, coin, shared.clone()), nil
}

// NewFromSharedIndex builds a tree trainer from a precomputed shared
// index, cloning it into a tree-private copy before growth mutates it.
func NewFromSharedIndex[F format.FeatureValue](data *table.Table[F], labels []uint8, classCount, featuresToConsider, maxDepth int, impurityThreshold float64, coin *rng.WeightedCoin, shared SharedIndex[F]) (*Trainer[F], error) {
	if err := validateParams(data, labels, featuresToConsider, impurityThreshold); err != nil {
		return nil, err
	}
	return newTrainer(data, labels, classCount, featuresToConsider, maxDepth, impurityThreshold, coin, shared.clone()), nil
}

func validateParams[F format.FeatureValue](data *table.Table[F], labels []uint8, featuresToConsider int, impurityThreshold float64) error {
	pointCount := data.RowCount()
	featureCount := data.ColumnCount()
	if len(labels) != pointCount {
		return balsaerr.Input("the number of points in the training set doesn't match the number of labels")
	}
	if featuresToConsider <= 0 || featuresToConsider > featureCount {
		return balsaerr.Inputf("features_to_consider %d must be in [1, %d]", featuresToConsider, featureCount)
	}
	if impurityThreshold < 0 || impurityThreshold > 0.5 {
		return balsaerr.Inputf("impurity_threshold %v must be in [0, 0.5]", impurityThreshold)
	}
	return nil
}

func newTrainer[F format.FeatureValue](data *table.Table[F], labels []uint8, classCount, featuresToConsider, maxDepth int, impurityThreshold float64, coin *rng.WeightedCoin, featureIndex [][]featureIndexEntry[F]) *Trainer[F] {
	t := &Trainer[F]{
		data:               data,
		labels:             labels,
		classCount:         classCount,
		featuresToConsider: featuresToConsider,
		maxDepth:           maxDepth,
		impurityThreshold:  impurityThreshold,
		coin:               coin,
		featureIndex:       featureIndex,
	}

	rootCounts := label.NewFrequencyTableFromLabels(labels, classCount)
	root := nodeRec[F]{indexOffset: 0, pointCount: data.RowCount(), depth: 0, labelCounts: rootCounts, outLabel: rootCounts.MostFrequentLabel()}
	t.nodes = append(t.nodes, root)
	if t.isGrowableNode(0) {
		t.growable = append(t.growable, 0)
	}

	return t
}

// Grow grows the entire tree until no progress is possible.
func (t *Trainer[F]) Grow() {
	for len(t.growable) > 0 {
		nodeID := t.growable[0]
		t.growable = t.growable[1:]
		t.growLeaf(nodeID)
	}
}

func (t *Trainer[F]) isGrowableNode(nodeID uint32) bool {
	n := &t.nodes[nodeID]
	if n.depth >= t.maxDepth {
		return false
	}
	if n.labelCounts.GiniImpurity() <= t.impurityThreshold {
		return false
	}
	return true
}

func (t *Trainer[F]) growLeaf(nodeID uint32) {
	split := t.findBestSplit(nodeID)
	if split != nil {
		t.splitNode(nodeID, split)
	}
}

// findBestSplit runs the reservoir feature-selection sweep: considered
// features are scanned first; if none produced a valid split, the
// initially skipped features are scanned in original order.
func (t *Trainer[F]) findBestSplit(nodeID uint32) *splitCandidate[F] {
	featureCount := t.data.ColumnCount()
	remaining := t.featuresToConsider

	var best *splitCandidate[F]
	var skipped []int
	for f := 0; f < featureCount; f++ {
		featuresLeft := uint32(featureCount - f)
		considerThisFeature := t.coin.Flip(uint32(remaining), featuresLeft)
		if !considerThisFeature {
			skipped = append(skipped, f)
			continue
		}
		remaining--
		best = t.findBestSplitForFeature(nodeID, f, best)
	}

	if best != nil {
		return best
	}

	for _, f := range skipped {
		best = t.findBestSplitForFeature(nodeID, f, best)
		if best != nil {
			return best
		}
	}

	t.logPathologicalCluster(nodeID)
	return nil
}

func (t *Trainer[F]) logPathologicalCluster(nodeID uint32) {
	n := &t.nodes[nodeID]
	anyPoint := t.featureIndex[0][n.indexOffset].point
	log.Warn().
		Uint32("node", nodeID).
		Int("point_count", n.pointCount).
		Int("any_point", anyPoint).
		Msg("training data contains a cluster of identical points with different labels")
}

// findBestSplitForFeature scans feature f's sub-range for this node and
// returns the best split seen, which is at least as good as minimal.
func (t *Trainer[F]) findBestSplitForFeature(nodeID uint32, f int, minimal *splitCandidate[F]) *splitCandidate[F] {
	n := &t.nodes[nodeID]
	index := t.featureIndex[f][n.indexOffset : n.indexOffset+n.pointCount]

	best := minimal
	currentBlockValue := index[0].value
	left := label.NewFrequencyTable(t.classCount)
	right := n.labelCounts.Clone()

	for _, entry := range index {
		if entry.value > currentBlockValue {
			candidate := newSplitCandidate(f, entry.value, left, right)
			if best == nil || candidate.impurity < best.impurity {
				best = candidate
			}
		}
		currentBlockValue = entry.value
		left.Increment(entry.label)
		right.Decrement(entry.label)
	}

	return best
}

func newSplitCandidate[F format.FeatureValue](feature int, value F, left, right *label.FrequencyTable) *splitCandidate[F] {
	leftCounts := left.Clone()
	rightCounts := right.Clone()
	leftTotal := float64(leftCounts.Total())
	rightTotal := float64(rightCounts.Total())
	total := leftTotal + rightTotal
	impurity := (leftCounts.GiniImpurity()*leftTotal + rightCounts.GiniImpurity()*rightTotal) / total
	return &splitCandidate[F]{feature: feature, value: value, leftCounts: leftCounts, rightCounts: rightCounts, impurity: impurity}
}

// splitNode applies a winning split: partitions every other feature's
// index sub-range with a stable predicate partition, then creates the
// two child nodes and enqueues them if growable.
func (t *Trainer[F]) splitNode(nodeID uint32, split *splitCandidate[F]) {
	n := &t.nodes[nodeID]
	leftTotal := int(split.leftCounts.Total())

	for f := range t.featureIndex {
		if f == split.feature {
			continue
		}
		region := t.featureIndex[f][n.indexOffset : n.indexOffset+n.pointCount]
		t.stablePartition(region, split.feature, split.value)
	}

	leftChildID := uint32(len(t.nodes))
	rightChildID := leftChildID + 1

	left := nodeRec[F]{
		indexOffset: n.indexOffset,
		pointCount:  leftTotal,
		depth:       n.depth + 1,
		labelCounts: split.leftCounts,
		outLabel:    split.leftCounts.MostFrequentLabel(),
	}
	right := nodeRec[F]{
		indexOffset: n.indexOffset + leftTotal,
		pointCount:  n.pointCount - leftTotal,
		depth:       n.depth + 1,
		labelCounts: split.rightCounts,
		outLabel:    split.rightCounts.MostFrequentLabel(),
	}

	n.leftChild = leftChildID
	n.rightChild = rightChildID
	n.splitFeature = uint8(split.feature)
	n.splitValue = split.value

	t.nodes = append(t.nodes, left, right)
	if t.isGrowableNode(leftChildID) {
		t.growable = append(t.growable, leftChildID)
	}
	if t.isGrowableNode(rightChildID) {
		t.growable = append(t.growable, rightChildID)
	}
}

// stablePartition reorders region in place so every entry whose data
// value at splitFeature is < splitValue comes first, preserving the
// relative order within each side.
func (t *Trainer[F]) stablePartition(region []featureIndexEntry[F], splitFeature int, splitValue F) {
	left := make([]featureIndexEntry[F], 0, len(region))
	right := make([]featureIndexEntry[F], 0, len(region))
	for _, entry := range region {
		if t.data.Cell(entry.point, splitFeature) < splitValue {
			left = append(left, entry)
		} else {
			right = append(right, entry)
		}
	}
	copy(region, left)
	copy(region[len(left):], right)
}

// Finish serializes the grown tree into the on-disk node table shape.
func (t *Trainer[F]) Finish() (*format.TreeData[F], error) {
	nodeCount := len(t.nodes)
	featureCount := t.data.ColumnCount()

	leftChild, err := table.New[uint32](nodeCount, 1, 0)
	if err != nil {
		return nil, err
	}
	rightChild, err := table.New[uint32](nodeCount, 1, 0)
	if err != nil {
		return nil, err
	}
	splitFeature, err := table.New[uint8](nodeCount, 1, 0)
	if err != nil {
		return nil, err
	}
	splitValue, err := table.New[F](nodeCount, 1, 0)
	if err != nil {
		return nil, err
	}
	labelTable, err := table.New[uint8](nodeCount, 1, 0)
	if err != nil {
		return nil, err
	}

	for i, n := range t.nodes {
		leftChild.SetCell(i, 0, n.leftChild)
		rightChild.SetCell(i, 0, n.rightChild)
		splitFeature.SetCell(i, 0, n.splitFeature)
		splitValue.SetCell(i, 0, n.splitValue)
		labelTable.SetCell(i, 0, n.outLabel)
	}

	return &format.TreeData[F]{
		ClassCount:   uint8(t.classCount),
		FeatureCount: uint8(featureCount),
		LeftChild:    leftChild,
		RightChild:   rightChild,
		SplitFeature: splitFeature,
		SplitValue:   splitValue,
		Label:        labelTable,
	}, nil
}
