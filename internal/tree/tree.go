// Package tree implements TreeClassifier: bulk classification and vote
// casting for one decision tree, plus small diagnostic dumps.
package tree

import (
	"fmt"
	"io"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/table"
)

// Tree wraps the five parallel node tables that make up one decision
// tree (format.TreeData) with the classification operations of
// TreeClassifier<F>.
type Tree[F format.FeatureValue] struct {
	Data *format.TreeData[F]
}

// New wraps existing tree data.
func New[F format.FeatureValue](data *format.TreeData[F]) *Tree[F] {
	return &Tree[F]{Data: data}
}

// ClassCount returns the number of classes this tree was trained for.
func (t *Tree[F]) ClassCount() int { return int(t.Data.ClassCount) }

// FeatureCount returns the number of features this tree was trained for.
func (t *Tree[F]) FeatureCount() int { return int(t.Data.FeatureCount) }

// workItem is one (node, point range) pair in the iterative walk's
// work-list; pointIdx holds the indices of points currently at node.
type workItem struct {
	node     uint32
	pointIdx []int
}

// ClassifyAndVote walks every point down the tree and increments
// votes[p, label[leaf]] for the leaf it lands on. points has length
// pointCount*featureCount in row-major order. Returns the number of
// trees that voted, which is always 1 for a single tree.
func (t *Tree[F]) ClassifyAndVote(points []F, featureCount int, votes *table.Table[uint32]) (int, error) {
	if featureCount != t.FeatureCount() {
		return 0, balsaerr.Inputf("feature count %d does not match tree's feature count %d", featureCount, t.FeatureCount())
	}
	if featureCount == 0 {
		return 0, balsaerr.Input("feature count must be positive")
	}
	if len(points)%featureCount != 0 {
		return 0, balsaerr.Input("points length is not a multiple of feature count")
	}
	pointCount := len(points) / featureCount
	if votes.RowCount() != pointCount || votes.ColumnCount() != t.ClassCount() {
		return 0, balsaerr.Inputf("vote table shape (%d,%d) does not match (%d,%d)", votes.RowCount(), votes.ColumnCount(), pointCount, t.ClassCount())
	}

	allPoints := make([]int, pointCount)
	for i := range allPoints {
		allPoints[i] = i
	}

	stack := []workItem{{node: 0, pointIdx: allPoints}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		left := t.Data.LeftChild.Cell(int(item.node), 0)
		if left == 0 {
			label := t.Data.Label.Cell(int(item.node), 0)
			for _, p := range item.pointIdx {
				votes.SetCell(p, int(label), votes.Cell(p, int(label))+1)
			}
			continue
		}
		right := t.Data.RightChild.Cell(int(item.node), 0)
		feature := int(t.Data.SplitFeature.Cell(int(item.node), 0))
		threshold := t.Data.SplitValue.Cell(int(item.node), 0)

		var leftPoints, rightPoints []int
		for _, p := range item.pointIdx {
			if points[p*featureCount+feature] < threshold {
				leftPoints = append(leftPoints, p)
			} else {
				rightPoints = append(rightPoints, p)
			}
		}
		if len(leftPoints) > 0 {
			stack = append(stack, workItem{node: left, pointIdx: leftPoints})
		}
		if len(rightPoints) > 0 {
			stack = append(stack, workItem{node: right, pointIdx: rightPoints})
		}
	}

	return 1, nil
}

// Classify allocates a temporary vote table, votes every point, then
// writes the argmax class (ties to the smallest class) per point.
func (t *Tree[F]) Classify(points []F, featureCount int, outLabels []uint8) error {
	if featureCount == 0 || len(points)%featureCount != 0 {
		return balsaerr.Input("points length is not a multiple of feature count")
	}
	pointCount := len(points) / featureCount
	if len(outLabels) != pointCount {
		return balsaerr.Inputf("out_labels length %d does not match point count %d", len(outLabels), pointCount)
	}

	votes, err := table.New[uint32](pointCount, t.ClassCount(), 0)
	if err != nil {
		return err
	}
	if _, err := t.ClassifyAndVote(points, featureCount, votes); err != nil {
		return err
	}
	for p := 0; p < pointCount; p++ {
		c, err := votes.RowMaxColumn(p)
		if err != nil {
			return err
		}
		outLabels[p] = uint8(c)
	}
	return nil
}

// NodeCount returns the number of nodes stored in the tree's arena.
func (t *Tree[F]) NodeCount() int { return t.Data.LeftChild.RowCount() }

// Depth returns the length of the tree's longest root-to-leaf path, in
// edges; a single-node tree (just the root leaf) has depth 0.
func (t *Tree[F]) Depth() int {
	return t.depthOf(0)
}

func (t *Tree[F]) depthOf(node uint32) int {
	left := t.Data.LeftChild.Cell(int(node), 0)
	if left == 0 {
		return 0
	}
	right := t.Data.RightChild.Cell(int(node), 0)
	l := t.depthOf(left)
	r := t.depthOf(right)
	if l > r {
		return 1 + l
	}
	return 1 + r
}

// WriteDOT dumps the tree as a graphviz digraph: interior nodes show
// their split feature and threshold, leaves show their label.
func (t *Tree[F]) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph Tree {"); err != nil {
		return err
	}
	for n := 0; n < t.NodeCount(); n++ {
		left := t.Data.LeftChild.Cell(n, 0)
		if left == 0 {
			label := t.Data.Label.Cell(n, 0)
			if _, err := fmt.Fprintf(w, "  %d [label=\"leaf: class %d\"];\n", n, label); err != nil {
				return err
			}
			continue
		}
		right := t.Data.RightChild.Cell(n, 0)
		feature := t.Data.SplitFeature.Cell(n, 0)
		value := t.Data.SplitValue.Cell(n, 0)
		if _, err := fmt.Fprintf(w, "  %d [label=\"x[%d] < %v\"];\n", n, feature, value); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %d -> %d [label=\"true\"];\n", n, left); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %d -> %d [label=\"false\"];\n", n, right); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
