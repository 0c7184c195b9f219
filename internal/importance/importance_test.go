package importance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// perfectClassifier predicts sign(points[:,0]) exactly, so shuffling
// feature 0 should hurt accuracy while shuffling feature 1 (unused)
// should not.
type perfectClassifier struct{}

func (perfectClassifier) Classify(points []float32, featureCount int, outLabels []uint8) error {
	pointCount := len(points) / featureCount
	for p := 0; p < pointCount; p++ {
		if points[p*featureCount] >= 0 {
			outLabels[p] = 1
		} else {
			outLabels[p] = 0
		}
	}
	return nil
}

func TestComputeUnusedFeatureHasLowImportance(t *testing.T) {
	points := []float32{
		-3, 1,
		-2, 2,
		-1, 3,
		1, 4,
		2, 5,
		3, 6,
	}
	labels := []uint8{0, 0, 0, 1, 1, 1}

	importances, err := Compute[float32](perfectClassifier{}, points, 2, labels, 5)
	require.NoError(t, err)
	require.Len(t, importances, 2)
	require.InDelta(t, 0.0, importances[1], 1e-9)
	require.Greater(t, importances[0], importances[1])
}

func TestComputeRejectsNonPositiveRepeats(t *testing.T) {
	_, err := Compute[float32](perfectClassifier{}, []float32{1, 2}, 2, []uint8{0}, 0)
	require.Error(t, err)
}
