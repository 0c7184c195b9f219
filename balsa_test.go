package balsa

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/balsa-rf/balsa/internal/table"
)

func crossData(t *testing.T) (*table.Table[float32], []uint8) {
	t.Helper()
	data, err := table.New[float32](4, 2, 0)
	require.NoError(t, err)
	points := [][2]float32{{-1, 1}, {1, 1}, {-1, -1}, {1, -1}}
	for i, p := range points {
		data.SetCell(i, 0, p[0])
		data.SetCell(i, 1, p[1])
	}
	return data, []uint8{0, 1, 1, 0}
}

func TestTrainAndReopenRoundTrip(t *testing.T) {
	data, labels := crossData(t)
	path := filepath.Join(t.TempDir(), "forest.blsa")

	err := TrainEnsemble[float32](data, labels, 2, path,
		WithTreeCount(3),
		WithFeaturesToConsider(2),
		WithSeed(7),
	)
	require.NoError(t, err)

	clf, err := OpenRandomForestClassifier[float32](path)
	require.NoError(t, err)
	defer clf.Close()

	require.Equal(t, 2, clf.GetClassCount())
	require.Equal(t, 2, clf.GetFeatureCount())

	points := []float32{-1, 1, 1, 1, -1, -1, 1, -1}
	labelsOut := make([]uint8, 4)
	require.NoError(t, clf.Classify(points, 2, labelsOut))
	require.Equal(t, []uint8{0, 1, 1, 0}, labelsOut)
}

func TestReopenedClassifierRejectsBadClassWeights(t *testing.T) {
	data, labels := crossData(t)
	path := filepath.Join(t.TempDir(), "forest.blsa")

	require.NoError(t, TrainEnsemble[float32](data, labels, 2, path,
		WithTreeCount(9),
		WithFeaturesToConsider(2),
		WithSeed(11),
	))

	clf, err := OpenRandomForestClassifier[float32](path)
	require.NoError(t, err)
	defer clf.Close()

	require.Error(t, clf.SetClassWeights([]float32{-1, 1}))
	require.Error(t, clf.SetClassWeights([]float32{1, 1, 1}))
	require.NoError(t, clf.SetClassWeights([]float32{1, 1}))
}

func TestTrainEnsembleRejectsBadOutputPath(t *testing.T) {
	data, labels := crossData(t)
	err := TrainEnsemble[float32](data, labels, 2, filepath.Join(t.TempDir(), "missing-dir", "forest.blsa"))
	require.Error(t, err)
}

func TestFeatureImportanceReturnsOneValuePerFeature(t *testing.T) {
	data, labels := crossData(t)
	path := filepath.Join(t.TempDir(), "forest.blsa")
	require.NoError(t, TrainEnsemble[float32](data, labels, 2, path,
		WithTreeCount(9),
		WithFeaturesToConsider(2),
		WithSeed(3),
	))

	clf, err := OpenRandomForestClassifier[float32](path)
	require.NoError(t, err)
	defer clf.Close()

	points := []float32{-1, 1, 1, 1, -1, -1, 1, -1}
	importances, err := clf.FeatureImportance(points, 2, labels, 3)
	require.NoError(t, err)
	require.Len(t, importances, 2)
}
