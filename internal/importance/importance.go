// Package importance implements FeatureImportance: permutation-based
// per-feature accuracy drop (spec.md §4.10).
package importance

import (
	"math/rand"

	"github.com/balsa-rf/balsa/internal/balsaerr"
)

// Classifier is the subset of EnsembleClassifier needed to score a
// dataset: classify a flat row-major point buffer into labels.
type Classifier[F any] interface {
	Classify(points []F, featureCount int, outLabels []uint8) error
}

// Compute returns, for each feature, the reference accuracy minus the
// mean accuracy of the classifier over `repeats` permutations of that
// feature's column, leaving every other column unchanged.
func Compute[F any](classifier Classifier[F], points []F, featureCount int, labels []uint8, repeats int) ([]float64, error) {
	if repeats <= 0 {
		return nil, balsaerr.Inputf("repeats %d must be positive", repeats)
	}
	if featureCount <= 0 || len(points)%featureCount != 0 {
		return nil, balsaerr.Input("points length is not a multiple of feature count")
	}
	pointCount := len(points) / featureCount
	if len(labels) != pointCount {
		return nil, balsaerr.Inputf("labels length %d does not match point count %d", len(labels), pointCount)
	}

	reference, err := accuracy(classifier, points, featureCount, labels)
	if err != nil {
		return nil, err
	}

	importances := make([]float64, featureCount)
	shuffled := make([]F, len(points))
	permutation := make([]int, pointCount)

	for f := 0; f < featureCount; f++ {
		var sum float64
		for r := 0; r < repeats; r++ {
			fisherYates(permutation)
			copy(shuffled, points)
			for p := 0; p < pointCount; p++ {
				shuffled[p*featureCount+f] = points[permutation[p]*featureCount+f]
			}
			acc, err := accuracy(classifier, shuffled, featureCount, labels)
			if err != nil {
				return nil, err
			}
			sum += acc
		}
		importances[f] = reference - sum/float64(repeats)
	}

	return importances, nil
}

func accuracy[F any](classifier Classifier[F], points []F, featureCount int, labels []uint8) (float64, error) {
	predictions := make([]uint8, len(labels))
	if err := classifier.Classify(points, featureCount, predictions); err != nil {
		return 0, err
	}
	correct := 0
	for i, l := range labels {
		if predictions[i] == l {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// fisherYates fills permutation with a fresh identity-then-shuffle
// permutation of [0, len(permutation)), using a seed independent of the
// training/classification MT19937 engines (spec.md §4.10 calls for "a
// fresh seed" per repeat, not the shared deterministic engine).
func fisherYates(permutation []int) {
	for i := range permutation {
		permutation[i] = i
	}
	for i := len(permutation) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		permutation[i], permutation[j] = permutation[j], permutation[i]
	}
}
