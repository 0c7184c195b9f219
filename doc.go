// Package balsa trains and serves random-forest classifiers over
// indexed decision trees, using a self-describing binary container
// format for persisted ensembles.
//
// Train an ensemble with TrainEnsemble, then open it for classification
// with OpenRandomForestClassifier. Both accept functional options
// following the pattern of this module's binary-container-writer
// ancestry: documented defaults, overridable one option at a time.
package balsa
