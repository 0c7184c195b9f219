package balsa

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/ensembletrain"
	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/importance"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/balsa-rf/balsa/internal/treestream"
	"github.com/balsa-rf/balsa/internal/vote"
)

// trainConfig holds the resolved settings for one TrainEnsemble call,
// defaulted per spec.md §6.2 and overridden by TrainOption values.
type trainConfig struct {
	treeCount          int
	maxDepth           int
	featuresToConsider int
	impurityThreshold  float64
	threadCount        int
	seed               uint64
	hasSeed            bool
	creator            format.CreatorMetadata
}

func defaultTrainConfig() trainConfig {
	return trainConfig{
		treeCount:          150,
		maxDepth:           math.MaxInt32,
		featuresToConsider: 0,
		impurityThreshold:  0,
		threadCount:        1,
	}
}

// TrainOption configures a TrainEnsemble call. Follows the functional
// options pattern: each option mutates a config built from defaults.
type TrainOption func(*trainConfig)

// WithTreeCount sets the number of trees to train (default 150).
func WithTreeCount(n int) TrainOption { return func(c *trainConfig) { c.treeCount = n } }

// WithMaxDepth caps each tree's depth (default unbounded).
func WithMaxDepth(n int) TrainOption { return func(c *trainConfig) { c.maxDepth = n } }

// WithFeaturesToConsider sets how many features the reservoir sweep
// considers per split (default 0, meaning ceil(sqrt(featureCount))).
func WithFeaturesToConsider(n int) TrainOption {
	return func(c *trainConfig) { c.featuresToConsider = n }
}

// WithImpurityThreshold sets the minimum Gini impurity a node must have
// to remain growable (default 0: grow until pure).
func WithImpurityThreshold(threshold float64) TrainOption {
	return func(c *trainConfig) { c.impurityThreshold = threshold }
}

// WithThreadCount sets the number of worker threads training trees
// concurrently (default 1).
func WithThreadCount(n int) TrainOption { return func(c *trainConfig) { c.threadCount = n } }

// WithSeed fixes the master seed source's seed, for reproducible runs
// (default: OS-random).
func WithSeed(seed uint64) TrainOption {
	return func(c *trainConfig) { c.seed = seed; c.hasSeed = true }
}

// WithCreatorMetadata records the training tool's identity in the
// output file's header.
func WithCreatorMetadata(name string, major, minor, patch uint8) TrainOption {
	return func(c *trainConfig) {
		c.creator = format.CreatorMetadata{
			Name: name, HasName: true,
			Major: major, HasMajor: true,
			Minor: minor, HasMinor: true,
			Patch: patch, HasPatch: true,
		}
	}
}

// TrainEnsemble trains treeCount randomized decision trees over data
// and labels and writes them as an ensemble to outPath.
func TrainEnsemble[F format.FeatureValue](data *table.Table[F], labels []uint8, classCount int, outPath string, opts ...TrainOption) error {
	cfg := defaultTrainConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.featuresToConsider == 0 {
		cfg.featuresToConsider = int(math.Ceil(math.Sqrt(float64(data.ColumnCount()))))
	}
	if !cfg.hasSeed {
		cfg.seed = osRandomSeed()
	}
	if !cfg.creator.HasName {
		cfg.creator.Name = "balsa-" + uuid.NewString()
		cfg.creator.HasName = true
	}

	f, err := os.Create(outPath)
	if err != nil {
		return balsaerr.Resource("creating output file "+outPath, err)
	}
	defer f.Close()

	wr, err := format.NewWriter(f, cfg.creator)
	if err != nil {
		return err
	}

	log.Info().
		Int("tree_count", cfg.treeCount).
		Int("thread_count", cfg.threadCount).
		Int("features_to_consider", cfg.featuresToConsider).
		Str("output", outPath).
		Msg("training ensemble")

	params := ensembletrain.Params{
		TreeCount:          cfg.treeCount,
		ThreadCount:        cfg.threadCount,
		MaxDepth:           cfg.maxDepth,
		FeaturesToConsider: cfg.featuresToConsider,
		ImpurityThreshold:  cfg.impurityThreshold,
		Seed:               cfg.seed,
	}
	if err := ensembletrain.Train(wr, data, labels, classCount, params); err != nil {
		log.Error().Err(err).Msg("ensemble training failed")
		return err
	}

	log.Info().Msg("ensemble training complete")
	return nil
}

func osRandomSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any real
		// platform; fall back to a fixed seed rather than panic so
		// training still proceeds, deterministically, in that case.
		return 0x9e3779b97f4a7c15
	}
	return binary.NativeEndian.Uint64(buf[:])
}

// classifierConfig holds resolved settings for OpenRandomForestClassifier.
type classifierConfig struct {
	maxThreads int
	maxPreload int
}

// ClassifierOption configures an OpenRandomForestClassifier call.
type ClassifierOption func(*classifierConfig)

// WithMaxThreads sets the number of worker threads used to classify
// (default 0: single-threaded).
func WithMaxThreads(n int) ClassifierOption { return func(c *classifierConfig) { c.maxThreads = n } }

// WithMaxPreload sets how many trees are cached in memory at a time
// (default 0: load all trees into memory).
func WithMaxPreload(n int) ClassifierOption { return func(c *classifierConfig) { c.maxPreload = n } }

// RandomForestClassifier serves classification and voting over an
// ensemble loaded from a Balsa container file.
type RandomForestClassifier[F format.FeatureValue] struct {
	file       *os.File
	stream     *treestream.Stream[F]
	classifier *vote.Classifier[F]
}

// OpenRandomForestClassifier opens path, validates its header, and
// returns a classifier ready to serve Classify/ClassifyAndVote calls.
func OpenRandomForestClassifier[F format.FeatureValue](path string, opts ...ClassifierOption) (*RandomForestClassifier[F], error) {
	cfg := classifierConfig{maxThreads: 0, maxPreload: 0}
	for _, opt := range opts {
		opt(&cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, balsaerr.Resource("opening model file "+path, err)
	}

	stream, err := treestream.Open[F](f, cfg.maxPreload)
	if err != nil {
		f.Close()
		return nil, err
	}

	classifier := vote.New[F](stream, stream.ClassCount, stream.FeatureCount, cfg.maxThreads)

	log.Info().
		Str("path", path).
		Int("class_count", stream.ClassCount).
		Int("feature_count", stream.FeatureCount).
		Msg("opened random forest classifier")

	return &RandomForestClassifier[F]{file: f, stream: stream, classifier: classifier}, nil
}

// Close releases the underlying file handle.
func (c *RandomForestClassifier[F]) Close() error { return c.file.Close() }

// GetClassCount returns the number of classes the model distinguishes.
func (c *RandomForestClassifier[F]) GetClassCount() int { return c.stream.ClassCount }

// GetFeatureCount returns the number of features the model expects.
func (c *RandomForestClassifier[F]) GetFeatureCount() int { return c.stream.FeatureCount }

// SetClassWeights installs per-class weights used by Classify's argmax.
func (c *RandomForestClassifier[F]) SetClassWeights(weights []float32) error {
	return c.classifier.SetClassWeights(weights)
}

// ClassifyAndVote casts every tree's vote into votes and returns the
// number of trees that voted.
func (c *RandomForestClassifier[F]) ClassifyAndVote(points []F, featureCount int, votes *table.Table[uint32]) (int, error) {
	return c.classifier.ClassifyAndVote(points, featureCount, votes)
}

// Classify assigns one label per point.
func (c *RandomForestClassifier[F]) Classify(points []F, featureCount int, outLabels []uint8) error {
	return c.classifier.Classify(points, featureCount, outLabels)
}

// FeatureImportance computes the permutation-based accuracy drop for
// every feature, as described in spec.md §4.10.
func (c *RandomForestClassifier[F]) FeatureImportance(points []F, featureCount int, labels []uint8, repeats int) ([]float64, error) {
	return importance.Compute[F](c.classifier, points, featureCount, labels, repeats)
}
