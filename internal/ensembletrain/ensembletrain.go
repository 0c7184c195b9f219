// Package ensembletrain implements EnsembleTrainer: coordinating N
// IndexedTreeTrainer runs over a shared training table into one
// ensemble file.
package ensembletrain

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/rng"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/balsa-rf/balsa/internal/train"
)

// Params configures one ensemble training run (spec.md §4.7, §6.2).
type Params struct {
	TreeCount          int
	ThreadCount        int
	MaxDepth           int
	FeaturesToConsider int
	ImpurityThreshold  float64
	Seed               uint64
}

// Train grows Params.TreeCount trees over data/labels and streams them,
// in completion order, into an ensemble block opened on wr. A worker
// error aborts the run without writing the ensemble-end marker, so a
// reader will reject the resulting partial file (spec.md §4.7, §7).
func Train[F format.FeatureValue](wr *format.Writer, data *table.Table[F], labels []uint8, classCount int, params Params) error {
	if params.TreeCount <= 0 {
		return balsaerr.Inputf("tree_count %d must be positive", params.TreeCount)
	}
	if params.ThreadCount <= 0 {
		return balsaerr.Inputf("thread_count %d must be at least 1", params.ThreadCount)
	}

	featureType, err := featureTypeTagOf[F]()
	if err != nil {
		return err
	}
	if err := wr.EnterEnsemble(uint8(classCount), uint8(data.ColumnCount()), featureType); err != nil {
		return err
	}

	seedSource := rng.NewSeedSource(params.Seed)
	sharedIndex := train.BuildSharedIndex(data, labels)

	type builtTree struct {
		data *format.TreeData[F]
	}
	results := make(chan builtTree, params.TreeCount)

	group, ctx := errgroup.WithContext(context.Background())
	jobs := make(chan struct{}, params.TreeCount)
	for i := 0; i < params.TreeCount; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	for w := 0; w < params.ThreadCount; w++ {
		group.Go(func() error {
			for range jobs {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				coin := rng.NewWeightedCoin(seedSource.Next())
				trainer, err := train.NewFromSharedIndex(data, labels, classCount, params.FeaturesToConsider, params.MaxDepth, params.ImpurityThreshold, coin, sharedIndex)
				if err != nil {
					return err
				}
				trainer.Grow()
				treeData, err := trainer.Finish()
				if err != nil {
					return err
				}
				select {
				case results <- builtTree{data: treeData}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- group.Wait()
		close(results)
	}()

	var serializeErr error
	for r := range results {
		if serializeErr != nil {
			continue
		}
		if err := format.WriteTreeBlock(wr, r.data); err != nil {
			serializeErr = err
		}
	}

	if err := <-done; err != nil {
		log.Error().Err(err).Msg("ensemble training aborted; partial output left without an ensemble-end marker")
		return err
	}
	if serializeErr != nil {
		return serializeErr
	}

	return wr.LeaveEnsemble()
}

func featureTypeTagOf[F format.FeatureValue]() (format.TypeTag, error) {
	var zero F
	switch any(zero).(type) {
	case float32:
		return format.TagFloat32, nil
	case float64:
		return format.TagFloat64, nil
	default:
		return "", balsaerr.Internal("unsupported feature value type")
	}
}
