// Package treestream implements TreeInputStream: a resettable stream of
// trees read from a Balsa ensemble file with a bounded preload cache.
package treestream

import (
	"io"

	"github.com/balsa-rf/balsa/internal/balsaerr"
	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/tree"
)

// Stream reads trees from an ensemble block of a Balsa file. maxPreload
// == 0 loads every tree into memory at the first Next call; rewind then
// never reloads. maxPreload == k > 0 keeps a ring buffer of up to k
// trees, refilling whenever it drains. Not safe for concurrent use.
type Stream[F format.FeatureValue] struct {
	reader       *format.Reader
	maxPreload   int
	ClassCount   int
	FeatureCount int

	cache      []*tree.Tree[F]
	cacheIndex int
}

// Open validates the file header, enters its ensemble, and returns a
// Stream positioned at the first tree.
func Open[F format.FeatureValue](r io.ReadSeeker, maxPreload int) (*Stream[F], error) {
	reader, err := format.NewReader(r)
	if err != nil {
		return nil, err
	}
	header, err := reader.EnterEnsemble()
	if err != nil {
		return nil, err
	}
	return &Stream[F]{
		reader:       reader,
		maxPreload:   maxPreload,
		ClassCount:   int(header.ClassCount),
		FeatureCount: int(header.FeatureCount),
	}, nil
}

// Rewind flushes the cache (unless maxPreload==0, which keeps every
// tree permanently cached) and seeks back to the first tree's offset.
func (s *Stream[F]) Rewind() error {
	if s.maxPreload != 0 {
		s.cache = nil
	}
	s.cacheIndex = 0
	return s.reader.ReenterEnsemble()
}

// Next returns the next tree in the stream, or (nil, nil) at the end of
// the ensemble.
func (s *Stream[F]) Next() (*tree.Tree[F], error) {
	if s.cacheIndex == len(s.cache) {
		if s.maxPreload != 0 || len(s.cache) == 0 {
			if err := s.fetch(); err != nil {
				return nil, err
			}
		}
	}
	if s.cacheIndex == len(s.cache) {
		return nil, nil
	}
	t := s.cache[s.cacheIndex]
	s.cacheIndex++
	return t, nil
}

func (s *Stream[F]) fetch() error {
	s.cache = s.cache[:0]
	s.cacheIndex = 0

	if !s.reader.AtTree() {
		return nil
	}

	for s.maxPreload == 0 || len(s.cache) < s.maxPreload {
		if !s.reader.AtTree() {
			break
		}
		data, err := format.ParseTree[F](s.reader)
		if err != nil {
			return balsaerr.Resource("reading next tree in stream", err)
		}
		s.cache = append(s.cache, tree.New(data))
	}
	return nil
}
