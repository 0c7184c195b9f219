package treestream

import (
	"bytes"
	"testing"

	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/stretchr/testify/require"
)

func buildEnsembleFile(t *testing.T, treeCount int) []byte {
	t.Helper()
	var buf bytes.Buffer
	wr, err := format.NewWriter(&buf, format.CreatorMetadata{})
	require.NoError(t, err)
	require.NoError(t, wr.EnterEnsemble(2, 1, format.TagFloat32))
	for i := 0; i < treeCount; i++ {
		left, err := table.New[uint32](1, 1, 0)
		require.NoError(t, err)
		right, err := table.New[uint32](1, 1, 0)
		require.NoError(t, err)
		splitFeature, err := table.New[uint8](1, 1, 0)
		require.NoError(t, err)
		splitValue, err := table.New[float32](1, 1, 0)
		require.NoError(t, err)
		labelTable, err := table.New[uint8](1, 1, uint8(i%2))
		require.NoError(t, err)
		data := &format.TreeData[float32]{
			ClassCount: 2, FeatureCount: 1,
			LeftChild: left, RightChild: right,
			SplitFeature: splitFeature, SplitValue: splitValue, Label: labelTable,
		}
		require.NoError(t, format.WriteTreeBlock(wr, data))
	}
	require.NoError(t, wr.LeaveEnsemble())
	return buf.Bytes()
}

func TestStreamLoadAll(t *testing.T) {
	raw := buildEnsembleFile(t, 5)
	s, err := Open[float32](bytes.NewReader(raw), 0)
	require.NoError(t, err)
	require.Equal(t, 2, s.ClassCount)

	count := 0
	for {
		tr, err := s.Next()
		require.NoError(t, err)
		if tr == nil {
			break
		}
		count++
	}
	require.Equal(t, 5, count)

	require.NoError(t, s.Rewind())
	count = 0
	for {
		tr, err := s.Next()
		require.NoError(t, err)
		if tr == nil {
			break
		}
		count++
	}
	require.Equal(t, 5, count)
}

func TestStreamBoundedPreload(t *testing.T) {
	raw := buildEnsembleFile(t, 7)
	s, err := Open[float32](bytes.NewReader(raw), 2)
	require.NoError(t, err)

	count := 0
	for {
		tr, err := s.Next()
		require.NoError(t, err)
		if tr == nil {
			break
		}
		count++
	}
	require.Equal(t, 7, count)

	require.NoError(t, s.Rewind())
	tr, err := s.Next()
	require.NoError(t, err)
	require.NotNil(t, tr)
}
