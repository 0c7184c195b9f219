package ensembletrain

import (
	"bytes"
	"testing"

	"github.com/balsa-rf/balsa/internal/format"
	"github.com/balsa-rf/balsa/internal/table"
	"github.com/stretchr/testify/require"
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

func TestTrainWritesEnsembleOfRequestedSize(t *testing.T) {
	data, labels := crossData(t)
	var buf bytes.Buffer
	wr, err := format.NewWriter(&buf, format.CreatorMetadata{})
	require.NoError(t, err)

	params := Params{TreeCount: 5, ThreadCount: 2, MaxDepth: 1 << 30, FeaturesToConsider: 2, ImpurityThreshold: 0, Seed: 42}
	require.NoError(t, Train(wr, data, labels, 2, params))

	rd, err := format.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	header, err := rd.EnterEnsemble()
	require.NoError(t, err)
	require.Equal(t, uint8(2), header.ClassCount)

	count := 0
	for rd.AtTree() {
		_, err := format.ParseTree[float32](rd)
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 5, count)
	require.NoError(t, rd.LeaveEnsemble())
}

func TestTrainRejectsNonPositiveTreeCount(t *testing.T) {
	data, labels := crossData(t)
	var buf bytes.Buffer
	wr, err := format.NewWriter(&buf, format.CreatorMetadata{})
	require.NoError(t, err)

	params := Params{TreeCount: 0, ThreadCount: 1, MaxDepth: 10, FeaturesToConsider: 2, ImpurityThreshold: 0, Seed: 1}
	err = Train(wr, data, labels, 2, params)
	require.Error(t, err)
}
