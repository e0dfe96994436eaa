package embedding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitBatchesPreservesOrder(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}
	batches := SplitBatches(texts, 2)
	require.Len(t, batches, 3)

	var flat []string
	for _, b := range batches {
		require.LessOrEqual(t, len(b), 2)
		flat = append(flat, b...)
	}
	require.Equal(t, texts, flat)
}

func TestSplitBatchesSingle(t *testing.T) {
	batches := SplitBatches([]string{"only"}, 100)
	require.Len(t, batches, 1)
	require.Equal(t, []string{"only"}, batches[0])
}

func TestSplitBatchesEmpty(t *testing.T) {
	require.Nil(t, SplitBatches(nil, 10))
	require.Nil(t, SplitBatches([]string{"x"}, 0))
}
