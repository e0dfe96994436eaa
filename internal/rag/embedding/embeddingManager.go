package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. One vector per input,
// order preserved; every call within a deployment returns the same
// dimensionality. Implementations split oversized batches internally and
// reassemble results in order.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

// SplitBatches caps batch sizes for the provider APIs while keeping global
// ordering: concatenating the groups yields the original slice.
func SplitBatches(texts []string, size int) [][]string {
	if size <= 0 || len(texts) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[start:end])
	}
	return batches
}
