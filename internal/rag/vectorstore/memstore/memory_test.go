package memstore

import (
	"context"
	"testing"

	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/vectorstore"

	"github.com/stretchr/testify/require"
)

func record(docId string, index int, vector []float32) vectorstore.Record {
	return vectorstore.Record{
		Id:     vectorstore.PointID(docId, index),
		Vector: vector,
		Payload: vectorstore.Payload{
			DocumentId: docId,
			ChunkIndex: index,
			Text:       "chunk",
		},
	}
}

func TestUpsertIdempotent(t *testing.T) {
	store := New(3)
	ctx := context.Background()

	rec := record("doc-a", 0, []float32{1, 0, 0})
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{rec}))

	rec.Payload.Text = "replaced"
	rec.Vector = []float32{0, 1, 0}
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{rec}))

	require.Equal(t, 1, store.Len())
	hits, err := store.Search(ctx, []float32{0, 1, 0}, 10, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "replaced", hits[0].Payload.Text)
}

func TestSearchOrderedByScore(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{
		record("doc-a", 0, []float32{1, 0}),
		record("doc-a", 1, []float32{0.7, 0.7}),
		record("doc-a", 2, []float32{0, 1}),
	}))

	hits, err := store.Search(ctx, []float32{1, 0}, 10, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		require.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	require.Equal(t, 0, hits[0].Payload.ChunkIndex)
}

func TestSearchTiesByInsertionOrder(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	// identical vectors, identical scores: earlier inserted wins
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("doc-a", 5, []float32{1, 0})}))
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("doc-b", 1, []float32{1, 0})}))

	hits, err := store.Search(ctx, []float32{1, 0}, 2, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "doc-a", hits[0].Payload.DocumentId)
	require.Equal(t, "doc-b", hits[1].Payload.DocumentId)
}

func TestReplacementKeepsInsertionOrder(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("doc-a", 0, []float32{1, 0})}))
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("doc-b", 0, []float32{1, 0})}))
	// re-ingest doc-a; it still counts as the earlier insertion
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("doc-a", 0, []float32{1, 0})}))

	hits, err := store.Search(ctx, []float32{1, 0}, 2, vectorstore.Filter{})
	require.NoError(t, err)
	require.Equal(t, "doc-a", hits[0].Payload.DocumentId)
}

func TestSearchDocumentFilter(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{
		record("doc-a", 0, []float32{1, 0}),
		record("doc-b", 0, []float32{1, 0}),
	}))

	hits, err := store.Search(ctx, []float32{1, 0}, 10, vectorstore.Filter{DocumentId: "doc-b"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "doc-b", hits[0].Payload.DocumentId)

	hits, err = store.Search(ctx, []float32{1, 0}, 10, vectorstore.Filter{DocumentId: "never-ingested"})
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestSearchMinScore(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{
		record("doc-a", 0, []float32{1, 0}),
		record("doc-a", 1, []float32{-1, 0}),
	}))

	hits, err := store.Search(ctx, []float32{1, 0}, 10, vectorstore.Filter{MinScore: 0.25})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, 0, hits[0].Payload.ChunkIndex)
}

func TestSearchTopKBound(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	records := make([]vectorstore.Record, 0, 8)
	for i := 0; i < 8; i++ {
		records = append(records, record("doc-a", i, []float32{1, 0}))
	}
	require.NoError(t, store.Upsert(ctx, records))

	hits, err := store.Search(ctx, []float32{1, 0}, 5, vectorstore.Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 5)
}

func TestUpsertIsolationAcrossDocuments(t *testing.T) {
	store := New(2)
	ctx := context.Background()

	b := record("doc-b", 0, []float32{0, 1})
	require.NoError(t, store.Upsert(ctx, []vectorstore.Record{b}))

	// ingesting doc-a must not touch doc-b's record
	for i := 0; i < 4; i++ {
		require.NoError(t, store.Upsert(ctx, []vectorstore.Record{record("doc-a", i, []float32{1, 0})}))
	}

	hits, err := store.Search(ctx, []float32{0, 1}, 1, vectorstore.Filter{DocumentId: "doc-b"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, b.Id, hits[0].Id)
	require.InDelta(t, 1.0, float64(hits[0].Score), 1e-6)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	store := New(3)
	err := store.Upsert(context.Background(), []vectorstore.Record{record("doc-a", 0, []float32{1, 0})})
	require.Error(t, err)
	require.Equal(t, policymodel.FaultStoreWrite, policymodel.KindOf(err))
	require.False(t, policymodel.IsTransient(err))
}

func TestSearchDimensionMismatch(t *testing.T) {
	store := New(3)
	_, err := store.Search(context.Background(), []float32{1, 0}, 5, vectorstore.Filter{})
	require.Error(t, err)
	require.Equal(t, policymodel.FaultStoreRead, policymodel.KindOf(err))
}
