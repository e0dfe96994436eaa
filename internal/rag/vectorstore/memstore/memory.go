// Package memstore is an exact in-process implementation of the vector store
// contract. It backs tests and dependency-free development runs; behaviour
// (idempotent keyed upserts, score ordering, insertion-order ties) matches
// what the real backends promise.
package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/vectorstore"
)

type entry struct {
	record vectorstore.Record
	seq    int //insertion order, survives replacement
}

type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	byId      map[string]int //record id -> index into entries
	nextSeq   int
}

func New(dimension int) *MemoryStore {
	return &MemoryStore{
		dimension: dimension,
		byId:      make(map[string]int),
	}
}

func (m *MemoryStore) Init(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range records {
		if len(rec.Vector) != m.dimension {
			return policymodel.Faultf(policymodel.FaultStoreWrite,
				"vector dimension %d, collection expects %d", len(rec.Vector), m.dimension)
		}
		if idx, exists := m.byId[rec.Id]; exists {
			m.entries[idx].record = rec
			continue
		}
		m.byId[rec.Id] = len(m.entries)
		m.entries = append(m.entries, entry{record: rec, seq: m.nextSeq})
		m.nextSeq++
	}
	return nil
}

func (m *MemoryStore) Search(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	if len(vector) != m.dimension {
		return nil, policymodel.NewFault(policymodel.FaultStoreRead, false,
			fmt.Errorf("query dimension %d, collection expects %d", len(vector), m.dimension))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		hit vectorstore.Hit
		seq int
	}
	candidates := make([]scored, 0, len(m.entries))
	for _, e := range m.entries {
		if filter.DocumentId != "" && e.record.Payload.DocumentId != filter.DocumentId {
			continue
		}
		score := cosine(vector, e.record.Vector)
		if score < filter.MinScore {
			continue
		}
		candidates = append(candidates, scored{
			hit: vectorstore.Hit{Id: e.record.Id, Score: score, Payload: e.record.Payload},
			seq: e.seq,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hit.Score != candidates[j].hit.Score {
			return candidates[i].hit.Score > candidates[j].hit.Score
		}
		return candidates[i].seq < candidates[j].seq
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	hits := make([]vectorstore.Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}
	return hits, nil
}

// Len reports the number of stored records; test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
