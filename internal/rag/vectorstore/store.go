package vectorstore

import (
	"context"
	"fmt"

	"policyrag/internal/domain/policymodel"

	"github.com/google/uuid"
)

// Payload is the fixed struct attached to every vector. Deliberately not an
// open map: the set of fields is part of the store contract.
type Payload struct {
	DocumentId   string   `json:"document_id"`
	DocumentName string   `json:"doc_name"`
	ChunkIndex   int      `json:"chunk_index"`
	Text         string   `json:"text"`
	PageFirst    int      `json:"page_first"`
	PageLast     int      `json:"page_last"`
	PolicyType   string   `json:"policy_type,omitempty"`
	Version      string   `json:"version,omitempty"`
	Jurisdiction string   `json:"jurisdiction,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

// Record is the persisted unit: one per chunk, keyed by a deterministic id so
// re-ingestion replaces instead of duplicating.
type Record struct {
	Id      string
	Vector  []float32
	Payload Payload
}

type Hit struct {
	Id      string
	Score   float32
	Payload Payload
}

// Filter narrows a search. MinScore drops weak matches; DocumentId restricts
// to one document.
type Filter struct {
	DocumentId string
	MinScore   float32
}

// Store is the vector database contract: idempotent writes keyed by
// (document_id, chunk_index), cosine top-k reads ordered by descending
// score with ties broken by insertion order.
type Store interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, topK int, filter Filter) ([]Hit, error)
}

// PointID derives the stable record id for one chunk key. Same input, same
// id, on every run.
func PointID(documentId string, chunkIndex int) string {
	name := fmt.Sprintf("%s:%d", documentId, chunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// RecordFor maps an embedded chunk and its document metadata onto the
// persisted shape.
func RecordFor(doc policymodel.Document, chunk policymodel.Chunk) Record {
	return Record{
		Id:     PointID(chunk.DocumentId, chunk.Index),
		Vector: chunk.Vector,
		Payload: Payload{
			DocumentId:   chunk.DocumentId,
			DocumentName: doc.Name,
			ChunkIndex:   chunk.Index,
			Text:         chunk.Text,
			PageFirst:    chunk.PageFirst,
			PageLast:     chunk.PageLast,
			PolicyType:   doc.Meta.PolicyType,
			Version:      doc.Meta.Version,
			Jurisdiction: doc.Meta.Jurisdiction,
			Roles:        chunk.Roles,
		},
	}
}
