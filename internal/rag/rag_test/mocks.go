package rag_test

import (
	"context"

	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/vectorstore"
)

// MockStore implements vectorstore.Store
type MockStore struct {
	// Control fields to simulate different behaviors
	OnInit   func(ctx context.Context) error
	OnUpsert func(ctx context.Context, records []vectorstore.Record) error
	OnSearch func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error)

	SearchCalls int
}

func (m *MockStore) Init(ctx context.Context) error {
	if m.OnInit != nil {
		return m.OnInit(ctx)
	}
	return nil
}

func (m *MockStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, records)
	}
	return nil
}

func (m *MockStore) Search(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	m.SearchCalls++
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, topK, filter)
	}
	return []vectorstore.Hit{PolicyHit(0, 0.9, "default policy context")}, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)

	EmbedCalls int
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	m.EmbedCalls++
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk count
	return make([][]float32, len(chunks)), nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, system string, prompt string) (string, error)

	GenerateCalls int
	LastPrompt    string
}

func (m *MockLLM) Generate(ctx context.Context, system string, prompt string) (string, error) {
	m.GenerateCalls++
	m.LastPrompt = prompt
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, system, prompt)
	}
	return "mocked llm response", nil
}

// MockRegistry implements policymodel.Registry; the query pipeline never
// touches it, so everything is a no-op.
type MockRegistry struct{}

func (m *MockRegistry) Get(ctx context.Context, docId string) (policymodel.Document, bool) {
	return policymodel.Document{}, false
}
func (m *MockRegistry) List(ctx context.Context) ([]policymodel.Document, error) { return nil, nil }
func (m *MockRegistry) TryStart(ctx context.Context, doc policymodel.Document) (bool, error) {
	return true, nil
}
func (m *MockRegistry) SetStage(ctx context.Context, docId string, stage policymodel.IngestStage) error {
	return nil
}
func (m *MockRegistry) SetCounts(ctx context.Context, docId string, pages, chunks int) error {
	return nil
}
func (m *MockRegistry) MarkReady(ctx context.Context, docId string) error { return nil }
func (m *MockRegistry) MarkFailed(ctx context.Context, docId string, kind policymodel.FaultKind, msg string) error {
	return nil
}

// PolicyHit builds a search hit with enough payload to exercise citations.
func PolicyHit(index int, score float32, text string) vectorstore.Hit {
	return vectorstore.Hit{
		Id:    vectorstore.PointID("access-policy", index),
		Score: score,
		Payload: vectorstore.Payload{
			DocumentId:   "access-policy",
			DocumentName: "Access Policy",
			ChunkIndex:   index,
			Text:         text,
			PageFirst:    index + 1,
			PageLast:     index + 1,
			PolicyType:   "access",
			Version:      "2.1",
		},
	}
}
