package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"policyrag/internal/domain/policymodel"
)

type InMemoryDocumentRegistry struct {
	docMutex *sync.RWMutex
	docMap   map[string]policymodel.Document
}

func InitInMemoryDocumentRegistry() *InMemoryDocumentRegistry {
	return &InMemoryDocumentRegistry{
		docMutex: new(sync.RWMutex),
		docMap:   make(map[string]policymodel.Document),
	}
}

func (r *InMemoryDocumentRegistry) Get(ctx context.Context, docId string) (policymodel.Document, bool) {
	r.docMutex.RLock()
	defer r.docMutex.RUnlock()
	doc, found := r.docMap[docId]
	return doc, found
}

func (r *InMemoryDocumentRegistry) List(ctx context.Context) ([]policymodel.Document, error) {
	r.docMutex.RLock()
	defer r.docMutex.RUnlock()
	docs := make([]policymodel.Document, 0, len(r.docMap))
	for _, doc := range r.docMap {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.Before(docs[j].UploadedAt) })
	return docs, nil
}

func (r *InMemoryDocumentRegistry) TryStart(ctx context.Context, doc policymodel.Document) (bool, error) {
	r.docMutex.Lock()
	defer r.docMutex.Unlock()
	if existing, found := r.docMap[doc.Id]; found && !existing.Status.Terminal() {
		return false, nil
	}
	r.docMap[doc.Id] = doc
	return true, nil
}

func (r *InMemoryDocumentRegistry) SetStage(ctx context.Context, docId string, stage policymodel.IngestStage) error {
	return r.update(docId, func(doc *policymodel.Document) {
		doc.Stage = stage
		doc.Status = policymodel.StatusForStage(stage)
	})
}

func (r *InMemoryDocumentRegistry) SetCounts(ctx context.Context, docId string, pages, chunks int) error {
	return r.update(docId, func(doc *policymodel.Document) {
		doc.PageCount = pages
		doc.ChunkCount = chunks
	})
}

func (r *InMemoryDocumentRegistry) MarkReady(ctx context.Context, docId string) error {
	return r.update(docId, func(doc *policymodel.Document) {
		doc.Stage = policymodel.StageReady
		doc.Status = policymodel.DocStatusReady
		doc.ErrorKind = ""
		doc.ErrorMessage = ""
	})
}

func (r *InMemoryDocumentRegistry) MarkFailed(ctx context.Context, docId string, kind policymodel.FaultKind, msg string) error {
	return r.update(docId, func(doc *policymodel.Document) {
		doc.Stage = policymodel.StageFailed
		doc.Status = policymodel.DocStatusFailed
		doc.ErrorKind = kind
		doc.ErrorMessage = msg
	})
}

func (r *InMemoryDocumentRegistry) update(docId string, mutate func(*policymodel.Document)) error {
	r.docMutex.Lock()
	defer r.docMutex.Unlock()
	doc, found := r.docMap[docId]
	if !found {
		return fmt.Errorf("document %s not in registry", docId)
	}
	mutate(&doc)
	doc.UpdatedAt = time.Now()
	r.docMap[docId] = doc
	return nil
}
