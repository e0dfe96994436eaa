package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"policyrag/internal/config"
	"policyrag/internal/data/redisstore"
	"policyrag/internal/domain/policymodel"
	"policyrag/pkg/logger_i"
)

const docKeyPrefix = "doc:"
const docIndexKey = "doc:index"

// RedisDocumentRegistry keeps one state record per document id plus a set of
// known ids for listing. Records carry no TTL; documents are never expired.
type RedisDocumentRegistry struct {
	store  *redisstore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentRegistry(ctx context.Context) *RedisDocumentRegistry {
	inner := redisstore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentRegistry{
		store:  inner,
		logger: logger_i.NewLogger("DocRegistry"),
	}
}

func (r *RedisDocumentRegistry) Get(ctx context.Context, docId string) (policymodel.Document, bool) {
	var doc policymodel.Document
	val, err := r.store.Get(ctx, docKeyPrefix+docId)
	if r.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		r.logger.WithTrace(ctx).Error("Error reading document record", "docId", docId, "error", err)
		return doc, false
	}
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		r.logger.Error("Error unmarshalling document record", "docId", docId, "error", err)
		return doc, false
	}
	return doc, true
}

func (r *RedisDocumentRegistry) List(ctx context.Context) ([]policymodel.Document, error) {
	ids, err := r.store.SetMembers(ctx, docIndexKey)
	if err != nil {
		return nil, fmt.Errorf("listing document index: %w", err)
	}
	docs := make([]policymodel.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := r.Get(ctx, id); ok {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt.Before(docs[j].UploadedAt) })
	return docs, nil
}

// TryStart claims the document for ingestion. Refused while a previous
// ingestion of the same id is still in flight.
func (r *RedisDocumentRegistry) TryStart(ctx context.Context, doc policymodel.Document) (bool, error) {
	log := r.logger.WithTrace(ctx).With("docId", doc.Id)
	if existing, ok := r.Get(ctx, doc.Id); ok && !existing.Status.Terminal() {
		log.Debug("document ingestion already in flight", "status", existing.Status)
		return false, nil
	}
	if err := r.save(ctx, doc); err != nil {
		return false, err
	}
	if err := r.store.SetAdd(ctx, docIndexKey, doc.Id); err != nil {
		return false, fmt.Errorf("indexing document %s: %w", doc.Id, err)
	}
	log.Debug("document registered", "status", doc.Status)
	return true, nil
}

func (r *RedisDocumentRegistry) SetStage(ctx context.Context, docId string, stage policymodel.IngestStage) error {
	return r.update(ctx, docId, func(doc *policymodel.Document) {
		doc.Stage = stage
		doc.Status = policymodel.StatusForStage(stage)
	})
}

func (r *RedisDocumentRegistry) SetCounts(ctx context.Context, docId string, pages, chunks int) error {
	return r.update(ctx, docId, func(doc *policymodel.Document) {
		doc.PageCount = pages
		doc.ChunkCount = chunks
	})
}

func (r *RedisDocumentRegistry) MarkReady(ctx context.Context, docId string) error {
	return r.update(ctx, docId, func(doc *policymodel.Document) {
		doc.Stage = policymodel.StageReady
		doc.Status = policymodel.DocStatusReady
		doc.ErrorKind = ""
		doc.ErrorMessage = ""
	})
}

func (r *RedisDocumentRegistry) MarkFailed(ctx context.Context, docId string, kind policymodel.FaultKind, msg string) error {
	return r.update(ctx, docId, func(doc *policymodel.Document) {
		doc.Stage = policymodel.StageFailed
		doc.Status = policymodel.DocStatusFailed
		doc.ErrorKind = kind
		doc.ErrorMessage = msg
	})
}

func (r *RedisDocumentRegistry) update(ctx context.Context, docId string, mutate func(*policymodel.Document)) error {
	doc, ok := r.Get(ctx, docId)
	if !ok {
		return fmt.Errorf("document %s not in registry", docId)
	}
	mutate(&doc)
	doc.UpdatedAt = time.Now()
	return r.save(ctx, doc)
}

func (r *RedisDocumentRegistry) save(ctx context.Context, doc policymodel.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, docKeyPrefix+doc.Id, data, config.RedisDocumentStoreTTL)
}

func TestDocumentRegistry(store *redisstore.Store) *RedisDocumentRegistry {
	return &RedisDocumentRegistry{
		store:  store,
		logger: logger_i.NewLogger("test registry"),
	}
}
