package qdrantstore

import (
	"context"
	"errors"
	"sync"

	"policyrag/internal/config"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/vectorstore"
	"policyrag/pkg/logger_i"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantStore returns the shared gRPC-backed store, nil when qdrant is
// unreachable so the caller can refuse to start.
func GetQdrantStore(ctx context.Context) vectorstore.Store {

	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     config.QdrantHost,
		Port:     config.QdrantGrpcPort,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	holder := &ClientHolder{QObj: client}
	if err := holder.Init(ctx); err != nil {
		logger.Error("could not ensure collection", "collectionName", config.CollectionName, "error", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
	logger.Info("Closed Qdrant")
}

// Init creates the collection when missing, with the fixed dimension and
// cosine distance.
func (db *ClientHolder) Init(ctx context.Context) error {
	if config.CollectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, config.CollectionName)
	if err != nil {
		return writeFault(err)
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: config.CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return writeFault(err)
	}
	return nil
}

func (db *ClientHolder) Upsert(ctx context.Context, records []vectorstore.Record) error {
	log := logger.WithTrace(ctx)

	for start := 0; start < len(records); start += config.UpsertBatchSize {
		end := start + config.UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for i, rec := range batch {
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewID(rec.Id),
				Vectors: qdrant.NewVectors(rec.Vector...),
				Payload: qdrant.NewValueMap(payloadMap(rec.Payload)),
			}
		}

		_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: config.CollectionName,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			log.Error("qdrant upsert failed", "batchStart", start, "error", err)
			return writeFault(err)
		}
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	log := logger.WithTrace(ctx)

	query := &qdrant.QueryPoints{
		CollectionName: config.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter.MinScore > 0 {
		query.ScoreThreshold = qdrant.PtrOf(filter.MinScore)
	}
	if filter.DocumentId != "" {
		query.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", filter.DocumentId),
			},
		}
	}

	result, err := db.QObj.Query(ctx, query)
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, readFault(err)
	}

	hits := make([]vectorstore.Hit, 0, len(result))
	for _, point := range result {
		hits = append(hits, vectorstore.Hit{
			Id:      pointIdString(point.Id),
			Score:   point.Score,
			Payload: payloadFromMap(point.Payload),
		})
	}
	log.Debug("qdrant search done", "hits", len(hits))
	return hits, nil
}

func payloadMap(p vectorstore.Payload) map[string]any {
	roles := make([]any, len(p.Roles))
	for i, r := range p.Roles {
		roles[i] = r
	}
	return map[string]any{
		"document_id":  p.DocumentId,
		"doc_name":     p.DocumentName,
		"chunk_index":  p.ChunkIndex,
		"text":         p.Text,
		"page_first":   p.PageFirst,
		"page_last":    p.PageLast,
		"policy_type":  p.PolicyType,
		"version":      p.Version,
		"jurisdiction": p.Jurisdiction,
		"roles":        roles,
	}
}

func payloadFromMap(fields map[string]*qdrant.Value) vectorstore.Payload {
	p := vectorstore.Payload{
		DocumentId:   fields["document_id"].GetStringValue(),
		DocumentName: fields["doc_name"].GetStringValue(),
		ChunkIndex:   int(fields["chunk_index"].GetIntegerValue()),
		Text:         fields["text"].GetStringValue(),
		PageFirst:    int(fields["page_first"].GetIntegerValue()),
		PageLast:     int(fields["page_last"].GetIntegerValue()),
		PolicyType:   fields["policy_type"].GetStringValue(),
		Version:      fields["version"].GetStringValue(),
		Jurisdiction: fields["jurisdiction"].GetStringValue(),
	}
	if list := fields["roles"].GetListValue(); list != nil {
		for _, v := range list.Values {
			if s := v.GetStringValue(); s != "" {
				p.Roles = append(p.Roles, s)
			}
		}
	}
	return p
}

func pointIdString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	return id.GetUuid()
}

// Write failures are never retried, read failures may be retried once.
// Codes that will not heal on their own keep the read fault non-transient.
func writeFault(err error) error {
	return policymodel.NewFault(policymodel.FaultStoreWrite, false, err)
}

func readFault(err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.InvalidArgument, codes.NotFound, codes.PermissionDenied, codes.Unauthenticated:
			return policymodel.NewFault(policymodel.FaultStoreRead, false, err)
		}
	}
	return policymodel.NewFault(policymodel.FaultStoreRead, true, err)
}
