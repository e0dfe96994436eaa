// Package pgstore backs the vector store contract with Postgres + pgvector.
// Selected via VECTOR_BACKEND=postgres for deployments that already run
// Postgres and do not want a dedicated vector database.
package pgstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"policyrag/internal/config"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/vectorstore"
	"policyrag/pkg/logger_i"

	"github.com/jackc/pgx/v5/pgxpool"
)

var logger *logger_i.Logger
var pgInstance *PostgresStore
var once sync.Once

type PostgresStore struct {
	pool *pgxpool.Pool
}

// GetPostgresStore returns the shared pool-backed store, nil when the
// database is unreachable or POSTGRES_URL is unset.
func GetPostgresStore(ctx context.Context) vectorstore.Store {
	once.Do(func() {
		logger = logger_i.NewLogger("PGStore")
		if config.PostgresURL == "" {
			logger.Error("POSTGRES_URL not set, postgres backend unavailable")
			return
		}
		cfg, err := pgxpool.ParseConfig(config.PostgresURL)
		if err != nil {
			logger.Error("could not parse postgres config", "error", err)
			return
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			logger.Error("could not connect to postgres", "error", err)
			return
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Error("postgres is offline", "error", err)
			pool.Close()
			return
		}
		pgInstance = &PostgresStore{pool: pool}
		logger.Info("Postgres store init successfully")
		go closePool(ctx, pool)
	})

	if pgInstance == nil {
		return nil
	}
	return pgInstance
}

func closePool(ctx context.Context, pool *pgxpool.Pool) {
	<-ctx.Done()
	logger.Info("Closing Postgres pool")
	pool.Close()
}

// Init ensures the extension, the chunk table and its lookup index. The seq
// column records insertion order for deterministic tie-breaking; it is not
// touched on conflict updates.
func (s *PostgresStore) Init(ctx context.Context) error {
	ddl := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			document_id text NOT NULL,
			doc_name text NOT NULL DEFAULT '',
			chunk_index int NOT NULL,
			text text NOT NULL,
			page_first int NOT NULL DEFAULT 0,
			page_last int NOT NULL DEFAULT 0,
			policy_type text NOT NULL DEFAULT '',
			version text NOT NULL DEFAULT '',
			jurisdiction text NOT NULL DEFAULT '',
			roles text[] NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL,
			seq bigserial
		)`, config.ChunkTable, config.EmbeddingOutputDimensionality),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_document_id_idx ON %s (document_id)`,
			config.ChunkTable, config.ChunkTable),
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return policymodel.NewFault(policymodel.FaultStoreWrite, false, fmt.Errorf("ensure schema: %w", err))
		}
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	log := logger.WithTrace(ctx)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return policymodel.NewFault(policymodel.FaultStoreWrite, false, fmt.Errorf("begin upsert tx: %w", err))
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	stmt := fmt.Sprintf(`
INSERT INTO %s (id, document_id, doc_name, chunk_index, text, page_first, page_last, policy_type, version, jurisdiction, roles, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::vector)
ON CONFLICT (id)
DO UPDATE SET
  document_id = EXCLUDED.document_id,
  doc_name = EXCLUDED.doc_name,
  chunk_index = EXCLUDED.chunk_index,
  text = EXCLUDED.text,
  page_first = EXCLUDED.page_first,
  page_last = EXCLUDED.page_last,
  policy_type = EXCLUDED.policy_type,
  version = EXCLUDED.version,
  jurisdiction = EXCLUDED.jurisdiction,
  roles = EXCLUDED.roles,
  embedding = EXCLUDED.embedding`, config.ChunkTable)

	for _, rec := range records {
		p := rec.Payload
		roles := p.Roles
		if roles == nil {
			roles = []string{}
		}
		_, err := tx.Exec(ctx, stmt,
			rec.Id, p.DocumentId, p.DocumentName, p.ChunkIndex, p.Text,
			p.PageFirst, p.PageLast, p.PolicyType, p.Version, p.Jurisdiction,
			roles, vecLiteral(rec.Vector),
		)
		if err != nil {
			log.Error("postgres upsert failed", "recordId", rec.Id, "error", err)
			return policymodel.NewFault(policymodel.FaultStoreWrite, false, fmt.Errorf("upsert chunk %s: %w", rec.Id, err))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return policymodel.NewFault(policymodel.FaultStoreWrite, false, fmt.Errorf("commit upsert tx: %w", err))
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
	log := logger.WithTrace(ctx)

	vec := vecLiteral(vector)
	args := []any{vec, topK}
	where := ""
	if filter.DocumentId != "" {
		args = append(args, filter.DocumentId)
		where += fmt.Sprintf(" AND document_id = $%d", len(args))
	}
	if filter.MinScore > 0 {
		args = append(args, float64(filter.MinScore))
		where += fmt.Sprintf(" AND 1 - (embedding <=> $1::vector) >= $%d", len(args))
	}

	query := fmt.Sprintf(`
SELECT id::text, document_id, doc_name, chunk_index, text, page_first, page_last,
       policy_type, version, jurisdiction, roles,
       1 - (embedding <=> $1::vector) AS score
FROM %s
WHERE true%s
ORDER BY embedding <=> $1::vector, seq
LIMIT $2`, config.ChunkTable, where)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error("postgres search failed", "error", err)
		return nil, policymodel.NewFault(policymodel.FaultStoreRead, true, fmt.Errorf("vector search: %w", err))
	}
	defer rows.Close()

	hits := make([]vectorstore.Hit, 0, topK)
	for rows.Next() {
		var h vectorstore.Hit
		var score float64
		if err := rows.Scan(&h.Id, &h.Payload.DocumentId, &h.Payload.DocumentName, &h.Payload.ChunkIndex,
			&h.Payload.Text, &h.Payload.PageFirst, &h.Payload.PageLast,
			&h.Payload.PolicyType, &h.Payload.Version, &h.Payload.Jurisdiction, &h.Payload.Roles,
			&score); err != nil {
			return nil, policymodel.NewFault(policymodel.FaultStoreRead, false, fmt.Errorf("scan search row: %w", err))
		}
		h.Score = float32(score)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, policymodel.NewFault(policymodel.FaultStoreRead, true, fmt.Errorf("iterate search rows: %w", err))
	}
	return hits, nil
}

func vecLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
