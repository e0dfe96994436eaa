package rag

import (
	"context"
	"strings"
	"time"

	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/metrics"
	"policyrag/internal/rag/embedding"
	"policyrag/internal/rag/ingest"
	"policyrag/internal/rag/llm"
	"policyrag/internal/rag/vectorstore"
	"policyrag/pkg/logger_i"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

Service is the public contract. The worker only ever sees this interface,
so it stays decoupled from which vector store, embedder or LLM is wired in.

service (lowercase) is the private implementation holding the heavy
clients. Methods on (*service) satisfy the interface implicitly, and
NewService links the two so tests can inject mocks without touching the
worker.
*/

// Service is all the worker needs - it doesn't know the store or the llm
type Service interface {
	ProcessRequest(ctx context.Context, job jobmodel.Job) jobmodel.Job
	IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job
}

type service struct {
	store       vectorstore.Store
	llmProvider llm.Provider
	embedder    embedding.Embedder
	registry    policymodel.Registry
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(store vectorstore.Store, llm llm.Provider, em embedding.Embedder, registry policymodel.Registry) Service {
	return &service{
		store:       store,
		llmProvider: llm,
		embedder:    em,
		registry:    registry,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// ProcessRequest runs the query pipeline: embed the question, search the
// vector store, ground a prompt in the hits and generate an answer with
// citations. An empty result set short-circuits to a fixed refusal and the
// model is never called.
func (s *service) ProcessRequest(ctx context.Context, jobt jobmodel.Job) jobmodel.Job {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.QueryTimeout)
	defer cancel()

	question := strings.TrimSpace(jobt.JobPayload.Question)
	if question == "" {
		return s.jobError(jobt, policymodel.Faultf(policymodel.FaultInvalidQuery, "question is empty"), "INVALID_QUERY")
	}
	jobt.JobPayload.Question = question

	// Embedding
	queryVector, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE")
	}

	// Vector Search
	hits, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, queryVector)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_SEARCH_FAILURE")
	}

	// Nothing above the score floor - answer without the model
	if len(hits) == 0 {
		inMethodLogger.Info("no relevant context found", "question", question)
		return returnOutput(jobt, noContextAnswer())
	}

	kept := selectContext(hits, config.MaxContextChars)

	// LLM Generation
	answerText, err := s.executeLLMStep(processContext, inMethodLogger, &jobt, question, kept)
	if err != nil {
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE")
	}

	cited := citedHits(answerText, kept, config.CitationMode)
	answer := &policymodel.Answer{
		Text:         answerText,
		Sources:      sourceRefs(cited),
		Roles:        aggregateRoles(cited),
		ContextCount: len(kept),
	}
	return returnOutput(jobt, answer)
}

// IngestDocument drives a document through the ingestion stages. The stage
// machine lives in the ingest package; this wrapper only times the run.
func (s *service) IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	ingestContext, cancel := context.WithTimeout(ctx, config.IngestTimeout)
	defer cancel()

	return ingest.ProcessDocumentIngestion(ingestContext, job, s.embedder, s.store, s.registry)
}
