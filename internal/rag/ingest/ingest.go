package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/metrics"
	"policyrag/internal/rag/chunk"
	"policyrag/internal/rag/embedding"
	"policyrag/internal/rag/retry"
	"policyrag/internal/rag/vectorstore"
	"policyrag/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion ")

// ProcessDocumentIngestion drives one document through the stage machine:
// parsing, chunking, embedding, upserting. The registry reflects every stage
// boundary, and a fault at any stage marks the document failed and ends the
// run. All vectors are produced before the first write, so a failed run never
// leaves a half-embedded document in the store.
func ProcessDocumentIngestion(ctx context.Context, job jobmodel.Job, e embedding.Embedder, store vectorstore.Store, registry policymodel.Registry) jobmodel.Job {
	docId := job.JobPayload.DocumentId
	docPath := job.JobPayload.IngestFilePath
	log := logger.With("traceId", job.TraceId, "documentId", docId)

	job.CurrentStep = jobmodel.IngestProcessing
	log.Debug("Processing document", "filename", job.JobPayload.IngestFileName, "path", docPath)

	// the uploaded temp file is gone after the run either way
	defer func() {
		if err := os.Remove(docPath); err != nil && !os.IsNotExist(err) {
			log.Warn("could not remove upload", "path", docPath, "error", err)
		}
	}()

	doc := policymodel.Document{
		Id:          docId,
		Name:        job.JobPayload.IngestFileName,
		ContentType: job.JobPayload.ContentType,
		Meta:        job.JobPayload.Meta,
	}
	if doc.ContentType == "" || doc.ContentType == policymodel.ERR {
		doc.ContentType = DocTypeFor(docPath)
	}

	// Parsing
	setStage(ctx, registry, docId, policymodel.StageParsing, log)
	parseStart := time.Now()
	pages, err := extractText(docPath, doc.ContentType)
	metrics.CaptureExecutionMetrics("parse", time.Since(parseStart))
	if err != nil {
		return failIngest(ctx, job, registry, err, log)
	}
	log.Debug("Processing document", "pages", len(pages))

	// Chunking
	setStage(ctx, registry, docId, policymodel.StageChunking, log)
	chunkStart := time.Now()
	chunks := chunk.Split(docId, pages, config.ChunkSize, config.ChunkOverlap)
	metrics.CaptureExecutionMetrics("chunk", time.Since(chunkStart))
	if len(chunks) == 0 {
		return failIngest(ctx, job, registry, policymodel.Faultf(policymodel.FaultParse, "document produced no chunks"), log)
	}
	log.Debug("Processing document", "chunks", len(chunks))

	// Embedding
	setStage(ctx, registry, docId, policymodel.StageEmbedding, log)
	vectors, err := embedAll(ctx, chunks, e, log)
	if err != nil {
		return failIngest(ctx, job, registry, err, log)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	// Upserting
	setStage(ctx, registry, docId, policymodel.StageUpserting, log)
	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.RecordFor(doc, c)
	}
	upsertStart := time.Now()
	err = store.Upsert(ctx, records)
	metrics.CaptureExecutionMetrics("upsert", time.Since(upsertStart))
	if err != nil {
		return failIngest(ctx, job, registry, err, log)
	}
	metrics.CountChunksUpserted(len(records))

	if err := registry.SetCounts(ctx, docId, len(pages), len(chunks)); err != nil {
		log.Warn("could not record counts", "error", err)
	}
	if err := registry.MarkReady(ctx, docId); err != nil {
		log.Warn("could not mark document ready", "error", err)
	}
	metrics.CountDocumentIngested()
	log.Info("document ingested", "pages", len(pages), "chunks", len(chunks))

	job.JobPayload.Pages = len(pages)
	job.JobPayload.Chunks = len(chunks)
	job.Status = jobmodel.JobStatusComplete
	job.CurrentStep = jobmodel.Complete
	return job
}

// embedAll turns every chunk into a vector before anything touches the
// store. Transient provider faults get the bounded backoff treatment.
func embedAll(ctx context.Context, chunks []policymodel.Chunk, e embedding.Embedder, log *logger_i.Logger) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	var vectors [][]float32
	err := retry.Do(ctx, config.EmbedMaxAttempts, config.EmbedRetryBaseDelay, log, func() error {
		var stepErr error
		vectors, stepErr = e.BatchEmbedding(ctx, texts)
		return stepErr
	})
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, policymodel.NewFault(policymodel.FaultEmbed, false,
			fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)))
	}
	return vectors, nil
}

// setStage records a stage transition. The registry is bookkeeping, not the
// source of truth for the vectors, so a failed write logs and moves on.
func setStage(ctx context.Context, registry policymodel.Registry, docId string, stage policymodel.IngestStage, log *logger_i.Logger) {
	if err := registry.SetStage(ctx, docId, stage); err != nil {
		log.Warn("could not record stage", "stage", stage, "error", err)
	}
}

// failIngest marks the document failed with the fault kind and stamps the
// job error. The registry write runs detached from ctx so a timed-out run
// still leaves the document in a terminal state.
func failIngest(ctx context.Context, job jobmodel.Job, registry policymodel.Registry, err error, log *logger_i.Logger) jobmodel.Job {
	kind := policymodel.KindOf(err)
	log.Error("ingestion failed", "fault", kind, "error", err)
	metrics.CountPipelineFailure("ingest", string(kind))

	if mErr := registry.MarkFailed(context.WithoutCancel(ctx), job.JobPayload.DocumentId, kind, err.Error()); mErr != nil {
		log.Warn("could not mark document failed", "error", mErr)
	}

	job.Error = jobmodel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "INGESTION_FAILURE",
		Retry:   policymodel.IsTransient(err),
	}
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	return job
}
