package rag

import (
	"context"
	"net/http"
	"strings"
	"time"

	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/metrics"
	"policyrag/internal/rag/retry"
	"policyrag/internal/rag/vectorstore"
	"policyrag/pkg/logger_i"
)

func returnOutput(job jobmodel.Job, ans *policymodel.Answer) jobmodel.Job {
	job.JobPayload.Answer = ans
	job.CurrentStep = jobmodel.Complete
	return job
}

func logOutput(job jobmodel.Job, status jobmodel.InternalStatus, log *logger_i.Logger) jobmodel.Job {
	job.CurrentStep = status
	log.Debug("ProcessRequest", "Current Status", job.CurrentStep)
	return job
}

// jobError stamps the job with the fault that sank it. The code and retry
// hint come from the fault taxonomy, the pipeline label feeds the failure
// counter.
func (s *service) jobError(job jobmodel.Job, err error, message string) jobmodel.Job {
	kind := policymodel.KindOf(err)
	s.logger.Error(message, "fault", kind, "error", err)
	metrics.CountPipelineFailure(strings.ToLower(string(job.JobType)), string(kind))

	code := http.StatusInternalServerError
	if kind == policymodel.FaultInvalidQuery {
		code = http.StatusBadRequest
	}
	job.Error = jobmodel.JobError{
		Code:    code,
		Message: message,
		Retry:   policymodel.IsTransient(err),
	}
	job.Status = jobmodel.JobStatusError
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobmodel.Job) ([]float32, error) {
	*job = logOutput(*job, jobmodel.EmbeddingCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	var vector []float32
	err := retry.Do(ctx, config.EmbedMaxAttempts, config.EmbedRetryBaseDelay, log, func() error {
		var stepErr error
		vector, stepErr = s.embedder.GetEmbedding(ctx, job.JobPayload.Question)
		return stepErr
	})
	return vector, err
}

func (s *service) executeVectorSearchStep(ctx context.Context, log *logger_i.Logger, job *jobmodel.Job, queryVector []float32) ([]vectorstore.Hit, error) {
	*job = logOutput(*job, jobmodel.VectorDBCall, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	topK := job.JobPayload.TopK
	if topK <= 0 {
		topK = config.DefaultTopK
	}
	if topK > config.MaxTopK {
		topK = config.MaxTopK
	}
	filter := vectorstore.Filter{
		DocumentId: job.JobPayload.DocumentFilter,
		MinScore:   config.MinScore,
	}

	var hits []vectorstore.Hit
	err := retry.Do(ctx, config.SearchAttempts, config.SearchRetryDelay, log, func() error {
		var stepErr error
		hits, stepErr = s.store.Search(ctx, queryVector, topK, filter)
		return stepErr
	})
	return hits, err
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, job *jobmodel.Job, question string, kept []vectorstore.Hit) (string, error) {
	*job = logOutput(*job, jobmodel.LLMCall, log)

	// A cancelled request must not reach the model.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	prompt := buildPrompt(question, kept)
	var answer string
	err := retry.Do(ctx, config.GenerationAttempts, config.GenerationRetryDelay, log, func() error {
		var stepErr error
		answer, stepErr = s.llmProvider.Generate(ctx, config.SystemPrompt, prompt)
		return stepErr
	})
	return answer, err
}
