package jobmodel

import (
	"context"
	"time"

	"policyrag/internal/domain/policymodel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	QueryInit      InternalStatus = "Init"
	EmbeddingCall  InternalStatus = "EmbeddingAPI"
	VectorDBCall   InternalStatus = "VectorDB"
	LLMCall        InternalStatus = "LLM"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload carries both the request and, once the worker is done, the
// result. Query jobs fill Answer; ingest jobs fill the counts.
type JobPayload struct {
	Question       string              `json:"question,omitempty"`
	DocumentFilter string              `json:"document_filter,omitempty"`
	TopK           int                 `json:"top_k,omitempty"`
	Answer         *policymodel.Answer `json:"answer,omitempty"`

	DocumentId     string                 `json:"document_id,omitempty"`
	IngestFileName string                 `json:"ingest_file_name,omitempty"`
	IngestFilePath string                 `json:"ingest_file_path,omitempty"`
	ContentType    policymodel.DocType    `json:"content_type,omitempty"`
	Meta           policymodel.PolicyMeta `json:"meta,omitempty"`
	Pages          int                    `json:"pages,omitempty"`
	Chunks         int                    `json:"chunks,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}
