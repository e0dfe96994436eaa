package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question     string           `json:"question"`
	Answer       string           `json:"answer"`
	Sources      []SourceResponse `json:"sources,omitempty"`
	Roles        []string         `json:"roles,omitempty"`
	ContextCount int              `json:"context_count"`
}

type SourceResponse struct {
	DocumentId   string  `json:"document_id" example:"access-policy"`
	DocumentName string  `json:"doc_name,omitempty" example:"Access Policy"`
	Pages        string  `json:"pages" example:"3-4"`
	Excerpt      string  `json:"excerpt"`
	PolicyType   string  `json:"policy_type,omitempty" example:"access"`
	Version      string  `json:"version,omitempty" example:"2.1"`
	Jurisdiction string  `json:"jurisdiction,omitempty" example:"EU"`
	Score        float32 `json:"score" example:"0.82"`
}

type IngestResult struct {
	DocumentId string `json:"document_id"`
	Pages      int    `json:"pages"`
	Chunks     int    `json:"chunks"`
}

type Result struct {
	Status              string        `json:"status"`
	RAGExternalResponse *RAGResponse  `json:"rag_response,omitempty"`
	Ingest              *IngestResult `json:"ingest,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type DocumentResponse struct {
	DocumentId   string    `json:"document_id" example:"access-policy"`
	Name         string    `json:"doc_name" example:"Access Policy.pdf"`
	Status       string    `json:"status" example:"ready"`
	Stage        string    `json:"stage" example:"ready"`
	PageCount    int       `json:"page_count,omitempty"`
	ChunkCount   int       `json:"chunk_count,omitempty"`
	PolicyType   string    `json:"policy_type,omitempty"`
	Version      string    `json:"version,omitempty"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty" example:"parse"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

// requests---------------------

type AskRequest struct {
	Question   string `json:"question" validate:"required"`
	DocumentId string `json:"document_id,omitempty"`
	TopK       int    `json:"top_k,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
