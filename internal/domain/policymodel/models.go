package policymodel

import (
	"context"
	"time"
)

type DocStatus string
type IngestStage string
type DocType string

const (
	DocStatusPending    DocStatus = "pending"
	DocStatusProcessing DocStatus = "processing"
	DocStatusReady      DocStatus = "ready"
	DocStatusFailed     DocStatus = "failed"

	StageReceived  IngestStage = "received"
	StageParsing   IngestStage = "parsing"
	StageChunking  IngestStage = "chunking"
	StageEmbedding IngestStage = "embedding"
	StageUpserting IngestStage = "upserting"
	StageReady     IngestStage = "ready"
	StageFailed    IngestStage = "failed"
)

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var RTF DocType = "RTF"
var ERR DocType = "ERROR"

func (s DocStatus) Terminal() bool {
	return s == DocStatusReady || s == DocStatusFailed
}

// StatusForStage maps the internal stage onto the externally visible status.
func StatusForStage(st IngestStage) DocStatus {
	switch st {
	case StageReceived:
		return DocStatusPending
	case StageReady:
		return DocStatusReady
	case StageFailed:
		return DocStatusFailed
	default:
		return DocStatusProcessing
	}
}

// PolicyMeta travels from the upload form into every vector payload.
type PolicyMeta struct {
	PolicyType   string `json:"policy_type,omitempty"`
	Version      string `json:"version,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
}

// Document is the registry record for one uploaded policy. Keyed by Id,
// updated at each stage boundary, never deleted automatically.
type Document struct {
	Id           string      `json:"document_id"`
	Name         string      `json:"doc_name"`
	ContentType  DocType     `json:"content_type"`
	Meta         PolicyMeta  `json:"meta"`
	Status       DocStatus   `json:"status"`
	Stage        IngestStage `json:"stage"`
	PageCount    int         `json:"page_count,omitempty"`
	ChunkCount   int         `json:"chunk_count,omitempty"`
	ErrorKind    FaultKind   `json:"error_kind,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	UploadedAt   time.Time   `json:"uploaded_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// PageText is one parsed page, ordered by PageNum starting at 1.
type PageText struct {
	PageNum int    `json:"page_num"`
	Text    string `json:"text"`
}

// Chunk belongs to exactly one document. Vector is set once by the
// embedding stage and immutable after.
type Chunk struct {
	DocumentId string    `json:"document_id"`
	Index      int       `json:"chunk_index"`
	Text       string    `json:"text"`
	PageFirst  int       `json:"page_first"`
	PageLast   int       `json:"page_last"`
	Roles      []string  `json:"roles,omitempty"`
	Vector     []float32 `json:"-"`
}

// SourceRef is one cited source in an answer.
type SourceRef struct {
	DocumentId   string  `json:"document_id"`
	DocumentName string  `json:"doc_name,omitempty"`
	PageFirst    int     `json:"page_first"`
	PageLast     int     `json:"page_last"`
	Excerpt      string  `json:"excerpt"`
	PolicyType   string  `json:"policy_type,omitempty"`
	Version      string  `json:"version,omitempty"`
	Jurisdiction string  `json:"jurisdiction,omitempty"`
	Score        float32 `json:"score"`
}

// Answer is ephemeral; it lives only inside the job result.
type Answer struct {
	Text         string      `json:"text"`
	Sources      []SourceRef `json:"sources,omitempty"`
	Roles        []string    `json:"roles,omitempty"`
	ContextCount int         `json:"context_count"`
}

// Registry is the per-document state-transition store. One ingestion per
// document at a time: TryStart refuses while the current status is
// non-terminal.
type Registry interface {
	Get(ctx context.Context, docId string) (Document, bool)
	List(ctx context.Context) ([]Document, error)
	TryStart(ctx context.Context, doc Document) (bool, error)
	SetStage(ctx context.Context, docId string, stage IngestStage) error
	SetCounts(ctx context.Context, docId string, pages, chunks int) error
	MarkReady(ctx context.Context, docId string) error
	MarkFailed(ctx context.Context, docId string, kind FaultKind, msg string) error
}
