package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"policyrag/internal/adapter"
	"policyrag/internal/adapter/utils"
	"policyrag/internal/api"
	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/handlers"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask_policy tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to answer from the ingested security policies"`
	DocumentId string `json:"document_id,omitempty" jsonschema:"restrict retrieval to one document id"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 5, max 20)"`
}

// AskOutput is the output schema for the ask_policy tool.
type AskOutput struct {
	Answer       string               `json:"answer"`
	Sources      []api.SourceResponse `json:"sources,omitempty"`
	Roles        []string             `json:"roles,omitempty"`
	ContextCount int                  `json:"context_count"`
	JobId        string               `json:"job_id"`
}

// DocumentStatusInput is the input schema for the document_status tool.
type DocumentStatusInput struct {
	DocumentId string `json:"document_id" jsonschema:"the document id returned at upload time"`
}

// ListDocumentsInput is the empty input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []api.DocumentResponse `json:"documents"`
	Count     int                    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_policy",
		Description: "Answer a question from the ingested security policy documents, with cited sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_status",
		Description: "Get the ingestion state of one uploaded policy document",
	}, s.handleDocumentStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List every uploaded policy document and its ingestion state",
	}, s.handleListDocuments)
}

// handleAsk runs one question through the regular job pipeline and waits
// for the worker to finish it, so agents get a synchronous answer.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, fmt.Errorf("question must not be empty")
	}

	traceId := utils.GetNewUUID()
	jobId := handlers.NewQueryJobId()

	//subscribe before the enqueue so completion cannot race past us
	done := s.jobs.Subscribe(jobId)
	handlers.EnqueueQueryJob(jobId, input.Question, input.DocumentId, input.TopK, traceId)
	logger.Info("Ask tool call", "traceId", traceId, "jobId", jobId)

	select {
	case completed := <-done:
		return s.askResult(completed)
	case <-ctx.Done():
		s.jobs.Unsubscribe(jobId, done)
		return nil, AskOutput{}, ctx.Err()
	case <-time.After(config.MCPAskWaitTimeout):
		s.jobs.Unsubscribe(jobId, done)
		return nil, AskOutput{}, fmt.Errorf("job %s did not finish in time, poll /status/%s instead", jobId, jobId)
	}
}

func (s *Server) askResult(completed jobmodel.Job) (*mcp.CallToolResult, AskOutput, error) {
	if completed.Status == jobmodel.JobStatusError {
		msg := completed.Error.Message
		if msg == "" {
			msg = "query failed"
		}
		return nil, AskOutput{}, fmt.Errorf("job %s: %s", completed.Id, msg)
	}

	resp := adapter.ToRAGExternalStatus(completed.JobPayload)
	if resp == nil {
		return nil, AskOutput{}, fmt.Errorf("job %s finished without an answer", completed.Id)
	}

	out := AskOutput{
		Answer:       resp.Answer,
		Sources:      resp.Sources,
		Roles:        resp.Roles,
		ContextCount: resp.ContextCount,
		JobId:        completed.Id,
	}
	return nil, out, nil
}

// handleDocumentStatus reads one registry record.
func (s *Server) handleDocumentStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentStatusInput,
) (*mcp.CallToolResult, api.DocumentResponse, error) {
	docId := strings.TrimSpace(input.DocumentId)
	if docId == "" {
		return nil, api.DocumentResponse{}, fmt.Errorf("document_id must not be empty")
	}

	doc, isFound := handlers.GetDocument(ctx, docId)
	if !isFound {
		return nil, api.DocumentResponse{}, fmt.Errorf("document %q not found", docId)
	}
	return nil, adapter.ToDocumentResponse(doc), nil
}

// handleListDocuments lists every registry record.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := handlers.ListDocuments(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	listed := adapter.ToDocumentListResponse(docs)
	return nil, ListDocumentsOutput{
		Documents: listed.Documents,
		Count:     listed.Count,
	}, nil
}
