package adapter

import (
	"fmt"
	"time"

	"policyrag/internal/api"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobmodel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:              string(job.Status),
		RAGExternalResponse: ToRAGExternalStatus(job.JobPayload),
		Ingest:              toIngestResult(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToRAGExternalStatus(payload jobmodel.JobPayload) *api.RAGResponse {
	if payload.Answer == nil {
		return nil
	}

	return &api.RAGResponse{
		Question:     payload.Question,
		Answer:       payload.Answer.Text,
		Sources:      toSourceResponses(payload.Answer.Sources),
		Roles:        payload.Answer.Roles,
		ContextCount: payload.Answer.ContextCount,
	}
}

func toSourceResponses(sources []policymodel.SourceRef) []api.SourceResponse {
	if len(sources) == 0 {
		return nil
	}
	out := make([]api.SourceResponse, len(sources))
	for i, s := range sources {
		out[i] = api.SourceResponse{
			DocumentId:   s.DocumentId,
			DocumentName: s.DocumentName,
			Pages:        formatPages(s.PageFirst, s.PageLast),
			Excerpt:      s.Excerpt,
			PolicyType:   s.PolicyType,
			Version:      s.Version,
			Jurisdiction: s.Jurisdiction,
			Score:        s.Score,
		}
	}
	return out
}

func formatPages(first, last int) string {
	if last > first {
		return fmt.Sprintf("%d-%d", first, last)
	}
	return fmt.Sprintf("%d", first)
}

func toIngestResult(job jobmodel.Job) *api.IngestResult {
	if job.JobType != jobmodel.JobTypeIngest || job.Status != jobmodel.JobStatusComplete {
		return nil
	}
	return &api.IngestResult{
		DocumentId: job.JobPayload.DocumentId,
		Pages:      job.JobPayload.Pages,
		Chunks:     job.JobPayload.Chunks,
	}
}

func ToDocumentResponse(doc policymodel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		DocumentId:   doc.Id,
		Name:         doc.Name,
		Status:       string(doc.Status),
		Stage:        string(doc.Stage),
		PageCount:    doc.PageCount,
		ChunkCount:   doc.ChunkCount,
		PolicyType:   doc.Meta.PolicyType,
		Version:      doc.Meta.Version,
		Jurisdiction: doc.Meta.Jurisdiction,
		ErrorKind:    string(doc.ErrorKind),
		ErrorMessage: doc.ErrorMessage,
		UploadedAt:   doc.UploadedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func ToDocumentListResponse(docs []policymodel.Document) api.DocumentListResponse {
	out := api.DocumentListResponse{
		Documents: make([]api.DocumentResponse, len(docs)),
		Count:     len(docs),
	}
	for i, doc := range docs {
		out.Documents[i] = ToDocumentResponse(doc)
	}
	return out
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
