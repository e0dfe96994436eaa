package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"policyrag/internal/adapter"
	"policyrag/internal/adapter/utils"
	"policyrag/internal/api"
	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateId(id string, traceId string) (result jobmodel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobmodel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

var docIdPattern = regexp.MustCompile(`[^a-z0-9._-]+`)

// sanitizeDocumentId derives a stable id from the requested id or, when none
// was given, from the file name with its extension dropped. Point ids in the
// vector store are namespaced by this id, so re-uploading under the same id
// replaces the previous vectors.
func sanitizeDocumentId(requested string, filename string) string {
	base := requested
	if base == "" {
		base = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	base = strings.ToLower(strings.TrimSpace(base))
	base = docIdPattern.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		return utils.GetNewUUID()
	}
	return base
}

// failAdmittedUpload releases the admission claim when staging the upload
// fails. The record goes terminal so the document can be resubmitted.
func failAdmittedUpload(r *http.Request, docId string, msg string) {
	if handlerInstance == nil {
		return
	}
	err := handlerInstance.service.Registry.MarkFailed(r.Context(), docId, policymodel.FaultStoreWrite, msg)
	if err != nil {
		logRH.Error("Could not mark upload failure :", "err", err, "documentId", docId)
	}
}

func processAskJob(request *http.Request, w http.ResponseWriter, requestData api.AskRequest) {
	traceId := request.Context().Value(config.TRACE_ID_KEY).(string)
	jobId := CreateQueryJob(requestData.Question, requestData.DocumentId, requestData.TopK, traceId)
	res := adapter.ToInitJobResponse(jobId)
	writeJsonResponse(w, http.StatusAccepted, res)
}

func processIngestJob(request *http.Request, w http.ResponseWriter, doc policymodel.Document, docPath string) {
	newJob := newJobData{
		id:               utils.GetNewUUID(),
		traceId:          request.Context().Value(config.TRACE_ID_KEY).(string),
		isDocumentIngest: true,
		documentId:       doc.Id,
		documentName:     doc.Name,
		documentSource:   docPath,
		contentType:      doc.ContentType,
		meta:             doc.Meta,
	}
	CreateNewJob(newJob)
	res := adapter.ToInitJobResponse(newJob.id)
	writeJsonResponse(w, http.StatusAccepted, res)

}
