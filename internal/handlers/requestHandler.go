package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"policyrag/internal/adapter"
	"policyrag/internal/adapter/utils"
	"policyrag/internal/api"
	"policyrag/internal/config"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/ingest"
	"policyrag/pkg/logger_i"
)

var logRH *logger_i.Logger

// technically i dont need this
// but i want to eventually move jobHandler into another package
// so in anticipation for that this struct exists
type newJobData struct {
	id             string
	question       string
	documentFilter string
	topK           int
	traceId        string

	isDocumentIngest bool
	documentId       string
	documentName     string
	documentSource   string
	contentType      policymodel.DocType
	meta             policymodel.PolicyMeta
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// AskHandler godoc
// @Summary      Ask a question over the ingested policies
// @Description  Accepts a question, initializes a background retrieval job, and returns a job ID to track status.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest       true  "Question with optional document filter and top_k"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.AskRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Ask handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateAskRequest(requestData) {

			logRH.Warn("Bad Ask Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}
		processAskJob(request, w, requestData)
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID. Completed query jobs carry the answer and its sources.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostIngestHandler handles the uploading of policy documents for ingestion.
// @Summary      Upload a policy document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, registers the document, and queues an ingestion job.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document       formData  file    true   "The PDF, DOCX, TXT or RTF file to upload"
// @Param        document_name  formData  string  false  "Display name, defaults to the uploaded file name"
// @Param        document_id    formData  string  false  "Stable document id, defaults to the sanitized file name"
// @Param        policy_type    formData  string  false  "Policy type label, e.g. access-control"
// @Param        version        formData  string  false  "Policy version, e.g. 2.1"
// @Param        jurisdiction   formData  string  false  "Jurisdiction label, e.g. EU"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id and status URL"
// @Failure      400  {object}  api.JobResponse "Bad Request - Missing or empty file, unsupported type or file too large"
// @Failure      409  {object}  api.JobResponse "Conflict - An ingestion for this document is already running"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - Storage or Write Error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()

		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		err := r.ParseMultipartForm(config.MaxUploadBytes)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		//get the document the user uploads
		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		if fileMetadata.Size == 0 {
			WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Empty file")
			return
		}
		contentType := ingest.DocTypeFor(fileMetadata.Filename)
		if contentType == policymodel.ERR {
			WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Unsupported document type")
			return
		}

		docName := r.FormValue("document_name")
		if docName == "" {
			docName = fileMetadata.Filename
		}
		docId := sanitizeDocumentId(r.FormValue("document_id"), fileMetadata.Filename)

		doc := policymodel.Document{
			Id:          docId,
			Name:        docName,
			ContentType: contentType,
			Meta: policymodel.PolicyMeta{
				PolicyType:   r.FormValue("policy_type"),
				Version:      r.FormValue("version"),
				Jurisdiction: r.FormValue("jurisdiction"),
			},
			Status:     policymodel.DocStatusPending,
			Stage:      policymodel.StageReceived,
			UploadedAt: time.Now(),
		}

		//one ingestion per document; a finished document may be re-ingested
		admitted, err := TryStartIngest(r.Context(), doc)
		if err != nil {
			logRH.Error("Registry error on ingest admission :", "err", err, "documentId", docId)
			WriteErrorResponse(w, http.StatusInternalServerError, docId, "Registry error")
			return
		}
		if !admitted {
			WriteErrorResponse(w, http.StatusConflict, docId, "Ingestion already in progress for this document")
			return
		}

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			failAdmittedUpload(r, docId, "Storage error")
			WriteErrorResponse(w, http.StatusInternalServerError, docId, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			failAdmittedUpload(r, docId, "Write error")
			WriteErrorResponse(w, http.StatusInternalServerError, docId, "Write error")
			return
		}
		processIngestJob(r, w, doc, tempFilePath)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetDocumentHandler godoc
// @Summary      Get document ingestion state
// @Description  Retrieves the registry record of one uploaded document, including stage, counts and any failure details.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        documentId  path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse  "The registry record"
// @Failure      404  {object}  api.JobResponse       "Document not found"
// @Router       /documents/{documentId} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "documentId")
		if idString == "" {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
			return
		}

		doc, isFound := GetDocument(r.Context(), idString)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Document not found")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
	}
}

// ListDocumentsHandler godoc
// @Summary      List ingested documents
// @Description  Lists the registry records of every uploaded document.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse  "All registry records"
// @Failure      500  {object}  api.JobResponse           "Registry error"
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docs, err := ListDocuments(r.Context())
		if err != nil {
			logRH.Error("Registry error on document list :", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Registry error")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(docs))
	}
}
