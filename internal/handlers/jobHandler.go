package handlers

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"policyrag/internal/adapter/utils"
	"policyrag/internal/api"
	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/job"
	"policyrag/internal/metrics"
	"policyrag/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service *job.Service
}

func InitJobHandler(jobService *job.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) {
	logJH.Info("To create new job", "traceId", newJob.traceId, "jobId", newJob.id)
	handlerInstance.pushToJobChannel(newJob)
}

// NewQueryJobId reserves the id of a query job up front, so a caller that
// wants the result pushed to it can subscribe before the job is enqueued.
func NewQueryJobId() string {
	return utils.GetNewUUID()
}

func EnqueueQueryJob(id string, question string, documentFilter string, topK int, traceId string) {
	CreateNewJob(newJobData{
		id:             id,
		question:       question,
		documentFilter: documentFilter,
		topK:           topK,
		traceId:        traceId,
	})
}

// CreateQueryJob builds and enqueues a question job and returns its id. The
// MCP tools go through the same path, so it lives apart from the HTTP layer.
func CreateQueryJob(question string, documentFilter string, topK int, traceId string) string {
	id := NewQueryJobId()
	EnqueueQueryJob(id, question, documentFilter, topK, traceId)
	return id
}

func GetJobStatus(id string, traceId string) (result jobmodel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateAskRequest(askReq api.AskRequest) bool {
	if handlerInstance == nil {
		return false
	}
	if strings.TrimSpace(askReq.Question) == "" {
		return false
	}
	if askReq.TopK < 0 {
		return false
	}
	return true
}

// GetDocument reads one registry entry.
func GetDocument(ctx context.Context, docId string) (policymodel.Document, bool) {
	if handlerInstance == nil {
		return policymodel.Document{}, false
	}
	return handlerInstance.service.Registry.Get(ctx, docId)
}

func ListDocuments(ctx context.Context) ([]policymodel.Document, error) {
	if handlerInstance == nil {
		return nil, nil
	}
	return handlerInstance.service.Registry.List(ctx)
}

// TryStartIngest claims the single ingestion slot for a document. A false
// return means a run is already underway; re-ingestion of a finished
// document is admitted and will replace its vectors.
func TryStartIngest(ctx context.Context, doc policymodel.Document) (bool, error) {
	if handlerInstance == nil {
		return false, nil
	}
	return handlerInstance.service.Registry.TryStart(ctx, doc)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobmodel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobmodel.JobStatusQueued

	if newJob.isDocumentIngest {
		_job.CurrentStep = jobmodel.IngestInit
		_job.JobType = jobmodel.JobTypeIngest
		_job.JobPayload.DocumentId = newJob.documentId
		_job.JobPayload.IngestFileName = newJob.documentName
		_job.JobPayload.IngestFilePath = newJob.documentSource
		_job.JobPayload.ContentType = newJob.contentType
		_job.JobPayload.Meta = newJob.meta

	} else {
		_job.JobType = jobmodel.JobTypeQuery
		_job.JobPayload.Question = newJob.question
		_job.JobPayload.DocumentFilter = newJob.documentFilter
		_job.JobPayload.TopK = newJob.topK
		_job.CurrentStep = jobmodel.QueryInit
	}

	//metrics
	metrics.IncrementJobsInQueue()

	// persist the queued state first so the status endpoint sees the job
	// before a worker picks it up
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	if err := h.service.JobStore.SaveJob(ctxC, _job); err != nil {
		logJH.Error("Could not persist queued job", "err", err)
	}

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//we will start a new worker every 10 requests - can also be configured
	// or
	//for performance - a new worker is added for a document ingestion type job
	//ingestion involves batch processing which might take time - external system call
	//worker will be removed if it has idle time - so it should be ok
	//this also allows us to only keep 1 worker running at most times therefore cutting resource spend

	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobmodel.JobTypeIngest {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
