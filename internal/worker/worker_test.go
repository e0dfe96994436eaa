package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/job"
	"policyrag/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
	IngestedCount  int32
}

func (m *MockRagService) ProcessRequest(ctx context.Context, j jobmodel.Job) jobmodel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	return j
}

func (m *MockRagService) IngestDocument(ctx context.Context, j jobmodel.Job) jobmodel.Job {
	atomic.AddInt32(&m.IngestedCount, 1)
	return j
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobmodel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobmodel.Job, bool) {
	return jobmodel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobmodel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobmodel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          &MockJobStore{},
	})
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a query job", func(t *testing.T) {
		testJob := jobmodel.Job{Id: "test-1", JobType: jobmodel.JobTypeQuery}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Worker routes ingest jobs to the ingest path", func(t *testing.T) {
		testJob := jobmodel.Job{Id: "test-2", JobType: jobmodel.JobTypeIngest}
		jobSvc.JobChannel <- testJob

		time.Sleep(50 * time.Millisecond)

		ingested := atomic.LoadInt32(&mockRag.IngestedCount)
		if ingested != 1 {
			t.Errorf("Expected 1 ingest processed, got %d", ingested)
		}
	})

	t.Run("Completion notifies subscribers", func(t *testing.T) {
		ch := jobSvc.Subscribe("test-3")
		jobSvc.JobChannel <- jobmodel.Job{Id: "test-3", JobType: jobmodel.JobTypeQuery}

		select {
		case done := <-ch:
			if done.Status != jobmodel.JobStatusComplete {
				t.Errorf("notified status = %s, want COMPLETE", done.Status)
			}
		case <-time.After(2 * time.Second):
			t.Error("no completion notification")
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("idle retirement waits out the full idle window")
	}

	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, 0) // no floor, an idle worker may retire
	defer atomic.StoreInt64(&minWorkerCount, config.MinWorkerCount)
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := job.InitJobService(job.ServiceConfig{
		JobChannel: make(chan jobmodel.Job),
	})
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Spawn 1 worker manually
	createWorker()
	time.Sleep(config.IdleWorkerTimeout)

	time.Sleep(100 * time.Millisecond)
	count := atomic.LoadInt64(&currentWorkerCount)
	if count != 0 {
		t.Errorf("Assertion Failed: Worker should have timed out and retired, but count is %d", count)
	}

	// With the floor back at 1 a lone idle worker must hold
	atomic.StoreInt64(&minWorkerCount, 1)
	createWorker()
	time.Sleep(config.IdleWorkerTimeout + 200*time.Millisecond)

	if count := atomic.LoadInt64(&currentWorkerCount); count != 1 {
		t.Errorf("floor worker retired, count is %d", count)
	}
	close(stopChan)
	wg.Wait()
}
