package job

import (
	"sync"

	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
)

type Service struct {
	JobChannel        chan jobmodel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobmodel.JobStore
	Registry          policymodel.Registry

	waiterMu sync.Mutex
	waiters  map[string][]chan jobmodel.Job
}

type ServiceConfig struct {
	JobChannel        chan jobmodel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobmodel.JobStore
	Registry          policymodel.Registry
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		Registry:          cfg.Registry,
		waiters:           make(map[string][]chan jobmodel.Job),
	}
}

// Subscribe registers interest in a job's completion. Subscribe before the
// job is enqueued or the notification can race past. Callers that give up
// must Unsubscribe, otherwise the entry lives until NotifyDone fires.
func (s *Service) Subscribe(jobId string) <-chan jobmodel.Job {
	ch := make(chan jobmodel.Job, 1)
	s.waiterMu.Lock()
	s.waiters[jobId] = append(s.waiters[jobId], ch)
	s.waiterMu.Unlock()
	return ch
}

func (s *Service) Unsubscribe(jobId string, ch <-chan jobmodel.Job) {
	s.waiterMu.Lock()
	defer s.waiterMu.Unlock()
	chans := s.waiters[jobId]
	for i, c := range chans {
		if c == ch {
			s.waiters[jobId] = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(s.waiters[jobId]) == 0 {
		delete(s.waiters, jobId)
	}
}

// NotifyDone hands the finished job to every subscriber. Channels are
// buffered with room for the single notification, so workers never block here.
func (s *Service) NotifyDone(job jobmodel.Job) {
	s.waiterMu.Lock()
	chans := s.waiters[job.Id]
	delete(s.waiters, job.Id)
	s.waiterMu.Unlock()

	for _, ch := range chans {
		ch <- job
	}
}
