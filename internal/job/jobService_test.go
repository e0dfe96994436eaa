package job

import (
	"testing"
	"time"

	"policyrag/internal/domain/jobmodel"
)

func testService() *Service {
	return InitJobService(ServiceConfig{
		JobChannel:        make(chan jobmodel.Job, 1),
		DispatcherChannel: make(chan bool, 1),
	})
}

func TestSubscribeReceivesCompletion(t *testing.T) {
	s := testService()

	ch := s.Subscribe("job-1")
	s.NotifyDone(jobmodel.Job{Id: "job-1", Status: jobmodel.JobStatusComplete})

	select {
	case got := <-ch:
		if got.Status != jobmodel.JobStatusComplete {
			t.Errorf("delivered status = %s", got.Status)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestNotifyFansOut(t *testing.T) {
	s := testService()

	first := s.Subscribe("job-1")
	second := s.Subscribe("job-1")
	s.NotifyDone(jobmodel.Job{Id: "job-1"})

	for i, ch := range []<-chan jobmodel.Job{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never notified", i)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := testService()

	ch := s.Subscribe("job-1")
	s.Unsubscribe("job-1", ch)
	s.NotifyDone(jobmodel.Job{Id: "job-1"})

	select {
	case <-ch:
		t.Fatal("unsubscribed channel still got the job")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyWithoutSubscribersIsHarmless(t *testing.T) {
	s := testService()
	s.NotifyDone(jobmodel.Job{Id: "nobody-cares"})
}
