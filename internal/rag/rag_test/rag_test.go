package rag_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"policyrag/internal/config"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag"
	"policyrag/internal/rag/vectorstore"
)

func queryJob(question string) jobmodel.Job {
	return jobmodel.Job{
		Id:      "test-job",
		TraceId: "test-trace",
		JobType: jobmodel.JobTypeQuery,
		Status:  jobmodel.JobStatusRunning,
		JobPayload: jobmodel.JobPayload{
			Question: question,
		},
	}
}

func TestProcessRequest_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		question       string
		setupMocks     func(e *MockEmbedder, v *MockStore, l *MockLLM)
		expectedStep   jobmodel.InternalStatus
		expectedStatus jobmodel.JobStatus
		expectedAnswer string
		expectedCode   int
		expectedMsg    string
	}{
		{
			name:     "Success_Full_Flow",
			question: "Who approves access requests?",
			setupMocks: func(e *MockEmbedder, v *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, system, prompt string) (string, error) {
					return "The CISO approves them.", nil
				}
			},
			expectedStep:   jobmodel.Complete,
			expectedStatus: jobmodel.JobStatusRunning,
			expectedAnswer: "The CISO approves them.",
		},
		{
			name:     "Failure_Embedding",
			question: "Who approves access requests?",
			setupMocks: func(e *MockEmbedder, v *MockStore, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, policymodel.NewFault(policymodel.FaultEmbed, false, errors.New("invalid api key"))
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
			expectedMsg:    "EMBEDDING_FAILURE",
		},
		{
			name:     "Failure_LLM_Generation",
			question: "Who approves access requests?",
			setupMocks: func(e *MockEmbedder, v *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, system, prompt string) (string, error) {
					return "", policymodel.NewFault(policymodel.FaultGeneration, false, errors.New("content filter"))
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedCode:   http.StatusInternalServerError,
			expectedMsg:    "LLM_GENERATION_FAILURE",
		},
		{
			name:       "Failure_Empty_Question",
			question:   "   \t ",
			setupMocks: func(e *MockEmbedder, v *MockStore, l *MockLLM) {},

			expectedStatus: jobmodel.JobStatusError,
			expectedCode:   http.StatusBadRequest,
			expectedMsg:    "INVALID_QUERY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mStore := &MockStore{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mStore, mLLM)

			s := rag.NewService(mStore, mLLM, mEmbed, &MockRegistry{})

			result := s.ProcessRequest(context.Background(), queryJob(tt.question))

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if tt.expectedAnswer != "" {
				if result.JobPayload.Answer == nil {
					t.Fatalf("expected an answer, got none (error %+v)", result.Error)
				}
				if result.JobPayload.Answer.Text != tt.expectedAnswer {
					t.Errorf("Answer got %s, want %s", result.JobPayload.Answer.Text, tt.expectedAnswer)
				}
			}
			if tt.expectedCode != 0 && result.Error.Code != tt.expectedCode {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, tt.expectedCode)
			}
			if tt.expectedMsg != "" && result.Error.Message != tt.expectedMsg {
				t.Errorf("Error Message got %s, want %s", result.Error.Message, tt.expectedMsg)
			}
		})
	}
}

func TestProcessRequestAnswerCarriesSources(t *testing.T) {
	mStore := &MockStore{OnSearch: func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		return []vectorstore.Hit{
			PolicyHit(0, 0.92, "Access requests are approved by the CISO."),
			PolicyHit(1, 0.81, "Approvals are logged for audit."),
		}, nil
	}}
	s := rag.NewService(mStore, &MockLLM{}, &MockEmbedder{}, &MockRegistry{})

	result := s.ProcessRequest(context.Background(), queryJob("Who approves access requests?"))

	ans := result.JobPayload.Answer
	if ans == nil {
		t.Fatalf("no answer: %+v", result.Error)
	}
	if ans.ContextCount != 2 {
		t.Errorf("ContextCount = %d; want 2", ans.ContextCount)
	}
	if len(ans.Sources) != 2 {
		t.Fatalf("Sources = %d; want 2", len(ans.Sources))
	}
	if ans.Sources[0].DocumentId != "access-policy" || ans.Sources[0].Score != 0.92 {
		t.Errorf("first source = %+v", ans.Sources[0])
	}
}

func TestProcessRequestCitesMatchingChunkPage(t *testing.T) {
	mStore := &MockStore{OnSearch: func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		hit := PolicyHit(0, 0.88, "Passwords must be at least 14 characters with mixed case and symbols.")
		hit.Payload.PageFirst = 2
		hit.Payload.PageLast = 2
		return []vectorstore.Hit{hit}, nil
	}}
	mLLM := &MockLLM{OnGenerate: func(ctx context.Context, system, prompt string) (string, error) {
		return "Passwords must be at least 14 characters [S1].", nil
	}}

	s := rag.NewService(mStore, mLLM, &MockEmbedder{}, &MockRegistry{})
	result := s.ProcessRequest(context.Background(), queryJob("What is the password complexity requirement?"))

	ans := result.JobPayload.Answer
	if ans == nil {
		t.Fatalf("no answer: %+v", result.Error)
	}
	if len(ans.Sources) != 1 {
		t.Fatalf("Sources = %d; want 1", len(ans.Sources))
	}
	src := ans.Sources[0]
	if src.DocumentId != "access-policy" || src.PageFirst != 2 || src.PageLast != 2 {
		t.Errorf("cited source = %+v; want access-policy page 2", src)
	}
	if !strings.Contains(mLLM.LastPrompt, "p.2") {
		t.Errorf("prompt does not carry the page tag:\n%s", mLLM.LastPrompt)
	}
}

func TestProcessRequestNoContextSkipsLLM(t *testing.T) {
	mStore := &MockStore{OnSearch: func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		return nil, nil
	}}
	mLLM := &MockLLM{}

	s := rag.NewService(mStore, mLLM, &MockEmbedder{}, &MockRegistry{})
	result := s.ProcessRequest(context.Background(), queryJob("Is there a lunch policy?"))

	if result.Status == jobmodel.JobStatusError {
		t.Fatalf("empty context is not an error: %+v", result.Error)
	}
	if result.JobPayload.Answer == nil || result.JobPayload.Answer.Text != config.NoContextAnswer {
		t.Errorf("expected the fixed refusal, got %+v", result.JobPayload.Answer)
	}
	if len(result.JobPayload.Answer.Sources) != 0 {
		t.Error("refusal must cite no sources")
	}
	if mLLM.GenerateCalls != 0 {
		t.Errorf("LLM was called %d times for an empty result set", mLLM.GenerateCalls)
	}
}

func TestProcessRequestSearchRetriedOnce(t *testing.T) {
	mStore := &MockStore{}
	mStore.OnSearch = func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		if mStore.SearchCalls == 1 {
			return nil, policymodel.Faultf(policymodel.FaultStoreRead, "connection reset")
		}
		return []vectorstore.Hit{PolicyHit(0, 0.9, "retention is three years")}, nil
	}

	s := rag.NewService(mStore, &MockLLM{}, &MockEmbedder{}, &MockRegistry{})
	result := s.ProcessRequest(context.Background(), queryJob("How long is data retained?"))

	if result.Status == jobmodel.JobStatusError {
		t.Fatalf("expected recovery on second read, got %+v", result.Error)
	}
	if mStore.SearchCalls != 2 {
		t.Errorf("search calls = %d; want 2", mStore.SearchCalls)
	}
}

func TestProcessRequestSearchFailsAfterRetry(t *testing.T) {
	mStore := &MockStore{OnSearch: func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		return nil, policymodel.Faultf(policymodel.FaultStoreRead, "connection reset")
	}}

	s := rag.NewService(mStore, &MockLLM{}, &MockEmbedder{}, &MockRegistry{})
	result := s.ProcessRequest(context.Background(), queryJob("How long is data retained?"))

	if result.Status != jobmodel.JobStatusError {
		t.Fatal("expected failure once the retry budget is spent")
	}
	if result.Error.Message != "VECTOR_SEARCH_FAILURE" {
		t.Errorf("Error Message = %s", result.Error.Message)
	}
	if mStore.SearchCalls != 2 {
		t.Errorf("search calls = %d; want 2", mStore.SearchCalls)
	}
	if !result.Error.Retry {
		t.Error("store read faults stay marked retryable for the caller")
	}
}

func TestProcessRequestTopKBounds(t *testing.T) {
	var gotTopK int
	mStore := &MockStore{OnSearch: func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		gotTopK = topK
		return []vectorstore.Hit{PolicyHit(0, 0.9, "context")}, nil
	}}
	s := rag.NewService(mStore, &MockLLM{}, &MockEmbedder{}, &MockRegistry{})

	job := queryJob("How long is data retained?")
	s.ProcessRequest(context.Background(), job)
	if gotTopK != config.DefaultTopK {
		t.Errorf("default topK = %d; want %d", gotTopK, config.DefaultTopK)
	}

	job.JobPayload.TopK = 500
	s.ProcessRequest(context.Background(), job)
	if gotTopK != config.MaxTopK {
		t.Errorf("capped topK = %d; want %d", gotTopK, config.MaxTopK)
	}
}

func TestProcessRequestDocumentFilterPassedThrough(t *testing.T) {
	var gotFilter vectorstore.Filter
	mStore := &MockStore{OnSearch: func(ctx context.Context, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Hit, error) {
		gotFilter = filter
		return nil, nil
	}}
	s := rag.NewService(mStore, &MockLLM{}, &MockEmbedder{}, &MockRegistry{})

	job := queryJob("What does the retention policy say?")
	job.JobPayload.DocumentFilter = "retention-policy"
	s.ProcessRequest(context.Background(), job)

	if gotFilter.DocumentId != "retention-policy" {
		t.Errorf("filter document = %q; want retention-policy", gotFilter.DocumentId)
	}
	if gotFilter.MinScore != config.MinScore {
		t.Errorf("filter min score = %v; want %v", gotFilter.MinScore, config.MinScore)
	}
}

func TestIngestDocumentDelegatesToPipeline(t *testing.T) {
	// The pipeline itself is covered in the ingest package; here we only
	// check the service wires it with a missing file surfacing as an error.
	job := jobmodel.Job{
		Id:      "ingest-job-1",
		TraceId: "ingest-trace",
		JobType: jobmodel.JobTypeIngest,
		JobPayload: jobmodel.JobPayload{
			DocumentId:     "ghost",
			IngestFileName: "ghost.txt",
			IngestFilePath: "does/not/exist.txt",
			ContentType:    policymodel.TXT,
		},
	}

	s := rag.NewService(&MockStore{}, &MockLLM{}, &MockEmbedder{}, &MockRegistry{})
	result := s.IngestDocument(context.Background(), job)

	if result.Status != jobmodel.JobStatusError {
		t.Fatalf("Status got %v, want Error", result.Status)
	}
	if result.Error.Message != "INGESTION_FAILURE" {
		t.Errorf("Error Message got %s", result.Error.Message)
	}
}
