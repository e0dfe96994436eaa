// @title           Security Policy RAG API
// @version         1.0
// @description     Asynchronous ingestion and grounded question answering over security policy documents
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"policyrag/internal/config"
	"policyrag/internal/data/store"
	"policyrag/internal/domain/jobmodel"
	"policyrag/internal/handlers"
	"policyrag/internal/job"
	"policyrag/internal/mcp"
	"policyrag/internal/rag"
	"policyrag/internal/rag/embedding"
	"policyrag/internal/rag/embedding/googleembed"
	"policyrag/internal/rag/embedding/openaiembed"
	"policyrag/internal/rag/llm"
	"policyrag/internal/rag/llm/gemini"
	"policyrag/internal/rag/llm/openaichat"
	"policyrag/internal/rag/vectorstore"
	"policyrag/internal/rag/vectorstore/memstore"
	"policyrag/internal/rag/vectorstore/pgstore"
	"policyrag/internal/rag/vectorstore/qdrantstore"
	"policyrag/internal/server"
	"policyrag/internal/worker"
	"policyrag/pkg/logger_i"

	"github.com/joho/godotenv"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	//.env is optional, real deployments set the environment directly
	_ = godotenv.Load()
	config.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service, job store and document registry
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	//nil checks happen on the concrete pointers, a nil pointer inside the
	//interface field would slip past them
	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisRegistry := store.GetRedisDocumentRegistry(serviceContext)
	if redisJobStore == nil || redisRegistry == nil {
		logger.Error("Redis stores are offline")
		if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
			return
		}
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.Registry = store.InitInMemoryDocumentRegistry()
	} else {
		serviceConfig.JobStore = redisJobStore
		serviceConfig.Registry = redisRegistry
	}
	service := job.InitJobService(serviceConfig)

	vectorStore := buildVectorStore(serviceContext, logger)
	embedder := buildEmbedder(serviceContext, logger)
	llmProvider := buildLLMProvider(serviceContext, logger)

	if vectorStore == nil || embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorStore", vectorStore != nil, "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	//collection/schema bootstrap is idempotent
	if err := vectorStore.Init(serviceContext); err != nil {
		logger.Error("Vector store init failed", "error", err)
		return
	}

	ragService := rag.NewService(vectorStore, llmProvider, embedder, serviceConfig.Registry)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	mcpServer := mcp.NewServer(service)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpServer.Handler())

	<-stopExecution
	logger.Info("Server stopped")
}

func buildVectorStore(ctx context.Context, logger *logger_i.Logger) vectorstore.Store {
	switch config.VectorBackend {
	case "qdrant":
		return qdrantstore.GetQdrantStore(ctx)
	case "postgres":
		return pgstore.GetPostgresStore(ctx)
	case "memory":
		logger.Warn("Using the in-memory vector store, vectors are gone on restart")
		return memstore.New(config.EmbeddingOutputDimensionality)
	default:
		logger.Error("Unknown vector backend", "VECTOR_BACKEND", config.VectorBackend)
		return nil
	}
}

func buildEmbedder(ctx context.Context, logger *logger_i.Logger) embedding.Embedder {
	switch config.EmbeddingProvider {
	case "openai":
		return openaiembed.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, config.OpenAIKey)
	case "google":
		return googleembed.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GeminiKey)
	default:
		logger.Error("Unknown embedding provider", "EMBEDDING_PROVIDER", config.EmbeddingProvider)
		return nil
	}
}

func buildLLMProvider(ctx context.Context, logger *logger_i.Logger) llm.Provider {
	switch config.LLMProvider {
	case "openai":
		return openaichat.GetOpenAIChatClient(ctx, config.OpenAIChatModel, config.OpenAIKey)
	case "gemini":
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GeminiKey)
	default:
		logger.Error("Unknown llm provider", "LLM_PROVIDER", config.LLMProvider)
		return nil
	}
}
