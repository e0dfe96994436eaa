package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, fall back to the in-memory stores
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	QueryJobTimeout                 = 90 * time.Second //outer bound, the pipeline cuts off earlier
	IngestJobTimeout                = 11 * time.Minute

	//serverTimeouts
	//reads stay generous for multipart uploads, writes for MCP tool calls
	//that hold the response open until the job finishes
	ReadTimeout            = 2 * time.Minute
	WriteTimeout           = 3 * time.Minute
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//mcp
	MCPAskWaitTimeout = 2 * time.Minute //job queue wait plus the query budget

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//uploads
	MaxUploadBytes int64 = 32 << 20

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//ingest pipeline
	IngestTimeout   = 10 * time.Minute
	PageParseWindow = 20 * time.Second //guard against parser hangs on a single page

	//embeddings
	OpenAIEmbeddingModel          = "text-embedding-3-large"
	GoogleEmbeddingModel          = "gemini-embedding-001"
	EmbeddingOutputDimensionality = 3072 //fixed per collection, must match the model output
	EmbedBatchSize                = 100
	EmbedMaxAttempts              = 3
	EmbedRetryBaseDelay           = 500 * time.Millisecond

	//llm
	OpenAIChatModel          = "gpt-4o-mini"
	GeminiModelName          = "gemini-2.5-flash-lite-preview-09-2025"
	ModelTemperature float32 = 0.2
	MaxAnswerTokens          = 1024
	GenerationAttempts       = 2 //one retry with backoff, then surface
	GenerationRetryDelay     = 2 * time.Second

	SystemPrompt = "You are a security policy assistant. " +
		"Answer ONLY using the provided policy context. " +
		"If the context does not contain the answer, say so explicitly. " +
		"Do not use outside knowledge."

	//query
	QueryTimeout     = 60 * time.Second
	DefaultTopK      = 5
	MaxTopK          = 20
	MinScore         = 0.25
	MaxContextChars  = 3500
	SearchAttempts   = 2 //store reads get retried once
	SearchRetryDelay = 500 * time.Millisecond

	NoContextAnswer = "I cannot answer this question based on the available security policy documents."

	//vectorDB
	CollectionName          = "policy_docs"
	QdrantConnectionTimeout = 30 * time.Second
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation
	QdrantKeepAliveTimeout  = 30 * time.Second
	UpsertBatchSize         = 100

	//postgres backend
	ChunkTable = "policy_chunks"

	//sdk http transport
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DB we can use
	RedisJobStore      = 0
	RedisDocumentStore = 1

	//redis timeouts; documents are never expired automatically
	RedisJobStoreTTL      = 24 * time.Hour
	RedisDocumentStoreTTL = 0
)

// Set by Load from the environment, after godotenv has had its chance.
var (
	IsProd bool

	RedisAddr     = "127.0.0.1:6379"
	RedisPassword = ""
	QdrantHost    = "localhost"
	PostgresURL   = ""

	VectorBackend     = "qdrant" //qdrant | postgres | memory
	LLMProvider       = "openai" //openai | gemini
	EmbeddingProvider = "openai" //openai | google
	CitationMode      = "all"    //all | self-reported

	OpenAIKey = ""
	GeminiKey = ""
)

func Load() {
	IsProd = getenv("ENV", "dev") == "prod"

	RedisAddr = getenv("REDIS_ADDR", RedisAddr)
	RedisPassword = getenv("REDIS_PASSWORD", RedisPassword)
	QdrantHost = getenv("QDRANT_HOST", QdrantHost)
	PostgresURL = getenv("POSTGRES_URL", PostgresURL)

	VectorBackend = getenv("VECTOR_BACKEND", VectorBackend)
	LLMProvider = getenv("LLM_PROVIDER", LLMProvider)
	EmbeddingProvider = getenv("EMBEDDING_PROVIDER", EmbeddingProvider)
	CitationMode = getenv("CITATION_MODE", CitationMode)

	OpenAIKey = getenv("OPENAI_API_KEY", "")
	GeminiKey = getenv("GEMINI_API_KEY", "")
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
