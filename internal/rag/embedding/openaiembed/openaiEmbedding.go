package openaiembed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"policyrag/internal/config"
	"policyrag/internal/customHttpClient"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/embedding"
	"policyrag/pkg/logger_i"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model string
}

// GetOpenAIEmbeddingClient returns the shared embedder, nil when the api key
// is missing so the caller can refuse to start.
func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apiKey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apiKey == "" {
			logger.Error("OPENAI_API_KEY not set, embedding client unavailable")
			return
		}
		embeddingClient = &client{
			api: openai.NewClient(
				option.WithAPIKey(apiKey),
				option.WithHTTPClient(customHttpClient.GetPooledClient()),
			),
			model: modelName,
		}
		logger.Info("OpenAI embedding client created", "model", modelName)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.WithTrace(ctx)

	results := make([][]float32, 0, len(chunks))
	for _, batch := range embedding.SplitBatches(chunks, config.EmbedBatchSize) {
		vectors, err := c.embed(ctx, batch)
		if err != nil {
			log.Error("Error getting embeddings from OpenAI", "error", err)
			return nil, err
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (c *client) embed(ctx context.Context, texts []string) ([][]float32, error) {
	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(config.EmbeddingOutputDimensionality)),
	})
	if err != nil {
		return nil, classify(err)
	}
	if len(res.Data) != len(texts) {
		return nil, policymodel.NewFault(policymodel.FaultEmbed, false,
			fmt.Errorf("embedding response has %d vectors for %d inputs", len(res.Data), len(texts)))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range res.Data {
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		if len(vec) != config.EmbeddingOutputDimensionality {
			return nil, policymodel.NewFault(policymodel.FaultEmbed, false,
				fmt.Errorf("embedding dimension %d, want %d", len(vec), config.EmbeddingOutputDimensionality))
		}
		vectors[item.Index] = vec
	}
	return vectors, nil
}

// classify keeps rate limits and server-side hiccups retryable; auth and
// request shape problems are not.
func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		transient := apierr.StatusCode == 429 || apierr.StatusCode == 408 || apierr.StatusCode >= 500
		return policymodel.NewFault(policymodel.FaultEmbed, transient, err)
	}
	return policymodel.NewFault(policymodel.FaultEmbed, true, err)
}
