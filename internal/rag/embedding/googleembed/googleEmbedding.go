package googleembed

import (
	"context"
	"fmt"
	"sync"

	"policyrag/internal/config"
	"policyrag/internal/customHttpClient"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/embedding"
	"policyrag/pkg/logger_i"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apiKey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: customHttpClient.GetPooledClient(),
	})
	if err != nil {
		logger.Error("Error creating Google embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi: c,
		model: modelName,
	}
	logger.Info("Google embedding client created", "model", modelName)
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apiKey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apiKey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.WithTrace(ctx)

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_QUERY"})
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, classify(err)
	}
	if len(result.Embeddings) == 0 {
		return nil, policymodel.Faultf(policymodel.FaultEmbed, "empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.WithTrace(ctx)

	results := make([][]float32, 0, len(chunks))
	for _, batch := range embedding.SplitBatches(chunks, config.EmbedBatchSize) {
		res, err := c.doCall(ctx, getContent(batch))
		if err != nil {
			log.Error("Error getting embeddings from Google", "error", err)
			return nil, classify(err)
		}
		if len(res.Embeddings) != len(batch) {
			return nil, policymodel.NewFault(policymodel.FaultEmbed, false,
				fmt.Errorf("embedding response has %d vectors for %d inputs", len(res.Embeddings), len(batch)))
		}
		for _, r := range res.Embeddings {
			results = append(results, r.Values)
		}
	}
	return results, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))

	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// classify marks rate limits and service unavailability as retryable.
func classify(err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return policymodel.NewFault(policymodel.FaultEmbed, true, err)
		case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated, codes.NotFound:
			return policymodel.NewFault(policymodel.FaultEmbed, false, err)
		}
	}
	return policymodel.NewFault(policymodel.FaultEmbed, true, err)
}
