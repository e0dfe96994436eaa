package gemini

import (
	"context"
	"sync"

	"policyrag/internal/config"
	"policyrag/internal/customHttpClient"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/llm"
	"policyrag/pkg/logger_i"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apiKey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apiKey)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, modelName string, apiKey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		HTTPClient: customHttpClient.GetPooledClient(),
	})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.WithTrace(ctx)

	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		},
		Temperature:     &temperature,
		MaxOutputTokens: config.MaxAnswerTokens,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(userPrompt),
		contentConfig,
	)
	if err != nil {
		log.Error("Error generating answer from Gemini", "error", err)
		return "", classify(err)
	}
	answer := result.Text()
	if answer == "" {
		return "", policymodel.Faultf(policymodel.FaultGeneration, "empty completion response")
	}
	return answer, nil
}

func classify(err error) error {
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted:
			return policymodel.NewFault(policymodel.FaultGeneration, true, err)
		case codes.InvalidArgument, codes.PermissionDenied, codes.Unauthenticated, codes.NotFound:
			return policymodel.NewFault(policymodel.FaultGeneration, false, err)
		}
	}
	return policymodel.NewFault(policymodel.FaultGeneration, true, err)
}
