package openaichat

import (
	"context"
	"errors"
	"sync"

	"policyrag/internal/config"
	"policyrag/internal/customHttpClient"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/llm"
	"policyrag/pkg/logger_i"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api   openai.Client
	model string
}

var logger *logger_i.Logger
var chatClient *llmClient
var once sync.Once

func GetOpenAIChatClient(ctx context.Context, modelName string, apiKey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		if apiKey == "" {
			logger.Error("OPENAI_API_KEY not set, chat client unavailable")
			return
		}
		chatClient = &llmClient{
			api: openai.NewClient(
				option.WithAPIKey(apiKey),
				option.WithHTTPClient(customHttpClient.GetPooledClient()),
			),
			model: modelName,
		}
		logger.Info("OpenAI chat client created", "model", modelName)
	})

	if chatClient == nil {
		return nil
	}
	return chatClient
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	log := logger.WithTrace(ctx)

	res, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(float64(config.ModelTemperature)),
		MaxTokens:   openai.Int(int64(config.MaxAnswerTokens)),
	})
	if err != nil {
		log.Error("Error generating answer from OpenAI", "error", err)
		return "", classify(err)
	}
	if len(res.Choices) == 0 {
		return "", policymodel.Faultf(policymodel.FaultGeneration, "empty completion response")
	}
	return res.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		transient := apierr.StatusCode == 429 || apierr.StatusCode == 408 || apierr.StatusCode >= 500
		return policymodel.NewFault(policymodel.FaultGeneration, transient, err)
	}
	return policymodel.NewFault(policymodel.FaultGeneration, true, err)
}
