package commentary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/greekscope/greekscope/internal/engine"
)

// OpenAIConfig holds configuration for model-written commentary.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     int // seconds
}

// DefaultOpenAIConfig returns sensible defaults for commentary generation.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:       openai.GPT4oMini,
		Temperature: 0.3,
		MaxTokens:   400,
		Timeout:     30,
	}
}

// ConfigFromEnv creates config from environment variables. An empty API key
// means commentary stays rule-based.
func ConfigFromEnv() OpenAIConfig {
	config := DefaultOpenAIConfig()
	config.APIKey = os.Getenv("OPENAI_API_KEY")

	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.Model = model
	}
	if tempStr := os.Getenv("OPENAI_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 32); err == nil {
			config.Temperature = float32(temp)
		}
	}

	return config
}

// OpenAICommentator asks a chat model to write the commentary, with the
// rule-based text as fallback whenever the API call fails. Analysis output
// never depends on the API being up.
type OpenAICommentator struct {
	client   *openai.Client
	config   OpenAIConfig
	fallback *RuleBased
	logger   *slog.Logger
}

// NewOpenAICommentator creates a model-backed commentator.
func NewOpenAICommentator(config OpenAIConfig, logger *slog.Logger) (*OpenAICommentator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai api key not configured")
	}

	return &OpenAICommentator{
		client:   openai.NewClient(config.APIKey),
		config:   config,
		fallback: NewRuleBased(),
		logger:   logger,
	}, nil
}

const systemPrompt = "You are an options analyst. Write one short paragraph of plain-English commentary for the given contract data. State the exposure, the scenario payoff, and the main risk. No advice, no hedging language, no markdown."

// ContractCommentary asks the model to explain one contract, falling back
// to rule-based text on any API failure.
func (c *OpenAICommentator) ContractCommentary(ctx context.Context, contract engine.RankedContract, primaryMove string) (string, error) {
	payload, err := json.Marshal(contract)
	if err != nil {
		return c.fallback.ContractCommentary(ctx, contract, primaryMove)
	}

	prompt := fmt.Sprintf("Primary scenario move: %q.\n\nContract data:\n%s", primaryMove, payload)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("openai commentary failed, using rule-based fallback", "error", err)
		return c.fallback.ContractCommentary(ctx, contract, primaryMove)
	}
	return text, nil
}

// RunCommentary asks the model to summarize the run, falling back to
// rule-based text on any API failure.
func (c *OpenAICommentator) RunCommentary(ctx context.Context, result *engine.AnalysisResult) (string, error) {
	payload, err := json.Marshal(result.Summary)
	if err != nil {
		return c.fallback.RunCommentary(ctx, result)
	}

	prompt := fmt.Sprintf("Summarize this options analysis run in one paragraph:\n%s", payload)

	text, err := c.complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("openai commentary failed, using rule-based fallback", "error", err)
		return c.fallback.RunCommentary(ctx, result)
	}
	return text, nil
}

func (c *OpenAICommentator) complete(ctx context.Context, prompt string) (string, error) {
	apiCtx, cancel := context.WithTimeout(ctx, time.Duration(c.config.Timeout)*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
