package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	summaryMaxTokens = 1024
	chatMaxTokens    = 2048
	aiTemperature    = 0.7
)

// ChatCompleter is the minimal OpenAI surface the AI processor needs.
// Wrapping the SDK behind it keeps prompt assembly testable offline.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion, maxTokens int64) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// CreateChatCompletion implements the chat completion method.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion, maxTokens int64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(aiTemperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// AI generates video summaries and grounded chat replies.
type AI struct {
	client          ChatCompleter
	model           string
	maxSummaryWords int
	timeout         time.Duration
	logger          *slog.Logger
}

// NewAI creates a new AI processor with the given client.
func NewAI(client ChatCompleter, model string, maxSummaryWords int, timeout time.Duration, logger *slog.Logger) *AI {
	return &AI{
		client:          client,
		model:           model,
		maxSummaryWords: maxSummaryWords,
		timeout:         timeout,
		logger:          logger,
	}
}

// NewAIWithKey creates a new AI processor backed by the official SDK.
func NewAIWithKey(apiKey, model string, maxSummaryWords int, timeout time.Duration, logger *slog.Logger) *AI {
	return NewAI(NewOpenAIClient(apiKey), model, maxSummaryWords, timeout, logger)
}

// Summarize generates a summary for a video in the user's language.
func (ai *AI) Summarize(ctx context.Context, metadata *VideoMetadata, transcript *Transcript, language string) (string, error) {
	prompt, err := BuildSummaryPrompt(metadata, transcript, language, ai.maxSummaryWords)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, ai.timeout)
	defer cancel()

	summary, err := ai.client.CreateChatCompletion(ctx, ai.model, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}, summaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	ai.logger.Info("generated summary", "video_id", metadata.VideoID, "language", language)
	return summary, nil
}

// Chat answers a question about a video, grounded in its transcript
// and the prior conversation.
func (ai *AI) Chat(ctx context.Context, question string, metadata *VideoMetadata, transcript *Transcript, history []ConversationMessage, language string) (string, error) {
	system, err := BuildChatSystemPrompt(metadata, transcript, language)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(system))
	for _, msg := range history {
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(question))

	ctx, cancel := context.WithTimeout(ctx, ai.timeout)
	defer cancel()

	reply, err := ai.client.CreateChatCompletion(ctx, ai.model, messages, chatMaxTokens)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	ai.logger.Info("generated chat reply", "video_id", metadata.VideoID, "history", len(history))
	return reply, nil
}
