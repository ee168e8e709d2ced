package lingotutor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Model is the generative capability behind quizzes, chat and translation.
// Generate runs a single stateless prompt; Chat completes the next turn for
// an accumulated conversation history.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, turns []ChatTurn) (string, error)
}

// OpenAIModel implements Model on top of the OpenAI chat completion API.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a client for the given model name, defaulting to GPT-4o.
func NewOpenAIModel(apiKey, model string) *OpenAIModel {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAIModel{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate sends a single user prompt and returns the trimmed reply text.
func (m *OpenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	return m.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// Chat completes the next turn for the given history.
func (m *OpenAIModel) Chat(ctx context.Context, turns []ChatTurn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	return m.complete(ctx, messages)
}

func (m *OpenAIModel) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    m.model,
		Messages: messages,
	})
	if err != nil {
		return "", wrapModelError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("modelden boş yanıt geldi")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// wrapModelError marks quota and availability failures as ErrUpstreamUnavailable
// so callers can answer with backoff-specific messaging.
func wrapModelError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
	}
	return err
}
