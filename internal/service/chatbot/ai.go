// internal/service/chatbot/ai.go
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cobramax-service/internal/domain/chatbot"
	xerrors "cobramax-service/internal/pkg/errors"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// systemPrompt pins the assistant to the ISP support domain. Replies outside
// it must redirect the customer back to service topics.
const systemPrompt = "Eres el asistente virtual de COBRA-MAX, un proveedor de internet. " +
	"Responde únicamente consultas sobre el servicio de internet, pagos, facturación, " +
	"estado de cuenta y soporte técnico, siempre en español y de forma breve y cordial. " +
	"Si la consulta no está relacionada con el servicio, indica amablemente que solo " +
	"puedes ayudar con temas de COBRA-MAX."

const (
	aiMaxTokens   = 256
	aiTemperature = 0.2
	historyDepth  = 6
)

// Completer produces an assistant reply given the recent conversation.
type Completer interface {
	Complete(ctx context.Context, history []chatbot.Message, userMessage string) (string, error)
}

// OpenAIClient is the production Completer backed by the chat completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, history []chatbot.Message, userMessage string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	start := 0
	if len(history) > historyDepth {
		start = len(history) - historyDepth
	}
	for _, m := range history[start:] {
		role := openai.ChatMessageRoleUser
		if m.Sender != chatbot.SenderCustomer {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Body})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   aiMaxTokens,
		Temperature: aiTemperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", xerrors.ErrRateLimited
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// RetryingCompleter wraps a Completer with linear backoff retries. An
// upstream rate limit is returned at once; retrying a 429 only makes the
// quota situation worse.
type RetryingCompleter struct {
	inner   Completer
	retries int
	backoff time.Duration
	logger  *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryingCompleter(inner Completer, retries int, backoff time.Duration, logger *zap.Logger) *RetryingCompleter {
	return &RetryingCompleter{
		inner:   inner,
		retries: retries,
		backoff: backoff,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *RetryingCompleter) Complete(ctx context.Context, history []chatbot.Message, userMessage string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		reply, err := r.inner.Complete(ctx, history, userMessage)
		if err == nil {
			return reply, nil
		}
		if errors.Is(err, xerrors.ErrRateLimited) {
			return "", err
		}
		lastErr = err
		r.logger.Warn("ai completion attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if attempt < r.retries {
			if err := r.sleep(ctx, r.backoff*time.Duration(attempt+1)); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("%w: %v", xerrors.ErrAIUnavailable, lastErr)
}
