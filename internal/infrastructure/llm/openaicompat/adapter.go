package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"voice-relay/internal/application/port/output"
	"voice-relay/internal/domain/entity"
)

var _ output.LLMPort = (*ChatAdapter)(nil)

// ChatAdapter talks to any OpenAI-compatible chat-completions server
// (OpenAI, vLLM, Ollama, OpenRouter...).
type ChatAdapter struct {
	client       *openai.Client
	model        string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	configured   bool
	logger       output.LoggerPort
}

type Config struct {
	// Endpoint is the server root; "/v1" is appended.
	Endpoint     string
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       output.LoggerPort
}

func DefaultConfig(endpoint, model string) Config {
	return Config{
		Endpoint:     endpoint,
		Model:        model,
		Timeout:      60 * time.Second,
		MaxRetries:   0,
		RetryBackoff: 500 * time.Millisecond,
	}
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var bodyBytes []byte
	if req.Body != nil {
		bodyBytes, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}

	var requestData struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
	}
	if len(bodyBytes) > 0 {
		_ = json.Unmarshal(bodyBytes, &requestData)
	}

	t.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"model", requestData.Model,
		"maxTokens", requestData.MaxTokens,
		"bodyBytes", len(bodyBytes),
	)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("HTTP Request failed", "error", err, "durationMs", time.Since(start).Milliseconds())
		return resp, err
	}

	t.logger.Debug("HTTP Response",
		"status", resp.Status,
		"statusCode", resp.StatusCode,
		"durationMs", time.Since(start).Milliseconds(),
	)

	return resp, nil
}

func NewChatAdapter(cfg Config) *ChatAdapter {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = endpoint + "/v1"

	if cfg.Logger != nil {
		config.HTTPClient = &http.Client{
			Transport: &loggingTransport{
				base:   http.DefaultTransport,
				logger: cfg.Logger,
			},
		}
	}

	return &ChatAdapter{
		client:       openai.NewClientWithConfig(config),
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		configured:   endpoint != "",
		logger:       cfg.Logger,
	}
}

// Chat performs the completion, retrying transport failures only when
// MaxRetries > 0. Schema problems in the reply are never retried.
func (a *ChatAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if !a.configured {
		return nil, fmt.Errorf("%w: LLM endpoint is not set", entity.ErrConfiguration)
	}

	resp, err := backoff.RetryNotifyWithData(func() (*output.ChatResponse, error) {
		resp, err := a.chatOnce(ctx, req)
		if err != nil && !errors.Is(err, entity.ErrTransport) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}, a.retryPolicy(ctx), func(err error, wait time.Duration) {
		a.warn("Retrying chat completion", "wait", wait, "error", err)
	})
	if err != nil && !errors.Is(err, entity.ErrTransport) && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil, fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
	return resp, err
}

func (a *ChatAdapter) retryPolicy(ctx context.Context) backoff.BackOff {
	retries := a.maxRetries
	if retries < 0 {
		retries = 0
	}
	interval := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(a.retryBackoff),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(interval, uint64(retries)), ctx)
}

func (a *ChatAdapter) chatOnce(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    convertMessages(req.Messages),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", entity.ErrMalformedResponse)
	}

	msg := convertResponseMessage(resp.Choices[0].Message)
	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("%w: empty message content", entity.ErrMalformedResponse)
	}

	return &output.ChatResponse{Message: msg}, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: status %d: %s", entity.ErrTransport, apiErr.HTTPStatusCode, apiErr.Message)
	case errors.As(err, &reqErr):
		return fmt.Errorf("%w: status %d: %w", entity.ErrTransport, reqErr.HTTPStatusCode, err)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", entity.ErrMalformedResponse, err)
	default:
		return fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
}

func (a *ChatAdapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func convertMessages(messages []entity.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role: string(msg.Role),
		}

		if msg.ImageURL == "" {
			oaiMsg.Content = msg.Content
		} else {
			oaiMsg.MultiContent = []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: msg.Content},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    msg.ImageURL,
						Detail: openai.ImageURLDetailAuto,
					},
				},
			}
		}

		result = append(result, oaiMsg)
	}
	return result
}

func convertResponseMessage(msg openai.ChatCompletionMessage) entity.Message {
	content := msg.Content
	if content == "" {
		for _, part := range msg.MultiContent {
			if part.Type == openai.ChatMessagePartTypeText {
				content += part.Text
			}
		}
	}
	return entity.Message{
		Role:    entity.MessageRole(msg.Role),
		Content: content,
	}
}
