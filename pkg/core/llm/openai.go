package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/easyops/kgpath/pkg/core/errors"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIResponder 基于 OpenAI 兼容接口的回复器
//
// DeepSeek、Ollama、vLLM 等兼容端点通过 BaseURL 接入。
type OpenAIResponder struct {
	client   *openai.Client
	options  *Options
	provider string
}

// NewOpenAI 创建 OpenAI 回复器
func NewOpenAI(opts ...Option) (*OpenAIResponder, error) {
	return newOpenAICompatible("openai", true, opts...)
}

func newOpenAICompatible(provider string, requireKey bool, opts ...Option) (*OpenAIResponder, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if requireKey && options.APIKey == "" {
		return nil, errors.ErrInvalidAPIKey
	}
	if options.Model == "" {
		options.Model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		config.BaseURL = options.BaseURL
	}
	if options.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: options.Timeout}
	}

	return &OpenAIResponder{
		client:   openai.NewClientWithConfig(config),
		options:  options,
		provider: provider,
	}, nil
}

// Name 返回提供商名称
func (c *OpenAIResponder) Name() string {
	return c.provider
}

// Model 返回当前模型名称
func (c *OpenAIResponder) Model() string {
	return c.options.Model
}

// Respond 生成回复（带重试）
func (c *OpenAIResponder) Respond(ctx context.Context, req Request) (Response, error) {
	chatReq := c.buildChatRequest(req)

	var resp openai.ChatCompletionResponse
	retrier := Retrier{
		MaxRetries: c.options.MaxRetries,
		BaseDelay:  c.options.RetryDelay,
		OnRetry:    c.options.OnRetry,
	}
	err := retrier.Do(ctx, func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, chatReq)
		return mapOpenAIError(err)
	})
	if err != nil {
		return Response{}, err
	}

	if len(resp.Choices) == 0 {
		return Response{}, errors.ErrInvalidResponse
	}

	choice := resp.Choices[0]
	return Response{
		ID:           resp.ID,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *OpenAIResponder) buildChatRequest(req Request) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       c.options.Model,
		Messages:    msgs,
		Temperature: float32(c.options.Temperature),
		MaxTokens:   c.options.MaxTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	if req.MaxTokens != nil {
		chatReq.MaxTokens = *req.MaxTokens
	}
	if len(req.Stop) > 0 {
		chatReq.Stop = req.Stop
	}
	return chatReq
}

// mapOpenAIError 映射 OpenAI 错误到框架错误
func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !stderrors.As(err, &apiErr) {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", errors.ErrTimeout, err)
		}
		return errors.WrapError(err, "openai request failed")
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized:
		return errors.ErrInvalidAPIKey
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", errors.ErrModelNotFound, apiErr.Message)
	case http.StatusTooManyRequests:
		return errors.ErrRateLimited
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return errors.ErrProviderUnavailable
	case http.StatusGatewayTimeout:
		return errors.ErrTimeout
	default:
		return fmt.Errorf("openai error (code=%d): %w", apiErr.HTTPStatusCode, err)
	}
}

var _ Responder = (*OpenAIResponder)(nil)
