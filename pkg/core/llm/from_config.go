package llm

import (
	"fmt"

	"github.com/easyops/kgpath/pkg/core/config"
)

// FromConfig 按配置创建回复器，extra 覆盖配置得到的选项
func FromConfig(cfg config.LLMConfig, extra ...Option) (Responder, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := append([]Option{
		WithAPIKey(cfg.APIKey),
		WithBaseURL(cfg.Endpoint()),
		WithModel(cfg.Model),
		WithTimeout(cfg.Timeout),
		WithRetry(cfg.MaxRetries, cfg.RetryDelay),
		WithSampling(cfg.Temperature, cfg.MaxTokens),
	}, extra...)
	return newOpenAICompatible(string(cfg.Provider), cfg.Provider.RequiresKey(), opts...)
}
