package config

import (
	"fmt"
	"time"
)

// Provider 预测回复使用的 OpenAI 兼容服务
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
	ProviderQwen     Provider = "qwen"
	ProviderOllama   Provider = "ollama"
	ProviderVLLM     Provider = "vllm"
)

type providerSpec struct {
	baseURL  string
	needsKey bool
}

// 官方端点留空，交给客户端默认值
var providerSpecs = map[Provider]providerSpec{
	ProviderOpenAI:   {"", true},
	ProviderDeepSeek: {"https://api.deepseek.com/v1", true},
	ProviderQwen:     {"https://dashscope.aliyuncs.com/compatible-mode/v1", true},
	ProviderOllama:   {"http://localhost:11434/v1", false},
	ProviderVLLM:     {"http://localhost:8000/v1", false},
}

func (p Provider) IsValid() bool {
	_, ok := providerSpecs[p]
	return ok
}

// RequiresKey 本地部署的服务不校验密钥
func (p Provider) RequiresKey() bool {
	return providerSpecs[p].needsKey
}

const (
	maxLLMTimeout = 5 * time.Minute
	maxLLMRetries = 10
)

// LLMConfig 预测回复使用的 LLM 配置
type LLMConfig struct {
	Provider Provider `koanf:"provider"`
	Model    string   `koanf:"model"`
	APIKey   string   `koanf:"api_key"`
	// BaseURL 为空时使用提供商默认端点
	BaseURL string `koanf:"base_url"`
	// Timeout 单次请求超时，超过 5m 截断
	Timeout time.Duration `koanf:"timeout"`
	// MaxRetries 超过 10 截断
	MaxRetries int           `koanf:"max_retries"`
	RetryDelay time.Duration `koanf:"retry_delay"`
	// Temperature 默认 0，即贪心解码
	Temperature float64 `koanf:"temperature"`
	// MaxTokens 0 时取 dataset.max_decode_step
	MaxTokens int `koanf:"max_tokens"`
}

func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:   ProviderOpenAI,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Endpoint 返回实际请求的 API 地址
func (c LLMConfig) Endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return providerSpecs[c.Provider].baseURL
}

// Validate 校验配置，超时与重试次数超限时就地截断
func (c *LLMConfig) Validate() error {
	switch {
	case !c.Provider.IsValid():
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	case c.Model == "":
		return ErrModelRequired
	case c.Timeout < 0:
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Timeout)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: %d", ErrInvalidMaxRetries, c.MaxRetries)
	case c.Temperature < 0 || c.Temperature > 2:
		return fmt.Errorf("%w: %v", ErrInvalidTemperature, c.Temperature)
	case c.MaxTokens < 0:
		return fmt.Errorf("%w: %d", ErrInvalidMaxTokens, c.MaxTokens)
	}
	c.Timeout = min(c.Timeout, maxLLMTimeout)
	c.MaxRetries = min(c.MaxRetries, maxLLMRetries)
	return nil
}

// WithDefaults 零值字段取默认值
func (c LLMConfig) WithDefaults() LLMConfig {
	d := DefaultLLMConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = d.RetryDelay
	}
	return c
}
