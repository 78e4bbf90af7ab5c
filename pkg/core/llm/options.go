package llm

import "time"

// Option 回复器选项
type Option func(*Options)

// Options 回复器选项。预测回复默认贪心解码，输出长度与样本标签上限一致。
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	MaxRetries int
	RetryDelay time.Duration
	// OnRetry 第 attempt 次重试前调用
	OnRetry func(attempt int, err error)

	Temperature float64
	MaxTokens   int
}

func defaultOptions() *Options {
	return &Options{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: time.Second,
		MaxTokens:  64,
	}
}

func WithAPIKey(key string) Option { return func(o *Options) { o.APIKey = key } }

func WithBaseURL(url string) Option { return func(o *Options) { o.BaseURL = url } }

func WithModel(model string) Option { return func(o *Options) { o.Model = model } }

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }

// WithRetry 设置重试次数与退避基数
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(o *Options) { o.OnRetry = fn }
}

// WithSampling 设置采样温度与输出上限，maxTokens 非正时保留原值
func WithSampling(temperature float64, maxTokens int) Option {
	return func(o *Options) {
		o.Temperature = temperature
		if maxTokens > 0 {
			o.MaxTokens = maxTokens
		}
	}
}
