package config

import "errors"

// 配置验证相关错误
var (
	// ErrModelRequired 模型名称必填
	ErrModelRequired = errors.New("model name is required")
	// ErrInvalidTimeout 超时时间无效
	ErrInvalidTimeout = errors.New("invalid timeout value")
	// ErrInvalidMaxRetries 重试次数无效
	ErrInvalidMaxRetries = errors.New("invalid max retries value")
	// ErrInvalidTemperature 温度值无效
	ErrInvalidTemperature = errors.New("temperature must be between 0 and 2")
	// ErrInvalidMaxTokens Token 数无效
	ErrInvalidMaxTokens = errors.New("max tokens must not be negative")
	// ErrUnknownProvider 未知提供商
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrInvalidSection 某个配置段无效
	ErrInvalidSection = errors.New("invalid configuration section")
	// ErrHopsMismatch 知识组装与线性化的跳数不一致
	ErrHopsMismatch = errors.New("knowledge.num_hops must match path.num_hops")
	// ErrUnsupportedFormat 不支持的配置文件格式
	ErrUnsupportedFormat = errors.New("unsupported config file format")
)
