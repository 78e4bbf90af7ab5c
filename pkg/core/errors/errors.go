// Package errors 定义 kgpath 的通用错误类型
package errors

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	// ErrNotImplemented 功能未实现
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrContextCanceled 上下文被取消
	ErrContextCanceled = errors.New("context canceled")
)

// 数据集相关错误
var (
	// ErrEmptyInput 必填字段为空
	ErrEmptyInput = errors.New("empty input")
	// ErrMalformedRecord 记录无法按预期格式解析
	ErrMalformedRecord = errors.New("malformed record")
	// ErrLineOutOfRange 行号越界
	ErrLineOutOfRange = errors.New("line out of range")
)

// 词表相关错误
var (
	// ErrVocabularyNotFound 词表未找到
	ErrVocabularyNotFound = errors.New("vocabulary not found")
	// ErrUnknownVocabularyType 未知词表后端
	ErrUnknownVocabularyType = errors.New("unknown vocabulary type")
)

// LLM 相关错误
var (
	// ErrRateLimited 请求被限速
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout 请求超时
	ErrTimeout = errors.New("request timeout")
	// ErrInvalidAPIKey API 密钥无效
	ErrInvalidAPIKey = errors.New("invalid API key")
	// ErrModelNotFound 模型未找到
	ErrModelNotFound = errors.New("model not found")
	// ErrProviderUnavailable 提供商不可用
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidResponse LLM 响应无效
	ErrInvalidResponse = errors.New("invalid LLM response")
)

// EmptyInputError 构建样本时必填字段为空
type EmptyInputError struct {
	// Field 字段名（history、label）
	Field string
	// Line 记录所在行号（1 起始，未知时为 0）
	Line int
}

func (e *EmptyInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("empty input: field %q is empty (line %d)", e.Field, e.Line)
	}
	return fmt.Sprintf("empty input: field %q is empty", e.Field)
}

// Is 使 errors.Is(err, ErrEmptyInput) 成立
func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// MalformedRecordError 行内容无法解析为记录
type MalformedRecordError struct {
	// Line 记录所在行号（1 起始）
	Line int
	// Err 底层解析错误
	Err error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
}

// Is 使 errors.Is(err, ErrMalformedRecord) 成立
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Unwrap 返回底层解析错误
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误并添加上下文信息
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrProviderUnavailable)
}

// IsFatal 判断错误是否为致命错误（不可恢复）
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrInvalidConfig)
}

// IsDataError 判断错误是否为单条记录的数据问题（调用方可跳过该条记录）
func IsDataError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrMalformedRecord)
}
