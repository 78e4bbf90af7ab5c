// Package llm 提供生成预测回复的 LLM 接口
//
// 预测回复只用于 profile 报告，与路径线性化和样本构建无关。
package llm

import (
	"context"
	"strings"
)

// Responder 定义预测回复生成接口
type Responder interface {
	// Respond 对一个模型输入生成回复
	Respond(ctx context.Context, req Request) (Response, error)
	// Name 返回提供商名称
	Name() string
	// Model 返回当前模型名称
	Model() string
}

// Request 预测请求
type Request struct {
	// System 系统提示（可选）
	System string
	// Prompt 模型输入，通常是解码后的知识加对话历史
	Prompt string
	// Temperature 温度参数（可选）
	Temperature *float64
	// MaxTokens 最大输出 token（可选）
	MaxTokens *int
	// Stop 停止序列（可选）
	Stop []string
}

// Response 预测响应
type Response struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	FinishReason string     `json:"finish_reason"`
	Usage        TokenUsage `json:"usage"`
}

// TokenUsage Token 使用统计
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StaticResponder 按顺序返回预先给定的回复，用完后返回空回复
//
// 用于从已有预测文件生成 profile 报告。
type StaticResponder struct {
	predictions []string
	next        int
}

// NewStaticResponder 创建静态回复器
func NewStaticResponder(predictions []string) *StaticResponder {
	return &StaticResponder{predictions: predictions}
}

// Respond 返回下一条预测
func (r *StaticResponder) Respond(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if r.next >= len(r.predictions) {
		return Response{FinishReason: "stop"}, nil
	}
	content := strings.TrimRight(r.predictions[r.next], "\r\n")
	r.next++
	return Response{Content: content, FinishReason: "stop"}, nil
}

func (r *StaticResponder) Name() string  { return "static" }
func (r *StaticResponder) Model() string { return "" }

var _ Responder = (*StaticResponder)(nil)
