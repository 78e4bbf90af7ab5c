// Package tokenizer 提供 Token 计数与标记感知的分词能力。
//
// 知识组装器只依赖 TokenCounter（文本长度预言机）；样本构建器使用完整的
// Tokenizer 接口，并要求路径标记作为不可拆分的特殊 Token 注册。
package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter 定义 Token 计数接口。
type TokenCounter interface {
	// Count 返回给定文本编码后的 Token 数量。
	Count(text string) int
}

// Encoder 基础编码器接口，不感知特殊 Token。
type Encoder interface {
	// Encode 把文本编码为 Token ID 序列。
	Encode(text string) []int
	// Decode 把 Token ID 序列还原为文本。
	Decode(ids []int) string
}

// DefaultEncoding 默认 BPE 编码
const DefaultEncoding = "cl100k_base"

// TiktokenEncoder 使用 tiktoken 实现的 BPE 编码器。
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// TiktokenOption 配置 TiktokenEncoder。
type TiktokenOption func(*TiktokenEncoder)

// WithEncoding 设置 BPE 编码名称（cl100k_base、o200k_base 等）。
func WithEncoding(name string) TiktokenOption {
	return func(e *TiktokenEncoder) {
		e.name = name
	}
}

// NewTiktokenEncoder 创建新的 TiktokenEncoder。
// 默认使用 cl100k_base 编码。
func NewTiktokenEncoder(opts ...TiktokenOption) (*TiktokenEncoder, error) {
	e := &TiktokenEncoder{
		name: DefaultEncoding,
	}

	for _, opt := range opts {
		opt(e)
	}

	encoding, err := tiktoken.GetEncoding(e.name)
	if err != nil {
		// 名称也可能是模型名
		encoding, err = tiktoken.EncodingForModel(e.name)
		if err != nil {
			return nil, err
		}
	}

	e.encoding = encoding
	return e, nil
}

// Name 返回编码名称。
func (e *TiktokenEncoder) Name() string {
	return e.name
}

// Encode 把文本编码为 Token ID 序列。
func (e *TiktokenEncoder) Encode(text string) []int {
	if text == "" {
		return nil
	}
	return e.encoding.Encode(text, nil, nil)
}

// Decode 把 Token ID 序列还原为文本。
func (e *TiktokenEncoder) Decode(ids []int) string {
	if len(ids) == 0 {
		return ""
	}
	return e.encoding.Decode(ids)
}

// Count 返回给定文本的 Token 数量。
func (e *TiktokenEncoder) Count(text string) int {
	return len(e.Encode(text))
}

// CounterFunc 把普通函数适配为 TokenCounter。
type CounterFunc func(text string) int

// Count 调用函数本身。
func (f CounterFunc) Count(text string) int {
	return f(text)
}

// 编译时接口检查
var _ TokenCounter = (*TiktokenEncoder)(nil)
var _ TokenCounter = CounterFunc(nil)
var _ Encoder = (*TiktokenEncoder)(nil)
