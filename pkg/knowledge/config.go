// Package knowledge 在 Token 预算内组装线性化后的知识文本。
package knowledge

import (
	"errors"

	"github.com/easyops/kgpath/pkg/kg"
)

// 默认值
const (
	// DefaultSkipCount 最新的若干条路径通常与历史重复，默认跳过 2 条
	DefaultSkipCount = 2
	// DefaultBudget 知识文本的默认 Token 预算
	DefaultBudget = 256
	// T5Prefix T5 类模型使用的知识前缀
	T5Prefix = "knowledge: "
)

// 配置错误
var (
	// ErrInvalidBudget 预算不能为负
	ErrInvalidBudget = errors.New("knowledge budget must not be negative")
	// ErrInvalidSkipCount 跳过数量不能为负
	ErrInvalidSkipCount = errors.New("skip count must not be negative")
)

// Config 保存知识组装的配置。
type Config struct {
	// Budget 是组装结果编码后的最大 Token 数。
	Budget int `koanf:"budget"`

	// SkipCount 是逆序遍历时无条件跳过的路径数量。
	SkipCount int `koanf:"skip_count"`

	// Prefix 是累积文本的初始内容。
	Prefix string `koanf:"prefix"`

	// NumHops 传递给线性化器的最大跳数。
	NumHops int `koanf:"num_hops"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Budget:    DefaultBudget,
		SkipCount: DefaultSkipCount,
		NumHops:   kg.DefaultNumHops,
	}
}

// Validate 验证配置。
func (c Config) Validate() error {
	if c.Budget < 0 {
		return ErrInvalidBudget
	}
	if c.SkipCount < 0 {
		return ErrInvalidSkipCount
	}
	return kg.LinearizerConfig{NumHops: c.NumHops}.Validate()
}
