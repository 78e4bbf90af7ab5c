// Package dataset 负责读取对话记录并构建模型样本
package dataset

import (
	"fmt"
	"runtime"
	"time"

	"github.com/easyops/kgpath/pkg/core/errors"
)

// Config 数据集配置
type Config struct {
	// DataDir 包含 train.jsonl、valid.jsonl、test.jsonl 的目录
	DataDir string `koanf:"data_dir"`
	// LMType 模型类型，t5 时使用文本前缀
	LMType string `koanf:"lm_type"`
	// MaxLength 输入序列最大 Token 数
	MaxLength int `koanf:"max_length"`
	// MaxDecodeStep 目标序列最大 Token 数（不含起始 Token）
	MaxDecodeStep int `koanf:"max_decode_step"`
	// HistTurns 保留的最近对话轮数，0 表示全部
	HistTurns int `koanf:"hist_turns"`
	// Workers 并行构建的 goroutine 数
	Workers int `koanf:"workers"`
	// ExampleTimeout 单条样本的构建超时，0 表示不限制
	ExampleTimeout time.Duration `koanf:"example_timeout"`
	// ResolveIDs 构建前是否用词表解析路径中的 ID
	ResolveIDs bool `koanf:"resolve_ids"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DataDir:       "data",
		LMType:        LMTypeT5,
		MaxLength:     DefaultMaxLength,
		MaxDecodeStep: DefaultMaxDecodeStep,
		HistTurns:     DefaultHistTurns,
		Workers:       runtime.NumCPU(),
	}
}

// WithDefaults 为零值字段填充默认值
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.MaxLength == 0 {
		c.MaxLength = d.MaxLength
	}
	if c.MaxDecodeStep == 0 {
		c.MaxDecodeStep = d.MaxDecodeStep
	}
	if c.Workers == 0 {
		c.Workers = d.Workers
	}
	return c
}

// Validate 验证配置
func (c Config) Validate() error {
	switch {
	case c.MaxLength < 0:
		return fmt.Errorf("%w: max_length must not be negative", errors.ErrInvalidConfig)
	case c.MaxDecodeStep < 0:
		return fmt.Errorf("%w: max_decode_step must not be negative", errors.ErrInvalidConfig)
	case c.HistTurns < 0:
		return fmt.Errorf("%w: hist_turns must not be negative", errors.ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", errors.ErrInvalidConfig)
	case c.ExampleTimeout < 0:
		return fmt.Errorf("%w: example_timeout must not be negative", errors.ErrInvalidConfig)
	}
	return nil
}
