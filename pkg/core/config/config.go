// Package config 提供配置加载和管理功能
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/easyops/kgpath/pkg/dataset"
	"github.com/easyops/kgpath/pkg/kg"
	"github.com/easyops/kgpath/pkg/knowledge"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/easyops/kgpath/pkg/tokenizer"
	"github.com/easyops/kgpath/pkg/vocab"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "KGPATH_"

// Config 全局配置结构
type Config struct {
	// Path 线性化配置，num_hops 同时决定注册的标记集合
	Path kg.LinearizerConfig `koanf:"path"`
	// Knowledge 知识组装配置
	Knowledge knowledge.Config `koanf:"knowledge"`
	// Tokenizer 分词器配置
	Tokenizer tokenizer.Config `koanf:"tokenizer"`
	// Dataset 数据集配置
	Dataset dataset.Config `koanf:"dataset"`
	// Vocab 词表配置
	Vocab vocab.Config `koanf:"vocab"`
	// LLM 预测回复配置，仅 profile 使用
	LLM LLMConfig `koanf:"llm"`
	// Observability 可观测性配置
	Observability otel.Config `koanf:"observability"`
}

// Default 返回默认配置
func Default() Config {
	return Config{
		Path:          kg.DefaultLinearizerConfig(),
		Knowledge:     knowledge.DefaultConfig(),
		Tokenizer:     tokenizer.DefaultConfig(),
		Dataset:       dataset.DefaultConfig(),
		Vocab:         vocab.DefaultConfig(),
		LLM:           DefaultLLMConfig(),
		Observability: otel.DefaultConfig(),
	}
}

// Validate 验证各段配置
func (c *Config) Validate() error {
	if err := c.Path.Validate(); err != nil {
		return fmt.Errorf("%w: path: %v", ErrInvalidSection, err)
	}
	if err := c.Knowledge.Validate(); err != nil {
		return fmt.Errorf("%w: knowledge: %v", ErrInvalidSection, err)
	}
	if c.Knowledge.NumHops != c.Path.NumHops {
		return ErrHopsMismatch
	}
	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("%w: dataset: %v", ErrInvalidSection, err)
	}
	if err := c.Vocab.Validate(); err != nil {
		return fmt.Errorf("%w: vocab: %v", ErrInvalidSection, err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("%w: observability: %v", ErrInvalidSection, err)
	}
	return nil
}

// yamlParser 基于 yaml.v3 的 koanf 解析器，JSON 作为 YAML 子集一并支持
type yamlParser struct{}

func (yamlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (yamlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	return yaml.Marshal(m)
}

// fileProvider 读取整个配置文件交给解析器
type fileProvider struct {
	path string
}

func (f fileProvider) ReadBytes() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("file provider %s requires a parser", f.path)
}

// 带二级分组的配置段
var nestedSections = map[string]map[string]bool{
	"observability": {"tracing": true, "metrics": true, "logging": true},
}

// EnvKey 把环境变量名映射为配置键
//
// KGPATH_DATASET_HIST_TURNS -> dataset.hist_turns
// KGPATH_OBSERVABILITY_TRACING_SAMPLE_RATE -> observability.tracing.sample_rate
func EnvKey(name string) string {
	s := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	if groups, nested := nestedSections[section]; nested {
		if group, field, ok := strings.Cut(rest, "_"); ok && groups[group] {
			return section + "." + group + "." + field
		}
	}
	return section + "." + rest
}

// Loader 配置加载器
type Loader struct {
	k *koanf.Koanf
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		k: koanf.New("."),
	}
}

// LoadFile 从 YAML 或 JSON 文件加载配置；文件不存在不报错，使用默认值
func (l *Loader) LoadFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err := l.k.Load(fileProvider{path: path}, yamlParser{}); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadEnv 从环境变量加载配置
func (l *Loader) LoadEnv(prefix string) error {
	return l.k.Load(env.Provider(prefix, ".", EnvKey), nil)
}

// Exists 判断配置键是否被任一来源设置
func (l *Loader) Exists(key string) bool {
	return l.k.Exists(key)
}

// Unmarshal 把已加载的值覆盖到 cfg 上，未出现的键保持 cfg 原值
func (l *Loader) Unmarshal(cfg *Config) error {
	return l.k.Unmarshal("", cfg)
}

// Load 加载完整配置（默认值 + 文件 + 环境变量）
func Load(configPath string) (*Config, error) {
	loader := NewLoader()

	if configPath != "" {
		if err := loader.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	// 环境变量优先级更高
	if err := loader.LoadEnv(EnvPrefix); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg, loader)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults 处理段之间相互依赖的默认值
func applyDefaults(cfg *Config, loader *Loader) {
	if !loader.Exists("knowledge.num_hops") {
		cfg.Knowledge.NumHops = cfg.Path.NumHops
	}
	if !loader.Exists("knowledge.prefix") {
		cfg.Knowledge.Prefix = dataset.PrefixesFor(cfg.Dataset.LMType).Knowledge
	}
	cfg.Dataset = cfg.Dataset.WithDefaults()
	cfg.Observability = cfg.Observability.WithDefaults()
}
