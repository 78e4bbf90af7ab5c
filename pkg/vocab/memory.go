package vocab

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"gopkg.in/yaml.v3"
)

// MemoryCodebook 内存词表
type MemoryCodebook struct {
	forward map[string]string // 表面字符串 -> ID
	reverse map[string]string // ID -> 表面字符串
}

// NewMemoryCodebook 由 "表面字符串 -> ID" 映射创建内存词表
func NewMemoryCodebook(codebook map[string]string) *MemoryCodebook {
	forward := make(map[string]string, len(codebook))
	for s, id := range codebook {
		forward[s] = id
	}
	return &MemoryCodebook{forward: forward, reverse: invert(forward)}
}

func (c *MemoryCodebook) Lookup(id string) (string, bool) {
	s, ok := c.reverse[id]
	return s, ok
}

func (c *MemoryCodebook) Reverse(surface string) (string, bool) {
	id, ok := c.forward[surface]
	return id, ok
}

func (c *MemoryCodebook) Len() int {
	return len(c.forward)
}

func (c *MemoryCodebook) Close() error {
	return nil
}

// Entries 返回 "表面字符串 -> ID" 映射的副本
func (c *MemoryCodebook) Entries() map[string]string {
	out := make(map[string]string, len(c.forward))
	for s, id := range c.forward {
		out[s] = id
	}
	return out
}

// LoadFile 从 .json、.yaml 或 .yml 文件加载词表
//
// JSON 是 YAML 的子集，两种格式都由 yaml.v3 解码，数值 ID 按原文保留为字符串。
func LoadFile(path string) (*MemoryCodebook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("%w: unsupported codebook file %q", kgerrors.ErrInvalidConfig, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", kgerrors.ErrVocabularyNotFound, path)
		}
		return nil, fmt.Errorf("read codebook %s: %w", path, err)
	}

	var codebook map[string]string
	if err := yaml.Unmarshal(data, &codebook); err != nil {
		return nil, fmt.Errorf("parse codebook %s: %w", path, err)
	}
	return NewMemoryCodebook(codebook), nil
}

// FindFile 在目录中查找某种类的词表文件，如 entity_codebook.json
func FindFile(dir string, kind Kind) (string, error) {
	if err := checkKind(kind); err != nil {
		return "", err
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, string(kind)+"_codebook"+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no %s codebook in %s", kgerrors.ErrVocabularyNotFound, kind, dir)
}

var _ Codebook = (*MemoryCodebook)(nil)
