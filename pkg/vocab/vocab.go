// Package vocab 提供实体与关系词表（codebook）的存储后端
//
// 词表文件沿用 "表面字符串 -> ID" 的方向，反向映射在加载时一次性构建。
package vocab

import (
	"context"
	"errors"
	"fmt"
	"sort"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
)

// Kind 词表种类
type Kind string

const (
	KindEntity   Kind = "entity"
	KindRelation Kind = "relation"
)

// Valid 判断种类是否有效
func (k Kind) Valid() bool {
	return k == KindEntity || k == KindRelation
}

// label 返回该种类在图数据库中的节点标签
func (k Kind) label() string {
	if k == KindRelation {
		return "Relation"
	}
	return "Entity"
}

// Codebook 词表接口
type Codebook interface {
	// Lookup 按 ID 查找表面字符串
	Lookup(id string) (string, bool)
	// Reverse 按表面字符串查找 ID
	Reverse(surface string) (string, bool)
	// Len 返回词条数
	Len() int
	// Close 释放底层资源
	Close() error
}

// Importer 可写入的词表后端
type Importer interface {
	Codebook
	// Import 写入 "表面字符串 -> ID" 映射，已存在的表面字符串被覆盖
	Import(ctx context.Context, codebook map[string]string) error
}

// Type 存储后端类型
type Type string

const (
	TypeNone   Type = "none"
	TypeFile   Type = "file"
	TypeSQLite Type = "sqlite"
	TypeNeo4j  Type = "neo4j"
)

// Config 词表存储配置
type Config struct {
	// Type 后端类型，none 表示不做 ID 解析
	Type Type `koanf:"type"`
	// Dir 词表文件目录（file 后端），为空时使用数据目录
	Dir string `koanf:"dir"`

	SQLitePath string `koanf:"sqlite_path"`

	Neo4jURI      string `koanf:"neo4j_uri"`
	Neo4jUsername string `koanf:"neo4j_username"`
	Neo4jPassword string `koanf:"neo4j_password"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Type:       TypeNone,
		SQLitePath: "codebook.db",
		Neo4jURI:   "bolt://localhost:7687",
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	switch c.Type {
	case "", TypeNone, TypeFile:
		return nil
	case TypeSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required", kgerrors.ErrInvalidConfig)
		}
		return nil
	case TypeNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("%w: neo4j_uri is required", kgerrors.ErrInvalidConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", kgerrors.ErrUnknownVocabularyType, c.Type)
	}
}

var errInvalidKind = errors.New("invalid codebook kind")

func checkKind(kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", errInvalidKind, kind)
	}
	return nil
}

// invert 由 "表面字符串 -> ID" 构建 "ID -> 表面字符串"。
// 多个表面字符串共用一个 ID 时取字典序最小者，保证结果确定。
func invert(forward map[string]string) map[string]string {
	surfaces := make([]string, 0, len(forward))
	for s := range forward {
		surfaces = append(surfaces, s)
	}
	sort.Strings(surfaces)

	reverse := make(map[string]string, len(forward))
	for _, s := range surfaces {
		id := forward[s]
		if _, ok := reverse[id]; !ok {
			reverse[id] = s
		}
	}
	return reverse
}
