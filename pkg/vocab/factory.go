package vocab

import (
	"context"
	"errors"
	"fmt"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/kg"
)

// Open 根据配置打开指定种类的词表。dataDir 为 file 后端在 Dir 为空时的回退目录。
func Open(ctx context.Context, cfg Config, kind Kind, dataDir string) (Codebook, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case TypeFile:
		dir := cfg.Dir
		if dir == "" {
			dir = dataDir
		}
		path, err := FindFile(dir, kind)
		if err != nil {
			return nil, err
		}
		return LoadFile(path)
	case TypeSQLite:
		return NewSQLiteCodebook(cfg.SQLitePath, kind)
	case TypeNeo4j:
		return NewNeo4jCodebook(ctx, Neo4jConfig{
			URI:      cfg.Neo4jURI,
			Username: cfg.Neo4jUsername,
			Password: cfg.Neo4jPassword,
		}, kind)
	default:
		return nil, fmt.Errorf("%w: %q has no backing store", kgerrors.ErrUnknownVocabularyType, cfg.Type)
	}
}

// Set 实体与关系词表
type Set struct {
	Entities  Codebook
	Relations Codebook
}

// OpenSet 打开实体与关系两个词表；Type 为 none 时返回空集合
func OpenSet(ctx context.Context, cfg Config, dataDir string) (*Set, error) {
	if cfg.Type == "" || cfg.Type == TypeNone {
		return &Set{}, nil
	}

	entities, err := Open(ctx, cfg, KindEntity, dataDir)
	if err != nil {
		return nil, fmt.Errorf("open entity codebook: %w", err)
	}
	relations, err := Open(ctx, cfg, KindRelation, dataDir)
	if err != nil {
		entities.Close()
		return nil, fmt.Errorf("open relation codebook: %w", err)
	}
	return &Set{Entities: entities, Relations: relations}, nil
}

// Empty 判断集合是否不含任何词表
func (s *Set) Empty() bool {
	return s == nil || (s.Entities == nil && s.Relations == nil)
}

// Resolver 返回基于该集合的 ID 解析器
func (s *Set) Resolver() kg.Resolver {
	var r kg.Resolver
	if s == nil {
		return r
	}
	if s.Entities != nil {
		r.Entities = s.Entities
	}
	if s.Relations != nil {
		r.Relations = s.Relations
	}
	return r
}

// Close 关闭两个词表
func (s *Set) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, c := range []Codebook{s.Entities, s.Relations} {
		if c != nil {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// ImportFile 把词表文件写入 cfg 指定的可写后端（sqlite、neo4j），返回写入的词条数
func ImportFile(ctx context.Context, cfg Config, kind Kind, path string) (int, error) {
	if cfg.Type != TypeSQLite && cfg.Type != TypeNeo4j {
		return 0, fmt.Errorf("%w: %q is not writable", kgerrors.ErrInvalidConfig, cfg.Type)
	}
	src, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	cb, err := Open(ctx, cfg, kind, "")
	if err != nil {
		return 0, err
	}
	defer cb.Close()

	dst, ok := cb.(Importer)
	if !ok {
		return 0, fmt.Errorf("%w: %q is not writable", kgerrors.ErrInvalidConfig, cfg.Type)
	}
	entries := src.Entries()
	if err := dst.Import(ctx, entries); err != nil {
		return 0, fmt.Errorf("import %s codebook: %w", kind, err)
	}
	return len(entries), nil
}

var (
	_ Importer = (*SQLiteCodebook)(nil)
	_ Importer = (*Neo4jCodebook)(nil)
)
