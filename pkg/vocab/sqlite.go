package vocab

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCodebook 基于 SQLite 的词表
//
// 所有种类共用一张 codebook 表，以 kind 字段区分。
type SQLiteCodebook struct {
	db   *sql.DB
	kind Kind

	lookupStmt  *sql.Stmt
	reverseStmt *sql.Stmt
}

// NewSQLiteCodebook 打开数据库并返回指定种类的词表
func NewSQLiteCodebook(dbPath string, kind Kind) (*SQLiteCodebook, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &SQLiteCodebook{db: db, kind: kind}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCodebook) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS codebook (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		surface TEXT NOT NULL,
		PRIMARY KEY (kind, surface)
	);
	CREATE INDEX IF NOT EXISTS idx_codebook_id ON codebook(kind, id);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}

	var err error
	// 同一 ID 对应多个表面字符串时取字典序最小者，与内存词表一致
	c.lookupStmt, err = c.db.Prepare(`SELECT MIN(surface) FROM codebook WHERE kind = ? AND id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare lookup: %w", err)
	}
	c.reverseStmt, err = c.db.Prepare(`SELECT id FROM codebook WHERE kind = ? AND surface = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare reverse lookup: %w", err)
	}
	return nil
}

// Import 写入一批 "表面字符串 -> ID" 词条，已存在的表面字符串会被覆盖
func (c *SQLiteCodebook) Import(ctx context.Context, codebook map[string]string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO codebook (kind, id, surface) VALUES (?, ?, ?)
	ON CONFLICT(kind, surface) DO UPDATE SET id = excluded.id
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for surface, id := range codebook {
		if _, err := stmt.ExecContext(ctx, string(c.kind), id, surface); err != nil {
			return fmt.Errorf("import %q: %w", surface, err)
		}
	}
	return tx.Commit()
}

// Lookup 按 ID 查找表面字符串
func (c *SQLiteCodebook) Lookup(id string) (string, bool) {
	var surface sql.NullString
	if err := c.lookupStmt.QueryRow(string(c.kind), id).Scan(&surface); err != nil || !surface.Valid {
		return "", false
	}
	return surface.String, true
}

// Reverse 按表面字符串查找 ID
func (c *SQLiteCodebook) Reverse(surface string) (string, bool) {
	var id string
	if err := c.reverseStmt.QueryRow(string(c.kind), surface).Scan(&id); err != nil {
		return "", false
	}
	return id, true
}

// Len 返回词条数，查询失败时返回 0
func (c *SQLiteCodebook) Len() int {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM codebook WHERE kind = ?`, string(c.kind)).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close 关闭数据库
func (c *SQLiteCodebook) Close() error {
	c.lookupStmt.Close()
	c.reverseStmt.Close()
	return c.db.Close()
}

var _ Codebook = (*SQLiteCodebook)(nil)
