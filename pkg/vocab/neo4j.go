package vocab

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jConfig Neo4j 连接配置
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
}

// Neo4jCodebook 基于 Neo4j 的词表
//
// 词条存为 (:Entity {id, name}) 或 (:Relation {id, name}) 节点。
// 打开时读取一次快照，查询走内存；Import 同时写入数据库和快照。
type Neo4jCodebook struct {
	driver   neo4j.DriverWithContext
	kind     Kind
	snapshot *MemoryCodebook
}

// NewNeo4jCodebook 连接 Neo4j 并加载指定种类的词表
func NewNeo4jCodebook(ctx context.Context, config Neo4jConfig, kind Kind) (*Neo4jCodebook, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if config.URI == "" {
		config.URI = "bolt://localhost:7687"
	}

	auth := neo4j.NoAuth()
	if config.Username != "" && config.Password != "" {
		auth = neo4j.BasicAuth(config.Username, config.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(config.URI, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	c := &Neo4jCodebook{driver: driver, kind: kind}
	if err := c.createIndex(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	if err := c.Refresh(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}
	return c, nil
}

func (c *Neo4jCodebook) createIndex(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	label := c.kind.label()
	query := fmt.Sprintf("CREATE INDEX %s_name IF NOT EXISTS FOR (n:%s) ON (n.name)", string(c.kind), label)
	_, err := session.Run(ctx, query, nil)
	return err
}

// Refresh 重新读取词表快照
func (c *Neo4jCodebook) Refresh(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf("MATCH (n:%s) RETURN n.id AS id, n.name AS name", c.kind.label())
	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return fmt.Errorf("failed to read %s codebook: %w", c.kind, err)
	}

	codebook := make(map[string]string)
	for result.Next(ctx) {
		record := result.Record()
		id, _ := record.Get("id")
		name, _ := record.Get("name")
		if id == nil || name == nil {
			continue
		}
		codebook[fmt.Sprint(name)] = fmt.Sprint(id)
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("failed to read %s codebook: %w", c.kind, err)
	}

	c.snapshot = NewMemoryCodebook(codebook)
	return nil
}

// Import 写入一批 "表面字符串 -> ID" 词条
func (c *Neo4jCodebook) Import(ctx context.Context, codebook map[string]string) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	rows := make([]map[string]any, 0, len(codebook))
	for surface, id := range codebook {
		rows = append(rows, map[string]any{"id": id, "name": surface})
	}

	query := fmt.Sprintf(`
	UNWIND $rows AS row
	MERGE (n:%s {name: row.name})
	SET n.id = row.id
	`, c.kind.label())
	if _, err := session.Run(ctx, query, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("failed to import %s codebook: %w", c.kind, err)
	}

	merged := c.snapshot.Entries()
	for surface, id := range codebook {
		merged[surface] = id
	}
	c.snapshot = NewMemoryCodebook(merged)
	return nil
}

func (c *Neo4jCodebook) Lookup(id string) (string, bool) {
	return c.snapshot.Lookup(id)
}

func (c *Neo4jCodebook) Reverse(surface string) (string, bool) {
	return c.snapshot.Reverse(surface)
}

func (c *Neo4jCodebook) Len() int {
	return c.snapshot.Len()
}

// Close 关闭驱动
func (c *Neo4jCodebook) Close() error {
	return c.driver.Close(context.Background())
}

var _ Codebook = (*Neo4jCodebook)(nil)
