// Package kg 提供知识图谱关系路径的数据模型与线性化。
//
// 一条关系路径由若干三元组组成，线性化器把它转换为带位置标记的单个字符串，
// 供下游序列到序列模型作为知识输入。
package kg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Triplet 知识三元组（头实体, 关系, 尾实体）
type Triplet struct {
	Head     string `json:"head"`
	Relation string `json:"relation"`
	Tail     string `json:"tail"`
}

// NewTriplet 创建三元组
func NewTriplet(head, relation, tail string) Triplet {
	return Triplet{Head: head, Relation: relation, Tail: tail}
}

// String 返回空格分隔的三元组文本
func (t Triplet) String() string {
	return t.Head + " " + t.Relation + " " + t.Tail
}

// UnmarshalJSON 支持 ["head","relation","tail"] 数组形式与对象形式
func (t *Triplet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var fields []string
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("triplet: %w", err)
		}
		if len(fields) != 3 {
			return fmt.Errorf("triplet: expected 3 fields, got %d", len(fields))
		}
		t.Head, t.Relation, t.Tail = fields[0], fields[1], fields[2]
		return nil
	}

	type plain Triplet
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("triplet: %w", err)
	}
	*t = Triplet(p)
	return nil
}

// MarshalJSON 以数组形式输出，与检索阶段的原始格式保持一致
func (t Triplet) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{t.Head, t.Relation, t.Tail})
}

// RelationPath 一次检索得到的有序三元组序列，可以为空
type RelationPath []Triplet

// Entities 返回路径中按首次出现顺序去重后的实体
func (p RelationPath) Entities() []string {
	seen := make(map[string]struct{}, len(p)*2)
	var out []string
	for _, t := range p {
		for _, e := range []string{t.Head, t.Tail} {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// cleanRelation 把关系中的下划线和连字符分别替换为空格
func cleanRelation(relation string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(relation)
}

// IsWhitespace 判断字符是否为空白（空格、制表、回车、换行、窄不换行空格）
func IsWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == 0x202F
}
