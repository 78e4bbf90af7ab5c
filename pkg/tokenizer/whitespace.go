package tokenizer

import (
	"strings"
	"sync"

	"github.com/easyops/kgpath/pkg/kg"
)

// WhitespaceEncoder 按空白切分的词级编码器。
//
// 词表在编码时增量构建，ID 从 0 连续分配。用于离线环境和测试，
// 解码时以单个空格连接。
type WhitespaceEncoder struct {
	mu    sync.RWMutex
	ids   map[string]int
	words []string
}

// NewWhitespaceEncoder 创建词级编码器
func NewWhitespaceEncoder() *WhitespaceEncoder {
	return &WhitespaceEncoder{ids: make(map[string]int)}
}

// Encode 编码文本，未见过的词分配新 ID
func (e *WhitespaceEncoder) Encode(text string) []int {
	fields := strings.FieldsFunc(text, kg.IsWhitespace)
	if len(fields) == 0 {
		return nil
	}

	out := make([]int, len(fields))
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, w := range fields {
		id, ok := e.ids[w]
		if !ok {
			id = len(e.words)
			e.ids[w] = id
			e.words = append(e.words, w)
		}
		out[i] = id
	}
	return out
}

// Decode 还原文本，未知 ID 被忽略
func (e *WhitespaceEncoder) Decode(ids []int) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(e.words) {
			parts = append(parts, e.words[id])
		}
	}
	return strings.Join(parts, " ")
}

// Size 返回当前词表大小
func (e *WhitespaceEncoder) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.words)
}

var _ Encoder = (*WhitespaceEncoder)(nil)
