package tokenizer

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// 特殊 Token
const (
	// PadToken 填充 Token，同时作为解码起始 Token
	PadToken = "<pad>"
	// EOSToken 序列结束 Token，也用作知识与对话历史之间的分隔符
	EOSToken = "</s>"
)

// EncodingWhitespace 选择离线词级编码器
const EncodingWhitespace = "whitespace"

// DefaultSpecialBaseID 是 cl100k_base 词表之后的第一个可用 ID
const DefaultSpecialBaseID = 100277

// Tokenizer 定义样本构建所需的分词接口。
type Tokenizer interface {
	TokenCounter

	// Encode 编码文本，特殊 Token 保持原子性。
	Encode(text string) []int
	// EncodeTruncated 编码并截断到 maxLen（maxLen <= 0 表示不截断）。
	EncodeTruncated(text string, maxLen int) []int
	// Decode 解码 Token 序列，skipSpecial 为 true 时丢弃特殊 Token。
	Decode(ids []int, skipSpecial bool) string
	// AddSpecialTokens 注册额外的原子 Token，返回新增数量。
	AddSpecialTokens(tokens []string) int
	// PadID 返回填充 Token 的 ID。
	PadID() int
	// EOSID 返回序列结束 Token 的 ID。
	EOSID() int
}

// Config 分词器配置
type Config struct {
	// Encoding BPE 编码名称，"whitespace" 表示离线词级编码
	Encoding string `koanf:"encoding"`
	// SpecialBaseID 特殊 Token 的起始 ID，需大于基础词表的最大 ID
	SpecialBaseID int `koanf:"special_base_id"`
	// AppendEOS 编码时是否在末尾追加 </s>
	AppendEOS bool `koanf:"append_eos"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Encoding:      DefaultEncoding,
		SpecialBaseID: DefaultSpecialBaseID,
		AppendEOS:     true,
	}
}

// MarkerTokenizer 在基础编码器之上注册原子特殊 Token。
//
// 文本先按已注册的特殊 Token 切分，普通片段交给基础编码器，
// 特殊 Token 直接映射为 SpecialBaseID 之后分配的 ID，保证不会被拆分。
type MarkerTokenizer struct {
	base      Encoder
	baseID    int
	appendEOS bool

	mu      sync.RWMutex
	special map[string]int
	byID    map[int]string
	pattern *regexp.Regexp
}

// Option 配置 MarkerTokenizer
type Option func(*MarkerTokenizer)

// WithSpecialBaseID 设置特殊 Token 起始 ID
func WithSpecialBaseID(id int) Option {
	return func(t *MarkerTokenizer) {
		t.baseID = id
	}
}

// WithAppendEOS 设置编码时是否追加 </s>
func WithAppendEOS(v bool) Option {
	return func(t *MarkerTokenizer) {
		t.appendEOS = v
	}
}

// NewMarkerTokenizer 基于给定编码器创建分词器，<pad> 与 </s> 预先注册
func NewMarkerTokenizer(base Encoder, opts ...Option) *MarkerTokenizer {
	t := &MarkerTokenizer{
		base:      base,
		baseID:    DefaultSpecialBaseID,
		appendEOS: true,
		special:   make(map[string]int),
		byID:      make(map[int]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.AddSpecialTokens([]string{PadToken, EOSToken})
	return t
}

// New 根据配置创建分词器
func New(cfg Config) (*MarkerTokenizer, error) {
	if cfg.SpecialBaseID <= 0 {
		cfg.SpecialBaseID = DefaultSpecialBaseID
	}

	var base Encoder
	switch cfg.Encoding {
	case EncodingWhitespace:
		base = NewWhitespaceEncoder()
	case "":
		cfg.Encoding = DefaultEncoding
		fallthrough
	default:
		enc, err := NewTiktokenEncoder(WithEncoding(cfg.Encoding))
		if err != nil {
			return nil, err
		}
		base = enc
	}

	return NewMarkerTokenizer(base,
		WithSpecialBaseID(cfg.SpecialBaseID),
		WithAppendEOS(cfg.AppendEOS),
	), nil
}

// AddSpecialTokens 注册原子 Token，已注册的 Token 保持原 ID
func (t *MarkerTokenizer) AddSpecialTokens(tokens []string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	added := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, ok := t.special[tok]; ok {
			continue
		}
		id := t.baseID + len(t.special)
		t.special[tok] = id
		t.byID[id] = tok
		added++
	}
	if added > 0 {
		t.pattern = buildPattern(t.special)
	}
	return added
}

// buildPattern 按长度降序构造交替正则，保证最长匹配优先
func buildPattern(special map[string]int) *regexp.Regexp {
	toks := make([]string, 0, len(special))
	for tok := range special {
		toks = append(toks, tok)
	}
	sort.Slice(toks, func(i, j int) bool {
		if len(toks[i]) != len(toks[j]) {
			return len(toks[i]) > len(toks[j])
		}
		return toks[i] < toks[j]
	})
	for i, tok := range toks {
		toks[i] = regexp.QuoteMeta(tok)
	}
	return regexp.MustCompile(strings.Join(toks, "|"))
}

// SpecialID 返回特殊 Token 的 ID
func (t *MarkerTokenizer) SpecialID(tok string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.special[tok]
	return id, ok
}

// SpecialTokens 返回按 ID 排序的全部特殊 Token
func (t *MarkerTokenizer) SpecialTokens() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.special))
	for tok, id := range t.special {
		out[id-t.baseID] = tok
	}
	return out
}

// PadID 返回 <pad> 的 ID
func (t *MarkerTokenizer) PadID() int {
	id, _ := t.SpecialID(PadToken)
	return id
}

// EOSID 返回 </s> 的 ID
func (t *MarkerTokenizer) EOSID() int {
	id, _ := t.SpecialID(EOSToken)
	return id
}

// encodeBody 编码文本主体，不追加 </s>
func (t *MarkerTokenizer) encodeBody(text string) []int {
	t.mu.RLock()
	pattern := t.pattern
	t.mu.RUnlock()

	var ids []int
	pos := 0
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		if loc[0] > pos {
			ids = append(ids, t.base.Encode(text[pos:loc[0]])...)
		}
		id, _ := t.SpecialID(text[loc[0]:loc[1]])
		ids = append(ids, id)
		pos = loc[1]
	}
	if pos < len(text) {
		ids = append(ids, t.base.Encode(text[pos:])...)
	}
	return ids
}

// Encode 编码文本
func (t *MarkerTokenizer) Encode(text string) []int {
	return t.EncodeTruncated(text, 0)
}

// EncodeTruncated 编码并截断；追加 </s> 时截断后仍保留结尾的 </s>
func (t *MarkerTokenizer) EncodeTruncated(text string, maxLen int) []int {
	ids := t.encodeBody(text)
	if !t.appendEOS {
		if maxLen > 0 && len(ids) > maxLen {
			ids = ids[:maxLen]
		}
		return ids
	}

	if maxLen > 0 && len(ids) > maxLen-1 {
		limit := maxLen - 1
		if limit < 0 {
			limit = 0
		}
		ids = ids[:limit]
	}
	return append(ids, t.EOSID())
}

// Count 返回编码后的 Token 数量（文本长度预言机）
func (t *MarkerTokenizer) Count(text string) int {
	return len(t.Encode(text))
}

// Decode 解码 Token 序列
func (t *MarkerTokenizer) Decode(ids []int, skipSpecial bool) string {
	var b strings.Builder
	var run []int

	flush := func() {
		if len(run) > 0 {
			b.WriteString(t.base.Decode(run))
			run = run[:0]
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range ids {
		tok, ok := t.byID[id]
		if !ok {
			run = append(run, id)
			continue
		}
		flush()
		if !skipSpecial {
			b.WriteString(tok)
		}
	}
	flush()

	return b.String()
}

var _ Tokenizer = (*MarkerTokenizer)(nil)
