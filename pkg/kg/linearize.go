package kg

import (
	"errors"
	"strings"
	"unicode"
)

// DefaultNumHops 默认最大跳数
const DefaultNumHops = 2

// ErrInvalidNumHops 跳数必须至少为 1
var ErrInvalidNumHops = errors.New("num_hops must be at least 1")

// LinearizerConfig 线性化配置
type LinearizerConfig struct {
	// NumHops 单条链允许的最大跳数
	NumHops int `koanf:"num_hops"`
}

// DefaultLinearizerConfig 返回默认配置
func DefaultLinearizerConfig() LinearizerConfig {
	return LinearizerConfig{NumHops: DefaultNumHops}
}

// Validate 验证配置
func (c LinearizerConfig) Validate() error {
	if c.NumHops < 1 {
		return ErrInvalidNumHops
	}
	return nil
}

// Linearizer 把关系路径转换为带标记的文本。
//
// Linearizer 无状态，可在多个 goroutine 中并发使用。
type Linearizer struct {
	numHops int

	// 达到最大深度的标记，出现在最后一个片段中时不再尝试延续
	capForward string
	capReverse string
}

// NewLinearizer 创建线性化器
func NewLinearizer(cfg LinearizerConfig) (*Linearizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newLinearizer(cfg.NumHops), nil
}

func newLinearizer(numHops int) *Linearizer {
	return &Linearizer{
		numHops:    numHops,
		capForward: IntMarker(2*numHops, 1),
		capReverse: RevMarker(2*numHops, 1),
	}
}

// NumHops 返回最大跳数
func (l *Linearizer) NumHops() int {
	return l.numHops
}

// Linearize 使用给定跳数线性化路径，numHops 小于 1 时按 1 处理
func Linearize(path RelationPath, numHops int) string {
	if numHops < 1 {
		numHops = 1
	}
	return newLinearizer(numHops).Linearize(path)
}

// Linearize 把路径中的三元组拼接为若干条链。
//
// 相连的三元组（上一片段的尾部实体等于当前三元组的头实体或尾实体）延续同一条链，
// 分别使用 Int 或 Rev 标记；不相连时以 [TAIL] 结束当前链并开启新链。
// 最后一个片段已达到最大深度时直接开启新链，不再检查连通性。
func (l *Linearizer) Linearize(path RelationPath) string {
	if len(path) == 0 {
		return ""
	}

	fragments := make([]string, 0, len(path)+2)
	fragments = append(fragments, openChain(path[0]))

	for _, t := range path[1:] {
		last := fragments[len(fragments)-1]

		if strings.Contains(last, l.capForward) || strings.Contains(last, l.capReverse) {
			fragments = append(fragments, openChain(t))
			continue
		}

		hop, entity, found := l.trailingEntity(last)
		switch {
		case found && t.Head == entity:
			fragments = append(fragments, l.extendChain(forwardPrefix, hop, t.Relation, t.Tail))
		case found && t.Tail == entity:
			fragments = append(fragments, l.extendChain(reversePrefix, hop, t.Relation, t.Head))
		default:
			// 以 [TAIL] 收尾的片段已经闭合
			if !strings.HasSuffix(last, TailMarker) {
				fragments = append(fragments, TailMarker)
			}
			fragments = append(fragments, openChain(t))
		}
	}

	if !strings.Contains(fragments[len(fragments)-1], TailMarker) {
		fragments = append(fragments, TailMarker)
	}

	return strings.Join(fragments, "")
}

// trailingEntity 从 numHops 向 1 扫描，找到产生片段末尾实体的跳
func (l *Linearizer) trailingEntity(fragment string) (int, string, bool) {
	for hop := l.numHops; hop >= 1; hop-- {
		for _, marker := range []string{IntMarker(2*hop, 2), RevMarker(2*hop, 2)} {
			idx := strings.Index(fragment, marker)
			if idx < 0 {
				continue
			}
			rest := fragment[idx+len(marker):]
			if next := strings.Index(rest, marker); next >= 0 {
				rest = rest[:next]
			}
			return hop, strings.TrimFunc(rest, unicode.IsSpace), true
		}
	}
	return 0, "", false
}

// extendChain 生成第 hop 跳之后的延续片段，到达最大跳数时以 [TAIL] 闭合
func (l *Linearizer) extendChain(prefix string, hop int, relation, entity string) string {
	var b strings.Builder
	b.WriteString(hopMarker(prefix, 2*hop+1, 1))
	b.WriteString(hopMarker(prefix, 2*hop+1, 2))
	b.WriteString(cleanRelation(relation))
	b.WriteString(hopMarker(prefix, 2*hop+2, 1))
	b.WriteString(hopMarker(prefix, 2*hop+2, 2))
	b.WriteString(entity)
	if hop == l.numHops {
		b.WriteString(TailMarker)
	}
	return b.String()
}

// openChain 以三元组开启一条新链
func openChain(t Triplet) string {
	var b strings.Builder
	b.WriteString(HeadMarker)
	b.WriteString(t.Head)
	b.WriteString(IntMarker(1, 1))
	b.WriteString(IntMarker(1, 2))
	b.WriteString(cleanRelation(t.Relation))
	b.WriteString(IntMarker(2, 1))
	b.WriteString(IntMarker(2, 2))
	b.WriteString(t.Tail)
	return b.String()
}
