package dataset

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/kg"
	"github.com/easyops/kgpath/pkg/knowledge"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/easyops/kgpath/pkg/tokenizer"
	"go.opentelemetry.io/otel/attribute"
)

// LMTypeT5 使用 T5 风格文本前缀的模型类型
const LMTypeT5 = "t5"

// 默认长度参数
const (
	DefaultMaxLength     = 512
	DefaultMaxDecodeStep = 64
	DefaultHistTurns     = 3
)

// HistorySeparator 拼接对话历史各轮时使用的分隔符
const HistorySeparator = "\n "

// Prefixes 各段文本的前缀
type Prefixes struct {
	Knowledge  string
	Dialogue   string
	Apprentice string
	Wizard     string
	Topic      string
}

// PrefixesFor 返回模型类型对应的前缀，非 T5 模型全部为空
func PrefixesFor(lmType string) Prefixes {
	if !strings.EqualFold(lmType, LMTypeT5) {
		return Prefixes{}
	}
	return Prefixes{
		Knowledge:  knowledge.T5Prefix,
		Dialogue:   "dialogue: ",
		Apprentice: "apprentice: ",
		Wizard:     "wizard: ",
		Topic:      "topic: ",
	}
}

// Example 模型可用的一条样本
type Example struct {
	// Line 源文件行号（从 1 开始）
	Line      int    `json:"line"`
	EpisodeID string `json:"episode_id"`
	TurnID    string `json:"turn_id"`
	// Train 是否为训练集样本
	Train bool `json:"train"`
	// Input 编码前的完整输入文本
	Input    string `json:"input"`
	InputIDs []int  `json:"input_ids"`
	// LabelIDs 以 <pad> 作为起始 Token 的目标序列
	LabelIDs []int `json:"label_ids"`
	// PathsIncluded 纳入知识文本的路径数
	PathsIncluded int `json:"paths_included"`
}

// Builder 把记录构建为样本
//
// 训练与推理共用同一构建路径，Builder 可在多个 goroutine 中并发使用。
type Builder struct {
	config    Config
	tok       tokenizer.Tokenizer
	assembler *knowledge.Assembler
	resolver  *kg.Resolver
	prefixes  Prefixes
	tracer    otel.Tracer
	metrics   otel.Metrics
	logger    otel.Logger
}

// BuilderOption 配置 Builder
type BuilderOption func(*Builder)

// WithResolver 构建前先用词表把路径中的 ID 解析为表面字符串
func WithResolver(r kg.Resolver) BuilderOption {
	return func(b *Builder) {
		b.resolver = &r
	}
}

// WithBuilderTracer 设置追踪器
func WithBuilderTracer(tracer otel.Tracer) BuilderOption {
	return func(b *Builder) {
		b.tracer = tracer
	}
}

// WithBuilderMetrics 设置指标收集器
func WithBuilderMetrics(metrics otel.Metrics) BuilderOption {
	return func(b *Builder) {
		b.metrics = metrics
	}
}

// WithBuilderLogger 设置日志器
func WithBuilderLogger(logger otel.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder 创建 Builder，并把当前跳数的全部标记注册为分词器的原子 Token
func NewBuilder(cfg Config, tok tokenizer.Tokenizer, assembler *knowledge.Assembler, opts ...BuilderOption) (*Builder, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tok == nil || assembler == nil {
		return nil, errors.WrapError(errors.ErrInvalidConfig, "tokenizer and assembler are required")
	}

	tok.AddSpecialTokens(kg.Markers(assembler.Config().NumHops))

	b := &Builder{
		config:    cfg,
		tok:       tok,
		assembler: assembler,
		prefixes:  PrefixesFor(cfg.LMType),
		tracer:    otel.NewNoopTracer(),
		metrics:   otel.NewNoopMetrics(),
		logger:    otel.GetLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Tokenizer 返回构建使用的分词器
func (b *Builder) Tokenizer() tokenizer.Tokenizer {
	return b.tok
}

// Config 返回生效的配置
func (b *Builder) Config() Config {
	return b.config
}

// InputText 拼接知识文本与最近 HistTurns 轮对话历史
func (b *Builder) InputText(knowledgeText string, history []string) string {
	return knowledgeText + tokenizer.EOSToken + b.prefixes.Dialogue + strings.Join(lastTurns(history, b.config.HistTurns), HistorySeparator)
}

// lastTurns 返回最后 n 轮；n <= 0 时返回全部
func lastTurns(history []string, n int) []string {
	if n <= 0 || n >= len(history) {
		return history
	}
	return history[len(history)-n:]
}

// Build 构建一条样本；line 为源文件行号，仅用于错误和追踪
func (b *Builder) Build(ctx context.Context, rec Record, line int, train bool) (ex Example, err error) {
	ctx, span := b.tracer.Start(ctx, otel.SpanExampleBuild,
		otel.WithAttributes(
			otel.DatasetLine(line),
			attribute.Bool(otel.AttrDatasetTrain, train),
		),
		otel.WithAttributes(otel.Episode(string(rec.EpisodeID), string(rec.TurnID))...),
	)
	start := time.Now()
	defer func() {
		b.metrics.Histogram(otel.MetricExampleDuration).Record(ctx, float64(time.Since(start).Milliseconds()))
		if err != nil {
			b.metrics.Counter(otel.MetricExamplesErrors).Add(ctx, 1)
			b.logger.WithContext(ctx).Warn("example build failed", "line", line, "error", err)
		} else {
			b.metrics.Counter(otel.MetricExamplesBuilt).Add(ctx, 1)
			b.metrics.Histogram(otel.MetricInputTokens).Record(ctx, float64(len(ex.InputIDs)))
			span.SetAttributes(
				attribute.Int(otel.AttrInputTokens, len(ex.InputIDs)),
				attribute.Int(otel.AttrLabelTokens, len(ex.LabelIDs)),
			)
		}
		span.Finish(err)
	}()

	if err := rec.Validate(line); err != nil {
		return Example{}, err
	}

	paths := rec.RetTriplets
	if b.resolver != nil {
		resolved := make([]kg.RelationPath, len(paths))
		for i, p := range paths {
			resolved[i] = b.resolver.ResolvePath(p)
		}
		paths = resolved
	}

	res, err := b.assembler.AssembleDetailed(ctx, paths)
	if err != nil {
		return Example{}, fmt.Errorf("line %d: %w", line, err)
	}

	input := b.InputText(res.Text, rec.History)
	labelIDs := make([]int, 0, b.config.MaxDecodeStep+1)
	labelIDs = append(labelIDs, b.tok.PadID())
	labelIDs = append(labelIDs, b.tok.EncodeTruncated(rec.Label, b.config.MaxDecodeStep)...)

	return Example{
		Line:          line,
		EpisodeID:     string(rec.EpisodeID),
		TurnID:        string(rec.TurnID),
		Train:         train,
		Input:         input,
		InputIDs:      b.tok.EncodeTruncated(input, b.config.MaxLength),
		LabelIDs:      labelIDs,
		PathsIncluded: res.Included,
	}, nil
}
