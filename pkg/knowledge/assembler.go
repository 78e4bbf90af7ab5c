package knowledge

import (
	"context"

	"github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/kg"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/easyops/kgpath/pkg/tokenizer"
	"go.opentelemetry.io/otel/attribute"
)

// Result 是一次组装的详细结果。
type Result struct {
	// Text 组装后的知识文本（以前缀开头）
	Text string
	// Included 被纳入的路径数量
	Included int
	// Skipped 被无条件跳过的路径数量
	Skipped int
	// Tokens 最后一次成功提交时的 Token 数（未纳入任何路径时为前缀的 Token 数）
	Tokens int
	// Overflowed 是否因超出预算而提前停止
	Overflowed bool
}

// Assembler 按从新到旧的顺序把线性化路径追加到知识文本，直到超出 Token 预算。
//
// Assembler 不持有可变状态，可在多个 goroutine 中并发使用。
type Assembler struct {
	config     Config
	linearizer *kg.Linearizer
	counter    tokenizer.TokenCounter
	tracer     otel.Tracer
	metrics    otel.Metrics
}

// Option 配置 Assembler。
type Option func(*Assembler)

// WithTracer 设置追踪器。
func WithTracer(tracer otel.Tracer) Option {
	return func(a *Assembler) {
		a.tracer = tracer
	}
}

// WithMetrics 设置指标收集器。
func WithMetrics(metrics otel.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = metrics
	}
}

// NewAssembler 创建 Assembler。
func NewAssembler(cfg Config, counter tokenizer.TokenCounter, opts ...Option) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapError(errors.ErrInvalidConfig, err.Error())
	}
	if counter == nil {
		return nil, errors.WrapError(errors.ErrInvalidConfig, "token counter is required")
	}

	lin, err := kg.NewLinearizer(kg.LinearizerConfig{NumHops: cfg.NumHops})
	if err != nil {
		return nil, err
	}

	a := &Assembler{
		config:     cfg,
		linearizer: lin,
		counter:    counter,
		tracer:     otel.NewNoopTracer(),
		metrics:    otel.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config 返回配置。
func (a *Assembler) Config() Config {
	return a.config
}

// Assemble 组装知识文本。唯一可能的错误是上下文被取消。
func (a *Assembler) Assemble(ctx context.Context, paths []kg.RelationPath) (string, error) {
	res, err := a.AssembleDetailed(ctx, paths)
	return res.Text, err
}

// AssembleDetailed 组装知识文本并返回统计信息。
func (a *Assembler) AssembleDetailed(ctx context.Context, paths []kg.RelationPath) (Result, error) {
	ctx, span := a.tracer.Start(ctx, otel.SpanAssemble,
		otel.WithAttributes(
			attribute.Int(otel.AttrPathCount, len(paths)),
			attribute.Int(otel.AttrKnowledgeBudget, a.config.Budget),
		),
	)

	res, err := assemble(ctx, paths, a.config.SkipCount, a.config.Budget, a.counter, a.config.Prefix, a.linearizer)
	if err != nil {
		span.Finish(err)
		return res, err
	}

	span.SetAttributes(
		attribute.Int(otel.AttrPathsIncluded, res.Included),
		attribute.Int(otel.AttrKnowledgeTokens, res.Tokens),
		attribute.Bool(otel.AttrKnowledgeOverflow, res.Overflowed),
	)
	a.metrics.Counter(otel.MetricPathsIncluded).Add(ctx, int64(res.Included))
	a.metrics.Histogram(otel.MetricKnowledgeTokens).Record(ctx, float64(res.Tokens))
	if res.Overflowed {
		a.metrics.Counter(otel.MetricPathsOverflow).Add(ctx, 1)
	}
	span.Finish(nil)

	return res, nil
}

// Assemble 是无配置对象的函数形式，lin 为 nil 时使用默认跳数。
func Assemble(paths []kg.RelationPath, skipCount, budget int, counter tokenizer.TokenCounter, prefix string, lin *kg.Linearizer) string {
	if lin == nil {
		lin, _ = kg.NewLinearizer(kg.DefaultLinearizerConfig())
	}
	res, _ := assemble(context.Background(), paths, skipCount, budget, counter, prefix, lin)
	return res.Text
}

// assemble 逆序遍历路径：跳过前 skipCount 条，逐条试探性追加，
// 第一次超出预算时丢弃本次追加并永久停止。
func assemble(ctx context.Context, paths []kg.RelationPath, skipCount, budget int, counter tokenizer.TokenCounter, prefix string, lin *kg.Linearizer) (Result, error) {
	res := Result{Text: prefix}
	committed := false

	for idx := 0; idx < len(paths); idx++ {
		if idx < skipCount {
			res.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, errors.WrapError(errors.ErrContextCanceled, err.Error())
		}

		path := paths[len(paths)-1-idx]
		candidate := res.Text + lin.Linearize(path)

		tokens := counter.Count(candidate)
		if tokens > budget {
			res.Overflowed = true
			break
		}

		res.Text = candidate
		res.Tokens = tokens
		res.Included++
		committed = true
	}

	if !committed {
		res.Tokens = counter.Count(res.Text)
	}
	return res, nil
}
