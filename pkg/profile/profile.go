// Package profile 生成便于人工检查的逐轮报告
package profile

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/core/llm"
	"github.com/easyops/kgpath/pkg/dataset"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/easyops/kgpath/pkg/tokenizer"
)

// 各段标题
const (
	historyHeader   = "HISTORY =================="
	responseHeader  = "GT RESPONSE ================"
	selectedHeader  = "Selected FACT + HISTORY ============"
	goldHeader      = "GOLD_knowledges ===================="
	predictedHeader = "PREDICTIONS ================="
)

// DefaultSystemPrompt 请求预测回复时的系统提示
const DefaultSystemPrompt = "You are a knowledge-grounded dialogue model. Reply to the last dialogue turn using the given knowledge."

type flusher interface {
	Flush() error
}

// Profiler 把记录、模型输入和预测写成报告
type Profiler struct {
	tok    tokenizer.Tokenizer
	system string
	tracer otel.Tracer
	logger otel.Logger

	// 保证多个 goroutine 写同一个 Writer 时各条报告不交错
	mu sync.Mutex
}

// Option 配置 Profiler
type Option func(*Profiler)

// WithSystemPrompt 设置请求预测时的系统提示
func WithSystemPrompt(system string) Option {
	return func(p *Profiler) {
		p.system = system
	}
}

// WithTracer 设置追踪器
func WithTracer(tracer otel.Tracer) Option {
	return func(p *Profiler) {
		p.tracer = tracer
	}
}

// WithLogger 设置日志器
func WithLogger(logger otel.Logger) Option {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// New 创建 Profiler，tok 用于解码模型输入
func New(tok tokenizer.Tokenizer, opts ...Option) *Profiler {
	p := &Profiler{
		tok:    tok,
		system: DefaultSystemPrompt,
		tracer: otel.NewNoopTracer(),
		logger: otel.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format 返回单条报告文本
func (p *Profiler) Format(rec dataset.Record, inputIDs []int, prediction string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Episode %s, Turn %s\n", rec.EpisodeID, rec.TurnID)
	b.WriteString(historyHeader + "\n" + strings.Join(rec.History, "\n") + "\n")
	b.WriteString(responseHeader + "\n" + rec.Label + "\n")

	selected := p.tok.Decode(inputIDs, true)
	b.WriteString(strings.TrimSpace(selectedHeader+"\n"+selected) + "\n")

	b.WriteString(goldHeader + "\n")
	for _, gt := range rec.GoldTriplets {
		b.WriteString(strings.Join(gt, " ") + "\n")
	}

	b.WriteString(predictedHeader + "\n" + strings.TrimSpace(prediction) + "\n\n\n")
	return b.String()
}

// WriteProfile 写入一条报告，Writer 支持 Flush 时立即刷新
func (p *Profiler) WriteProfile(ctx context.Context, w io.Writer, rec dataset.Record, inputIDs []int, prediction string) (err error) {
	_, span := p.tracer.Start(ctx, otel.SpanProfileWrite,
		otel.WithAttributes(otel.Episode(string(rec.EpisodeID), string(rec.TurnID))...),
	)
	defer func() { span.Finish(err) }()

	text := p.Format(rec, inputIDs, prediction)

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err = io.WriteString(w, text); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	if f, ok := w.(flusher); ok {
		if err = f.Flush(); err != nil {
			return fmt.Errorf("flush profile: %w", err)
		}
	}
	return nil
}

// Predict 以样本输入文本请求一条预测回复
func (p *Profiler) Predict(ctx context.Context, responder llm.Responder, ex dataset.Example) (string, error) {
	resp, err := responder.Respond(ctx, llm.Request{
		System: p.system,
		Prompt: ex.Input,
	})
	if err != nil {
		return "", fmt.Errorf("line %d: %w", ex.Line, err)
	}
	return resp.Content, nil
}

// Summary 一次报告生成的统计
type Summary struct {
	Written int
	Failed  int
}

// Run 顺序处理数据集中的每条记录：构建样本，responder 非空时请求预测，然后写入报告。
// 构建失败的记录被跳过；预测失败时以空预测写入并继续，密钥或模型错误则中止。
func (p *Profiler) Run(ctx context.Context, w io.Writer, d *dataset.Dataset, responder llm.Responder) (Summary, error) {
	var sum Summary
	for i := 0; i < d.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rec, err := d.Record(i)
		if err != nil {
			p.logger.Warn("record skipped", "line", i+1, "error", err)
			sum.Failed++
			continue
		}
		ex, err := d.Get(ctx, i)
		if err != nil {
			p.logger.Warn("record skipped", "line", i+1, "error", err)
			sum.Failed++
			continue
		}

		var prediction string
		if responder != nil {
			prediction, err = p.Predict(ctx, responder, ex)
			if kgerrors.IsFatal(err) {
				return sum, err
			}
			if err != nil {
				p.logger.WithContext(ctx).Warn("prediction failed", "line", ex.Line, "error", err)
			}
		}

		if err := p.WriteProfile(ctx, w, rec, ex.InputIDs, prediction); err != nil {
			return sum, err
		}
		sum.Written++
	}
	p.logger.Info("profile written", "file", d.Path(), "written", sum.Written, "failed", sum.Failed)
	return sum, nil
}
