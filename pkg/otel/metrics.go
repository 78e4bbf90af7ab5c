package otel

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics 按名称提供计数器和直方图
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Counter 单调递增的计数器
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...attribute.KeyValue)
}

// Histogram 记录数值分布
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...attribute.KeyValue)
}

// Recorder 在内存中累计一次命令运行的指标，属性被忽略。
// 未配置导出器时使用，命令结束时由 Summary 汇总输出。
type Recorder struct {
	mu      sync.Mutex
	counts  map[string]int64
	samples map[string][]float64
}

// NewRecorder 创建内存指标记录器
func NewRecorder() *Recorder {
	return &Recorder{
		counts:  make(map[string]int64),
		samples: make(map[string][]float64),
	}
}

func (r *Recorder) Counter(name string) Counter {
	return recorderCounter{r: r, name: name}
}

func (r *Recorder) Histogram(name string) Histogram {
	return recorderHistogram{r: r, name: name}
}

// Count 返回计数器的累计值
func (r *Recorder) Count(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// Samples 返回直方图记录过的全部样本
func (r *Recorder) Samples(name string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.samples[name]
	if !ok {
		return nil
	}
	return append([]float64(nil), s...)
}

// Stat 一个指标的汇总
type Stat struct {
	Name string
	// Total 计数器的累计值，或直方图样本之和
	Total float64
	// Samples 直方图样本数，计数器为 0
	Samples int
}

// Mean 直方图样本均值
func (s Stat) Mean() float64 {
	if s.Samples == 0 {
		return 0
	}
	return s.Total / float64(s.Samples)
}

// Summary 返回按名称排序的全部指标
func (r *Recorder) Summary() []Stat {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make([]Stat, 0, len(r.counts)+len(r.samples))
	for name, v := range r.counts {
		stats = append(stats, Stat{Name: name, Total: float64(v)})
	}
	for name, vs := range r.samples {
		st := Stat{Name: name, Samples: len(vs)}
		for _, v := range vs {
			st.Total += v
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

type recorderCounter struct {
	r    *Recorder
	name string
}

func (c recorderCounter) Add(_ context.Context, value int64, _ ...attribute.KeyValue) {
	c.r.mu.Lock()
	c.r.counts[c.name] += value
	c.r.mu.Unlock()
}

type recorderHistogram struct {
	r    *Recorder
	name string
}

func (h recorderHistogram) Record(_ context.Context, value float64, _ ...attribute.KeyValue) {
	h.r.mu.Lock()
	h.r.samples[h.name] = append(h.r.samples[h.name], value)
	h.r.mu.Unlock()
}

// SDKMetrics 基于 OpenTelemetry Meter 的指标，仪器按名称缓存
type SDKMetrics struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]Counter
	histograms map[string]Histogram
}

// NewSDKMetrics 使用给定 Meter 创建指标
func NewSDKMetrics(meter metric.Meter) *SDKMetrics {
	return &SDKMetrics{
		meter:      meter,
		counters:   make(map[string]Counter),
		histograms: make(map[string]Histogram),
	}
}

// Counter 返回计数器，仪器创建失败时退化为空实现
func (m *SDKMetrics) Counter(name string) Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}
	info := describe(name)
	var c Counter = noopCounter{}
	if inst, err := m.meter.Int64Counter(name, metric.WithDescription(info.description), metric.WithUnit(info.unit)); err == nil {
		c = sdkCounter{inst: inst}
	}
	m.counters[name] = c
	return c
}

// Histogram 返回直方图，仪器创建失败时退化为空实现
func (m *SDKMetrics) Histogram(name string) Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}
	info := describe(name)
	var h Histogram = noopHistogram{}
	if inst, err := m.meter.Float64Histogram(name, metric.WithDescription(info.description), metric.WithUnit(info.unit)); err == nil {
		h = sdkHistogram{inst: inst}
	}
	m.histograms[name] = h
	return h
}

type sdkCounter struct{ inst metric.Int64Counter }

func (c sdkCounter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.inst.Add(ctx, value, metric.WithAttributes(attrs...))
}

type sdkHistogram struct{ inst metric.Float64Histogram }

func (h sdkHistogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.inst.Record(ctx, value, metric.WithAttributes(attrs...))
}

// NoopMetrics 丢弃所有指标
type NoopMetrics struct{}

// NewNoopMetrics 创建空指标
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (m *NoopMetrics) Counter(string) Counter     { return noopCounter{} }
func (m *NoopMetrics) Histogram(string) Histogram { return noopHistogram{} }

type noopCounter struct{}

func (noopCounter) Add(context.Context, int64, ...attribute.KeyValue) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...attribute.KeyValue) {}

var (
	_ Metrics = (*Recorder)(nil)
	_ Metrics = (*SDKMetrics)(nil)
	_ Metrics = (*NoopMetrics)(nil)
)
