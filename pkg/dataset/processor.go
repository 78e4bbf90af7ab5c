package dataset

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/otel"
	"golang.org/x/sync/errgroup"
)

// 数据划分文件名
const (
	TrainFile = "train.jsonl"
	DevFile   = "valid.jsonl"
	TestFile  = "test.jsonl"
)

// SplitFile 返回划分对应的文件名：train、dev，其余一律视为 test
func SplitFile(fold string) string {
	switch fold {
	case "train":
		return TrainFile
	case "dev":
		return DevFile
	default:
		return TestFile
	}
}

// Dataset 按下标懒加载样本的数据集
type Dataset struct {
	source  *LineSource
	builder *Builder
	train   bool
	timeout time.Duration
}

// Len 返回样本数
func (d *Dataset) Len() int {
	return d.source.Len()
}

// Path 返回源文件路径
func (d *Dataset) Path() string {
	return d.source.Path()
}

// Train 是否为训练集
func (d *Dataset) Train() bool {
	return d.train
}

// Record 读取第 i 条记录（从 0 开始）
func (d *Dataset) Record(i int) (Record, error) {
	line := i + 1
	data, err := d.source.Line(line)
	if err != nil {
		return Record{}, err
	}
	return ParseRecord(data, line)
}

// Get 构建第 i 条样本（从 0 开始）
func (d *Dataset) Get(ctx context.Context, i int) (Example, error) {
	rec, err := d.Record(i)
	if err != nil {
		return Example{}, err
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.builder.Build(ctx, rec, i+1, d.train)
}

// Close 关闭源文件
func (d *Dataset) Close() error {
	return d.source.Close()
}

// Processor 管理 train/valid/test 三个划分
type Processor struct {
	builder     *Builder
	dataDir     string
	skipInvalid bool
	logger      otel.Logger
}

// ProcessorOption 配置 Processor
type ProcessorOption func(*Processor)

// WithSkipInvalid 批量构建时跳过数据错误的记录而不是中止
func WithSkipInvalid(skip bool) ProcessorOption {
	return func(p *Processor) {
		p.skipInvalid = skip
	}
}

// WithProcessorLogger 设置日志器
func WithProcessorLogger(logger otel.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor 创建 Processor，数据目录取自 Builder 的配置
func NewProcessor(builder *Builder, opts ...ProcessorOption) *Processor {
	p := &Processor{
		builder: builder,
		dataDir: builder.Config().DataDir,
		logger:  otel.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TrainExamples 打开训练集
func (p *Processor) TrainExamples() (*Dataset, error) {
	return p.Open("train")
}

// DevExamples 打开验证集
func (p *Processor) DevExamples() (*Dataset, error) {
	return p.Open("dev")
}

// TestExamples 打开测试集
func (p *Processor) TestExamples() (*Dataset, error) {
	return p.Open("test")
}

// Open 打开指定划分
func (p *Processor) Open(fold string) (*Dataset, error) {
	return p.OpenFile(filepath.Join(p.dataDir, SplitFile(fold)), fold == "train")
}

// OpenFile 打开任意 JSONL 文件作为数据集
func (p *Processor) OpenFile(path string, train bool) (*Dataset, error) {
	src, err := OpenLineSource(path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("dataset opened", "file", path, "records", src.Len(), "train", train)
	return &Dataset{
		source:  src,
		builder: p.builder,
		train:   train,
		timeout: p.builder.Config().ExampleTimeout,
	}, nil
}

// BuildResult 批量构建结果
type BuildResult struct {
	// Examples 按源文件顺序排列的样本
	Examples []Example
	// Skipped 被跳过的行号（从 1 开始，升序）
	Skipped []int
}

// BuildAll 并行构建数据集中的全部样本，输出顺序与输入顺序一致
func (p *Processor) BuildAll(ctx context.Context, d *Dataset) (*BuildResult, error) {
	n := d.Len()
	slots := make([]*Example, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.builder.Config().Workers)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.ErrContextCanceled
			}
			ex, err := d.Get(gctx, i)
			if err != nil {
				if p.skipInvalid && errors.IsDataError(err) {
					return nil
				}
				return err
			}
			slots[i] = &ex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &BuildResult{Examples: make([]Example, 0, n)}
	for i, ex := range slots {
		if ex == nil {
			res.Skipped = append(res.Skipped, i+1)
			continue
		}
		res.Examples = append(res.Examples, *ex)
	}
	if len(res.Skipped) > 0 {
		p.logger.Warn("records skipped", "file", d.Path(), "count", len(res.Skipped))
	}
	return res, nil
}

// LoadRaw 读取某个划分的全部原始记录
func LoadRaw(dataDir, fold string) ([]Record, error) {
	path := filepath.Join(dataDir, SplitFile(fold))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		rec, err := ParseRecord(scanner.Bytes(), line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
