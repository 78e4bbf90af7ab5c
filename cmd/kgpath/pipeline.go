package main

import (
	"context"
	"fmt"

	"github.com/easyops/kgpath/pkg/core/config"
	"github.com/easyops/kgpath/pkg/dataset"
	"github.com/easyops/kgpath/pkg/knowledge"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/easyops/kgpath/pkg/tokenizer"
	"github.com/easyops/kgpath/pkg/vocab"
)

// pipeline 由配置组装的分词器、知识组装器与样本构建器
type pipeline struct {
	tok       *tokenizer.MarkerTokenizer
	assembler *knowledge.Assembler
	builder   *dataset.Builder
	vocab     *vocab.Set
}

func newPipeline(ctx context.Context, cfg *config.Config, provider *otel.Provider) (*pipeline, error) {
	tok, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	assembler, err := knowledge.NewAssembler(cfg.Knowledge, tok,
		knowledge.WithTracer(provider.Tracer()),
		knowledge.WithMetrics(provider.Metrics()),
	)
	if err != nil {
		return nil, err
	}

	p := &pipeline{tok: tok, assembler: assembler, vocab: &vocab.Set{}}

	opts := []dataset.BuilderOption{
		dataset.WithBuilderTracer(provider.Tracer()),
		dataset.WithBuilderMetrics(provider.Metrics()),
		dataset.WithBuilderLogger(provider.Logger()),
	}
	if cfg.Dataset.ResolveIDs {
		set, err := vocab.OpenSet(ctx, cfg.Vocab, cfg.Dataset.DataDir)
		if err != nil {
			return nil, err
		}
		p.vocab = set
		if !set.Empty() {
			opts = append(opts, dataset.WithResolver(set.Resolver()))
		}
	}

	builder, err := dataset.NewBuilder(cfg.Dataset, tok, assembler, opts...)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.builder = builder
	return p, nil
}

// openDataset 打开 --file 指定的文件，未指定时打开数据目录下的划分
func (p *pipeline) openDataset(proc *dataset.Processor, split, file string) (*dataset.Dataset, error) {
	if file != "" {
		return proc.OpenFile(file, split == "train")
	}
	return proc.Open(split)
}

func (p *pipeline) Close() error {
	return p.vocab.Close()
}
