package main

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/easyops/kgpath/pkg/core/llm"
	"github.com/easyops/kgpath/pkg/dataset"
	"github.com/easyops/kgpath/pkg/profile"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		split       string
		file        string
		out         string
		predictions string
		predict     bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Write a human-readable report for every record of a split",
		Long: `Writes, for each record, the dialogue history, the ground-truth response,
the decoded model input (selected facts plus history), the gold triplets and a
prediction. Predictions come from --predictions (one per line, in record order)
or, with --predict, from the configured LLM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if predict && predictions != "" {
				return errors.New("--predict and --predictions are mutually exclusive")
			}
			ctx := cmd.Context()

			p, err := newPipeline(ctx, a.cfg, a.provider)
			if err != nil {
				return err
			}
			defer p.Close()

			var responder llm.Responder
			switch {
			case predictions != "":
				preds, err := readLines(predictions)
				if err != nil {
					return err
				}
				responder = llm.NewStaticResponder(preds)
			case predict:
				llmCfg := a.cfg.LLM
				if llmCfg.MaxTokens == 0 {
					llmCfg.MaxTokens = a.cfg.Dataset.MaxDecodeStep
				}
				r, err := llm.FromConfig(llmCfg, llm.WithOnRetry(func(attempt int, cause error) {
					a.logger().Warn("llm request retry", "attempt", attempt, "error", cause)
				}))
				if err != nil {
					return err
				}
				responder = llm.NewTracedResponder(r,
					llm.WithTracer(a.provider.Tracer()),
					llm.WithMetrics(a.provider.Metrics()),
				)
			}

			proc := dataset.NewProcessor(p.builder, dataset.WithProcessorLogger(a.logger()))
			d, err := p.openDataset(proc, split, file)
			if err != nil {
				return err
			}
			defer d.Close()

			w, closeOut, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			defer closeOut()
			bw := bufio.NewWriter(w)

			profiler := profile.New(p.tok,
				profile.WithTracer(a.provider.Tracer()),
				profile.WithLogger(a.logger()),
			)
			if _, err := profiler.Run(ctx, bw, d, responder); err != nil {
				return err
			}
			return bw.Flush()
		},
	}

	cmd.Flags().StringVarP(&split, "split", "s", "test", "dataset split (train, dev, test)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONL file to read instead of the split file")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&predictions, "predictions", "", "file with one prediction per line")
	cmd.Flags().BoolVar(&predict, "predict", false, "request predictions from the configured LLM")
	return cmd
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}
