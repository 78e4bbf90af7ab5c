package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/easyops/kgpath/pkg/dataset"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// builtExample 输出的一行样本
type builtExample struct {
	RunID string `json:"run_id"`
	dataset.Example
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		split       string
		file        string
		out         string
		skipInvalid bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build model examples from a dataset split",
		Long: `Reads a JSONL split (train, dev or test) from dataset.data_dir, or the
file given by --file, and writes one JSON example per line with the input
text, input ids and label ids. Examples keep the order of the source file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := a.logger()

			p, err := newPipeline(ctx, a.cfg, a.provider)
			if err != nil {
				return err
			}
			defer p.Close()

			proc := dataset.NewProcessor(p.builder,
				dataset.WithSkipInvalid(skipInvalid),
				dataset.WithProcessorLogger(logger),
			)
			d, err := p.openDataset(proc, split, file)
			if err != nil {
				return err
			}
			defer d.Close()

			runID := uuid.NewString()
			logger.Info("build started", "run_id", runID, "file", d.Path(), "records", d.Len())

			res, err := proc.BuildAll(ctx, d)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			defer closeOut()
			if err := writeExamples(w, runID, res.Examples); err != nil {
				return err
			}

			logger.Info("build finished", "run_id", runID, "examples", len(res.Examples), "skipped", len(res.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&split, "split", "s", "train", "dataset split (train, dev, test)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSONL file to read instead of the split file")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "skip records with empty or malformed fields")
	return cmd
}

func writeExamples(w io.Writer, runID string, examples []dataset.Example) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, ex := range examples {
		if err := enc.Encode(builtExample{RunID: runID, Example: ex}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// openOutput 打开输出文件，"-" 或空表示命令的标准输出
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
