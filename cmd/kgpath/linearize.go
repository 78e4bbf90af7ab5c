package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/easyops/kgpath/pkg/kg"
	"github.com/easyops/kgpath/pkg/vocab"
	"github.com/spf13/cobra"
)

func newLinearizeCmd(a *app) *cobra.Command {
	var (
		file    string
		hops    int
		resolve bool
	)

	cmd := &cobra.Command{
		Use:   "linearize",
		Short: "Linearize relation paths read as JSON lines",
		Long: `Reads one relation path per line, each a JSON array of triplets such as
[["The Beatles","formed_in","Liverpool"]], and prints the marked linearization
of every path on its own line. Empty paths print an empty line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hops <= 0 {
				hops = a.cfg.Path.NumHops
			}
			lin, err := kg.NewLinearizer(kg.LinearizerConfig{NumHops: hops})
			if err != nil {
				return err
			}

			var resolver *kg.Resolver
			if resolve {
				set, err := vocab.OpenSet(cmd.Context(), a.cfg.Vocab, a.cfg.Dataset.DataDir)
				if err != nil {
					return err
				}
				defer set.Close()
				r := set.Resolver()
				resolver = &r
			}

			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return linearizeLines(in, cmd.OutOrStdout(), lin, resolver)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input file (default stdin)")
	cmd.Flags().IntVar(&hops, "hops", 0, "maximum hops per chain (default path.num_hops)")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "resolve entity and relation ids through the configured codebooks")
	return cmd
}

func linearizeLines(r io.Reader, w io.Writer, lin *kg.Linearizer, resolver *kg.Resolver) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	out := bufio.NewWriter(w)
	defer out.Flush()

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var path kg.RelationPath
		if err := json.Unmarshal([]byte(text), &path); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if resolver != nil {
			path = resolver.ResolvePath(path)
		}
		if _, err := fmt.Fprintln(out, lin.Linearize(path)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func newMarkersCmd(a *app) *cobra.Command {
	var hops int

	cmd := &cobra.Command{
		Use:   "markers",
		Short: "Print the marker vocabulary registered with the tokenizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hops <= 0 {
				hops = a.cfg.Path.NumHops
			}
			for _, m := range kg.Markers(hops) {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hops, "hops", 0, "maximum hops per chain (default path.num_hops)")
	return cmd
}
