package main

import (
	"fmt"

	"github.com/easyops/kgpath/pkg/vocab"
	"github.com/spf13/cobra"
)

func newVocabCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage entity and relation codebooks",
	}
	cmd.AddCommand(newVocabImportCmd(a), newVocabLookupCmd(a))
	return cmd
}

func newVocabImportCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a codebook file into the configured sqlite or neo4j store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := vocab.Kind(kind)
			if !k.Valid() {
				return fmt.Errorf("unknown codebook kind %q", kind)
			}
			n, err := vocab.ImportFile(cmd.Context(), a.cfg.Vocab, k, args[0])
			if err != nil {
				return err
			}
			a.logger().Info("codebook imported", "kind", kind, "store", string(a.cfg.Vocab.Type), "entries", n)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d %s entries\n", n, kind)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(vocab.KindEntity), "codebook kind (entity, relation)")
	return cmd
}

func newVocabLookupCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "lookup [id...]",
		Short: "Print the surface form of codebook ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k := vocab.Kind(kind)
			if !k.Valid() {
				return fmt.Errorf("unknown codebook kind %q", kind)
			}
			cb, err := vocab.Open(cmd.Context(), a.cfg.Vocab, k, a.cfg.Dataset.DataDir)
			if err != nil {
				return err
			}
			defer cb.Close()

			for _, id := range args {
				s, ok := cb.Lookup(id)
				if !ok {
					s = "<unknown>"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, s)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(vocab.KindEntity), "codebook kind (entity, relation)")
	return cmd
}
