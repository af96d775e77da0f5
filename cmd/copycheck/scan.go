package main

import (
	"fmt"

	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <candidate> <corpus-dir>",
	Short: "Find the corpus file most similar to a candidate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidate, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		corpus, err := readCorpus(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		corpus = plagiarism.ExcludeDocument(corpus, candidate.ID)

		match := detector().FindMostSimilar(candidate.Text, corpus)
		out := cmd.OutOrStdout()
		if !match.HasMatch() {
			fmt.Fprintln(out, "no documents to compare against")
			return nil
		}

		severity := plagiarism.Classify(match.SimilarityRatio)
		fmt.Fprintf(out, "%s\t%d%%\t%s\n", match.MostSimilarName, plagiarism.Percent(match.SimilarityRatio), severity)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
