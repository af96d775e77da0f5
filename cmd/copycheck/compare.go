package main

import (
	"fmt"

	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/spf13/cobra"
)

var threshold float64

var compareCmd = &cobra.Command{
	Use:   "compare <corpus-dir>",
	Short: "List every pair of corpus files scoring above a threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if threshold < 0 || threshold > 1 {
			return fmt.Errorf("threshold must be between 0 and 1")
		}

		corpus, err := readCorpus(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		names := make(map[string]string, len(corpus))
		for _, doc := range corpus {
			names[doc.ID] = doc.DisplayName
		}

		results := detector().CompareAllIndexed(corpus, threshold)
		out := cmd.OutOrStdout()
		for _, r := range results {
			fmt.Fprintf(out, "%s\t%s\t%d%%\t%s\n",
				names[r.SubjectID], names[r.CandidateID], plagiarism.Percent(r.Score), plagiarism.Classify(r.Score))
		}
		fmt.Fprintf(out, "%d of %d pairs above %.2f\n", len(results), len(corpus)*(len(corpus)-1)/2, threshold)
		return nil
	},
}

func init() {
	compareCmd.Flags().Float64Var(&threshold, "threshold", plagiarism.DefaultCompareThreshold, "report pairs scoring strictly above this")
	rootCmd.AddCommand(compareCmd)
}
