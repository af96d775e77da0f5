package main

import (
	"fmt"

	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <a> <b>",
	Short: "Score two files against each other",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		b, err := readDocument(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		score := detector().Score(a.Text, b.Text)
		fmt.Fprintf(cmd.OutOrStdout(), "%.4f\t%d%%\t%s\n", score, plagiarism.Percent(score), plagiarism.Classify(score))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
