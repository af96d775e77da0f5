// Package main is the offline CopyCheck CLI. It runs the similarity engine
// over local .pdf and .txt files without MongoDB or Redis.
package main

import (
	"os"

	"github.com/Duy-Thong/CopyCheck/internal/logger"
	"github.com/Duy-Thong/CopyCheck/internal/plagiarism"
	"github.com/spf13/cobra"
)

var (
	foldCase bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "copycheck",
	Short: "Score textual overlap between documents",
	Long: `copycheck tokenizes documents into sets of words and scores them with the
Jaccard index. Scores of 70% and above are high, 40% and above medium.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitWithWriter(logLevel, os.Stderr, true)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&foldCase, "fold-case", false, "lower-case text before tokenizing")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
}

func detector() *plagiarism.Detector {
	return plagiarism.NewDetector(plagiarism.Tokenizer{FoldCase: foldCase})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
