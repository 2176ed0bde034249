package main

import (
	"github.com/spf13/cobra"

	"word-orchestrator/internal/usecase"
	"word-orchestrator/internal/usecase/discovery"
)

var findCmd = &cobra.Command{
	Use:   "find <word>",
	Short: "Find related words for a query word",
	Long: `Run retrieval, web augmentation and generation, then print the merged result.

Examples:
  wordctl find 행복
  wordctl find 행복 --count 8`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().IntP("count", "n", discovery.DefaultTargetCount, "number of words to return (1-20)")
}

type findOutput struct {
	RunID           string                 `json:"run_id"`
	Query           string                 `json:"query"`
	FinalWords      []string               `json:"final_words"`
	TargetWordCount int                    `json:"target_word_count"`
	SourceCounts    discovery.SourceCounts `json:"source_counts"`
	Error           string                 `json:"error,omitempty"`
}

func runFind(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")

	app, err := loadApp(cmd.Context(), commandLogger(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.FindRelatedWordsUsecase.Execute(cmd.Context(), usecase.FindRelatedWordsInput{
		Query:       args[0],
		TargetCount: count,
	})
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), findOutput{
		RunID:           out.RunID,
		Query:           out.Query,
		FinalWords:      out.FinalWords,
		TargetWordCount: out.TargetCount,
		SourceCounts:    out.SourceCounts,
		Error:           out.Error,
	})
}
