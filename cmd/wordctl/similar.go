package main

import (
	"github.com/spf13/cobra"

	"word-orchestrator/internal/usecase"
)

var similarCmd = &cobra.Command{
	Use:   "similar <word>",
	Short: "List the nearest indexed words",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	rootCmd.AddCommand(similarCmd)
	similarCmd.Flags().IntP("limit", "l", usecase.DefaultSimilarLimit, "number of neighbours (1-50)")
}

type similarItem struct {
	Form  string  `json:"form"`
	Score float64 `json:"score"`
}

func runSimilar(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	app, err := loadApp(cmd.Context(), commandLogger(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	out, err := app.LookupSimilarWordsUsecase.Execute(cmd.Context(), usecase.LookupSimilarWordsInput{
		Word:  args[0],
		Limit: limit,
	})
	if err != nil {
		return err
	}

	items := make([]similarItem, 0, len(out.Results))
	for _, r := range out.Results {
		items = append(items, similarItem{Form: r.Form, Score: r.Score})
	}
	return writeJSON(cmd.OutOrStdout(), items)
}
