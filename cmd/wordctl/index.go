package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"word-orchestrator/internal/usecase"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed a vocabulary file into the pgvector store",
	Long: `Read one word per line, embed in batches and upsert into word_vectors.
Lines starting with # are ignored. Use --file - to read stdin.

Examples:
  wordctl index --file words.txt
  wordctl index --file words.txt --collection nouns --batch 128 --ensure-schema`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringP("file", "f", "", "vocabulary file, one word per line (required)")
	indexCmd.Flags().String("collection", "", "collection name (default WORD_COLLECTION)")
	indexCmd.Flags().Int("batch", usecase.DefaultIndexBatchSize, "words per embedding batch")
	indexCmd.Flags().Int("dimensions", 0, "embedding dimensions for --ensure-schema (default EMBEDDING_DIMENSIONS)")
	indexCmd.Flags().Bool("ensure-schema", false, "create the word_vectors table if missing")
	_ = indexCmd.MarkFlagRequired("file")
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return words, nil
}

func openVocabulary(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	collection, _ := cmd.Flags().GetString("collection")
	batch, _ := cmd.Flags().GetInt("batch")
	dimensions, _ := cmd.Flags().GetInt("dimensions")
	ensureSchema, _ := cmd.Flags().GetBool("ensure-schema")

	f, err := openVocabulary(cmd, path)
	if err != nil {
		return err
	}
	words, err := readWords(f)
	_ = f.Close()
	if err != nil {
		return err
	}

	app, err := loadApp(cmd.Context(), commandLogger(cmd))
	if err != nil {
		return err
	}
	defer app.Close()

	if app.IndexVocabularyUsecase == nil {
		return errors.New("indexing requires VECTOR_STORE_BACKEND=pgvector")
	}
	if collection == "" {
		collection = app.Collection
	}
	if ensureSchema {
		if dimensions == 0 {
			dimensions = app.EmbeddingDimensions
		}
		if err := app.WordRepo.EnsureSchema(cmd.Context(), dimensions); err != nil {
			return err
		}
	}

	out, err := app.IndexVocabularyUsecase.Execute(cmd.Context(), usecase.IndexVocabularyInput{
		Collection: collection,
		Words:      words,
		BatchSize:  batch,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), map[string]int{
		"indexed": out.Indexed,
		"skipped": out.Skipped,
		"batches": out.Batches,
	})
}
