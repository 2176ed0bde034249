package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"word-orchestrator/internal/domain"
)

const (
	searchWordsQuery = `
		SELECT form, 1 - (embedding <=> $1) AS score
		FROM word_vectors
		WHERE collection = $2
		ORDER BY embedding <=> $1
		LIMIT $3
	`
	upsertWordQuery = `
		INSERT INTO word_vectors (collection, form, embedding, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, form)
		DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = EXCLUDED.updated_at
	`
)

type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	dbExecutor
	Ping(ctx context.Context) error
}

// WordVectorRepository stores word embeddings in the word_vectors table and
// answers cosine k-NN queries through pgvector.
type WordVectorRepository struct {
	pool Pool
	now  func() time.Time
}

// NewWordVectorRepository creates a new WordVectorRepository.
func NewWordVectorRepository(pool Pool) *WordVectorRepository {
	return &WordVectorRepository{pool: pool, now: time.Now}
}

func (r *WordVectorRepository) getExecutor(ctx context.Context) dbExecutor {
	if tx := ExtractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// ScoreConvention reports raw cosine similarity.
func (r *WordVectorRepository) ScoreConvention() domain.ScoreConvention {
	return domain.ScoreCosine
}

func (r *WordVectorRepository) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.VectorCandidate, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, searchWordsQuery, pgvector.NewVector(vector), collection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search word vectors: %w", err)
	}
	defer rows.Close()

	candidates := make([]domain.VectorCandidate, 0, limit)
	for rows.Next() {
		var c domain.VectorCandidate
		if err := rows.Scan(&c.Form, &c.Score); err != nil {
			return nil, fmt.Errorf("failed to scan word vector: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return candidates, nil
}

// UpsertWords inserts or replaces embeddings. Callers wanting atomic batches
// run it inside TransactionManager.RunInTx.
func (r *WordVectorRepository) UpsertWords(ctx context.Context, collection string, words []domain.WordVector) error {
	exec := r.getExecutor(ctx)
	now := r.now()
	for _, w := range words {
		if _, err := exec.Exec(ctx, upsertWordQuery, collection, w.Form, pgvector.NewVector(w.Embedding), now); err != nil {
			return fmt.Errorf("failed to upsert word %q: %w", w.Form, err)
		}
	}
	return nil
}

// EnsureSchema creates the word_vectors table and its HNSW index. The vector
// extension itself must already be installed.
func (r *WordVectorRepository) EnsureSchema(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("invalid embedding dimensions: %d", dimensions)
	}
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS word_vectors (
			collection TEXT NOT NULL,
			form TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (collection, form)
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS word_vectors_embedding_idx
			ON word_vectors USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

func (r *WordVectorRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

var (
	_ domain.VectorStore     = (*WordVectorRepository)(nil)
	_ domain.WordIndexWriter = (*WordVectorRepository)(nil)
)
