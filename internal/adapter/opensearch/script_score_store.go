package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/infra/httpclient"
)

// ScriptScoreStore queries an OpenSearch index with an exact cosine
// script_score. OpenSearch forbids negative scores, so the script adds 1.0
// and the store reports domain.ScoreShifted.
type ScriptScoreStore struct {
	baseURL  string
	username string
	password string
	field    string
	client   *http.Client
	logger   *slog.Logger
}

// NewScriptScoreStore creates a store against baseURL. field is the
// knn_vector field holding word embeddings.
func NewScriptScoreStore(baseURL, username, password, field string, timeout time.Duration, logger *slog.Logger) *ScriptScoreStore {
	if field == "" {
		field = "embedding"
	}
	return &ScriptScoreStore{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		field:    field,
		client:   httpclient.NewPooledClient(timeout),
		logger:   logger,
	}
}

type searchRequest struct {
	Size   int         `json:"size"`
	Source []string    `json:"_source"`
	Query  scriptQuery `json:"query"`
}

type scriptQuery struct {
	ScriptScore scriptScore `json:"script_score"`
}

type scriptScore struct {
	Query  map[string]any `json:"query"`
	Script script         `json:"script"`
}

type script struct {
	Source string         `json:"source"`
	Params map[string]any `json:"params"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Form string `json:"form"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ScriptScoreStore) ScoreConvention() domain.ScoreConvention {
	return domain.ScoreShifted
}

func (s *ScriptScoreStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]domain.VectorCandidate, error) {
	body := searchRequest{
		Size:   limit,
		Source: []string{"form"},
		Query: scriptQuery{ScriptScore: scriptScore{
			Query: map[string]any{"match_all": map[string]any{}},
			Script: script{
				Source: fmt.Sprintf("cosineSimilarity(params.query_vector, doc['%s']) + 1.0", s.field),
				Params: map[string]any{"query_vector": vector},
			},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_search", s.baseURL, url.PathEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensearch request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opensearch returned status: %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode opensearch response: %w", err)
	}

	candidates := make([]domain.VectorCandidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.Source.Form == "" {
			continue
		}
		candidates = append(candidates, domain.VectorCandidate{Form: hit.Source.Form, Score: hit.Score})
	}
	s.logger.Debug("opensearch_search_completed",
		slog.String("index", collection),
		slog.Int("hits", len(candidates)))
	return candidates, nil
}

// Ping checks that the cluster answers.
func (s *ScriptScoreStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return err
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("opensearch ping status: %d", resp.StatusCode)
	}
	return nil
}

var _ domain.VectorStore = (*ScriptScoreStore)(nil)
