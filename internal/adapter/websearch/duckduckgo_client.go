package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"word-orchestrator/internal/domain"
	"word-orchestrator/internal/infra/httpclient"
)

const (
	DefaultEndpoint  = "https://html.duckduckgo.com/html/"
	defaultUserAgent = "Mozilla/5.0 (compatible; word-orchestrator/1.0)"
)

// DuckDuckGoClient scrapes the DuckDuckGo HTML endpoint. Outbound requests
// are throttled by a shared limiter.
type DuckDuckGoClient struct {
	endpoint string
	region   string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewDuckDuckGoClient creates a client that issues at most rps searches per
// second. region is a DuckDuckGo locale such as "kr-kr"; empty means global.
func NewDuckDuckGoClient(endpoint, region string, timeout time.Duration, rps float64, logger *slog.Logger) *DuckDuckGoClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if rps <= 0 {
		rps = 1
	}
	return &DuckDuckGoClient{
		endpoint: endpoint,
		region:   region,
		client:   httpclient.NewPooledClient(timeout),
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   logger,
	}
}

func (c *DuckDuckGoClient) Search(ctx context.Context, query string, maxResults int) ([]domain.WebResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search throttled: %w", err)
	}

	form := url.Values{}
	form.Set("q", query)
	if c.region != "" {
		form.Set("kl", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", defaultUserAgent)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	results := parseResults(doc, maxResults)
	c.logger.Debug("web_search_completed",
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)))
	return results, nil
}

func parseResults(doc *goquery.Document, maxResults int) []domain.WebResult {
	results := []domain.WebResult{}
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		anchor := s.Find(".result__a").First()
		title := collapseSpace(anchor.Text())
		snippet := collapseSpace(s.Find(".result__snippet").First().Text())
		if title == "" && snippet == "" {
			return true
		}
		href, _ := anchor.Attr("href")
		results = append(results, domain.WebResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: snippet,
		})
		return maxResults <= 0 || len(results) < maxResults
	})
	return results
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" redirect links.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

var _ domain.WebSearcher = (*DuckDuckGoClient)(nil)
