// Package papers queries the Springer Meta API for works related to a
// paper's content. Every failure degrades to an empty result list; the
// search never fails a job.
package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ansium/paperdigest/internal/config"
	"github.com/ansium/paperdigest/pkg/models"
)

const (
	// queryTokens is how many leading words of the content form the query.
	queryTokens = 3

	// defaultQuery is used when the content has no tokens at all.
	defaultQuery = "natural science"

	// abstractCap bounds the abstract snippet carried per recommendation.
	abstractCap = 200

	// maxPageSize is the most records ever requested from the index.
	maxPageSize = 5
)

// Client finds works related to extracted paper content.
type Client interface {
	Related(ctx context.Context, content string) []models.RecommendedPaper
}

// HTTPClient implements Client against the Springer Meta API.
type HTTPClient struct {
	cfg    config.SearchConfig
	client *http.Client
}

// NewHTTPClient creates a new literature search client.
func NewHTTPClient(cfg config.SearchConfig) *HTTPClient {
	return &HTTPClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Related derives a query from the content and returns up to the configured
// number of recommendations. Missing credential, empty content, and any
// network, status, or parse failure all return an empty list.
func (c *HTTPClient) Related(ctx context.Context, content string) []models.RecommendedPaper {
	if c.cfg.APIKey == "" || content == "" {
		return []models.RecommendedPaper{}
	}

	papers, err := c.search(ctx, deriveQuery(content), c.cfg.PageSize)
	if err != nil {
		slog.Warn("literature search failed", "error", err)
		return []models.RecommendedPaper{}
	}
	return papers
}

func (c *HTTPClient) search(ctx context.Context, query string, count int) ([]models.RecommendedPaper, error) {
	if count < 1 {
		count = 1
	}
	if count > maxPageSize {
		count = maxPageSize
	}

	params := url.Values{
		"q":       {query},
		"api_key": {c.cfg.APIKey},
		"p":       {strconv.Itoa(count)},
		"s":       {"1"},
	}
	u := fmt.Sprintf("%s/json?%s", c.cfg.BaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding index response: %w", err)
	}

	records := searchResp.Records
	if len(records) > count {
		records = records[:count]
	}

	papers := make([]models.RecommendedPaper, 0, len(records))
	for _, rec := range records {
		papers = append(papers, projectRecord(rec))
	}
	return papers, nil
}

// deriveQuery takes the first few whitespace-delimited tokens of the content.
func deriveQuery(content string) string {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return defaultQuery
	}
	if len(fields) > queryTokens {
		fields = fields[:queryTokens]
	}
	return strings.Join(fields, " ")
}

// projectRecord maps an index record onto a RecommendedPaper.
func projectRecord(rec searchRecord) models.RecommendedPaper {
	authors := make([]string, 0, len(rec.Creators))
	for _, creator := range rec.Creators {
		if creator.Creator != "" {
			authors = append(authors, creator.Creator)
		}
	}

	year := rec.PublicationDate
	if len(year) > 4 {
		year = year[:4]
	}

	var link string
	if len(rec.URL) > 0 {
		link = rec.URL[0].Value
	}

	abstract := rec.Abstract
	if len(abstract) > abstractCap {
		abstract = truncate(abstract, abstractCap) + "..."
	}

	return models.RecommendedPaper{
		Title:       rec.Title,
		Authors:     strings.Join(authors, ", "),
		Publication: rec.PublicationName,
		Year:        year,
		URL:         link,
		Abstract:    abstract,
	}
}

// --- Springer Meta API response types ---

type searchResponse struct {
	Records []searchRecord `json:"records"`
}

type searchRecord struct {
	Title           string `json:"title"`
	Creators        []struct {
		Creator string `json:"creator"`
	} `json:"creators"`
	PublicationName string `json:"publicationName"`
	PublicationDate string `json:"publicationDate"`
	URL             []struct {
		Value string `json:"value"`
	} `json:"url"`
	Abstract string `json:"abstract"`
}

// truncate shortens s to maxBytes without splitting UTF-8 runes.
func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
