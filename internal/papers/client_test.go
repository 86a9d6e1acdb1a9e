package papers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ansium/paperdigest/internal/config"
)

func testConfig(baseURL string) config.SearchConfig {
	return config.SearchConfig{
		APIKey:   "springer-key",
		BaseURL:  baseURL,
		PageSize: 3,
		Timeout:  5 * time.Second,
		Wait:     10 * time.Second,
	}
}

const sampleResponse = `{
	"records": [
		{
			"title": "Tidal Locking of Exoplanets",
			"creators": [{"creator": "Chen, L."}, {"creator": "Okafor, A."}],
			"publicationName": "Astrophysics Letters",
			"publicationDate": "2023-05-01",
			"url": [{"format": "html", "value": "https://example.org/a1"}],
			"abstract": "` + "LONG_ABSTRACT" + `"
		},
		{
			"title": "Rotation Dynamics",
			"creators": [],
			"publicationName": "Planetary Science",
			"publicationDate": "2021",
			"url": [],
			"abstract": "Short."
		}
	]
}`

func TestRelatedNotConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called without an API key")
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.APIKey = ""
	c := NewHTTPClient(cfg)

	got := c.Related(context.Background(), "some content")
	if len(got) != 0 {
		t.Errorf("expected no recommendations, got %d", len(got))
	}
}

func TestRelatedEmptyContent(t *testing.T) {
	c := NewHTTPClient(testConfig("http://unused"))
	if got := c.Related(context.Background(), ""); len(got) != 0 {
		t.Errorf("expected no recommendations, got %d", len(got))
	}
}

func TestRelatedSuccess(t *testing.T) {
	longAbstract := strings.Repeat("a", abstractCap+100)
	body := strings.Replace(sampleResponse, "LONG_ABSTRACT", longAbstract, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("q"); got != "Tidal locking of" {
			t.Errorf("unexpected query %q", got)
		}
		if got := q.Get("api_key"); got != "springer-key" {
			t.Errorf("unexpected api_key %q", got)
		}
		if got := q.Get("p"); got != "3" {
			t.Errorf("unexpected page size %q", got)
		}
		if got := q.Get("s"); got != "1" {
			t.Errorf("unexpected start %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	got := c.Related(context.Background(), "Tidal locking of close-in exoplanets remains debated")
	if len(got) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(got))
	}

	first := got[0]
	if first.Title != "Tidal Locking of Exoplanets" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if first.Authors != "Chen, L., Okafor, A." {
		t.Errorf("unexpected authors %q", first.Authors)
	}
	if first.Publication != "Astrophysics Letters" {
		t.Errorf("unexpected publication %q", first.Publication)
	}
	if first.Year != "2023" {
		t.Errorf("unexpected year %q", first.Year)
	}
	if first.URL != "https://example.org/a1" {
		t.Errorf("unexpected url %q", first.URL)
	}
	if !strings.HasSuffix(first.Abstract, "...") {
		t.Errorf("expected truncated abstract to end with ellipsis: %q", first.Abstract)
	}
	if len(first.Abstract) != abstractCap+3 {
		t.Errorf("abstract length = %d, want %d", len(first.Abstract), abstractCap+3)
	}

	second := got[1]
	if second.Authors != "" {
		t.Errorf("expected empty authors, got %q", second.Authors)
	}
	if second.Year != "2021" {
		t.Errorf("unexpected year %q", second.Year)
	}
	if second.URL != "" {
		t.Errorf("expected empty url, got %q", second.URL)
	}
	if second.Abstract != "Short." {
		t.Errorf("unexpected abstract %q", second.Abstract)
	}
}

func TestRelatedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	if got := c.Related(context.Background(), "quantum dots"); len(got) != 0 {
		t.Errorf("expected no recommendations on error, got %d", len(got))
	}
}

func TestRelatedMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewHTTPClient(testConfig(srv.URL))
	if got := c.Related(context.Background(), "quantum dots"); len(got) != 0 {
		t.Errorf("expected no recommendations on parse failure, got %d", len(got))
	}
}

func TestDeriveQuery(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", "natural science"},
		{"whitespace only", "   \n ", "natural science"},
		{"fewer words than limit", "graphene batteries", "graphene batteries"},
		{"takes leading words", "deep learning methods for protein folding", "deep learning methods"},
		{"collapses whitespace", "  one \t two\nthree four", "one two three"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := deriveQuery(tc.content); got != tc.want {
				t.Errorf("deriveQuery(%q) = %q, want %q", tc.content, got, tc.want)
			}
		})
	}
}
