package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/M0chiIron/ProjetL3/pkg/models"
)

// DefaultBaseURL is the public Open Library API.
const DefaultBaseURL = "https://openlibrary.org"

// Book is a catalog search result, already reduced to the fields the
// frontend renders.
type Book struct {
	Key              string            `json:"key"`
	Title            string            `json:"title"`
	AuthorName       models.StringList `json:"author_name"`
	CoverID          *int64            `json:"cover_i"`
	FirstPublishYear int               `json:"first_publish_year,omitempty"`
}

// Client is a read-only gateway to the remote catalog.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 12 * time.Second},
	}
}

type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string            `json:"key"`
		Title            string            `json:"title"`
		AuthorName       models.StringList `json:"author_name"`
		CoverID          *int64            `json:"cover_i"`
		FirstPublishYear int               `json:"first_publish_year"`
	} `json:"docs"`
}

// Search runs a keyword query against the catalog.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Book, error) {
	return c.search(ctx, url.Values{"q": {query}}, limit)
}

// Subject lists works under a subject, used for homepage browse sections.
func (c *Client) Subject(ctx context.Context, subject string, limit int) ([]Book, error) {
	return c.search(ctx, url.Values{"subject": {subject}}, limit)
}

func (c *Client) search(ctx context.Context, params url.Values, limit int) ([]Book, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	u, err := url.Parse(c.BaseURL + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("catalog: base url: %w", err)
	}
	params.Set("limit", strconv.Itoa(limit))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog: status %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	out := make([]Book, 0, len(sr.Docs))
	for _, doc := range sr.Docs {
		if doc.Key == "" || doc.Title == "" {
			continue
		}
		out = append(out, Book{
			Key:              models.NormalizeKey(doc.Key),
			Title:            doc.Title,
			AuthorName:       doc.AuthorName,
			CoverID:          doc.CoverID,
			FirstPublishYear: doc.FirstPublishYear,
		})
	}
	return out, nil
}
