package scholar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PageSize is fixed across all search endpoints.
const PageSize = 25

// Client queries the CORE and OpenAlex scholarly metadata APIs and reshapes
// their responses into the common envelope.
type Client struct {
	coreBase     string
	coreKey      string
	openAlexBase string
	mailto       string
	client       *http.Client
}

func NewClient(coreBase, coreKey, openAlexBase, mailto string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		coreBase:     coreBase,
		coreKey:      coreKey,
		openAlexBase: openAlexBase,
		mailto:       mailto,
		client:       &http.Client{Timeout: timeout},
	}
}

// SearchWorks queries the CORE works index.
func (c *Client) SearchWorks(ctx context.Context, search string, page int) (Envelope[Work], error) {
	body := map[string]any{
		"query":    orStar(search),
		"page":     page,
		"pageSize": PageSize,
		"scrollId": nil,
	}
	if search != "" {
		body["searchType"] = "fulltext"
	}
	raw, err := c.corePost(ctx, "search/works", body)
	if err != nil {
		return Envelope[Work]{}, err
	}
	return cleanWorks(raw), nil
}

// SearchJournals queries the CORE journals index.
func (c *Client) SearchJournals(ctx context.Context, search string, page int) (Envelope[Journal], error) {
	body := map[string]any{
		"query":    orStar(search),
		"page":     page,
		"pageSize": PageSize,
	}
	raw, err := c.corePost(ctx, "search/journals", body)
	if err != nil {
		return Envelope[Journal]{}, err
	}
	return cleanJournals(raw), nil
}

// SearchDatasets queries OpenAlex works filtered to datasets.
func (c *Client) SearchDatasets(ctx context.Context, search string, page int) (Envelope[Dataset], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per-page", strconv.Itoa(PageSize))
	params.Set("filter", "type:dataset")
	if search != "" {
		params.Set("search", search)
	}
	raw, err := c.openAlexGet(ctx, "works", params)
	if err != nil {
		return Envelope[Dataset]{}, err
	}
	return cleanDatasets(raw), nil
}

// AutocompleteConcepts searches OpenAlex concepts by display name.
func (c *Client) AutocompleteConcepts(ctx context.Context, query string) ([]Concept, error) {
	if query == "" {
		return []Concept{}, nil
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("filter", "display_name.search:"+query)
	params.Set("per-page", "5")
	raw, err := c.openAlexGet(ctx, "concepts", params)
	if err != nil {
		return nil, err
	}
	return cleanConcepts(raw), nil
}

// Health probes both upstream APIs with minimal queries.
func (c *Client) Health(ctx context.Context) HealthStatus {
	apis := map[string]any{}

	raw, err := c.corePost(ctx, "search/works", map[string]any{"query": "*", "page": 1, "pageSize": 1})
	if err != nil {
		apis["core"] = "error"
		apis["core_details"] = map[string]any{"error": err.Error()}
	} else {
		apis["core"] = "online"
		apis["core_details"] = map[string]any{"totalHits": intAt(raw, "totalHits")}
	}

	params := url.Values{}
	params.Set("page", "1")
	params.Set("per-page", "1")
	if _, err := c.openAlexGet(ctx, "works", params); err != nil {
		apis["openalex"] = "error"
	} else {
		apis["openalex"] = "online"
	}

	return HealthStatus{
		Status:  "healthy",
		Service: "Research API (CORE + OpenAlex)",
		APIs:    apis,
	}
}

func (c *Client) corePost(ctx context.Context, endpoint string, body map[string]any) (map[string]any, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode core request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.coreBase+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build core request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.coreKey)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "core")
}

func (c *Client) openAlexGet(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	params.Set("mailto", c.mailto)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.openAlexBase+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build openalex request: %w", err)
	}
	return c.do(req, "openalex")
}

func (c *Client) do(req *http.Request, api string) (map[string]any, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", api, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", api, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s request failed with status %d", api, resp.StatusCode)
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", api, err)
	}
	return parsed, nil
}

func orStar(search string) string {
	if search == "" {
		return "*"
	}
	return search
}
