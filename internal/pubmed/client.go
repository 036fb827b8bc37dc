// Package pubmed fetches citation records from the NCBI eutils endpoints and
// decodes them into the generic record tree the transformers consume.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/openlitdb/litbridge/internal/model"
)

// searchPageSize is the retmax used per esearch page.
const searchPageSize = 200

// Client is the literature-database surface the pipeline consumes.
type Client interface {
	Search(ctx context.Context, term string, max int) ([]string, error)
	FetchRecords(ctx context.Context, ids []string) ([]*model.Record, error)
}

// HTTPClient implements Client against the eutils HTTP API.
type HTTPClient struct {
	baseURL string
	email   string
	tool    string
	http    *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient builds a client from the entrez and http config blocks.
func NewHTTPClient(ec model.EntrezConfig, hc model.HTTPConfig) *HTTPClient {
	rps := hc.RequestsPerSec
	if rps <= 0 {
		rps = 3
	}
	return &HTTPClient{
		baseURL: strings.TrimSuffix(ec.BaseURL, "/"),
		email:   ec.Email,
		tool:    ec.Tool,
		http:    &http.Client{Timeout: hc.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	params.Set("db", "pubmed")
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eutils %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eutils %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Search runs an esearch query and pages through the result with retstart
// until max ids are collected or the result set is exhausted. max <= 0 means
// everything the query matches.
func (c *HTTPClient) Search(ctx context.Context, term string, max int) ([]string, error) {
	var ids []string
	for start := 0; ; start += searchPageSize {
		size := searchPageSize
		if max > 0 && max-len(ids) < size {
			size = max - len(ids)
		}
		body, err := c.get(ctx, "esearch.fcgi", url.Values{
			"term":     {term},
			"retstart": {strconv.Itoa(start)},
			"retmax":   {strconv.Itoa(size)},
			"retmode":  {"json"},
		})
		if err != nil {
			return nil, err
		}
		var out struct {
			Result struct {
				Count  string   `json:"count"`
				IDList []string `json:"idlist"`
			} `json:"esearchresult"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("esearch %q: %w", term, err)
		}
		ids = append(ids, out.Result.IDList...)
		count, err := strconv.Atoi(out.Result.Count)
		if err != nil {
			return nil, fmt.Errorf("esearch %q: bad count %q", term, out.Result.Count)
		}
		if len(out.Result.IDList) == 0 || len(ids) >= count || (max > 0 && len(ids) >= max) {
			break
		}
	}
	if max > 0 && len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

// FetchRecords retrieves the full citation records for the given ids.
func (c *HTTPClient) FetchRecords(ctx context.Context, ids []string) ([]*model.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body, err := c.get(ctx, "efetch.fcgi", url.Values{
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	})
	if err != nil {
		return nil, err
	}
	records, err := ParseRecords(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	return records, nil
}
