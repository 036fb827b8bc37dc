// Package wikibase talks to the target knowledge base: entity search, reads
// and bot writes through the MediaWiki action API, plus SPARQL reads.
package wikibase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/openlitdb/litbridge/internal/model"
)

// Candidate is one entity-search hit offered to the resolver.
type Candidate struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Snak is one property-value assertion in API JSON form.
type Snak struct {
	SnakType  string     `json:"snaktype"`
	Property  string     `json:"property"`
	DataValue *DataValue `json:"datavalue,omitempty"`
}

// DataValue wraps a typed snak value.
type DataValue struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Statement is one serialized claim ready for wbeditentity.
type Statement struct {
	MainSnak        Snak              `json:"mainsnak"`
	Type            string            `json:"type"`
	Rank            string            `json:"rank"`
	Qualifiers      map[string][]Snak `json:"qualifiers,omitempty"`
	QualifiersOrder []string          `json:"qualifiers-order,omitempty"`
	References      []ReferenceBlock  `json:"references,omitempty"`
}

// ReferenceBlock is one reference group attached to a statement.
type ReferenceBlock struct {
	Snaks      map[string][]Snak `json:"snaks"`
	SnaksOrder []string          `json:"snaks-order,omitempty"`
}

// Entity is a target item prepared for writing or read back from the API.
type Entity struct {
	ID      string
	Labels  map[string]string
	Aliases map[string][]string
	Claims  map[string][]Statement
	Order   []string // property write order; claims map alone loses it
}

// QueryResult holds a SPARQL SELECT response.
type QueryResult struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Client is the knowledge-base surface the rest of the pipeline consumes.
// Tests substitute an in-memory implementation.
type Client interface {
	SearchEntities(ctx context.Context, query string) ([]Candidate, error)
	GetItem(ctx context.Context, id string) (*Entity, error)
	NewItem(ctx context.Context, e *Entity) (string, error)
	WriteItem(ctx context.Context, e *Entity) error
	ExecuteQuery(ctx context.Context, endpoint, sparql string) (*QueryResult, error)
}

// HTTPClient implements Client against a live MediaWiki action API.
type HTTPClient struct {
	apiURL      string
	sparqlURL   string
	botUser     string
	botPassword string
	userAgent   string

	http      *http.Client
	limiter   *rate.Limiter
	searches  *cache.Cache
	csrfToken string
}

// NewHTTPClient builds a client from the wikibase and http config blocks.
// Login is deferred until the first write.
func NewHTTPClient(wb model.WikibaseConfig, hc model.HTTPConfig) *HTTPClient {
	rps := hc.RequestsPerSec
	if rps <= 0 {
		rps = 3
	}
	return &HTTPClient{
		apiURL:      wb.APIURL,
		sparqlURL:   wb.SPARQLEndpoint,
		botUser:     wb.BotUser,
		botPassword: wb.BotPassword,
		userAgent:   hc.UserAgent,
		http: &http.Client{
			Timeout: hc.Timeout,
			Jar:     newCookieJar(),
		},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		searches: cache.New(30*time.Minute, 10*time.Minute),
	}
}

func (c *HTTPClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikibase GET: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikibase GET: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) post(ctx context.Context, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikibase POST: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikibase POST: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// login performs the bot login handshake and caches the CSRF token.
func (c *HTTPClient) login(ctx context.Context) error {
	if c.csrfToken != "" {
		return nil
	}
	body, err := c.get(ctx, url.Values{
		"action": {"query"}, "meta": {"tokens"}, "type": {"login"}, "format": {"json"},
	})
	if err != nil {
		return fmt.Errorf("login token: %w", err)
	}
	var tok struct {
		Query struct {
			Tokens map[string]string `json:"tokens"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("login token: %w", err)
	}

	body, err = c.post(ctx, url.Values{
		"action":     {"login"},
		"lgname":     {c.botUser},
		"lgpassword": {c.botPassword},
		"lgtoken":    {tok.Query.Tokens["logintoken"]},
		"format":     {"json"},
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	var login struct {
		Login struct {
			Result string `json:"result"`
		} `json:"login"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if login.Login.Result != "Success" {
		return fmt.Errorf("login failed: %s", login.Login.Result)
	}

	body, err = c.get(ctx, url.Values{
		"action": {"query"}, "meta": {"tokens"}, "format": {"json"},
	})
	if err != nil {
		return fmt.Errorf("csrf token: %w", err)
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("csrf token: %w", err)
	}
	c.csrfToken = tok.Query.Tokens["csrftoken"]
	if c.csrfToken == "" {
		return fmt.Errorf("csrf token missing from response")
	}
	return nil
}

// SearchEntities runs wbsearchentities and returns the ranked hits. Results
// are memoized; the same mention recurs constantly within a batch.
func (c *HTTPClient) SearchEntities(ctx context.Context, query string) ([]Candidate, error) {
	if hit, ok := c.searches.Get(query); ok {
		return hit.([]Candidate), nil
	}
	body, err := c.get(ctx, url.Values{
		"action":   {"wbsearchentities"},
		"search":   {query},
		"language": {"en"},
		"type":     {"item"},
		"limit":    {"10"},
		"format":   {"json"},
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	var out struct {
		Search []Candidate `json:"search"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	c.searches.Set(query, out.Search, cache.DefaultExpiration)
	return out.Search, nil
}

// GetItem fetches an entity by id via wbgetentities.
func (c *HTTPClient) GetItem(ctx context.Context, id string) (*Entity, error) {
	body, err := c.get(ctx, url.Values{
		"action": {"wbgetentities"},
		"ids":    {id},
		"format": {"json"},
	})
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	var out struct {
		Entities map[string]struct {
			ID     string `json:"id"`
			Labels map[string]struct {
				Value string `json:"value"`
			} `json:"labels"`
			Claims map[string][]Statement `json:"claims"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	raw, ok := out.Entities[id]
	if !ok {
		return nil, fmt.Errorf("get item %s: not in response", id)
	}
	e := &Entity{ID: raw.ID, Labels: make(map[string]string), Claims: raw.Claims}
	for lang, l := range raw.Labels {
		e.Labels[lang] = l.Value
	}
	return e, nil
}

// NewItem creates a fresh item with the entity's labels, aliases and claims,
// returning the assigned id.
func (c *HTTPClient) NewItem(ctx context.Context, e *Entity) (string, error) {
	id, err := c.edit(ctx, e, true)
	if err != nil {
		return "", fmt.Errorf("new item: %w", err)
	}
	return id, nil
}

// WriteItem adds the entity's claims to the existing item e.ID.
func (c *HTTPClient) WriteItem(ctx context.Context, e *Entity) error {
	if e.ID == "" {
		return fmt.Errorf("write item: missing id")
	}
	if _, err := c.edit(ctx, e, false); err != nil {
		return fmt.Errorf("write item %s: %w", e.ID, err)
	}
	return nil
}

func (c *HTTPClient) edit(ctx context.Context, e *Entity, create bool) (string, error) {
	if err := c.login(ctx); err != nil {
		return "", err
	}
	data, err := json.Marshal(editPayload(e))
	if err != nil {
		return "", err
	}
	params := url.Values{
		"action": {"wbeditentity"},
		"data":   {string(data)},
		"token":  {c.csrfToken},
		"bot":    {"1"},
		"format": {"json"},
	}
	if create {
		params.Set("new", "item")
	} else {
		params.Set("id", e.ID)
	}
	body, err := c.post(ctx, params)
	if err != nil {
		return "", err
	}
	var out struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("wbeditentity: %s: %s", out.Error.Code, out.Error.Info)
	}
	return out.Entity.ID, nil
}

// editPayload converts an Entity into the wbeditentity data document,
// preserving the claim write order.
func editPayload(e *Entity) map[string]any {
	doc := make(map[string]any)
	if len(e.Labels) > 0 {
		labels := make(map[string]any, len(e.Labels))
		for lang, v := range e.Labels {
			labels[lang] = map[string]string{"language": lang, "value": v}
		}
		doc["labels"] = labels
	}
	if len(e.Aliases) > 0 {
		aliases := make(map[string]any, len(e.Aliases))
		for lang, vs := range e.Aliases {
			block := make([]map[string]string, 0, len(vs))
			for _, v := range vs {
				block = append(block, map[string]string{"language": lang, "value": v})
			}
			aliases[lang] = block
		}
		doc["aliases"] = aliases
	}
	if len(e.Claims) > 0 {
		var claims []Statement
		for _, prop := range e.propertyOrder() {
			claims = append(claims, e.Claims[prop]...)
		}
		doc["claims"] = claims
	}
	return doc
}

func (e *Entity) propertyOrder() []string {
	if len(e.Order) > 0 {
		return e.Order
	}
	props := make([]string, 0, len(e.Claims))
	for p := range e.Claims {
		props = append(props, p)
	}
	return props
}

// newCookieJar never fails with a nil PublicSuffixList.
func newCookieJar() http.CookieJar {
	jar, _ := cookiejar.New(nil)
	return jar
}

// ExecuteQuery runs a SPARQL SELECT against the given endpoint.
func (c *HTTPClient) ExecuteQuery(ctx context.Context, endpoint, sparql string) (*QueryResult, error) {
	if endpoint == "" {
		endpoint = c.sparqlURL
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{"query": {sparql}, "format": {"json"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/sparql-results+json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sparql: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sparql: unexpected status %d", resp.StatusCode)
	}
	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("sparql: %w", err)
	}
	return &result, nil
}
