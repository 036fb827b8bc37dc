package wikibase

import (
	"context"
	"fmt"
	"strings"

	"github.com/openlitdb/litbridge/internal/mapstore"
)

// Wikidata external-identifier properties used for cross-referencing.
const (
	wikidataPMID  = "P698"
	wikidataNLMID = "P1055"
	wikidataORCID = "P496"
)

// Xref resolves external identifiers to Wikidata QIDs through batched SPARQL
// lookups, writing every hit through to the xref mapping table so repeat
// lookups never leave the process.
type Xref struct {
	Client   Client
	Endpoint string
	Store    *mapstore.Store
}

// PMID returns the Wikidata QID holding the given PMID, or "" when none.
func (x *Xref) PMID(ctx context.Context, pmid string) (string, error) {
	return x.one(ctx, wikidataPMID, "pmid", pmid)
}

// NLMID returns the Wikidata QID holding the given NLM unique id.
func (x *Xref) NLMID(ctx context.Context, nlmID string) (string, error) {
	return x.one(ctx, wikidataNLMID, "nlm", nlmID)
}

// ORCID returns the Wikidata QID holding the given ORCID.
func (x *Xref) ORCID(ctx context.Context, orcid string) (string, error) {
	return x.one(ctx, wikidataORCID, "orcid", orcid)
}

func (x *Xref) one(ctx context.Context, property, prefix, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	key := prefix + ":" + value
	if qid, ok := x.Store.Aux(mapstore.ClassWikidata, key, "wikidata"); ok {
		return qid, nil
	}
	hits, err := x.Batch(ctx, property, prefix, []string{value})
	if err != nil {
		return "", err
	}
	return hits[value], nil
}

// Batch looks up many identifiers of one kind in a single VALUES query and
// commits every hit. Misses are simply absent from the result map; an
// unmatched identifier is not an error.
func (x *Xref) Batch(ctx context.Context, property, prefix string, values []string) (map[string]string, error) {
	out := make(map[string]string)
	var pending []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if qid, ok := x.Store.Aux(mapstore.ClassWikidata, prefix+":"+v, "wikidata"); ok {
			out[v] = qid
			continue
		}
		pending = append(pending, v)
	}
	if len(pending) == 0 {
		return out, nil
	}

	var b strings.Builder
	b.WriteString("SELECT ?id ?item WHERE { VALUES ?id {")
	for _, v := range pending {
		fmt.Fprintf(&b, " %q", v)
	}
	fmt.Fprintf(&b, " } ?item wdt:%s ?id }", property)

	result, err := x.Client.ExecuteQuery(ctx, x.Endpoint, b.String())
	if err != nil {
		return nil, fmt.Errorf("xref query %s: %w", property, err)
	}
	for _, binding := range result.Results.Bindings {
		id := binding["id"].Value
		item := binding["item"].Value
		// item comes back as a full entity URI
		if i := strings.LastIndex(item, "/"); i >= 0 {
			item = item[i+1:]
		}
		if id == "" || item == "" {
			continue
		}
		out[id] = item
		if err := x.Store.CommitAux(mapstore.ClassWikidata, prefix+":"+id, "wikidata", item); err != nil {
			return nil, err
		}
	}
	return out, nil
}
