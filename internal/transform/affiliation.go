package transform

import (
	"context"
	"strings"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// ProcessAffiliations resolves every affiliation attached to an author
// element. A compound affiliation string fans out into one item claim per
// resolved institution, each carrying its position as a series ordinal.
func ProcessAffiliations(ctx context.Context, deps *Deps, author *model.Record) ([]model.Claim, error) {
	var out []model.Claim
	ordinal := 1
	for _, info := range author.Items("AffiliationInfo") {
		mention := strings.TrimSpace(info.Text("Affiliation"))
		if mention == "" {
			continue
		}
		ids, err := deps.Resolver.ResolveAll(ctx, mapstore.ClassAffiliation, mention, "author affiliation")
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			out = append(out, model.ItemClaim(id).
				Qualify(model.PropSeriesOrdinal, model.QuantityClaim(ordinal, "")))
			ordinal++
		}
	}
	return out, nil
}
