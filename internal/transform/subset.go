package transform

import (
	"context"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// ProcessCitationSubsets resolves the record's citation subset codes.
func ProcessCitationSubsets(ctx context.Context, deps *Deps, citation *model.Record) ([]model.Claim, error) {
	var out []model.Claim
	for _, rec := range citation.Items("CitationSubset") {
		if rec.Value == "" {
			continue
		}
		item, err := deps.Resolver.Resolve(ctx, mapstore.ClassSubset, rec.Value, "citation subset")
		if err != nil {
			return nil, err
		}
		out = append(out, model.ItemClaim(item).WithReference(model.PubMedReference()))
	}
	return out, nil
}
