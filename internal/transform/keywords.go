package transform

import (
	"context"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// ProcessKeywords transforms the author-keyword lists. Keywords supplied by
// a party other than the cataloger carry an owner qualifier.
func ProcessKeywords(ctx context.Context, deps *Deps, lists []*model.Record) ([]model.Claim, error) {
	var out []model.Claim
	for _, list := range lists {
		owner, hasOwner := list.Attr("Owner")
		if hasOwner && owner != "NOTNLM" {
			return nil, &model.UnrecognizedShapeError{Field: "KeywordList.Owner", Value: owner}
		}
		for _, rec := range list.Items("Keyword") {
			if rec.Value == "" {
				continue
			}
			item, err := deps.Resolver.Resolve(ctx, mapstore.ClassKeyword, rec.Value, "article keyword")
			if err != nil {
				return nil, err
			}
			claim := model.ItemClaim(item).
				Qualify(model.PropMajorTopic, model.ItemClaim(majorTopic(rec)))
			if hasOwner {
				claim = claim.Qualify(model.PropOwner, model.ItemClaim(model.ItemNotNLM))
			}
			out = append(out, claim.WithReference(model.PubMedReference()))
		}
	}
	return out, nil
}
