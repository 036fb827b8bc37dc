package transform

import (
	"context"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// PublicationTypes is the result of the publication-type pair lookup: what
// the article is an instance of, and what publication type it carries. The
// two halves come from the same table entry and fail together.
type PublicationTypes struct {
	InstanceOf []model.Claim
	Types      []model.Claim
}

// ProcessPublicationTypes resolves every publication type against the pair
// of suffixed namespaces in the publication-type table.
func ProcessPublicationTypes(ctx context.Context, deps *Deps, list *model.Record) (*PublicationTypes, error) {
	ns := deps.Resolver.Store.Namespace()
	out := &PublicationTypes{}
	for _, rec := range list.Items("PublicationType") {
		if rec.Value == "" {
			continue
		}
		instanceOf, err := deps.Resolver.ResolveAux(ctx, mapstore.ClassPubType, rec.Value, "publication type", ns+"_instance_of")
		if err != nil {
			return nil, err
		}
		pubType, err := deps.Resolver.ResolveAux(ctx, mapstore.ClassPubType, rec.Value, "publication type", ns+"_publication_type")
		if err != nil {
			return nil, err
		}
		ref := model.PubMedReference()
		out.InstanceOf = append(out.InstanceOf, model.ItemClaim(instanceOf).WithReference(ref))
		out.Types = append(out.Types, model.ItemClaim(pubType).WithReference(ref))
	}
	return out, nil
}

// ProcessPublicationModel maps the article's publication model attribute.
func ProcessPublicationModel(article *model.Record) (model.Claim, bool, error) {
	pubModel, ok := article.Attr("PubModel")
	if !ok {
		return model.Claim{}, false, nil
	}
	switch pubModel {
	case "Print":
		return model.ItemClaim(model.ItemPrint).WithReference(model.PubMedReference()), true, nil
	case "Electronic":
		return model.ItemClaim(model.ItemElectronicPub).WithReference(model.PubMedReference()), true, nil
	}
	return model.Claim{}, false, &model.UnrecognizedShapeError{Field: "PubModel", Value: pubModel}
}
