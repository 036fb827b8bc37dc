package transform

import (
	"context"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// ProcessMeshHeadings transforms the MeSH heading list. Each heading is a
// coordinated pair lookup: the descriptor's target item and its descriptor
// UI must both be present, and every qualifier name resolves the same way.
func ProcessMeshHeadings(ctx context.Context, deps *Deps, list *model.Record) ([]model.Claim, error) {
	var out []model.Claim
	for _, rec := range list.Items("MeshHeading") {
		descriptor := rec.Child("DescriptorName")
		if descriptor == nil || descriptor.Value == "" {
			return nil, &model.UnrecognizedShapeError{Field: "MeshHeading", Value: "missing DescriptorName"}
		}
		if err := seedMeshUI(deps, descriptor); err != nil {
			return nil, err
		}
		item, _, err := deps.Resolver.ResolvePair(ctx, mapstore.ClassMesh, descriptor.Value, "mesh descriptor", meshNamespace)
		if err != nil {
			return nil, err
		}

		claim := model.ItemClaim(item).
			Qualify(model.PropMajorTopic, model.ItemClaim(majorTopic(descriptor)))
		if t, ok := descriptor.Attr("Type"); ok {
			if t != "Geographic" {
				return nil, &model.UnrecognizedShapeError{Field: "DescriptorName.Type", Value: t}
			}
			claim = claim.Qualify(model.PropDescriptorType, model.ItemClaim(model.ItemGeographicTopic))
		}

		for _, qualifier := range rec.Items("QualifierName") {
			if err := seedMeshUI(deps, qualifier); err != nil {
				return nil, err
			}
			qItem, _, err := deps.Resolver.ResolvePair(ctx, mapstore.ClassMesh, qualifier.Value, "mesh qualifier", meshNamespace)
			if err != nil {
				return nil, err
			}
			claim = claim.
				Qualify(model.PropMeshQualifier, model.ItemClaim(qItem)).
				Qualify(model.PropQualifierMajor, model.ItemClaim(majorTopic(qualifier)))
		}

		out = append(out, claim.WithReference(model.PubMedReference()))
	}
	return out, nil
}

// seedMeshUI copies the descriptor UI carried on the record into the table
// before resolution, so even a failed item resolution leaves the UI behind.
func seedMeshUI(deps *Deps, rec *model.Record) error {
	ui, ok := rec.Attr("UI")
	if !ok || ui == "" {
		return nil
	}
	if _, have := deps.Resolver.Store.Aux(mapstore.ClassMesh, rec.Value, meshNamespace); !have {
		return deps.Resolver.Store.CommitAux(mapstore.ClassMesh, rec.Value, meshNamespace, ui)
	}
	return nil
}

func majorTopic(rec *model.Record) string {
	if rec.AttrIs("MajorTopicYN", "Y") {
		return model.ItemYes
	}
	return model.ItemNo
}
