package transform

import (
	"context"
	"regexp"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// meshNamespace is the auxiliary table namespace holding MeSH descriptor UIs.
const meshNamespace = "mesh"

// Registry number shapes, in classification priority order. A UNII is ten
// alphanumerics; an EC number is four dot-separated digit groups; a CAS
// number is digits-digits-digit with hyphens.
var (
	uniiRe = regexp.MustCompile(`^[0-9A-Za-z]{10}$`)
	ecRe   = regexp.MustCompile(`^\d\.\d{1,2}\.\d{1,2}\.\d{1,3}$`)
	casRe  = regexp.MustCompile(`^[1-9]\d{1,6}-\d{2}-\d$`)
)

// ProcessChemicals transforms the chemical list: each substance name resolves
// through the MeSH table to an item claim, qualified by its registry number
// in both raw and typed form.
func ProcessChemicals(ctx context.Context, deps *Deps, list *model.Record) ([]model.Claim, error) {
	var out []model.Claim
	for _, rec := range list.Items("Chemical") {
		name := rec.Text("NameOfSubstance")
		if name == "" {
			return nil, &model.UnrecognizedShapeError{Field: "Chemical", Value: "missing NameOfSubstance"}
		}
		// The substance's MeSH UI rides along in the table next to the item.
		if ui, ok := rec.Child("NameOfSubstance").Attr("UI"); ok {
			if _, have := deps.Resolver.Store.Aux(mapstore.ClassMesh, name, meshNamespace); !have {
				if err := deps.Resolver.Store.CommitAux(mapstore.ClassMesh, name, meshNamespace, ui); err != nil {
					return nil, err
				}
			}
		}
		item, err := deps.Resolver.Resolve(ctx, mapstore.ClassMesh, name, "chemical substance")
		if err != nil {
			return nil, err
		}

		claim := model.ItemClaim(item)
		registry := rec.Text("RegistryNumber")
		if registry != "" {
			claim = claim.Qualify(model.PropRegistryNumber, model.StringClaim(registry))
			typed, err := typedRegistryProperty(registry)
			if err != nil {
				return nil, err
			}
			if typed != "" {
				claim = claim.Qualify(typed, model.ExternalIDClaim(registry))
			}
		}
		out = append(out, claim.WithReference(model.PubMedReference()))
	}
	return out, nil
}

// typedRegistryProperty classifies a registry number. The literal "0" means
// no number was assigned; anything unclassifiable is a fatal shape error.
func typedRegistryProperty(registry string) (string, error) {
	switch {
	case registry == "0":
		return "", nil
	case uniiRe.MatchString(registry):
		return model.PropUNII, nil
	case ecRe.MatchString(registry):
		return model.PropECNumber, nil
	case casRe.MatchString(registry):
		return model.PropCASNumber, nil
	}
	return "", &model.UnrecognizedShapeError{Field: "RegistryNumber", Value: registry}
}
