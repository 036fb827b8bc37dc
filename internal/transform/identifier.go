package transform

import (
	"context"

	"github.com/openlitdb/litbridge/internal/model"
)

// Identifiers holds the external-identifier claims extracted from a record.
type Identifiers struct {
	PMID model.Claim
	DOI  *model.Claim
	PII  *model.Claim
}

// ProcessPMID builds the PMID claim, carrying the record version when the
// source declares one.
func ProcessPMID(pmid *model.Record) (model.Claim, error) {
	if pmid == nil || pmid.Value == "" {
		return model.Claim{}, &model.UnrecognizedShapeError{Field: "PMID", Value: "(absent)"}
	}
	claim := model.ExternalIDClaim(pmid.Value)
	if version, ok := pmid.Attr("Version"); ok {
		claim = claim.Qualify(model.PropPMIDVersion, model.StringClaim(version))
	}
	return claim.WithReference(model.PubMedReference()), nil
}

// ProcessELocationIDs extracts the DOI and PII from the article's electronic
// location identifiers. Any other identifier type is an unhandled shape.
func ProcessELocationIDs(ctx context.Context, article *model.Record) (*Identifiers, error) {
	out := &Identifiers{}
	for _, rec := range article.Items("ELocationID") {
		idType, _ := rec.Attr("EIdType")
		claim := model.ExternalIDClaim(rec.Value)
		if valid, ok := rec.Attr("ValidYN"); ok {
			claim = claim.Qualify(model.PropValid, model.ItemClaim(yesNo(valid)))
		}
		claim = claim.WithReference(model.PubMedReference())
		switch idType {
		case "doi":
			out.DOI = &claim
		case "pii":
			out.PII = &claim
		default:
			return nil, &model.UnrecognizedShapeError{Field: "ELocationID.EIdType", Value: idType}
		}
	}
	return out, nil
}

// ProcessISSN maps a journal ISSN element to the property matching its
// declared medium, falling back to the untyped ISSN property.
func ProcessISSN(issn *model.Record) (property string, claim model.Claim, err error) {
	if issn == nil || issn.Value == "" {
		return "", model.Claim{}, &model.UnrecognizedShapeError{Field: "ISSN", Value: "(absent)"}
	}
	c := model.ExternalIDClaim(issn.Value).WithReference(model.PubMedReference())
	issnType, ok := issn.Attr("IssnType")
	if !ok {
		return model.PropISSN, c, nil
	}
	if issnType == "Electronic" {
		return model.PropISSNElectronic, c, nil
	}
	return model.PropISSNPrint, c, nil
}
