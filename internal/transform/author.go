package transform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// Author is one transformed author: the claim graph describing the author as
// an entity of its own, and the claim the article carries about them. ID is
// empty when no existing item matched and the assembler must create one;
// MentionKey is committed to the author table once the item exists.
type Author struct {
	ID         string
	MentionKey string
	FullName   string
	Graph      *model.ClaimGraph
	ArticleRef model.Claim
}

// ProcessAuthors transforms the article's author list. Unlike most classes,
// a failed author resolution is not fatal: an unmatched author becomes a new
// item, since most authors do not exist in the target yet.
func ProcessAuthors(ctx context.Context, deps *Deps, list *model.Record) ([]*Author, error) {
	var out []*Author
	listComplete, hasListComplete := list.Attr("CompleteYN")
	ordinal := 1
	for _, rec := range list.Items("Author") {
		a, err := processAuthor(ctx, deps, rec)
		if err != nil {
			return nil, err
		}

		ref := model.ItemClaim(a.ID).
			Qualify(model.PropSeriesOrdinal, model.QuantityClaim(ordinal, ""))
		if valid, ok := rec.Attr("ValidYN"); ok {
			ref = ref.Qualify(model.PropValid, model.ItemClaim(yesNo(valid)))
		}
		if complete, ok := rec.Attr("CompleteYN"); ok {
			ref = ref.Qualify(model.PropComplete, model.ItemClaim(yesNo(complete)))
		} else if hasListComplete {
			ref = ref.Qualify(model.PropComplete, model.ItemClaim(yesNo(listComplete)))
		}
		a.ArticleRef = ref.WithReference(model.PubMedReference())

		out = append(out, a)
		ordinal++
	}
	return out, nil
}

func processAuthor(ctx context.Context, deps *Deps, rec *model.Record) (*Author, error) {
	fore := rec.Text("ForeName")
	last := rec.Text("LastName")
	initials := rec.Text("Initials")
	if last == "" {
		return nil, &model.UnrecognizedShapeError{Field: "Author", Value: "missing LastName"}
	}
	fullName := joinName(fore, last)

	a := &Author{MentionKey: fullName, FullName: fullName, Graph: model.NewClaimGraph()}
	ref := model.PubMedReference()

	a.Graph.Set(model.PropInstanceOf, model.ItemClaim(model.ItemAuthor).WithReference(ref))
	if fore != "" {
		a.Graph.Set(model.PropForeName, model.TextClaim(fore, "en").WithReference(ref))
	}
	a.Graph.Set(model.PropLastName, model.TextClaim(last, "en").WithReference(ref))
	if initials != "" {
		a.Graph.Set(model.PropInitials, model.StringClaim(initials).WithReference(ref))
	}
	a.Graph.AddAlias("en", fullName)
	if fore != "" {
		a.Graph.AddAlias("en", last+", "+fore)
	}

	orcid, err := authorORCID(rec)
	if err != nil {
		return nil, err
	}
	if orcid != "" {
		a.Graph.Set(model.PropORCID, model.ExternalIDClaim(orcid).WithReference(ref))
		if deps.Xref != nil {
			qid, err := deps.Xref.ORCID(ctx, orcid)
			if err != nil {
				deps.log().Warn("orcid cross-reference lookup failed",
					zap.String("orcid", orcid), zap.Error(err))
			} else if qid != "" {
				a.Graph.Set(model.PropWikidataID,
					model.ExternalIDClaim(qid).WithReference(model.WikidataReference(orcid, qid)))
			}
		}
	}

	affiliations, err := ProcessAffiliations(ctx, deps, rec)
	if err != nil {
		return nil, err
	}
	for _, claim := range affiliations {
		a.Graph.Add(model.PropAffiliation, claim.WithReference(ref))
	}

	id, err := deps.Resolver.Resolve(ctx, mapstore.ClassAuthor, fullName, "article author")
	var missing *model.MissingMappingError
	switch {
	case err == nil:
		a.ID = id
	case errors.As(err, &missing):
		// New author; the assembler creates the item and commits the key.
	default:
		return nil, err
	}
	return a, nil
}

// authorORCID extracts the ORCID from the author's identifier list, wherever
// it appears in the list. An identifier list with no ORCID but some other
// source is an unhandled shape.
func authorORCID(rec *model.Record) (string, error) {
	var orcid, other string
	for _, id := range rec.Items("Identifier") {
		source, _ := id.Attr("Source")
		if source == "ORCID" {
			orcid = id.Value
			continue
		}
		other = source
	}
	if orcid != "" {
		return orcid, nil
	}
	if len(rec.Items("Identifier")) > 0 {
		return "", &model.UnrecognizedShapeError{
			Field: "Author.Identifier",
			Value: fmt.Sprintf("source %q", other),
		}
	}
	return "", nil
}

func yesNo(attr string) string {
	if attr == "Y" {
		return model.ItemYes
	}
	return model.ItemNo
}

func joinName(fore, last string) string {
	if fore == "" {
		return last
	}
	return fore + " " + last
}
