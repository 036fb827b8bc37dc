package transform

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// Grant is one transformed grant: its own claim graph plus the claim the
// article carries about it. Like authors, unmatched grants become new items.
type Grant struct {
	ID         string
	MentionKey string
	Graph      *model.ClaimGraph
	ArticleRef model.Claim
}

// activityCodeRe matches the NIH-style application number prefix: one
// funding-mechanism letter and a two-digit activity suffix.
var activityCodeRe = regexp.MustCompile(`^[A-Z]\d{2}`)

// ProcessGrants transforms the article's grant list.
func ProcessGrants(ctx context.Context, deps *Deps, list *model.Record) ([]*Grant, error) {
	var out []*Grant
	complete, hasComplete := list.Attr("CompleteYN")
	for _, rec := range list.Items("Grant") {
		g, err := processGrant(ctx, deps, rec)
		if err != nil {
			return nil, err
		}
		ref := model.ItemClaim(g.ID)
		if hasComplete {
			ref = ref.Qualify(model.PropComplete, model.ItemClaim(yesNo(complete)))
		}
		g.ArticleRef = ref.WithReference(model.PubMedReference())
		out = append(out, g)
	}
	return out, nil
}

func processGrant(ctx context.Context, deps *Deps, rec *model.Record) (*Grant, error) {
	id := normalizeGrantID(rec.Text("GrantID"))
	agency := strings.TrimSpace(rec.Text("Agency"))
	acronym := strings.TrimSpace(rec.Text("Acronym"))
	country := strings.TrimSpace(rec.Text("Country"))

	key := id
	if key == "" {
		key = agency
	}
	if key == "" {
		return nil, &model.UnrecognizedShapeError{Field: "Grant", Value: "no GrantID or Agency"}
	}

	g := &Grant{MentionKey: key, Graph: model.NewClaimGraph()}
	ref := model.PubMedReference()
	g.Graph.Set(model.PropInstanceOf, model.ItemClaim(model.ItemGrant).WithReference(ref))

	if id != "" {
		g.Graph.Set(model.PropGrantID, model.ExternalIDClaim(id).WithReference(ref))
		g.Graph.AddAlias("en", id)

		parts := decomposeGrantID(id, acronym)
		if parts.mechanism != "" {
			g.Graph.Set(model.PropFundingMechanism, model.StringClaim(parts.mechanism).WithReference(ref))
		}
		if parts.activityCode != "" {
			g.Graph.Set(model.PropActivityCode, model.StringClaim(parts.activityCode).WithReference(ref))
		}
		if parts.acronym != "" {
			g.Graph.Set(model.PropGrantAcronym, model.StringClaim(parts.acronym).WithReference(ref))

			// The institute code embedded in the application number names
			// the primary funding institute.
			if institute, ok := deps.Resolver.Store.Identifier(mapstore.ClassGrantCode, parts.acronym); ok {
				g.Graph.Set(model.PropPrimaryInstitute, model.ItemClaim(institute).WithReference(ref))
			}
		}
		if parts.serial != "" {
			g.Graph.Set(model.PropSerialNumber, model.StringClaim(parts.serial).WithReference(ref))
		}
	}

	if agency != "" {
		agencyItem, err := deps.Resolver.Resolve(ctx, mapstore.ClassGrantCode, agency, "grant funding agency")
		if err != nil {
			return nil, err
		}
		g.Graph.Set(model.PropFundingAgency, model.ItemClaim(agencyItem).WithReference(ref))
	}

	if country != "" {
		countryItem, err := deps.Resolver.Resolve(ctx, mapstore.ClassCountry, country, "grant country")
		if err != nil {
			return nil, err
		}
		g.Graph.Set(model.PropCountryOfOrigin, model.ItemClaim(countryItem).WithReference(ref))
	}

	resolved, err := deps.Resolver.Resolve(ctx, mapstore.ClassGrant, key, "article grant")
	var missing *model.MissingMappingError
	switch {
	case err == nil:
		g.ID = resolved
	case errors.As(err, &missing):
		// New grant; the assembler creates the item and commits the key.
	default:
		return nil, err
	}
	return g, nil
}

// normalizeGrantID cleans an application number: colons dropped, any suffix
// after a slash dropped, and a stray space after the first character removed.
// The literal "N.A." means no identifier.
func normalizeGrantID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "N.A." {
		return ""
	}
	id := strings.SplitN(strings.ReplaceAll(raw, ":", ""), "/", 2)[0]
	if len(id) > 1 && id[1] == ' ' {
		id = strings.Replace(id, " ", "", 1)
	}
	return strings.TrimSpace(id)
}

type grantParts struct {
	mechanism    string
	activityCode string
	acronym      string
	serial       string
}

// decomposeGrantID splits an application number positionally: funding
// mechanism letter, three-character activity code, two-letter institute
// acronym, serial number. The declared acronym field is the fallback when
// the institute code cannot be read off the identifier itself.
func decomposeGrantID(id, declaredAcronym string) grantParts {
	var p grantParts
	rest := id
	if activityCodeRe.MatchString(id) {
		p.mechanism = id[:1]
		p.activityCode = id[:3]
		rest = strings.TrimSpace(id[3:])
	}

	acronym := declaredAcronym
	if len(acronym) > 2 && acronym != "GATES" {
		// Hierarchical acronyms collapse to the two-letter institute code
		// at the start of the remainder.
		if len(rest) >= 2 {
			acronym = rest[:2]
		}
	}
	if acronym == "" && len(rest) >= 2 {
		acronym = rest[:2]
	}

	if acronym != "" {
		if i := strings.Index(rest, acronym); i >= 0 {
			p.acronym = acronym
			p.serial = strings.TrimSpace(rest[i+len(acronym):])
			return p
		}
		// Declared acronym absent from the identifier: fall back to the
		// second whitespace token's leading pair.
		fields := strings.Fields(rest)
		if len(fields) > 1 && len(fields[1]) >= 2 {
			p.acronym = fields[1][:2]
			if i := strings.Index(rest, p.acronym); i >= 0 {
				p.serial = strings.TrimSpace(rest[i+len(p.acronym):])
			}
			return p
		}
	}
	p.acronym = acronym
	return p
}
