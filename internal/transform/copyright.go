package transform

import (
	"context"
	"regexp"
	"strings"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// copyrightMarkers are tried in priority order when splitting a statement
// into its leading text and the holder segment.
var copyrightMarkers = []string{"©", "Copyright", "copyright", "Published by", "(c)"}

var copyrightYearRe = regexp.MustCompile(`\d{4}`)

// Copyright is a parsed copyright or publisher statement.
type Copyright struct {
	Notice     model.Claim   // the verbatim statement, language-tagged
	Year       *model.Claim  // copyright date, year precision
	Holders    []model.Claim // resolved holder items
	Publisher  *model.Claim
	OnBehalfOf *model.Claim
}

// ProcessCopyright parses a free-text copyright statement. The holder phrase
// resolves as the article's author list when it mentions authors, otherwise
// as an affiliation mention. A "Published by X on behalf of Y" pattern
// yields separate publisher and beneficiary resolutions.
func ProcessCopyright(ctx context.Context, deps *Deps, statement string, langs []Language, authors []*Author) (*Copyright, error) {
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return nil, nil
	}
	out := &Copyright{
		Notice: model.TextClaim(statement, TextLanguage(deps, langs, statement)).
			WithReference(model.PubMedReference()),
	}

	lower := strings.ToLower(statement)
	hasCopyright := strings.Contains(lower, "(c)") || strings.Contains(lower, "copyright") ||
		strings.Contains(lower, "©") || strings.Contains(lower, "copr.")
	hasPublisher := strings.Contains(lower, "published")

	if hasPublisher {
		if err := parsePublisher(ctx, deps, statement, out); err != nil {
			return nil, err
		}
	}
	if hasCopyright {
		if err := parseHolder(ctx, deps, statement, langs, authors, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseHolder(ctx context.Context, deps *Deps, statement string, langs []Language, authors []*Author, out *Copyright) error {
	tail := ""
	for _, marker := range copyrightMarkers {
		if _, after, found := strings.Cut(statement, marker); found {
			tail = after
			break
		}
	}
	if tail == "" {
		return nil
	}

	if year := copyrightYearRe.FindString(tail); year != "" {
		claim := model.TimeClaim(year+"-00-00", model.PrecisionYear).
			WithReference(model.PubMedReference())
		out.Year = &claim
	}

	if strings.Contains(strings.ToLower(tail), "author") {
		for _, a := range authors {
			if a.ID != "" {
				out.Holders = append(out.Holders,
					model.ItemClaim(a.ID).WithReference(model.PubMedReference()))
			}
		}
		return nil
	}

	holder := holderPhrase(tail)
	if holder == "" {
		return nil
	}
	ids, err := deps.Resolver.ResolveAll(ctx, mapstore.ClassAffiliation, holder, "copyright holder")
	if err != nil {
		return err
	}
	for _, id := range ids {
		out.Holders = append(out.Holders, model.ItemClaim(id).WithReference(model.PubMedReference()))
	}
	return nil
}

// holderPhrase trims the year and boilerplate off the holder segment:
// everything after the first word (usually the year), up to the last comma.
func holderPhrase(tail string) string {
	tail = strings.TrimSpace(tail)
	if _, after, found := strings.Cut(tail, " "); found && copyrightYearRe.MatchString(strings.Fields(tail)[0]) {
		tail = after
	}
	if i := strings.LastIndex(tail, ","); i >= 0 {
		tail = tail[:i]
	}
	tail = strings.TrimSuffix(strings.TrimSpace(tail), ".")
	return strings.TrimSpace(tail)
}

func parsePublisher(ctx context.Context, deps *Deps, statement string, out *Copyright) error {
	_, after, found := strings.Cut(statement, "Published by")
	if !found {
		_, after, found = strings.Cut(statement, "published by")
	}
	if !found {
		return nil
	}
	segment := strings.TrimSpace(after)

	if lower := strings.ToLower(segment); strings.Contains(lower, "on behalf of") {
		idx := strings.Index(lower, "on behalf of")
		publisher := cleanOrgPhrase(segment[:idx])
		beneficiary := cleanOrgPhrase(segment[idx+len("on behalf of"):])

		pubID, err := deps.Resolver.Resolve(ctx, mapstore.ClassAffiliation, publisher, "publisher")
		if err != nil {
			return err
		}
		p := model.ItemClaim(pubID).WithReference(model.PubMedReference())
		out.Publisher = &p

		benID, err := deps.Resolver.Resolve(ctx, mapstore.ClassAffiliation, beneficiary, "published on behalf of")
		if err != nil {
			return err
		}
		b := model.ItemClaim(benID).WithReference(model.PubMedReference())
		out.OnBehalfOf = &b
		return nil
	}

	publisher := cleanOrgPhrase(segment)
	pubID, err := deps.Resolver.Resolve(ctx, mapstore.ClassAffiliation, publisher, "publisher")
	if err != nil {
		return err
	}
	p := model.ItemClaim(pubID).WithReference(model.PubMedReference())
	out.Publisher = &p
	return nil
}

func cleanOrgPhrase(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".")
}
