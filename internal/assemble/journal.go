package assemble

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/transform"
)

// Journal assembles the journal item for a citation and returns its target
// identifier. The NLM unique id is the idempotence key: a journal already in
// the table is returned without touching the target.
func (a *Assembler) Journal(ctx context.Context, citation *model.Record) (string, error) {
	info := citation.Child("MedlineJournalInfo")
	nlmID := info.Text("NlmUniqueID")
	if nlmID == "" {
		return "", &model.UnrecognizedShapeError{Field: "MedlineJournalInfo.NlmUniqueID", Value: "(absent)"}
	}
	if id, ok := a.store().Identifier(mapstore.ClassJournal, nlmID); ok && id != "" {
		return id, nil
	}

	article := citation.Child("Article")
	journal := article.Child("Journal")
	title := journal.Text("Title")
	country := info.Text("Country")

	langs, err := transform.ProcessLanguages(ctx, a.Deps, article)
	if err != nil {
		return "", err
	}

	g := model.NewClaimGraph()
	ref := model.PubMedReference()
	g.Set(model.PropInstanceOf, model.ItemClaim(model.ItemJournal).WithReference(ref))

	if title != "" {
		lang := a.journalLanguage(langs, title, country)
		g.Set(model.PropTitle, model.TextClaim(title, lang).WithReference(ref))
		g.AddAlias(lang, title)
	}
	g.Set(model.PropInDatabase, model.ItemClaim(model.ItemPubMed).WithReference(ref))

	if country != "" {
		item, err := a.Deps.Resolver.Resolve(ctx, mapstore.ClassCountry, country, "journal country")
		if err != nil {
			return "", err
		}
		g.Set(model.PropCountryOfOrigin, model.ItemClaim(item).WithReference(ref))
	}

	g.Set(model.PropNLMUniqueID, model.ExternalIDClaim(nlmID).WithReference(ref))

	if iso := journal.Text("ISOAbbreviation"); iso != "" {
		lang := a.journalLanguage(langs, title, country)
		g.Set(model.PropISOAbbreviation, model.TextClaim(iso, lang).WithReference(ref))
		g.AddAlias(lang, iso)
	}
	if ta := info.Text("MedlineTA"); ta != "" {
		lang := a.journalLanguage(langs, title, country)
		g.Set(model.PropMedlineTA, model.TextClaim(ta, lang).WithReference(ref))
		g.AddAlias(lang, ta)
	}

	for _, l := range langs {
		g.Add(model.PropLanguageOfWork, model.ItemClaim(l.Item).WithReference(ref))
	}

	if issn := journal.Child("ISSN"); issn != nil && issn.Value != "" {
		property, claim, err := transform.ProcessISSN(issn)
		if err != nil {
			return "", err
		}
		g.Set(property, claim)
	}
	if linking := info.Text("ISSNLinking"); linking != "" {
		g.Set(model.PropISSNL, model.ExternalIDClaim(linking).WithReference(ref))
	}

	if a.Deps.Xref != nil {
		qid, err := a.Deps.Xref.NLMID(ctx, nlmID)
		if err != nil {
			a.log().Warn("nlm cross-reference lookup failed",
				zap.String("nlm", nlmID), zap.Error(err))
		} else if qid != "" {
			g.Set(model.PropWikidataID,
				model.ExternalIDClaim(qid).WithReference(model.WikidataReference(nlmID, qid)))
		}
	}

	matchID, err := a.matchExisting(ctx, mapstore.ClassJournal, title, "journal title")
	if err != nil {
		return "", err
	}
	id, err := a.write(ctx, g, matchID)
	if err != nil {
		return "", err
	}
	if err := a.store().Commit(mapstore.ClassJournal, nlmID, id); err != nil {
		return "", err
	}
	a.log().Info("journal assembled",
		zap.String("nlm", nlmID), zap.String("id", id), zap.Bool("created", matchID == ""))
	return id, nil
}

// journalLanguage tags journal text. Detection confusing Romanian for
// Portuguese is common for Brazilian journals, so the country of publication
// overrides it.
func (a *Assembler) journalLanguage(langs []transform.Language, text, country string) string {
	iso := transform.TextLanguage(a.Deps, langs, text)
	if iso == "ro" && country == "Brazil" {
		return "pt"
	}
	return iso
}
