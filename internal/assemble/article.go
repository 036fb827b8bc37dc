package assemble

import (
	"context"

	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/transform"
)

// Source elements with no mapping rule. Their presence is surfaced instead of
// silently dropping data.
var unsupportedElements = []string{
	"GeneralNote", "InvestigatorList", "OtherID", "SpaceFlightMission",
}

// Article assembles the article item for a citation and returns its target
// identifier. journalID is the already-assembled journal item; the PMID is
// the idempotence key.
func (a *Assembler) Article(ctx context.Context, citation *model.Record, journalID string) (string, error) {
	pmidRec := citation.Child("PMID")
	pmidClaim, err := transform.ProcessPMID(pmidRec)
	if err != nil {
		return "", err
	}
	pmid := pmidRec.Value
	if id, ok := a.store().Identifier(mapstore.ClassArticle, pmid); ok && id != "" {
		return id, nil
	}

	for _, name := range unsupportedElements {
		if citation.Has(name) {
			return "", &model.UnrecognizedShapeError{Field: name, Value: "unsupported element"}
		}
	}

	article := citation.Child("Article")
	langs, err := transform.ProcessLanguages(ctx, a.Deps, article)
	if err != nil {
		return "", err
	}

	g := model.NewClaimGraph()
	ref := model.PubMedReference()

	pubTypes, err := transform.ProcessPublicationTypes(ctx, a.Deps, article.Child("PublicationTypeList"))
	if err != nil {
		return "", err
	}
	for _, claim := range pubTypes.InstanceOf {
		g.Add(model.PropInstanceOf, claim)
	}

	if journalID != "" {
		g.Set(model.PropPublishedIn, model.ItemClaim(journalID).WithReference(ref))
	}
	for _, l := range langs {
		g.Add(model.PropLanguageOfWork, model.ItemClaim(l.Item).WithReference(ref))
	}

	title := article.Text("ArticleTitle")
	titleLang := transform.TextLanguage(a.Deps, langs, title)
	if title != "" {
		g.Set(model.PropTitle, model.TextClaim(title, titleLang).WithReference(ref))
		g.AddAlias(titleLang, title)
	}

	g.Set(model.PropPMID, pmidClaim)
	ids, err := transform.ProcessELocationIDs(ctx, article)
	if err != nil {
		return "", err
	}
	if ids.DOI != nil {
		g.Set(model.PropDOI, *ids.DOI)
	}
	if ids.PII != nil {
		g.Set(model.PropPII, *ids.PII)
	}

	inDatabase, err := a.inDatabaseClaim(citation)
	if err != nil {
		return "", err
	}
	g.Set(model.PropInDatabase, inDatabase)

	issue := article.Child("Journal").Child("JournalIssue")
	if v := issue.Text("Volume"); v != "" {
		g.Set(model.PropVolume, model.StringClaim(v).WithReference(ref))
	}
	if v := issue.Text("Issue"); v != "" {
		g.Set(model.PropIssue, model.StringClaim(v).WithReference(ref))
	}
	if pagination := article.Child("Pagination"); pagination != nil {
		if v := pagination.Text("StartPage"); v != "" {
			g.Set(model.PropStartPage, model.StringClaim(v).WithReference(ref))
		}
		if v := pagination.Text("EndPage"); v != "" {
			g.Set(model.PropEndPage, model.StringClaim(v).WithReference(ref))
		}
		if v := pagination.Text("MedlinePgn"); v != "" {
			g.Set(model.PropPagination, model.StringClaim(v).WithReference(ref))
		}
	}

	if err := a.publicationDates(g, issue.Child("PubDate")); err != nil {
		return "", err
	}
	if err := a.articleDates(g, article); err != nil {
		return "", err
	}

	var authors []*transform.Author
	if list := article.Child("AuthorList"); list != nil {
		authors, err = transform.ProcessAuthors(ctx, a.Deps, list)
		if err != nil {
			return "", err
		}
		for _, author := range authors {
			if err := a.ensureAuthor(ctx, author); err != nil {
				return "", err
			}
		}
	}

	abstract, err := transform.ProcessAbstract(ctx, a.Deps, article.Child("Abstract"), langs)
	if err != nil {
		return "", err
	}
	for _, claim := range abstract.Sentences {
		g.Add(model.PropAbstract, claim.WithReference(ref))
	}
	if abstract.Copyright != "" {
		cp, err := transform.ProcessCopyright(ctx, a.Deps, abstract.Copyright, langs, authors)
		if err != nil {
			return "", err
		}
		if cp != nil {
			g.Set(model.PropCopyrightNotice, copyrightClaim(cp))
		}
	}

	for _, author := range authors {
		claim := author.ArticleRef
		claim.Value = author.ID
		g.Add(model.PropAuthor, claim)
	}

	if claim, ok := transform.ProcessCOIStatement(a.Deps, citation, langs); ok {
		g.Set(model.PropCOIStatement, claim)
	}

	if list := article.Child("GrantList"); list != nil {
		grants, err := transform.ProcessGrants(ctx, a.Deps, list)
		if err != nil {
			return "", err
		}
		for _, grant := range grants {
			if err := a.ensureGrant(ctx, grant); err != nil {
				return "", err
			}
			claim := grant.ArticleRef
			claim.Value = grant.ID
			g.Add(model.PropGrant, claim)
		}
	}

	if list := citation.Child("MeshHeadingList"); list != nil {
		headings, err := transform.ProcessMeshHeadings(ctx, a.Deps, list)
		if err != nil {
			return "", err
		}
		for _, claim := range headings {
			g.Add(model.PropMeshHeading, claim)
		}
	}

	if list := citation.Child("ChemicalList"); list != nil {
		chemicals, err := transform.ProcessChemicals(ctx, a.Deps, list)
		if err != nil {
			return "", err
		}
		for _, claim := range chemicals {
			g.Add(model.PropSubstance, claim)
		}
	}

	if lists := citation.Items("KeywordList"); len(lists) > 0 {
		keywords, err := transform.ProcessKeywords(ctx, a.Deps, lists)
		if err != nil {
			return "", err
		}
		for _, claim := range keywords {
			g.Add(model.PropKeyword, claim)
		}
	}

	subsets, err := transform.ProcessCitationSubsets(ctx, a.Deps, citation)
	if err != nil {
		return "", err
	}
	for _, claim := range subsets {
		g.Add(model.PropCitationSubset, claim)
	}

	for _, claim := range pubTypes.Types {
		g.Add(model.PropPublicationType, claim)
	}
	if claim, ok, err := transform.ProcessPublicationModel(article); err != nil {
		return "", err
	} else if ok {
		g.Set(model.PropPublicationModel, claim)
	}

	if vernacular := article.Text("VernacularTitle"); vernacular != "" {
		lang := transform.TextLanguage(a.Deps, langs, vernacular)
		g.Set(model.PropVernacularTitle, model.TextClaim(vernacular, lang).WithReference(ref))
		g.AddAlias(lang, vernacular)
	}

	if a.Deps.Xref != nil {
		qid, err := a.Deps.Xref.PMID(ctx, pmid)
		if err != nil {
			a.log().Warn("pmid cross-reference lookup failed",
				zap.String("pmid", pmid), zap.Error(err))
		} else if qid != "" {
			g.Set(model.PropWikidataID,
				model.ExternalIDClaim(qid).WithReference(model.WikidataReference(pmid, qid)))
		}
	}

	matchID, err := a.matchExisting(ctx, mapstore.ClassArticle, title, "article title")
	if err != nil {
		return "", err
	}
	id, err := a.write(ctx, g, matchID)
	if err != nil {
		return "", err
	}
	if err := a.store().Commit(mapstore.ClassArticle, pmid, id); err != nil {
		return "", err
	}
	a.log().Info("article assembled",
		zap.String("pmid", pmid), zap.String("id", id), zap.Bool("created", matchID == ""))
	return id, nil
}

// inDatabaseClaim builds the in-database statement: stated in PubMed, with
// the record's housekeeping dates and attributes as qualifiers. Attribute
// values outside the known vocabulary are fatal.
func (a *Assembler) inDatabaseClaim(citation *model.Record) (model.Claim, error) {
	claim := model.ItemClaim(model.ItemPubMed)

	if revised := citation.Child("DateRevised"); revised != nil {
		d, ok, err := transform.ProcessDate(revised)
		if err != nil {
			return model.Claim{}, err
		}
		if ok {
			claim = claim.Qualify(model.PropDateRevised, d.Claim())
		}
	}
	if completed := citation.Child("DateCompleted"); completed != nil {
		d, ok, err := transform.ProcessDate(completed)
		if err != nil {
			return model.Claim{}, err
		}
		if ok {
			// For OLDMEDLINE records the completion date only approximates
			// when the record became available.
			property := model.PropDateCompleted
			if hasSubset(citation, "OM") {
				property = model.PropAvailableDate
			}
			claim = claim.Qualify(property, d.Claim())
		}
	}

	if method, ok := citation.Attr("IndexingMethod"); ok {
		var item string
		switch method {
		case "Automated":
			item = model.ItemAutomatedIndex
		case "Curated":
			item = model.ItemCuratedIndex
		default:
			return model.Claim{}, &model.UnrecognizedShapeError{Field: "IndexingMethod", Value: method}
		}
		claim = claim.Qualify(model.PropIndexingMethod, model.ItemClaim(item))
	}
	if status, ok := citation.Attr("Status"); ok {
		if status != "MEDLINE" {
			return model.Claim{}, &model.UnrecognizedShapeError{Field: "Status", Value: status}
		}
		claim = claim.Qualify(model.PropRecordStatus, model.ItemClaim(model.ItemMedline))
	}
	if owner, ok := citation.Attr("Owner"); ok {
		if owner != "NLM" {
			return model.Claim{}, &model.UnrecognizedShapeError{Field: "Owner", Value: owner}
		}
		claim = claim.Qualify(model.PropOwner, model.ItemClaim(model.ItemNLM))
	}

	issue := citation.Child("Article").Child("Journal").Child("JournalIssue")
	if medium, ok := issue.Attr("CitedMedium"); ok {
		item := model.ItemPrint
		if medium == "Internet" {
			item = model.ItemInternet
		}
		claim = claim.Qualify(model.PropCitedMedium, model.ItemClaim(item))
	}
	return claim.WithReference(model.PubMedReference()), nil
}

// publicationDates adds the publication and issued dates from the journal
// issue. A free-text date range is written at its shared precision with the
// endpoints as qualifiers.
func (a *Assembler) publicationDates(g *model.ClaimGraph, pubDate *model.Record) error {
	if pubDate == nil {
		return nil
	}
	if pubDate.Has("Year") {
		d, ok, err := transform.ProcessDate(pubDate)
		if err != nil {
			return err
		}
		if ok {
			claim := d.Claim().WithReference(model.PubMedReference())
			g.Set(model.PropPublicationDate, claim)
			g.Set(model.PropDateIssued, claim)
		}
		return nil
	}
	raw := pubDate.Text("MedlineDate")
	if raw == "" {
		return nil
	}
	r, err := transform.ProcessDateRange(raw)
	if err != nil {
		return err
	}
	claim := r.Shared.Claim()
	if r.Earliest != r.Latest {
		claim = claim.
			Qualify(model.PropEarliestDate, r.Earliest.Claim()).
			Qualify(model.PropLatestDate, r.Latest.Claim())
	}
	claim = claim.WithReference(model.PubMedReference())
	g.Set(model.PropPublicationDate, claim)
	g.Set(model.PropDateIssued, claim)
	return nil
}

// articleDates adds the per-version article dates. An electronic date type
// becomes a publication-model qualifier; any other type is fatal.
func (a *Assembler) articleDates(g *model.ClaimGraph, article *model.Record) error {
	for _, rec := range article.Items("ArticleDate") {
		d, ok, err := transform.ProcessDate(rec)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		claim := d.Claim()
		if dateType, has := rec.Attr("DateType"); has {
			if dateType != "Electronic" {
				return &model.UnrecognizedShapeError{Field: "ArticleDate.DateType", Value: dateType}
			}
			claim = claim.Qualify(model.PropPublicationModel, model.ItemClaim(model.ItemElectronicPub))
		}
		g.Add(model.PropArticleDate, claim.WithReference(model.PubMedReference()))
	}
	return nil
}

// copyrightClaim folds a parsed copyright statement into one statement: the
// verbatim notice with the year, holders, publisher and beneficiary attached
// as qualifiers.
func copyrightClaim(cp *transform.Copyright) model.Claim {
	claim := cp.Notice
	if cp.Year != nil {
		claim = claim.Qualify(model.PropCopyrightDate, *cp.Year)
	}
	for _, holder := range cp.Holders {
		claim = claim.Qualify(model.PropCopyrightHolder, holder)
	}
	if cp.Publisher != nil {
		claim = claim.Qualify(model.PropPublisher, *cp.Publisher)
	}
	if cp.OnBehalfOf != nil {
		claim = claim.Qualify(model.PropOnBehalfOf, *cp.OnBehalfOf)
	}
	return claim
}

func hasSubset(citation *model.Record, code string) bool {
	for _, rec := range citation.Items("CitationSubset") {
		if rec.Value == code {
			return true
		}
	}
	return false
}
