package assemble

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openlitdb/litbridge/internal/langid"
	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/resolve"
	"github.com/openlitdb/litbridge/internal/serialize"
	"github.com/openlitdb/litbridge/internal/transform"
	"github.com/openlitdb/litbridge/internal/wikibase"
)

// fakeClient records writes and hands out sequential item identifiers.
type fakeClient struct {
	nextID  int
	hits    []wikibase.Candidate
	created []*wikibase.Entity
	written []*wikibase.Entity
}

func (c *fakeClient) SearchEntities(ctx context.Context, query string) ([]wikibase.Candidate, error) {
	return c.hits, nil
}

func (c *fakeClient) GetItem(ctx context.Context, id string) (*wikibase.Entity, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) NewItem(ctx context.Context, e *wikibase.Entity) (string, error) {
	c.nextID++
	id := fmt.Sprintf("Q%d", 1000+c.nextID)
	e.ID = id
	c.created = append(c.created, e)
	return id, nil
}

func (c *fakeClient) WriteItem(ctx context.Context, e *wikibase.Entity) error {
	c.written = append(c.written, e)
	return nil
}

func (c *fakeClient) ExecuteQuery(ctx context.Context, endpoint, sparql string) (*wikibase.QueryResult, error) {
	return &wikibase.QueryResult{}, nil
}

// scriptDecider answers every question the same way.
type scriptDecider struct {
	confirm bool
	provide string
}

func (d scriptDecider) Confirm(ctx context.Context, q resolve.Question) (bool, error) {
	return d.confirm, nil
}

func (d scriptDecider) Provide(ctx context.Context, q resolve.Question) (string, error) {
	return d.provide, nil
}

func newAssembler(t *testing.T, decider resolve.Decider) (*Assembler, *fakeClient, *mapstore.Store) {
	t.Helper()
	store := mapstore.Open(t.TempDir(), "testwiki")
	seed := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	seed(store.Commit(mapstore.ClassLanguage, "eng", "Q11"))
	seed(store.CommitAux(mapstore.ClassLanguage, "eng", langid.NamespaceISO6391, "en"))
	seed(store.CommitAux(mapstore.ClassLanguage, "eng", langid.NamespaceTokenizer, "english"))
	seed(store.Commit(mapstore.ClassCountry, "United States", "Q30"))
	seed(store.Commit(mapstore.ClassSubset, "IM", "Q901"))
	seed(store.CommitAux(mapstore.ClassPubType, "Journal Article", "testwiki_instance_of", "Q13442"))
	seed(store.CommitAux(mapstore.ClassPubType, "Journal Article", "testwiki_publication_type", "Q571"))

	client := &fakeClient{}
	a := &Assembler{
		Deps: &transform.Deps{
			Resolver: &resolve.Resolver{Store: store, Decider: decider},
			Codes:    &langid.Codes{Store: store},
		},
		Client:     client,
		Serializer: serialize.New(""),
	}
	return a, client, store
}

func rec(name, value string, children ...*model.Record) *model.Record {
	return &model.Record{Name: name, Value: value, Children: children}
}

func attrs(r *model.Record, kv ...string) *model.Record {
	r.Attrs = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Attrs[kv[i]] = kv[i+1]
	}
	return r
}

func journalCitation() *model.Record {
	return rec("MedlineCitation", "",
		rec("Article", "",
			rec("Journal", "",
				attrs(rec("ISSN", "1234-5678"), "IssnType", "Print"),
				rec("Title", "Journal of Testing"),
				rec("ISOAbbreviation", "J. Test."),
			),
			rec("Language", "eng"),
		),
		rec("MedlineJournalInfo", "",
			rec("Country", "United States"),
			rec("MedlineTA", "J Test"),
			rec("NlmUniqueID", "101084"),
			rec("ISSNLinking", "1234-5678"),
		),
	)
}

func TestJournalIdempotent(t *testing.T) {
	a, client, store := newAssembler(t, scriptDecider{})
	if err := store.Commit(mapstore.ClassJournal, "101084", "Q500"); err != nil {
		t.Fatal(err)
	}
	id, err := a.Journal(context.Background(), journalCitation())
	if err != nil {
		t.Fatal(err)
	}
	if id != "Q500" {
		t.Fatalf("id %q", id)
	}
	if len(client.created)+len(client.written) != 0 {
		t.Fatalf("unexpected writes: %d created, %d written", len(client.created), len(client.written))
	}
}

func TestJournalCreatesItem(t *testing.T) {
	a, client, store := newAssembler(t, scriptDecider{})
	id, err := a.Journal(context.Background(), journalCitation())
	if err != nil {
		t.Fatal(err)
	}
	if len(client.created) != 1 {
		t.Fatalf("created %d items", len(client.created))
	}
	e := client.created[0]
	if e.ID != id {
		t.Fatalf("id %q vs entity %q", id, e.ID)
	}
	for _, property := range []string{
		model.PropInstanceOf, model.PropTitle, model.PropInDatabase,
		model.PropCountryOfOrigin, model.PropNLMUniqueID, model.PropISOAbbreviation,
		model.PropMedlineTA, model.PropLanguageOfWork, model.PropISSNPrint, model.PropISSNL,
	} {
		if len(e.Claims[property]) == 0 {
			t.Errorf("missing claim %s", property)
		}
	}
	if got := len(e.Aliases["en"]); got != 3 {
		t.Fatalf("aliases %+v", e.Aliases)
	}
	mapped, ok := store.Identifier(mapstore.ClassJournal, "101084")
	if !ok || mapped != id {
		t.Fatalf("mapping %q %v", mapped, ok)
	}
}

func TestJournalWritesToMatchedItem(t *testing.T) {
	a, client, store := newAssembler(t, scriptDecider{provide: "Q77"})
	id, err := a.Journal(context.Background(), journalCitation())
	if err != nil {
		t.Fatal(err)
	}
	if id != "Q77" {
		t.Fatalf("id %q", id)
	}
	if len(client.written) != 1 || client.written[0].ID != "Q77" {
		t.Fatalf("written %+v", client.written)
	}
	if len(client.created) != 0 {
		t.Fatalf("created %+v", client.created)
	}
	if mapped, _ := store.Identifier(mapstore.ClassJournal, "101084"); mapped != "Q77" {
		t.Fatalf("mapping %q", mapped)
	}
}

func articleCitation() *model.Record {
	citation := rec("MedlineCitation", "",
		attrs(rec("PMID", "12345"), "Version", "1"),
		rec("DateRevised", "",
			rec("Year", "2021"), rec("Month", "06"), rec("Day", "15")),
		rec("Article", "",
			rec("Journal", "",
				rec("Title", "Journal of Testing"),
				attrs(rec("JournalIssue", "",
					rec("Volume", "12"),
					rec("Issue", "3"),
					rec("PubDate", "", rec("Year", "2020"), rec("Month", "Jan")),
				), "CitedMedium", "Internet"),
			),
			rec("ArticleTitle", "A study of things."),
			rec("Pagination", "",
				rec("StartPage", "1"), rec("EndPage", "10"), rec("MedlinePgn", "1-10")),
			rec("Abstract", "",
				rec("AbstractText", "We did things. It worked.")),
			attrs(rec("AuthorList", "",
				rec("Author", "",
					rec("LastName", "Smith"),
					rec("ForeName", "Jane"),
					rec("Initials", "J"),
				),
			), "CompleteYN", "Y"),
			rec("Language", "eng"),
			rec("PublicationTypeList", "",
				rec("PublicationType", "Journal Article")),
		),
		rec("CitationSubset", "IM"),
	)
	citation.Children[2].Attrs = map[string]string{"PubModel": "Print"}
	return attrs(citation, "Status", "MEDLINE", "Owner", "NLM", "IndexingMethod", "Curated")
}

func TestArticleAssembles(t *testing.T) {
	a, client, store := newAssembler(t, scriptDecider{})
	id, err := a.Article(context.Background(), articleCitation(), "Q500")
	if err != nil {
		t.Fatal(err)
	}
	// One item for the new author, one for the article itself.
	if len(client.created) != 2 {
		t.Fatalf("created %d items", len(client.created))
	}
	author, article := client.created[0], client.created[1]
	if author.Labels["en"] != "Jane Smith" {
		t.Fatalf("author label %+v", author.Labels)
	}
	if mapped, _ := store.Identifier(mapstore.ClassAuthor, "Jane Smith"); mapped != author.ID {
		t.Fatalf("author mapping %q vs %q", mapped, author.ID)
	}
	if article.ID != id {
		t.Fatalf("article id %q vs %q", article.ID, id)
	}
	if mapped, _ := store.Identifier(mapstore.ClassArticle, "12345"); mapped != id {
		t.Fatalf("article mapping mismatch")
	}

	if article.Order[0] != model.PropInstanceOf {
		t.Fatalf("first property %s", article.Order[0])
	}
	for _, property := range []string{
		model.PropPublishedIn, model.PropLanguageOfWork, model.PropTitle,
		model.PropPMID, model.PropInDatabase, model.PropVolume, model.PropIssue,
		model.PropStartPage, model.PropEndPage, model.PropPagination,
		model.PropPublicationDate, model.PropDateIssued, model.PropAbstract,
		model.PropAuthor, model.PropCitationSubset, model.PropPublicationType,
		model.PropPublicationModel,
	} {
		if len(article.Claims[property]) == 0 {
			t.Errorf("missing claim %s", property)
		}
	}
	if got := len(article.Claims[model.PropAbstract]); got != 2 {
		t.Fatalf("abstract sentences %d", got)
	}
	authorClaim := article.Claims[model.PropAuthor][0]
	value := authorClaim.MainSnak.DataValue.Value.(map[string]any)
	if value["id"] != author.ID {
		t.Fatalf("author claim points at %v", value["id"])
	}
	inDB := article.Claims[model.PropInDatabase][0]
	for _, q := range []string{
		model.PropDateRevised, model.PropIndexingMethod,
		model.PropRecordStatus, model.PropOwner, model.PropCitedMedium,
	} {
		if len(inDB.Qualifiers[q]) == 0 {
			t.Errorf("in-database missing qualifier %s", q)
		}
	}
}

func TestArticleIdempotent(t *testing.T) {
	a, client, store := newAssembler(t, scriptDecider{})
	if err := store.Commit(mapstore.ClassArticle, "12345", "Q600"); err != nil {
		t.Fatal(err)
	}
	id, err := a.Article(context.Background(), articleCitation(), "Q500")
	if err != nil {
		t.Fatal(err)
	}
	if id != "Q600" {
		t.Fatalf("id %q", id)
	}
	if len(client.created)+len(client.written) != 0 {
		t.Fatal("idempotent path must not write")
	}
}

func TestArticleUnsupportedElement(t *testing.T) {
	a, _, _ := newAssembler(t, scriptDecider{})
	citation := articleCitation()
	citation.Children = append(citation.Children, rec("SpaceFlightMission", "STS-1"))
	_, err := a.Article(context.Background(), citation, "Q500")
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}

func TestArticleRejectsUnknownOwner(t *testing.T) {
	a, _, _ := newAssembler(t, scriptDecider{})
	citation := articleCitation()
	citation.Attrs["Owner"] = "PIP"
	_, err := a.Article(context.Background(), citation, "Q500")
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}

func TestArticleMedlineDateRange(t *testing.T) {
	a, client, _ := newAssembler(t, scriptDecider{})
	citation := articleCitation()
	issue := citation.Child("Article").Child("Journal").Child("JournalIssue")
	issue.Children[2] = rec("PubDate", "", rec("MedlineDate", "1999 Jan-Mar"))
	_, err := a.Article(context.Background(), citation, "Q500")
	if err != nil {
		t.Fatal(err)
	}
	article := client.created[len(client.created)-1]
	pub := article.Claims[model.PropPublicationDate][0]
	value := pub.MainSnak.DataValue.Value.(map[string]any)
	if value["time"] != "+1999-00-00T00:00:00Z" || value["precision"] != 9 {
		t.Fatalf("shared date %+v", value)
	}
	if len(pub.Qualifiers[model.PropEarliestDate]) != 1 || len(pub.Qualifiers[model.PropLatestDate]) != 1 {
		t.Fatalf("range qualifiers %+v", pub.Qualifiers)
	}
}
