package transform

import (
	"context"
	"testing"

	"github.com/openlitdb/litbridge/internal/langid"
	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/resolve"
)

// failDecider rejects every candidate and provides nothing, so any table
// miss in a test surfaces as MissingMapping.
type failDecider struct{}

func (failDecider) Confirm(ctx context.Context, q resolve.Question) (bool, error) {
	return false, nil
}

func (failDecider) Provide(ctx context.Context, q resolve.Question) (string, error) {
	return "", nil
}

func testDeps(t *testing.T) (*Deps, *mapstore.Store) {
	t.Helper()
	store := mapstore.Open(t.TempDir(), "testwiki")
	mustCommit := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	mustCommit(store.Commit(mapstore.ClassLanguage, "eng", "Q11"))
	mustCommit(store.CommitAux(mapstore.ClassLanguage, "eng", langid.NamespaceISO6391, "en"))
	mustCommit(store.CommitAux(mapstore.ClassLanguage, "eng", langid.NamespaceTokenizer, "english"))
	deps := &Deps{
		Resolver: &resolve.Resolver{Store: store, Decider: failDecider{}},
		Codes:    &langid.Codes{Store: store},
	}
	return deps, store
}

func englishLangs() []Language {
	return []Language{{Code: "eng", ISO: "en", Item: "Q11"}}
}

func abstractRecord(parts ...*model.Record) *model.Record {
	return &model.Record{Name: "Abstract", Children: parts}
}

func textPart(value string, attrs map[string]string) *model.Record {
	return &model.Record{Name: "AbstractText", Value: value, Attrs: attrs}
}

func TestProcessAbstractUnstructured(t *testing.T) {
	deps, _ := testDeps(t)
	rec := abstractRecord(textPart("First sentence here. Second sentence follows.", nil))
	out, err := ProcessAbstract(context.Background(), deps, rec, englishLangs())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sentences) != 2 {
		t.Fatalf("got %d sentences", len(out.Sentences))
	}
	for i, claim := range out.Sentences {
		if claim.Type != model.DatatypeMonolingualText || claim.Language != "en" {
			t.Fatalf("sentence %d: %+v", i, claim)
		}
		if len(claim.Qualifiers) != 1 || claim.Qualifiers[0].Property != model.PropSeriesOrdinal {
			t.Fatalf("sentence %d qualifiers: %+v", i, claim.Qualifiers)
		}
		if claim.Qualifiers[0].Claim.Amount != i+1 {
			t.Fatalf("sentence %d ordinal %d", i, claim.Qualifiers[0].Claim.Amount)
		}
	}
}

func TestProcessAbstractStructuredByAttr(t *testing.T) {
	deps, store := testDeps(t)
	if err := store.Commit(mapstore.ClassNlmCategory, "BACKGROUND", "Q901"); err != nil {
		t.Fatal(err)
	}
	if err := store.Commit(mapstore.ClassNlmCategory, "METHODS", "Q902"); err != nil {
		t.Fatal(err)
	}
	rec := abstractRecord(
		textPart("Context was studied.", map[string]string{"Label": "BACKGROUND", "NlmCategory": "BACKGROUND"}),
		textPart("We measured things. Twice.", map[string]string{"Label": "METHODS", "NlmCategory": "METHODS"}),
	)
	out, err := ProcessAbstract(context.Background(), deps, rec, englishLangs())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sentences) != 3 {
		t.Fatalf("got %d sentences", len(out.Sentences))
	}

	first := out.Sentences[0]
	var sawLabel, sawCategory bool
	for _, q := range first.Qualifiers {
		switch q.Property {
		case model.PropHeadingLabel:
			sawLabel = true
			if q.Claim.Value != "BACKGROUND" {
				t.Fatalf("label %q", q.Claim.Value)
			}
		case model.PropHeadingCategory:
			sawCategory = true
			if q.Claim.Value != "Q901" {
				t.Fatalf("category %q", q.Claim.Value)
			}
		}
	}
	if !sawLabel || !sawCategory {
		t.Fatalf("missing heading qualifiers: %+v", first.Qualifiers)
	}

	// Ordinals run across the whole abstract, not per section.
	last := out.Sentences[2]
	for _, q := range last.Qualifiers {
		if q.Property == model.PropSeriesOrdinal && q.Claim.Amount != 3 {
			t.Fatalf("last ordinal %d", q.Claim.Amount)
		}
	}
}

func TestProcessAbstractTruncation(t *testing.T) {
	deps, _ := testDeps(t)
	rec := abstractRecord(textPart("Something happened. (ABSTRACT TRUNCATED AT 250 WORDS)", nil))
	out, err := ProcessAbstract(context.Background(), deps, rec, englishLangs())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sentences) == 0 {
		t.Fatal("no sentences")
	}
	for i, claim := range out.Sentences {
		found := false
		for _, q := range claim.Qualifiers {
			if q.Property == model.PropTruncatedAt {
				found = true
				if q.Claim.Amount != 250 || q.Claim.Unit != model.ItemWord {
					t.Fatalf("truncation qualifier %+v", q.Claim)
				}
			}
		}
		if !found {
			t.Fatalf("sentence %d missing truncation qualifier", i)
		}
	}
}

func TestProcessAbstractTokenizerFollowsTaggedLanguage(t *testing.T) {
	deps, store := testDeps(t)
	mustCommit := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	mustCommit(store.Commit(mapstore.ClassLanguage, "fre", "Q150"))
	mustCommit(store.CommitAux(mapstore.ClassLanguage, "fre", langid.NamespaceISO6391, "fr"))
	mustCommit(store.CommitAux(mapstore.ClassLanguage, "fre", langid.NamespaceTokenizer, "french"))

	langs := []Language{
		{Code: "eng", ISO: "en", Item: "Q11"},
		{Code: "fre", ISO: "fr", Item: "Q150"},
	}
	// "Mme." is a French abbreviation; the English guard list does not know
	// it, so segmenting with the wrong tokenizer would split mid-name.
	rec := abstractRecord(textPart(
		"Mme. Curie a isolé le radium. Elle a reçu deux prix Nobel.",
		map[string]string{"Language": "fre"},
	))
	out, err := ProcessAbstract(context.Background(), deps, rec, langs)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Sentences) != 2 {
		t.Fatalf("got %d sentences: %+v", len(out.Sentences), out.Sentences)
	}
	for i, claim := range out.Sentences {
		if claim.Language != "fr" {
			t.Fatalf("sentence %d tagged %q", i, claim.Language)
		}
	}
}

func TestProcessAbstractCopyrightHandoff(t *testing.T) {
	deps, _ := testDeps(t)
	rec := abstractRecord(textPart("A sentence.", nil))
	rec.Children = append(rec.Children, &model.Record{
		Name:  "CopyrightInformation",
		Value: "© 2024. The Author(s).",
	})
	out, err := ProcessAbstract(context.Background(), deps, rec, englishLangs())
	if err != nil {
		t.Fatal(err)
	}
	if out.Copyright != "© 2024. The Author(s)." {
		t.Fatalf("copyright %q", out.Copyright)
	}
}

func TestDetectHeadingsBold(t *testing.T) {
	text := "<b>Background</b>: Things exist. <b>Methods</b>: We looked."
	headings := detectHeadings(text)
	if len(headings) != 2 {
		t.Fatalf("got %d headings: %+v", len(headings), headings)
	}
	if headings[0].label != "Background" || headings[1].label != "Methods" {
		t.Fatalf("labels: %+v", headings)
	}
}

func TestDetectHeadingsLineStart(t *testing.T) {
	text := "Background: Things exist and persist.\nMethods: We looked closely."
	headings := detectHeadings(text)
	if len(headings) != 2 {
		t.Fatalf("got %d headings: %+v", len(headings), headings)
	}
}

func TestDetectHeadingsNone(t *testing.T) {
	if got := detectHeadings("Just plain prose without sections at all."); len(got) != 0 {
		t.Fatalf("unexpected headings: %+v", got)
	}
}

func TestTokenizerAbbreviationGuard(t *testing.T) {
	tok := TokenizerFor("english")
	sentences := tok.Tokenize("Results were shown by Smith et al. Previous work agreed. Done.")
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences: %q", len(sentences), sentences)
	}
	if sentences[0] != "Results were shown by Smith et al. Previous work agreed." {
		t.Fatalf("first sentence split inside the abbreviation: %q", sentences[0])
	}
}

func TestTokenizerInitialGuard(t *testing.T) {
	tok := TokenizerFor("english")
	sentences := tok.Tokenize("J. Smith agreed. The end came.")
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences: %q", len(sentences), sentences)
	}
}
