package serialize

import (
	"errors"
	"testing"

	"github.com/openlitdb/litbridge/internal/model"
)

func TestStatementItemWithReference(t *testing.T) {
	s := New("https://wiki.example.org")
	claim := model.ItemClaim("Q7205").WithReference(model.PubMedReference())
	st, err := s.Statement(model.PropInstanceOf, claim)
	if err != nil {
		t.Fatal(err)
	}
	if st.MainSnak.SnakType != "value" || st.MainSnak.Property != model.PropInstanceOf {
		t.Fatalf("main snak %+v", st.MainSnak)
	}
	value, ok := st.MainSnak.DataValue.Value.(map[string]any)
	if !ok || value["id"] != "Q7205" {
		t.Fatalf("datavalue %+v", st.MainSnak.DataValue)
	}
	if len(st.References) != 1 {
		t.Fatalf("references %+v", st.References)
	}
	snaks := st.References[0].Snaks[model.PropStatedIn]
	if len(snaks) != 1 {
		t.Fatalf("stated-in snaks %+v", st.References[0])
	}
}

func TestStatementTimeRendering(t *testing.T) {
	s := New("")
	st, err := s.Statement(model.PropPublicationDate, model.TimeClaim("2020-01-00", model.PrecisionMonth))
	if err != nil {
		t.Fatal(err)
	}
	value := st.MainSnak.DataValue.Value.(map[string]any)
	if value["time"] != "+2020-01-00T00:00:00Z" {
		t.Fatalf("time %v", value["time"])
	}
	if value["precision"] != 10 {
		t.Fatalf("precision %v", value["precision"])
	}
}

func TestStatementQuantityUnit(t *testing.T) {
	s := New("https://wiki.example.org")
	claim := model.TextClaim("A sentence.", "en").
		Qualify(model.PropTruncatedAt, model.QuantityClaim(250, model.ItemWord))
	st, err := s.Statement(model.PropAbstract, claim)
	if err != nil {
		t.Fatal(err)
	}
	snaks := st.Qualifiers[model.PropTruncatedAt]
	if len(snaks) != 1 {
		t.Fatalf("qualifiers %+v", st.Qualifiers)
	}
	value := snaks[0].DataValue.Value.(map[string]any)
	if value["amount"] != "+250" {
		t.Fatalf("amount %v", value["amount"])
	}
	if value["unit"] != "https://wiki.example.org/entity/"+model.ItemWord {
		t.Fatalf("unit %v", value["unit"])
	}
}

func TestStatementDimensionlessQuantity(t *testing.T) {
	s := New("")
	claim := model.ItemClaim("Q1").
		Qualify(model.PropSeriesOrdinal, model.QuantityClaim(3, "")).
		WithReference(model.PubMedReference())
	st, err := s.Statement(model.PropAuthor, claim)
	if err != nil {
		t.Fatal(err)
	}
	value := st.Qualifiers[model.PropSeriesOrdinal][0].DataValue.Value.(map[string]any)
	if value["unit"] != "1" {
		t.Fatalf("unit %v", value["unit"])
	}
}

func TestStatementQualifierNotAllowed(t *testing.T) {
	s := New("")
	claim := model.TextClaim("Title", "en").
		Qualify(model.PropSeriesOrdinal, model.QuantityClaim(1, ""))
	_, err := s.Statement(model.PropTitle, claim)
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}

func TestStatementUnknownProperty(t *testing.T) {
	s := New("")
	_, err := s.Statement("P9999", model.StringClaim("x"))
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}

func TestStatementDatatypeMismatch(t *testing.T) {
	s := New("")
	_, err := s.Statement(model.PropPMID, model.ItemClaim("Q1"))
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}

func TestStatementNoValue(t *testing.T) {
	s := New("")
	st, err := s.Statement(model.PropHeadingCategory, model.Claim{Type: model.DatatypeItem, NoValue: true})
	if err != nil {
		t.Fatal(err)
	}
	if st.MainSnak.SnakType != "novalue" || st.MainSnak.DataValue != nil {
		t.Fatalf("snak %+v", st.MainSnak)
	}
}

func TestEntityPreservesOrderAndAliases(t *testing.T) {
	s := New("")
	g := model.NewClaimGraph()
	g.Set(model.PropInstanceOf, model.ItemClaim("Q7205"))
	g.Set(model.PropTitle, model.TextClaim("Journal of Testing", "en"))
	g.Add(model.PropLanguageOfWork, model.ItemClaim("Q11"))
	g.Add(model.PropLanguageOfWork, model.ItemClaim("Q12"))
	g.AddAlias("en", "J Test")

	e, err := s.Entity(g)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{model.PropInstanceOf, model.PropTitle, model.PropLanguageOfWork}
	if len(e.Order) != len(want) {
		t.Fatalf("order %v", e.Order)
	}
	for i, p := range want {
		if e.Order[i] != p {
			t.Fatalf("order %v, want %v", e.Order, want)
		}
	}
	if len(e.Claims[model.PropLanguageOfWork]) != 2 {
		t.Fatalf("language claims %+v", e.Claims[model.PropLanguageOfWork])
	}
	if len(e.Aliases["en"]) != 1 || e.Aliases["en"][0] != "J Test" {
		t.Fatalf("aliases %+v", e.Aliases)
	}
}

func TestEntityRejectsBadClaim(t *testing.T) {
	s := New("")
	g := model.NewClaimGraph()
	g.Set(model.PropPMID, model.ItemClaim("Q1"))
	if _, err := s.Entity(g); err == nil {
		t.Fatal("expected error for mismatched datatype")
	}
}
