package transform

import (
	"errors"
	"testing"

	"github.com/openlitdb/litbridge/internal/model"
)

func identifier(source, value string) *model.Record {
	return &model.Record{
		Name:  "Identifier",
		Value: value,
		Attrs: map[string]string{"Source": source},
	}
}

func TestAuthorORCIDFoundAfterOtherIdentifier(t *testing.T) {
	rec := &model.Record{Name: "Author", Children: []*model.Record{
		identifier("GRID", "grid.38142.3c"),
		identifier("ORCID", "0000-0002-1825-0097"),
	}}
	orcid, err := authorORCID(rec)
	if err != nil {
		t.Fatal(err)
	}
	if orcid != "0000-0002-1825-0097" {
		t.Fatalf("got %q", orcid)
	}
}

func TestAuthorORCIDUnknownSourceOnly(t *testing.T) {
	rec := &model.Record{Name: "Author", Children: []*model.Record{
		identifier("GRID", "grid.38142.3c"),
	}}
	_, err := authorORCID(rec)
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}

func TestAuthorORCIDAbsent(t *testing.T) {
	orcid, err := authorORCID(&model.Record{Name: "Author"})
	if err != nil || orcid != "" {
		t.Fatalf("got %q err=%v", orcid, err)
	}
}
