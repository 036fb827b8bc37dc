package transform

import (
	"errors"
	"testing"

	"github.com/openlitdb/litbridge/internal/model"
)

func TestTypedRegistryProperty(t *testing.T) {
	cases := []struct {
		registry string
		want     string
	}{
		{"0", ""},
		{"362O9ITL9D", model.PropUNII},
		{"1.1.1.1", model.PropECNumber},
		{"50-00-0", model.PropCASNumber},
	}
	for _, c := range cases {
		got, err := typedRegistryProperty(c.registry)
		if err != nil {
			t.Fatalf("%q: %v", c.registry, err)
		}
		if got != c.want {
			t.Errorf("typedRegistryProperty(%q) = %q, want %q", c.registry, got, c.want)
		}
	}
}

func TestTypedRegistryPropertyUnknownShape(t *testing.T) {
	_, err := typedRegistryProperty("not a registry number")
	var shape *model.UnrecognizedShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("want UnrecognizedShapeError, got %v", err)
	}
}
