package transform

import (
	"context"

	"github.com/openlitdb/litbridge/internal/langid"
	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// Language is one resolved article language: the catalog code, the two-letter
// code used to tag monolingual text, and the target item.
type Language struct {
	Code string // catalog three-letter code, e.g. "eng"
	ISO  string // ISO 639-1 code used as the text language tag
	Item string // target item identifier
}

// ProcessLanguages resolves every Language child of the article element.
// Multi-language records keep list shape; downstream claims fork per entry.
func ProcessLanguages(ctx context.Context, deps *Deps, article *model.Record) ([]Language, error) {
	var out []Language
	for _, rec := range article.Items("Language") {
		code := rec.Value
		if code == "" {
			continue
		}
		item, err := deps.Resolver.Resolve(ctx, mapstore.ClassLanguage, code, "article language code")
		if err != nil {
			return nil, err
		}
		iso, ok := deps.Codes.ISO6391(code)
		if !ok {
			return nil, &model.MissingMappingError{Class: "language/" + langid.NamespaceISO6391, Mention: code}
		}
		out = append(out, Language{Code: code, ISO: iso, Item: item})
	}
	if len(out) == 0 {
		return nil, &model.UnrecognizedShapeError{Field: "Language", Value: "(absent)"}
	}
	return out, nil
}

// TextLanguage returns the language tag for a piece of text: the declared
// article language when there is exactly one, statistical detection when the
// record declares several.
func TextLanguage(deps *Deps, langs []Language, text string) string {
	if len(langs) == 1 {
		return langs[0].ISO
	}
	if deps.Detector != nil {
		if iso, ok := deps.Detector.Detect(text); ok {
			return iso
		}
	}
	if len(langs) > 0 {
		return langs[0].ISO
	}
	return "en"
}
