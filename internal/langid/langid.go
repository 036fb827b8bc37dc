// Package langid answers language questions for text fields: mapping the
// source catalog's three-letter language codes through the language table,
// and statistically detecting the language of untagged text.
package langid

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/openlitdb/litbridge/internal/mapstore"
)

// Auxiliary namespaces stored in the language table beside the target item.
const (
	NamespaceISO6391   = "iso639-1"
	NamespaceTokenizer = "tokenizer"
)

// Detector wraps a statistical language detector. Building the underlying
// models is expensive; construct once and share.
type Detector struct {
	inner lingua.LanguageDetector
}

// NewDetector builds a detector over all supported languages.
func NewDetector() *Detector {
	return &Detector{
		inner: lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build(),
	}
}

// Detect returns the ISO 639-1 code of the most likely language of text.
func (d *Detector) Detect(text string) (string, bool) {
	lang, ok := d.inner.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Codes resolves a catalog language code (e.g. "eng") to its ISO 639-1 code
// and target item through the language table.
type Codes struct {
	Store *mapstore.Store
}

// ISO6391 returns the two-letter code for a catalog language code.
func (c *Codes) ISO6391(code string) (string, bool) {
	return c.Store.Aux(mapstore.ClassLanguage, code, NamespaceISO6391)
}

// Item returns the target item for a catalog language code.
func (c *Codes) Item(code string) (string, bool) {
	return c.Store.Identifier(mapstore.ClassLanguage, code)
}

// Tokenizer returns the sentence-tokenizer model name for a catalog language
// code, "" when the table carries none for it.
func (c *Codes) Tokenizer(code string) string {
	t, _ := c.Store.Aux(mapstore.ClassLanguage, code, NamespaceTokenizer)
	return t
}
