package transform

import (
	"strings"

	"github.com/openlitdb/litbridge/internal/model"
)

// ProcessCOIStatement turns the conflict-of-interest statement into a
// language-tagged text claim.
func ProcessCOIStatement(deps *Deps, citation *model.Record, langs []Language) (model.Claim, bool) {
	text := strings.TrimSpace(citation.Text("CoiStatement"))
	if text == "" {
		return model.Claim{}, false
	}
	claim := model.TextClaim(text, TextLanguage(deps, langs, text)).
		WithReference(model.PubMedReference())
	return claim, true
}
