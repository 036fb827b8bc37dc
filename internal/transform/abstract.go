package transform

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
)

// Truncation markers the source catalog embeds in shortened abstracts, in
// match priority order.
const (
	truncated250 = "ABSTRACT TRUNCATED AT 250 WORDS"
	truncated400 = "ABSTRACT TRUNCATED AT 400 WORDS"
	truncatedGen = "ABSTRACT TRUNCATED"
)

// lineHeadingRe matches a capitalized run of up to 20 word characters
// followed by a colon at a line or text start.
var lineHeadingRe = regexp.MustCompile(`(?m)(?:^|\.\n{1,2})\s*([A-Z][\w ]{0,19}):\s`)

// Abstract is the transformed abstract: one monolingual sentence claim per
// sentence, ordered, plus the trailing copyright statement when the source
// carried one (handed off to the copyright transformer).
type Abstract struct {
	Sentences []model.Claim
	Copyright string
}

// ProcessAbstract segments an abstract element into ordered sentence claims.
// Structured abstracts contribute heading qualifiers per sentence; truncated
// abstracts attach a truncation-amount qualifier to every sentence.
func ProcessAbstract(ctx context.Context, deps *Deps, abstract *model.Record, langs []Language) (*Abstract, error) {
	if abstract == nil {
		return &Abstract{}, nil
	}
	out := &Abstract{Copyright: abstract.Text("CopyrightInformation")}

	parts := abstract.Items("AbstractText")
	if len(parts) == 0 {
		return out, nil
	}
	full := joinParts(parts)
	lang := abstractLanguage(deps, parts, langs, full)
	tok := TokenizerFor(deps.Codes.Tokenizer(tokenizerCode(langs, lang)))
	truncQ, hasTrunc := truncation(full)

	type segment struct {
		text     string
		label    string
		category string // NlmCategory attribute value, resolved below
	}
	var segments []segment

	switch {
	case structuredByAttr(parts):
		for _, part := range parts {
			label, _ := part.Attr("Label")
			category, _ := part.Attr("NlmCategory")
			segments = append(segments, segment{text: part.Value, label: label, category: category})
		}
	default:
		headings := detectHeadings(full)
		if len(headings) == 0 {
			segments = append(segments, segment{text: full})
			break
		}
		for i, h := range headings {
			end := len(full)
			if i+1 < len(headings) {
				end = headings[i+1].start
			}
			text := strings.TrimSpace(full[h.end:end])
			segments = append(segments, segment{text: text, label: h.label})
		}
	}

	ordinal := 1
	for _, seg := range segments {
		var categoryItem string
		if seg.category != "" {
			item, err := deps.Resolver.Resolve(ctx, mapstore.ClassNlmCategory, seg.category, "abstract heading category")
			if err != nil {
				return nil, err
			}
			categoryItem = item
		}
		for _, sentence := range tok.Tokenize(seg.text) {
			claim := model.TextClaim(sentence, lang).
				Qualify(model.PropSeriesOrdinal, model.QuantityClaim(ordinal, ""))
			if seg.label != "" {
				claim = claim.Qualify(model.PropHeadingLabel, model.TextClaim(seg.label, lang))
			}
			if categoryItem != "" {
				claim = claim.Qualify(model.PropHeadingCategory, model.ItemClaim(categoryItem))
			}
			if hasTrunc {
				claim = claim.Qualify(model.PropTruncatedAt, truncQ)
			}
			out.Sentences = append(out.Sentences, claim)
			ordinal++
		}
	}
	return out, nil
}

func joinParts(parts []*model.Record) string {
	if len(parts) == 1 {
		return parts[0].Value
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.Value)
	}
	return strings.Join(texts, " ")
}

func structuredByAttr(parts []*model.Record) bool {
	for _, p := range parts {
		if _, ok := p.Attr("NlmCategory"); ok {
			return true
		}
	}
	return false
}

// abstractLanguage prefers an explicit Language attribute on a part, then
// the declared article language, then detection.
func abstractLanguage(deps *Deps, parts []*model.Record, langs []Language, full string) string {
	for _, p := range parts {
		if code, ok := p.Attr("Language"); ok {
			if iso, ok := deps.Codes.ISO6391(code); ok {
				return iso
			}
		}
	}
	return TextLanguage(deps, langs, full)
}

func langCode(langs []Language) string {
	if len(langs) > 0 {
		return langs[0].Code
	}
	return ""
}

// tokenizerCode returns the catalog code of the language the sentence claims
// are tagged with, so segmentation and tagging agree. A tag matching no
// declared language falls back to the first declared one.
func tokenizerCode(langs []Language, iso string) string {
	for _, l := range langs {
		if l.ISO == iso {
			return l.Code
		}
	}
	return langCode(langs)
}

func truncation(text string) (model.Claim, bool) {
	switch {
	case strings.Contains(text, truncated250):
		return model.QuantityClaim(250, model.ItemWord), true
	case strings.Contains(text, truncated400):
		return model.QuantityClaim(400, model.ItemWord), true
	case strings.Contains(text, truncatedGen):
		return model.QuantityClaim(4096, model.ItemCharacter), true
	}
	return model.Claim{}, false
}

type heading struct {
	label string
	start int // offset of the heading text
	end   int // offset just past the colon separator
}

// detectHeadings finds section headings in raw abstract text: bold-tagged
// tokens followed by a colon when the text carries markup, capitalized runs
// followed by a colon at line starts otherwise.
func detectHeadings(text string) []heading {
	if strings.Contains(text, "<b>") {
		return boldHeadings(text)
	}
	var out []heading
	for _, m := range lineHeadingRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, heading{
			label: text[m[2]:m[3]],
			start: m[2],
			end:   m[1],
		})
	}
	return out
}

// boldHeadings walks the markup with an HTML tokenizer and keeps each <b>
// run that is immediately followed by a colon.
func boldHeadings(text string) []heading {
	var out []heading
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	inBold := false
	var label strings.Builder
	var boldStart int
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "b" {
				inBold = true
				label.Reset()
				boldStart = offset
			}
		case html.TextToken:
			if inBold {
				label.WriteString(raw)
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "b" && inBold {
				inBold = false
				end := offset + len(raw)
				rest := text[end:]
				if strings.HasPrefix(rest, ": ") || strings.HasPrefix(rest, ":") {
					sep := end + 1
					if strings.HasPrefix(rest, ": ") {
						sep = end + 2
					}
					l := strings.TrimSpace(label.String())
					if l != "" && len(l) <= 20 {
						out = append(out, heading{label: l, start: boldStart, end: sep})
					}
				}
			}
		}
		offset += len(raw)
	}
	return out
}
