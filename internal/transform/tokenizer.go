package transform

import (
	"strings"
	"unicode"
)

// SentenceTokenizer splits prose into sentences. Segmentation quality only
// needs to be stable, not perfect: each sentence becomes one ordered claim,
// and a rerun must produce the same split.
type SentenceTokenizer interface {
	Tokenize(text string) []string
}

// ruleTokenizer is a boundary-rule splitter with a per-language abbreviation
// guard list, so "et al." or "z. B." does not end a sentence.
type ruleTokenizer struct {
	abbreviations map[string]bool
}

var tokenizers = map[string]SentenceTokenizer{
	"english": &ruleTokenizer{abbreviations: toSet(
		"al", "approx", "dr", "e.g", "ed", "eds", "et", "etc", "fig", "figs",
		"i.e", "jr", "mr", "mrs", "ms", "no", "p", "pp", "prof", "st", "vol", "vs",
	)},
	"german": &ruleTokenizer{abbreviations: toSet(
		"abb", "bzw", "ca", "d.h", "dr", "etc", "evtl", "ggf", "nr", "prof",
		"s", "u.a", "usw", "vgl", "z.b",
	)},
	"french": &ruleTokenizer{abbreviations: toSet(
		"cf", "dr", "e.g", "etc", "fig", "m", "mlle", "mme", "p.ex", "vol",
	)},
	"spanish": &ruleTokenizer{abbreviations: toSet(
		"dr", "dra", "etc", "fig", "p.ej", "sr", "sra", "vol",
	)},
	"portuguese": &ruleTokenizer{abbreviations: toSet(
		"dr", "dra", "etc", "fig", "p.ex", "sr", "sra", "vol",
	)},
}

var defaultTokenizer = tokenizers["english"]

// TokenizerFor returns the sentence tokenizer registered under the language
// table's tokenizer name, falling back to the english rules.
func TokenizerFor(name string) SentenceTokenizer {
	if t, ok := tokenizers[name]; ok {
		return t
	}
	return defaultTokenizer
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Tokenize splits on terminal punctuation followed by whitespace and an
// upper-case or digit start, unless the preceding word is a known
// abbreviation or a single initial.
func (t *ruleTokenizer) Tokenize(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		if !unicode.IsSpace(runes[i+1]) {
			continue
		}
		next := nextNonSpace(runes, i+1)
		if next < 0 || !(unicode.IsUpper(runes[next]) || unicode.IsDigit(runes[next])) {
			continue
		}
		if runes[i] == '.' && t.guarded(runes, start, i) {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(string(runes[start:i+1])))
		start = next
	}
	tail := strings.TrimSpace(string(runes[start:]))
	if tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// guarded reports whether the word ending at the period is an abbreviation
// or a bare initial.
func (t *ruleTokenizer) guarded(runes []rune, start, period int) bool {
	wordStart := period
	for wordStart > start && !unicode.IsSpace(runes[wordStart-1]) {
		wordStart--
	}
	word := strings.ToLower(strings.TrimRight(string(runes[wordStart:period]), "."))
	if word == "" {
		return false
	}
	if t.abbreviations[word] {
		return true
	}
	// A single letter before the period is almost always an initial.
	if len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true
	}
	return false
}

func nextNonSpace(runes []rune, from int) int {
	for i := from; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
