// Package mapstore persists the mention→identifier tables, one JSON document
// per entity class. Tables are loaded lazily, mutated in place, and rewritten
// whole on every commit so a confirmed mapping is never lost to a crash.
//
// Keys are literal: lookups are case- and whitespace-sensitive, with no
// normalization before matching. This mirrors the inconsistency of the source
// corpus and is a known limitation, not an oversight; similarity is applied
// only after a miss, by the resolver. Entries are never deleted.
package mapstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Class identifies one entity class and therefore one backing table.
type Class string

const (
	ClassAffiliation Class = "affiliation"
	ClassAuthor      Class = "author"
	ClassGrant       Class = "grant"
	ClassGrantCode   Class = "grantcode"
	ClassCountry     Class = "country"
	ClassLanguage    Class = "language"
	ClassMesh        Class = "mesh"
	ClassKeyword     Class = "keyword"
	ClassPubType     Class = "pubtype"
	ClassSubset      Class = "subset"
	ClassNlmCategory Class = "nlmcategory"
	ClassJournal     Class = "journal"
	ClassArticle     Class = "article"
	ClassWikidata    Class = "wikidata"
)

// Classes lists every entity class, in table-file order.
func Classes() []Class {
	return []Class{
		ClassAffiliation, ClassAuthor, ClassGrant, ClassGrantCode,
		ClassCountry, ClassLanguage, ClassMesh, ClassKeyword,
		ClassPubType, ClassSubset, ClassNlmCategory,
		ClassJournal, ClassArticle, ClassWikidata,
	}
}

// Filenames follow the original table layout so existing curated tables
// remain usable.
var filenames = map[Class]string{
	ClassAffiliation: "pubmed-affiliation-mappings.json",
	ClassAuthor:      "pubmed-authors.json",
	ClassGrant:       "pubmed-grants.json",
	ClassGrantCode:   "pubmed-grant-codes.json",
	ClassCountry:     "pubmed-countries.json",
	ClassLanguage:    "pubmed-language-mappings.json",
	ClassMesh:        "pubmed-mesh-headings.json",
	ClassKeyword:     "pubmed-keywords.json",
	ClassPubType:     "pubmed-publication-types.json",
	ClassSubset:      "pubmed-citation-subset.json",
	ClassNlmCategory: "pubmed-nlmcategory.json",
	ClassJournal:     "nlm-wikibase-mapping.json",
	ClassArticle:     "pmid-wikibase-mapping.json",
	ClassWikidata:    "wikidata-xref-mapping.json",
}

// Entry is one mapping table value: a JSON object keyed by namespace. The
// configured target namespace holds the target identifier (scalar or list);
// other namespaces hold auxiliary identifiers (a MeSH UI, an ISO code, a
// Wikidata QID).
type Entry map[string]any

// Get returns the scalar value stored under a namespace.
func (e Entry) Get(namespace string) (string, bool) {
	v, ok := e[namespace]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetList returns the value under a namespace as a list, lifting a scalar to
// a one-element list. Callers must handle both stored shapes; a compound
// mention may map to several target items.
func (e Entry) GetList(namespace string) ([]string, bool) {
	v, ok := e[namespace]
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case string:
		return []string{val}, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return val, true
	default:
		return nil, false
	}
}

// Store owns the in-memory tables and their on-disk JSON documents.
// Single-process, sequential use is assumed; there is no concurrent-writer
// protection.
type Store struct {
	dir       string
	namespace string
	tables    map[Class]map[string]Entry
}

// Open returns a store rooted at dir. namespace is the target knowledge-base
// name used as the dictionary key inside every entry. Tables load on first
// use; a missing file is an empty table.
func Open(dir, namespace string) *Store {
	return &Store{
		dir:       dir,
		namespace: namespace,
		tables:    make(map[Class]map[string]Entry),
	}
}

// Namespace returns the target namespace key this store resolves against.
func (s *Store) Namespace() string {
	return s.namespace
}

// Path returns the backing file path for an entity class.
func (s *Store) Path(class Class) string {
	return filepath.Join(s.dir, filenames[class])
}

func (s *Store) table(class Class) (map[string]Entry, error) {
	if t, ok := s.tables[class]; ok {
		return t, nil
	}
	t := make(map[string]Entry)
	data, err := os.ReadFile(s.Path(class))
	if err == nil {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse mapping table %s: %w", filenames[class], err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read mapping table %s: %w", filenames[class], err)
	}
	s.tables[class] = t
	return t, nil
}

// flush rewrites the whole table: UTF-8, pretty-printed, sorted keys, so the
// file stays reviewable by hand. The write goes through a temp file and a
// rename so the table on disk is always last-known-good.
func (s *Store) flush(class Class) error {
	t := s.tables[class]
	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal mapping table %s: %w", filenames[class], err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}
	path := s.Path(class)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write mapping table %s: %w", filenames[class], err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace mapping table %s: %w", filenames[class], err)
	}
	return nil
}

// Lookup returns the entry stored under a literal key.
func (s *Store) Lookup(class Class, key string) (Entry, bool) {
	t, err := s.table(class)
	if err != nil {
		return nil, false
	}
	e, ok := t[key]
	return e, ok
}

// Identifier returns the scalar target identifier for a key in the
// configured namespace.
func (s *Store) Identifier(class Class, key string) (string, bool) {
	e, ok := s.Lookup(class, key)
	if !ok {
		return "", false
	}
	return e.Get(s.namespace)
}

// Identifiers returns the target identifier(s) for a key, in list shape.
func (s *Store) Identifiers(class Class, key string) ([]string, bool) {
	e, ok := s.Lookup(class, key)
	if !ok {
		return nil, false
	}
	return e.GetList(s.namespace)
}

// Aux returns an auxiliary namespace value for a key (e.g. the MeSH UI
// recorded beside the target identifier).
func (s *Store) Aux(class Class, key, namespace string) (string, bool) {
	e, ok := s.Lookup(class, key)
	if !ok {
		return "", false
	}
	return e.Get(namespace)
}

// Commit records a confirmed mapping and flushes the table before returning,
// so the caller only ever sees durably stored identifiers.
func (s *Store) Commit(class Class, key, identifier string) error {
	return s.CommitAux(class, key, s.namespace, identifier)
}

// CommitList records a multi-identifier mapping (compound mention) and
// flushes the table.
func (s *Store) CommitList(class Class, key string, identifiers []string) error {
	t, err := s.table(class)
	if err != nil {
		return err
	}
	e, ok := t[key]
	if !ok {
		e = Entry{}
		t[key] = e
	}
	e[s.namespace] = identifiers
	return s.flush(class)
}

// CommitAux records a value under an arbitrary namespace and flushes.
func (s *Store) CommitAux(class Class, key, namespace, value string) error {
	t, err := s.table(class)
	if err != nil {
		return err
	}
	e, ok := t[key]
	if !ok {
		e = Entry{}
		t[key] = e
	}
	e[namespace] = value
	return s.flush(class)
}

// Placeholder records a key with an empty entry so an unresolved mention is
// visible in the table for later completion. Existing entries are untouched.
func (s *Store) Placeholder(class Class, key string) error {
	t, err := s.table(class)
	if err != nil {
		return err
	}
	if _, ok := t[key]; ok {
		return nil
	}
	t[key] = Entry{}
	return s.flush(class)
}

// Count returns the number of keys in a table.
func (s *Store) Count(class Class) (int, error) {
	t, err := s.table(class)
	if err != nil {
		return 0, err
	}
	return len(t), nil
}

// Entries returns a copy of a table's key set, for inspection commands.
func (s *Store) Entries(class Class) (map[string]Entry, error) {
	t, err := s.table(class)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Entry, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out, nil
}
