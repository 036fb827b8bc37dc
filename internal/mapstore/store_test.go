package mapstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLookupMissingTable(t *testing.T) {
	s := Open(t.TempDir(), "testwiki")
	if _, ok := s.Lookup(ClassAuthor, "Smith, Jane"); ok {
		t.Fatal("expected miss on empty store")
	}
}

func TestCommitAndLookup(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, "testwiki")
	if err := s.Commit(ClassMesh, "Humans", "Q42"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	id, ok := s.Identifier(ClassMesh, "Humans")
	if !ok || id != "Q42" {
		t.Fatalf("got %q ok=%v, want Q42", id, ok)
	}

	// A fresh store must see the committed entry from disk.
	s2 := Open(dir, "testwiki")
	id, ok = s2.Identifier(ClassMesh, "Humans")
	if !ok || id != "Q42" {
		t.Fatalf("reload: got %q ok=%v, want Q42", id, ok)
	}
}

func TestCommitWritesThroughImmediately(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, "testwiki")
	if err := s.Commit(ClassCountry, "France", "Q7"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "pubmed-countries.json"))
	if err != nil {
		t.Fatalf("table not on disk after commit: %v", err)
	}
	var table map[string]map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if table["France"]["testwiki"] != "Q7" {
		t.Fatalf("got %v", table["France"])
	}
}

func TestCommitAuxPreservesNamespaces(t *testing.T) {
	s := Open(t.TempDir(), "testwiki")
	if err := s.Commit(ClassMesh, "Anemia", "Q100"); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitAux(ClassMesh, "Anemia", "mesh", "D000740"); err != nil {
		t.Fatal(err)
	}
	e, ok := s.Lookup(ClassMesh, "Anemia")
	if !ok {
		t.Fatal("entry missing")
	}
	if id, _ := e.Get("testwiki"); id != "Q100" {
		t.Fatalf("target id clobbered: %q", id)
	}
	if ui, _ := e.Get("mesh"); ui != "D000740" {
		t.Fatalf("aux missing: %q", ui)
	}
}

func TestIdentifiersLiftsScalar(t *testing.T) {
	s := Open(t.TempDir(), "testwiki")
	if err := s.Commit(ClassAffiliation, "MIT", "Q1"); err != nil {
		t.Fatal(err)
	}
	ids, ok := s.Identifiers(ClassAffiliation, "MIT")
	if !ok || len(ids) != 1 || ids[0] != "Q1" {
		t.Fatalf("got %v ok=%v", ids, ok)
	}
}

func TestCommitListRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, "testwiki")
	want := []string{"Q1", "Q2"}
	if err := s.CommitList(ClassAffiliation, "MIT and Harvard", want); err != nil {
		t.Fatal(err)
	}
	s2 := Open(dir, "testwiki")
	ids, ok := s2.Identifiers(ClassAffiliation, "MIT and Harvard")
	if !ok || len(ids) != 2 || ids[0] != "Q1" || ids[1] != "Q2" {
		t.Fatalf("got %v ok=%v", ids, ok)
	}
}

func TestPlaceholderDoesNotClobber(t *testing.T) {
	s := Open(t.TempDir(), "testwiki")
	if err := s.Commit(ClassKeyword, "genomics", "Q9"); err != nil {
		t.Fatal(err)
	}
	if err := s.Placeholder(ClassKeyword, "genomics"); err != nil {
		t.Fatal(err)
	}
	if id, ok := s.Identifier(ClassKeyword, "genomics"); !ok || id != "Q9" {
		t.Fatalf("placeholder clobbered entry: %q ok=%v", id, ok)
	}

	if err := s.Placeholder(ClassKeyword, "proteomics"); err != nil {
		t.Fatal(err)
	}
	e, ok := s.Lookup(ClassKeyword, "proteomics")
	if !ok || len(e) != 0 {
		t.Fatalf("want empty placeholder entry, got %v ok=%v", e, ok)
	}
	if _, ok := s.Identifier(ClassKeyword, "proteomics"); ok {
		t.Fatal("placeholder must not resolve to an identifier")
	}
}

func TestKeysAreLiteral(t *testing.T) {
	s := Open(t.TempDir(), "testwiki")
	if err := s.Commit(ClassLanguage, "eng", "Q11"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Identifier(ClassLanguage, "Eng"); ok {
		t.Fatal("lookup must be case-sensitive")
	}
	if _, ok := s.Identifier(ClassLanguage, " eng"); ok {
		t.Fatal("lookup must not trim whitespace")
	}
}

func TestFlushSortsKeys(t *testing.T) {
	dir := t.TempDir()
	s := Open(dir, "testwiki")
	for _, k := range []string{"zebra", "alpha", "mango"} {
		if err := s.Commit(ClassSubset, k, "Q1"); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(s.Path(ClassSubset))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	a, m, z := strings.Index(text, `"alpha"`), strings.Index(text, `"mango"`), strings.Index(text, `"zebra"`)
	if !(a < m && m < z) {
		t.Fatalf("keys not sorted on disk: alpha=%d mango=%d zebra=%d", a, m, z)
	}
}
