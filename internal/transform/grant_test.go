package transform

import "testing"

func TestNormalizeGrantID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"R01 CA123456", "R01 CA123456"},
		{"R01CA123456/CA/NCI NIH HHS/United States", "R01CA123456"},
		{"R01: CA123456", "R01 CA123456"},
		{"N.A.", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalizeGrantID(c.raw); got != c.want {
			t.Errorf("normalizeGrantID(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestDecomposeGrantID(t *testing.T) {
	p := decomposeGrantID("R01 CA123456", "CA")
	if p.mechanism != "R" {
		t.Errorf("mechanism = %q", p.mechanism)
	}
	if p.activityCode != "R01" {
		t.Errorf("activity code = %q", p.activityCode)
	}
	if p.acronym != "CA" {
		t.Errorf("acronym = %q", p.acronym)
	}
	if p.serial != "123456" {
		t.Errorf("serial = %q", p.serial)
	}
}

func TestDecomposeGrantIDNoDeclaredAcronym(t *testing.T) {
	p := decomposeGrantID("K23 MH095109", "")
	if p.activityCode != "K23" || p.acronym != "MH" || p.serial != "095109" {
		t.Errorf("got %+v", p)
	}
}

func TestDecomposeGrantIDHierarchicalAcronym(t *testing.T) {
	// A hierarchical acronym collapses to the institute code read off the
	// identifier remainder.
	p := decomposeGrantID("U01 HL123456", "NHLBI")
	if p.acronym != "HL" {
		t.Errorf("acronym = %q", p.acronym)
	}
	if p.serial != "123456" {
		t.Errorf("serial = %q", p.serial)
	}
}

func TestDecomposeGrantIDNoActivityCode(t *testing.T) {
	p := decomposeGrantID("MC_UU_12345", "MRC")
	if p.mechanism != "" || p.activityCode != "" {
		t.Errorf("got %+v", p)
	}
}
