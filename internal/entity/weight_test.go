package entity

import "testing"

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"A", "b", " C ", "d"} {
		if _, ok := ParseCategory(raw); !ok {
			t.Fatalf("expected %q to parse", raw)
		}
	}
	for _, raw := range []string{"", "E", "AB", "1"} {
		if _, ok := ParseCategory(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestWeightDictionaryCapacity(t *testing.T) {
	dict := WeightDictionary{
		"relaxed":    {Word: "relaxed", Category: CategoryA, Weight: 4},
		"calm":       {Word: "calm", Category: CategoryA, Weight: 6},
		"persuasive": {Word: "persuasive", Category: CategoryB, Weight: 3},
	}
	got := dict.Capacity()
	want := CategoryCapacity{CategoryA: 10, CategoryB: 3, CategoryC: 0, CategoryD: 0}
	for _, c := range Categories {
		if got[c] != want[c] {
			t.Fatalf("category %s: got %d, want %d", c, got[c], want[c])
		}
	}
	if len(got) != len(Categories) {
		t.Fatalf("expected every category present, got %v", got)
	}

	var empty WeightDictionary
	for _, c := range Categories {
		if empty.Capacity()[c] != 0 {
			t.Fatalf("empty dictionary must have zero capacity")
		}
	}
}

func TestWeightSetDictionary(t *testing.T) {
	set := EmptyWeightSet()
	set.Adjusted["calm"] = WeightEntry{Word: "calm", Category: CategoryA, Weight: 1}
	if len(set.Dictionary(DictionaryAdjusted)) != 1 {
		t.Fatalf("expected adjusted dictionary")
	}
	if set.Dictionary("unknown") != nil {
		t.Fatalf("unknown key must yield nil")
	}
	if set.IsEmpty() {
		t.Fatalf("set with entries is not empty")
	}
	if _, err := ParseDictionaryKey("Concept"); err != nil {
		t.Fatalf("parse dictionary key: %v", err)
	}
	if _, err := ParseDictionaryKey("other"); err == nil {
		t.Fatalf("expected error for unknown dictionary")
	}
}

func TestResultTypeForAttempt(t *testing.T) {
	if ResultTypeForAttempt(1) != ResultTypeOriginal {
		t.Fatalf("first attempt must be original")
	}
	if ResultTypeForAttempt(2) != ResultTypeAdjust || ResultTypeForAttempt(17) != ResultTypeAdjust {
		t.Fatalf("retakes must be adjust")
	}
	if _, err := ParseResultType("Adjust"); err != nil {
		t.Fatalf("parse result type: %v", err)
	}
	if _, err := ParseResultType("final"); err != ErrInvalidResultType {
		t.Fatalf("expected ErrInvalidResultType, got %v", err)
	}
}
