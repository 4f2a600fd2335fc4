package entity

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the four trait buckets a dictionary word belongs to.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
	CategoryD Category = "D"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryA, CategoryB, CategoryC, CategoryD}

// ParseCategory accepts a category letter in any case.
func ParseCategory(raw string) (Category, bool) {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryA:
		return CategoryA, true
	case CategoryB:
		return CategoryB, true
	case CategoryC:
		return CategoryC, true
	case CategoryD:
		return CategoryD, true
	default:
		return "", false
	}
}

// DictionaryKey names one of the weight dictionaries.
type DictionaryKey string

const (
	DictionarySelf     DictionaryKey = "self"
	DictionaryConcept  DictionaryKey = "concept"
	DictionaryAdjusted DictionaryKey = "adjusted"
)

// ParseDictionaryKey converts a raw key into a DictionaryKey.
func ParseDictionaryKey(raw string) (DictionaryKey, error) {
	switch key := DictionaryKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case DictionarySelf, DictionaryConcept, DictionaryAdjusted:
		return key, nil
	default:
		return "", fmt.Errorf("unknown dictionary %q", raw)
	}
}

// WeightEntry is a normalized dictionary word with its category and weight.
type WeightEntry struct {
	Word     string   `json:"word"`
	Category Category `json:"category"`
	Weight   int      `json:"weight"`
}

// WeightDictionary maps normalized words to their entry.
type WeightDictionary map[string]WeightEntry

// CategoryCapacity holds per-category weight sums.
type CategoryCapacity map[Category]int

// Capacity sums every entry's weight into its category. Categories without entries are 0.
func (d WeightDictionary) Capacity() CategoryCapacity {
	capacity := CategoryCapacity{CategoryA: 0, CategoryB: 0, CategoryC: 0, CategoryD: 0}
	for _, entry := range d {
		capacity[entry.Category] += entry.Weight
	}
	return capacity
}

// WeightSet bundles the three dictionaries loaded from one algorithm version.
type WeightSet struct {
	Version  int              `json:"version"`
	Self     WeightDictionary `json:"self"`
	Concept  WeightDictionary `json:"concept"`
	Adjusted WeightDictionary `json:"adjusted"`
}

// EmptyWeightSet returns a set with three empty dictionaries and version 0.
func EmptyWeightSet() *WeightSet {
	return &WeightSet{
		Self:     WeightDictionary{},
		Concept:  WeightDictionary{},
		Adjusted: WeightDictionary{},
	}
}

// Dictionary returns the dictionary for key, or nil when the key is unknown.
func (s *WeightSet) Dictionary(key DictionaryKey) WeightDictionary {
	if s == nil {
		return nil
	}
	switch key {
	case DictionarySelf:
		return s.Self
	case DictionaryConcept:
		return s.Concept
	case DictionaryAdjusted:
		return s.Adjusted
	default:
		return nil
	}
}

// Capacities returns the category capacity of every dictionary in the set.
func (s *WeightSet) Capacities() map[DictionaryKey]CategoryCapacity {
	return map[DictionaryKey]CategoryCapacity{
		DictionarySelf:     s.Dictionary(DictionarySelf).Capacity(),
		DictionaryConcept:  s.Dictionary(DictionaryConcept).Capacity(),
		DictionaryAdjusted: s.Dictionary(DictionaryAdjusted).Capacity(),
	}
}

// IsEmpty reports whether every dictionary is empty.
func (s *WeightSet) IsEmpty() bool {
	return s == nil || (len(s.Self) == 0 && len(s.Concept) == 0 && len(s.Adjusted) == 0)
}

// RawWeight is a weight table row as stored by the weight source.
type RawWeight struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
}

// Algorithm is one published version of the weight tables.
type Algorithm struct {
	ID           int64       `json:"id"`
	Version      int         `json:"version"`
	IsGlobal     bool        `json:"is_global"`
	SelfTable    []RawWeight `json:"self_table"`
	ConceptTable []RawWeight `json:"conc_table"`
	AdjustTable  []RawWeight `json:"adjust_table"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Table returns the raw table backing a dictionary key.
func (a *Algorithm) Table(key DictionaryKey) []RawWeight {
	switch key {
	case DictionarySelf:
		return a.SelfTable
	case DictionaryConcept:
		return a.ConceptTable
	case DictionaryAdjusted:
		return a.AdjustTable
	default:
		return nil
	}
}
