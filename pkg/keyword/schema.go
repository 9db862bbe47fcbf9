// Package keyword implements the schema model of deck keywords: how the raw records of one
// keyword occurrence are sized, typed and turned into parsed records, and which schema a deck
// token selects.
package keyword

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Schema is the immutable description of one deck keyword.
// A Schema is safe for concurrent use once built.
type Schema struct {
	name            string
	deckNames       map[string]struct{}
	regexSrc        string
	regex           *regexp.Regexp
	size            Size
	tableCollection bool
	records         []RecordTemplate
	sections        map[string]struct{}
	description     string
}

// Name returns the canonical name.
func (s *Schema) Name() string { return s.name }

func (s *Schema) Description() string { return s.description }

// DeckNames returns the accepted deck names, sorted.
func (s *Schema) DeckNames() []string {
	return sortedKeys(s.deckNames)
}

func (s *Schema) HasDeckName(name string) bool {
	_, ok := s.deckNames[name]
	return ok
}

func (s *Schema) HasMultipleDeckNames() bool { return len(s.deckNames) > 1 }

func (s *Schema) HasMatchRegex() bool { return s.regex != nil }

// MatchRegex returns the source of the deck name expression, or "".
func (s *Schema) MatchRegex() string { return s.regexSrc }

// Matches reports whether the deck token name selects this schema.
// Names that are not valid deck names never match.
func (s *Schema) Matches(name string) bool {
	if !ValidDeckName(name) {
		return false
	}
	if _, ok := s.deckNames[name]; ok {
		return true
	}
	return s.regex != nil && s.regex.MatchString(name)
}

func (s *Schema) Size() Size { return s.size }

func (s *Schema) HasFixedSize() bool {
	_, ok := s.size.(Fixed)
	return ok
}

// FixedSize returns the record count of a fixed size keyword.
func (s *Schema) FixedSize() (int, bool) {
	f, ok := s.size.(Fixed)
	return f.N, ok
}

func (s *Schema) IsTableCollection() bool { return s.tableCollection }

// IsDataKeyword reports whether the keyword holds one unstructured list of values.
func (s *Schema) IsDataKeyword() bool {
	return len(s.records) > 0 && s.records[0].IsDataRecord()
}

func (s *Schema) HasDimension() bool {
	for _, r := range s.records {
		if r.HasDimension() {
			return true
		}
	}
	return false
}

// Sections returns the sections the keyword is valid in, sorted. Empty means everywhere.
func (s *Schema) Sections() []string {
	return sortedKeys(s.sections)
}

func (s *Schema) ValidSection(section string) bool {
	if len(s.sections) == 0 {
		return true
	}
	_, ok := s.sections[section]
	return ok
}

func (s *Schema) NumRecords() int { return len(s.records) }

// Records returns a copy of the record templates.
func (s *Schema) Records() []RecordTemplate { return slices.Clone(s.records) }

// Record returns template i; indexes past the end reuse the last template.
// It returns false for a keyword without templates.
func (s *Schema) Record(i int) (RecordTemplate, bool) {
	if len(s.records) == 0 {
		return RecordTemplate{}, false
	}
	if i >= len(s.records) {
		return s.records[len(s.records)-1], true
	}
	return s.records[i], true
}

// Equal reports whether s and o describe the same keyword. Descriptions and sections are
// not compared.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if !maps.Equal(s.deckNames, o.deckNames) {
		return false
	}
	if s.name != o.name ||
		s.regexSrc != o.regexSrc ||
		s.IsDataKeyword() != o.IsDataKeyword() ||
		s.tableCollection != o.tableCollection ||
		!sameSize(s.size, o.size) {
		return false
	}
	return slices.EqualFunc(s.records, o.records, RecordTemplate.Equal)
}

// sameSize compares variants and, for Fixed and FromKeyword, their parameters.
func sameSize(a, b Size) bool {
	switch a := a.(type) {
	case Fixed:
		b, ok := b.(Fixed)
		return ok && a.N == b.N
	case FromKeyword:
		b, ok := b.(FromKeyword)
		return ok && a == b
	case TerminatorDelimited:
		_, ok := b.(TerminatorDelimited)
		return ok
	case Unknown:
		_, ok := b.(Unknown)
		return ok
	}
	return false
}

func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString("keyword " + s.name + " " + s.size.String() + " {")
	for _, r := range s.records {
		b.WriteString("\n  " + r.String())
	}
	if len(s.records) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// sortedKeys returns the keys of m in sorted order (nil when m is empty).
func sortedKeys(m map[string]struct{}) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
