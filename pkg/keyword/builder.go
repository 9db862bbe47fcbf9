package keyword

import (
	"fmt"
	"regexp"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
)

// Builder collects the parts of a Schema. Build validates them once and returns the
// immutable schema; a Builder should not be reused after Build.
type Builder struct {
	name         string
	deckNames    []string
	hasDeckNames bool
	regex        string
	hasRegex     bool
	size         Size
	table        bool
	records      []RecordTemplate
	sections     []string
	description  string

	// lenient is set when malformed deck name expressions are downgraded to warnings.
	lenient  diag.Sink
	location deck.Location
}

// NewBuilder starts a schema called name. The size defaults to Fixed{0}.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// DeckNames replaces the default deck name (the canonical name) by names.
func (b *Builder) DeckNames(names ...string) *Builder {
	b.hasDeckNames = true
	b.deckNames = append(b.deckNames, names...)
	return b
}

// MatchRegex makes the schema also match deck names fully matching expr.
// It suppresses the default deck name unless DeckNames adds it back.
func (b *Builder) MatchRegex(expr string) *Builder {
	b.regex = expr
	b.hasRegex = true
	return b
}

func (b *Builder) Size(s Size) *Builder {
	b.size = s
	return b
}

// SizeFrom sizes the keyword from item of the last parsed keyword, plus shift.
func (b *Builder) SizeFrom(keyword, item string, shift int) *Builder {
	return b.Size(FromKeyword{Keyword: keyword, Item: item, Shift: shift})
}

// TableCollection marks a keyword-derived size as counting tables.
func (b *Builder) TableCollection(on bool) *Builder {
	b.table = on
	return b
}

func (b *Builder) Sections(names ...string) *Builder {
	b.sections = append(b.sections, names...)
	return b
}

func (b *Builder) Description(text string) *Builder {
	b.description = text
	return b
}

// Record appends a record template made of items.
func (b *Builder) Record(items ...ItemSpec) *Builder {
	b.records = append(b.records, NewRecord(items...))
	return b
}

// DataRecord appends the single data record of a data keyword.
func (b *Builder) DataRecord(item ItemSpec) *Builder {
	b.records = append(b.records, NewDataRecord(item))
	return b
}

// Templates appends prepared record templates, such as those of another schema.
func (b *Builder) Templates(ts ...RecordTemplate) *Builder {
	b.records = append(b.records, ts...)
	return b
}

// LenientRegex reports malformed deck name expressions to sink and ignores them instead of
// failing Build.
func (b *Builder) LenientRegex(sink diag.Sink) *Builder {
	b.lenient = diag.OrDiscard(sink)
	return b
}

// At records where the definition came from, for diagnostics.
func (b *Builder) At(loc deck.Location) *Builder {
	b.location = loc
	return b
}

// Build validates the collected parts and returns the schema.
func (b *Builder) Build() (*Schema, error) {
	if !ValidInternalName(b.name) {
		return nil, configErr(b.name, "name", "invalid keyword name %q", b.name)
	}
	s := &Schema{
		name:            b.name,
		deckNames:       make(map[string]struct{}),
		size:            b.size,
		tableCollection: b.table,
		records:         append([]RecordTemplate(nil), b.records...),
		sections:        make(map[string]struct{}, len(b.sections)),
		description:     b.description,
	}
	if s.size == nil {
		s.size = Fixed{N: 0}
	}
	if err := b.validateSize(s.size); err != nil {
		return nil, err
	}

	if !b.hasDeckNames && !b.hasRegex {
		s.deckNames[b.name] = struct{}{}
	}
	for _, n := range b.deckNames {
		if n == "" {
			return nil, configErr(b.name, "deck_names", "empty deck name")
		}
		s.deckNames[n] = struct{}{}
	}
	for _, n := range b.sections {
		s.sections[n] = struct{}{}
	}

	for i, r := range s.records {
		if err := r.validate(b.name); err != nil {
			return nil, err
		}
		if r.IsDataRecord() {
			if i != 0 || len(s.records) != 1 {
				return nil, configErr(b.name, "data", "a data record must be the only record")
			}
			if f, ok := s.size.(Fixed); !ok || f.N != 1 {
				return nil, configErr(b.name, "data", "a data record requires fixed size 1, got %s", s.size)
			}
		}
	}

	if b.hasRegex {
		re, err := regexp.Compile(`^(?:` + b.regex + `)$`)
		switch {
		case err == nil:
			s.regex = re
			s.regexSrc = b.regex
		case b.lenient != nil:
			b.lenient.Report(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Code:     diag.CodeMalformedRegex,
				Keyword:  b.name,
				Location: b.location,
				Message:  fmt.Sprintf("ignoring malformed deck name expression %q: %v", b.regex, err),
			})
		default:
			return nil, &ConfigError{Keyword: b.name, Field: "deck_name_regex", Msg: "malformed expression", Err: err}
		}
	}
	return s, nil
}

func (b *Builder) validateSize(size Size) error {
	switch sz := size.(type) {
	case Fixed:
		if sz.N < 0 {
			return configErr(b.name, "size", "negative fixed size %d", sz.N)
		}
	case FromKeyword:
		if sz.Keyword == "" || sz.Item == "" {
			return configErr(b.name, "size", "a keyword derived size needs both keyword and item")
		}
	case TerminatorDelimited, Unknown:
	default:
		return configErr(b.name, "size", "unsupported size %v", size)
	}
	if b.table {
		if _, ok := size.(FromKeyword); !ok {
			return configErr(b.name, "num_tables", "a table collection must be sized from another keyword")
		}
	}
	return nil
}
