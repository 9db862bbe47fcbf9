package keyword

import (
	"fmt"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/units"
)

// State is the read-only view of previously parsed keywords used to resolve
// keyword-derived sizes. *deck.Deck implements it.
type State interface {
	Last(name string) (*deck.Keyword, bool)
}

// ResolveSize returns the number of records (or tables) one occurrence should have, or -1
// when the schema declares no count.
func (s *Schema) ResolveSize(state State) (int, error) {
	switch sz := s.size.(type) {
	case Fixed:
		return sz.N, nil
	case FromKeyword:
		return s.resolveFromKeyword(sz, state)
	default:
		return -1, nil
	}
}

func (s *Schema) resolveFromKeyword(sz FromKeyword, state State) (int, error) {
	fail := func(format string, args ...any) (int, error) {
		return 0, &SizeError{Keyword: s.name, Ref: sz.Keyword, Item: sz.Item, Msg: fmt.Sprintf(format, args...)}
	}
	if state == nil {
		return fail("no parsed keywords available")
	}
	kw, ok := state.Last(sz.Keyword)
	if !ok {
		return fail("keyword %s has not been parsed", sz.Keyword)
	}
	if kw.Size() == 0 {
		return fail("keyword %s has no records", sz.Keyword)
	}
	item := kw.Record(0).ItemByName(sz.Item)
	if item == nil || item.Len() == 0 {
		return fail("keyword %s has no value for item %s", sz.Keyword, sz.Item)
	}
	if item.Type != deck.TypeInt {
		return fail("item %s is %s, not INT", sz.Item, item.Type)
	}
	n := item.Int(0) + sz.Shift
	if n < 0 {
		return fail("resolved size %d is negative", n)
	}
	return n, nil
}

// Parse turns one finished raw occurrence into a parsed keyword. state resolves
// keyword-derived sizes; recoverable conditions go to sink, which may be nil.
func (s *Schema) Parse(raw *deck.RawKeyword, state State, sink diag.Sink) (*deck.Keyword, error) {
	if !raw.Finished {
		return nil, s.structureErr(raw, "tried to create a deck keyword from an incomplete raw keyword")
	}
	expected, err := s.ResolveSize(state)
	if err != nil {
		return nil, err
	}

	records := raw.Records
	if f, ok := s.size.(Fixed); ok {
		if len(records) > f.N {
			return nil, s.structureErr(raw, fmt.Sprintf("%d records, fixed size is %d", len(records), f.N))
		}
		// Records the occurrence left out are built from defaults.
		for len(records) < f.N {
			records = append(records[:len(records):len(records)], deck.RawRecord{})
		}
	}

	kw := deck.NewKeyword(raw.Name, raw.Location)
	kw.SetDataKeyword(s.IsDataKeyword())
	kw.SetExpectedSize(expected)
	ctx := recordContext{keyword: raw.Name, location: raw.Location, sink: diag.OrDiscard(sink)}
	for i, rr := range records {
		if len(s.records) == 0 {
			if rr.Len() > 0 {
				return nil, s.structureErr(raw, "missing item information")
			}
			kw.AddRecord(&deck.Record{})
			continue
		}
		tmpl, _ := s.Record(i)
		ctx.index = i
		rec, err := tmpl.parse(ctx, rr)
		if err != nil {
			return nil, err
		}
		kw.AddRecord(rec)
	}

	switch s.size.(type) {
	case Fixed, Unknown:
		kw.SetFixedSize()
	case FromKeyword:
		if !s.tableCollection {
			kw.SetFixedSize()
		}
	}
	return kw, nil
}

func (s *Schema) structureErr(raw *deck.RawKeyword, msg string) *StructureError {
	return &StructureError{Keyword: raw.Name, Location: raw.Location, Msg: msg}
}

// ApplyUnits converts every dimensioned value of kw, which must have been parsed by s, to SI.
func (s *Schema) ApplyUnits(sys units.System, kw *deck.Keyword) error {
	for i, rec := range kw.Records {
		tmpl, ok := s.Record(i)
		if !ok {
			return nil
		}
		if err := tmpl.ApplyUnits(sys, rec); err != nil {
			return fmt.Errorf("keyword %s record %d: %w", kw.Name, i, err)
		}
	}
	return nil
}
