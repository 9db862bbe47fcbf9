package keyword

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/units"
)

// DataItemName is the name of the single item of a data record.
const DataItemName = "data"

// RecordTemplate describes the items of one record.
type RecordTemplate struct {
	items []ItemSpec
	data  bool
}

// NewRecord returns a template holding items in order.
func NewRecord(items ...ItemSpec) RecordTemplate {
	return RecordTemplate{items: append([]ItemSpec(nil), items...)}
}

// NewDataRecord returns the template of a data keyword: one item consuming every value.
func NewDataRecord(item ItemSpec) RecordTemplate {
	if item.Name == "" {
		item.Name = DataItemName
	}
	item.Cardinality = All
	return RecordTemplate{items: []ItemSpec{item}, data: true}
}

func (t RecordTemplate) IsDataRecord() bool { return t.data }
func (t RecordTemplate) Len() int           { return len(t.items) }
func (t RecordTemplate) Item(i int) ItemSpec {
	return t.items[i]
}

// Items returns a copy of the item specs.
func (t RecordTemplate) Items() []ItemSpec { return append([]ItemSpec(nil), t.items...) }

// ItemIndex returns the position of the named item, or -1.
func (t RecordTemplate) ItemIndex(name string) int {
	for i, it := range t.items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

func (t RecordTemplate) HasDimension() bool {
	for _, it := range t.items {
		if it.HasDimension() {
			return true
		}
	}
	return false
}

func (t RecordTemplate) Equal(o RecordTemplate) bool {
	if t.data != o.data || len(t.items) != len(o.items) {
		return false
	}
	for i := range t.items {
		if !t.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}

func (t RecordTemplate) String() string {
	parts := make([]string, 0, len(t.items))
	for _, it := range t.items {
		parts = append(parts, it.String())
	}
	prefix := "record"
	if t.data {
		prefix = "data record"
	}
	return prefix + " [" + strings.Join(parts, "; ") + "]"
}

func (t RecordTemplate) validate(kw string) error {
	seen := make(map[string]bool, len(t.items))
	for i, it := range t.items {
		if err := it.validate(kw); err != nil {
			return err
		}
		if seen[it.Name] {
			return configErr(kw, "items", "duplicate item name %s", it.Name)
		}
		seen[it.Name] = true
		if it.Cardinality == All && i != len(t.items)-1 {
			return configErr(kw, "items", "item %s consumes the rest of the record and must be last", it.Name)
		}
	}
	if t.data && len(t.items) != 1 {
		return configErr(kw, "data", "a data record holds exactly one item")
	}
	return nil
}

// slot is one value position of a record after repeat counts are expanded.
type slot struct {
	tok       string
	defaulted bool
}

// expandTokens resolves the N* (N defaults) and N*v (N copies of v) shorthands.
// Quoted tokens are never expanded.
func expandTokens(tokens []string) []slot {
	out := make([]slot, 0, len(tokens))
	for _, tok := range tokens {
		star := strings.IndexByte(tok, '*')
		if star < 0 || tok[0] == '\'' || tok[0] == '"' {
			out = append(out, slot{tok: tok})
			continue
		}
		n := 1
		if star > 0 {
			var err error
			if n, err = strconv.Atoi(tok[:star]); err != nil || n <= 0 {
				out = append(out, slot{tok: tok})
				continue
			}
		}
		val := tok[star+1:]
		for i := 0; i < n; i++ {
			out = append(out, slot{tok: val, defaulted: val == ""})
		}
	}
	return out
}

// recordContext names the record being parsed in errors and diagnostics.
type recordContext struct {
	keyword  string
	location deck.Location
	index    int
	sink     diag.Sink
}

func (c recordContext) valueErr(item, tok, msg string, err error) *ValueError {
	return &ValueError{
		Keyword:  c.keyword,
		Location: c.location,
		Record:   c.index,
		Item:     item,
		Token:    tok,
		Msg:      msg,
		Err:      err,
	}
}

// parse applies the template to one raw record.
func (t RecordTemplate) parse(ctx recordContext, raw deck.RawRecord) (*deck.Record, error) {
	slots := expandTokens(raw.Tokens)
	rec := &deck.Record{Items: make([]*deck.Item, 0, len(t.items))}
	pos := 0
	for _, spec := range t.items {
		item := &deck.Item{Name: spec.Name, Type: spec.Type}
		if len(spec.Dimensions) > 0 {
			item.Dimensions = append([]string(nil), spec.Dimensions...)
		}
		if spec.Cardinality == All {
			for ; pos < len(slots); pos++ {
				v, err := spec.slotValue(ctx, slots[pos])
				if err != nil {
					return nil, err
				}
				item.Values = append(item.Values, v)
			}
			if len(item.Values) == 0 && spec.hasDef {
				item.Values = append(item.Values, spec.def)
			}
		} else {
			var v deck.Value
			var err error
			if pos < len(slots) {
				v, err = spec.slotValue(ctx, slots[pos])
				pos++
			} else {
				v, err = spec.slotValue(ctx, slot{defaulted: true})
			}
			if err != nil {
				return nil, err
			}
			item.Values = []deck.Value{v}
		}
		rec.Items = append(rec.Items, item)
	}
	if pos < len(slots) {
		ctx.sink.Report(diag.Diagnostic{
			Severity: diag.SeverityWarning,
			Code:     diag.CodeExtraData,
			Keyword:  ctx.keyword,
			Location: ctx.location,
			Message:  fmt.Sprintf("record %d: %d extra value(s) ignored", ctx.index, len(slots)-pos),
		})
	}
	return rec, nil
}

func (it ItemSpec) slotValue(ctx recordContext, s slot) (deck.Value, error) {
	if s.defaulted {
		if !it.hasDef {
			return deck.Value{}, ctx.valueErr(it.Name, "", "no value and no default", nil)
		}
		return it.def, nil
	}
	v, err := it.parseToken(s.tok)
	if err != nil {
		return deck.Value{}, ctx.valueErr(it.Name, s.tok, "cannot read "+it.Type.String(), err)
	}
	return v, nil
}

// ApplyUnits converts the dimensioned DOUBLE items of rec to SI.
func (t RecordTemplate) ApplyUnits(sys units.System, rec *deck.Record) error {
	for i, item := range rec.Items {
		if i >= len(t.items) || !t.items[i].HasDimension() || item.Type != deck.TypeDouble {
			continue
		}
		factors := make(map[string]float64, len(item.Dimensions))
		for _, dim := range item.Dimensions {
			if _, ok := factors[dim]; ok {
				continue
			}
			f, err := sys.Factor(dim)
			if err != nil {
				return fmt.Errorf("item %s: %w", item.Name, err)
			}
			factors[dim] = f
		}
		si := make([]float64, len(item.Values))
		for j, v := range item.Values {
			si[j] = v.Double * factors[item.Dimension(j)]
		}
		item.SetSI(si)
	}
	return nil
}
