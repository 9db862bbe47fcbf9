package keyword

import (
	"github.com/shpitdev/deckschema/pkg/config"
	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
)

// Option adjusts how FromConfig builds a schema.
type Option func(*Builder)

// WithLenientRegex downgrades malformed deck_name_regex values to a warning on sink.
func WithLenientRegex(sink diag.Sink) Option {
	return func(b *Builder) { b.LenientRegex(sink) }
}

// WithSource records the definition file for diagnostics.
func WithSource(file string) Option {
	return func(b *Builder) { b.location.File = file }
}

// FromConfig builds a schema from one keyword definition object.
//
// Recognized members: name, deck_names, deck_name_regex, sections, size, num_tables, items,
// records, data and description.
func FromConfig(v config.Value, opts ...Option) (*Schema, error) {
	if !v.IsObject() {
		return nil, configErr("", "", "keyword definition must be an object")
	}
	if !v.Has("name") {
		return nil, configErr("", "name", "definition is missing the 'name' property")
	}
	name, err := v.GetString("name")
	if err != nil {
		return nil, &ConfigError{Field: "name", Msg: "invalid name", Err: err}
	}

	b := NewBuilder(name)
	for _, opt := range opts {
		opt(b)
	}
	b.location.Line = v.Line()

	if v.Has("items") && v.Has("records") {
		return nil, configErr(name, "items", "can not have both records and items")
	}

	size, table, err := sizeFromConfig(name, v)
	if err != nil {
		return nil, err
	}
	b.Size(size).TableCollection(table)

	if err := deckNamesFromConfig(b, v); err != nil {
		return nil, err
	}
	sections, err := stringList(name, v, "sections", true)
	if err != nil {
		return nil, err
	}
	b.Sections(sections...)

	if re, ok := v.Get("deck_name_regex"); ok {
		expr, err := re.AsString()
		if err != nil {
			return nil, &ConfigError{Keyword: name, Field: "deck_name_regex", Msg: "must be a string", Err: err}
		}
		b.MatchRegex(expr)
	}

	if items, ok := v.Get("items"); ok {
		if err := addItemsFromConfig(b, items); err != nil {
			return nil, err
		}
	}
	if records, ok := v.Get("records"); ok {
		if !records.IsArray() {
			return nil, configErr(name, "records", "must point to an array")
		}
		for i := 0; i < records.Len(); i++ {
			if err := addItemsFromConfig(b, records.Index(i)); err != nil {
				return nil, err
			}
		}
	}
	if data, ok := v.Get("data"); ok {
		if v.Has("items") || v.Has("records") {
			return nil, configErr(name, "data", "can not be combined with items or records")
		}
		item, err := dataItemFromConfig(name, data)
		if err != nil {
			return nil, err
		}
		b.DataRecord(item)
	}
	if v.Has("description") {
		desc, err := v.GetString("description")
		if err != nil {
			return nil, &ConfigError{Keyword: name, Field: "description", Msg: "must be a string", Err: err}
		}
		b.Description(desc)
	}
	return b.Build()
}

func sizeFromConfig(name string, v config.Value) (Size, bool, error) {
	if sz, ok := v.Get("size"); ok {
		switch {
		case sz.IsNumber():
			n, err := sz.AsInt()
			if err != nil {
				return nil, false, &ConfigError{Keyword: name, Field: "size", Msg: "invalid fixed size", Err: err}
			}
			return Fixed{N: n}, false, nil
		case sz.IsObject():
			s, err := sizeKeywordFromConfig(name, "size", sz)
			return s, false, err
		case sz.IsString():
			raw, _ := sz.AsString()
			if s, ok := sizeFromString(raw); ok {
				return s, false, nil
			}
			return nil, false, configErr(name, "size", "unknown size type %q", raw)
		default:
			return nil, false, configErr(name, "size", "must be a number, a string or an object")
		}
	}
	if nt, ok := v.Get("num_tables"); ok {
		if !nt.IsObject() {
			return nil, false, configErr(name, "num_tables", "must point to an object")
		}
		s, err := sizeKeywordFromConfig(name, "num_tables", nt)
		return s, true, err
	}
	switch {
	case v.Has("items"), v.Has("records"):
		return TerminatorDelimited{}, false, nil
	case v.Has("data"):
		return Fixed{N: 1}, false, nil
	default:
		return Fixed{N: 0}, false, nil
	}
}

func sizeKeywordFromConfig(name, field string, v config.Value) (Size, error) {
	kw, err := v.GetString("keyword")
	if err != nil {
		return nil, &ConfigError{Keyword: name, Field: field, Msg: "size keyword", Err: err}
	}
	item, err := v.GetString("item")
	if err != nil {
		return nil, &ConfigError{Keyword: name, Field: field, Msg: "size item", Err: err}
	}
	shift := 0
	if v.Has("shift") {
		if shift, err = v.GetInt("shift"); err != nil {
			return nil, &ConfigError{Keyword: name, Field: field, Msg: "size shift", Err: err}
		}
	}
	return FromKeyword{Keyword: kw, Item: item, Shift: shift}, nil
}

func deckNamesFromConfig(b *Builder, v config.Value) error {
	if !v.Has("deck_names") {
		return nil
	}
	names, err := stringList(b.name, v, "deck_names", false)
	if err != nil {
		return err
	}
	b.DeckNames(names...)
	return nil
}

// stringList reads an array of strings. A missing member is an error when required.
func stringList(kw string, v config.Value, field string, required bool) ([]string, error) {
	list, ok := v.Get(field)
	if !ok {
		if required {
			return nil, configErr(kw, field, "needs to be defined")
		}
		return nil, nil
	}
	if !list.IsArray() {
		return nil, configErr(kw, field, "needs to be a list")
	}
	out := make([]string, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		s, err := list.Index(i).AsString()
		if err != nil {
			return nil, &ConfigError{Keyword: kw, Field: field, Msg: "entries need to be strings", Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

func addItemsFromConfig(b *Builder, items config.Value) error {
	if !items.IsArray() {
		return configErr(b.name, "items", "must be an array")
	}
	specs := make([]ItemSpec, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		it, err := itemFromConfig(b.name, items.Index(i))
		if err != nil {
			return err
		}
		specs = append(specs, it)
	}
	b.Record(specs...)
	return nil
}

func dataItemFromConfig(name string, v config.Value) (ItemSpec, error) {
	if !v.IsObject() {
		return ItemSpec{}, configErr(name, "data", "must be an object")
	}
	if !v.Has("value_type") {
		return ItemSpec{}, configErr(name, "value_type", "the data item is missing its value type")
	}
	typeName, err := v.GetString("value_type")
	if err != nil {
		return ItemSpec{}, &ConfigError{Keyword: name, Field: "value_type", Msg: "data item", Err: err}
	}
	typ, err := deck.ParseValueType(typeName)
	if err != nil {
		return ItemSpec{}, configErr(name, "value_type", "values of type %s are not implemented", typeName)
	}
	it := NewAllItem(DataItemName, typ)
	if it, err = withConfigDefault(name, it, v); err != nil {
		return ItemSpec{}, err
	}
	if typ == deck.TypeDouble {
		if it.Dimensions, err = dimensionsFromConfig(name, v); err != nil {
			return ItemSpec{}, err
		}
	}
	return it, nil
}
