package keyword

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shpitdev/deckschema/pkg/config"
	"github.com/shpitdev/deckschema/pkg/deck"
)

// Cardinality tells how many values an item consumes.
type Cardinality int

const (
	// Single items consume one value.
	Single Cardinality = iota
	// All items consume every remaining value of the record.
	All
)

func (c Cardinality) String() string {
	if c == All {
		return "ALL"
	}
	return "SINGLE"
}

// ItemSpec describes one positional field of a record.
type ItemSpec struct {
	Name        string
	Type        deck.ValueType
	Cardinality Cardinality
	Dimensions  []string
	Description string

	def    deck.Value
	hasDef bool
}

// NewItem returns a single-valued item without default.
func NewItem(name string, typ deck.ValueType) ItemSpec {
	return ItemSpec{Name: name, Type: typ}
}

// NewAllItem returns an item consuming the rest of its record.
func NewAllItem(name string, typ deck.ValueType) ItemSpec {
	return ItemSpec{Name: name, Type: typ, Cardinality: All}
}

// WithDefault returns a copy of it with default v. The value type must match the item.
func (it ItemSpec) WithDefault(v deck.Value) ItemSpec {
	v.Defaulted = true
	it.def = v
	it.hasDef = true
	return it
}

// WithDimensions returns a copy of it carrying the given dimension tags.
func (it ItemSpec) WithDimensions(dims ...string) ItemSpec {
	it.Dimensions = append([]string(nil), dims...)
	return it
}

// Default returns the default value, if any.
func (it ItemSpec) Default() (deck.Value, bool) { return it.def, it.hasDef }

func (it ItemSpec) HasDimension() bool { return it.Type == deck.TypeDouble && len(it.Dimensions) > 0 }

// Equal compares everything except the description.
func (it ItemSpec) Equal(o ItemSpec) bool {
	if it.Name != o.Name || it.Type != o.Type || it.Cardinality != o.Cardinality || it.hasDef != o.hasDef {
		return false
	}
	if it.hasDef && !it.def.Equal(o.def) {
		return false
	}
	return slices.Equal(it.Dimensions, o.Dimensions)
}

func (it ItemSpec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", it.Name, it.Type, it.Cardinality)
	if it.hasDef {
		fmt.Fprintf(&b, " default=%s", it.def.Format())
	}
	if len(it.Dimensions) > 0 {
		fmt.Fprintf(&b, " dims=%s", strings.Join(it.Dimensions, ","))
	}
	return b.String()
}

func (it ItemSpec) validate(kw string) error {
	if it.Name == "" {
		return configErr(kw, "items", "item without name")
	}
	switch it.Type {
	case deck.TypeInt, deck.TypeDouble, deck.TypeString:
	default:
		return configErr(kw, "value_type", "item %s: unsupported value type %s", it.Name, it.Type)
	}
	if it.hasDef && it.def.Type != it.Type {
		return configErr(kw, "default", "item %s: default of type %s for %s item", it.Name, it.def.Type, it.Type)
	}
	if len(it.Dimensions) > 0 && it.Type != deck.TypeDouble {
		return configErr(kw, "dimension", "item %s: only DOUBLE items can have a dimension", it.Name)
	}
	return nil
}

// parseToken coerces one raw token to the item type.
func (it ItemSpec) parseToken(tok string) (deck.Value, error) {
	switch it.Type {
	case deck.TypeInt:
		n, err := strconv.Atoi(tok)
		if err != nil {
			return deck.Value{}, err
		}
		return deck.IntValue(n), nil
	case deck.TypeDouble:
		f, err := parseDouble(tok)
		if err != nil {
			return deck.Value{}, err
		}
		return deck.DoubleValue(f), nil
	default:
		return deck.StringValue(unquote(tok)), nil
	}
}

// parseDouble accepts Fortran style exponents (1.5D+03) next to Go syntax.
func parseDouble(tok string) (float64, error) {
	if strings.ContainsAny(tok, "dD") {
		tok = strings.NewReplacer("d", "e", "D", "e").Replace(tok)
	}
	return strconv.ParseFloat(tok, 64)
}

func unquote(tok string) string {
	if len(tok) >= 2 {
		if q := tok[0]; (q == '\'' || q == '"') && tok[len(tok)-1] == q {
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}

// itemFromConfig reads one entry of an "items" list.
func itemFromConfig(kw string, v config.Value) (ItemSpec, error) {
	if !v.IsObject() {
		return ItemSpec{}, configErr(kw, "items", "item at line %d must be an object", v.Line())
	}
	name, err := v.GetString("name")
	if err != nil {
		return ItemSpec{}, &ConfigError{Keyword: kw, Field: "items", Msg: "item name", Err: err}
	}
	typeName, err := v.GetString("value_type")
	if err != nil {
		return ItemSpec{}, &ConfigError{Keyword: kw, Field: "value_type", Msg: "item " + name, Err: err}
	}
	typ, err := deck.ParseValueType(typeName)
	if err != nil {
		return ItemSpec{}, &ConfigError{Keyword: kw, Field: "value_type", Msg: "item " + name, Err: err}
	}

	it := ItemSpec{Name: name, Type: typ}
	if v.Has("size_type") {
		st, err := v.GetString("size_type")
		if err != nil {
			return ItemSpec{}, &ConfigError{Keyword: kw, Field: "size_type", Msg: "item " + name, Err: err}
		}
		switch st {
		case "SINGLE":
		case "ALL":
			it.Cardinality = All
		default:
			return ItemSpec{}, configErr(kw, "size_type", "item %s: unsupported size type %q", name, st)
		}
	}
	if it, err = withConfigDefault(kw, it, v); err != nil {
		return ItemSpec{}, err
	}
	if it.Dimensions, err = dimensionsFromConfig(kw, v); err != nil {
		return ItemSpec{}, err
	}
	if v.Has("description") {
		if it.Description, err = v.GetString("description"); err != nil {
			return ItemSpec{}, &ConfigError{Keyword: kw, Field: "description", Msg: "item " + name, Err: err}
		}
	}
	return it, it.validate(kw)
}

func withConfigDefault(kw string, it ItemSpec, v config.Value) (ItemSpec, error) {
	if !v.Has("default") {
		return it, nil
	}
	var def deck.Value
	switch it.Type {
	case deck.TypeInt:
		n, err := v.GetInt("default")
		if err != nil {
			return it, &ConfigError{Keyword: kw, Field: "default", Msg: "item " + it.Name, Err: err}
		}
		def = deck.IntValue(n)
	case deck.TypeDouble:
		f, err := v.GetFloat("default")
		if err != nil {
			return it, &ConfigError{Keyword: kw, Field: "default", Msg: "item " + it.Name, Err: err}
		}
		def = deck.DoubleValue(f)
	default:
		s, err := v.GetString("default")
		if err != nil {
			return it, &ConfigError{Keyword: kw, Field: "default", Msg: "item " + it.Name, Err: err}
		}
		def = deck.StringValue(s)
	}
	return it.WithDefault(def), nil
}

func dimensionsFromConfig(kw string, v config.Value) ([]string, error) {
	dim, ok := v.Get("dimension")
	if !ok {
		return nil, nil
	}
	if dim.IsString() {
		s, _ := dim.AsString()
		return []string{s}, nil
	}
	if !dim.IsArray() {
		return nil, configErr(kw, "dimension", "must be a string or a list of strings")
	}
	dims := make([]string, 0, dim.Len())
	for i := 0; i < dim.Len(); i++ {
		s, err := dim.Index(i).AsString()
		if err != nil {
			return nil, &ConfigError{Keyword: kw, Field: "dimension", Msg: "must be a string or a list of strings", Err: err}
		}
		dims = append(dims, s)
	}
	return dims, nil
}
