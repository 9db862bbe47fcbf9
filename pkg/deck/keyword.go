package deck

import (
	"fmt"
	"strconv"
)

// ValueType is the declared type of an item.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeDouble
	TypeString
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// ParseValueType maps the definition-file spelling of a value type.
func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "INT":
		return TypeInt, nil
	case "DOUBLE":
		return TypeDouble, nil
	case "STRING":
		return TypeString, nil
	default:
		return 0, fmt.Errorf("unsupported value type %q", s)
	}
}

// Value is one typed value of an item. Only the field matching Type is meaningful.
type Value struct {
	Type      ValueType
	Int       int
	Double    float64
	String    string
	Defaulted bool
}

// IntValue, DoubleValue and StringValue build explicit (non-defaulted) values.
func IntValue(v int) Value        { return Value{Type: TypeInt, Int: v} }
func DoubleValue(v float64) Value { return Value{Type: TypeDouble, Double: v} }
func StringValue(v string) Value  { return Value{Type: TypeString, String: v} }

// WithDefaulted marks v as taken from a default.
func (v Value) WithDefaulted() Value {
	v.Defaulted = true
	return v
}

// Equal compares type, payload and the defaulted flag.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type || v.Defaulted != o.Defaulted {
		return false
	}
	switch v.Type {
	case TypeInt:
		return v.Int == o.Int
	case TypeDouble:
		return v.Double == o.Double
	default:
		return v.String == o.String
	}
}

func (v Value) Format() string {
	switch v.Type {
	case TypeInt:
		return strconv.Itoa(v.Int)
	case TypeDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	default:
		return v.String
	}
}

// Item holds the values produced for one item template.
type Item struct {
	Name       string
	Type       ValueType
	Values     []Value
	Dimensions []string

	si []float64
}

func (it *Item) Len() int { return len(it.Values) }

// Int returns value i; it panics if i is out of range, like slice indexing.
func (it *Item) Int(i int) int          { return it.Values[i].Int }
func (it *Item) Double(i int) float64   { return it.Values[i].Double }
func (it *Item) Text(i int) string      { return it.Values[i].String }
func (it *Item) IsDefaulted(i int) bool { return it.Values[i].Defaulted }
func (it *Item) HasDimension() bool     { return it.Type == TypeDouble && len(it.Dimensions) > 0 }
func (it *Item) HasSI() bool            { return it.si != nil }
func (it *Item) SetSI(values []float64) { it.si = values }

// SI returns value i converted to SI units. Before unit application it returns the raw value.
func (it *Item) SI(i int) float64 {
	if it.si == nil {
		return it.Values[i].Double
	}
	return it.si[i]
}

// Dimension returns the dimension tag that applies to value i.
func (it *Item) Dimension(i int) string {
	if len(it.Dimensions) == 0 {
		return ""
	}
	return it.Dimensions[i%len(it.Dimensions)]
}

// Record is one parsed record.
type Record struct {
	Items []*Item
}

func (r *Record) Len() int { return len(r.Items) }

func (r *Record) Item(i int) *Item { return r.Items[i] }

// ItemByName returns the named item, or nil.
func (r *Record) ItemByName(name string) *Item {
	for _, it := range r.Items {
		if it.Name == name {
			return it
		}
	}
	return nil
}

// Keyword is one parsed keyword occurrence.
type Keyword struct {
	Name     string
	Location Location
	Records  []*Record

	fixedSize   bool
	dataKeyword bool
	expected    int
}

// NewKeyword returns an empty keyword without an expected size.
func NewKeyword(name string, loc Location) *Keyword {
	return &Keyword{Name: name, Location: loc, expected: -1}
}

func (k *Keyword) Size() int              { return len(k.Records) }
func (k *Keyword) Record(i int) *Record   { return k.Records[i] }
func (k *Keyword) AddRecord(r *Record)    { k.Records = append(k.Records, r) }
func (k *Keyword) SetFixedSize()          { k.fixedSize = true }
func (k *Keyword) IsFixedSize() bool      { return k.fixedSize }
func (k *Keyword) SetDataKeyword(on bool) { k.dataKeyword = on }
func (k *Keyword) IsDataKeyword() bool    { return k.dataKeyword }
func (k *Keyword) SetExpectedSize(n int)  { k.expected = n }

// ExpectedSize returns the record (or table) count the schema declared for this occurrence.
func (k *Keyword) ExpectedSize() (int, bool) {
	if k.expected < 0 {
		return 0, false
	}
	return k.expected, true
}
