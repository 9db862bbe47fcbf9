package keyword_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shpitdev/deckschema/pkg/config"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/keyword"
)

func mustConfig(t *testing.T, src string) config.Value {
	t.Helper()
	v, err := config.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return v
}

func mustSchema(t *testing.T, src string) *keyword.Schema {
	t.Helper()
	s, err := keyword.FromConfig(mustConfig(t, src))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	return s
}

func TestFromConfig_FixedSize(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{"name": "ABC", "sections": [], "size": 3}`)
	n, ok := s.FixedSize()
	if !ok || n != 3 {
		t.Fatalf("FixedSize()=%d,%v want=3,true", n, ok)
	}
	if !s.HasDeckName("ABC") || s.HasMultipleDeckNames() {
		t.Fatalf("unexpected deck names %v", s.DeckNames())
	}
	if s.HasMatchRegex() {
		t.Fatalf("expected no regex")
	}
}

func TestFromConfig_DefaultSizes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
		want keyword.Size
	}{
		{
			name: "items",
			src:  `{"name": "WELSPECS", "sections": ["SCHEDULE"], "items": [{"name": "WELL", "value_type": "STRING"}]}`,
			want: keyword.TerminatorDelimited{},
		},
		{
			name: "records",
			src:  `{"name": "PVTO", "sections": [], "records": [[{"name": "RS", "value_type": "DOUBLE"}]]}`,
			want: keyword.TerminatorDelimited{},
		},
		{
			name: "data",
			src:  `{"name": "PORO", "sections": ["GRID"], "data": {"value_type": "DOUBLE"}}`,
			want: keyword.Fixed{N: 1},
		},
		{
			name: "bare",
			src:  `{"name": "RUNSPEC", "sections": []}`,
			want: keyword.Fixed{N: 0},
		},
		{
			name: "enum",
			src:  `{"name": "TITLE", "sections": [], "size": "UNKNOWN"}`,
			want: keyword.Unknown{},
		},
		{
			name: "other keyword",
			src:  `{"name": "EQUIL", "sections": [], "size": {"keyword": "EQLDIMS", "item": "NTEQUL"}, "items": [{"name": "DATUM", "value_type": "DOUBLE"}]}`,
			want: keyword.FromKeyword{Keyword: "EQLDIMS", Item: "NTEQUL"},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := mustSchema(t, tc.src)
			if diff := cmp.Diff(tc.want, s.Size()); diff != "" {
				t.Fatalf("size mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromConfig_TableCollection(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `
name: SWOF
sections: [PROPS]
num_tables: {keyword: TABDIMS, item: NTSFUN}
items:
  - {name: DATA, value_type: DOUBLE, size_type: ALL}
`)
	if !s.IsTableCollection() {
		t.Fatalf("expected a table collection")
	}
	want := keyword.FromKeyword{Keyword: "TABDIMS", Item: "NTSFUN"}
	if s.Size() != keyword.Size(want) {
		t.Fatalf("size=%v want=%v", s.Size(), want)
	}
}

func TestFromConfig_DataKeyword(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{"name": "PORO", "sections": ["GRID"], "data": {"value_type": "DOUBLE", "dimension": "1", "default": 0.25}}`)
	if !s.IsDataKeyword() {
		t.Fatalf("expected a data keyword")
	}
	rec, ok := s.Record(0)
	if !ok || !rec.IsDataRecord() || rec.Len() != 1 {
		t.Fatalf("unexpected data record %v", rec)
	}
	it := rec.Item(0)
	if it.Name != keyword.DataItemName || it.Cardinality != keyword.All {
		t.Fatalf("unexpected data item %v", it)
	}
	def, ok := it.Default()
	if !ok || def.Double != 0.25 {
		t.Fatalf("default=%v,%v want=0.25,true", def, ok)
	}
	if !s.HasDimension() {
		t.Fatalf("expected a dimensioned keyword")
	}
}

func TestFromConfig_Regex(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `{"name": "WELL_PROBE", "sections": ["SUMMARY"], "deck_name_regex": "W[A-Z]{2,3}"}`)
	if s.HasDeckName("WELL_PROBE") {
		t.Fatalf("a regex keyword should not get its canonical name as deck name")
	}
	for name, want := range map[string]bool{"WOPR": true, "WBHP": true, "WOPRX": false, "XWOPR": false} {
		if got := s.Matches(name); got != want {
			t.Fatalf("Matches(%q)=%v want=%v", name, got, want)
		}
	}

	both := mustSchema(t, `{"name": "WELL_PROBE", "sections": [], "deck_names": ["WPROBE"], "deck_name_regex": "W[A-Z]{3}"}`)
	if !both.Matches("WPROBE") || !both.Matches("WOPR") {
		t.Fatalf("explicit deck names should survive a regex")
	}
}

func TestFromConfig_MalformedRegex(t *testing.T) {
	t.Parallel()

	src := `{"name": "BAD", "sections": [], "deck_name_regex": "W[A-"}`
	_, err := keyword.FromConfig(mustConfig(t, src))
	if !errors.Is(err, keyword.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}

	var c diag.Collector
	s, err := keyword.FromConfig(mustConfig(t, src), keyword.WithLenientRegex(&c), keyword.WithSource("bad.json"))
	if err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	if s.HasMatchRegex() {
		t.Fatalf("expected the malformed expression to be dropped")
	}
	if diff := cmp.Diff([]string{diag.CodeMalformedRegex}, c.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if got := c.Diagnostics()[0].Location.File; got != "bad.json" {
		t.Fatalf("diagnostic file=%q want=bad.json", got)
	}
}

func TestFromConfig_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not an object":      `["ABC"]`,
		"missing name":       `{"sections": []}`,
		"invalid name":       `{"name": "1BC", "sections": []}`,
		"missing sections":   `{"name": "ABC"}`,
		"items and records":  `{"name": "ABC", "sections": [], "items": [], "records": []}`,
		"data and items":     `{"name": "ABC", "sections": [], "items": [], "data": {"value_type": "INT"}}`,
		"data sized":         `{"name": "ABC", "sections": [], "size": 2, "data": {"value_type": "INT"}}`,
		"data without type":  `{"name": "ABC", "sections": [], "data": {}}`,
		"bad value type":     `{"name": "ABC", "sections": [], "items": [{"name": "X", "value_type": "FLOAT"}]}`,
		"bad size type":      `{"name": "ABC", "sections": [], "items": [{"name": "X", "value_type": "INT", "size_type": "SOME"}]}`,
		"bad size string":    `{"name": "ABC", "sections": [], "size": "SOMETIMES"}`,
		"negative size":      `{"name": "ABC", "sections": [], "size": -1}`,
		"incomplete size":    `{"name": "ABC", "sections": [], "size": {"keyword": "DIMENS"}}`,
		"duplicate items":    `{"name": "ABC", "sections": [], "items": [{"name": "X", "value_type": "INT"}, {"name": "X", "value_type": "INT"}]}`,
		"all item not last":  `{"name": "ABC", "sections": [], "items": [{"name": "X", "value_type": "INT", "size_type": "ALL"}, {"name": "Y", "value_type": "INT"}]}`,
		"dimension on int":   `{"name": "ABC", "sections": [], "items": [{"name": "X", "value_type": "INT", "dimension": "Length"}]}`,
		"default type":       `{"name": "ABC", "sections": [], "items": [{"name": "X", "value_type": "INT", "default": "abc"}]}`,
		"sections not list":  `{"name": "ABC", "sections": "GRID"}`,
		"empty deck name":    `{"name": "ABC", "sections": [], "deck_names": [""]}`,
		"deck names strings": `{"name": "ABC", "sections": [], "deck_names": [{}]}`,
	}
	for name, src := range cases {
		src := src
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := keyword.FromConfig(mustConfig(t, src))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, keyword.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			var ce *keyword.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestFromConfig_ItemFields(t *testing.T) {
	t.Parallel()

	s := mustSchema(t, `
name: WCONPROD
sections: [SCHEDULE]
items:
  - {name: WELL, value_type: STRING, description: well name}
  - {name: STATUS, value_type: STRING, default: OPEN}
  - {name: ORAT, value_type: DOUBLE, dimension: LiquidSurfaceVolume/Time}
  - {name: LIMITS, value_type: DOUBLE, size_type: ALL, dimension: [Pressure, Length]}
`)
	rec, ok := s.Record(0)
	if !ok || rec.Len() != 4 {
		t.Fatalf("unexpected record %v", rec)
	}
	if rec.ItemIndex("ORAT") != 2 || rec.ItemIndex("NOPE") != -1 {
		t.Fatalf("unexpected item indexes")
	}
	if got := rec.Item(0).Description; got != "well name" {
		t.Fatalf("description=%q", got)
	}
	if def, ok := rec.Item(1).Default(); !ok || def.String != "OPEN" || !def.Defaulted {
		t.Fatalf("default=%v,%v", def, ok)
	}
	if diff := cmp.Diff([]string{"Pressure", "Length"}, rec.Item(3).Dimensions); diff != "" {
		t.Fatalf("dimensions mismatch (-want +got):\n%s", diff)
	}
}
