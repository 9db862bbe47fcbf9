package config_test

import (
	"testing"

	"github.com/shpitdev/deckschema/pkg/config"
)

func TestParseJSONObject(t *testing.T) {
	t.Parallel()

	v, err := config.Parse([]byte(`{"name": "TABDIMS", "size": 1, "sections": ["RUNSPEC"], "scale": 1.5, "size_ref": {"keyword": "X", "shift": -1}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsObject() {
		t.Fatalf("kind=%s want=object", v.Kind())
	}
	name, err := v.GetString("name")
	if err != nil || name != "TABDIMS" {
		t.Fatalf("name=%q err=%v", name, err)
	}
	size, ok := v.Get("size")
	if !ok || !size.IsNumber() || !size.IsInt() {
		t.Fatalf("size must be an integer number: %v", size.Kind())
	}
	if n, _ := size.AsInt(); n != 1 {
		t.Fatalf("size=%d want=1", n)
	}
	if _, err := v.GetInt("scale"); err == nil {
		t.Fatalf("expected error reading 1.5 as integer")
	}
	if f, err := v.GetFloat("scale"); err != nil || f != 1.5 {
		t.Fatalf("scale=%g err=%v", f, err)
	}
	sections, _ := v.Get("sections")
	if sections.Len() != 1 {
		t.Fatalf("sections len=%d want=1", sections.Len())
	}
	if s, _ := sections.Index(0).AsString(); s != "RUNSPEC" {
		t.Fatalf("sections[0]=%q", s)
	}
	if sections.Index(5).IsValid() {
		t.Fatalf("out of range index must be invalid")
	}
	ref, _ := v.Get("size_ref")
	if shift, err := ref.GetInt("shift"); err != nil || shift != -1 {
		t.Fatalf("shift=%d err=%v", shift, err)
	}
	if v.Has("missing") {
		t.Fatalf("unexpected member")
	}
	if got := v.Keys(); len(got) != 5 || got[0] != "name" {
		t.Fatalf("keys=%v", got)
	}
}

func TestParseYAMLAndList(t *testing.T) {
	t.Parallel()

	src := `
- name: PORO
  sections: [GRID]
  data: {value_type: DOUBLE, dimension: "1"}
- name: RUNSPEC
  sections: []
`
	vals, err := config.ParseList([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("len=%d want=2", len(vals))
	}
	data, ok := vals[0].Get("data")
	if !ok || !data.IsObject() {
		t.Fatalf("data must be an object")
	}
	dim, _ := data.Get("dimension")
	if !dim.IsString() {
		t.Fatalf("quoted dimension must stay a string, got %s", dim.Kind())
	}
	if vals[1].Line() == 0 {
		t.Fatalf("line must be recorded")
	}

	single, err := config.ParseList([]byte(`{"name": "ABC"}`))
	if err != nil || len(single) != 1 {
		t.Fatalf("single object: len=%d err=%v", len(single), err)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "broken", in: `{"name": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Parse([]byte(tt.in)); err == nil {
				t.Fatalf("expected error for %q", tt.in)
			}
		})
	}
}
