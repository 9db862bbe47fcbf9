package keyword_test

import (
	"testing"

	"github.com/shpitdev/deckschema/pkg/keyword"
)

func TestDeckName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "WATER1 REST", want: "WATER1"},
		{in: "PORO", want: "PORO"},
		{in: "DIMENS/", want: "DIMENS"},
		{in: "TITLE'x'", want: "TITLE"},
		{in: "ABCDEFGHIJKL", want: "ABCDEFGHI"},
		{in: "ABCDEFGH IJ", want: "ABCDEFGH"},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := keyword.DeckName(tc.in); got != tc.want {
				t.Fatalf("DeckName(%q)=%q want=%q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidNames(t *testing.T) {
	t.Parallel()

	deck := map[string]bool{
		"WELSPECS":  true,
		"A":         true,
		"SWF-32":    true,
		"TVDP+X":    true,
		"":          false,
		"1ABC":      false,
		"ABC DEF":   false,
		"TOOLONGKW": false,
		"AB/C":      false,
	}
	for name, want := range deck {
		if got := keyword.ValidDeckName(name); got != want {
			t.Fatalf("ValidDeckName(%q)=%v want=%v", name, got, want)
		}
	}

	internal := map[string]bool{
		"PORO":             true,
		"SOME_LONG_NAME_1": true,
		"A":                false,
		"_AB":              false,
		"AB-C":             false,
	}
	for name, want := range internal {
		if got := keyword.ValidInternalName(name); got != want {
			t.Fatalf("ValidInternalName(%q)=%v want=%v", name, got, want)
		}
	}
}

func TestIsSeparator(t *testing.T) {
	t.Parallel()

	for _, c := range []byte{' ', '\t', '\n', '/', '\'', '"'} {
		if !keyword.IsSeparator(c) {
			t.Fatalf("expected %q to be a separator", c)
		}
	}
	for _, c := range []byte{'A', '1', '-', '_', '*'} {
		if keyword.IsSeparator(c) {
			t.Fatalf("expected %q not to be a separator", c)
		}
	}
}
