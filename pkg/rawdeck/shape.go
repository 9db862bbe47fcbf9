// Package rawdeck splits deck text into raw keyword occurrences.
package rawdeck

import (
	"fmt"

	"github.com/shpitdev/deckschema/pkg/deck"
)

// Delimiting is how the lexer finds the end of a keyword's records.
type Delimiting int

const (
	// Counted keywords have a known number of records.
	Counted Delimiting = iota
	// Terminated keywords end with an empty record (a lone slash).
	Terminated
	// Open keywords end where the next keyword starts.
	Open
)

// Shape tells the lexer how to read one keyword occurrence.
type Shape struct {
	Delimiting Delimiting
	Records    int
}

func CountedShape(n int) Shape { return Shape{Delimiting: Counted, Records: n} }
func TerminatedShape() Shape   { return Shape{Delimiting: Terminated} }
func OpenShape() Shape         { return Shape{Delimiting: Open} }

func (s Shape) String() string {
	switch s.Delimiting {
	case Counted:
		return fmt.Sprintf("counted(%d)", s.Records)
	case Terminated:
		return "terminated"
	default:
		return "open"
	}
}

// Shaper resolves the shape of a deck keyword. prior holds the occurrences lexed so far, in
// order, so sizes taken from earlier keywords can be resolved. ok is false for keywords the
// shaper does not know.
type Shaper interface {
	Shape(name string, prior []*deck.RawKeyword) (shape Shape, ok bool, err error)
}

// ShaperFunc adapts a function to Shaper.
type ShaperFunc func(name string, prior []*deck.RawKeyword) (Shape, bool, error)

func (f ShaperFunc) Shape(name string, prior []*deck.RawKeyword) (Shape, bool, error) {
	return f(name, prior)
}
