package keyword

import "fmt"

// Size describes how many records belong to one occurrence of a keyword.
// The implementations are Fixed, TerminatorDelimited, Unknown and FromKeyword.
type Size interface {
	fmt.Stringer
	isSize()
}

// Fixed keywords have exactly N records.
type Fixed struct {
	N int
}

// TerminatorDelimited keywords read records until an empty terminating record.
type TerminatorDelimited struct{}

// Unknown keywords have no declared size.
type Unknown struct{}

// FromKeyword keywords take their record (or table) count from an item of the most
// recent previous occurrence of another keyword, plus Shift.
type FromKeyword struct {
	Keyword string
	Item    string
	Shift   int
}

func (Fixed) isSize()               {}
func (TerminatorDelimited) isSize() {}
func (Unknown) isSize()             {}
func (FromKeyword) isSize()         {}

func (s Fixed) String() string             { return fmt.Sprintf("FIXED(%d)", s.N) }
func (TerminatorDelimited) String() string { return "SLASH_TERMINATED" }
func (Unknown) String() string             { return "UNKNOWN" }

func (s FromKeyword) String() string {
	if s.Shift == 0 {
		return fmt.Sprintf("OTHER_KEYWORD_IN_DECK(%s.%s)", s.Keyword, s.Item)
	}
	return fmt.Sprintf("OTHER_KEYWORD_IN_DECK(%s.%s%+d)", s.Keyword, s.Item, s.Shift)
}

// sizeFromString maps the enum spelling used by older definition files.
func sizeFromString(s string) (Size, bool) {
	switch s {
	case "SLASH_TERMINATED":
		return TerminatorDelimited{}, true
	case "UNKNOWN":
		return Unknown{}, true
	case "FIXED":
		return Fixed{N: 0}, true
	}
	return nil, false
}
