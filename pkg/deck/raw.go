package deck

import "fmt"

// Location identifies where a keyword occurrence starts.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// RawRecord is one '/'-terminated group of tokens, exactly as the lexer split them.
type RawRecord struct {
	Tokens []string
}

// Len returns the number of raw tokens.
func (r RawRecord) Len() int { return len(r.Tokens) }

// RawKeyword is one keyword occurrence before schema application.
type RawKeyword struct {
	Name     string
	Location Location
	Records  []RawRecord
	// Finished is set once the lexer has seen everything that belongs to the occurrence.
	Finished bool
}

// NewRawKeyword returns a finished occurrence holding one record per token list.
func NewRawKeyword(name string, loc Location, records ...[]string) *RawKeyword {
	rk := &RawKeyword{Name: name, Location: loc, Finished: true}
	for _, toks := range records {
		rk.Records = append(rk.Records, RawRecord{Tokens: toks})
	}
	return rk
}
