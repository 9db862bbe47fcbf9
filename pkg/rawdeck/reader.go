package rawdeck

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/keyword"
)

const maxLineBytes = 1 << 20

// Reader lexes deck text into raw keyword occurrences.
//
// Keywords start at column one. Records are whitespace separated tokens ended by a slash;
// text after the slash and after "--" is a comment. Quoted tokens keep their quotes.
type Reader struct {
	shaper  Shaper
	sink    diag.Sink
	suggest func(name string) []string
}

// Option configures a Reader.
type Option func(*Reader)

// WithSuggestions adds the names returned by f to unknown keyword warnings.
func WithSuggestions(f func(name string) []string) Option {
	return func(r *Reader) { r.suggest = f }
}

func NewReader(shaper Shaper, sink diag.Sink, opts ...Option) *Reader {
	r := &Reader{shaper: shaper, sink: diag.OrDiscard(sink)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read lexes src. file names the input in locations. Occurrences are returned in deck order;
// a counted keyword cut short by the end of input is returned unfinished.
func (r *Reader) Read(ctx context.Context, src io.Reader, file string) ([]*deck.RawKeyword, error) {
	lx := &lexer{Reader: r, file: file}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		lx.line++
		if err := lx.feed(ctx, sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	lx.eof()
	return lx.out, nil
}

type lexer struct {
	*Reader
	file string
	line int
	out  []*deck.RawKeyword

	cur     *deck.RawKeyword
	shape   Shape
	pending []string
	// skipping is set while the data of an unknown keyword is discarded.
	skipping bool
}

func (lx *lexer) loc() deck.Location { return deck.Location{File: lx.file, Line: lx.line} }

func (lx *lexer) report(code, kw, format string, args ...any) {
	lx.sink.Report(diag.Diagnostic{
		Severity: diag.SeverityWarning,
		Code:     code,
		Keyword:  kw,
		Location: lx.loc(),
		Message:  fmt.Sprintf(format, args...),
	})
}

func (lx *lexer) feed(ctx context.Context, text string) error {
	if name, ok := lx.keywordLine(text); ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return lx.start(name)
	}
	tokens, slash := splitLine(text)
	if len(tokens) == 0 && !slash {
		return nil
	}
	switch {
	case lx.cur != nil:
		lx.pending = append(lx.pending, tokens...)
		if slash {
			lx.endRecord()
		}
	case lx.skipping:
	default:
		lx.report(diag.CodeUnexpectedData, "", "data outside of any keyword ignored")
	}
	return nil
}

// keywordLine reports whether text starts a new keyword in the current state.
func (lx *lexer) keywordLine(text string) (string, bool) {
	if text == "" || !isLetter(text[0]) {
		return "", false
	}
	name := keyword.DeckName(text)
	if !keyword.ValidDeckName(name) {
		return "", false
	}
	if lx.cur != nil && lx.shape.Delimiting == Counted {
		return "", false
	}
	if lx.cur == nil && !lx.skipping {
		return name, true
	}
	// Inside data only names the shaper knows, or bare unknown names, start a keyword.
	if _, ok, err := lx.shaper.Shape(name, lx.out); ok || err != nil {
		return name, true
	}
	rest := strings.TrimSpace(text[len(name):])
	return name, lx.skipping && (rest == "" || strings.HasPrefix(rest, "--"))
}

func (lx *lexer) start(name string) error {
	lx.closeOpen()
	lx.skipping = false

	shape, ok, err := lx.shaper.Shape(name, lx.out)
	if err != nil {
		return fmt.Errorf("%s: keyword %s: %w", lx.loc(), name, err)
	}
	if !ok {
		msg := "unknown keyword, data ignored"
		if lx.suggest != nil {
			if s := lx.suggest(name); len(s) > 0 {
				msg += "; did you mean " + strings.Join(s, ", ") + "?"
			}
		}
		lx.report(diag.CodeUnknownKeyword, name, "%s", msg)
		lx.skipping = true
		return nil
	}

	lx.cur = &deck.RawKeyword{Name: name, Location: lx.loc()}
	lx.shape = shape
	lx.pending = nil
	if shape.Delimiting == Counted && shape.Records <= 0 {
		lx.finish()
	}
	return nil
}

func (lx *lexer) endRecord() {
	tokens := lx.pending
	lx.pending = nil
	switch lx.shape.Delimiting {
	case Terminated:
		if len(tokens) == 0 {
			lx.finish()
			return
		}
		lx.addRecord(tokens)
	case Counted:
		lx.addRecord(tokens)
		if len(lx.cur.Records) >= lx.shape.Records {
			lx.finish()
		}
	default:
		lx.addRecord(tokens)
	}
}

func (lx *lexer) addRecord(tokens []string) {
	if tokens == nil {
		tokens = []string{}
	}
	lx.cur.Records = append(lx.cur.Records, deck.RawRecord{Tokens: tokens})
}

// closeOpen ends a terminated or open keyword because another keyword starts.
func (lx *lexer) closeOpen() {
	if lx.cur == nil {
		return
	}
	if len(lx.pending) > 0 {
		lx.addRecord(lx.pending)
		lx.pending = nil
	}
	if lx.shape.Delimiting == Terminated {
		lx.report(diag.CodeMissingTerminator, lx.cur.Name, "keyword %s at %s is not terminated by an empty record", lx.cur.Name, lx.cur.Location)
	}
	lx.finish()
}

func (lx *lexer) finish() {
	lx.cur.Finished = true
	lx.out = append(lx.out, lx.cur)
	lx.cur = nil
}

func (lx *lexer) eof() {
	if lx.cur == nil {
		return
	}
	if lx.shape.Delimiting != Counted {
		lx.closeOpen()
		return
	}
	if len(lx.pending) > 0 {
		lx.addRecord(lx.pending)
		lx.pending = nil
	}
	if len(lx.cur.Records) >= lx.shape.Records {
		lx.report(diag.CodeMissingTerminator, lx.cur.Name, "last record of %s is not terminated", lx.cur.Name)
		lx.finish()
		return
	}
	lx.report(diag.CodeMissingTerminator, lx.cur.Name, "input ended after %d of %d records", len(lx.cur.Records), lx.shape.Records)
	lx.out = append(lx.out, lx.cur)
	lx.cur = nil
}

// splitLine returns the tokens of one line up to the first slash, and whether a slash ended it.
func splitLine(text string) ([]string, bool) {
	var tokens []string
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '/':
			return tokens, true
		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			return tokens, false
		case c == '\'' || c == '"':
			end := strings.IndexByte(text[i+1:], c)
			if end < 0 {
				tokens = append(tokens, text[i:])
				return tokens, false
			}
			tokens = append(tokens, text[i:i+end+2])
			i += end + 2
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(" \t\r/", rune(text[j])) {
				j++
			}
			tokens = append(tokens, text[i:j])
			i = j
		}
	}
	return tokens, false
}

func isLetter(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
