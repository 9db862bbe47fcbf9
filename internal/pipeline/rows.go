package pipeline

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/parser"
	"github.com/shpitdev/deckschema/pkg/pipeline/core"
	"github.com/shpitdev/deckschema/pkg/pipeline/worker"
)

// Row is one parsed value. It is the stable output schema of the parse command.
type Row struct {
	Keyword    string
	Occurrence int
	Line       int
	Record     int
	Item       string
	Index      int
	Type       string
	Value      string
	SI         string
	Dimension  string
	Defaulted  bool
}

// Header returns the stable CSV header for Row.
func Header() []string {
	return []string{
		"keyword",
		"occurrence",
		"line",
		"record",
		"item",
		"index",
		"type",
		"value",
		"si",
		"dimension",
		"defaulted",
	}
}

// Fields renders r in Header order.
func (r Row) Fields() []string {
	return []string{
		r.Keyword,
		strconv.Itoa(r.Occurrence),
		strconv.Itoa(r.Line),
		strconv.Itoa(r.Record),
		r.Item,
		strconv.Itoa(r.Index),
		r.Type,
		r.Value,
		r.SI,
		r.Dimension,
		strconv.FormatBool(r.Defaulted),
	}
}

// Rows flattens d into one row per value, in deck order. Occurrence counts earlier
// keywords with the same name.
func Rows(d *deck.Deck) []Row {
	var rows []Row
	seen := make(map[string]int)
	for _, kw := range d.Keywords() {
		occ := seen[kw.Name]
		seen[kw.Name]++
		for ri, rec := range kw.Records {
			for _, it := range rec.Items {
				for vi, v := range it.Values {
					row := Row{
						Keyword:    kw.Name,
						Occurrence: occ,
						Line:       kw.Location.Line,
						Record:     ri,
						Item:       it.Name,
						Index:      vi,
						Type:       it.Type.String(),
						Value:      v.Format(),
						Dimension:  it.Dimension(vi),
						Defaulted:  v.Defaulted,
					}
					if it.HasSI() {
						row.SI = strconv.FormatFloat(it.SI(vi), 'g', -1, 64)
					}
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

// Records renders rows for an OutputAdapter.
func Records(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Fields())
	}
	return out
}

// WriteCSV writes rows as a CSV with the stable Header() ordering.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary is the batch result of one deck.
type Summary struct {
	Deck     string
	Status   string
	Keywords int
	Warnings int
	Errors   int
	Error    string
	Duration time.Duration
}

// SummaryHeader returns the stable CSV header for Summary.
func SummaryHeader() []string {
	return []string{"deck", "status", "keywords", "warnings", "errors", "error", "duration_ms"}
}

func (s Summary) Fields() []string {
	return []string{
		s.Deck,
		s.Status,
		strconv.Itoa(s.Keywords),
		strconv.Itoa(s.Warnings),
		strconv.Itoa(s.Errors),
		s.Error,
		strconv.FormatInt(s.Duration.Milliseconds(), 10),
	}
}

type Options struct {
	// Workers bounds how many decks are parsed at once.
	Workers      int
	ItemTimeout  time.Duration
	RateLimitRPS float64
	FailFast     bool
}

// ParseDeck returns a Processor that parses the deck at a path with a fresh diagnostic
// collector per deck. Diagnostics are also passed to sink when it is not nil.
func ParseDeck(session func(diag.Sink) *parser.Session, sink diag.Sink) core.Processor[string, Summary] {
	return core.ProcessFunc[string, Summary](func(ctx context.Context, path string) (Summary, error) {
		start := time.Now()
		var c diag.Collector
		d, err := session(diag.Tee(&c, sink)).ParseFile(ctx, path)
		s := Summary{
			Deck:     path,
			Warnings: c.Count(diag.SeverityWarning),
			Errors:   c.Count(diag.SeverityError),
			Duration: time.Since(start),
		}
		if err != nil {
			return s, err
		}
		s.Status = "ok"
		s.Keywords = d.Len()
		return s, nil
	})
}

// ParseDecks runs proc over all paths and returns one summary per path, in input order.
//
// Errors are recorded per row and do not fail the run unless FailFast is set.
func ParseDecks(ctx context.Context, paths []string, proc core.Processor[string, Summary], opts Options) ([]Summary, error) {
	policy := worker.FailurePolicyPartialOutput
	if opts.FailFast {
		policy = worker.FailurePolicyFailFast
	}
	out, err := worker.ProcessAll(ctx, paths, proc.Process, worker.Options{
		Workers:       opts.Workers,
		ItemTimeout:   opts.ItemTimeout,
		RateLimitRPS:  opts.RateLimitRPS,
		FailurePolicy: policy,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]Summary, 0, len(out))
	for _, res := range out {
		s := res.Output
		s.Deck = res.Input
		if res.Err != nil {
			s.Status = "error"
			s.Error = res.Err.Error()
		}
		rows = append(rows, s)
	}
	return rows, nil
}

// Summaries renders summaries for an OutputAdapter.
func Summaries(rows []Summary) [][]string {
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		out = append(out, s.Fields())
	}
	return out
}
