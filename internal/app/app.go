package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shpitdev/deckschema/internal/pipeline"
	"github.com/shpitdev/deckschema/keywords"
	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/keyword"
	"github.com/shpitdev/deckschema/pkg/parser"
	localio "github.com/shpitdev/deckschema/pkg/pipeline/io/local"
	"github.com/shpitdev/deckschema/pkg/registry"
	"github.com/shpitdev/deckschema/pkg/units"
)

// Config is shared by every command.
type Config struct {
	// SchemaDir holds keyword definition files. Empty means the built-in definitions.
	SchemaDir    string
	Workers      int
	RateLimitRPS float64
	FailFast     bool
	LenientRegex bool
	// Units forces METRIC or FIELD. Empty lets the deck decide.
	Units       string
	DeckTimeout time.Duration
}

type runLogger struct {
	logger *log.Logger
	diags  *slog.Logger
	runID  string
}

func newRunLogger(w io.Writer) runLogger {
	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	return runLogger{
		logger: log.New(w, "", log.LstdFlags),
		diags:  slog.New(slog.NewTextHandler(w, nil)).With("run", runID),
		runID:  runID,
	}
}

// sink writes diagnostics as structured records next to the progress lines.
func (l runLogger) sink() diag.Sink { return diag.SlogSink{L: l.diags} }

func (l runLogger) logf(format string, args ...any) {
	prefix := make([]any, 0, len(args)+1)
	prefix = append(prefix, l.runID)
	prefix = append(prefix, args...)
	l.logger.Printf("run=%s "+format, prefix...)
}

// LoadRegistry loads the schemas selected by cfg. Malformed expressions tolerated by
// LenientRegex are reported to sink.
func LoadRegistry(ctx context.Context, cfg Config, sink diag.Sink) (*registry.Registry, int, error) {
	var kwOpts []keyword.Option
	if cfg.LenientRegex {
		kwOpts = append(kwOpts, keyword.WithLenientRegex(sink))
	}
	opts := registry.LoadOptions{Workers: cfg.Workers, Keyword: kwOpts}

	reg := registry.New()
	var (
		n   int
		err error
	)
	if cfg.SchemaDir == "" {
		n, err = reg.LoadFS(ctx, keywords.FS, ".", opts)
	} else {
		n, err = reg.LoadFS(ctx, os.DirFS(cfg.SchemaDir), ".", opts)
	}
	if err != nil {
		return nil, n, err
	}
	return reg, n, nil
}

func (cfg Config) parserOptions(sink diag.Sink) (parser.Options, error) {
	opts := parser.Options{
		Workers:      cfg.Workers,
		RateLimitRPS: cfg.RateLimitRPS,
		FailFast:     cfg.FailFast,
		Sink:         sink,
	}
	if cfg.Units != "" {
		sys, err := units.ByName(cfg.Units)
		if err != nil {
			return parser.Options{}, err
		}
		opts.Units = sys
	}
	return opts, nil
}

func schemaSource(cfg Config) string {
	if cfg.SchemaDir == "" {
		return "built-in"
	}
	return cfg.SchemaDir
}

// Check loads the schemas and reports how many were defined.
func Check(ctx context.Context, cfg Config, logOut io.Writer) error {
	rl := newRunLogger(logOut)
	start := time.Now()
	var c diag.Collector
	reg, n, err := LoadRegistry(ctx, cfg, diag.Tee(&c, rl.sink()))
	if err != nil {
		return err
	}
	rl.logf(
		"schemas loaded: source=%s definitions=%d keywords=%d warnings=%d duration=%s",
		schemaSource(cfg),
		n,
		reg.Len(),
		c.Count(diag.SeverityWarning),
		time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// Match prints the schema each deck name selects, or suggestions when none does.
func Match(ctx context.Context, cfg Config, names []string, w io.Writer) error {
	reg, _, err := LoadRegistry(ctx, cfg, nil)
	if err != nil {
		return err
	}
	for _, name := range names {
		if s, ok := reg.Lookup(name); ok {
			_, _ = fmt.Fprintf(w, "%s: %s\n", name, s)
			continue
		}
		if !keyword.ValidDeckName(name) {
			_, _ = fmt.Fprintf(w, "%s: not a valid deck keyword\n", name)
			continue
		}
		if sug := reg.Suggest(name, 3); len(sug) > 0 {
			_, _ = fmt.Fprintf(w, "%s: no schema; did you mean %s?\n", name, strings.Join(sug, ", "))
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: no schema\n", name)
	}
	return nil
}

// RunParse parses one deck. With csvPath set every value is written there; otherwise a
// keyword summary goes to w.
func RunParse(ctx context.Context, cfg Config, deckPath, csvPath string, w, logOut io.Writer) error {
	rl := newRunLogger(logOut)
	runStart := time.Now()

	reg, _, err := LoadRegistry(ctx, cfg, nil)
	if err != nil {
		return err
	}
	var c diag.Collector
	sink := diag.Tee(&c, rl.sink())
	opts, err := cfg.parserOptions(sink)
	if err != nil {
		return err
	}
	rl.logf(
		"parse start: deck=%s schemas=%s keywords=%d workers=%d rateLimitRPS=%g failFast=%t",
		deckPath,
		schemaSource(cfg),
		reg.Len(),
		cfg.Workers,
		cfg.RateLimitRPS,
		cfg.FailFast,
	)

	d, err := parser.New(reg, opts).ParseFile(ctx, deckPath)
	if err != nil {
		return err
	}
	rl.logf(
		"parse complete: keywords=%d warnings=%d errors=%d duration=%s",
		d.Len(),
		c.Count(diag.SeverityWarning),
		c.Count(diag.SeverityError),
		time.Since(runStart).Round(time.Millisecond),
	)

	if csvPath == "" {
		return writeSummary(w, d)
	}
	rows := pipeline.Rows(d)
	out := localio.CSVFile{Path: csvPath, Header: pipeline.Header()}
	if err := out.Store(ctx, pipeline.Records(rows)); err != nil {
		return err
	}
	rl.logf("wrote %d values to %s", len(rows), csvPath)
	return nil
}

func writeSummary(w io.Writer, d *deck.Deck) error {
	counts := make(map[string]int)
	var order []string
	for _, kw := range d.Keywords() {
		if counts[kw.Name] == 0 {
			order = append(order, kw.Name)
		}
		counts[kw.Name]++
	}
	sort.Strings(order)
	for _, name := range order {
		kw, _ := d.Last(name)
		if _, err := fmt.Fprintf(w, "%-8s occurrences=%d records=%d\n", name, counts[name], kw.Size()); err != nil {
			return err
		}
	}
	return nil
}

// RunBatch parses every deck listed in the "deck" column of listPath and writes one
// summary row per deck to outputPath.
func RunBatch(ctx context.Context, cfg Config, listPath, outputPath string, logOut io.Writer) error {
	rl := newRunLogger(logOut)
	runStart := time.Now()

	paths, err := localio.DeckList{Path: listPath}.Load(ctx)
	if err != nil {
		return err
	}
	reg, _, err := LoadRegistry(ctx, cfg, nil)
	if err != nil {
		return err
	}
	// Decks run concurrently and are rate limited as a whole, so each one parses its
	// keywords sequentially.
	perDeck := cfg
	perDeck.Workers = 1
	perDeck.RateLimitRPS = 0
	if _, err := perDeck.parserOptions(nil); err != nil {
		return err
	}
	session := func(sink diag.Sink) *parser.Session {
		opts, _ := perDeck.parserOptions(sink)
		return parser.New(reg, opts)
	}
	rl.logf("batch start: decks=%d workers=%d deckTimeout=%s failFast=%t", len(paths), cfg.Workers, cfg.DeckTimeout, cfg.FailFast)

	rows, err := pipeline.ParseDecks(ctx, paths, pipeline.ParseDeck(session, rl.sink()), pipeline.Options{
		Workers:      cfg.Workers,
		ItemTimeout:  cfg.DeckTimeout,
		RateLimitRPS: cfg.RateLimitRPS,
		FailFast:     cfg.FailFast,
	})
	if err != nil {
		return err
	}
	okRows, errorRows := countStatuses(rows)
	rl.logf(
		"batch complete: decks=%d ok=%d error=%d duration=%s",
		len(rows),
		okRows,
		errorRows,
		time.Since(runStart).Round(time.Millisecond),
	)

	out := localio.CSVFile{Path: outputPath, Header: pipeline.SummaryHeader()}
	return out.Store(ctx, pipeline.Summaries(rows))
}

func countStatuses(rows []pipeline.Summary) (int, int) {
	okRows := 0
	errorRows := 0
	for _, r := range rows {
		if r.Status == "ok" {
			okRows++
		} else {
			errorRows++
		}
	}
	return okRows, errorRows
}
