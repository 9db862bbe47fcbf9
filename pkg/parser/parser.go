// Package parser runs a whole deck through the keyword schemas of a registry.
package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/diag"
	"github.com/shpitdev/deckschema/pkg/keyword"
	"github.com/shpitdev/deckschema/pkg/pipeline/worker"
	"github.com/shpitdev/deckschema/pkg/rawdeck"
	"github.com/shpitdev/deckschema/pkg/registry"
	"github.com/shpitdev/deckschema/pkg/units"
)

// ErrUnknownKeyword is returned for raw occurrences no registered schema matches.
var ErrUnknownKeyword = errors.New("unknown keyword")

// Sections are the keywords that switch the deck section.
var Sections = []string{"RUNSPEC", "GRID", "EDIT", "PROPS", "REGIONS", "SOLUTION", "SUMMARY", "SCHEDULE"}

type Options struct {
	Workers      int
	RateLimitRPS float64
	// FailFast aborts on the first occurrence that cannot be parsed. Otherwise failures are
	// reported as error diagnostics and the occurrence is left out of the deck.
	FailFast bool
	// Units overrides the unit system. When nil, FIELD in the deck selects field units and
	// everything else gets metric units.
	Units units.System
	Sink  diag.Sink
	// Suggestions bounds the names offered for unknown keywords. Zero means 3, negative none.
	Suggestions int
}

// Session parses decks against one registry. It is safe for concurrent use.
type Session struct {
	reg  *registry.Registry
	opts Options
	sink diag.Sink
}

func New(reg *registry.Registry, opts Options) *Session {
	if opts.Suggestions == 0 {
		opts.Suggestions = 3
	}
	return &Session{reg: reg, opts: opts, sink: diag.OrDiscard(opts.Sink)}
}

// ParseFile lexes and parses the deck at path.
func (s *Session) ParseFile(ctx context.Context, path string) (*deck.Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return s.ParseReader(ctx, f, path)
}

// ParseReader lexes and parses the deck read from r. name is used in locations.
func (s *Session) ParseReader(ctx context.Context, r io.Reader, name string) (*deck.Deck, error) {
	raws, err := s.Lex(ctx, r, name)
	if err != nil {
		return nil, err
	}
	return s.ParseKeywords(ctx, raws)
}

// Lex splits deck text into raw occurrences using the registry's schemas for record shapes.
func (s *Session) Lex(ctx context.Context, r io.Reader, name string) ([]*deck.RawKeyword, error) {
	var opts []rawdeck.Option
	if s.opts.Suggestions > 0 {
		opts = append(opts, rawdeck.WithSuggestions(func(n string) []string {
			return s.reg.Suggest(n, s.opts.Suggestions)
		}))
	}
	sh := &shaper{reg: s.reg, parsed: make(map[*deck.RawKeyword]*deck.Keyword)}
	return rawdeck.NewReader(sh, s.sink, opts...).Read(ctx, r, name)
}

// SelectUnits returns the unit system used for raws.
func (s *Session) SelectUnits(raws []*deck.RawKeyword) units.System {
	if s.opts.Units != nil {
		return s.opts.Units
	}
	for _, raw := range raws {
		if raw.Name == "FIELD" {
			return units.Field()
		}
	}
	return units.Metric()
}

// job is one raw occurrence scheduled for parsing.
type job struct {
	idx    int
	raw    *deck.RawKeyword
	schema *keyword.Schema
	// dep is the position of the occurrence this one takes its size from, or -1.
	dep int
}

// ParseKeywords parses raws in deck order and returns the resulting deck.
//
// Occurrences are parsed in waves: one whose size comes from keyword K runs one wave after the
// last K before it, and sees only that occurrence. The result equals a sequential parse.
func (s *Session) ParseKeywords(ctx context.Context, raws []*deck.RawKeyword) (*deck.Deck, error) {
	sys := s.SelectUnits(raws)
	jobs, waves, err := s.plan(raws)
	if err != nil {
		return nil, err
	}

	parsed := make([]*deck.Keyword, len(raws))
	parse := func(_ context.Context, j job) (*deck.Keyword, error) {
		var state keyword.State = priorState{}
		if j.dep >= 0 {
			state = priorState{kw: parsed[j.dep]}
		}
		kw, err := j.schema.Parse(j.raw, state, s.sink)
		if err != nil {
			return nil, err
		}
		if j.schema.HasDimension() {
			if err := j.schema.ApplyUnits(sys, kw); err != nil {
				return nil, fmt.Errorf("%s: %w", j.raw.Location, err)
			}
		}
		return kw, nil
	}
	report := func(res worker.Result[job, *deck.Keyword]) error {
		if res.Err != nil {
			s.sink.Report(diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.CodeKeywordParseFailed,
				Keyword:  res.Input.raw.Name,
				Location: res.Input.raw.Location,
				Message:  res.Err.Error(),
			})
		}
		return nil
	}
	policy := worker.FailurePolicyPartialOutput
	if s.opts.FailFast {
		policy = worker.FailurePolicyFailFast
	}

	for w, wave := range waves {
		if len(wave) == 0 {
			continue
		}
		items := make([]job, 0, len(wave))
		for _, i := range wave {
			items = append(items, jobs[i])
		}
		results, err := worker.ProcessAllWithCallback(ctx, items, parse, report, worker.Options{
			Workers:       s.opts.Workers,
			RateLimitRPS:  s.opts.RateLimitRPS,
			FailurePolicy: policy,
		})
		if err != nil {
			return nil, fmt.Errorf("parse wave %d: %w", w, err)
		}
		for _, res := range results {
			if res.Err == nil {
				parsed[res.Input.idx] = res.Output
			}
		}
	}

	d := deck.New()
	for _, kw := range parsed {
		if kw != nil {
			d.Add(kw)
		}
	}
	return d, nil
}

// plan resolves schemas, checks sections and groups the occurrences into waves.
func (s *Session) plan(raws []*deck.RawKeyword) ([]job, [][]int, error) {
	jobs := make([]job, len(raws))
	level := make([]int, len(raws))
	last := make(map[string]int)
	section := ""
	var waves [][]int
	for i, raw := range raws {
		j := job{idx: i, raw: raw, dep: -1}
		schema, ok := s.reg.Lookup(raw.Name)
		if !ok {
			err := fmt.Errorf("%s: %w %s", raw.Location, ErrUnknownKeyword, raw.Name)
			if s.opts.FailFast {
				return nil, nil, err
			}
			s.sink.Report(diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.CodeUnknownKeyword,
				Keyword:  raw.Name,
				Location: raw.Location,
				Message:  err.Error(),
			})
			jobs[i] = j
			level[i] = -1
			continue
		}
		j.schema = schema
		if slices.Contains(Sections, raw.Name) {
			section = raw.Name
		} else if section != "" && !schema.ValidSection(section) {
			s.sink.Report(diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Code:     diag.CodeWrongSection,
				Keyword:  raw.Name,
				Location: raw.Location,
				Message:  fmt.Sprintf("keyword is not expected in section %s", section),
			})
		}
		if sz, ok := schema.Size().(keyword.FromKeyword); ok {
			if p, ok := last[sz.Keyword]; ok {
				j.dep = p
				level[i] = level[p] + 1
			}
		}
		last[raw.Name] = i
		jobs[i] = j

		for len(waves) <= level[i] {
			waves = append(waves, nil)
		}
		waves[level[i]] = append(waves[level[i]], i)
	}
	return jobs, waves, nil
}

// priorState exposes at most one previously parsed occurrence to size resolution.
type priorState struct {
	kw *deck.Keyword
}

func (p priorState) Last(name string) (*deck.Keyword, bool) {
	if p.kw == nil || p.kw.Name != name {
		return nil, false
	}
	return p.kw, true
}
