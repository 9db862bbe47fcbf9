package parser

import (
	"sync"

	"github.com/shpitdev/deckschema/pkg/deck"
	"github.com/shpitdev/deckschema/pkg/keyword"
	"github.com/shpitdev/deckschema/pkg/rawdeck"
	"github.com/shpitdev/deckschema/pkg/registry"
)

// shaper tells the lexer how many records a keyword has, using the registry's schemas.
type shaper struct {
	reg *registry.Registry

	mu sync.Mutex
	// parsed caches size producers parsed while lexing.
	parsed map[*deck.RawKeyword]*deck.Keyword
}

func (sh *shaper) Shape(name string, prior []*deck.RawKeyword) (rawdeck.Shape, bool, error) {
	schema, ok := sh.reg.Lookup(name)
	if !ok {
		return rawdeck.Shape{}, false, nil
	}
	switch sz := schema.Size().(type) {
	case keyword.Fixed:
		return rawdeck.CountedShape(sz.N), true, nil
	case keyword.TerminatorDelimited:
		return rawdeck.TerminatedShape(), true, nil
	case keyword.FromKeyword:
		n, ok := sh.fromKeyword(schema, sz, prior)
		if !ok {
			// Read to the next keyword; parsing reports why the size is unknown.
			return rawdeck.OpenShape(), true, nil
		}
		// A table collection has one slash-ended record per table.
		return rawdeck.CountedShape(n), true, nil
	default:
		return rawdeck.OpenShape(), true, nil
	}
}

// fromKeyword resolves sz against the last finished occurrence of its producer in prior.
func (sh *shaper) fromKeyword(schema *keyword.Schema, sz keyword.FromKeyword, prior []*deck.RawKeyword) (int, bool) {
	var raw *deck.RawKeyword
	for i := len(prior) - 1; i >= 0; i-- {
		if prior[i].Name == sz.Keyword {
			raw = prior[i]
			break
		}
	}
	if raw == nil || !raw.Finished {
		return 0, false
	}
	kw, ok := sh.producer(raw)
	if !ok {
		return 0, false
	}
	n, err := schema.ResolveSize(priorState{kw: kw})
	if err != nil {
		return 0, false
	}
	return n, true
}

func (sh *shaper) producer(raw *deck.RawKeyword) (*deck.Keyword, bool) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if kw, ok := sh.parsed[raw]; ok {
		return kw, kw != nil
	}
	var kw *deck.Keyword
	if schema, ok := sh.reg.Lookup(raw.Name); ok {
		// Diagnostics are left to the full parse.
		kw, _ = schema.Parse(raw, nil, nil)
	}
	sh.parsed[raw] = kw
	return kw, kw != nil
}
