// Package registry indexes keyword schemas by canonical and deck name.
package registry

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/shpitdev/deckschema/pkg/keyword"
)

// Registry holds the schemas a deck is parsed against. It is safe for concurrent use;
// lookups may run while definitions are still being added.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*keyword.Schema
	byDeck  map[string]*keyword.Schema
	regex   []*keyword.Schema
	order   []string
	sources map[string]struct{}
}

func New() *Registry {
	return &Registry{
		byName:  make(map[string]*keyword.Schema),
		byDeck:  make(map[string]*keyword.Schema),
		sources: make(map[string]struct{}),
	}
}

// Add registers s. Adding a schema equal to a registered one with the same canonical name is a
// no-op; a different schema under a taken canonical or deck name is an error.
func (r *Registry) Add(s *keyword.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[s.Name()]; ok {
		if prev.Equal(s) {
			return nil
		}
		return fmt.Errorf("keyword %s is already defined with a different schema", s.Name())
	}
	names := s.DeckNames()
	for _, n := range names {
		if prev, ok := r.byDeck[n]; ok {
			return fmt.Errorf("keyword %s: deck name %s already belongs to %s", s.Name(), n, prev.Name())
		}
	}

	r.byName[s.Name()] = s
	r.order = append(r.order, s.Name())
	for _, n := range names {
		r.byDeck[n] = s
	}
	if s.HasMatchRegex() {
		r.regex = append(r.regex, s)
	}
	if sz, ok := s.Size().(keyword.FromKeyword); ok {
		r.sources[sz.Keyword] = struct{}{}
	}
	return nil
}

// Get returns the schema with canonical name name.
func (r *Registry) Get(name string) (*keyword.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Lookup returns the schema selected by a deck keyword. Exact deck names win over
// expressions; expressions are tried in registration order.
func (r *Registry) Lookup(deckName string) (*keyword.Schema, bool) {
	if !keyword.ValidDeckName(deckName) {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byDeck[deckName]; ok {
		return s, true
	}
	for _, s := range r.regex {
		if s.Matches(deckName) {
			return s, true
		}
	}
	return nil, false
}

// Names returns the canonical names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// IsSizeSource reports whether some registered schema takes its size from keyword name.
func (r *Registry) IsSizeSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sources[name]
	return ok
}

// Suggest returns up to limit registered deck names resembling name, closest first.
func (r *Registry) Suggest(name string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}
	r.mu.RLock()
	candidates := make([]string, 0, len(r.byDeck))
	for n := range r.byDeck {
		candidates = append(candidates, n)
	}
	r.mu.RUnlock()
	sort.Strings(candidates)

	type hit struct {
		name string
		dist int
	}
	var hits []hit
	seen := make(map[string]bool)
	ranks := fuzzy.RankFindFold(name, candidates)
	sort.Sort(ranks)
	for _, rk := range ranks {
		hits = append(hits, hit{name: rk.Target, dist: rk.Distance})
		seen[rk.Target] = true
	}
	// Typos are not subsequences; catch them by edit distance.
	upper := strings.ToUpper(name)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(upper, strings.ToUpper(c)); d <= 2 {
			hits = append(hits, hit{name: c, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, 0, limit)
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, h.name)
	}
	return out
}
