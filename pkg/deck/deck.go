// Package deck holds raw and parsed keyword occurrences of a simulation deck.
package deck

import "sync"

// Deck is an append-only sequence of parsed keywords indexed by name.
//
// Writers append in deck order; readers may query concurrently.
type Deck struct {
	mu       sync.RWMutex
	keywords []*Keyword
	byName   map[string][]int
}

func New() *Deck {
	return &Deck{byName: make(map[string][]int)}
}

// Add appends kw and returns its position.
func (d *Deck) Add(kw *Keyword) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx := len(d.keywords)
	d.keywords = append(d.keywords, kw)
	d.byName[kw.Name] = append(d.byName[kw.Name], idx)
	return idx
}

func (d *Deck) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.keywords)
}

// Keyword returns the keyword at position i.
func (d *Deck) Keyword(i int) *Keyword {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.keywords[i]
}

// Keywords returns a snapshot of all keywords in deck order.
func (d *Deck) Keywords() []*Keyword {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Keyword, len(d.keywords))
	copy(out, d.keywords)
	return out
}

// Last returns the most recently added keyword called name.
func (d *Deck) Last(name string) (*Keyword, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.byName[name]
	if len(idx) == 0 {
		return nil, false
	}
	return d.keywords[idx[len(idx)-1]], true
}

// All returns every occurrence of name in deck order.
func (d *Deck) All(name string) []*Keyword {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx := d.byName[name]
	out := make([]*Keyword, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.keywords[i])
	}
	return out
}

func (d *Deck) Count(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byName[name])
}

func (d *Deck) Has(name string) bool { return d.Count(name) > 0 }
