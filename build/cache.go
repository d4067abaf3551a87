package build

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"xcss/css"
)

type cached struct {
	text  string
	sheet *css.Stylesheet
	out   string
	used  bool
}

// Cache keeps compiled stylesheets keyed by hash of their source text, so
// unchanged files are not recompiled on rebuild. Hits are confirmed against
// the full text. Compiler options must not
// change during cache lifetime. Failed compilations are never cached.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*cached
	hits    int
	misses  int
}

func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*cached)}
}

// Compile returns compiled stylesheet and its text for source.
func (c *Cache) Compile(compiler *css.Compiler, text string) (*css.Stylesheet, string, error) {
	key := xxhash.Sum64String(text)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.text == text {
		e.used = true
		c.hits++
		c.mu.Unlock()
		return e.sheet, e.out, nil
	}
	c.misses++
	c.mu.Unlock()

	sheet, err := compiler.Build(text)
	if err != nil {
		return nil, "", err
	}
	out := sheet.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cached{text: text, sheet: sheet, out: out, used: true}
	return sheet, out, nil
}

// Sweep drops entries not used since previous sweep and resets counters,
// returning hits and misses seen since then.
func (c *Cache) Sweep() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !e.used {
			delete(c.entries, k)
			continue
		}
		e.used = false
	}
	hits, misses = c.hits, c.misses
	c.hits, c.misses = 0, 0
	return hits, misses
}

// Len returns number of cached stylesheets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
