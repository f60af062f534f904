package toolkit

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rickchristie/reagent"
)

// resultCache keeps folded results of cacheable tools keyed by name and
// arguments. Entries expire after ttl; a non-positive ttl keeps them until
// evicted.
type resultCache struct {
	lru *expirable.LRU[string, *reagent.ToolChunk]
}

func newResultCache(size int, ttl time.Duration) (*resultCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	return &resultCache{lru: expirable.NewLRU[string, *reagent.ToolChunk](size, nil, ttl)}, nil
}

func (c *resultCache) get(key string) (*reagent.ToolChunk, bool) {
	chunk, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return copyChunk(chunk), true
}

func (c *resultCache) add(key string, chunk *reagent.ToolChunk) {
	c.lru.Add(key, copyChunk(chunk))
}

// cacheKey is deterministic: json.Marshal sorts map keys at every level.
func cacheKey(name string, args map[string]any) string {
	if len(args) == 0 {
		return name + ":{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s:%v", name, args)
	}
	return name + ":" + string(b)
}

func copyChunk(c *reagent.ToolChunk) *reagent.ToolChunk {
	return &reagent.ToolChunk{
		Content:  append([]reagent.ContentUnit(nil), c.Content...),
		Metadata: maps.Clone(c.Metadata),
		IsFinal:  c.IsFinal,
	}
}

// recorder collapses the chunks of one invocation into a single final chunk.
type recorder struct {
	text     string
	metadata map[string]any
	failed   bool
}

func (r *recorder) add(c *reagent.ToolChunk) {
	r.text += c.Text()
	if len(c.Metadata) > 0 {
		if r.metadata == nil {
			r.metadata = map[string]any{}
		}
		maps.Copy(r.metadata, c.Metadata)
	}
	if !c.Success() {
		r.failed = true
	}
}

func (r *recorder) ok() bool {
	return !r.failed
}

func (r *recorder) chunk() *reagent.ToolChunk {
	c := &reagent.ToolChunk{Metadata: r.metadata, IsFinal: true}
	if r.text != "" {
		c.Content = []reagent.ContentUnit{reagent.TextUnit{Text: r.text}}
	}
	return c
}
