package graphstore

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// queryEnv is the only surface a compiled query pattern may observe: the
// node's kind and its property map. Parameters bind into this env by name
// through expr's own variable resolution — never by string-splicing a
// parameter value into the pattern text — so no parameter can alter
// structure (§4.1 Query: "parameters bind by name and CANNOT alter
// structure").
type queryEnv struct {
	Kind       string         `expr:"kind"`
	Properties map[string]any `expr:"properties"`
	Params     map[string]any `expr:"params"`
}

// queryCache compiles each distinct pattern string once and reuses the
// compiled program across calls, grounded on smilemakc/mbflow's
// ConditionCache (pkg/engine/condition_cache.go): an LRU of compiled
// expr.Program keyed by the raw pattern text.
type queryCache struct {
	mu       sync.Mutex
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
}

type queryCacheEntry struct {
	pattern string
	program *vm.Program
}

func newQueryCache(capacity int) *queryCache {
	if capacity <= 0 {
		capacity = 64
	}
	return &queryCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *queryCache) compile(pattern string) (*vm.Program, error) {
	c.mu.Lock()
	if el, ok := c.cache[pattern]; ok {
		c.lru.MoveToFront(el)
		entry := el.Value.(*queryCacheEntry)
		c.mu.Unlock()
		return entry.program, nil
	}
	c.mu.Unlock()

	program, err := expr.Compile(pattern, expr.Env(queryEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("graphstore: query pattern must be parsed, not interpolated: %w", err)
	}

	c.mu.Lock()
	entry := &queryCacheEntry{pattern: pattern, program: program}
	el := c.lru.PushFront(entry)
	c.cache[pattern] = el
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*queryCacheEntry).pattern)
		}
	}
	c.mu.Unlock()

	return program, nil
}

var defaultQueryCache = newQueryCache(64)

// MatchKindProperty is the reference query pattern named in §4.1: "match
// all nodes of kind K whose property equals param". Callers pass
// params = {"kind": "...", "key": "...", "value": ...}.
const MatchKindProperty = `kind == params["kind"] && properties[params["key"]] == params["value"]`

// Query evaluates pattern against every node, binding params through
// expr.Env rather than interpolating them into pattern text. Results are
// capped at MaxQueryRows (§4.1).
func (s *Store) Query(pattern string, params map[string]any) ([]Node, error) {
	program, err := defaultQueryCache.compile(pattern)
	if err != nil {
		return nil, err
	}

	nodes := s.snapshotAllNodes()
	var out []Node
	for _, n := range nodes {
		env := queryEnv{
			Kind:       string(n.Type),
			Properties: n.Properties.NativeMap(),
			Params:     params,
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("graphstore: query evaluation failed: %w", err)
		}
		matched, ok := result.(bool)
		if !ok || !matched {
			continue
		}
		out = append(out, n)
		if len(out) >= MaxQueryRows {
			break
		}
	}
	return out, nil
}
