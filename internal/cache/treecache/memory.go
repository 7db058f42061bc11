package treecache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryDocument keeps the tree in process. It follows the same path
// semantics as RedisDocument and backs tests and cache-less local runs.
type MemoryDocument struct {
	mu   sync.RWMutex
	root []any
	init bool
}

func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{}
}

func (d *MemoryDocument) Init(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.init {
		d.root = []any{}
		d.init = true
	}
	return nil
}

func (d *MemoryDocument) Load(ctx context.Context) (json.RawMessage, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.root == nil {
		return json.RawMessage("[]"), nil
	}
	b, err := json.Marshal(d.root)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (d *MemoryDocument) Replace(ctx context.Context, doc json.RawMessage) error {
	if len(doc) == 0 {
		doc = json.RawMessage("[]")
	}
	var root []any
	if err := json.Unmarshal(doc, &root); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if root == nil {
		root = []any{}
	}
	d.mu.Lock()
	d.root = root
	d.init = true
	d.mu.Unlock()
	return nil
}

func (d *MemoryDocument) Get(ctx context.Context, p Path) ([]json.RawMessage, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []json.RawMessage{}
	for _, node := range d.match(p) {
		b, err := json.Marshal(node)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (d *MemoryDocument) Children(ctx context.Context, p Path) ([]json.RawMessage, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var items []any
	if len(p) == 0 {
		items = d.root
	} else {
		nodes := d.match(p)
		if len(nodes) == 0 {
			return []json.RawMessage{}, nil
		}
		items, _ = nodes[0][childKey(len(p))].([]any)
	}
	out := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (d *MemoryDocument) Set(ctx context.Context, p Path, fields map[string]any) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("set requires a node path")
	}
	normalized, err := normalize(fields)
	if err != nil {
		return 0, err
	}
	values, _ := normalized.(map[string]any)

	d.mu.Lock()
	defer d.mu.Unlock()
	nodes := d.match(p)
	for _, node := range nodes {
		for k, v := range values {
			node[k] = v
		}
	}
	return len(nodes), nil
}

func (d *MemoryDocument) Delete(ctx context.Context, p Path) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("delete requires a node path")
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	id := p[len(p)-1]
	if len(p) == 1 {
		var removed int
		d.root, removed = without(d.root, id)
		return removed, nil
	}
	total := 0
	key := childKey(len(p) - 1)
	for _, parent := range d.match(p.Parent()) {
		items, _ := parent[key].([]any)
		kept, removed := without(items, id)
		parent[key] = kept
		total += removed
	}
	return total, nil
}

func (d *MemoryDocument) Append(ctx context.Context, parent Path, node any) (int, error) {
	v, err := normalize(node)
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(parent) == 0 {
		if d.root == nil {
			d.root = []any{}
		}
		d.root = append(d.root, v)
		return 1, nil
	}
	key := childKey(len(parent))
	matched := 0
	for _, p := range d.match(parent) {
		items, ok := p[key].([]any)
		if !ok && p[key] != nil {
			continue
		}
		p[key] = append(items, v)
		matched++
	}
	return matched, nil
}

// match walks the tree one id predicate per level. Callers hold d.mu.
func (d *MemoryDocument) match(p Path) []map[string]any {
	level := d.root
	var current []map[string]any
	for depth, id := range p {
		current = current[:0:0]
		for _, it := range level {
			node, ok := it.(map[string]any)
			if !ok || node["id"] != id {
				continue
			}
			current = append(current, node)
		}
		if depth == len(p)-1 || len(current) == 0 {
			break
		}
		level = nil
		for _, node := range current {
			children, _ := node[childKey(depth+1)].([]any)
			level = append(level, children...)
		}
	}
	return current
}

func without(items []any, id string) ([]any, int) {
	kept := make([]any, 0, len(items))
	removed := 0
	for _, it := range items {
		if node, ok := it.(map[string]any); ok && node["id"] == id {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	return kept, removed
}

// normalize converts v into the generic shape encoding/json decodes to, so
// stored values compare and marshal like the Redis copy would.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode node: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
