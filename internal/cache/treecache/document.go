package treecache

import (
	"context"
	"encoding/json"
)

// Document is a single JSON document holding the catalog as an array of
// menu nodes. Reads and writes are addressed by Path; counts returned by
// writes are the number of nodes the path matched.
type Document interface {
	// Init creates an empty document unless one already exists.
	Init(ctx context.Context) error
	Load(ctx context.Context) (json.RawMessage, error)
	Replace(ctx context.Context, doc json.RawMessage) error

	Get(ctx context.Context, p Path) ([]json.RawMessage, error)
	// Children returns the children array of the node at p, or the top
	// level when p is empty. A missing node yields an empty slice.
	Children(ctx context.Context, p Path) ([]json.RawMessage, error)
	Set(ctx context.Context, p Path, fields map[string]any) (int, error)
	Delete(ctx context.Context, p Path) (int, error)
	Append(ctx context.Context, parent Path, node any) (int, error)
}

func firstArray(raw []byte) ([]json.RawMessage, error) {
	var matches []json.RawMessage
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []json.RawMessage{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(matches[0], &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items, nil
}
