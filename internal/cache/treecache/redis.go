package treecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

const DefaultKey = "menus"

// RedisDocument stores the tree under one RedisJSON key.
type RedisDocument struct {
	rdb goredis.UniversalClient
	key string
	log *logger.Logger
}

func NewRedisDocument(rdb goredis.UniversalClient, key string, log *logger.Logger) *RedisDocument {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &RedisDocument{
		rdb: rdb,
		key: key,
		log: log.With("service", "RedisTreeDocument", "key", key),
	}
}

func (d *RedisDocument) Init(ctx context.Context) error {
	err := d.rdb.JSONSetMode(ctx, d.key, "$", "[]", "NX").Err()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("json.set nx %s: %w", d.key, err)
	}
	return nil
}

func (d *RedisDocument) Load(ctx context.Context) (json.RawMessage, error) {
	raw, err := d.rdb.JSONGet(ctx, d.key, "$").Result()
	if errors.Is(err, goredis.Nil) || (err == nil && raw == "") {
		return json.RawMessage("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("json.get %s: %w", d.key, err)
	}
	var wrapped []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.key, err)
	}
	if len(wrapped) == 0 {
		return json.RawMessage("[]"), nil
	}
	return wrapped[0], nil
}

func (d *RedisDocument) Replace(ctx context.Context, doc json.RawMessage) error {
	if len(doc) == 0 {
		doc = json.RawMessage("[]")
	}
	if err := d.rdb.JSONSet(ctx, d.key, "$", []byte(doc)).Err(); err != nil {
		return fmt.Errorf("json.set %s: %w", d.key, err)
	}
	return nil
}

func (d *RedisDocument) Get(ctx context.Context, p Path) ([]json.RawMessage, error) {
	raw, err := d.rdb.JSONGet(ctx, d.key, p.JSONPath()).Result()
	if errors.Is(err, goredis.Nil) || (err == nil && raw == "") {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json.get %s %s: %w", d.key, p, err)
	}
	var out []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return out, nil
}

func (d *RedisDocument) Children(ctx context.Context, p Path) ([]json.RawMessage, error) {
	raw, err := d.rdb.JSONGet(ctx, d.key, p.ChildrenJSONPath()).Result()
	if errors.Is(err, goredis.Nil) || (err == nil && raw == "") {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json.get %s %s: %w", d.key, p, err)
	}
	items, err := firstArray([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode children of %s: %w", p, err)
	}
	return items, nil
}

// Set overwrites the given fields of every node matching p inside one
// MULTI/EXEC so readers never see a half-updated node.
func (d *RedisDocument) Set(ctx context.Context, p Path, fields map[string]any) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("set requires a node path")
	}
	matched, err := d.Get(ctx, p)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 || len(fields) == 0 {
		return len(matched), nil
	}

	payloads := make(map[string][]byte, len(fields))
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("encode field %s: %w", k, err)
		}
		payloads[k] = b
	}

	base := p.JSONPath()
	_, err = d.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for k, b := range payloads {
			pipe.JSONSet(ctx, d.key, base+"."+k, b)
		}
		return nil
	})
	if errors.Is(err, goredis.Nil) {
		// Node vanished between the match check and the transaction.
		d.log.Warn("tree node disappeared during set", "path", p.String())
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("json.set %s %s: %w", d.key, p, err)
	}
	return len(matched), nil
}

func (d *RedisDocument) Delete(ctx context.Context, p Path) (int, error) {
	if len(p) == 0 {
		return 0, fmt.Errorf("delete requires a node path")
	}
	n, err := d.rdb.JSONDel(ctx, d.key, p.JSONPath()).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("json.del %s %s: %w", d.key, p, err)
	}
	return int(n), nil
}

func (d *RedisDocument) Append(ctx context.Context, parent Path, node any) (int, error) {
	b, err := json.Marshal(node)
	if err != nil {
		return 0, fmt.Errorf("encode node: %w", err)
	}
	lengths, err := d.rdb.JSONArrAppend(ctx, d.key, parent.ChildrenJSONPath(), string(b)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("json.arrappend %s %s: %w", d.key, parent, err)
	}
	matched := 0
	for _, n := range lengths {
		if n > 0 {
			matched++
		}
	}
	return matched, nil
}
