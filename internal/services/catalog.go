package services

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/ctxutil"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// ReseedResult describes the tree that was swapped into the cache.
type ReseedResult struct {
	Menus    int `json:"menus"`
	Submenus int `json:"submenus"`
	Dishes   int `json:"dishes"`
}

type CatalogService interface {
	// GetEverything reads the whole nested catalog from the entity store.
	GetEverything(ctx context.Context) ([]catalog.MenuNode, error)
	// CachedTree returns the whole tree cache document.
	CachedTree(ctx context.Context) ([]catalog.MenuNode, error)
	// Reseed rebuilds the tree from the store and swaps it into the cache.
	// Callers waiting at the same time share one rebuild, but a caller never
	// joins a rebuild that began reading the store before the call.
	Reseed(ctx context.Context) (ReseedResult, error)
	// Bootstrap ensures the cache document exists, then reseeds it.
	Bootstrap(ctx context.Context) (ReseedResult, error)
}

type catalogService struct {
	builder TreeBuilder
	tree    *treecache.Tree
	log     *logger.Logger
	flight  singleflight.Group

	mu sync.Mutex
	// next is the generation the next rebuild to start will carry.
	next uint64
	// live is the generation of the tree last swapped into the cache.
	live uint64
}

func NewCatalogService(baseLog *logger.Logger, builder TreeBuilder, tree *treecache.Tree) CatalogService {
	return &catalogService{
		builder: builder,
		tree:    tree,
		log:     baseLog.With("service", "CatalogService"),
	}
}

func (s *catalogService) GetEverything(ctx context.Context) ([]catalog.MenuNode, error) {
	ctx, span := tracer.Start(ctx, "catalog.get_everything")
	defer span.End()
	out, err := s.builder.Build(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}
	return out, nil
}

func (s *catalogService) CachedTree(ctx context.Context) ([]catalog.MenuNode, error) {
	out, err := s.tree.All(ctx)
	if err != nil {
		return nil, cacheReadErr("catalog.cached_tree", err)
	}
	return out, nil
}

func (s *catalogService) Reseed(ctx context.Context) (ReseedResult, error) {
	s.mu.Lock()
	gen := s.next
	s.mu.Unlock()

	ch := s.flight.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		// Seal the generation before reading the store. Callers arriving from
		// here on get a later rebuild.
		s.mu.Lock()
		if s.next == gen {
			s.next++
		}
		s.mu.Unlock()
		return s.reseed(context.WithoutCancel(ctx), gen)
	})
	select {
	case <-ctx.Done():
		return ReseedResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ReseedResult{}, res.Err
		}
		return res.Val.(ReseedResult), nil
	}
}

func (s *catalogService) reseed(ctx context.Context, gen uint64) (ReseedResult, error) {
	const op = "catalog.reseed"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int64("catalog.generation", int64(gen)))

	menus, err := s.builder.Build(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return ReseedResult{}, err
	}
	m, sub, d := catalog.Counts(menus)
	result := ReseedResult{Menus: m, Submenus: sub, Dishes: d}

	// A later generation read the store after this one did, so its tree
	// already covers every write this rebuild could have seen.
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.live {
		s.log.Debug("stale rebuild not swapped", "generation", gen, "live", s.live)
		return result, nil
	}
	if err := s.tree.Swap(ctx, menus); err != nil {
		err = catalog.SyncError(op, true, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "swap failed")
		return ReseedResult{}, err
	}
	s.live = gen

	span.SetAttributes(
		attribute.Int("catalog.menus", m),
		attribute.Int("catalog.submenus", sub),
		attribute.Int("catalog.dishes", d),
	)
	s.log.Info("tree cache reseeded", append(ctxutil.LogFields(ctx), "menus", m, "submenus", sub, "dishes", d)...)
	return result, nil
}

func (s *catalogService) Bootstrap(ctx context.Context) (ReseedResult, error) {
	if err := s.tree.Init(ctx); err != nil {
		return ReseedResult{}, catalog.SyncError("catalog.bootstrap", true, err)
	}
	return s.Reseed(ctx)
}
