package app

import (
	"context"
	"sync"
	"time"

	"cdr.dev/slog/v3"

	"authz-service/internal/grantsource"
	"authz-service/internal/infra/cache"
	"authz-service/pkg/logger"
	"authz-service/pkg/metrics"
	"authz-service/pkg/rbac"
)

const cachePruneInterval = time.Minute

// Service owns the authorization engine and keeps its grant table current.
type Service struct {
	engine  *rbac.Engine
	source  grantsource.Source
	cache   *cache.CapabilityCache
	metrics *metrics.Metrics
	logger  slog.Logger

	reloadInterval time.Duration

	// reloadMu serializes loads so fingerprints reported by Reload belong
	// to the same swap.
	reloadMu sync.Mutex
}

// NewService builds an engine with no table loaded. Call Reload before
// serving.
func NewService(source grantsource.Source, m *metrics.Metrics, cacheTTL, reloadInterval time.Duration, log slog.Logger) (*Service, error) {
	capCache := cache.NewCapabilityCache(cacheTTL)
	engine, err := rbac.NewEngine(
		rbac.WithCapabilityCache(capCache),
		rbac.WithLoadHook(func(_, next *rbac.GrantTable) {
			m.SetTable(next.Fingerprint())
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		engine:         engine,
		source:         source,
		cache:          capCache,
		metrics:        m,
		logger:         log.Named("grant_table"),
		reloadInterval: reloadInterval,
	}, nil
}

func (s *Service) Engine() *rbac.Engine {
	return s.engine
}

// Reload fetches the grant table from the source and installs it. On any
// failure the served table is left untouched.
func (s *Service) Reload(ctx context.Context) (previous, current string, err error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	previous = s.engine.Fingerprint()

	table, err := s.source.Load(ctx)
	if err == nil {
		err = s.engine.Load(table)
	}
	s.metrics.ObserveReload(s.source.Name(), err)
	if err != nil {
		s.logger.Warn(ctx, "grant table load failed",
			slog.F("source", s.source.Name()),
			slog.F("fingerprint", previous),
			logger.Error(err),
		)
		return previous, previous, err
	}

	current = table.Fingerprint()
	if current != previous {
		s.logger.Info(ctx, "grant table loaded",
			slog.F("source", s.source.Name()),
			slog.F("previous", previous),
			slog.F("fingerprint", current),
			slog.F("roles", len(table.Roles())),
		)
	}
	return previous, current, nil
}

// Run keeps background work going until ctx is done: the capability cache
// pruner and, when an interval is configured, periodic reloads.
func (s *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.cache.RunPruner(ctx, cachePruneInterval)
	}()

	if s.reloadInterval > 0 {
		ticker := time.NewTicker(s.reloadInterval)
		defer ticker.Stop()
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
				// Failures are logged and counted by Reload.
				_, _, _ = s.Reload(ctx)
			}
		}
	}

	wg.Wait()
}
