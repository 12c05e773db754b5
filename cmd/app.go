package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bldg-intel/odcv-cli/internal/dataset"
	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/internal/query"
	"github.com/bldg-intel/odcv-cli/internal/report"
	"github.com/bldg-intel/odcv-cli/internal/resolve"
	"github.com/bldg-intel/odcv-cli/internal/scoring"
	"github.com/bldg-intel/odcv-cli/internal/store"
	"github.com/bldg-intel/odcv-cli/pkg/geoclient"
)

// appEnv wires the shared components a command needs.
type appEnv struct {
	published *profile.Published
	engine    *query.Engine
	bulk      *query.BulkScorer
	resolver  *resolve.Resolver
	reports   *report.Generator
	store     *store.SQLiteStore
}

func (a *appEnv) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			zap.L().Warn("closing store", zap.Error(err))
		}
	}
}

// initApp builds the environment. The snapshot comes from the sqlite cache
// when available, otherwise from a fresh dataset load (which also refreshes
// the cache).
func initApp(ctx context.Context) (*appEnv, error) {
	a := &appEnv{published: &profile.Published{}}

	resolver, err := newResolver()
	if err != nil {
		return nil, err
	}
	a.resolver = resolver

	if cfg.Store.Path != "" {
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		a.store = s
	}

	snap, err := loadSnapshot(ctx, a.store)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.published.Publish(snap)

	scorer := scoring.New(cfg.Scoring)
	a.engine = query.NewEngine(a.published, scorer)
	a.bulk = query.NewBulkScorer(a.engine, a.resolver, cfg.Bulk)
	a.reports = report.New()
	return a, nil
}

// newResolver builds the address resolver. Without API credentials the
// external path is skipped entirely.
func newResolver() (*resolve.Resolver, error) {
	var client geoclient.Client
	if cfg.Geoclient.AppID != "" && cfg.Geoclient.AppKey != "" {
		opts := []geoclient.Option{
			geoclient.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Geoclient.TimeoutSecs) * time.Second,
			}),
		}
		if cfg.Geoclient.BaseURL != "" {
			opts = append(opts, geoclient.WithBaseURL(cfg.Geoclient.BaseURL))
		}
		if cfg.Geoclient.RatePerSec > 0 {
			opts = append(opts, geoclient.WithRateLimit(cfg.Geoclient.RatePerSec))
		}
		client = geoclient.NewClient(cfg.Geoclient.AppID, cfg.Geoclient.AppKey, opts...)
	} else {
		zap.L().Warn("geoclient credentials not configured, using fallback resolution only")
	}
	return resolve.New(client, cfg.Data.FallbackFile)
}

// loadSnapshot prefers the cache; a cold cache triggers a full dataset load
// and a cache write.
func loadSnapshot(ctx context.Context, s *store.SQLiteStore) (*profile.Snapshot, error) {
	if s != nil {
		snap, err := s.LoadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			zap.L().Info("loaded snapshot from cache",
				zap.Int("profiles", snap.Len()),
				zap.Int64("version", snap.Version),
			)
			return snap, nil
		}
	}
	return loadFromFiles(ctx, s)
}

// loadFromFiles runs a full dataset load and mirrors it into the cache.
func loadFromFiles(ctx context.Context, s *store.SQLiteStore) (*profile.Snapshot, error) {
	snap, stats, err := dataset.LoadAll(ctx, cfg.Data, time.Now().Unix())
	if err != nil {
		return nil, eris.Wrap(err, "load datasets")
	}
	zap.L().Info("datasets loaded",
		zap.Int("profiles", stats.Profiles),
		zap.Int("pluto_kept", stats.Pluto.Kept),
		zap.Int("energy_kept", stats.Energy.Kept),
		zap.Int("systems_kept", stats.Systems.Kept),
		zap.Int("grades_kept", stats.Grades.Kept),
	)

	if s != nil {
		if err := s.SaveSnapshot(ctx, snap); err != nil {
			zap.L().Warn("caching snapshot failed", zap.Error(err))
		}
	}
	return snap, nil
}
