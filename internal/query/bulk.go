package query

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bldg-intel/odcv-cli/internal/config"
	"github.com/bldg-intel/odcv-cli/internal/resolve"
	"github.com/bldg-intel/odcv-cli/internal/scoring"
)

// Bulk result status values.
const (
	StatusOK             = "ok"
	StatusNotFound       = "not_found"
	StatusInvalidAddress = "invalid_address"
	StatusError          = "error"
)

// BulkResult is the outcome for one input address.
type BulkResult struct {
	Address   string             `json:"address"`
	Status    string             `json:"status"`
	Breakdown *scoring.Breakdown `json:"breakdown,omitempty"`
	Detail    string             `json:"detail,omitempty"`
}

// BulkScorer resolves and scores many addresses concurrently.
type BulkScorer struct {
	engine   *Engine
	resolver *resolve.Resolver
	cfg      config.BulkConfig
}

// NewBulkScorer builds a BulkScorer.
func NewBulkScorer(engine *Engine, resolver *resolve.Resolver, cfg config.BulkConfig) *BulkScorer {
	return &BulkScorer{engine: engine, resolver: resolver, cfg: cfg}
}

// Score processes every address with bounded concurrency. Results come back
// one per input, in input order; a per-address failure becomes a typed status
// and never aborts the rest.
func (b *BulkScorer) Score(ctx context.Context, addresses []string) ([]BulkResult, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if b.cfg.MaxAddresses > 0 && len(addresses) > b.cfg.MaxAddresses {
		return nil, eris.Errorf("query: too many addresses (%d, limit %d)", len(addresses), b.cfg.MaxAddresses)
	}

	zap.L().Info("bulk scoring",
		zap.Int("addresses", len(addresses)),
		zap.Int("concurrency", b.cfg.MaxConcurrent),
	)

	results := make([]BulkResult, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.MaxConcurrent)

	for i, addr := range addresses {
		i, addr := i, addr
		g.Go(func() error {
			results[i] = b.scoreOne(gctx, addr)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "query: bulk score")
	}
	return results, nil
}

func (b *BulkScorer) scoreOne(ctx context.Context, address string) BulkResult {
	res := BulkResult{Address: address}

	r, err := b.resolver.Resolve(ctx, address)
	switch {
	case errors.Is(err, resolve.ErrInvalidAddress):
		res.Status = StatusInvalidAddress
		res.Detail = "address is blank or unusable"
		return res
	case errors.Is(err, resolve.ErrNotFound):
		res.Status = StatusNotFound
		res.Detail = "address did not resolve to a tax lot"
		return res
	case err != nil:
		zap.L().Error("bulk resolve failed", zap.String("address", address), zap.Error(err))
		res.Status = StatusError
		res.Detail = err.Error()
		return res
	}

	bd, err := b.engine.ScoreBBL(r.BBL)
	if errors.Is(err, ErrNotFound) {
		res.Status = StatusNotFound
		res.Detail = "resolved identifier " + string(r.BBL) + " is not in the dataset"
		return res
	}

	res.Status = StatusOK
	res.Breakdown = bd
	return res
}
