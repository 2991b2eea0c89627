package universe

import (
	"context"
	"fmt"
	"strings"

	"VolScan/internal/domain/models"
	"VolScan/internal/domain/repository"
	applogger "VolScan/pkg/logger"
)

// Chain tries providers in order and returns the first non-empty universe.
type Chain struct {
	providers []repository.UniverseProvider
	logger    *applogger.Logger
}

var _ repository.UniverseProvider = (*Chain)(nil)

func NewChain(logger *applogger.Logger, providers ...repository.UniverseProvider) *Chain {
	return &Chain{providers: providers, logger: logger}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) Provide(ctx context.Context) ([]string, error) {
	var errs []string
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tickers, err := p.Provide(ctx)
		if err == nil && len(tickers) == 0 {
			err = fmt.Errorf("empty universe")
		}
		if err != nil {
			c.logger.Warn("universe provider failed",
				applogger.String("provider", p.Name()),
				applogger.Error(err),
			)
			errs = append(errs, p.Name()+": "+err.Error())
			continue
		}
		c.logger.Info("universe loaded",
			applogger.String("provider", p.Name()),
			applogger.Int("tickers", len(tickers)),
		)
		return tickers, nil
	}
	if len(errs) == 0 {
		return nil, models.ErrNoUniverse
	}
	return nil, fmt.Errorf("%w: %s", models.ErrNoUniverse, strings.Join(errs, "; "))
}
