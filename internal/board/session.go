package board

import (
	"context"

	"go.uber.org/zap"

	"jobboard/internal/catalog"
	"jobboard/internal/config"
	"jobboard/internal/fallback"
	"jobboard/internal/gateway"
	"jobboard/internal/ledger"
	"jobboard/internal/localstore"
	"jobboard/internal/logger"
	"jobboard/internal/submission"
)

// Session is a Board plus the resources it holds open.
type Session struct {
	*Board
	Store localstore.KV
}

// Open builds a Board from cfg: remote gateway, built-in fallback, the
// configured durable store (in-memory if it cannot be opened) and the
// configured submitter. The ledger is initialized before Open returns.
func Open(ctx context.Context, cfg config.Config, log *zap.SugaredLogger) (*Session, error) {
	log = logger.OrNop(log)

	policy, err := catalog.ParsePolicy(cfg.Fallback.Policy)
	if err != nil {
		return nil, err
	}

	source := gateway.New(gateway.Options{
		BaseURL:           cfg.Source.BaseURL,
		Timeout:           cfg.SourceTimeout(),
		RequestsPerMinute: cfg.Source.RequestsPerMinute,
		Logger:            log.Named("gateway"),
	})
	cat := catalog.New(catalog.Options{
		Source:   source,
		Fallback: fallback.Builtin(),
		Policy:   policy,
		Logger:   log.Named("catalog"),
	})

	store := localstore.OpenOrMemory(ctx, cfg.StoreOptions(), log.Named("store"))
	led := ledger.New(store, cfg.Storage.Key, log.Named("ledger"))
	led.Initialize(ctx)

	return &Session{
		Board: New(Options{
			Catalog:   cat,
			Ledger:    led,
			Submitter: submitterFor(cfg),
			Logger:    log,
		}),
		Store: store,
	}, nil
}

func (s *Session) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

func submitterFor(cfg config.Config) submission.Submitter {
	if cfg.Submission.Endpoint != "" {
		return submission.NewHTTPSubmitter(cfg.Submission.Endpoint, cfg.SourceTimeout())
	}
	return submission.SimulatedSubmitter{Delay: cfg.SimulatedDelay()}
}
