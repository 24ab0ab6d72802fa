package cli

import (
	"log/slog"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/config"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/identity"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/mirror"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/reader"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/scheduler"
	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/store"
)

// app bundles the long-lived components a command may need. All state is
// constructed here once and passed down explicitly; nothing is global.
type app struct {
	cfg   *config.Config
	store *store.Store
	log   *slog.Logger
}

// openApp loads config and opens the store for a command invocation.
func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	return &app{cfg: cfg, store: s, log: newLogger(opts)}, nil
}

func (a *app) close() {
	a.store.Close()
}

// newScheduler builds one poller per configured (topic, type) source.
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	if len(a.cfg.Topics) == 0 {
		return nil, WrapExitError(ExitCommandError, "no topics configured", nil)
	}
	client := mirror.NewClient(a.cfg.MirrorURL, a.cfg.CycleTimeout)

	pollers := make([]scheduler.Poller, 0, len(a.cfg.Topics))
	for _, t := range a.cfg.Topics {
		pollers = append(pollers, reader.New(t.Topic, t.Type, client, a.store, a.log,
			reader.WithPageSize(a.cfg.PageSize),
			reader.WithMaxPages(a.cfg.MaxPages),
		))
	}
	return scheduler.New(pollers, a.log,
		scheduler.WithInterval(a.cfg.PollInterval),
		scheduler.WithCycleTimeout(a.cfg.CycleTimeout),
	), nil
}

// newResolver builds the identity resolver, requiring a provisioning
// endpoint in config.
func (a *app) newResolver() (*identity.Resolver, error) {
	if a.cfg.ProvisionURL == "" {
		return nil, WrapExitError(ExitCommandError, "provision_url not set in config", nil)
	}
	prov := mirror.NewProvisionClient(a.cfg.ProvisionURL, a.cfg.CycleTimeout)
	return identity.New(prov, a.store, a.log,
		identity.WithStaleAfter(a.cfg.StaleAfter),
	), nil
}
