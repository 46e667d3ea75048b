package cli

import (
	"context"
	"fmt"

	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	"auction-house/internal/database"
	"auction-house/internal/metrics"
	"auction-house/internal/migration"
	"auction-house/internal/notifier"
	"auction-house/internal/repository"
	"auction-house/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
)

type store interface {
	repository.AuctionDB
	repository.CatalogWriter
}

// app holds the wired components shared by the commands.
type app struct {
	cfg        config.Config
	db         *bun.DB
	repo       store
	metrics    *metrics.Metrics
	registry   *prometheus.Registry
	dispatcher *notifier.Dispatcher
	service    *bidding.BiddingService

	closers []func(context.Context) error
}

type appOptions struct {
	migrate bool
}

func loadConfig() (config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return config.Config{}, err
	}
	if err := utils.SetLevel(cfg.LogLevel); err != nil {
		utils.Warn("unknown log level, keeping default", map[string]any{"level": cfg.LogLevel})
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	if err := a.openStore(ctx, opts); err != nil {
		a.close(ctx)
		return nil, err
	}

	publisher, err := a.openPublisher()
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	deduper, err := a.openDeduper(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.dispatcher = notifier.NewDispatcher(publisher, deduper, notifier.Options{
		QueueSize:  cfg.Messaging.QueueSize,
		Workers:    cfg.Messaging.Workers,
		MaxRetries: cfg.Messaging.MaxRetries,
		Backoff:    cfg.Messaging.Backoff,
		Metrics:    a.metrics,
	})
	// the dispatcher drains before the publisher and deduper it uses are closed
	a.closers = append(a.closers, a.dispatcher.Close)

	a.service = bidding.NewBiddingService(a.repo, bidding.Options{
		Notifier:            a.dispatcher,
		Metrics:             a.metrics,
		ChatDuplicateWindow: cfg.Auction.ChatDuplicateWindow,
		RecentBidsLimit:     cfg.Auction.RecentBidsLimit,
		ChatHistoryLimit:    cfg.Auction.ChatHistoryLimit,
	})
	return a, nil
}

func (a *app) openStore(ctx context.Context, opts appOptions) error {
	if a.cfg.Storage.Driver == "memory" {
		a.repo = repository.NewMemoryRepo()
		return nil
	}

	db, err := database.Open(ctx, a.cfg.Storage)
	if err != nil {
		return err
	}
	a.db = db
	a.closers = append(a.closers, func(context.Context) error { return db.Close() })

	if opts.migrate {
		mig, err := migration.New(a.cfg.Storage.Driver, db)
		if err != nil {
			return err
		}
		if err := mig.Up(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	a.repo = repository.NewSQLRepo(db)
	return nil
}

func (a *app) openPublisher() (notifier.Publisher, error) {
	switch a.cfg.Messaging.Driver {
	case "kafka":
		p := notifier.NewKafkaPublisher(a.cfg.Messaging.Kafka)
		a.closers = append(a.closers, func(context.Context) error { return p.Close() })
		return p, nil
	case "log":
		return notifier.LogPublisher{}, nil
	default:
		return nil, fmt.Errorf("unsupported messaging driver: %s", a.cfg.Messaging.Driver)
	}
}

func (a *app) openDeduper(ctx context.Context) (notifier.Deduper, error) {
	switch a.cfg.Dedupe.Driver {
	case "redis":
		d, err := notifier.NewRedisDeduper(ctx, a.cfg.Dedupe.Redis, a.cfg.Dedupe.TTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return d.Close() })
		return d, nil
	case "memory":
		return notifier.NewMemoryDeduper(a.cfg.Dedupe.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported dedupe driver: %s", a.cfg.Dedupe.Driver)
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			utils.Warn("shutdown step failed", map[string]any{"error": err.Error()})
		}
	}
	a.closers = nil
}
