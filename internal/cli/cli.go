package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-house/internal/config"
	"auction-house/internal/database"
	"auction-house/internal/migration"
	"auction-house/internal/notifier"
	"auction-house/internal/scheduler"
	"auction-house/internal/server"
	"auction-house/utils"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewRootCommand builds the root auction-house command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "auction-house",
		Short:         "Timed auctions with bidding, chat and winner notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newNotifyWorkerCmd())

	return root
}

// Execute runs the CLI until it finishes or the process receives SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Run the HTTP API with the background sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, appOptions{migrate: migrate})
			if err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				a.close(stopCtx)
			}()

			if cfg.Storage.Seed {
				if err := seedSampleData(ctx, a.repo, a.repo, a.service, time.Now().UTC()); err != nil {
					return fmt.Errorf("seed sample data: %w", err)
				}
			}

			var sweeper *scheduler.Scheduler
			if cfg.Sweep.Enabled {
				sweeper = scheduler.New(a.service, cfg.Sweep)
				sweeper.Start(ctx)
			}

			router := server.SetupRouter(a.service, server.RouterOptions{
				Metrics:     a.metrics,
				MetricsPath: cfg.HTTP.MetricsPath,
			})
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				utils.Info("starting auction server", map[string]any{"addr": srv.Addr, "storage": cfg.Storage.Driver})
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			var serveErr error
			select {
			case <-ctx.Done():
			case serveErr = <-errCh:
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(stopCtx); err != nil {
				utils.Warn("http shutdown failed", map[string]any{"error": err.Error()})
			}
			if sweeper != nil {
				if err := sweeper.Stop(stopCtx); err != nil {
					utils.Warn("sweeper shutdown failed", map[string]any{"error": err.Error()})
				}
			}
			utils.Info("auction server stopped", nil)
			return serveErr
		},
	}
	cmd.Flags().Bool("migrate", true, "Apply pending migrations on start (SQL storage only)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, mig *migration.Migrator) error {
				if err := mig.Up(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			all, _ := cmd.Flags().GetBool("all")
			return withMigrator(cmd.Context(), func(ctx context.Context, mig *migration.Migrator) error {
				if err := mig.Down(ctx, steps, all); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
				return nil
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migration steps to rollback")
	downCmd.Flags().Bool("all", false, "Rollback all applied migrations")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, mig *migration.Migrator) error {
				version, err := mig.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd)
	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *migration.Migrator) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == "memory" {
		return errors.New("migrations require STORAGE_DRIVER=postgres or sqlite")
	}

	db, err := database.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	mig, err := migration.New(cfg.Storage.Driver, db)
	if err != nil {
		return err
	}
	return fn(ctx, mig)
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Advance every open auction once and prune expired ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, func(ctx context.Context, a *app) error {
				advanced, pruned, err := scheduler.New(a.service, a.cfg.Sweep).RunOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "advanced %d auctions, pruned %d\n", advanced, pruned)
				return nil
			})
		},
	}
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample users, items and auctions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, func(ctx context.Context, a *app) error {
				if err := seedSampleData(ctx, a.repo, a.repo, a.service, time.Now().UTC()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed data applied")
				return nil
			})
		},
	}
}

func newNotifyWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify-worker",
		Short: "Consume published notifications and hand them to the log publisher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Messaging.Driver != "kafka" {
				return errors.New("notify-worker requires MESSAGING_DRIVER=kafka")
			}

			consumer := notifier.NewKafkaConsumer(cfg.Messaging.Kafka)
			defer consumer.Close()

			utils.Info("notify worker started", map[string]any{
				"topic": cfg.Messaging.Kafka.Topic,
				"group": cfg.Messaging.Kafka.ConsumerGroup,
			})
			sink := notifier.LogPublisher{}
			err = consumer.Consume(cmd.Context(), sink.Publish)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

// runOnce builds the app, runs fn and tears the app down. One-shot commands never
// start the HTTP server.
func runOnce(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runWithConfig(cmd.Context(), cfg, fn)
}

func runWithConfig(ctx context.Context, cfg config.Config, fn func(context.Context, *app) error) error {
	a, err := newApp(ctx, cfg, appOptions{migrate: true})
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.close(stopCtx)
	}()
	return fn(ctx, a)
}
