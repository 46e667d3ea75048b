package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"auction-house/internal/config"
	"auction-house/internal/scheduler"

	"github.com/stretchr/testify/require"
)

func testConfig(storage config.Storage) config.Config {
	return config.Config{
		LogLevel: "info",
		HTTP:     config.HTTP{Port: 8080, MetricsPath: "/metrics"},
		Storage:  storage,
		Dedupe:   config.Dedupe{Driver: "memory", TTL: time.Hour},
		Messaging: config.Messaging{
			Driver:    "log",
			QueueSize: 16,
			Workers:   1,
			Backoff:   time.Millisecond,
		},
		Sweep: config.Sweep{Interval: time.Second, Retention: 48 * time.Hour},
		Auction: config.Auction{
			ChatDuplicateWindow: 5 * time.Second,
			RecentBidsLimit:     3,
			ChatHistoryLimit:    50,
		},
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "sweep", "seed", "notify-worker"} {
		require.True(t, names[want], "missing command %s", want)
	}
}

func TestRootCommand_Help(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"migrate", "--help"})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "Rollback migrations")
}

func TestRunWithConfig_SeedAndSweep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		storage config.Storage
	}{
		{name: "memory", storage: config.Storage{Driver: "memory"}},
		{name: "sqlite", storage: config.Storage{Driver: "sqlite", DSN: "file:" + filepath.Join(t.TempDir(), "auctions.db")}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(tc.storage)
			now := time.Now().UTC()

			err := runWithConfig(context.Background(), cfg, func(ctx context.Context, a *app) error {
				require.NoError(t, seedSampleData(ctx, a.repo, a.repo, a.service, now))
				// idempotent: a second run finds the auctions and adds nothing
				require.NoError(t, seedSampleData(ctx, a.repo, a.repo, a.service, now))

				auctions, err := a.service.ListAuctions(ctx, now)
				require.NoError(t, err)
				require.Len(t, auctions, len(sampleItems))

				_, err = a.service.PlaceBid(ctx, auctions[0].AuctionID, "user1", auctions[0].StartingPrice+10, now.Add(time.Second), "127.0.0.1")
				require.NoError(t, err)

				advanced, _, err := scheduler.New(a.service, cfg.Sweep).RunOnce(ctx)
				require.NoError(t, err)
				require.Zero(t, advanced, "auctions are still running")
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	cfg := testConfig(config.Storage{Driver: "memory"})
	cfg.Messaging.Driver = "carrier-pigeon"

	_, err := newApp(context.Background(), cfg, appOptions{})
	require.ErrorContains(t, err, "unsupported messaging driver")
}
