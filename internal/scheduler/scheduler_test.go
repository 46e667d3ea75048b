package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"

	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	mu        sync.Mutex
	sweeps    int
	prunes    int
	retention time.Duration
	sweepErr  error
}

func (f *fakeTarget) Sweep(_ context.Context, now time.Time) ([]bidding.StatusChangeEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	if f.sweepErr != nil {
		return nil, f.sweepErr
	}
	return []bidding.StatusChangeEvent{{AuctionID: "a1", At: now}}, nil
}

func (f *fakeTarget) PruneExpired(_ context.Context, _ time.Time, retention time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prunes++
	f.retention = retention
	return 2, nil
}

func (f *fakeTarget) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps, f.prunes
}

func TestScheduler_RunOnce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cfg          config.Sweep
		sweepErr     error
		wantAdvanced int
		wantPruned   int
		wantPrunes   int
		wantErr      bool
	}{
		{name: "sweep_and_prune", cfg: config.Sweep{Retention: 48 * time.Hour}, wantAdvanced: 1, wantPruned: 2, wantPrunes: 1},
		{name: "no_retention_skips_prune", cfg: config.Sweep{}, wantAdvanced: 1},
		{name: "sweep_error_stops_pass", cfg: config.Sweep{Retention: time.Hour}, sweepErr: errors.New("db down"), wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			target := &fakeTarget{sweepErr: tc.sweepErr}
			s := New(target, tc.cfg)

			advanced, pruned, err := s.RunOnce(context.Background())
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.wantAdvanced, advanced)
			require.Equal(t, tc.wantPruned, pruned)
			_, prunes := target.counts()
			require.Equal(t, tc.wantPrunes, prunes)
			if tc.wantPrunes > 0 {
				require.Equal(t, tc.cfg.Retention, target.retention)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	s := New(target, config.Sweep{Interval: 10 * time.Millisecond})

	s.Start(context.Background())
	require.Eventually(t, func() bool {
		sweeps, _ := target.counts()
		return sweeps >= 2
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	after, _ := target.counts()
	time.Sleep(30 * time.Millisecond)
	final, _ := target.counts()
	require.Equal(t, after, final, "no sweeps after Stop")
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()
	require.NoError(t, New(&fakeTarget{}, config.Sweep{}).Stop(context.Background()))
}
