package fulfillment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePendingSweeper struct {
	cutoffs chan time.Time
}

func (s *fakePendingSweeper) SweepAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoffs <- cutoff
	return 1, nil
}

type fakePassExpirer struct {
	calls chan time.Time
}

func (e *fakePassExpirer) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	e.calls <- now
	return 0, nil
}

func TestStartMaintenanceSweeps(t *testing.T) {
	pending := &fakePendingSweeper{cutoffs: make(chan time.Time, 8)}
	passes := &fakePassExpirer{calls: make(chan time.Time, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		StartMaintenance(ctx, 5*time.Millisecond, 24*time.Hour, pending, passes)
		close(done)
	}()

	// One sweep runs immediately, further ones on the ticker.
	var cutoff time.Time
	for i := 0; i < 2; i++ {
		select {
		case cutoff = <-pending.cutoffs:
		case <-time.After(time.Second):
			t.Fatal("sweep did not run")
		}
		select {
		case <-passes.calls:
		case <-time.After(time.Second):
			t.Fatal("pass expiry did not run")
		}
	}
	// Cutoff trails now by the abandon window.
	age := time.Since(cutoff)
	assert.Greater(t, age, 23*time.Hour)
	assert.Less(t, age, 25*time.Hour)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop on cancel")
	}
}

func TestStartMaintenanceStopsWithoutStores(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		StartMaintenance(ctx, time.Millisecond, time.Hour, nil, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop on cancel")
	}
}

func TestStartMaintenanceRunsImmediately(t *testing.T) {
	pending := &fakePendingSweeper{cutoffs: make(chan time.Time, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	go StartMaintenance(ctx, time.Hour, time.Hour, pending, nil)

	select {
	case <-pending.cutoffs:
		require.Less(t, time.Since(start), time.Second)
	case <-time.After(time.Second):
		t.Fatal("initial sweep did not run before the first tick")
	}
}
