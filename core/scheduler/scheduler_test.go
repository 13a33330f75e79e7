package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

func TestRunProcessesInTickOrder(t *testing.T) {
	s := New(100, nopLogger{})
	var seen []int64
	require.NoError(t, s.RegisterHandler("tick", func(tr Trigger) []Trigger {
		seen = append(seen, tr.Tick)
		return nil
	}))

	s.Schedule(Trigger{Tick: 30, Kind: "tick"})
	s.Schedule(Trigger{Tick: 10, Kind: "tick"})
	s.Schedule(Trigger{Tick: 20, Kind: "tick"})

	last, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 30, last)
	assert.Equal(t, []int64{10, 20, 30}, seen)
}

func TestRunSameTickKeepsScheduleOrder(t *testing.T) {
	s := New(100, nopLogger{})
	var seen []string
	require.NoError(t, s.RegisterHandler("tick", func(tr Trigger) []Trigger {
		seen = append(seen, tr.Subject)
		return nil
	}))

	s.Schedule(Trigger{Tick: 10, Kind: "tick", Subject: "first"})
	s.Schedule(Trigger{Tick: 10, Kind: "tick", Subject: "second"})

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestRunFollowUpTriggers(t *testing.T) {
	s := New(100, nopLogger{})
	var ticks []int64
	require.NoError(t, s.RegisterHandler("plan", func(tr Trigger) []Trigger {
		ticks = append(ticks, tr.Tick)
		if tr.Tick+10 <= 100 {
			return []Trigger{{Tick: tr.Tick + 10, Kind: "plan"}}
		}
		return nil
	}))

	s.Schedule(Trigger{Tick: 80, Kind: "plan"})
	last, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 100, last)
	assert.Equal(t, []int64{80, 90, 100}, ticks)
}

func TestRunStopsAtHorizon(t *testing.T) {
	s := New(50, nopLogger{})
	fired := false
	require.NoError(t, s.RegisterHandler("late", func(Trigger) []Trigger {
		fired = true
		return nil
	}))

	s.Schedule(Trigger{Tick: 60, Kind: "late"})
	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestRunHonorsCancellation(t *testing.T) {
	s := New(100, nopLogger{})
	require.NoError(t, s.RegisterHandler("tick", func(Trigger) []Trigger { return nil }))
	s.Schedule(Trigger{Tick: 10, Kind: "tick"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisterHandlerRejectsDuplicate(t *testing.T) {
	s := New(100, nopLogger{})
	require.NoError(t, s.RegisterHandler("tick", func(Trigger) []Trigger { return nil }))
	assert.Error(t, s.RegisterHandler("tick", func(Trigger) []Trigger { return nil }))
}

func TestSchedulePastTriggerClamped(t *testing.T) {
	s := New(100, nopLogger{})
	var seen []int64
	require.NoError(t, s.RegisterHandler("tick", func(tr Trigger) []Trigger {
		seen = append(seen, tr.Tick)
		if tr.Tick == 20 {
			// Stale follow-up: clamped to the current tick, not dropped.
			return []Trigger{{Tick: 5, Kind: "tick"}}
		}
		return nil
	}))

	s.Schedule(Trigger{Tick: 20, Kind: "tick"})
	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 20}, seen)
}
