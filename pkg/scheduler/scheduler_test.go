package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSchedulerRunsJobsRepeatedly(t *testing.T) {
	s := New(zap.NewNop())

	ran := make(chan struct{}, 16)
	s.Add(Job{
		Name:  "test",
		Every: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	})

	s.Start(context.Background())
	defer s.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("job did not run %d times in time", i+1)
		}
	}
}

func TestSchedulerIsolatesPanics(t *testing.T) {
	s := New(zap.NewNop())

	var healthy atomic.Int32
	s.Add(Job{
		Name:  "panics",
		Every: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			panic("boom")
		},
	})
	ran := make(chan struct{}, 16)
	s.Add(Job{
		Name:  "healthy",
		Every: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			healthy.Add(1)
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	})

	s.Start(context.Background())
	defer s.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("healthy job starved by panicking sibling")
		}
	}
	if healthy.Load() < 3 {
		t.Errorf("healthy job ran %d times", healthy.Load())
	}
}

func TestSchedulerStops(t *testing.T) {
	s := New(zap.NewNop())

	var runs atomic.Int32
	s.Add(Job{
		Name:  "counter",
		Every: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Errorf("job kept running after Stop: %d -> %d", after, runs.Load())
	}
}
