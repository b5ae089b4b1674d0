package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestSupervisor(t *testing.T, delay time.Duration, run runFunc) *Supervisor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(Config{Command: []string{"worker"}, RestartDelay: delay}, logger)
	s.run = run
	t.Cleanup(s.Stop)
	return s
}

func TestSupervisor_RestartsAfterExit(t *testing.T) {
	exits := make(chan struct{}, 16)
	s := newTestSupervisor(t, 10*time.Millisecond, func(ctx context.Context) (func() error, error) {
		return func() error {
			exits <- struct{}{}
			return errors.New("worker crashed")
		}, nil
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-exits:
		case <-time.After(3 * time.Second):
			t.Fatalf("worker not restarted, saw %d launches", i)
		}
	}

	if got := s.Starts(); got < 3 {
		t.Errorf("expected at least 3 launches, got %d", got)
	}
}

func TestSupervisor_StopTerminatesLoop(t *testing.T) {
	s := newTestSupervisor(t, 5*time.Millisecond, func(ctx context.Context) (func() error, error) {
		return func() error {
			<-ctx.Done()
			return ctx.Err()
		}, nil
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	s.Stop()
	launches := s.Starts()
	if launches != 1 {
		t.Errorf("long-lived worker should launch once, got %d", launches)
	}

	time.Sleep(50 * time.Millisecond)
	if got := s.Starts(); got != launches {
		t.Errorf("no launches should happen after Stop, got %d", got)
	}
}

func TestSupervisor_StartIsIdempotent(t *testing.T) {
	s := newTestSupervisor(t, time.Hour, func(ctx context.Context) (func() error, error) {
		return func() error {
			<-ctx.Done()
			return ctx.Err()
		}, nil
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if got := s.Starts(); got != 1 {
		t.Errorf("expected a single worker, got %d launches", got)
	}
}

func TestSupervisor_StartWithoutCommand(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(Config{}, logger)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error without a command")
	}
}

func TestSupervisor_StopIsIdempotent(t *testing.T) {
	s := newTestSupervisor(t, time.Hour, func(ctx context.Context) (func() error, error) {
		return func() error {
			<-ctx.Done()
			return ctx.Err()
		}, nil
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	s.Stop()
}

func TestSupervisor_StartFailureRetries(t *testing.T) {
	attempts := make(chan struct{}, 16)
	s := newTestSupervisor(t, 10*time.Millisecond, func(ctx context.Context) (func() error, error) {
		attempts <- struct{}{}
		return nil, errors.New("no such binary")
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-attempts:
		case <-time.After(3 * time.Second):
			t.Fatal("start failure should keep retrying")
		}
	}
}
