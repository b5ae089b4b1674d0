package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

const defaultRestartDelay = 2 * time.Second

var errNoCommand = errors.New("supervisor: no command configured")

type Config struct {
	// Command is the worker process, argv-style. The first element is the
	// binary, e.g. ["python3", "transcriber.py"].
	Command      []string
	Dir          string
	RestartDelay time.Duration
}

// runFunc launches the worker and returns a wait function that blocks until
// it exits. Tests inject their own.
type runFunc func(ctx context.Context) (wait func() error, err error)

// Supervisor keeps the external transcription worker alive: start it, wait
// for it to exit, restart after a fixed delay, until stopped.
type Supervisor struct {
	cfg    Config
	logger *slog.Logger
	run    runFunc

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	starts  int
	running bool
}

func New(cfg Config, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = defaultRestartDelay
	}
	s := &Supervisor{
		cfg:    cfg,
		logger: logger.With("component", "supervisor"),
	}
	s.run = s.runCommand
	return s
}

func (s *Supervisor) runCommand(ctx context.Context) (func() error, error) {
	cmd := exec.CommandContext(ctx, s.cfg.Command[0], s.cfg.Command[1:]...)
	cmd.Dir = s.cfg.Dir
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Wait, nil
}

// Start launches the worker loop. No-op while already running.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if len(s.cfg.Command) == 0 {
		return errNoCommand
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	go s.loop(loopCtx, s.done)
	return nil
}

// Stop terminates the worker and waits for the loop to finish. Idempotent.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Starts reports how many times the worker has been launched.
func (s *Supervisor) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		s.starts++
		attempt := s.starts
		s.mu.Unlock()

		s.logger.Info("starting worker", "command", s.cfg.Command, "launch", attempt)
		wait, err := s.run(ctx)
		if err != nil {
			s.logger.Error("worker failed to start", "error", err)
		} else if err := wait(); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("worker stopped")
				return
			}
			s.logger.Warn("worker exited", "error", err)
		} else {
			s.logger.Warn("worker exited cleanly, restarting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.RestartDelay):
		}
	}
}
