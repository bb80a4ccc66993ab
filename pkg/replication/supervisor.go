package replication

import (
	"context"
	"errors"
	"sync"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// Runner is a long-lived pipeline component managed by the supervisor.
type Runner interface {
	Name() string
	Run(ctx context.Context)
}

// Supervisor owns the pipeline goroutines: one runner per replicated table
// plus the upstream clients. All runners share a pond pool and stop
// together when the supervisor's context is cancelled.
type Supervisor struct {
	logger *zap.Logger

	mu      sync.Mutex
	runners []Runner

	pool   pond.Pool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSupervisor returns a supervisor with no runners.
func NewSupervisor(logger *zap.Logger) *Supervisor {
	return &Supervisor{logger: logger}
}

// Add registers a runner. Must be called before Start.
func (s *Supervisor) Add(r Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runners = append(s.runners, r)
}

// Start launches every registered runner on its own pooled goroutine.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.pool = pond.NewPool(len(s.runners))

	group := s.pool.NewGroupContext(runCtx)
	for _, r := range s.runners {
		runner := r
		group.Submit(func() {
			s.logger.Info("runner started", zap.String("runner", runner.Name()))
			runner.Run(runCtx)
			s.logger.Info("runner stopped", zap.String("runner", runner.Name()))
		})
	}

	go func() {
		defer close(s.done)
		if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
			s.logger.Error("pipeline group exited with error", zap.Error(err))
		}
	}()
}

// Stop cancels the runners and waits for them to drain.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cancel, done, pool := s.cancel, s.done, s.pool
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	pool.StopAndWait()
	s.logger.Info("pipeline stopped")
}
