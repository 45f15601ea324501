package force

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/orgtower/pkg/geom"
)

// Hooks connects a [Runner] to its owner.
type Hooks struct {
	// Locker, when set, is held around every step and hook call, so the
	// simulation shares one lock with the rest of the owner's state.
	Locker sync.Locker
	// Tick is called after every step with the lock held. Returning false
	// stops the runner, which is how an owner retires a stale simulation.
	Tick func() bool
	// Fit is called once, FitDelay after start, with the lock held. It is
	// skipped when the bounds are degenerate.
	Fit func(bounds geom.Rect)
}

// Runner drives a simulation in the background. The zero value is not
// usable; start one with [Run].
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	fit    *time.Timer
	done   chan struct{}
	once   sync.Once
}

// Run starts stepping sim on every TickInterval until ctx is cancelled or
// [Runner.Stop] is called. While the simulation is settled the loop idles
// until a drag reheats it. One auto-fit is scheduled FitDelay after start.
func Run(ctx context.Context, sim *Simulation, hooks Hooks) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	if hooks.Locker == nil {
		hooks.Locker = &sync.Mutex{}
	}

	cfg := sim.Config()
	r.fit = time.AfterFunc(cfg.FitDelay, func() {
		hooks.Locker.Lock()
		defer hooks.Locker.Unlock()
		if ctx.Err() != nil || hooks.Fit == nil {
			return
		}
		if b := sim.Bounds(); !b.Degenerate() {
			hooks.Fit(b)
		}
	})

	go r.loop(sim, hooks, cfg.TickInterval)
	return r
}

func (r *Runner) loop(sim *Simulation, hooks Hooks, interval time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}
		if !r.tick(sim, hooks) {
			return
		}
	}
}

func (r *Runner) tick(sim *Simulation, hooks Hooks) bool {
	hooks.Locker.Lock()
	defer hooks.Locker.Unlock()
	if r.ctx.Err() != nil {
		return false
	}
	if sim.IsSettled() {
		return true
	}
	sim.Step(1)
	if hooks.Tick != nil && !hooks.Tick() {
		r.cancel()
		return false
	}
	return true
}

// Stop cancels the loop and the pending fit. It does not block, so it may
// be called while holding the hooks' lock; use [Runner.Wait] to wait for
// the loop to exit. Stop is idempotent.
func (r *Runner) Stop() {
	r.once.Do(func() {
		r.cancel()
		r.fit.Stop()
	})
}

// Wait blocks until the loop has exited.
func (r *Runner) Wait() { <-r.done }

// Done is closed when the loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Settle steps sim until it is settled or maxSteps steps were taken, and
// returns the number of steps. A non-positive maxSteps means no limit.
func Settle(sim *Simulation, maxSteps int) int {
	n := 0
	for !sim.IsSettled() && (maxSteps <= 0 || n < maxSteps) {
		sim.Step(1)
		n++
	}
	return n
}
