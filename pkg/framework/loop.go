package framework

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"
)

// ErrInvalidInterval indicates the loop period is not positive.
var ErrInvalidInterval = errors.New("loop interval must be positive")

// Loop runs controllers at a fixed period along with background Runnables.
//
// Iterations never overlap: a tick arriving while controllers are running is
// taken only after the current iteration completes.
type Loop struct {
	// Interval is the period between two iterations.
	Interval time.Duration
	// Ticks overrides the internal ticker when set, e.g. with a fake clock.
	Ticks <-chan time.Time

	controllers [PriorityLevels]controllerList
	runners     []Runnable
	iteration   uint64
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type controllerList struct {
	controllers []Controller
	lock        sync.Mutex
}

type loopIteration struct {
	ctx           context.Context
	time          time.Time
	priorityLevel int
	iteration     uint64
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: 100 * time.Millisecond}
}

// NewLoopWithRate creates a Loop running rate iterations per second.
func NewLoopWithRate(rate float64) *Loop {
	return &Loop{Interval: RateInterval(rate)}
}

// RateInterval converts a rate in Hz into a period.
func RateInterval(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / rate)
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lst := &l.controllers[priorityLevel]
	lst.lock.Lock()
	lst.controllers = append(lst.controllers, ctls...)
	lst.lock.Unlock()
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
// It returns when ctx is cancelled or any Runnable fails.
func (l *Loop) Run(ctx context.Context) (err error) {
	ticks := l.Ticks
	if ticks == nil {
		if l.Interval <= 0 {
			return ErrInvalidInterval
		}
		ticker := time.NewTicker(l.Interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	runCtx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(runCtx)
	runner.Go(l.runners...)
	defer func() {
		cancel()
		if waitErr := runner.Wait(); err == nil {
			err = waitErr
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-runner.Failed():
			return err
		case t, ok := <-ticks:
			if !ok {
				return nil
			}
			l.runIteration(ctx, t)
		}
	}
}

func (l *Loop) runIteration(ctx context.Context, t time.Time) {
	iter := &loopIteration{ctx: ctx, time: t, iteration: l.iteration}
	l.iteration++
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		l.controllers[i].run(iter)
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *loopIteration) Iteration() uint64 {
	return t.iteration
}

func (c *controllerList) run(iter *loopIteration) {
	c.lock.Lock()
	ctls := c.controllers
	c.lock.Unlock()
	for _, ctl := range ctls {
		if err := ctl.Control(iter); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}
