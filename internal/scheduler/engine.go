// Package scheduler delivers reminder fire events at their deadline on a
// single goroutine backed by a min-heap and one reusable time.Timer.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"wellnessd/internal/model"
)

var (
	ErrInvalidDeadline = errors.New("scheduler: invalid fire deadline")
	ErrStopped         = errors.New("scheduler: engine stopped")
)

// FireEvent announces that a reminder countdown reached zero. Seq is a
// per-kind generation counter: pausing, snoozing, or rescheduling bumps it,
// and consumers drop events whose Seq no longer matches.
type FireEvent struct {
	Kind model.Kind
	Seq  uint64
	At   time.Time
}

type fireQueue []FireEvent

func (q fireQueue) Len() int           { return len(q) }
func (q fireQueue) Less(i, j int) bool { return q[i].At.Before(q[j].At) }
func (q fireQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *fireQueue) Push(x any)        { *q = append(*q, x.(FireEvent)) }

func (q *fireQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	*q = old[:n-1]
	return ev
}

type Engine struct {
	mu      sync.Mutex
	queue   fireQueue
	out     chan FireEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(fireQueue, 0),
		out:    make(chan FireEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan FireEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev FireEvent) error {
	if ev.At.IsZero() {
		return ErrInvalidDeadline
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	heap.Push(&e.queue, ev)
	e.signalWakeup()
	return nil
}

// Dropped counts events lost because the consumer lagged behind the out
// channel buffer.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.At)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, ev := range e.popDue(time.Now().UTC()) {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (FireEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return FireEvent{}, false
	}
	return e.queue[0], true
}

func (e *Engine) popDue(now time.Time) []FireEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]FireEvent, 0)
	for len(e.queue) > 0 {
		if e.queue[0].At.After(now) {
			break
		}
		out = append(out, heap.Pop(&e.queue).(FireEvent))
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
