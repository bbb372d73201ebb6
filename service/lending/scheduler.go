package lending

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

type trigger struct {
	at     time.Time
	loanID string
	gen    uint64
}

type triggerHeap []trigger

func (h triggerHeap) Len() int           { return len(h) }
func (h triggerHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h triggerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *triggerHeap) Push(x any)        { *h = append(*h, x.(trigger)) }
func (h *triggerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}

// Scheduler services a min-heap of (fire-time, loanID) entries on a single
// goroutine. Arm and Disarm bump the loan's generation, so entries left in
// the heap from earlier schedules are dropped at pop time. The heap is
// scheduling intent only: the fire callback re-checks loan status itself.
type Scheduler struct {
	mu   sync.Mutex
	h    triggerHeap
	gens map[string]uint64

	fire func(loanID string)
	log  *slog.Logger

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewScheduler(fire func(loanID string), log *slog.Logger) *Scheduler {
	return &Scheduler{
		gens: make(map[string]uint64),
		fire: fire,
		log:  log,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (s *Scheduler) Start() { go s.run() }

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// Arm schedules (or reschedules) the expiration trigger for a loan.
func (s *Scheduler) Arm(loanID string, at time.Time) {
	s.mu.Lock()
	s.gens[loanID]++
	heap.Push(&s.h, trigger{at: at, loanID: loanID, gen: s.gens[loanID]})
	s.mu.Unlock()
	s.poke()
}

// Disarm invalidates any pending trigger for the loan. The stale heap entry
// stays behind and is skipped when it surfaces.
func (s *Scheduler) Disarm(loanID string) {
	s.mu.Lock()
	s.gens[loanID]++
	s.mu.Unlock()
	s.poke()
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) run() {
	defer close(s.done)
	for {
		var due []string

		s.mu.Lock()
		now := time.Now()
		for s.h.Len() > 0 {
			next := s.h[0]
			if s.gens[next.loanID] != next.gen {
				heap.Pop(&s.h)
				continue
			}
			if next.at.After(now) {
				break
			}
			heap.Pop(&s.h)
			due = append(due, next.loanID)
		}
		wait := time.Duration(-1)
		if s.h.Len() > 0 {
			wait = time.Until(s.h[0].at)
		}
		s.mu.Unlock()

		for _, id := range due {
			s.log.Info("expiration trigger fired", "loan_id", id)
			s.fire(id)
		}

		if wait < 0 {
			select {
			case <-s.wake:
			case <-s.stop:
				return
			}
			continue
		}
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-s.wake:
			t.Stop()
		case <-s.stop:
			t.Stop()
			return
		}
	}
}
