// Package streak derives a consecutive-day completion counter from task
// completions.
package streak

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	// CelebrationDuration is how long a milestone message stays on screen.
	CelebrationDuration = 3000 * time.Millisecond

	// CompletionDelay is how long a completed task lingers before removal.
	CompletionDelay = 1200 * time.Millisecond
)

var milestones = map[int]string{
	7:   "Week Warrior! 🎉",
	30:  "Month Master! 🏆",
	100: "Century Superstar! ⭐",
}

// Milestones returns the celebrated streak lengths in ascending order.
func Milestones() []int {
	out := make([]int, 0, len(milestones))
	for n := range milestones {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// MilestoneMessage returns the celebration text for a streak length.
func MilestoneMessage(count int) (string, bool) {
	msg, ok := milestones[count]
	return msg, ok
}

// Store persists the two streak fields. last is written only when non-nil.
type Store interface {
	LoadStreak(ctx context.Context) (count int, last *time.Time, ok bool, err error)
	SaveStreak(ctx context.Context, count int, last *time.Time) error
}

// State is the persisted streak.
type State struct {
	Count         int
	LastCompleted *time.Time
}

// Celebration is a one-shot milestone event.
type Celebration struct {
	Count   int
	Message string
}

// Tracker is the streak state machine. It has no knowledge of tasks.
type Tracker struct {
	state State
	store Store
	now   func() time.Time
}

// NewTracker returns a tracker with zero state. Call Reconcile to load the
// persisted streak. now defaults to time.Now.
func NewTracker(store Store, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: store, now: now}
}

// State returns a copy of the current streak.
func (t *Tracker) State() State {
	s := t.state
	if s.LastCompleted != nil {
		last := *s.LastCompleted
		s.LastCompleted = &last
	}
	return s
}

// Count returns the current streak length.
func (t *Tracker) Count() int { return t.state.Count }

// Reconcile loads the persisted streak and breaks it if the last completion
// was neither today nor yesterday. A broken streak persists a zero count and
// keeps the last completion date.
func (t *Tracker) Reconcile(ctx context.Context) error {
	count, last, ok, err := t.store.LoadStreak(ctx)
	if err != nil {
		return fmt.Errorf("reconciling streak: %w", err)
	}
	if !ok {
		t.state = State{}
		return nil
	}

	t.state = State{Count: count, LastCompleted: last}
	switch dayDiff(*last, t.now()) {
	case 0, 1:
		return nil
	}

	t.state.Count = 0
	if err := t.store.SaveStreak(ctx, 0, nil); err != nil {
		return fmt.Errorf("resetting broken streak: %w", err)
	}
	return nil
}

// Complete records a completion now. Completing twice on the same day does
// not raise the count. The returned celebration is non-nil only when the new
// count lands exactly on a milestone and the count actually changed.
func (t *Tracker) Complete(ctx context.Context) (*Celebration, error) {
	now := t.now()
	prev := t.state.Count

	next := 1
	if t.state.LastCompleted != nil {
		switch dayDiff(*t.state.LastCompleted, now) {
		case 0:
			next = prev
		case 1:
			next = prev + 1
		}
	}

	t.state = State{Count: next, LastCompleted: &now}
	err := t.store.SaveStreak(ctx, next, &now)
	if err != nil {
		err = fmt.Errorf("saving streak: %w", err)
	}

	msg, ok := milestones[next]
	if !ok || next == prev {
		return nil, err
	}
	return &Celebration{Count: next, Message: msg}, err
}

// dayDiff returns the number of local calendar days from last to now.
func dayDiff(last, now time.Time) int {
	loc := now.Location()
	ly, lm, ld := last.In(loc).Date()
	ny, nm, nd := now.Date()
	a := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
