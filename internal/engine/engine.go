// Package engine is the single in-process state container for the task
// list, the viewing pointer and the streak. Front ends call its mutation
// methods and subscribe to its events instead of touching state directly.
//
// An Engine is not safe for concurrent use. Methods documented as blocking
// read no engine state and may run on another goroutine; their results are
// applied back on the owning goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nhle/onetask/internal/ai"
	"github.com/nhle/onetask/internal/capability"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/ordering"
	"github.com/nhle/onetask/internal/streak"
)

// Engine errors.
var (
	ErrNoCurrentTask       = errors.New("no task to act on")
	ErrCompleting          = errors.New("task is already being completed")
	ErrPrioritizing        = errors.New("prioritization already in progress")
	ErrNothingToPrioritize = errors.New("no tasks to prioritize")
	ErrNoSuggestions       = errors.New("no suggestions available")
)

// Persistence is everything the engine needs from the snapshot store.
type Persistence interface {
	ordering.Snapshotter
	streak.Store
	LoadTasks(ctx context.Context) ([]model.Task, error)
}

// Service is the remote ranking and suggestion backend.
type Service interface {
	ordering.Ranker
	PrioritizeList(ctx context.Context, tasks []model.Task) ([]model.Task, error)
	Suggest(ctx context.Context, req ai.SuggestionRequest) ([]model.SuggestedLink, error)
}

// Options wires an Engine's collaborators. Only Persistence is required.
type Options struct {
	Persistence   Persistence
	Service       Service
	Locator       capability.Locator
	Dictator      capability.Dictator
	FallbackPlace string
	Now           func() time.Time
	NewID         model.IDGenerator
}

// EventKind classifies engine events.
type EventKind int

const (
	// EventChanged fires after any change to the list, pointer or streak.
	EventChanged EventKind = iota

	// EventCelebration carries a streak milestone.
	EventCelebration

	// EventNotice carries a short user-facing message.
	EventNotice
)

// Event is delivered to subscribers synchronously.
type Event struct {
	Kind        EventKind
	Celebration *streak.Celebration
	Notice      string
}

// Engine owns all task and streak state.
type Engine struct {
	list    *ordering.List
	reorder *ordering.Controller
	streak  *streak.Tracker

	persist  Persistence
	service  Service
	locator  capability.Locator
	dictator capability.Dictator
	fallback string
	now      func() time.Time
	newID    model.IDGenerator

	completing   map[string]bool
	prioritizing bool

	subs   map[int]func(Event)
	nextID int
}

// New restores state from persistence and reconciles the streak. Storage
// read failures degrade to empty state and are logged.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Persistence == nil {
		return nil, errors.New("engine: persistence is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = model.NewUUIDGenerator()
	}
	if opts.Dictator == nil {
		opts.Dictator = capability.NoDictation{}
	}

	tasks, err := opts.Persistence.LoadTasks(ctx)
	if err != nil {
		log.Printf("loading tasks, starting empty: %v", err)
		tasks = nil
	}

	e := &Engine{
		list:       ordering.NewList(tasks, opts.Persistence),
		streak:     streak.NewTracker(opts.Persistence, opts.Now),
		persist:    opts.Persistence,
		service:    opts.Service,
		locator:    opts.Locator,
		dictator:   opts.Dictator,
		fallback:   opts.FallbackPlace,
		now:        opts.Now,
		newID:      opts.NewID,
		completing: make(map[string]bool),
		subs:       make(map[int]func(Event)),
	}
	e.reorder = ordering.NewController(e.list)

	if err := e.streak.Reconcile(ctx); err != nil {
		log.Printf("reconciling streak: %v", err)
	}

	return e, nil
}

// Subscribe registers fn for all future events and returns a function that
// removes it.
func (e *Engine) Subscribe(fn func(Event)) func() {
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	return func() { delete(e.subs, id) }
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.subs {
		fn(ev)
	}
}

func (e *Engine) changed() { e.emit(Event{Kind: EventChanged}) }

func (e *Engine) notice(format string, args ...interface{}) {
	e.emit(Event{Kind: EventNotice, Notice: fmt.Sprintf(format, args...)})
}

// saved reports a snapshot failure without undoing the in-memory change.
func (e *Engine) saved(err error) {
	if err == nil {
		return
	}
	log.Printf("persisting tasks: %v", err)
	e.notice("Could not save tasks: %v", err)
}

// Tasks returns a copy of the ordered list.
func (e *Engine) Tasks() []model.Task { return e.list.Tasks() }

// Len returns the number of tasks.
func (e *Engine) Len() int { return e.list.Len() }

// Current returns the task under the viewing pointer.
func (e *Engine) Current() (model.Task, bool) { return e.list.Current() }

// CurrentIndex returns the viewing pointer, or -1 for an empty list.
func (e *Engine) CurrentIndex() int { return e.list.CurrentIndex() }

// Task returns the task with the given id.
func (e *Engine) Task(id string) (model.Task, bool) {
	return e.list.At(e.list.IndexOf(id))
}

// Next moves the pointer down one task. It does not wrap.
func (e *Engine) Next() bool { return e.Select(e.list.CurrentIndex() + 1) }

// Prev moves the pointer up one task. It does not wrap.
func (e *Engine) Prev() bool { return e.Select(e.list.CurrentIndex() - 1) }

// Select points at index i. Out-of-range indexes are ignored.
func (e *Engine) Select(i int) bool {
	if !e.list.SetCurrent(i) {
		return false
	}
	e.changed()
	return true
}

// Streak returns the current streak.
func (e *Engine) Streak() streak.State { return e.streak.State() }

// ReconcileStreak re-checks the streak against today. Front ends call it
// when the calendar day changes while running.
func (e *Engine) ReconcileStreak(ctx context.Context) error {
	if err := e.streak.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconciling streak: %w", err)
	}
	e.changed()
	return nil
}

// Now returns the engine's clock reading.
func (e *Engine) Now() time.Time { return e.now() }

// Dragging returns the index being dragged, or -1.
func (e *Engine) Dragging() int { return e.reorder.Dragging() }

// Highlight returns the rows to emphasise during a touch drag.
func (e *Engine) Highlight() ordering.Highlight { return e.reorder.Highlight() }

// MoveUp swaps task i with the one above it.
func (e *Engine) MoveUp(ctx context.Context, i int) {
	e.saved(e.reorder.MoveUp(ctx, i))
	e.changed()
}

// MoveDown swaps task i with the one below it.
func (e *Engine) MoveDown(ctx context.Context, i int) {
	e.saved(e.reorder.MoveDown(ctx, i))
	e.changed()
}

// Move relocates task from to index to.
func (e *Engine) Move(ctx context.Context, from, to int) {
	e.saved(e.list.MoveTo(ctx, from, to))
	e.changed()
}

// DragStart begins a pointer drag on row i.
func (e *Engine) DragStart(i int) {
	e.reorder.DragStart(i)
	e.changed()
}

// Drop finishes a pointer drag over row target.
func (e *Engine) Drop(ctx context.Context, target int) {
	e.saved(e.reorder.Drop(ctx, target))
	e.changed()
}

// DragEnd abandons a pointer drag.
func (e *Engine) DragEnd() {
	e.reorder.DragEnd()
	e.changed()
}

// TouchStart begins a touch drag on row i.
func (e *Engine) TouchStart(i int) {
	e.reorder.TouchStart(i)
	e.changed()
}

// TouchMove updates the hover highlight for the row under (x, y).
func (e *Engine) TouchMove(x, y int, r ordering.IndexResolver) ordering.Highlight {
	h := e.reorder.TouchMove(x, y, r)
	e.changed()
	return h
}

// TouchEnd drops onto the row under (x, y) and clears all drag state.
func (e *Engine) TouchEnd(ctx context.Context, x, y int, r ordering.IndexResolver) {
	e.saved(e.reorder.TouchEnd(ctx, x, y, r))
	e.changed()
}
