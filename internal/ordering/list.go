// Package ordering owns the ranked task list, the placement rule for new
// tasks, and the gesture controller that reorders the list by hand.
package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/onetask/internal/model"
)

// ErrTaskNotFound is returned when an id or index does not name a task.
var ErrTaskNotFound = errors.New("task not found")

// Snapshotter persists the ordered list after each structural change.
type Snapshotter interface {
	SaveTasks(ctx context.Context, tasks []model.Task) error
	ClearTasks(ctx context.Context) error
}

// List is the authoritative ordered sequence of tasks plus the viewing
// pointer. Position defines rank: index 0 is the most important task.
//
// Every mutation is applied in memory first and then snapshotted. A
// persistence failure is returned to the caller but the in-memory change
// stands.
type List struct {
	tasks   []model.Task
	current int
	snap    Snapshotter
}

// NewList restores a list from previously loaded tasks. Restoring does not
// write a snapshot. snap may be nil for a list that is never persisted.
func NewList(tasks []model.Task, snap Snapshotter) *List {
	l := &List{tasks: model.CloneTasks(tasks), current: -1, snap: snap}
	if len(l.tasks) > 0 {
		l.current = 0
	}
	return l
}

// Len returns the number of tasks.
func (l *List) Len() int { return len(l.tasks) }

// Tasks returns a deep copy of the ordered list.
func (l *List) Tasks() []model.Task { return model.CloneTasks(l.tasks) }

// At returns a copy of the task at index i.
func (l *List) At(i int) (model.Task, bool) {
	if i < 0 || i >= len(l.tasks) {
		return model.Task{}, false
	}
	return l.tasks[i].Clone(), true
}

// IndexOf returns the position of the task with the given id, or -1.
func (l *List) IndexOf(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// CurrentIndex returns the viewing pointer, or -1 when the list is empty.
func (l *List) CurrentIndex() int { return l.current }

// Current returns the task under the viewing pointer.
func (l *List) Current() (model.Task, bool) { return l.At(l.current) }

// SetCurrent moves the viewing pointer. Out-of-range indexes are ignored.
func (l *List) SetCurrent(i int) bool {
	if i < 0 || i >= len(l.tasks) {
		return false
	}
	l.current = i
	return true
}

// Insert places task at index at, clamped to [0, Len()]. Later tasks shift
// right. The pointer keeps its numeric position, except that inserting into
// an empty list activates it at 0.
func (l *List) Insert(ctx context.Context, task model.Task, at int) error {
	at = clamp(at, 0, len(l.tasks))

	l.tasks = append(l.tasks, model.Task{})
	copy(l.tasks[at+1:], l.tasks[at:])
	l.tasks[at] = task.Clone()

	if l.current < 0 {
		l.current = 0
	}
	return l.persist(ctx, len(l.tasks)-1)
}

// Remove deletes the task at index. An out-of-range index is a no-op.
func (l *List) Remove(ctx context.Context, index int) error {
	if index < 0 || index >= len(l.tasks) {
		return nil
	}
	prev := len(l.tasks)

	l.tasks = append(l.tasks[:index], l.tasks[index+1:]...)

	switch {
	case len(l.tasks) == 0:
		l.current = -1
	case index <= l.current && l.current > 0:
		l.current--
	}
	return l.persist(ctx, prev)
}

// RemoveID deletes the task with the given id. A missing id is a no-op and
// reports false.
func (l *List) RemoveID(ctx context.Context, id string) (bool, error) {
	i := l.IndexOf(id)
	if i < 0 {
		return false, nil
	}
	return true, l.Remove(ctx, i)
}

// ReplaceAll swaps in a whole new ordering and resets the pointer to the top.
func (l *List) ReplaceAll(ctx context.Context, tasks []model.Task) error {
	prev := len(l.tasks)

	l.tasks = model.CloneTasks(tasks)
	l.current = -1
	if len(l.tasks) > 0 {
		l.current = 0
	}
	return l.persist(ctx, prev)
}

// Direction selects the neighbour for SwapAdjacent.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// SwapAdjacent exchanges the task at i with its neighbour above or below.
// It is a no-op at the list boundaries. The pointer keeps tracking the task
// it referenced.
func (l *List) SwapAdjacent(ctx context.Context, i int, dir Direction) error {
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if i < 0 || i >= len(l.tasks) || j < 0 || j >= len(l.tasks) {
		return nil
	}

	l.tasks[i], l.tasks[j] = l.tasks[j], l.tasks[i]

	switch l.current {
	case i:
		l.current = j
	case j:
		l.current = i
	}
	return l.persist(ctx, len(l.tasks))
}

// MoveTo relocates the task at from to index to with remove-then-insert
// semantics. Equal or invalid indexes are a no-op.
func (l *List) MoveTo(ctx context.Context, from, to int) error {
	n := len(l.tasks)
	if from == to || from < 0 || from >= n || to < 0 || to >= n {
		return nil
	}

	moved := l.tasks[from]
	l.tasks = append(l.tasks[:from], l.tasks[from+1:]...)
	l.tasks = append(l.tasks, model.Task{})
	copy(l.tasks[to+1:], l.tasks[to:])
	l.tasks[to] = moved

	p := l.current
	switch {
	case p == from:
		l.current = to
	case from < p && p <= to:
		l.current--
	case to <= p && p < from:
		l.current++
	}
	return l.persist(ctx, n)
}

// Update applies fn to the task with the given id and snapshots the result.
// fn must not change the task id.
func (l *List) Update(ctx context.Context, id string, fn func(*model.Task) error) error {
	i := l.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("updating %s: %w", id, ErrTaskNotFound)
	}

	t := l.tasks[i].Clone()
	if err := fn(&t); err != nil {
		return err
	}
	t.ID = l.tasks[i].ID
	l.tasks[i] = t

	return l.persist(ctx, len(l.tasks))
}

// persist writes the current list, or clears the snapshot when the list
// just went from non-empty to empty. An empty list that was already empty
// is never written.
func (l *List) persist(ctx context.Context, prevLen int) error {
	if l.snap == nil {
		return nil
	}
	if len(l.tasks) == 0 {
		if prevLen == 0 {
			return nil
		}
		if err := l.snap.ClearTasks(ctx); err != nil {
			return fmt.Errorf("clearing task snapshot: %w", err)
		}
		return nil
	}
	if err := l.snap.SaveTasks(ctx, l.tasks); err != nil {
		return fmt.Errorf("saving task snapshot: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
