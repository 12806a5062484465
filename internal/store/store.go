package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/nhle/onetask/internal/model"
)

// Snapshot keys.
const (
	KeyTasks             = "tasks"
	KeyStreakCount       = "streakCount"
	KeyLastCompletedDate = "lastCompletedDate"
)

// KV is the key-value substrate snapshots are written to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetAll(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
}

// Gateway serializes the task list and streak fields to opaque snapshots.
type Gateway struct {
	kv KV
}

// NewGateway wraps a KV store.
func NewGateway(kv KV) *Gateway {
	return &Gateway{kv: kv}
}

// LoadTasks restores the ordered task list. A malformed snapshot is
// discarded and an empty list returned; only a storage failure is an error.
func (g *Gateway) LoadTasks(ctx context.Context) ([]model.Task, error) {
	raw, ok, err := g.kv.Get(ctx, KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		log.Printf("discarding malformed task snapshot: %v", err)
		return nil, nil
	}
	return sanitize(tasks), nil
}

// SaveTasks writes the full ordered list.
func (g *Gateway) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshaling tasks: %w", err)
	}
	if err := g.kv.Set(ctx, KeyTasks, string(data)); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	return nil
}

// ClearTasks removes the task snapshot entirely.
func (g *Gateway) ClearTasks(ctx context.Context) error {
	if err := g.kv.Delete(ctx, KeyTasks); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}
	return nil
}

// LoadStreak returns the persisted streak fields. ok is false unless both
// the count and the last completion timestamp are present and readable.
func (g *Gateway) LoadStreak(ctx context.Context) (count int, last *time.Time, ok bool, err error) {
	rawCount, hasCount, err := g.kv.Get(ctx, KeyStreakCount)
	if err != nil {
		return 0, nil, false, fmt.Errorf("loading streak count: %w", err)
	}
	rawLast, hasLast, err := g.kv.Get(ctx, KeyLastCompletedDate)
	if err != nil {
		return 0, nil, false, fmt.Errorf("loading last completed date: %w", err)
	}
	if !hasCount || !hasLast {
		return 0, nil, false, nil
	}

	n, err := strconv.Atoi(rawCount)
	if err != nil || n < 0 {
		log.Printf("discarding malformed streak count %q", rawCount)
		return 0, nil, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, rawLast)
	if err != nil {
		log.Printf("discarding malformed last completed date %q: %v", rawLast, err)
		return 0, nil, false, nil
	}
	return n, &t, true, nil
}

// SaveStreak writes the count and, when known, the last completion time.
func (g *Gateway) SaveStreak(ctx context.Context, count int, last *time.Time) error {
	values := map[string]string{KeyStreakCount: strconv.Itoa(count)}
	if last != nil {
		values[KeyLastCompletedDate] = last.Format(time.RFC3339Nano)
	}
	if err := g.kv.SetAll(ctx, values); err != nil {
		return fmt.Errorf("saving streak: %w", err)
	}
	return nil
}

// sanitize drops entries that would break list invariants: blank ids and
// duplicate ids.
func sanitize(tasks []model.Task) []model.Task {
	seen := make(map[string]bool, len(tasks))
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			log.Printf("dropping stored task %q with missing or duplicate id", t.Title)
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
