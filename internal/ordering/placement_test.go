package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/onetask/internal/model"
)

type stubRanker struct {
	pos   int
	err   error
	calls int
	title string
}

func (s *stubRanker) SuggestPosition(_ context.Context, title string, _ []model.Task) (int, error) {
	s.calls++
	s.title = title
	return s.pos, s.err
}

func TestInsertionIndex_Deterministic(t *testing.T) {
	ctx := context.Background()
	for n := 0; n <= 9; n++ {
		existing := make([]model.Task, n)

		assert.Equal(t, 0, InsertionIndex(ctx, model.PriorityHigh, "x", existing, nil), "high n=%d", n)
		assert.Equal(t, 0, InsertionIndex(ctx, model.PriorityNone, "x", existing, nil), "none n=%d", n)
		assert.Equal(t, 0, InsertionIndex(ctx, "", "x", existing, nil), "unset n=%d", n)
		assert.Equal(t, n/2, InsertionIndex(ctx, model.PriorityMedium, "x", existing, nil), "medium n=%d", n)
		assert.Equal(t, n, InsertionIndex(ctx, model.PriorityLow, "x", existing, nil), "low n=%d", n)
	}
}

func TestInsertionIndex_AI(t *testing.T) {
	ctx := context.Background()
	existing := tasks("A", "B", "C")

	tests := []struct {
		name   string
		ranker *stubRanker
		want   int
	}{
		{"one-based position", &stubRanker{pos: 2}, 1},
		{"first", &stubRanker{pos: 1}, 0},
		{"past the end clamps", &stubRanker{pos: 10}, 3},
		{"zero clamps", &stubRanker{pos: 0}, 0},
		{"failure falls back to top", &stubRanker{pos: 3, err: errors.New("unreachable")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InsertionIndex(ctx, model.PriorityAI, "Pay rent", existing, tt.ranker)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.ranker.calls)
			assert.Equal(t, "Pay rent", tt.ranker.title)
		})
	}
}

func TestInsertionIndex_AIFailureAnyLength(t *testing.T) {
	ctx := context.Background()
	r := &stubRanker{err: errors.New("bad json")}
	for n := 0; n <= 6; n++ {
		assert.Equal(t, 0, InsertionIndex(ctx, model.PriorityAI, "x", make([]model.Task, n), r))
	}
	assert.Equal(t, 0, InsertionIndex(ctx, model.PriorityAI, "x", tasks("A"), nil))
}

func TestInsertionIndex_OnlyAICallsRanker(t *testing.T) {
	r := &stubRanker{pos: 1}
	for _, p := range []model.Priority{model.PriorityNone, model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		InsertionIndex(context.Background(), p, "x", tasks("A", "B"), r)
	}
	assert.Zero(t, r.calls)
}

func TestEndToEnd_AddAndDrag(t *testing.T) {
	ctx := context.Background()

	l := NewList(nil, nil)
	at := InsertionIndex(ctx, model.PriorityHigh, "Buy milk", l.Tasks(), nil)
	assert.NoError(t, l.Insert(ctx, model.Task{ID: "m", Title: "Buy milk"}, at))
	assert.Equal(t, []string{"Buy milk"}, titles(l))
	assert.Equal(t, 0, l.CurrentIndex())

	l = NewList(tasks("A", "B", "C"), nil)
	at = InsertionIndex(ctx, model.PriorityMedium, "New", l.Tasks(), nil)
	assert.Equal(t, 1, at)
	assert.NoError(t, l.Insert(ctx, model.Task{ID: "New", Title: "New"}, at))
	assert.Equal(t, []string{"A", "New", "B", "C"}, titles(l))
}
