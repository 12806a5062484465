package ordering

import (
	"context"
	"log"

	"github.com/nhle/onetask/internal/model"
)

// Ranker asks a remote service where a new task belongs among the existing
// ones. The returned position is 1-based.
type Ranker interface {
	SuggestPosition(ctx context.Context, title string, existing []model.Task) (int, error)
}

// InsertionIndex maps a priority tag to the index a new task is inserted at.
// The result is always within [0, len(existing)].
//
// PriorityAI delegates to ranker. Any failure, including a missing ranker,
// places the task on top.
func InsertionIndex(ctx context.Context, p model.Priority, title string, existing []model.Task, ranker Ranker) int {
	n := len(existing)

	switch p {
	case model.PriorityMedium:
		return n / 2
	case model.PriorityLow:
		return n
	case model.PriorityAI:
		if ranker == nil {
			return 0
		}
		pos, err := ranker.SuggestPosition(ctx, title, existing)
		if err != nil {
			log.Printf("ai placement for %q failed, placing on top: %v", title, err)
			return 0
		}
		return clamp(pos-1, 0, n)
	default:
		return 0
	}
}
