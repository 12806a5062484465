package ordering

import "context"

// IndexResolver answers which list row is under a screen coordinate. The
// view layer implements it by hit-testing its rendered rows.
type IndexResolver interface {
	IndexAt(x, y int) (int, bool)
}

// Highlight describes the rows a touch drag should emphasise. A value of -1
// means no row.
type Highlight struct {
	Dragged int
	Hovered int
}

var noHighlight = Highlight{Dragged: -1, Hovered: -1}

// Controller turns reorder gestures into list operations and owns the
// transient drag marker.
type Controller struct {
	list      *List
	dragging  int
	highlight Highlight
}

// NewController returns an idle controller for list.
func NewController(list *List) *Controller {
	return &Controller{list: list, dragging: -1, highlight: noHighlight}
}

// Dragging returns the index being dragged, or -1 when idle.
func (c *Controller) Dragging() int { return c.dragging }

// Highlight returns the rows to emphasise during a touch drag.
func (c *Controller) Highlight() Highlight { return c.highlight }

// MoveUp swaps the task at i with the one above it.
func (c *Controller) MoveUp(ctx context.Context, i int) error {
	return c.list.SwapAdjacent(ctx, i, Up)
}

// MoveDown swaps the task at i with the one below it.
func (c *Controller) MoveDown(ctx context.Context, i int) error {
	return c.list.SwapAdjacent(ctx, i, Down)
}

// DragStart records the source row of a pointer drag.
func (c *Controller) DragStart(i int) {
	if i < 0 || i >= c.list.Len() {
		return
	}
	c.dragging = i
}

// Drop finishes a drag over target. The move happens only when a drag is
// active and target differs from the source. The marker is cleared either way.
func (c *Controller) Drop(ctx context.Context, target int) error {
	from := c.dragging
	c.reset()
	if from < 0 || from == target {
		return nil
	}
	return c.list.MoveTo(ctx, from, target)
}

// DragEnd abandons a drag without moving anything.
func (c *Controller) DragEnd() { c.reset() }

// TouchStart begins a touch drag on row i.
func (c *Controller) TouchStart(i int) {
	c.DragStart(i)
	if c.dragging >= 0 {
		c.highlight = Highlight{Dragged: c.dragging, Hovered: -1}
	}
}

// TouchMove updates the hover highlight for the row under (x, y).
func (c *Controller) TouchMove(x, y int, r IndexResolver) Highlight {
	if c.dragging < 0 {
		return c.highlight
	}
	h := Highlight{Dragged: c.dragging, Hovered: -1}
	if i, ok := r.IndexAt(x, y); ok && i != c.dragging {
		h.Hovered = i
	}
	c.highlight = h
	return h
}

// TouchEnd drops onto the row under (x, y), if any, and clears all drag
// state, including when the gesture ends off the list.
func (c *Controller) TouchEnd(ctx context.Context, x, y int, r IndexResolver) error {
	if c.dragging < 0 {
		c.reset()
		return nil
	}
	i, ok := r.IndexAt(x, y)
	if !ok {
		c.reset()
		return nil
	}
	return c.Drop(ctx, i)
}

func (c *Controller) reset() {
	c.dragging = -1
	c.highlight = noHighlight
}
