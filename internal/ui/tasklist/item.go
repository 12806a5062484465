package tasklist

import (
	"fmt"
	"time"

	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/theme"
)

// rowState says how a row should be emphasised.
type rowState int

const (
	rowNormal rowState = iota
	rowSelected
	rowDragged
	rowDropTarget
)

// renderRow draws a single task line.
func renderRow(index int, t model.Task, current bool, state rowState, now time.Time, width int) string {
	prefix := "○"
	if current {
		prefix = "●"
	}

	priBadge := ""
	if t.Priority != "" && t.Priority != model.PriorityNone {
		priBadge = theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority)) + " "
	}

	dueDateStr := ""
	if t.DueDate != nil {
		overdue := t.IsOverdue(now)
		label := " " + t.DueDate.String()
		if overdue {
			label += " OVERDUE"
		}
		dueDateStr = theme.DueStyle(overdue).Render(label)
	}

	linkStr := ""
	if n := len(t.SavedLinks); n > 0 {
		linkStr = theme.DimmedStyle.Render(fmt.Sprintf(" 🔗%d", n))
	}

	line := fmt.Sprintf(
		"%2d %s %s%s%s%s",
		index+1, prefix, priBadge, t.Title, dueDateStr, linkStr,
	)

	style := theme.ListItemStyle
	switch state {
	case rowSelected:
		style = theme.SelectedItemStyle
	case rowDragged:
		style = theme.DraggedItemStyle
	case rowDropTarget:
		style = theme.DropTargetStyle
	}
	if width > 0 {
		style = style.MaxWidth(width)
	}
	return style.Render(line)
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "H"
	case model.PriorityMedium:
		return "M"
	case model.PriorityLow:
		return "L"
	case model.PriorityAI:
		return "AI"
	default:
		return ""
	}
}
