package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlay panels such as help and the command palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CardStyle wraps the focused task.
var CardStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// CompletingCardStyle replaces CardStyle while a task is being completed.
var CompletingCardStyle = CardStyle.
	BorderForeground(ColorGreen)

// TitleStyle renders the focused task title.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DraggedItemStyle marks the row being dragged.
var DraggedItemStyle = lipgloss.NewStyle().
	PaddingLeft(2).
	Faint(true).
	Italic(true)

// DropTargetStyle marks the row a dragged task would land on.
var DropTargetStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(ColorMagenta).
	Border(lipgloss.ThickBorder(), false, false, false, true).
	BorderForeground(ColorMagenta)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle is used for secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// DueDateStyle renders a due date that has not passed.
var DueDateStyle = lipgloss.NewStyle().
	Foreground(ColorBlue)

// OverdueStyle renders a due date in the past.
var OverdueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// StreakStyle renders the streak counter in the header.
var StreakStyle = HeaderStyle.
	Foreground(ColorYellow)

// CelebrationStyle renders a streak milestone banner.
var CelebrationStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow).
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorYellow).
	Padding(0, 2)

// NoticeStyle renders transient messages in the status bar.
var NoticeStyle = StatusBarStyle.
	Foreground(ColorGreen)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// PriorityStyle returns a color-coded style for the given priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorOrange)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	case model.PriorityAI:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorGray)
	}
}

// DueStyle picks DueDateStyle or OverdueStyle for a task.
func DueStyle(overdue bool) lipgloss.Style {
	if overdue {
		return OverdueStyle
	}
	return DueDateStyle
}
