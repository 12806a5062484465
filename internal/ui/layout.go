// Package ui holds the screen frame shared by every view.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/onetask/internal/theme"
)

const (
	headerRows = 1
	statusRows = 1
)

// Frame splits the terminal into a header row, a body and a status row.
type Frame struct {
	Width  int
	Height int
}

// NewFrame creates a frame for a terminal of the given size.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height}
}

// BodyWidth returns the width available to views.
func (f Frame) BodyWidth() int {
	return f.Width
}

// BodyHeight returns the rows left between the header and status bar.
func (f Frame) BodyHeight() int {
	return max(0, f.Height-headerRows-statusRows)
}

// BodyTop returns the screen row the body starts at. Mouse coordinates are
// relative to the whole screen, so views that hit-test need it.
func (f Frame) BodyTop() int {
	return headerRows
}

// Header renders the title on the left and status, usually the streak, on
// the right.
func (f Frame) Header(title, status string) string {
	right := ""
	if status != "" {
		right = theme.StreakStyle.Render(status)
	}
	return f.bar(theme.HeaderStyle, theme.HeaderStyle.Render(title), right)
}

// StatusBar renders key hints, or a notice in its own color.
func (f Frame) StatusBar(text string, notice bool) string {
	style := theme.StatusBarStyle
	if notice {
		style = theme.NoticeStyle
	}
	return f.bar(style, style.Render(text), "")
}

// bar lays left and right out on one full-width row, filled with the
// style's background.
func (f Frame) bar(style lipgloss.Style, left, right string) string {
	gap := max(0, f.Width-lipgloss.Width(left)-lipgloss.Width(right))
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// Compose stacks header, body and status bar. The body is padded or cut to
// BodyHeight so the status bar stays on the last row.
func (f Frame) Compose(header, body, statusBar string) string {
	h := f.BodyHeight()
	body = lipgloss.NewStyle().Height(h).MaxHeight(h).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}
