package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors for user-supplied task and link fields.
var (
	ErrEmptyTitle  = errors.New("task title must not be empty")
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidURL  = errors.New("invalid link URL")
)

// Priority is the tag a user picks when adding a task. PriorityAI is a
// placement directive: the task is positioned by the ranking service, but the
// tag itself is stored as selected.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityAI     Priority = "ai"
)

// Priorities lists every selectable priority in menu order.
var Priorities = []Priority{
	PriorityNone,
	PriorityHigh,
	PriorityMedium,
	PriorityLow,
	PriorityAI,
}

// ParsePriority converts user input to a Priority. An empty string maps to
// PriorityNone.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityNone, nil
	}
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q (want none, high, medium, low or ai)", s)
}

// Label returns the human-readable name shown in forms and lists.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case PriorityAI:
		return "Let AI decide"
	default:
		return "None"
	}
}

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	t time.Time
}

// NewDate returns the calendar date y-m-d.
func NewDate(y int, m time.Month, d int) Date {
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t: t}, nil
}

// ParseOptionalDate parses s, returning nil for a blank string.
func ParseOptionalDate(s string) (*Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (d Date) String() string { return d.t.Format(DateLayout) }

// IsZero reports whether d is the zero date, which stands for "no date".
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" as well as a full RFC 3339 timestamp,
// since the ranking service echoes tasks back in either form.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = DateOf(t)
			return nil
		}
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Task is a single to-do item. Its position in the task list defines both
// display order and rank.
type Task struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	DueDate    *Date    `json:"dueDate,omitempty"`
	Priority   Priority `json:"priority"`
	Note       string   `json:"note,omitempty"`
	SavedLinks []Link   `json:"savedLinks"`
}

// UnmarshalJSON decodes a task, treating an empty or null due date as no
// due date.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		p.DueDate = nil
	}
	*t = Task(p)
	return nil
}

// Clone returns a deep copy so callers can hand tasks across the UI boundary
// without sharing link slices.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.SavedLinks = append([]Link(nil), t.SavedLinks...)
	return c
}

// IsOverdue reports whether the task's due date lies before the day of now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(DateOf(now))
}

// ValidateTitle trims a title and rejects blank input.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

// CloneTasks deep-copies a task slice.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
