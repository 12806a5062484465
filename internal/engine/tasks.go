package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/ordering"
	"github.com/nhle/onetask/internal/streak"
)

// TaskDraft is raw user input for a new task.
type TaskDraft struct {
	Title           string
	DueDate         string
	Priority        model.Priority
	Note            string
	LinkURL         string
	LinkDescription string
}

// EditDraft is raw user input for editing a task. A non-blank LinkURL
// attaches one more link.
type EditDraft struct {
	Title           string
	DueDate         string
	Note            string
	LinkURL         string
	LinkDescription string
}

type validDraft struct {
	title    string
	due      *model.Date
	priority model.Priority
	note     string
	link     *model.Link
}

// Validate checks a draft without touching engine state.
func (d TaskDraft) Validate() error {
	_, err := d.validate()
	return err
}

func (d TaskDraft) validate() (validDraft, error) {
	title, err := model.ValidateTitle(d.Title)
	if err != nil {
		return validDraft{}, err
	}
	due, err := model.ParseOptionalDate(d.DueDate)
	if err != nil {
		return validDraft{}, err
	}
	p := d.Priority
	if p == "" {
		p = model.PriorityNone
	}
	if _, err := model.ParsePriority(string(p)); err != nil {
		return validDraft{}, err
	}

	v := validDraft{title: title, due: due, priority: p, note: strings.TrimSpace(d.Note)}
	if strings.TrimSpace(d.LinkURL) != "" {
		l, err := model.NewLink("", d.LinkURL, d.LinkDescription)
		if err != nil {
			return validDraft{}, err
		}
		v.link = &l
	}
	return v, nil
}

// PlaceTask computes where a new task belongs in existing. It may block on
// the ranking service for PriorityAI and never fails.
func (e *Engine) PlaceTask(ctx context.Context, d TaskDraft, existing []model.Task) int {
	return ordering.InsertionIndex(ctx, d.Priority, strings.TrimSpace(d.Title), existing, e.rankerOrNil())
}

func (e *Engine) rankerOrNil() ordering.Ranker {
	if e.service == nil {
		return nil
	}
	return e.service
}

// InsertPlaced validates d and inserts the new task at index at, clamped to
// the list as it is now. Invalid input leaves the list untouched.
func (e *Engine) InsertPlaced(ctx context.Context, d TaskDraft, at int) (model.Task, error) {
	v, err := d.validate()
	if err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		ID:         e.newID(),
		Title:      v.title,
		DueDate:    v.due,
		Priority:   v.priority,
		Note:       v.note,
		SavedLinks: []model.Link{},
	}
	if v.link != nil {
		l := *v.link
		l.ID = e.newID()
		t.SavedLinks = append(t.SavedLinks, l)
	}

	e.saved(e.list.Insert(ctx, t, at))
	e.changed()
	return t, nil
}

// AddTask validates, places and inserts a task in one call. It blocks for
// PriorityAI.
func (e *Engine) AddTask(ctx context.Context, d TaskDraft) (model.Task, error) {
	if err := d.Validate(); err != nil {
		return model.Task{}, err
	}
	at := e.PlaceTask(ctx, d, e.list.Tasks())
	return e.InsertPlaced(ctx, d, at)
}

// EditTask replaces the title, due date and note of a task and optionally
// attaches one link. Nothing changes unless every field is valid.
func (e *Engine) EditTask(ctx context.Context, id string, d EditDraft) error {
	title, err := model.ValidateTitle(d.Title)
	if err != nil {
		return err
	}
	due, err := model.ParseOptionalDate(d.DueDate)
	if err != nil {
		return err
	}
	var link *model.Link
	if strings.TrimSpace(d.LinkURL) != "" {
		l, err := model.NewLink(e.newID(), d.LinkURL, d.LinkDescription)
		if err != nil {
			return err
		}
		link = &l
	}

	err = e.list.Update(ctx, id, func(t *model.Task) error {
		t.Title = title
		t.DueDate = due
		t.Note = strings.TrimSpace(d.Note)
		if link != nil {
			t.SavedLinks = append(t.SavedLinks, *link)
		}
		return nil
	})
	return e.afterUpdate(err)
}

// AttachLink validates a URL and appends it to a task's saved links. A
// blank description becomes the URL host name.
func (e *Engine) AttachLink(ctx context.Context, taskID, rawURL, description string) (model.Link, error) {
	l, err := model.NewLink(e.newID(), rawURL, description)
	if err != nil {
		return model.Link{}, err
	}
	err = e.list.Update(ctx, taskID, func(t *model.Task) error {
		t.SavedLinks = append(t.SavedLinks, l)
		return nil
	})
	if err := e.afterUpdate(err); err != nil {
		return model.Link{}, err
	}
	return l, nil
}

// SaveSuggestedLink attaches a suggestion to a task.
func (e *Engine) SaveSuggestedLink(ctx context.Context, taskID string, s model.SuggestedLink) (model.Link, error) {
	l, err := e.AttachLink(ctx, taskID, s.URL, s.Description)
	if err != nil {
		return model.Link{}, err
	}
	e.notice("Link saved to this task!")
	return l, nil
}

// RemoveLink drops a saved link. A missing link id is a no-op.
func (e *Engine) RemoveLink(ctx context.Context, taskID, linkID string) error {
	err := e.list.Update(ctx, taskID, func(t *model.Task) error {
		kept := t.SavedLinks[:0]
		for _, l := range t.SavedLinks {
			if l.ID != linkID {
				kept = append(kept, l)
			}
		}
		t.SavedLinks = kept
		return nil
	})
	return e.afterUpdate(err)
}

// afterUpdate splits list.Update failures into caller errors and snapshot
// failures, which are only reported.
func (e *Engine) afterUpdate(err error) error {
	if isNotFound(err) {
		return err
	}
	e.saved(err)
	e.changed()
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ordering.ErrTaskNotFound)
}

// Completion is returned when a task starts completing.
type Completion struct {
	TaskID      string
	Title       string
	Celebration *streak.Celebration
}

// IsCompleting reports whether a task is between BeginCompletion and
// FinishCompletion.
func (e *Engine) IsCompleting(id string) bool { return e.completing[id] }

// BeginCompletion marks a task done. The streak is credited immediately;
// the task stays in the list until FinishCompletion, which callers schedule
// after streak.CompletionDelay.
func (e *Engine) BeginCompletion(ctx context.Context, id string) (Completion, error) {
	t, ok := e.Task(id)
	if !ok {
		return Completion{}, fmt.Errorf("completing %s: %w", id, ordering.ErrTaskNotFound)
	}
	if e.completing[id] {
		return Completion{}, ErrCompleting
	}
	e.completing[id] = true

	cel, err := e.streak.Complete(ctx)
	if err != nil {
		log.Printf("recording completion: %v", err)
	}

	e.changed()
	if cel != nil {
		e.emit(Event{Kind: EventCelebration, Celebration: cel})
	}
	return Completion{TaskID: id, Title: t.Title, Celebration: cel}, nil
}

// BeginCompletionCurrent completes the task under the viewing pointer.
func (e *Engine) BeginCompletionCurrent(ctx context.Context) (Completion, error) {
	t, ok := e.list.Current()
	if !ok {
		return Completion{}, ErrNoCurrentTask
	}
	return e.BeginCompletion(ctx, t.ID)
}

// FinishCompletion removes a completing task wherever it now sits in the
// list. It is a no-op when the task is already gone or was never completing.
func (e *Engine) FinishCompletion(ctx context.Context, id string) bool {
	if !e.completing[id] {
		return false
	}
	delete(e.completing, id)

	removed, err := e.list.RemoveID(ctx, id)
	e.saved(err)
	e.changed()
	return removed
}
