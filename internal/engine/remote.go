package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/nhle/onetask/internal/ai"
	"github.com/nhle/onetask/internal/capability"
	"github.com/nhle/onetask/internal/model"
)

// freshSuggestionSuffix asks the service for links it has not offered yet.
const freshSuggestionSuffix = " (provide NEW alternative suggestions)"

// maxFreshSuggestions is how many refreshed links are kept before the
// search fallback is appended.
const maxFreshSuggestions = 2

var errNoService = errors.New("ranking service is not configured")

// Prioritizing reports whether a full-list ranking is in flight.
func (e *Engine) Prioritizing() bool { return e.prioritizing }

// BeginPrioritize raises the single-flight guard and returns the list to
// send for ranking.
func (e *Engine) BeginPrioritize() ([]model.Task, error) {
	if e.prioritizing {
		return nil, ErrPrioritizing
	}
	if e.list.Len() == 0 {
		return nil, ErrNothingToPrioritize
	}
	e.prioritizing = true
	e.changed()
	return e.list.Tasks(), nil
}

// RankList asks the service to order tasks. It blocks.
func (e *Engine) RankList(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	if e.service == nil {
		return nil, errNoService
	}
	return e.service.PrioritizeList(ctx, tasks)
}

// FinishPrioritize lowers the guard and applies a ranking result. On
// failure the list is left as it was. A result is applied even if the list
// changed while the request was in flight.
func (e *Engine) FinishPrioritize(ctx context.Context, ranked []model.Task, rankErr error) error {
	e.prioritizing = false

	if rankErr != nil {
		log.Printf("prioritizing tasks: %v", rankErr)
		e.notice("Failed to prioritize tasks. Please try again.")
		e.changed()
		return fmt.Errorf("prioritizing tasks: %w", rankErr)
	}

	e.saved(e.list.ReplaceAll(ctx, ranked))
	e.notice("Tasks have been prioritized!")
	e.changed()
	return nil
}

// PrioritizeAll runs a full-list ranking synchronously.
func (e *Engine) PrioritizeAll(ctx context.Context) error {
	tasks, err := e.BeginPrioritize()
	if err != nil {
		return err
	}
	ranked, err := e.RankList(ctx, tasks)
	return e.FinishPrioritize(ctx, ranked, err)
}

// Place returns the user's location, or the configured fallback.
func (e *Engine) Place(ctx context.Context) string {
	p, _ := capability.PlaceOrFallback(ctx, e.locator, e.fallback)
	return p
}

// SuggestionQuery is a prepared link suggestion request for one task.
type SuggestionQuery struct {
	TaskID  string
	Title   string
	Fresh   bool
	Request ai.SuggestionRequest
}

// PrepareSuggestions builds a suggestion request for a task. fresh asks for
// alternatives to links already offered.
func (e *Engine) PrepareSuggestions(ctx context.Context, taskID string, fresh bool) (SuggestionQuery, error) {
	t, ok := e.Task(taskID)
	if !ok {
		return SuggestionQuery{}, ErrNoCurrentTask
	}

	title := t.Title
	if fresh {
		title += freshSuggestionSuffix
	}
	return SuggestionQuery{
		TaskID: t.ID,
		Title:  t.Title,
		Fresh:  fresh,
		Request: ai.SuggestionRequest{
			TaskTitle:    title,
			DueDate:      t.DueDate,
			Priority:     t.Priority,
			UserLocation: e.Place(ctx),
		},
	}, nil
}

// FetchSuggestions runs a prepared query. It blocks. A fresh query keeps
// at most two links and adds a web search for the task title.
func (e *Engine) FetchSuggestions(ctx context.Context, q SuggestionQuery) ([]model.SuggestedLink, error) {
	if e.service == nil {
		return nil, errNoService
	}
	links, err := e.service.Suggest(ctx, q.Request)
	if err != nil {
		return nil, fmt.Errorf("getting suggestions: %w", err)
	}
	if len(links) == 0 {
		return nil, ErrNoSuggestions
	}
	if !q.Fresh {
		return links, nil
	}

	n := len(links)
	if n > maxFreshSuggestions {
		n = maxFreshSuggestions
	}
	out := make([]model.SuggestedLink, 0, n+1)
	out = append(out, links[:n]...)
	return append(out, SearchLink(q.Title)), nil
}

// Suggest prepares and runs a suggestion query for a task.
func (e *Engine) Suggest(ctx context.Context, taskID string, fresh bool) ([]model.SuggestedLink, error) {
	q, err := e.PrepareSuggestions(ctx, taskID, fresh)
	if err != nil {
		return nil, err
	}
	return e.FetchSuggestions(ctx, q)
}

// SearchLink is the web search fallback offered alongside fresh suggestions.
func SearchLink(title string) model.SuggestedLink {
	return model.SuggestedLink{
		URL:         "https://www.google.com/search?q=" + url.QueryEscape(title),
		Description: "Search on Google",
	}
}

// AskURL returns a Perplexity search for the task, mentioning where the user
// is when that is known.
func (e *Engine) AskURL(ctx context.Context, taskID string) (string, error) {
	t, ok := e.Task(taskID)
	if !ok {
		return "", ErrNoCurrentTask
	}
	q := t.Title
	if p := e.Place(ctx); p != "" {
		q += fmt.Sprintf(" (I'm in %s)", p)
	}
	return "https://www.perplexity.ai/?q=" + url.QueryEscape(q), nil
}

// Dictate records speech through the host capability. When the host has no
// dictation a notice is emitted and capability.ErrUnavailable returned.
func (e *Engine) Dictate(ctx context.Context) (string, error) {
	text, err := e.dictator.Dictate(ctx)
	if errors.Is(err, capability.ErrUnavailable) {
		e.notice("Voice input is not available here.")
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("dictating: %w", err)
	}
	return text, nil
}
