// Package capability models host features the engine may use but must not
// depend on: knowing where the user is and turning speech into text.
package capability

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable means the host cannot provide the capability at all.
var ErrUnavailable = errors.New("capability unavailable")

// Locator resolves a human-readable place name for the user.
type Locator interface {
	Locate(ctx context.Context) (string, error)
}

// Dictator records speech and returns it as text.
type Dictator interface {
	Dictate(ctx context.Context) (string, error)
}

// StaticLocator reports a fixed place, or ErrUnavailable when blank.
type StaticLocator struct {
	Place string
}

// Locate implements Locator.
func (s StaticLocator) Locate(context.Context) (string, error) {
	if p := strings.TrimSpace(s.Place); p != "" {
		return p, nil
	}
	return "", ErrUnavailable
}

// NoDictation is the terminal's dictation capability: there is none.
type NoDictation struct{}

// Dictate implements Dictator.
func (NoDictation) Dictate(context.Context) (string, error) {
	return "", ErrUnavailable
}

// PlaceOrFallback asks l for a place and returns fallback on any failure.
// The second result reports whether the place came from l.
func PlaceOrFallback(ctx context.Context, l Locator, fallback string) (string, bool) {
	if l == nil {
		return fallback, false
	}
	p, err := l.Locate(ctx)
	if err != nil || strings.TrimSpace(p) == "" {
		return fallback, false
	}
	return p, true
}
