package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/nhle/onetask/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewTestGateway wraps a fresh in-memory store in a snapshot gateway.
func NewTestGateway(t *testing.T) (*store.Gateway, *store.SQLiteStore) {
	t.Helper()
	s := NewTestStore(t)
	return store.NewGateway(s), s
}

// Clock is a settable time source for streak and overdue logic.
type Clock struct {
	T time.Time
}

// NewClock starts a clock at the given local date, noon.
func NewClock(y int, m time.Month, d int) *Clock {
	return &Clock{T: time.Date(y, m, d, 12, 0, 0, 0, time.Local)}
}

// Now returns the clock's current time.
func (c *Clock) Now() time.Time { return c.T }

// AddDays moves the clock forward by n calendar days.
func (c *Clock) AddDays(n int) { c.T = c.T.AddDate(0, 0, n) }

// SeqIDs returns a generator yielding id-1, id-2, ...
func SeqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
