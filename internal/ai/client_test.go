package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/onetask/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", 5*time.Second, opts...)
}

func TestSuggestPosition(t *testing.T) {
	var got map[string]json.RawMessage
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/prioritize-task", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"position": 2}`))
	})

	existing := []model.Task{{ID: "a", Title: "A", Priority: model.PriorityHigh}}
	pos, err := c.SuggestPosition(context.Background(), "Pay rent", existing)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	assert.JSONEq(t, `"Pay rent"`, string(got["taskTitle"]))
	assert.JSONEq(t, `null`, string(got["userPriority"]))
	assert.JSONEq(t, `[{"id":"a","title":"A","priority":"high","savedLinks":null}]`, string(got["existingTasks"]))
}

func TestSuggestPosition_EmptyListIsArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[]`, string(body["existingTasks"]))
		w.Write([]byte(`{"position": 1}`))
	})

	_, err := c.SuggestPosition(context.Background(), "x", nil)
	require.NoError(t, err)
}

func TestSuggestPosition_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, nil},
		{"not json", http.StatusOK, `<html>`, ErrMalformedResponse},
		{"missing position", http.StatusOK, `{}`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.SuggestPosition(context.Background(), "x", nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, "/prioritize-task", se.Path)
		})
	}
}

func TestPrioritizeList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prioritize-list", r.URL.Path)
		var body prioritizeListRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Tasks, 2)

		// Echo back reversed.
		json.NewEncoder(w).Encode(prioritizeListResponse{
			PrioritizedTasks: []model.Task{body.Tasks[1], body.Tasks[0]},
		})
	})

	out, err := c.PrioritizeList(context.Background(), []model.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
}

func TestPrioritizeList_BlankDueDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prioritizedTasks":[
			{"id":"b","title":"B","dueDate":"","priority":"low","savedLinks":[]},
			{"id":"a","title":"A","dueDate":"2026-10-19T00:00:00.000Z","priority":"high","savedLinks":[]}
		]}`))
	})

	out, err := c.PrioritizeList(context.Background(), []model.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[0].DueDate)
	require.NotNil(t, out[1].DueDate)
	assert.Equal(t, "2026-10-19", out[1].DueDate.String())
}

func TestPrioritizeList_Malformed(t *testing.T) {
	bodies := map[string]string{
		"no field":     `{}`,
		"missing id":   `{"prioritizedTasks":[{"title":"A"}]}`,
		"duplicate id": `{"prioritizedTasks":[{"id":"a","title":"A"},{"id":"a","title":"B"}]}`,
		"wrong shape":  `{"prioritizedTasks":"A,B"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			_, err := c.PrioritizeList(context.Background(), []model.Task{{ID: "a", Title: "A"}})
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSuggest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get-suggestion", r.URL.Path)
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `"Renew passport"`, string(body["taskTitle"]))
		assert.JSONEq(t, `"2026-11-02"`, string(body["dueDate"]))
		assert.JSONEq(t, `"high"`, string(body["priority"]))
		assert.JSONEq(t, `"Haifa, Israel"`, string(body["userLocation"]))

		w.Write([]byte(`{"links":[
			{"url":"https://www.gov.il/passport","description":"Gov portal"},
			{"url":"https://www.gov.il/appointments","description":"Book a slot"}
		]}`))
	}, WithToken("secret"))

	due := model.NewDate(2026, time.November, 2)
	links, err := c.Suggest(context.Background(), SuggestionRequest{
		TaskTitle:    "Renew passport",
		DueDate:      &due,
		Priority:     model.PriorityHigh,
		UserLocation: "Haifa, Israel",
	})
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Gov portal", links[0].Description)
	assert.Equal(t, "https://www.gov.il/appointments", links[1].URL)
}

func TestSuggest_RejectsInvalidURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"links":[
			{"url":"https://www.gov.il/passport","description":"Gov portal"},
			{"url":"not a url","description":"junk"}
		]}`))
	})

	links, err := c.Suggest(context.Background(), SuggestionRequest{TaskTitle: "Renew passport"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Nil(t, links)
}

func TestSuggest_NullDueDateAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `null`, string(body["dueDate"]))
		w.Write([]byte(`{"links":[]}`))
	}, WithToken("secret"))

	links, err := c.Suggest(context.Background(), SuggestionRequest{TaskTitle: "x"})
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestPost_RetriesOnRateLimit(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"position": 3}`))
	})

	pos, err := c.SuggestPosition(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)
	assert.Equal(t, 2, calls)
}

func TestPost_RateLimitExhausted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithMaxRetries(1))

	_, err := c.SuggestPosition(context.Background(), "x", nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestPost_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second)
	_, err := c.PrioritizeList(context.Background(), nil)
	assert.Error(t, err)
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, time.Second, retryAfterDuration(resp, 0))
	assert.Equal(t, 4*time.Second, retryAfterDuration(resp, 2))
	assert.Equal(t, 10*time.Second, retryAfterDuration(resp, 8))

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfterDuration(resp, 0))
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/prioritize-list", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `[]`, string(body["tasks"]))
		w.Write([]byte(`{"prioritizedTasks": []}`))
	}, WithToken("tok"))

	assert.NoError(t, c.Ping(context.Background()))
}

func TestPing_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	})

	err := c.Ping(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
}
