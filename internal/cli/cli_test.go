package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/onetask/internal/credential"
	"github.com/nhle/onetask/internal/model"
)

// setup writes a config pointing at a temp database and returns its path.
// baseURL may be empty to run without the ranking service.
func setup(t *testing.T, baseURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(credential.TokenEnv, "")

	ring := keyring.NewArrayKeyring(nil)
	prev := newVault
	newVault = func() *credential.Vault { return credential.NewVaultWith(ring) }
	t.Cleanup(func() { newVault = prev })

	cfgPath := filepath.Join(home, "config.yaml")
	cfg := fmt.Sprintf(`api:
  base_url: %q
  timeout_sec: 5
storage:
  db_path: %q
location:
  fallback: Israel
log:
  file: %q
`, baseURL, filepath.Join(home, "tasks.db"), filepath.Join(home, "onetask.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	require.NoError(t, err, "onetask %v", args)
	return out
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		arg     string
		n       int
		want    int
		wantErr bool
	}{
		{arg: "1", n: 3, want: 0},
		{arg: "3", n: 3, want: 2},
		{arg: "0", n: 3, wantErr: true},
		{arg: "4", n: 3, wantErr: true},
		{arg: "x", n: 3, wantErr: true},
		{arg: "1", n: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parsePosition(tt.arg, tt.n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddAndList(t *testing.T) {
	cfg := setup(t, "")

	assert.Equal(t, "No tasks. Add one with: onetask add <title>\n", mustRun(t, cfg, "list"))

	mustRun(t, cfg, "add", "Write", "report", "-p", "low", "--due", "2000-01-01")
	mustRun(t, cfg, "add", "Call mom", "-p", "low")
	out := mustRun(t, cfg, "add", "Buy milk", "--link", "https://example.com")
	assert.Equal(t, "Added \"Buy milk\" at position 1 of 3.\n", out)

	out = mustRun(t, cfg, "list")
	assert.Equal(t,
		" 1. Buy milk (1 links)\n"+
			" 2. Write report [Low] due 2000-01-01 (overdue)\n"+
			" 3. Call mom [Low]\n",
		out)
}

func TestAdd_RejectsBadInput(t *testing.T) {
	cfg := setup(t, "")

	_, err := run(t, cfg, "add", "   ")
	assert.ErrorIs(t, err, model.ErrEmptyTitle)

	_, err = run(t, cfg, "add", "Task", "--due", "tomorrow")
	assert.ErrorIs(t, err, model.ErrInvalidDate)

	_, err = run(t, cfg, "add", "Task", "-p", "urgent")
	assert.Error(t, err)

	_, err = run(t, cfg, "add", "Task", "--link", "not a url")
	assert.ErrorIs(t, err, model.ErrInvalidURL)

	assert.Contains(t, mustRun(t, cfg, "list"), "No tasks")
}

func TestDone(t *testing.T) {
	cfg := setup(t, "")
	mustRun(t, cfg, "add", "First", "-p", "low")
	mustRun(t, cfg, "add", "Second", "-p", "low")

	out := mustRun(t, cfg, "done", "2")
	assert.Equal(t, "Completed \"Second\". 🔥 1 day streak\n", out)

	assert.Equal(t, " 1. First [Low]\n", mustRun(t, cfg, "list"))
	assert.Contains(t, mustRun(t, cfg, "streak"), "🔥 1 day streak")

	mustRun(t, cfg, "done")
	_, err := run(t, cfg, "done")
	assert.ErrorIs(t, err, errNoTasks)
}

func TestMove(t *testing.T) {
	cfg := setup(t, "")
	for _, title := range []string{"A", "B", "C"} {
		mustRun(t, cfg, "add", title, "-p", "low")
	}

	out := mustRun(t, cfg, "move", "1", "3")
	assert.Equal(t, " 1. B [Low]\n 2. C [Low]\n 3. A [Low]\n", out)

	_, err := run(t, cfg, "move", "1", "4")
	assert.Error(t, err)
}

func TestLink(t *testing.T) {
	cfg := setup(t, "")
	mustRun(t, cfg, "add", "Read docs")

	out := mustRun(t, cfg, "link", "1", "https://go.dev/doc", "Go", "docs")
	assert.Equal(t, "Linked https://go.dev/doc (Go docs) to \"Read docs\".\n", out)

	_, err := run(t, cfg, "link", "1", "ftp://example.com")
	assert.ErrorIs(t, err, model.ErrInvalidURL)

	assert.Contains(t, mustRun(t, cfg, "list"), "(1 links)")
}

func TestStreak_NextMilestone(t *testing.T) {
	cfg := setup(t, "")
	assert.Equal(t, "🔥 0 day streak\nNext milestone: 7 days\n", mustRun(t, cfg, "streak"))
}

func newServiceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/prioritize-list", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Tasks []model.Task `json:"tasks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for i, j := 0, len(req.Tasks)-1; i < j; i, j = i+1, j-1 {
			req.Tasks[i], req.Tasks[j] = req.Tasks[j], req.Tasks[i]
		}
		json.NewEncoder(w).Encode(map[string]any{"prioritizedTasks": req.Tasks})
	})
	mux.HandleFunc("/get-suggestion", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"links": []model.SuggestedLink{
			{URL: "https://example.com/a", Description: "Guide A"},
			{URL: "https://example.com/b", Description: "Guide B"},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPrioritize(t *testing.T) {
	srv := newServiceServer(t)
	cfg := setup(t, srv.URL)
	for _, title := range []string{"A", "B", "C"} {
		mustRun(t, cfg, "add", title, "-p", "low")
	}

	out := mustRun(t, cfg, "prioritize")
	assert.Equal(t, "Tasks have been prioritized!\n 1. C [Low]\n 2. B [Low]\n 3. A [Low]\n", out)
}

func TestPrioritize_NoService(t *testing.T) {
	cfg := setup(t, "")
	mustRun(t, cfg, "add", "A")

	_, err := run(t, cfg, "prioritize")
	assert.ErrorContains(t, err, "not configured")
}

func TestSuggest_Save(t *testing.T) {
	srv := newServiceServer(t)
	cfg := setup(t, srv.URL)
	mustRun(t, cfg, "add", "Learn Go")

	out := mustRun(t, cfg, "suggest", "--save", "2")
	assert.Equal(t,
		"1. Guide A\n   https://example.com/a\n"+
			"2. Guide B\n   https://example.com/b\n"+
			"Saved https://example.com/b to \"Learn Go\".\n",
		out)
	assert.Contains(t, mustRun(t, cfg, "list"), "(1 links)")

	_, err := run(t, cfg, "suggest", "--save", "5")
	assert.ErrorContains(t, err, "out of range")
}

func TestSuggest_FreshAddsSearch(t *testing.T) {
	srv := newServiceServer(t)
	cfg := setup(t, srv.URL)
	mustRun(t, cfg, "add", "Learn Go")

	out := mustRun(t, cfg, "suggest", "--fresh")
	assert.Contains(t, out, "3. Search on Google\n   https://www.google.com/search?q=Learn+Go\n")
}

func TestConfig_InitShowPath(t *testing.T) {
	setup(t, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out := mustRun(t, path, "config", "init")
	assert.Equal(t, "Wrote "+path+"\n", out)
	assert.FileExists(t, path)

	_, err := run(t, path, "config", "init")
	assert.ErrorContains(t, err, "already exists")
	mustRun(t, path, "config", "init", "--force")

	out = mustRun(t, path, "config", "show")
	assert.Contains(t, out, "base_url: "+model.DefaultAPIBaseURL)
	assert.Contains(t, out, "fallback: Israel")

	assert.Equal(t, path+"\n", mustRun(t, path, "config", "path"))
}

func TestToken(t *testing.T) {
	cfg := setup(t, "")

	assert.Equal(t, "No token set.\n", mustRun(t, cfg, "token", "status"))
	assert.Equal(t, "Token saved.\n", mustRun(t, cfg, "token", "set", "secret"))
	assert.Equal(t, "Token is set.\n", mustRun(t, cfg, "token", "status"))
	assert.Equal(t, "Token removed.\n", mustRun(t, cfg, "token", "clear"))
	assert.Equal(t, "No token set.\n", mustRun(t, cfg, "token", "status"))
}

func TestSession_SendsToken(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case auth <- r.Header.Get("Authorization"):
		default:
		}
		json.NewEncoder(w).Encode(map[string]any{"links": []model.SuggestedLink{
			{URL: "https://example.com", Description: "Example"},
		}})
	}))
	t.Cleanup(srv.Close)

	cfg := setup(t, srv.URL)
	mustRun(t, cfg, "token", "set", "secret")
	mustRun(t, cfg, "add", "Task")
	mustRun(t, cfg, "suggest")

	assert.Equal(t, "Bearer secret", <-auth)
}
