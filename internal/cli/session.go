package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/onetask/internal/ai"
	"github.com/nhle/onetask/internal/capability"
	"github.com/nhle/onetask/internal/credential"
	"github.com/nhle/onetask/internal/engine"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/store"
)

// newVault is replaced in tests.
var newVault = credential.NewVault

// session is an opened engine plus everything that has to be closed with it.
type session struct {
	cfg      *model.AppConfig
	db       *store.SQLiteStore
	engine   *engine.Engine
	closeLog func()
}

func openSession(ctx context.Context, opts *rootOptions) (*session, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	closeLog, err := setupLog(cfg.Log.File)
	if err != nil {
		return nil, err
	}

	db, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening task database: %w", err)
	}

	engOpts := engine.Options{
		Persistence:   store.NewGateway(db),
		Locator:       capability.StaticLocator{Place: cfg.Location.Place},
		FallbackPlace: cfg.Location.Fallback,
	}
	if cfg.API.BaseURL != "" {
		engOpts.Service = newClient(cfg.API)
	}

	eng, err := engine.New(ctx, engOpts)
	if err != nil {
		db.Close()
		closeLog()
		return nil, err
	}

	return &session{cfg: cfg, db: db, engine: eng, closeLog: closeLog}, nil
}

// hasService reports whether remote ranking and suggestions are configured.
func (s *session) hasService() bool {
	return s.cfg.API.BaseURL != ""
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		log.Printf("closing task database: %v", err)
	}
	s.closeLog()
}

// newClient builds the ranking client, attaching the stored token when one
// exists. A keyring failure only costs the token.
func newClient(cfg model.APIConfig) *ai.Client {
	var opts []ai.Option
	token, err := newVault().APIToken()
	if err != nil {
		log.Printf("reading API token: %v", err)
	}
	if token != "" {
		opts = append(opts, ai.WithToken(token))
	}
	return ai.NewClient(cfg.BaseURL, cfg.Timeout(), opts...)
}

// setupLog sends the standard logger to path, or discards it when path is
// empty. The returned func restores the previous output.
func setupLog(path string) (func(), error) {
	prev := log.Writer()
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prev) }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "onetask")
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return func() {
		log.SetOutput(prev)
		f.Close()
	}, nil
}
