package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/onetask/internal/app"
	"github.com/nhle/onetask/internal/model"
	"github.com/nhle/onetask/internal/ui/settings"
)

func runLaunch(cmd *cobra.Command, opts *rootOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	m := app.New(ctx, s.engine, app.Options{
		NoService: !s.hasService(),
		Settings:  settingsDeps(opts),
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// settingsDeps backs the settings view with the config file as written,
// without flag overrides, so saving never persists a --db value. It returns
// nil when the file cannot be read.
func settingsDeps(opts *rootOptions) *settings.Deps {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil
	}
	path := opts.configPath
	return &settings.Deps{
		Config: *cfg,
		Path:   path,
		Save: func(c model.AppConfig) error {
			return model.SaveConfig(path, &c)
		},
		Tokens: newVault(),
		Check: func(ctx context.Context, api model.APIConfig) error {
			return newClient(api).Ping(ctx)
		},
	}
}
