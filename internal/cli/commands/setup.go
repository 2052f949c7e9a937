package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/headfix/internal/cli/config"
	"github.com/leapstack-labs/headfix/internal/cli/output"
	"github.com/leapstack-labs/headfix/internal/compose"
	"github.com/leapstack-labs/headfix/pkg/headfix"
	"github.com/leapstack-labs/headfix/pkg/render"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Host     *compose.Host
	Repairer *headfix.Repairer
	HTML     *render.Renderer
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for the templates directory
// of the current configuration.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	if err := cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Host: compose.New(compose.Config{
			FS:     os.DirFS(cfg.TemplatesDir),
			Logger: logger,
		}),
		Repairer: headfix.New(headfix.Config{Logger: logger}),
		HTML: render.New(render.Config{
			BasePath:         cfg.BasePath,
			HideIDAlways:     cfg.HideIDAlways,
			EncodeAnchorHref: cfg.EncodeAnchorHref,
			Minify:           cfg.Minify,
			Logger:           logger,
		}),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, nil
}

// Build loads a page and, when repair is set, repairs its metadata section.
func (c *CommandContext) Build(name string, repair bool) (*compose.Page, headfix.Report, error) {
	page, err := c.Host.Load(name)
	if err != nil {
		return nil, headfix.Report{}, fmt.Errorf("failed to load page %s: %w", name, err)
	}
	if !repair {
		return page, headfix.Report{}, nil
	}
	report, err := c.Repairer.Repair(page.Root)
	if err != nil {
		return nil, report, fmt.Errorf("failed to repair page %s: %w", name, err)
	}
	return page, report, nil
}

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to defaults.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}
