package eventlog

import (
	"log/slog"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/model"
)

type options struct {
	config    *config.Config
	logger    *slog.Logger
	themesDir string
	category  model.Category
}

// Option configures an EventLog.
type Option func(*options)

// WithConfig sets the configuration. Default: config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithThemesDir sets the directory searched for user themes before the
// bundled ones. Default: ~/.config/eventlog/themes.
func WithThemesDir(dir string) Option {
	return func(o *options) {
		o.themesDir = dir
	}
}

// WithCategory sets the category used by Log and LogParams.
// Default: CategoryAnalytics.
func WithCategory(category Category) Option {
	return func(o *options) {
		o.category = category
	}
}

func defaultOptions() options {
	return options{
		config:   config.DefaultConfig(),
		logger:   slog.Default(),
		category: model.DefaultCategory,
	}
}
