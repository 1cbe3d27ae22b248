// Package cmd wires the todo command line: the TUI and a few one-shot
// subcommands that go through the same form workflow.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/form"
	"github.com/tgienger/todo/internal/logging"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/state"
)

// BuildInfo is set via ldflags
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string
}

// NewRootCmd builds the command tree
func NewRootCmd(info BuildInfo) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "todo",
		Short: "Keep track of things to do and when they are due",
		Long: `todo is a terminal todo list. Run it without arguments for the
interactive view, or use the subcommands to add, edit, list and delete
todos from scripts.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.SetVersionTemplate("todo {{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/todo/config.toml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database file (overrides db_path)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAddCmd(opts),
		newEditCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

// env is everything a command needs once config is loaded
type env struct {
	cfg    *config.Config
	logger *log.Logger
	db     *db.DB
	todos  *cache.ListCache[models.Todo]
	loc    *time.Location

	logCloser io.Closer
}

func (o *rootOptions) open() (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logPath := cfg.LogFile
	if logPath == "" {
		dir, err := config.StateDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		logPath = filepath.Join(dir, "todo.log")
	}
	logger, logCloser, err := logging.New(logging.Options{
		Path:   logPath,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Prefix: "todo",
	})
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	todos := cache.New[models.Todo](func(ctx context.Context, _ string) ([]models.Todo, error) {
		return database.ListTodos(ctx)
	}, logger)

	logger.Debug("started", "config", cfg.Source, "db", cfg.DBPath, "timezone", loc.String())
	return &env{
		cfg:       cfg,
		logger:    logger,
		db:        database,
		todos:     todos,
		loc:       loc,
		logCloser: logCloser,
	}, nil
}

// workflow returns a form workflow for one-shot commands. There is no edit
// surface outside the TUI, so it gets a modal nobody shows.
func (e *env) workflow() *form.Workflow {
	coord := form.NewCoordinator(e.db, e.todos, state.NewEditModal(), e.logger, form.WithLocation(e.loc))
	return form.NewWorkflow(form.NewController(form.MustValidator()), coord, false)
}

func (e *env) Close() error {
	return errors.Join(e.db.Close(), e.logCloser.Close())
}
