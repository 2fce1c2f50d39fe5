// Package cli implements pistectl, the command line front of the scoring
// pipeline. Every command opens the configured store, does its work and
// closes the store again.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/okian/piste/internal/adapters/repository"
	app "github.com/okian/piste/internal/app"
	"github.com/okian/piste/internal/config"
	"github.com/okian/piste/pkg/logger"
)

const envConfigPath = "PISTE_CONFIG"

// Option configures the root command.
type Option func(*CLI)

// WithRepo makes every command use repo instead of opening the configured
// store. The repo is not closed by the commands.
func WithRepo(repo *repository.Repo) Option {
	return func(c *CLI) {
		c.repo = repo
	}
}

// CLI holds the persistent flags shared by all commands.
type CLI struct {
	configFile  string
	storeDriver string
	storeDSN    string
	verbose     bool

	repo *repository.Repo
}

// session is what a command works with after setup.
type session struct {
	cfg   *config.Config
	repo  *repository.Repo
	log   logger.Logger
	close func()
}

// NewRootCommand builds the pistectl command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	c := &CLI{}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:   "pistectl",
		Short: "Import federation data and run the scoring pipeline",
		Long: `pistectl imports athletes and results, runs the piste, competitions,
refpoints and soc stages, and prints talent cards, selections and exports.

Configuration is read like the service reads it: defaults, then the YAML
file named by --config or PISTE_CONFIG, then PISTE_ environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (default $PISTE_CONFIG)")
	root.PersistentFlags().StringVar(&c.storeDriver, "store-driver", "", "store driver: memory, sqlite or pgx (default from config)")
	root.PersistentFlags().StringVar(&c.storeDSN, "store-dsn", "", "store DSN (default from config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		c.importCommand(),
		c.deleteCommand(),
		c.runCommand(),
		c.talentCardsCommand(),
		c.selectionsCommand(),
		c.compareCommand(),
		c.exportCommand(),
	)
	return root
}

// Execute runs pistectl with the process arguments.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func (c *CLI) open(cmd *cobra.Command) (s *session, err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if c.configFile != "" {
		if err = os.Setenv(envConfigPath, c.configFile); err != nil {
			return nil, errors.Wrap(err, "failed to set config path")
		}
	}
	var cfg *config.Config
	cfg, err = config.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if c.storeDriver != "" {
		cfg.StoreDriver = c.storeDriver
	}
	if c.storeDSN != "" {
		cfg.StoreDSN = c.storeDSN
	}

	if err = logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logging")
	}
	level := cfg.LogLevel
	if c.verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	s = &session{cfg: cfg, log: logger.Named("pistectl"), close: func() {}}
	if c.repo != nil {
		s.repo = c.repo
		return s, nil
	}
	s.repo, err = app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s store", cfg.StoreDriver)
	}
	repo := s.repo
	s.close = func() { _ = repo.Close() }
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "failed to write output")
}
