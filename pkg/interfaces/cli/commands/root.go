package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/methodtree/pkg/application/services/methodview"
	"github.com/vsinha/methodtree/pkg/domain/repositories"
	"github.com/vsinha/methodtree/pkg/infrastructure/config"
	"github.com/vsinha/methodtree/pkg/infrastructure/logging"
	csvrepo "github.com/vsinha/methodtree/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/methodtree/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/methodtree/pkg/infrastructure/repositories/sqlite"
)

// app carries the flags and resources shared by every subcommand
type app struct {
	configFile string
	source     string
	dataDir    string
	dbPath     string
	logLevel   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the methodtree command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "methodtree",
		Short: "Flatten method trees into BOM and routing views",
		Long: `methodtree reads the make methods of items, jobs and quotes and turns
them into numbered bills of materials with rolled-up quantities and costs,
and into routings with setup, labor and machine durations.

Method rows come from a directory of CSV files or from a SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./configs/config.yaml or ./config.yaml)")
	flags.StringVar(&a.source, "source", "", "method row source: csv or sqlite")
	flags.StringVar(&a.dataDir, "data", "", "directory of <domain>_materials.csv and <domain>_operations.csv files")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(
		newBOMCommand(a),
		newRoutingCommand(a),
		newValidateCommand(a),
		newImportCommand(a),
		newServeCommand(a),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init loads configuration, applies flag overrides and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Type = a.source
	}
	if flags.Changed("data") {
		cfg.Source.Dir = a.dataDir
		if !flags.Changed("source") {
			cfg.Source.Type = config.SourceCSV
		}
	}
	if flags.Changed("db") {
		cfg.Source.Path = a.dbPath
		if !flags.Changed("source") && !flags.Changed("data") {
			cfg.Source.Type = config.SourceSQLite
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// openRepository opens the configured method row source. The returned close
// function releases it.
func (a *app) openRepository(ctx context.Context) (repositories.MethodRepository, func() error, error) {
	switch a.cfg.Source.Type {
	case config.SourceSQLite:
		repo, err := sqlite.Open(a.cfg.Source.Path)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("opened sqlite source", zap.String("path", a.cfg.Source.Path))
		return repo, repo.Close, nil

	default:
		repo := memory.NewMethodRepository(0)
		if err := csvrepo.NewLoader().LoadDirectory(ctx, a.cfg.Source.Dir, repo); err != nil {
			return nil, nil, fmt.Errorf("error loading method rows: %w", err)
		}
		a.logger.Debug("loaded csv source", zap.String("dir", a.cfg.Source.Dir))
		return repo, func() error { return nil }, nil
	}
}

// service opens the configured source and wraps it in a view service
func (a *app) service(ctx context.Context) (*methodview.MethodViewService, func() error, error) {
	repo, closeFn, err := a.openRepository(ctx)
	if err != nil {
		return nil, nil, err
	}
	return methodview.NewMethodViewService(repo, logging.Component(a.logger, "methodview")), closeFn, nil
}
