package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/plan-weights/internal/config"
	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/internal/server"
	"github.com/iwvelando/plan-weights/internal/weights"
	"github.com/iwvelando/plan-weights/pkg/constants"
	"github.com/iwvelando/plan-weights/pkg/output"
	"github.com/iwvelando/plan-weights/pkg/validation"
)

// errPlanInvalid signals a completed validation that found issues. The
// report has already been printed, so main only sets the exit status.
var errPlanInvalid = errors.New("plan is invalid")

type app struct {
	configPath   string
	logLevel     string
	outputFormat string

	conf   *config.Configuration
	logger *zap.Logger
	format string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "plan-weights",
		Short: "Validate and normalize strategic plan weights",
		Long: `plan-weights checks the weight tree of a strategic plan. Objectives,
strategic actions, metrics and main tasks each carry a percentage weight and
every group of siblings must add up to 100%.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	root.AddCommand(
		a.validateCmd(),
		a.totalsCmd(),
		a.normalizeCmd(),
		a.serveCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger shared by every
// subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	conf, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}

	logger, err := config.NewLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	format := conf.OutputFormat(a.outputFormat)
	if err := validation.ValidateOutputFormat(format); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	a.conf = conf
	a.logger = logger
	a.format = format
	return nil
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan-file>",
		Short: "Report every weight, sum and required-field problem in a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.LoadPlan(args[0])
			if err != nil {
				return err
			}

			result := weights.Validate(*p)
			a.logger.Debug("plan validated",
				zap.String("op", "main.validate"),
				zap.String("plan", args[0]),
				zap.Bool("valid", result.Valid()),
				zap.Int("issues", result.Len()),
			)

			if err := output.WriteReport(cmd.OutOrStdout(), a.format, result); err != nil {
				return err
			}
			if !result.Valid() {
				return errPlanInvalid
			}
			return nil
		},
	}
}

func (a *app) totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals <plan-file>",
		Short: "Show the running sibling total at every branch point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := plan.LoadPlan(args[0])
			if err != nil {
				return err
			}
			return output.WriteTotals(cmd.OutOrStdout(), a.format, weights.Totals(*p))
		},
	}
}

func (a *app) normalizeCmd() *cobra.Command {
	var (
		scopeName string
		branch    string
		write     bool
	)

	cmd := &cobra.Command{
		Use:   "normalize <plan-file>",
		Short: "Rescale positive weights so a scope or branch point sums to 100%",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := args[0]
			p, err := plan.LoadPlan(planPath)
			if err != nil {
				return err
			}

			var updates []weights.Update
			if strings.TrimSpace(branch) != "" {
				path, err := plan.ParsePath(branch)
				if err != nil {
					return err
				}
				if updates, err = weights.NormalizeBranch(*p, path); err != nil {
					return err
				}
			} else {
				scope, err := weights.ParseScope(scopeName)
				if err != nil {
					return err
				}
				if updates, err = weights.NormalizeScope(*p, scope); err != nil {
					return err
				}
			}

			a.logger.Info("plan normalized",
				zap.String("op", "main.normalize"),
				zap.String("plan", planPath),
				zap.String("scope", scopeName),
				zap.String("branch", branch),
				zap.Int("updates", len(updates)),
			)

			if err := output.WriteUpdates(cmd.OutOrStdout(), a.format, updates); err != nil {
				return err
			}

			if !write || len(updates) == 0 {
				return nil
			}
			if err := weights.Apply(p, updates); err != nil {
				return err
			}
			return plan.WriteFile(*p, planPath)
		},
	}

	cmd.Flags().StringVar(&scopeName, "scope", constants.ScopeObjectives, "scope to normalize: objectives, actions, metrics-tasks")
	cmd.Flags().StringVar(&branch, "branch", "", "normalize only the children of this branch point, e.g. objectives[0].strategicActions")
	cmd.Flags().BoolVar(&write, "write", false, "write the normalized weights back to the plan file")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var serverConfigPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan weight HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}

			logger := a.logger
			if cfg.Logging != (config.LoggingConfig{}) {
				if logger, err = config.NewLogger(cfg.Logging, a.logLevel); err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() {
					_ = logger.Sync()
				}()
			}

			return server.Run(cmd.Context(), cfg, logger, version)
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
