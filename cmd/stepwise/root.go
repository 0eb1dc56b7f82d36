package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/felixgeelhaar/stepwise/internal/adapters/logging"
	"github.com/felixgeelhaar/stepwise/internal/app"
	"github.com/felixgeelhaar/stepwise/internal/domain/sequence"
	"github.com/felixgeelhaar/stepwise/internal/domain/setup"
	"github.com/felixgeelhaar/stepwise/internal/ports"
)

var (
	// Global flags
	cfgFile  string
	planPath string
	verbose  bool
	yesFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Apply a project's setup steps in order, one per frame",
	Long: `Stepwise walks an ordered list of setup steps and applies each one that is
not yet complete: settings in config files, files with fixed content, and
commands that install or configure tools.

A run survives restarts. Its cursor is persisted after every step, so an
interrupted run resumes where it stopped:
  Request → Confirm → Poll (one step per frame) → Finish`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context; a running apply then stops and records where it was.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .stepwise/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&planPath, "plan", "p", "", "plan file (default: stepwise.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "auto-confirm all prompts")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file, STEPWISE_* environment variables and
// global flags.
func loadConfig() (app.Config, error) {
	v := viper.New()
	app.SetDefaults(v)
	app.ConfigureEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".stepwise")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "stepwise"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return app.Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if planPath != "" {
		v.Set(app.KeyPlan, planPath)
	}
	if verbose {
		v.Set(app.KeyLogLevel, "debug")
	}

	return app.LoadConfig(v)
}

// newLogger builds the console logger for cfg on stderr.
func newLogger(cfg app.Config) ports.Logger {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON, os.Stderr)
	if err != nil {
		logger.Warn(context.Background(), "invalid log level, using info", ports.F("error", err))
	}
	return logger
}

// openSession loads configuration and opens the plan.
func openSession(ctx context.Context, opts ...app.SessionOption) (*app.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	opts = append([]app.SessionOption{app.WithLogger(newLogger(cfg))}, opts...)
	return app.Open(ctx, cfg, opts...)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var planErr *setup.PlanError
	if errors.As(err, &planErr) {
		msg := planErr.Error()
		if planErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", planErr.Suggestion)
		}
		if verbose && planErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", planErr.Underlying)
		}
		return msg
	}

	var stepErr *sequence.StepError
	if errors.As(err, &stepErr) {
		if verbose {
			return stepErr.Format()
		}
		msg := stepErr.Error()
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		return msg
	}

	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	yamlFiles := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	}
	_ = rootCmd.RegisterFlagCompletionFunc("config", yamlFiles)
	_ = rootCmd.RegisterFlagCompletionFunc("plan", yamlFiles)
}
