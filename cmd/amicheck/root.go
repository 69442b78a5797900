package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/config"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/log"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/providers/aws/common"
	"github.com/pankaj-dahiya-devops/ami-ebs-encrypted/internal/version"
)

// app is the state shared by every subcommand.
type app struct {
	verbose    bool
	logFile    string
	configPath string

	// cfg is loaded in PersistentPreRunE.
	cfg *config.Config

	// provider is swapped for a fake in tests.
	provider common.AWSClientProvider

	closeLog func() error
}

func newRootCmd() (*cobra.Command, *app) {
	return newRootCmdWith(common.NewDefaultAWSClientProvider())
}

func newRootCmdWith(provider common.AWSClientProvider) (*cobra.Command, *app) {
	a := &app{provider: provider, cfg: &config.Config{}}

	root := &cobra.Command{
		Use:           "amicheck",
		Short:         "Check that every AMI you own uses encrypted EBS volumes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write JSON debug logs to this file")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ~/.config/amicheck/config.yaml)")

	root.AddCommand(newEvaluateCmd(a))
	root.AddCommand(newDoctorCmd(a))
	root.AddCommand(newVersionCmd())
	return root, a
}

// execute runs root and then closes the log file, whether or not the
// command failed. cobra skips post-run hooks after a RunE error.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if a.closeLog != nil {
		if cerr := a.closeLog(); cerr != nil && err == nil {
			err = fmt.Errorf("close log file: %w", cerr)
		}
	}
	return err
}

// setup installs the logger and loads the config file.
func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	h, closeFn, err := newLogHandler(cmd.ErrOrStderr(), a.verbose, a.logFile)
	if err != nil {
		return err
	}
	a.closeLog = closeFn
	ctx = log.WithHandler(ctx, h)
	ctx = log.With(ctx, "version", version.Short())

	loader := config.NewFileLoader(a.configPath)
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	log.Debug(ctx, "loaded config", "path", loader.ConfigPath())
	a.cfg = cfg

	cmd.SetContext(ctx)
	return nil
}

// newLogHandler returns the console handler, fanned out to a JSON file
// handler when logFile is set. The returned func closes the file.
func newLogHandler(w io.Writer, verbose bool, logFile string) (slog.Handler, func() error, error) {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	console := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "amicheck",
	})
	if logFile == "" {
		return console, nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %q: %w", logFile, err)
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slogmulti.Fanout(console, file), f.Close, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the amicheck version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), version.Info())
			return err
		},
	}
}
