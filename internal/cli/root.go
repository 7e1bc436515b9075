package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"jobboard/internal/board"
	"jobboard/internal/config"
	"jobboard/internal/errors"
	"jobboard/internal/logger"
)

// app carries the global flags and I/O streams shared by every command.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	jsonOut    bool
	logLevel   string
}

// Run executes the jobboard command line with os streams.
func Run(args []string) error {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := root.ExecuteContext(ctx)
	if err != nil {
		for _, hint := range errors.GetAllHints(err) {
			_, _ = io.WriteString(stderr, "hint: "+hint+"\n")
		}
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "jobboard",
		Short: "Browse job listings, filter them, and track applications",
		Long: `jobboard: terminal client for a remote job listing source

Quick Start:
  jobboard list
  jobboard list --search engineer --type Full-time
  jobboard show 3
  jobboard apply 3 --name "Ada Lovelace" --email ada@example.com --resume cv.pdf
  jobboard browse

When the job source cannot be reached, built-in postings are shown instead
(set fallback.policy = "surface" to report the failure).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "machine-readable output")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		a.listCommand(),
		a.showCommand(),
		a.searchCommand(),
		a.applyCommand(),
		a.appliedCommand(),
		a.browseCommand(),
		a.doctorCommand(),
		a.configCommand(),
	)
	return root
}

// loadConfig reads the config, applies --log-level and prints any
// normalization warnings to stderr.
func (a *app) loadConfig() (config.Config, []string, error) {
	cfg, warnings, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if lvl := strings.TrimSpace(a.logLevel); lvl != "" {
		if _, err := logger.ParseLevel(lvl); err != nil {
			return config.Config{}, nil, err
		}
		cfg.Log.Level = lvl
	}
	for _, w := range warnings {
		_, _ = io.WriteString(a.stderr, "warning: config: "+w+"\n")
	}
	return cfg, warnings, nil
}

// openSession loads config, starts logging to stderr (or the configured
// file) and opens the board.
func (a *app) openSession(ctx context.Context) (*board.Session, config.Config, error) {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	opts := cfg.LoggerOptions()
	opts.Writer = a.stderr
	if err := logger.Initialize(opts); err != nil {
		return nil, config.Config{}, err
	}
	s, err := board.Open(ctx, cfg, logger.Logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return s, cfg, nil
}
