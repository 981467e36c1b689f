package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/fanout/internal/app"
	"github.com/dshills/fanout/internal/config"
	"github.com/dshills/fanout/internal/script"
)

// runFlags are the command line overrides for the config file.
type runFlags struct {
	configPath    string
	watch         bool
	logLevel      string
	logFile       string
	logFormat     string
	frameRate     int
	tickInterval  time.Duration
	metricsAddr   string
	scripts       []string
	scriptTimeout time.Duration
}

// apply copies the flags that were set on cmd into cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if changed("frame-rate") {
		cfg.FrameRate = f.frameRate
	}
	if changed("tick-interval") {
		cfg.TickInterval = config.Duration{Duration: f.tickInterval}
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if changed("script") {
		cfg.Scripts = append(cfg.Scripts, f.scripts...)
	}
	if changed("script-timeout") {
		cfg.ScriptTimeout = config.Duration{Duration: f.scriptTimeout}
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fanout",
		Short:         "Terminal event monitor built on typed event dispatch",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newCheckCmd(), newEventsCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the terminal and dispatch events until quit",
		Example: "  fanout run\n" +
			"  fanout run -c fanout.toml --watch\n" +
			"  fanout run --script observer.lua --metrics-addr :9100 --log-file fanout.log",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(app.Options{
				ConfigPath: f.configPath,
				Watch:      f.watch,
				Override:   func(cfg *config.Config) { f.apply(cmd, cfg) },
			})
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "Path to a TOML or YAML configuration file")
	flags.BoolVar(&f.watch, "watch", false, "Reload the configuration file when it changes")
	flags.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Log level: trace|debug|info|warn|error|off")
	flags.StringVar(&f.logFile, "log-file", "", "Append logs to this file (default: discard)")
	flags.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "Log format: console|json")
	flags.IntVar(&f.frameRate, "frame-rate", defaults.FrameRate, "Frames per second")
	flags.DurationVar(&f.tickInterval, "tick-interval", defaults.TickInterval.Duration, "Update timer period")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.StringSliceVar(&f.scripts, "script", nil, "Lua observer to load (repeatable)")
	flags.DurationVar(&f.scriptTimeout, "script-timeout", defaults.ScriptTimeout.Duration, "Time limit for each script callback")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "check-config <path>",
		Short:   "Load and validate a configuration file",
		Example: "  fanout check-config fanout.toml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d fps, tick %s, %d scripts)\n",
				args[0], cfg.FrameRate, cfg.TickInterval, len(cfg.Scripts))
			return nil
		},
	}
}

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the event names scripts can subscribe to",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range script.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fanout %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
