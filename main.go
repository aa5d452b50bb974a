package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rook-computer/bongocat/internal/app"
	"github.com/rook-computer/bongocat/internal/config"
	"github.com/rook-computer/bongocat/internal/counter"
	"github.com/rook-computer/bongocat/internal/input"
	"github.com/rook-computer/bongocat/internal/storage"
	"github.com/rook-computer/bongocat/internal/system"
	"github.com/rook-computer/bongocat/internal/web"
)

const envStdioLog = "BONGO_STDIO_LOG"

type options struct {
	debug    bool
	stdioLog string
	display  string
	listen   string
	devMode  bool
	inputDir string
	logFile  string
	dbPath   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bongocat:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "bongocat",
		Short:         "Keystroke-driven bongo cat overlay with a persistent counter",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlay(cmd.Context(), cmd.Flags(), opts)
		},
	}
	addFlags(root.PersistentFlags(), opts)
	root.AddCommand(newCountCmd(opts), newDevicesCmd(opts))
	return root
}

func addFlags(fs *pflag.FlagSet, opts *options) {
	fs.BoolVar(&opts.debug, "debug", false, "log at debug level")
	fs.StringVar(&opts.stdioLog, "stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	fs.StringVar(&opts.display, "display", "", "display backend: framebuffer, tui or none")
	fs.StringVar(&opts.listen, "listen", "", "serve the status API on this address; also configurable via "+web.EnvListenAddr)
	fs.BoolVar(&opts.devMode, "dev", false, "enable permissive CORS on the status API")
	fs.StringVar(&opts.inputDir, "input-dir", "", "raw input device directory")
	fs.StringVar(&opts.logFile, "log-file", "", "append logs to this file instead of stderr")
	fs.StringVar(&opts.dbPath, "db", "", "counter database path")
}

// loadConfig resolves the asset dir, reads config.yaml and applies flags
// that were set explicitly.
func loadConfig(fs *pflag.FlagSet, opts *options) (config.Config, error) {
	dir, err := config.ResolveAssetDir()
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return config.Config{}, err
	}
	if fs.Changed("display") {
		cfg.Display.Backend = opts.display
	}
	if fs.Changed("listen") {
		cfg.Status.Listen = opts.listen
	}
	if fs.Changed("dev") {
		cfg.Status.DevMode = opts.devMode
	}
	if fs.Changed("input-dir") {
		cfg.InputDir = opts.inputDir
	}
	if fs.Changed("log-file") {
		cfg.Logging.File = opts.logFile
	}
	if fs.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Finalize(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger returns the logger and a close func for its file, if any.
func newLogger(cfg config.Config) (app.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case cfg.Logging.File != "":
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, closeFn, errors.Wrap(err, "open log file")
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case cfg.Display.Backend == config.BackendTUI:
		// stderr shares the terminal with the overlay
		return app.NoopLogger{}, closeFn, nil
	}
	return app.NewZeroLogger(w, cfg.Logging.Level), closeFn, nil
}

func runOverlay(ctx context.Context, fs *pflag.FlagSet, opts *options) error {
	// Best-effort: keep crash output when the console is in graphics mode.
	logPath := opts.stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Fprintln(os.Stderr, "stdio log redirect error:", err)
		}
	}

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	if cfg.Source != "" {
		logger.Infof("main", "config loaded from %s", cfg.Source)
	}

	renderer, screen, err := app.NewRenderer(cfg, logger)
	if err != nil {
		return errors.Wrap(err, "display")
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := app.New(cfg, renderer, logger)
	a.Screen = screen
	if cfg.Display.Backend == config.BackendFramebuffer {
		a.Console = system.NewConsole(logger)
	}
	if err := a.Prepare(ctx); err != nil {
		return err
	}

	serverCfg, err := web.ServerConfigFromEnv(web.ServerConfig{ListenAddr: cfg.Status.Listen, DevMode: cfg.Status.DevMode})
	if err != nil {
		return err
	}
	if serverCfg.ListenAddr != "" {
		a.Web = web.NewHTTPServer(serverCfg, a.Store, logger)
	}

	return a.Run(ctx)
}

func newCountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the persisted keystroke counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			value, err := storage.LoadInitial(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), counter.Format(value))
			return nil
		},
	}
}

func newDevicesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List keyboard-capable input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), opts)
			if err != nil {
				return err
			}
			devices, err := input.NewScanner(cfg.InputDir, nil, nil).Scan()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no keyboards found in %s (is the user in the 'input' group?)\n", cfg.InputDir)
				return nil
			}
			for _, d := range devices {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d.Path, d.Name)
			}
			return nil
		},
	}
}
