package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/rook-computer/bongocat/internal/app"
	"github.com/rook-computer/bongocat/internal/config"
	"github.com/rook-computer/bongocat/internal/web"
)

func main() {
	defaults, err := web.ServerConfigFromEnv(web.ServerConfig{ListenAddr: ":8080"})
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := pflag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := pflag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	root := pflag.String("root", filepath.Join(os.TempDir(), "bongocat-sim"), "simulator working directory (database and device nodes)")
	keyboards := pflag.Int("keyboards", 2, "number of simulated keyboards")
	display := pflag.String("display", config.BackendNone, "display backend: none | tui")
	writeFail := pflag.Bool("write-fail", false, "start with database writes failing")
	connectFail := pflag.Bool("connect-fail", false, "start with the writer unable to connect")
	pflag.Parse()

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(processCtx, simOptions{
		Root:       filepath.Clean(*root),
		Keyboards:  *keyboards,
		Display:    *display,
		Server:     web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode},
		Faults:     SimFaults{WriteFail: *writeFail, ConnectFail: *connectFail},
		StatusLine: *display != config.BackendTUI,
	}); err != nil {
		fmt.Println("simulator error:", err)
		os.Exit(1)
	}
}

type simOptions struct {
	Root       string
	Keyboards  int
	Display    string
	Server     web.ServerConfig
	Faults     SimFaults
	StatusLine bool
}

func run(ctx context.Context, opts simOptions) error {
	control, err := NewSimControl(filepath.Join(opts.Root, "input"), opts.Keyboards)
	if err != nil {
		return err
	}
	control.SetFaults(opts.Faults)

	cfg := config.Default(opts.Root)
	cfg.InputDir = control.dir
	cfg.Display.Backend = opts.Display
	if err := cfg.Finalize(); err != nil {
		return err
	}
	if cfg.UsesBitmaps() {
		return fmt.Errorf("simulator supports only %s and %s displays", config.BackendNone, config.BackendTUI)
	}

	var logger app.Logger = app.NoopLogger{}
	if opts.StatusLine {
		logger = app.NewZeroLogger(os.Stderr, "debug")
	}

	renderer, screen, err := app.NewRenderer(cfg, logger)
	if err != nil {
		return err
	}
	a := app.New(cfg, renderer, logger)
	a.Screen = screen
	a.OpenDevice = control.Open
	a.OpenWriter = control.OpenWriter
	if err := a.Prepare(ctx); err != nil {
		return err
	}

	server := web.NewHTTPServer(opts.Server, a.Store, logger)
	server.Extra = func(mux *http.ServeMux) { registerSimEndpoints(mux, control) }
	a.Web = server

	if opts.StatusLine {
		fmt.Println("Bongo cat simulator listening on", opts.Server.ListenAddr)
		fmt.Println("Database:", cfg.DBPath)
		fmt.Println("Keyboards:", control.Keyboards())
		fmt.Println("API: http://" + trimLeadingColon(opts.Server.ListenAddr) + "/api/v1/")
	}
	return a.Run(ctx)
}

func trimLeadingColon(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	return addr
}
