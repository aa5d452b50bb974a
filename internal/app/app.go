package app

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/rook-computer/bongocat/internal/animation"
	"github.com/rook-computer/bongocat/internal/config"
	"github.com/rook-computer/bongocat/internal/counter"
	"github.com/rook-computer/bongocat/internal/input"
	"github.com/rook-computer/bongocat/internal/render"
	"github.com/rook-computer/bongocat/internal/state"
	"github.com/rook-computer/bongocat/internal/storage"
	"github.com/rook-computer/bongocat/internal/system"
	"github.com/rook-computer/bongocat/internal/web"
)

// DefaultDrainTimeout bounds how long shutdown waits for queued writes.
const DefaultDrainTimeout = 3 * time.Second

type App struct {
	Config config.Config
	Render render.Renderer
	Screen render.Screen
	Web    web.Server
	Logger Logger
	// Console, when set, is switched to graphics mode while running.
	Console *system.Console

	// OpenDevice and OpenWriter replace the real device and database
	// openers; the simulator uses them.
	OpenDevice   input.Opener
	OpenWriter   storage.Opener
	DrainTimeout time.Duration

	// Store, Pipeline and Writer are set by Prepare.
	Store    *state.Store
	Pipeline *Pipeline
	Writer   *storage.Writer

	mu        sync.Mutex
	listeners []*input.Listener

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(cfg config.Config, renderer render.Renderer, logger Logger) *App {
	if logger == nil {
		logger = NoopLogger{}
	}
	if renderer == nil {
		renderer = &render.NoopRenderer{}
	}
	return &App{Config: cfg, Render: renderer, Logger: logger, DrainTimeout: DefaultDrainTimeout, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Prepare runs everything that may fail fatally: the storage bootstrap and
// opening the display. Nothing reads input before it returns.
func (app *App) Prepare(ctx context.Context) error {
	if app.Pipeline != nil {
		return nil
	}
	initial, err := storage.LoadInitial(ctx, app.Config.DBPath)
	if err != nil {
		app.Logger.Errorf("app", "storage bootstrap failed: %v", err)
		return errors.Wrap(err, "bootstrap storage")
	}
	app.Logger.Infof("app", "loaded counter %s from %s", counter.Format(initial), app.Config.DBPath)

	app.Store = state.NewStore(counter.Format(initial))
	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return errors.Wrap(err, "open display")
	}
	if app.Screen != nil {
		app.Render.SetScreen(app.Screen)
	}

	app.Pipeline = NewPipeline(initial, app.Store, app.Logger, PipelineOptions{
		Animation: animation.Options{
			Duration:     app.Config.AnimationDuration(),
			RestartOnHit: app.Config.Animation.RestartOnHit,
		},
		ActivityLimit: app.Config.Queue.ActivityLimit,
	})

	app.Writer = storage.NewWriter(app.Config.DBPath, app.Pipeline.Persist, app.Logger)
	if app.OpenWriter != nil {
		app.Writer.Open = app.OpenWriter
	}
	app.Writer.OnWrite = func(v *big.Int) { app.Store.SetPersisted(counter.Format(v)) }
	return nil
}

// Run prepares if needed, starts listeners, the consumer, the writer and the
// render loop, then blocks until ctx is done or Exit is called. On the way
// out queued counter values are drained to storage, bounded by DrainTimeout.
func (app *App) Run(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	if err := app.Prepare(ctx); err != nil {
		return err
	}
	defer func() { _ = app.Render.Stop() }()

	if app.Console != nil {
		_ = app.Console.Enter()
		defer func() { _ = app.Console.Restore() }()
	}

	writerCtx, cancelWriter := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWriter()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := app.Writer.Run(writerCtx); err != nil {
			app.Store.SetWriterDown()
			if !errors.Is(err, context.Canceled) {
				app.Logger.Errorf("app", "persistence stopped: %v", err)
			}
		}
	}()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		app.Render.RunLoop(groupCtx, app.Store)
		return nil
	})
	group.Go(func() error {
		return app.Pipeline.Run(groupCtx)
	})

	if app.Web != nil {
		if err := app.Web.Start(groupCtx); err != nil {
			app.Logger.Errorf("app", "status server not started: %v", err)
		}
	}

	scanner := input.NewScanner(app.Config.InputDir, app.OpenDevice, app.Logger)
	listeners, devices, err := scanner.Start(groupCtx, app.Pipeline.Activity)
	if err != nil {
		app.Logger.Errorf("app", "device scan failed: %v", err)
	} else if len(devices) == 0 {
		app.Logger.Errorf("app", "no keyboards found in %s", app.Config.InputDir)
	}
	app.mu.Lock()
	app.listeners = listeners
	app.mu.Unlock()
	app.Store.SetDevices(devices)

	var exitErr error
	select {
	case <-ctx.Done():
	case exitErr = <-app.exitCh:
	case <-groupCtx.Done():
	}
	cancelRun()
	groupErr := group.Wait()

	app.Pipeline.Persist.Close()
	app.drainWriter(writerDone, cancelWriter)

	if app.Web != nil {
		_ = app.Web.Stop()
	}
	if exitErr != nil {
		return exitErr
	}
	return groupErr
}

func (app *App) drainWriter(done <-chan struct{}, cancel context.CancelFunc) {
	timeout := app.DrainTimeout
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		app.Logger.Errorf("app", "gave up draining %d queued counter values", app.Pipeline.Persist.Len())
		cancel()
		<-done
	}
}

// Listeners returns the listeners started by Run.
func (app *App) Listeners() []*input.Listener {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]*input.Listener(nil), app.listeners...)
}
