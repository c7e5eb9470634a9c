package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"runtime"
	"time"

	"histoview/internal/app"
	"histoview/internal/config"
	"histoview/internal/display"
	"histoview/internal/gui"
	"histoview/internal/logger"
	"histoview/internal/models"
	"histoview/internal/opencv/safe"
	"histoview/internal/pipeline"
	"histoview/internal/services"
	"histoview/internal/shutdown"
	"histoview/internal/source"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const (
	AppID      = "io.histoview.viewer"
	AppVersion = "1.0.0"

	staleMatAge = 10 * time.Second
)

// Application wires the frame source, processing pipeline, display loop and
// fyne surface together.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	cfg     *config.Config

	view       *gui.View
	processor  *pipeline.Processor
	loop       *display.Loop
	controller *app.Controller
	shutdown   *shutdown.Manager
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	appLogger, logCloser := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	application := NewApplication(cfg, appLogger, logCloser)
	application.setupGracefulShutdown()

	if err := application.Run(); err != nil {
		log.Fatalf("Application execution failed: %v", err)
	}
}

func NewApplication(cfg *config.Config, appLogger logger.Logger, logCloser io.Closer) *Application {
	fyneApp := fyneapp.NewWithID(AppID)
	fyneapp.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    gui.WindowTitle,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(gui.WindowTitle)
	window.Resize(fyne.NewSize(cfg.Window.Width, cfg.Window.Height))
	window.CenterOnScreen()
	window.SetMaster()

	params := cfg.InitialParams()
	uploads := services.NewUploadService(cfg.Fetch.MaxBytes, appLogger)
	view := gui.NewView(window, models.SourceCamera, params, uploads, appLogger)

	processor := pipeline.NewProcessor(appLogger)
	fetcher := source.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
	src := source.New(source.NewStatic(fetcher, appLogger))

	loop := display.NewLoop(processor, src, view, view, appLogger, display.Options{
		FrameInterval: cfg.Display.FrameInterval,
	})
	controller := app.NewController(loop, view, source.CameraOpener(cfg.Camera.Index), appLogger)
	view.Bind(controller)

	manager := shutdown.NewManager(appLogger, shutdown.DefaultComponentTimeout)
	manager.Register("log", shutdown.Func(func() {
		if err := logCloser.Close(); err != nil {
			log.Printf("log close failed: %v", err)
		}
	}))
	manager.Register("processor", shutdown.Func(func() { processor.Close() }))
	manager.Register("controller", controller)

	appLogger.Info("Application", "initialized", map[string]interface{}{
		"version":        AppVersion,
		"window_size":    fmt.Sprintf("%.0fx%.0f", cfg.Window.Width, cfg.Window.Height),
		"go_version":     runtime.Version(),
		"camera_index":   cfg.Camera.Index,
		"frame_interval": cfg.Display.FrameInterval.String(),
		"mode":           params.Mode.String(),
	})

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		cfg:        cfg,
		view:       view,
		processor:  processor,
		loop:       loop,
		controller: controller,
		shutdown:   manager,
	}
	application.setupWindowEvents()
	return application
}

// Run shows the window and blocks until the fyne app quits.
func (a *Application) Run() error {
	a.logger.Info("Application", "starting UI", nil)

	a.view.Show()
	a.controller.Start()

	go a.startPerformanceMonitoring()

	a.fyneApp.Run()

	a.shutdown.Shutdown()
	return nil
}

func (a *Application) setupWindowEvents() {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "window close requested", nil)
		a.controller.Shutdown()
		a.window.Close()
	})
}

// setupGracefulShutdown quits the fyne app on SIGINT/SIGTERM; Run then
// performs the ordered shutdown.
func (a *Application) setupGracefulShutdown() {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})
}

func (a *Application) startPerformanceMonitoring() {
	ticker := time.NewTicker(a.cfg.Display.StatsInterval)
	defer ticker.Stop()

	ctx := a.shutdown.Context()
	for {
		select {
		case <-ticker.C:
			a.logPerformanceMetrics()
		case <-ctx.Done():
			return
		}
	}
}

func (a *Application) logPerformanceMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fields := a.processor.Stats().Fields()
	mem := a.processor.MemoryStats()
	session := a.loop.Session()

	fields["go_memory_mb"] = memStats.Alloc / 1024 / 1024
	fields["go_gc_runs"] = memStats.NumGC
	fields["goroutine_count"] = runtime.NumGoroutine()
	fields["live_mats"] = safe.Live()
	fields["tracked_mats"] = mem.ActiveMats
	fields["tracked_bytes"] = mem.ActiveBytes
	fields["session_id"] = session.ID
	fields["session_state"] = session.State.String()
	fields["session_frames"] = session.Frames

	a.logger.Debug("Application", "performance metrics", fields)

	if stale := a.processor.Leaks(staleMatAge); len(stale) > 0 {
		a.logger.Warning("Application", "intermediate mats held too long", map[string]interface{}{
			"count": len(stale),
			"tags":  stale,
		})
	}
}
