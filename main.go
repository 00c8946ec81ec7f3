package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rook-computer/pixeltoy/internal/anim"
	"github.com/rook-computer/pixeltoy/internal/app"
	"github.com/rook-computer/pixeltoy/internal/audio"
	"github.com/rook-computer/pixeltoy/internal/camera"
	"github.com/rook-computer/pixeltoy/internal/render"
	"github.com/rook-computer/pixeltoy/internal/state"
	"github.com/rook-computer/pixeltoy/internal/system"
	"github.com/rook-computer/pixeltoy/internal/web"
)

const envStdioLog = "PIXELTOY_STDIO_LOG"

func main() {
	fmt.Println("Pixeltoy starting")

	defaults, err := web.DefaultServerConfigFromEnv(":80")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	// Flags
	debug := flag.Bool("debug", false, "enable debug logging to ./pixeltoy-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	noWeb := flag.Bool("no-web", false, "disable the web control panel")
	featureList := flag.String("features", os.Getenv(state.EnvFeatures), "enabled features (camera,freehand,flicker | all | none); also configurable via "+state.EnvFeatures)
	fps := flag.Int("fps", anim.DefaultFPS, "refresh rate of the animation driver")
	fbPath := flag.String("fb", "/dev/fb0", "framebuffer device")
	panelURL := flag.String("panel-url", defaults.PanelURL, "control panel URL shown as QR code in the HUD; detected from the local IP when empty; also configurable via "+web.EnvPanelURL)
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	// Local file logger when debug enabled
	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./pixeltoy-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	features := state.AllFeatures()
	if *featureList != "" {
		features, err = state.ParseFeatures(*featureList)
		if err != nil {
			fmt.Println("features error:", err)
			os.Exit(2)
		}
	}

	// Context for lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presenter, err := render.OpenFBPresenter(*fbPath)
	if err != nil {
		fmt.Println("framebuffer error:", err)
		os.Exit(1)
	}
	defer presenter.Close()
	width, height := presenter.Size()

	if *panelURL == "" && !*noWeb {
		detectCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		url, err := system.PanelURL(detectCtx, system.ShellRunner{}, *listenAddr)
		cancel()
		if err != nil {
			logger.Errorf("main", "panel url detection failed: %v", err)
		} else {
			*panelURL = url
		}
	}

	a := app.New(state.NewStore(features), presenter, app.Config{
		Width:    width,
		Height:   height,
		FPS:      *fps,
		PanelURL: *panelURL,
	})
	a.Logger = logger
	a.Player = audio.NewLogPlayer(logger)
	a.Camera = camera.NewPushDevice()

	var server web.Server = &web.NoopServer{}
	if !*noWeb {
		httpServer := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode}, web.NewDefaultMux("", a))
		httpServer.Logger = logger
		server = httpServer
	}
	if err := server.Start(ctx); err != nil {
		logger.Errorf("main", "web server start failed: %v", err)
		fmt.Println("web server start error:", err)
	}
	defer func() { _ = server.Stop() }()

	restore := system.EnterGraphics(logger)
	defer restore()

	system.StartKeyboard(ctx, logger, func(key string) {
		if key == system.KeyF4 {
			logger.Infof("main", "F4 pressed, exiting")
			a.Exit(nil)
			return
		}
		if _, err := a.HandleKey(ctx, key); err != nil && !errors.Is(err, app.ErrStopped) {
			logger.Errorf("input", "key %s: %v", key, err)
		}
	})

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
	}
}
