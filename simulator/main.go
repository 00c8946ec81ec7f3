package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rook-computer/pixeltoy/internal/anim"
	"github.com/rook-computer/pixeltoy/internal/app"
	"github.com/rook-computer/pixeltoy/internal/audio"
	"github.com/rook-computer/pixeltoy/internal/render"
	"github.com/rook-computer/pixeltoy/internal/state"
	"github.com/rook-computer/pixeltoy/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	scenario := flag.String("scenario", scenarioNoise, "startup scenario: "+strings.Join(scenarioNames(), " | "))
	featureList := flag.String("features", os.Getenv(state.EnvFeatures), "enabled features (camera,freehand,flicker | all | none); also configurable via "+state.EnvFeatures)
	width := flag.Int("width", render.CanvasWidth, "canvas width")
	height := flag.Int("height", render.CanvasHeight, "canvas height")
	fps := flag.Int("fps", anim.DefaultFPS, "refresh rate of the animation driver")
	denyCamera := flag.Bool("deny-camera", false, "refuse camera access, as if the permission prompt was declined")
	verbose := flag.Bool("v", false, "log to stdout")
	flag.Parse()

	features := state.AllFeatures()
	if *featureList != "" {
		features, err = state.ParseFeatures(*featureList)
		if err != nil {
			fmt.Println("features error:", err)
			os.Exit(2)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if *verbose {
		logger = app.NewFileLogger(os.Stdout)
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	panelURL := defaults.PanelURL
	if panelURL == "" {
		panelURL = "http://" + displayAddr(*listenAddr) + "/"
	}

	presenter := render.NewSnapshotPresenter()
	a := app.New(state.NewStore(features), presenter, app.Config{
		Width:    *width,
		Height:   *height,
		FPS:      *fps,
		PanelURL: panelURL,
	})
	a.Logger = logger
	a.Player = audio.NewLogPlayer(logger)

	startupScenario := strings.TrimSpace(*scenario)
	if startupScenario == "" {
		startupScenario = scenarioNoise
	}
	control := NewSimControl(a, presenter, startupScenario)
	control.SetFaults(SimFaults{CameraDeny: *denyCamera})
	a.Camera = control.Camera(*width/4, *height/4)

	mux := web.NewDefaultMux(*staticDir, a)
	registerSimEndpoints(mux, control)
	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode}, mux)
	server.Logger = logger

	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}

	appDone := make(chan error, 1)
	go func() { appDone <- a.Start(processCtx) }()

	if err := control.ApplyScenario(processCtx, startupScenario); err != nil {
		fmt.Println("scenario init error:", err)
		stop()
		<-appDone
		_ = server.Stop()
		os.Exit(2)
	}

	fmt.Println("Pixeltoy simulator listening on", server.Addr)
	fmt.Println("Scenario:", startupScenario)
	fmt.Println("Features:", features)
	fmt.Println("Panel: http://" + displayAddr(server.Addr) + "/")

	if err := <-appDone; err != nil && err != context.Canceled {
		fmt.Println("app error:", err)
	}
	_ = server.Stop()
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	if strings.HasPrefix(addr, "[::]:") {
		return "127.0.0.1" + strings.TrimPrefix(addr, "[::]")
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	return addr
}
