package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/pixeltoy/internal/anim"
	"github.com/rook-computer/pixeltoy/internal/assets"
	"github.com/rook-computer/pixeltoy/internal/audio"
	"github.com/rook-computer/pixeltoy/internal/camera"
	"github.com/rook-computer/pixeltoy/internal/input"
	"github.com/rook-computer/pixeltoy/internal/overlay"
	"github.com/rook-computer/pixeltoy/internal/render"
	"github.com/rook-computer/pixeltoy/internal/state"
)

var (
	ErrInvalidEvent = errors.New("invalid input event")
	ErrNoCamera     = errors.New("no camera push device configured")
)

// Pointer event types.
const (
	PointerDown  = "down"
	PointerMove  = "move"
	PointerUp    = "up"
	PointerLeave = "leave"
)

type PointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Config holds construction-time parameters.
type Config struct {
	Width, Height int
	FPS           int
	PanelURL      string

	// Scheduler replaces the refresh ticker. When set, the caller is
	// responsible for firing it from the event loop.
	Scheduler anim.Scheduler
	// Noise replaces the random tile source.
	Noise *render.NoiseSource
}

// Status is a read-only view used by the API and the simulator.
type Status struct {
	Settings state.Settings `json:"settings"`
	Features state.Features `json:"features"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Running  bool           `json:"running"`
	Passes   uint64         `json:"passes"`
	Camera   string         `json:"camera"`
	Frames   uint64         `json:"cameraFrames"`
	Strokes  int            `json:"strokes"`
}

type App struct {
	Store     *state.Store
	Presenter render.Presenter
	Camera    camera.Device
	Player    audio.Player
	Logger    Logger

	loop       *eventLoop
	ticker     *anim.TickerScheduler
	surface    *render.Surface
	renderer   *render.TileRenderer
	compositor *render.Compositor
	driver     *anim.Driver
	overlay    *overlay.Overlay
	bridge     *input.Bridge
	feed       *camera.Feed
	lastFrame  *image.RGBA

	status       atomic.Value // Status
	presentFails int

	startOnce sync.Once
	exitOnce  atomic.Bool
	exitCh    chan error
}

func New(store *state.Store, presenter render.Presenter, cfg Config) *App {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = render.CanvasWidth, render.CanvasHeight
	}
	noise := cfg.Noise
	if noise == nil {
		noise = render.NewNoiseSource()
	}
	if presenter == nil {
		presenter = render.NoopPresenter{}
	}

	app := &App{
		Store:     store,
		Presenter: presenter,
		Player:    audio.NoopPlayer{},
		Logger:    NoopLogger{},
		loop:      newEventLoop(256),
		feed:      camera.NewFeed(),
		exitCh:    make(chan error, 1),
	}
	app.surface = render.NewSurface(cfg.Width, cfg.Height)
	app.renderer = render.NewTileRenderer(app.surface, noise, app.feed)
	app.compositor = &render.Compositor{HUD: render.NewHUD(assets.FontTTF, cfg.PanelURL)}

	sched := cfg.Scheduler
	if sched == nil {
		app.ticker = anim.NewTickerScheduler(cfg.FPS, func(fn func()) { _ = app.loop.Post(fn) })
		sched = app.ticker
	}
	app.driver = anim.NewDriver(sched, app.renderPass)
	app.overlay = overlay.New(overlay.GGPainter{Surface: app.surface}, noise.Hue)
	app.bridge = &input.Bridge{
		SynthEnabled:  func() bool { return app.Store.Snapshot().SynthOn },
		RequestRender: app.renderPass,
	}
	app.publishStatus()
	return app
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs the event loop until ctx is done or Exit is called. An App can
// only be started once.
func (app *App) Start(ctx context.Context) error {
	started := false
	app.startOnce.Do(func() { started = true })
	if !started {
		return errors.New("app already started")
	}

	app.bridge.Player = app.Player
	app.renderer.Logger = app.Logger
	app.compositor.HUD.Logger = app.Logger

	loopCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.loop.Run(loopCtx)
	}()
	if app.ticker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.ticker.Run(loopCtx)
		}()
	}

	features := app.Store.Features()
	app.Logger.Infof("app", "starting, features=%s", features)
	if features.Camera {
		app.acquireCamera(loopCtx)
	}
	_ = app.loop.Post(app.applySettings)

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()
	app.Logger.Infof("app", "stopped after %d passes", app.renderer.Passes())
	return err
}

// acquireCamera requests the camera once; frames are applied on the loop.
func (app *App) acquireCamera(ctx context.Context) {
	app.feed.MarkRequested()
	if app.Camera == nil {
		app.feed.SetFailed(camera.ErrDenied)
		app.Logger.Errorf("camera", "no camera device, rendering noise instead")
		return
	}
	go func() {
		frames, err := app.Camera.Open(ctx)
		if err != nil {
			app.feed.SetFailed(err)
			app.Logger.Errorf("camera", "acquisition failed, rendering noise instead: %v", err)
			_ = app.loop.Post(app.publishStatus)
			return
		}
		app.Logger.Infof("camera", "stream open")
		for frame := range frames {
			f := frame
			err := app.loop.Post(func() {
				app.feed.Update(f)
				app.publishStatus()
			})
			if err != nil {
				return
			}
		}
		app.Logger.Infof("camera", "stream closed")
	}()
}

// renderPass is the single "render requested" entry used by both the
// animation driver and the key bridge.
func (app *App) renderPass() {
	settings := app.Store.Snapshot()
	app.renderer.Render(render.OptionsFromSettings(settings))
	app.present(settings)
}

func (app *App) present(settings state.Settings) {
	frame := app.compositor.Compose(app.surface, render.HUDStatus{
		Settings: settings,
		Camera:   app.feed.Status(),
		Passes:   app.renderer.Passes(),
	}, settings.ShowHUD)
	app.lastFrame = frame
	if err := app.Presenter.Present(frame); err != nil {
		app.presentFails++
		if app.presentFails == 1 || app.presentFails%1000 == 0 {
			app.Logger.Errorf("app", "present failed (%d times): %v", app.presentFails, err)
		}
	}
	app.publishStatus()
}

// applySettings pushes the stored settings into the driver, overlay and
// audio collaborator. Runs on the loop.
func (app *App) applySettings() {
	settings := app.Store.Snapshot()
	app.overlay.Width = float64(settings.PixelSize)
	app.overlay.ColorMode = settings.ColorMode
	app.Player.SetNoise(settings.NoiseType, settings.NoiseOn)
	app.Player.SetEffects(audio.EffectsFromSettings(settings))
	app.driver.SetRunning(settings.Running)
	app.publishStatus()
}

func (app *App) publishStatus() {
	width, height := app.surface.Size()
	app.status.Store(Status{
		Settings: app.Store.Snapshot(),
		Features: app.Store.Features(),
		Width:    width,
		Height:   height,
		Running:  app.driver != nil && app.driver.Running(),
		Passes:   app.renderer.Passes(),
		Camera:   app.feed.Status(),
		Frames:   app.feed.Frames(),
		Strokes:  app.overlay.Segments(),
	})
}

// Status returns the state as of the last loop turn.
func (app *App) Status() Status {
	return app.status.Load().(Status)
}

// UpdateSettings validates and stores patch, then applies it on the loop.
func (app *App) UpdateSettings(ctx context.Context, patch state.SettingsPatch) (state.Settings, error) {
	settings, err := app.Store.Apply(patch)
	if err != nil {
		return settings, err
	}
	app.Logger.Infof("settings", "pixel=%d color=%t source=%s running=%t synth=%t noise=%s/%t",
		settings.PixelSize, settings.ColorMode, settings.Source, settings.Running,
		settings.SynthOn, settings.NoiseType, settings.NoiseOn)
	if err := app.loop.Call(ctx, app.applySettings); err != nil {
		return settings, err
	}
	return settings, nil
}

// HandleKey feeds a key press to the virtual keyboard. The space bar toggles
// the animation when flicker toggling is enabled.
func (app *App) HandleKey(ctx context.Context, key string) (played bool, err error) {
	if key == "space" || key == " " {
		if !app.Store.Features().FlickerToggle {
			return false, nil
		}
		settings, err := app.Store.ToggleRunning()
		if err != nil {
			return false, err
		}
		app.Logger.Infof("settings", "running=%t", settings.Running)
		return false, app.loop.Call(ctx, app.applySettings)
	}
	err = app.loop.Call(ctx, func() { played = app.bridge.HandleKey(key) })
	return played, err
}

// HandlePointer feeds pointer or touch input to the freehand overlay.
func (app *App) HandlePointer(ctx context.Context, ev PointerEvent) error {
	if !app.Store.Features().Freehand {
		return fmt.Errorf("freehand drawing: %w", state.ErrFeatureDisabled)
	}
	switch ev.Type {
	case PointerDown, PointerMove, PointerUp, PointerLeave:
	default:
		return fmt.Errorf("pointer type %q: %w", ev.Type, ErrInvalidEvent)
	}
	return app.loop.Call(ctx, func() {
		switch ev.Type {
		case PointerDown:
			app.overlay.PressStart(ev.X, ev.Y)
		case PointerMove:
			if app.overlay.DragTo(ev.X, ev.Y) {
				app.present(app.Store.Snapshot())
			}
		case PointerUp, PointerLeave:
			app.overlay.PressEnd()
		}
	})
}

// Resize changes the surface size. The next pass paints the new grid; when
// the animation is stopped one pass runs right away so the surface is not
// left blank.
func (app *App) Resize(ctx context.Context, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", width, height, state.ErrInvalidSetting)
	}
	return app.loop.Call(ctx, func() {
		app.surface.Resize(width, height)
		app.Logger.Infof("app", "surface resized to %dx%d", width, height)
		if !app.driver.Running() {
			app.renderPass()
			return
		}
		app.publishStatus()
	})
}

// PushFrame decodes an encoded camera frame and hands it to the push device.
func (app *App) PushFrame(r io.Reader) error {
	if !app.Store.Features().Camera {
		return fmt.Errorf("camera input: %w", state.ErrFeatureDisabled)
	}
	push, ok := app.Camera.(*camera.PushDevice)
	if !ok {
		return ErrNoCamera
	}
	return push.PushEncoded(r)
}

// Frame returns a copy of the last presented frame, or nil before the
// first pass.
func (app *App) Frame(ctx context.Context) (*image.RGBA, error) {
	var out *image.RGBA
	err := app.loop.Call(ctx, func() {
		if app.lastFrame == nil {
			return
		}
		out = image.NewRGBA(app.lastFrame.Rect)
		copy(out.Pix, app.lastFrame.Pix)
	})
	return out, err
}

// Settings and Features expose the store for read-only callers.
func (app *App) Settings() state.Settings { return app.Store.Snapshot() }
func (app *App) Features() state.Features { return app.Store.Features() }
