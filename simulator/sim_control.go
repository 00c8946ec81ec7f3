package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/pixeltoy/internal/app"
	"github.com/rook-computer/pixeltoy/internal/camera"
	"github.com/rook-computer/pixeltoy/internal/render"
	"github.com/rook-computer/pixeltoy/internal/state"
)

const (
	scenarioNoise  = "noise"
	scenarioCamera = "camera"
	scenarioMono   = "mono"
	scenarioCoarse = "coarse"
	scenarioStill  = "still"
)

// scenarios map a name to the settings it applies on top of the defaults.
var scenarios = map[string]func(*state.SettingsPatch){
	scenarioNoise: func(*state.SettingsPatch) {},
	scenarioCamera: func(p *state.SettingsPatch) {
		source := state.SourceCamera
		p.Source = &source
	},
	scenarioMono: func(p *state.SettingsPatch) {
		off := false
		p.ColorMode = &off
	},
	scenarioCoarse: func(p *state.SettingsPatch) {
		size := state.MaxPixelSize
		p.PixelSize = &size
	},
	scenarioStill: func(p *state.SettingsPatch) {
		stopped := false
		p.Running = &stopped
	},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type SimFaults struct {
	// CameraDeny refuses the camera when it is acquired at startup.
	CameraDeny bool `json:"cameraDeny"`
	// CameraFreeze stops delivering synthetic frames without closing the stream.
	CameraFreeze bool `json:"cameraFreeze"`
}

type SimControl struct {
	app             *app.App
	presenter       *render.SnapshotPresenter
	startupScenario string
	currentScenario atomic.Value // string

	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
}

func NewSimControl(a *app.App, presenter *render.SnapshotPresenter, startupScenario string) *SimControl {
	c := &SimControl{app: a, presenter: presenter, startupScenario: strings.TrimSpace(startupScenario)}
	if c.startupScenario == "" {
		c.startupScenario = scenarioNoise
	}
	c.currentScenario.Store(c.startupScenario)
	return c
}

// Camera returns a synthetic camera whose behavior follows the faults.
func (c *SimControl) Camera(width, height int) camera.Device {
	return freezableDevice{
		Device: camera.SyntheticDevice{
			Width:    width,
			Height:   height,
			Interval: 66 * time.Millisecond,
			Deny:     func() bool { return c.Faults().CameraDeny },
		},
		Frozen: func() bool { return c.Faults().CameraFreeze },
	}
}

// ApplyScenario resets settings to the defaults and applies the named
// scenario. Settings that the enabled features do not allow are skipped.
func (c *SimControl) ApplyScenario(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.startupScenario
	}
	apply, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}

	defaults := state.DefaultSettings()
	patch := state.SettingsPatch{
		PixelSize: &defaults.PixelSize,
		ColorMode: &defaults.ColorMode,
		Source:    &defaults.Source,
		ShowHUD:   &defaults.ShowHUD,
	}
	if c.app.Features().FlickerToggle {
		patch.Running = &defaults.Running
	}
	apply(&patch)
	if _, err := c.app.UpdateSettings(ctx, patch); err != nil {
		return fmt.Errorf("scenario %s: %w", name, err)
	}
	c.currentScenario.Store(name)
	return nil
}

func (c *SimControl) Reset(ctx context.Context) error {
	c.SetFaults(SimFaults{})
	return c.ApplyScenario(ctx, c.startupScenario)
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

// freezableDevice forwards frames from Device unless Frozen reports true.
type freezableDevice struct {
	camera.Device
	Frozen func() bool
}

func (d freezableDevice) Open(ctx context.Context) (<-chan image.Image, error) {
	in, err := d.Device.Open(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan image.Image)
	go func() {
		defer close(out)
		for frame := range in {
			if d.Frozen != nil && d.Frozen() {
				continue
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

type simStatus struct {
	Scenario  string     `json:"scenario"`
	Faults    SimFaults  `json:"faults"`
	Presented uint64     `json:"presented"`
	App       app.Status `json:"app"`
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeSimJSON(w, http.StatusOK, simStatus{
			Scenario:  control.currentScenario.Load().(string),
			Faults:    control.Faults(),
			Presented: control.presenter.Frames(),
			App:       control.app.Status(),
		})
	})

	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := control.Reset(r.Context()); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": control.currentScenario.Load()})
	})

	mux.HandleFunc("/sim/scenario/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/sim/scenario/")
		name = strings.Trim(name, "/")
		if err := control.ApplyScenario(r.Context(), name); err != nil {
			writeSimError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "scenario": control.currentScenario.Load()})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				CameraDeny   *bool `json:"cameraDeny"`
				CameraFreeze *bool `json:"cameraFreeze"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.CameraDeny != nil {
				current.CameraDeny = *patch.CameraDeny
			}
			if patch.CameraFreeze != nil {
				current.CameraFreeze = *patch.CameraFreeze
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})

	mux.HandleFunc("/sim/snapshot.png", func(w http.ResponseWriter, r *http.Request) {
		data, ok, err := control.presenter.PNG()
		if err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !ok {
			writeSimError(w, http.StatusServiceUnavailable, "nothing presented yet")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
