package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rook-computer/pixeltoy/internal/anim"
	"github.com/rook-computer/pixeltoy/internal/app"
	"github.com/rook-computer/pixeltoy/internal/camera"
	"github.com/rook-computer/pixeltoy/internal/render"
	"github.com/rook-computer/pixeltoy/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestControl(t *testing.T, features state.Features) (*SimControl, *http.ServeMux, context.Context) {
	t.Helper()
	presenter := render.NewSnapshotPresenter()
	a := app.New(state.NewStore(features), presenter, app.Config{
		Width: 32, Height: 24,
		Scheduler: anim.NewManualScheduler(),
	})
	control := NewSimControl(a, presenter, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	mux := http.NewServeMux()
	registerSimEndpoints(mux, control)
	return control, mux, ctx
}

func TestScenarios(t *testing.T) {
	control, _, ctx := newTestControl(t, state.AllFeatures())

	require.NoError(t, control.ApplyScenario(ctx, scenarioCoarse))
	assert.Equal(t, state.MaxPixelSize, control.app.Settings().PixelSize)

	require.NoError(t, control.ApplyScenario(ctx, scenarioMono))
	settings := control.app.Settings()
	assert.False(t, settings.ColorMode)
	assert.Equal(t, state.DefaultSettings().PixelSize, settings.PixelSize, "scenarios start from defaults")

	require.NoError(t, control.ApplyScenario(ctx, scenarioStill))
	assert.False(t, control.app.Settings().Running)

	assert.Error(t, control.ApplyScenario(ctx, "disco"))
	assert.Equal(t, scenarioStill, control.currentScenario.Load())
}

func TestScenarioRespectsFeatures(t *testing.T) {
	control, _, ctx := newTestControl(t, state.Features{})
	require.NoError(t, control.ApplyScenario(ctx, scenarioNoise))
	assert.ErrorIs(t, control.ApplyScenario(ctx, scenarioCamera), state.ErrFeatureDisabled)
}

func TestFaultEndpoints(t *testing.T) {
	control, mux, _ := newTestControl(t, state.AllFeatures())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/faults", strings.NewReader(`{"cameraFreeze":true}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SimFaults{CameraFreeze: true}, control.Faults())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/scenario/coarse", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sim/reset", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, SimFaults{}, control.Faults())
	assert.Equal(t, state.DefaultSettings().PixelSize, control.app.Settings().PixelSize)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sim/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scenario":"noise"`)
}

func TestCameraFaults(t *testing.T) {
	control := NewSimControl(nil, nil, "")
	control.SetFaults(SimFaults{CameraDeny: true})
	_, err := control.Camera(8, 8).Open(context.Background())
	assert.ErrorIs(t, err, camera.ErrDenied)

	control.SetFaults(SimFaults{CameraFreeze: true})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames, err := control.Camera(8, 8).Open(ctx)
	require.NoError(t, err)
	select {
	case <-frames:
		t.Fatal("frozen camera delivered a frame")
	case <-time.After(150 * time.Millisecond):
	}

	control.SetFaults(SimFaults{})
	select {
	case frame := <-frames:
		assert.NotNil(t, frame)
	case <-time.After(time.Second):
		t.Fatal("camera did not resume")
	}
}
