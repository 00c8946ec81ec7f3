package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
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

var _ Logger = app.NoopLogger{}

func startTestApp(t *testing.T, features state.Features) (*app.App, http.Handler) {
	t.Helper()
	a := app.New(state.NewStore(features), render.NewSnapshotPresenter(), app.Config{
		Width: 40, Height: 30,
		Scheduler: anim.NewManualScheduler(),
		Noise:     render.NewSeededNoiseSource(7),
	})
	a.Camera = camera.NewPushDevice()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	require.Eventually(t, func() bool { return a.Status().Passes > 0 }, time.Second, time.Millisecond)
	return a, NewDefaultMux("", a)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var e apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestSettingsRoundTrip(t *testing.T) {
	_, h := startTestApp(t, state.AllFeatures())

	rec := do(t, h, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got state.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, state.DefaultSettings(), got)

	rec = do(t, h, http.MethodPatch, "/api/v1/settings", `{"pixelSize":500,"colorMode":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, state.MaxPixelSize, got.PixelSize)
	assert.False(t, got.ColorMode)

	rec = do(t, h, http.MethodPatch, "/api/v1/settings", `{"source":"radio"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodPatch, "/api/v1/settings", `{"bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeError(t, rec).Error)

	rec = do(t, h, http.MethodDelete, "/api/v1/settings", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFeatureGating(t *testing.T) {
	_, h := startTestApp(t, state.Features{})

	rec := do(t, h, http.MethodGet, "/api/v1/features", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var f featuresResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "none", f.Enabled)

	rec = do(t, h, http.MethodPatch, "/api/v1/settings", `{"running":false}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/pointer", `{"type":"down","x":1,"y":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v1/frame", "x")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestKeyEndpoint(t *testing.T) {
	_, h := startTestApp(t, state.AllFeatures())

	rec := do(t, h, http.MethodPost, "/api/v1/key", `{"key":"a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp keyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Played)

	do(t, h, http.MethodPatch, "/api/v1/settings", `{"synthOn":true}`)
	rec = do(t, h, http.MethodPost, "/api/v1/key", `{"key":"K"}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Played)

	rec = do(t, h, http.MethodPost, "/api/v1/key", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPointerAndViewport(t *testing.T) {
	a, h := startTestApp(t, state.AllFeatures())

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/pointer", `{"type":"down","x":2,"y":2}`).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/pointer", `{"type":"move","x":20,"y":20}`).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/pointer", `{"type":"up"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/pointer", `{"type":"hover"}`).Code)
	assert.Equal(t, 1, a.Status().Strokes)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/viewport", `{"width":64,"height":48}`).Code)
	assert.Equal(t, 64, a.Status().Width)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/v1/viewport", `{"width":0,"height":48}`).Code)
}

func TestFrameAndSnapshot(t *testing.T) {
	_, h := startTestApp(t, state.AllFeatures())

	rec := do(t, h, http.MethodGet, "/api/v1/snapshot.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())

	rec = do(t, h, http.MethodPost, "/api/v1/frame", "not an image")
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetRGBA(0, 0, color.RGBA{A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	encoded := buf.Bytes()
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/frame", bytes.NewReader(encoded)))
		return rec.Code == http.StatusAccepted
	}, time.Second, 5*time.Millisecond)
}

func TestStatusAndUI(t *testing.T) {
	_, h := startTestApp(t, state.AllFeatures())

	rec := do(t, h, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st app.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 40, st.Width)
	assert.True(t, st.Running)

	rec = do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/snapshot.png")
}

func TestDevCORS(t *testing.T) {
	_, h := startTestApp(t, state.AllFeatures())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/settings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	WithDevCORS(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPServerStartStop(t *testing.T) {
	_, h := startTestApp(t, state.AllFeatures())
	srv := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0"}, h)
	require.NoError(t, srv.Start(context.Background()))

	resp, err := http.Get("http://" + srv.Addr + "/api/v1/features")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
	assert.Error(t, srv.Start(context.Background()))
}

func TestServerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvDevMode, "")
	cfg, err := DefaultServerConfigFromEnv(":8080")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.DevMode)

	t.Setenv(EnvListenAddr, ":9000")
	t.Setenv(EnvDevMode, "true")
	cfg, err = DefaultServerConfigFromEnv(":8080")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.True(t, cfg.DevMode)

	t.Setenv(EnvDevMode, "maybe")
	_, err = DefaultServerConfigFromEnv(":8080")
	assert.Error(t, err)
}
