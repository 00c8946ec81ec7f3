package web

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"

	"github.com/rook-computer/pixeltoy/internal/app"
	"github.com/rook-computer/pixeltoy/internal/camera"
	"github.com/rook-computer/pixeltoy/internal/state"
)

// maxJSONBody bounds settings, key, pointer and viewport requests.
const maxJSONBody = 64 << 10

// Controller is the part of the app the API drives. *app.App implements it.
type Controller interface {
	Settings() state.Settings
	Features() state.Features
	Status() app.Status
	UpdateSettings(ctx context.Context, patch state.SettingsPatch) (state.Settings, error)
	HandleKey(ctx context.Context, key string) (bool, error)
	HandlePointer(ctx context.Context, ev app.PointerEvent) error
	Resize(ctx context.Context, width, height int) error
	PushFrame(r io.Reader) error
	Frame(ctx context.Context) (*image.RGBA, error)
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type keyResponse struct {
	Key    string `json:"key"`
	Played bool   `json:"played"`
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type featuresResponse struct {
	Camera        bool   `json:"camera"`
	Freehand      bool   `json:"freehand"`
	FlickerToggle bool   `json:"flickerToggle"`
	Enabled       string `json:"enabled"`
}

func apiV1Router(ctrl Controller) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) { handleSettings(w, r, ctrl) })
	mux.HandleFunc("/features", func(w http.ResponseWriter, r *http.Request) { handleFeatures(w, r, ctrl) })
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, ctrl) })
	mux.HandleFunc("/key", func(w http.ResponseWriter, r *http.Request) { handleKey(w, r, ctrl) })
	mux.HandleFunc("/pointer", func(w http.ResponseWriter, r *http.Request) { handlePointer(w, r, ctrl) })
	mux.HandleFunc("/viewport", func(w http.ResponseWriter, r *http.Request) { handleViewport(w, r, ctrl) })
	mux.HandleFunc("/frame", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, ctrl) })
	mux.HandleFunc("/snapshot.png", func(w http.ResponseWriter, r *http.Request) { handleSnapshot(w, r, ctrl) })
	return mux
}

func handleSettings(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, ctrl.Settings())
	case http.MethodPatch, http.MethodPost:
		var patch state.SettingsPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		settings, err := ctrl.UpdateSettings(r.Context(), patch)
		if err != nil {
			writeControllerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func handleFeatures(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	f := ctrl.Features()
	writeJSON(w, http.StatusOK, featuresResponse{
		Camera:        f.Camera,
		Freehand:      f.Freehand,
		FlickerToggle: f.FlickerToggle,
		Enabled:       f.String(),
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Status())
}

func handleKey(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeAPIError(w, http.StatusBadRequest, "invalid_request", "key is required")
		return
	}
	played, err := ctrl.HandleKey(r.Context(), req.Key)
	if err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keyResponse{Key: req.Key, Played: played})
}

func handlePointer(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var ev app.PointerEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if err := ctrl.HandlePointer(r.Context(), ev); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleViewport(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req viewportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := ctrl.Resize(r.Context(), req.Width, req.Height); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func handleFrame(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if r.ContentLength > camera.MaxFrameBytes {
		writeAPIError(w, http.StatusRequestEntityTooLarge, "frame_too_large", "frame exceeds size limit")
		return
	}
	if err := ctrl.PushFrame(r.Body); err != nil {
		writeControllerError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, okResponse{OK: true})
}

func handleSnapshot(w http.ResponseWriter, r *http.Request, ctrl Controller) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	frame, err := ctrl.Frame(r.Context())
	if err != nil {
		writeControllerError(w, err)
		return
	}
	if frame == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "no_frame", "nothing rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = png.Encode(w, frame)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// writeControllerError maps app errors onto status codes.
func writeControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrInvalidSetting), errors.Is(err, app.ErrInvalidEvent):
		writeAPIError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, state.ErrFeatureDisabled):
		writeAPIError(w, http.StatusForbidden, "feature_disabled", err.Error())
	case errors.Is(err, app.ErrNoCamera), errors.Is(err, camera.ErrNotOpen):
		writeAPIError(w, http.StatusConflict, "camera_not_open", err.Error())
	case errors.Is(err, app.ErrStopped), errors.Is(err, context.Canceled):
		writeAPIError(w, http.StatusServiceUnavailable, "stopped", err.Error())
	case errors.Is(err, camera.ErrBadFrame):
		writeAPIError(w, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
	default:
		writeAPIError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
