package state

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidSetting  = errors.New("invalid setting")
	ErrFeatureDisabled = errors.New("feature disabled")
)

type SourceMode string

const (
	SourceNoise  SourceMode = "noise"
	SourceCamera SourceMode = "camera"
)

type NoiseType string

const (
	NoiseWhite NoiseType = "white"
	NoisePink  NoiseType = "pink"
	NoiseBrown NoiseType = "brown"
)

// Ranges exposed to the control panel.
const (
	MinPixelSize = 2
	MaxPixelSize = 50

	MinReverbDecay = 0.1
	MaxReverbDecay = 10
)

// Settings are the runtime-adjustable parameters of the toy.
type Settings struct {
	PixelSize int        `json:"pixelSize"`
	ColorMode bool       `json:"colorMode"`
	Source    SourceMode `json:"source"`
	Running   bool       `json:"running"`
	ShowHUD   bool       `json:"showHud"`

	NoiseType        NoiseType `json:"noiseType"`
	NoiseOn          bool      `json:"noiseOn"`
	SynthOn          bool      `json:"synthOn"`
	DelayTime        float64   `json:"delayTime"`
	ReverbDecay      float64   `json:"reverbDecay"`
	DistortionAmount float64   `json:"distortionAmount"`
	ChorusDepth      float64   `json:"chorusDepth"`
}

// DefaultSettings mirrors the control panel defaults.
func DefaultSettings() Settings {
	return Settings{
		PixelSize:        10,
		ColorMode:        true,
		Source:           SourceNoise,
		Running:          true,
		NoiseType:        NoiseWhite,
		DelayTime:        0.5,
		ReverbDecay:      2,
		DistortionAmount: 0.4,
		ChorusDepth:      0.5,
	}
}

// SettingsPatch is a partial update; nil fields are left unchanged.
type SettingsPatch struct {
	PixelSize *int        `json:"pixelSize,omitempty"`
	ColorMode *bool       `json:"colorMode,omitempty"`
	Source    *SourceMode `json:"source,omitempty"`
	Running   *bool       `json:"running,omitempty"`
	ShowHUD   *bool       `json:"showHud,omitempty"`

	NoiseType        *NoiseType `json:"noiseType,omitempty"`
	NoiseOn          *bool      `json:"noiseOn,omitempty"`
	SynthOn          *bool      `json:"synthOn,omitempty"`
	DelayTime        *float64   `json:"delayTime,omitempty"`
	ReverbDecay      *float64   `json:"reverbDecay,omitempty"`
	DistortionAmount *float64   `json:"distortionAmount,omitempty"`
	ChorusDepth      *float64   `json:"chorusDepth,omitempty"`
}

type Store struct {
	mu       sync.RWMutex
	settings Settings
	features Features
}

func NewStore(features Features) *Store {
	settings := DefaultSettings()
	if !features.FlickerToggle {
		settings.Running = true
	}
	return &Store{settings: settings, features: features}
}

func (store *Store) Snapshot() Settings {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.settings
}

func (store *Store) Features() Features {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.features
}

// Apply validates patch against the enabled features, clamps numeric
// values into range and stores the result. On error nothing is changed.
func (store *Store) Apply(patch SettingsPatch) (Settings, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	next := store.settings
	if patch.PixelSize != nil {
		next.PixelSize = ClampPixelSize(*patch.PixelSize)
	}
	if patch.ColorMode != nil {
		next.ColorMode = *patch.ColorMode
	}
	if patch.Source != nil {
		switch *patch.Source {
		case SourceNoise:
		case SourceCamera:
			if !store.features.Camera {
				return store.settings, fmt.Errorf("source %q: %w", *patch.Source, ErrFeatureDisabled)
			}
		default:
			return store.settings, fmt.Errorf("source %q: %w", *patch.Source, ErrInvalidSetting)
		}
		next.Source = *patch.Source
	}
	if patch.Running != nil {
		if !*patch.Running && !store.features.FlickerToggle {
			return store.settings, fmt.Errorf("stopping animation: %w", ErrFeatureDisabled)
		}
		next.Running = *patch.Running
	}
	if patch.ShowHUD != nil {
		next.ShowHUD = *patch.ShowHUD
	}
	if patch.NoiseType != nil {
		switch *patch.NoiseType {
		case NoiseWhite, NoisePink, NoiseBrown:
		default:
			return store.settings, fmt.Errorf("noise type %q: %w", *patch.NoiseType, ErrInvalidSetting)
		}
		next.NoiseType = *patch.NoiseType
	}
	if patch.NoiseOn != nil {
		next.NoiseOn = *patch.NoiseOn
	}
	if patch.SynthOn != nil {
		next.SynthOn = *patch.SynthOn
	}
	if patch.DelayTime != nil {
		next.DelayTime = clampFloat(*patch.DelayTime, 0, 1)
	}
	if patch.ReverbDecay != nil {
		next.ReverbDecay = clampFloat(*patch.ReverbDecay, MinReverbDecay, MaxReverbDecay)
	}
	if patch.DistortionAmount != nil {
		next.DistortionAmount = clampFloat(*patch.DistortionAmount, 0, 1)
	}
	if patch.ChorusDepth != nil {
		next.ChorusDepth = clampFloat(*patch.ChorusDepth, 0, 1)
	}

	store.settings = next
	return next, nil
}

// ToggleRunning flips Running in one step so concurrent toggles never
// cancel out. It requires the flicker-toggle feature.
func (store *Store) ToggleRunning() (Settings, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.features.FlickerToggle {
		return store.settings, fmt.Errorf("toggling animation: %w", ErrFeatureDisabled)
	}
	store.settings.Running = !store.settings.Running
	return store.settings, nil
}

// ClampPixelSize forces a tile size into [MinPixelSize, MaxPixelSize].
func ClampPixelSize(size int) int {
	if size < MinPixelSize {
		return MinPixelSize
	}
	if size > MaxPixelSize {
		return MaxPixelSize
	}
	return size
}

func clampFloat(value, low, high float64) float64 {
	// NaN compares false everywhere; pin it to the lower bound.
	if !(value >= low) {
		return low
	}
	if value > high {
		return high
	}
	return value
}
