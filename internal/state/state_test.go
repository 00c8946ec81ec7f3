package state

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestStoreDefaults(t *testing.T) {
	store := NewStore(AllFeatures())
	snap := store.Snapshot()
	assert.Equal(t, 10, snap.PixelSize)
	assert.True(t, snap.ColorMode)
	assert.True(t, snap.Running)
	assert.Equal(t, SourceNoise, snap.Source)
	assert.Equal(t, NoiseWhite, snap.NoiseType)
}

func TestApplyClampsNumbers(t *testing.T) {
	store := NewStore(AllFeatures())

	for _, tc := range []struct {
		name  string
		patch SettingsPatch
		check func(t *testing.T, s Settings)
	}{
		{"pixel size zero", SettingsPatch{PixelSize: ptr(0)}, func(t *testing.T, s Settings) { assert.Equal(t, MinPixelSize, s.PixelSize) }},
		{"pixel size negative", SettingsPatch{PixelSize: ptr(-7)}, func(t *testing.T, s Settings) { assert.Equal(t, MinPixelSize, s.PixelSize) }},
		{"pixel size huge", SettingsPatch{PixelSize: ptr(1000)}, func(t *testing.T, s Settings) { assert.Equal(t, MaxPixelSize, s.PixelSize) }},
		{"pixel size in range", SettingsPatch{PixelSize: ptr(17)}, func(t *testing.T, s Settings) { assert.Equal(t, 17, s.PixelSize) }},
		{"reverb low", SettingsPatch{ReverbDecay: ptr(0.0)}, func(t *testing.T, s Settings) { assert.Equal(t, MinReverbDecay, s.ReverbDecay) }},
		{"delay nan", SettingsPatch{DelayTime: ptr(math.NaN())}, func(t *testing.T, s Settings) { assert.Equal(t, 0.0, s.DelayTime) }},
		{"distortion high", SettingsPatch{DistortionAmount: ptr(3.0)}, func(t *testing.T, s Settings) { assert.Equal(t, 1.0, s.DistortionAmount) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := store.Apply(tc.patch)
			require.NoError(t, err)
			tc.check(t, s)
		})
	}
}

func TestApplyRejectsInvalidEnums(t *testing.T) {
	store := NewStore(AllFeatures())
	before := store.Snapshot()

	_, err := store.Apply(SettingsPatch{Source: ptr(SourceMode("radio")), PixelSize: ptr(30)})
	assert.ErrorIs(t, err, ErrInvalidSetting)

	_, err = store.Apply(SettingsPatch{NoiseType: ptr(NoiseType("blue"))})
	assert.ErrorIs(t, err, ErrInvalidSetting)

	assert.Equal(t, before, store.Snapshot(), "failed patches must not change settings")
}

func TestApplyHonorsFeatures(t *testing.T) {
	store := NewStore(Features{})

	_, err := store.Apply(SettingsPatch{Source: ptr(SourceCamera)})
	assert.ErrorIs(t, err, ErrFeatureDisabled)

	_, err = store.Apply(SettingsPatch{Running: ptr(false)})
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.True(t, store.Snapshot().Running)

	store = NewStore(AllFeatures())
	s, err := store.Apply(SettingsPatch{Source: ptr(SourceCamera), Running: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, SourceCamera, s.Source)
	assert.False(t, s.Running)
}

func TestToggleRunning(t *testing.T) {
	store := NewStore(Features{})
	_, err := store.ToggleRunning()
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.True(t, store.Snapshot().Running)

	store = NewStore(AllFeatures())
	settings, err := store.ToggleRunning()
	require.NoError(t, err)
	assert.False(t, settings.Running)

	// An even number of concurrent toggles lands back where it started.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.ToggleRunning()
		}()
	}
	wg.Wait()
	assert.False(t, store.Snapshot().Running)
}

func TestParseFeatures(t *testing.T) {
	f, err := ParseFeatures("camera, Freehand")
	require.NoError(t, err)
	assert.Equal(t, Features{Camera: true, Freehand: true}, f)
	assert.Equal(t, "camera,freehand", f.String())

	f, err = ParseFeatures("all")
	require.NoError(t, err)
	assert.Equal(t, AllFeatures(), f)

	f, err = ParseFeatures("")
	require.NoError(t, err)
	assert.Equal(t, "none", f.String())

	_, err = ParseFeatures("camera,lasers")
	assert.ErrorIs(t, err, ErrInvalidSetting)
}
