// Package audio defines the sound collaborator of the toy: a tone generator
// for the virtual keyboard and an ambient noise generator behind a fixed
// delay -> reverb -> chorus -> distortion -> gain chain. Synthesis itself
// lives behind the Player interface.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rook-computer/pixeltoy/internal/state"
)

// Note is a pitch in scientific notation with flats, e.g. "Db2".
type Note string

// EighthNote is the duration of a keyboard note.
const EighthNote = 250 * time.Millisecond

var semitones = map[string]int{
	"C": 0, "Db": 1, "D": 2, "Eb": 3, "E": 4, "F": 5,
	"Gb": 6, "G": 7, "Ab": 8, "A": 9, "Bb": 10, "B": 11,
}

// Frequency returns the equal-tempered frequency with A4 = 440 Hz.
func (n Note) Frequency() (float64, error) {
	s := string(n)
	if len(s) < 2 {
		return 0, fmt.Errorf("note %q: too short", s)
	}
	name, octave := s[:len(s)-1], s[len(s)-1]
	if octave < '0' || octave > '9' {
		return 0, fmt.Errorf("note %q: bad octave", s)
	}
	semitone, ok := semitones[name]
	if !ok {
		return 0, fmt.Errorf("note %q: unknown name", s)
	}
	midi := (int(octave-'0')+1)*12 + semitone
	return 440 * math.Pow(2, float64(midi-69)/12), nil
}

// Effects are the parameters of the noise chain.
type Effects struct {
	DelayTime   float64
	ReverbDecay float64
	Chorus      float64
	Distortion  float64
}

// Chain lists the effect stages in signal order.
var Chain = []string{"delay", "reverb", "chorus", "distortion", "gain"}

func EffectsFromSettings(s state.Settings) Effects {
	return Effects{
		DelayTime:   s.DelayTime,
		ReverbDecay: s.ReverbDecay,
		Chorus:      s.ChorusDepth,
		Distortion:  s.DistortionAmount,
	}
}

type Player interface {
	PlayNote(note Note, duration time.Duration)
	SetNoise(noise state.NoiseType, on bool)
	SetEffects(effects Effects)
}

type NoopPlayer struct{}

func (NoopPlayer) PlayNote(Note, time.Duration)   {}
func (NoopPlayer) SetNoise(state.NoiseType, bool) {}
func (NoopPlayer) SetEffects(Effects)             {}

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// LogPlayer reports every request through a logger and remembers the
// current noise and effect state. Used where no audio output is wired.
type LogPlayer struct {
	Logger logger

	mu      sync.Mutex
	noise   state.NoiseType
	noiseOn bool
	effects Effects
	notes   []Note
}

func NewLogPlayer(l logger) *LogPlayer { return &LogPlayer{Logger: l, noise: state.NoiseWhite} }

func (p *LogPlayer) PlayNote(note Note, duration time.Duration) {
	freq, err := note.Frequency()
	p.mu.Lock()
	p.notes = append(p.notes, note)
	p.mu.Unlock()
	if p.Logger == nil {
		return
	}
	if err != nil {
		p.Logger.Errorf("audio", "play: %v", err)
		return
	}
	p.Logger.Infof("audio", "note %s (%.2f Hz) for %s", note, freq, duration)
}

func (p *LogPlayer) SetNoise(noise state.NoiseType, on bool) {
	p.mu.Lock()
	changed := p.noise != noise || p.noiseOn != on
	p.noise, p.noiseOn = noise, on
	p.mu.Unlock()
	if changed && p.Logger != nil {
		p.Logger.Infof("audio", "noise %s on=%t", noise, on)
	}
}

func (p *LogPlayer) SetEffects(effects Effects) {
	p.mu.Lock()
	changed := p.effects != effects
	p.effects = effects
	p.mu.Unlock()
	if changed && p.Logger != nil {
		p.Logger.Infof("audio", "effects delay=%.2f reverb=%.2f chorus=%.2f distortion=%.2f",
			effects.DelayTime, effects.ReverbDecay, effects.Chorus, effects.Distortion)
	}
}

// Notes returns the notes played so far.
func (p *LogPlayer) Notes() []Note {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Note(nil), p.notes...)
}

func (p *LogPlayer) Noise() (state.NoiseType, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.noise, p.noiseOn
}

func (p *LogPlayer) Effects() Effects {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.effects
}
