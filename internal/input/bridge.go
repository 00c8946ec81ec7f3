// Package input turns discrete key presses into notes and extra redraws.
package input

import (
	"strings"

	"github.com/rook-computer/pixeltoy/internal/audio"
)

// Keymap is the virtual keyboard: one chromatic octave from C2 to C3 on the
// home row, with the black keys on the row above.
var Keymap = map[string]audio.Note{
	"a": "C2", "w": "Db2", "s": "D2", "e": "Eb2", "d": "E2",
	"f": "F2", "t": "Gb2", "g": "G2", "y": "Ab2", "h": "A2",
	"u": "Bb2", "j": "B2", "k": "C3",
}

// NoteFor looks up key. Keys are matched case-insensitively.
func NoteFor(key string) (audio.Note, bool) {
	note, ok := Keymap[strings.ToLower(key)]
	return note, ok
}

// Bridge plays a note for a recognized key and requests exactly one extra
// render pass, synchronously, when the synth is enabled.
type Bridge struct {
	Player audio.Player
	// SynthEnabled is consulted on every key.
	SynthEnabled func() bool
	// RequestRender runs one render pass.
	RequestRender func()
}

// HandleKey reports whether key triggered a note.
func (b *Bridge) HandleKey(key string) bool {
	if b.SynthEnabled == nil || !b.SynthEnabled() {
		return false
	}
	note, ok := NoteFor(key)
	if !ok {
		return false
	}
	if b.Player != nil {
		b.Player.PlayNote(note, audio.EighthNote)
	}
	if b.RequestRender != nil {
		b.RequestRender()
	}
	return true
}
