//go:build !linux

package system

import "context"

// StartKeyboard is only implemented on Linux.
func StartKeyboard(ctx context.Context, l logger, onKey func(key string)) {
	if l != nil {
		l.Infof("input", "evdev keyboard not supported on this platform")
	}
}
