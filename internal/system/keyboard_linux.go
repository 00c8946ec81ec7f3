//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	keyPressed = 1
)

// Linux input-event-codes.h
var keyNames = map[uint16]string{
	17: "w", 18: "e", 20: "t", 21: "y", 22: "u",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g", 35: "h", 36: "j", 37: "k",
	57: "space",
	62: KeyF4,
}

// StartKeyboard watches Linux evdev devices under /dev/input/event* and calls
// onKey with the key name for every key press it knows about. onKey runs on
// reader goroutines.
//
// It is best-effort: if no input devices are available, it logs and returns.
func StartKeyboard(ctx context.Context, l logger, onKey func(key string)) {
	if onKey == nil {
		return
	}

	// Determine input_event size based on arch timeval size.
	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := int(binary.Size(unix.Timeval{}))
	eventSize := tvSize + 2 + 2 + 4
	if eventSize <= 0 {
		eventSize = 24
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found, keyboard disabled")
		}
		return
	}

	for _, path := range paths {
		p := path
		go func() {
			fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK, 0)
			if err != nil {
				return
			}
			f := os.NewFile(uintptr(fd), p)
			defer func() {
				_ = f.Close()
			}()
			if l != nil {
				l.Infof("input", "reading keys from %s", p)
			}

			buf := make([]byte, 4096)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
				_, pollErr := unix.Poll(pollFds, 250)
				if pollErr != nil {
					if pollErr == unix.EINTR {
						continue
					}
					// Device might have gone away.
					return
				}
				if pollFds[0].Revents&unix.POLLIN == 0 {
					continue
				}

				n, readErr := unix.Read(fd, buf)
				if readErr != nil {
					if readErr == unix.EAGAIN || readErr == unix.EINTR {
						continue
					}
					return
				}

				for _, key := range parseKeyPresses(buf[:n], tvSize, eventSize) {
					onKey(key)
				}
			}
		}()
	}
}

// parseKeyPresses decodes a sequence of input_event records and returns the
// names of pressed keys. Repeats and releases are ignored.
func parseKeyPresses(data []byte, tvSize, eventSize int) []string {
	var keys []string
	for off := 0; off+eventSize <= len(data); off += eventSize {
		rec := data[off : off+eventSize]
		// type and code are immediately after timeval.
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ != evKey || value != keyPressed {
			continue
		}
		if name, ok := keyNames[code]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}
