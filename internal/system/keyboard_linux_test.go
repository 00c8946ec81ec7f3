//go:build linux

package system

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func inputEvent(tvSize int, typ, code uint16, value int32) []byte {
	rec := make([]byte, tvSize+8)
	binary.LittleEndian.PutUint16(rec[tvSize:], typ)
	binary.LittleEndian.PutUint16(rec[tvSize+2:], code)
	binary.LittleEndian.PutUint32(rec[tvSize+4:], uint32(value))
	return rec
}

func TestParseKeyPresses(t *testing.T) {
	const tvSize = 16
	var data []byte
	data = append(data, inputEvent(tvSize, evKey, 30, keyPressed)...) // a down
	data = append(data, inputEvent(tvSize, evKey, 30, 0)...)          // a up
	data = append(data, inputEvent(tvSize, evKey, 30, 2)...)          // a repeat
	data = append(data, inputEvent(tvSize, 0x00, 0, 0)...)            // SYN
	data = append(data, inputEvent(tvSize, evKey, 37, keyPressed)...) // k down
	data = append(data, inputEvent(tvSize, evKey, 1, keyPressed)...)  // esc, unmapped
	data = append(data, inputEvent(tvSize, evKey, 62, keyPressed)...) // F4
	data = append(data, 0x01, 0x02)                                    // partial record

	assert.Equal(t, []string{"a", "k", KeyF4}, parseKeyPresses(data, tvSize, tvSize+8))
	assert.Empty(t, parseKeyPresses(nil, tvSize, tvSize+8))
}
