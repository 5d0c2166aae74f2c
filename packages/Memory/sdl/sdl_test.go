package sdl

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(kind uint32, fill func(b []byte)) []byte {
	b := make([]byte, EventSize)
	binary.LittleEndian.PutUint32(b, kind)
	if fill != nil {
		fill(b)
	}
	return b
}

func put32(b []byte, off int, v int32) { binary.LittleEndian.PutUint32(b[off:], uint32(v)) }

func TestDecodeKey(t *testing.T) {
	ev, ok := Decode(raw(typeKeyDown, func(b []byte) {
		b[12] = 1
		put32(b, 16, ScancodeInsert)
		put32(b, 20, 0x40000049)
		binary.LittleEndian.PutUint16(b[24:], 0x0040)
	}))
	require.True(t, ok)
	assert.Equal(t, Event{Kind: KindKey, Pressed: true, Scancode: ScancodeInsert, Keycode: 0x40000049, Modifier: 0x40}, ev)

	ev, ok = Decode(raw(typeKeyUp, func(b []byte) { put32(b, 16, ScancodeEscape) }))
	require.True(t, ok)
	assert.False(t, ev.Pressed)
	assert.Equal(t, int32(ScancodeEscape), ev.Scancode)
}

func TestDecodeMouse(t *testing.T) {
	ev, ok := Decode(raw(typeMouseMotion, func(b []byte) {
		put32(b, 20, 640)
		put32(b, 24, 360)
	}))
	require.True(t, ok)
	assert.Equal(t, Event{Kind: KindCursor, X: 640, Y: 360}, ev)

	ev, ok = Decode(raw(typeMouseDown, func(b []byte) {
		b[16] = 3
		b[17] = 1
		put32(b, 20, 10)
		put32(b, 24, 20)
	}))
	require.True(t, ok)
	assert.Equal(t, Event{Kind: KindButton, Button: 3, Pressed: true, X: 10, Y: 20}, ev)

	ev, ok = Decode(raw(typeMouseWheel, func(b []byte) { put32(b, 20, -1) }))
	require.True(t, ok)
	assert.Equal(t, Event{Kind: KindWheel, Y: -1}, ev)
}

func TestDecodeText(t *testing.T) {
	ev, ok := Decode(raw(typeTextInput, func(b []byte) { copy(b[12:], "hé") }))
	require.True(t, ok)
	assert.Equal(t, "hé", ev.Text)
}

func TestDecodeWindow(t *testing.T) {
	ev, ok := Decode(raw(typeWindow, func(b []byte) { b[12] = windowFocusLost }))
	require.True(t, ok)
	assert.Equal(t, Event{Kind: KindFocus}, ev)

	ev, ok = Decode(raw(typeWindow, func(b []byte) { b[12] = windowEnter }))
	require.True(t, ok)
	assert.True(t, ev.Focused)

	ev, ok = Decode(raw(typeWindow, func(b []byte) {
		b[12] = windowSizeChanged
		put32(b, 16, 1920)
		put32(b, 20, 1080)
	}))
	require.True(t, ok)
	assert.Equal(t, Event{Kind: KindResize, Width: 1920, Height: 1080}, ev)

	_, ok = Decode(raw(typeWindow, func(b []byte) { b[12] = 4 }))
	assert.False(t, ok, "moved")
}

func TestDecodeIgnored(t *testing.T) {
	for _, kind := range []uint32{typeDropFile, typeRenderReset, typeUser, typeTextEditing, 0x100, 0} {
		_, ok := Decode(raw(kind, nil))
		assert.False(t, ok, "type %#x", kind)
	}
	_, ok := Decode(make([]byte, 8))
	assert.False(t, ok, "short buffer")
	_, ok = DecodeAt(0)
	assert.False(t, ok)
}

func TestLatch(t *testing.T) {
	titles := []string{"", "", "", "Counter-Strike: Global Offensive", ""}
	calls := 0
	latch := NewLatch(func(uintptr) string {
		title := titles[calls]
		calls++
		return title
	})

	var ready []bool
	for i := 0; i < 6; i++ {
		ready = append(ready, latch.Ready(1))
	}
	assert.Equal(t, []bool{false, false, false, true, true, true}, ready)
	assert.Equal(t, 4, calls, "title is not queried once ready")
}
