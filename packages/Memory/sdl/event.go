package sdl

import (
	"bytes"
	"encoding/binary"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// EventSize is sizeof(SDL_Event).
const EventSize = 56

// SDL_EventType values.
const (
	typeWindow      = 0x200
	typeKeyDown     = 0x300
	typeKeyUp       = 0x301
	typeTextEditing = 0x302
	typeTextInput   = 0x303
	typeMouseMotion = 0x400
	typeMouseDown   = 0x401
	typeMouseUp     = 0x402
	typeMouseWheel  = 0x403
	typeDropFile    = 0x1000
	typeRenderReset = 0x2000
	typeUser        = 0x8000
)

// SDL_WindowEventID values.
const (
	windowResized     = 5
	windowSizeChanged = 6
	windowEnter       = 10
	windowLeave       = 11
	windowFocusGained = 12
	windowFocusLost   = 13
)

// Kind is the tool's classification of an input event.
type Kind uint8

const (
	KindKey Kind = iota + 1
	KindText
	KindCursor
	KindButton
	KindWheel
	KindFocus
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindText:
		return "text"
	case KindCursor:
		return "cursor"
	case KindButton:
		return "button"
	case KindWheel:
		return "wheel"
	case KindFocus:
		return "focus"
	case KindResize:
		return "resize"
	}
	return "unknown"
}

// Scancodes the overlay reacts to.
const (
	ScancodeEscape = 41
	ScancodeInsert = 73
)

// Event is a decoded keyboard, mouse, focus or resize event.
type Event struct {
	Kind     Kind
	Pressed  bool
	Repeat   bool
	Scancode int32
	Keycode  int32
	Modifier uint16
	Text     string
	Button   uint8
	X, Y     int32
	// Focused is set for focus events and for cursor enter/leave.
	Focused bool
	Width   int32
	Height  int32
}

var le = binary.LittleEndian

func i32(raw []byte, off int) int32 { return int32(le.Uint32(raw[off:])) }

// Decode translates a raw SDL_Event. The second result is false for event
// types the overlay ignores.
func Decode(raw []byte) (Event, bool) {
	if len(raw) < EventSize {
		return Event{}, false
	}
	switch le.Uint32(raw) {
	case typeKeyDown, typeKeyUp:
		return Event{
			Kind:     KindKey,
			Pressed:  raw[12] != 0,
			Repeat:   raw[13] != 0,
			Scancode: i32(raw, 16),
			Keycode:  i32(raw, 20),
			Modifier: le.Uint16(raw[24:]),
		}, true
	case typeTextInput:
		text := raw[12:44]
		if i := bytes.IndexByte(text, 0); i >= 0 {
			text = text[:i]
		}
		return Event{Kind: KindText, Text: string(text)}, true
	case typeMouseMotion:
		return Event{Kind: KindCursor, X: i32(raw, 20), Y: i32(raw, 24)}, true
	case typeMouseDown, typeMouseUp:
		return Event{
			Kind:    KindButton,
			Button:  raw[16],
			Pressed: raw[17] != 0,
			X:       i32(raw, 20),
			Y:       i32(raw, 24),
		}, true
	case typeMouseWheel:
		return Event{Kind: KindWheel, X: i32(raw, 16), Y: i32(raw, 20)}, true
	case typeWindow:
		return decodeWindow(raw)
	}
	return Event{}, false
}

func decodeWindow(raw []byte) (Event, bool) {
	switch raw[12] {
	case windowFocusGained, windowEnter:
		return Event{Kind: KindFocus, Focused: true}, true
	case windowFocusLost, windowLeave:
		return Event{Kind: KindFocus, Focused: false}, true
	case windowResized, windowSizeChanged:
		return Event{Kind: KindResize, Width: i32(raw, 16), Height: i32(raw, 20)}, true
	}
	return Event{}, false
}

// DecodeAt decodes the SDL_Event stored at address.
func DecodeAt(address uintptr) (Event, bool) {
	if address == 0 {
		return Event{}, false
	}
	return Decode(memory.View(address, EventSize))
}
