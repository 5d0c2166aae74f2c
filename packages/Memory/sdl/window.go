package sdl

import (
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "sdl")

// TitleFunc returns the title of a window, or "" if it has none yet.
type TitleFunc func(window uintptr) string

// Latch reports a window ready once it has shown a non-empty title. Before
// that the game has not finished its first frame and rendering would race
// with it.
type Latch struct {
	title TitleFunc
	ready bool
	seen  int
}

func NewLatch(title TitleFunc) *Latch {
	return &Latch{title: title}
}

// Ready checks the title until the first non-empty one, then stays true.
func (l *Latch) Ready(window uintptr) bool {
	if l.ready {
		return true
	}
	l.seen++
	if title := l.title(window); title != "" {
		l.ready = true
		log.WithField("title", title).WithField("swaps", l.seen).Info("Window is ready")
	}
	return l.ready
}

// NativeTitle calls SDL_GetWindowTitle at fn.
func NativeTitle(fn uintptr) TitleFunc {
	return func(window uintptr) string {
		return memory.ReadString(abi.Call(fn, window), 256)
	}
}
