package ui

import (
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/sdl"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "ui")

const maxQueued = 256

// Renderer draws one overlay frame from the events gathered since the
// previous one.
type Renderer interface {
	Render(frame Frame)
}

// Frame is the input to one render pass.
type Frame struct {
	Number  uint64
	Open    bool
	Focused bool
	Cursor  [2]int32
	Size    [2]int32
	Events  []sdl.Event
}

// Program is the overlay's persistent state between frames.
type Program struct {
	Open    bool
	Focused bool
	Cursor  [2]int32
	Size    [2]int32

	frames   uint64
	queue    []sdl.Event
	dropped  int
	renderer Renderer
	onToggle func(open bool)
}

func NewProgram(renderer Renderer) *Program {
	return &Program{Focused: true, renderer: renderer}
}

// OnToggle registers f to run whenever the overlay opens or closes.
func (p *Program) OnToggle(f func(open bool)) {
	p.onToggle = f
}

// Handle records an event. It reports whether the overlay consumed the
// event, in which case the game should not act on it.
func (p *Program) Handle(ev sdl.Event) bool {
	switch ev.Kind {
	case sdl.KindKey:
		if ev.Pressed && !ev.Repeat && ev.Scancode == sdl.ScancodeInsert {
			p.toggle()
			return true
		}
		if p.Open && ev.Pressed && ev.Scancode == sdl.ScancodeEscape {
			p.toggle()
			return true
		}
	case sdl.KindCursor:
		p.Cursor = [2]int32{ev.X, ev.Y}
	case sdl.KindFocus:
		p.Focused = ev.Focused
	case sdl.KindResize:
		p.Size = [2]int32{ev.Width, ev.Height}
	}

	if len(p.queue) < maxQueued {
		p.queue = append(p.queue, ev)
	} else {
		p.dropped++
	}
	return p.Open && ev.Kind != sdl.KindFocus && ev.Kind != sdl.KindResize
}

func (p *Program) toggle() {
	p.Open = !p.Open
	log.WithField("open", p.Open).Debug("Overlay toggled")
	if p.onToggle != nil {
		p.onToggle(p.Open)
	}
}

// Render runs one pass of the overlay pipeline. The queued events are handed
// to the renderer, which may keep them, and a new queue is started.
func (p *Program) Render() {
	p.frames++
	if p.dropped > 0 {
		log.WithField("dropped", p.dropped).Warn("Overlay event queue overflowed")
		p.dropped = 0
	}
	frame := Frame{
		Number:  p.frames,
		Open:    p.Open,
		Focused: p.Focused,
		Cursor:  p.Cursor,
		Size:    p.Size,
		Events:  p.queue,
	}
	p.queue = nil
	if p.renderer != nil {
		p.renderer.Render(frame)
	}
}

// Frames returns how many render passes have run.
func (p *Program) Frames() uint64 {
	return p.frames
}
