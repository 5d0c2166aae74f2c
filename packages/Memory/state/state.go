package state

import (
	"errors"
	"sync/atomic"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/config"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/entity"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/netvar"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/ui"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/utils"
)

var (
	// ErrInstalled is returned by a second Install.
	ErrInstalled = errors.New("global state already installed")

	// ErrReentrant is the panic value when state is entered from inside a
	// write closure, or written from inside any closure.
	ErrReentrant = errors.New("global state re-entered")
)

// Interfaces are the resolved game interface pointers.
type Interfaces struct {
	Client         uintptr
	Engine         uintptr
	EntityList     uintptr
	Input          uintptr
	Physics        uintptr
	MaterialSystem uintptr
	Cvar           uintptr
	Surface        uintptr
	ModelRender    uintptr
	SpatialQuery   uintptr

	// Addresses of globals that hold pointers filled in by the game after
	// its own initialization.
	ClientModeSlot uintptr
	GlobalVarsSlot uintptr
	InputSlot      uintptr
}

// Tick is view-angle bookkeeping carried between create-move and the
// render-side hooks.
type Tick struct {
	// ViewAngle is the player's own view on the last sent command.
	ViewAngle entity.Vec3
	// SentAngle is the transformed angle the server last received.
	SentAngle entity.Vec3
	HaveSent  bool
	Choked    int
}

// State is everything the hooks share.
type State struct {
	Version    utils.Version
	Interfaces Interfaces
	Props      *netvar.Offsets
	Hooks      *hook.Set
	Entities   *entity.List
	Program    *ui.Program
	Config     *config.Config
	ConfigPath string
	Tick       Tick

	// Return address inside InsertIntoTree, zero when not located.
	InsertIntoTree uintptr
	// Materials found by name.
	Materials map[string]uintptr
}

var (
	global  atomic.Pointer[State]
	readers atomic.Int32
	writing atomic.Bool
)

// Install publishes s as the single global state.
func Install(s *State) error {
	if s == nil {
		return errors.New("install nil state")
	}
	if !global.CompareAndSwap(nil, s) {
		return ErrInstalled
	}
	return nil
}

// Installed reports whether Install has run.
func Installed() bool {
	return global.Load() != nil
}

func load() *State {
	s := global.Load()
	if s == nil {
		panic("global state used before it was installed")
	}
	return s
}

// With runs f with shared access. Nested shared access is allowed.
func With(f func(s *State)) {
	if writing.Load() {
		panic(ErrReentrant)
	}
	readers.Add(1)
	defer readers.Add(-1)
	f(load())
}

// WithMut runs f with exclusive access. Any access to the state from
// inside f, or a write from inside a With closure, panics.
func WithMut(f func(s *State)) {
	if readers.Load() != 0 || !writing.CompareAndSwap(false, true) {
		panic(ErrReentrant)
	}
	defer writing.Store(false)
	f(load())
}

// Read returns a value computed under shared access.
func Read[T any](f func(s *State) T) T {
	var out T
	With(func(s *State) { out = f(s) })
	return out
}
