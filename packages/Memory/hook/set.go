package hook

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "hook")

// ErrDoubleHook means a site or identifier is already hooked.
var ErrDoubleHook = errors.New("already hooked")

// ID names a hook for chaining through Set.Original.
type ID string

type Kind uint8

const (
	KindInline Kind = iota
	KindThunk
	KindVTable
)

func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindThunk:
		return "thunk"
	case KindVTable:
		return "vtable"
	}
	return "unknown"
}

// Hook records one installed replacement.
type Hook struct {
	ID        ID
	Kind      Kind
	Requester string
	// Address is the patched code address, or the vtable slot address.
	Address uintptr
	Object  uintptr
	Slot    int
	// Original is the callable the replacement chains to. Zero when the
	// displaced code could not be relocated.
	Original uintptr
	// Saved holds the bytes a trampoline displaced.
	Saved [TrampolineSize]byte
}

// Set is the registry of every replacement made in the process.
type Set struct {
	mu    sync.Mutex
	hooks map[ID]*Hook
	sites map[uintptr]ID
}

func NewSet() *Set {
	return &Set{
		hooks: make(map[ID]*Hook),
		sites: make(map[uintptr]ID),
	}
}

func (s *Set) reserve(id ID, site uintptr) error {
	if _, ok := s.hooks[id]; ok {
		return fmt.Errorf("%w: %s", ErrDoubleHook, id)
	}
	if other, ok := s.sites[site]; ok {
		return fmt.Errorf("%w: %#x is owned by %s", ErrDoubleHook, site, other)
	}
	return nil
}

func (s *Set) record(h *Hook) {
	s.hooks[h.ID] = h
	s.sites[h.Address] = h.ID
	log.WithFields(logrus.Fields{
		logfields.Hook:      h.ID,
		logfields.Requester: h.Requester,
		logfields.Address:   fmt.Sprintf("%#x", h.Address),
		logfields.Original:  fmt.Sprintf("%#x", h.Original),
	}).Debugf("Installed %s hook", h.Kind)
}

// InstallInline trampolines address into replacement. When relocate is set
// the displaced prologue is moved into a gateway that becomes the original.
func (s *Set) InstallInline(id ID, requester string, address, replacement uintptr, relocate bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reserve(id, address); err != nil {
		return err
	}
	h := &Hook{ID: id, Kind: KindInline, Requester: requester, Address: address}
	if relocate {
		gateway, err := Relocate(address)
		if err != nil {
			return fmt.Errorf("hook %s: %w", id, err)
		}
		h.Original = gateway
	}
	saved, err := Install(address, replacement)
	if err != nil {
		return fmt.Errorf("hook %s: %w", id, err)
	}
	h.Saved = saved
	s.record(h)
	return nil
}

// InstallThunk resolves the jump target of a thunk, keeps it as the
// original and then trampolines the thunk into replacement.
func (s *Set) InstallThunk(id ID, requester string, address, replacement uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reserve(id, address); err != nil {
		return err
	}
	original, err := ThunkTarget(address)
	if err != nil {
		return fmt.Errorf("hook %s: %w", id, err)
	}
	saved, err := Install(address, replacement)
	if err != nil {
		return fmt.Errorf("hook %s: %w", id, err)
	}
	s.record(&Hook{
		ID:        id,
		Kind:      KindThunk,
		Requester: requester,
		Address:   address,
		Original:  original,
		Saved:     saved,
	})
	return nil
}

// ReplaceSlot swaps slot index of object's vtable for replacement.
func (s *Set) ReplaceSlot(id ID, requester string, object uintptr, index int, replacement uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if object == 0 {
		return fmt.Errorf("hook %s: nil object", id)
	}
	site := slotAddress(object, index)
	if err := s.reserve(id, site); err != nil {
		return err
	}
	original, err := ReplaceSlot(object, index, replacement)
	if err != nil {
		return fmt.Errorf("hook %s: %w", id, err)
	}
	s.record(&Hook{
		ID:        id,
		Kind:      KindVTable,
		Requester: requester,
		Address:   site,
		Object:    object,
		Slot:      index,
		Original:  original,
	})
	return nil
}

// Original returns the callable a replacement chains to. Asking for a hook
// that was never installed is a programming error.
func (s *Set) Original(id ID) uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hooks[id]
	if !ok {
		panic(fmt.Sprintf("hook %s is not installed", id))
	}
	return h.Original
}

func (s *Set) Installed(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.hooks[id]
	return ok
}

// Hooks lists the installed hooks ordered by address.
func (s *Set) Hooks() []Hook {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Hook, 0, len(s.hooks))
	for _, h := range s.hooks {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}
