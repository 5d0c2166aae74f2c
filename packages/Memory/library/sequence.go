package library

import (
	"errors"
	"fmt"
)

const (
	Launcher = "launcher"
	Tier0    = "libtier0"
)

// ErrOrder means modules were requested out of their required order.
var ErrOrder = errors.New("module initialization order violated")

type Phase uint8

const (
	PhaseLauncher Phase = iota
	PhaseTier0
	PhaseModules
	PhaseLaunched
)

func (p Phase) String() string {
	switch p {
	case PhaseLauncher:
		return "launcher"
	case PhaseTier0:
		return "tier0"
	case PhaseModules:
		return "modules"
	case PhaseLaunched:
		return "launched"
	}
	return "unknown"
}

// OrderError names the module that had to come next.
type OrderError struct {
	Expected string
	Got      string
	Phase    Phase
}

func (e *OrderError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("%v: %s requested during %s", ErrOrder, e.Got, e.Phase)
	}
	return fmt.Sprintf("%v: %s must be loaded before %s", ErrOrder, e.Expected, e.Got)
}

func (e *OrderError) Unwrap() error {
	return ErrOrder
}

// Sequencer enforces launcher, then tier0, then every other module, then
// LauncherMain.
type Sequencer struct {
	phase Phase
}

func (s *Sequencer) Phase() Phase {
	return s.phase
}

// Check reports whether name may be loaded now without advancing the phase.
func (s *Sequencer) Check(name string) error {
	switch s.phase {
	case PhaseLauncher:
		if name != Launcher {
			return &OrderError{Expected: Launcher, Got: name, Phase: s.phase}
		}
	case PhaseTier0:
		if name != Tier0 {
			return &OrderError{Expected: Tier0, Got: name, Phase: s.phase}
		}
	case PhaseLaunched:
		return &OrderError{Got: name, Phase: s.phase}
	}
	return nil
}

// Admit records that name was loaded and advances the phase.
func (s *Sequencer) Admit(name string) error {
	if err := s.Check(name); err != nil {
		return err
	}
	switch s.phase {
	case PhaseLauncher:
		s.phase = PhaseTier0
	case PhaseTier0:
		s.phase = PhaseModules
	}
	return nil
}

// Launch checks that LauncherMain may run now.
func (s *Sequencer) Launch() error {
	switch s.phase {
	case PhaseModules:
		s.phase = PhaseLaunched
		return nil
	case PhaseLauncher:
		return &OrderError{Expected: Launcher, Got: "LauncherMain", Phase: s.phase}
	case PhaseTier0:
		return &OrderError{Expected: Tier0, Got: "LauncherMain", Phase: s.phase}
	}
	return &OrderError{Got: "LauncherMain", Phase: s.phase}
}
