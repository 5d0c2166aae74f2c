package config

import "fmt"

// Pitch selects the pitch written into outgoing commands.
type Pitch uint8

const (
	PitchDefault Pitch = iota
	PitchUp
	PitchDown
	PitchZero
	PitchJitter
)

var pitchNames = []string{"default", "up", "down", "zero", "jitter"}

func (p Pitch) valid() bool { return int(p) < len(pitchNames) }

func (p Pitch) String() string {
	if !p.valid() {
		return fmt.Sprintf("pitch(%d)", uint8(p))
	}
	return pitchNames[p]
}

func (p Pitch) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("invalid pitch %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Pitch) UnmarshalText(text []byte) error {
	for i, name := range pitchNames {
		if name == string(text) {
			*p = Pitch(i)
			return nil
		}
	}
	return fmt.Errorf("unknown pitch %q", text)
}

// YawBase selects what the yaw offset is relative to.
type YawBase uint8

const (
	YawBaseView YawBase = iota
	YawBaseFixed
)

var yawBaseNames = []string{"view", "fixed"}

func (y YawBase) valid() bool { return int(y) < len(yawBaseNames) }

func (y YawBase) String() string {
	if !y.valid() {
		return fmt.Sprintf("yaw_base(%d)", uint8(y))
	}
	return yawBaseNames[y]
}

func (y YawBase) MarshalText() ([]byte, error) {
	if !y.valid() {
		return nil, fmt.Errorf("invalid yaw base %d", uint8(y))
	}
	return []byte(y.String()), nil
}

func (y *YawBase) UnmarshalText(text []byte) error {
	for i, name := range yawBaseNames {
		if name == string(text) {
			*y = YawBase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown yaw base %q", text)
}
