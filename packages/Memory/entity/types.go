package entity

import "math"

// Vec3 is a position or a (pitch, yaw, roll) angle triple in degrees.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Forward returns the unit direction of an angle triple.
func (v Vec3) Forward() Vec3 {
	pitch := float64(v.X) * math.Pi / 180
	yaw := float64(v.Y) * math.Pi / 180
	return Vec3{
		X: float32(math.Cos(pitch) * math.Cos(yaw)),
		Y: float32(math.Cos(pitch) * math.Sin(yaw)),
		Z: float32(-math.Sin(pitch)),
	}
}

// NormalizeYaw wraps degrees into [-180, 180).
func NormalizeYaw(yaw float32) float32 {
	y := math.Mod(float64(yaw)+180, 360)
	if y < 0 {
		y += 360
	}
	return float32(y - 180)
}

// Sanitize wraps yaw, clamps pitch to [-89, 89] and zeroes roll.
func (v Vec3) Sanitize() Vec3 {
	if v.X != v.X || v.Y != v.Y {
		return Vec3{}
	}
	v.X = float32(math.Max(-89, math.Min(89, float64(v.X))))
	v.Y = NormalizeYaw(v.Y)
	v.Z = 0
	return v
}

// Flags is m_fFlags.
type Flags int32

const (
	FlagOnGround Flags = 1 << 0
	FlagDucking  Flags = 1 << 1
	FlagInWater  Flags = 1 << 9
)

// Buttons is the input bitmask of a user command.
type Buttons int32

const (
	ButtonAttack  Buttons = 1 << 0
	ButtonJump    Buttons = 1 << 1
	ButtonDuck    Buttons = 1 << 2
	ButtonForward Buttons = 1 << 3
	ButtonBack    Buttons = 1 << 4
	ButtonUse     Buttons = 1 << 5
	ButtonAttack2 Buttons = 1 << 11
)

// UserCommand mirrors CUserCmd.
type UserCommand struct {
	vtable           uintptr
	CommandNumber    int32
	TickCount        int32
	ViewAngles       Vec3
	AimDirection     Vec3
	ForwardMove      float32
	SideMove         float32
	UpMove           float32
	Buttons          Buttons
	Impulse          uint8
	WeaponSelect     int32
	WeaponSubtype    int32
	RandomSeed       int32
	MouseDX          int16
	MouseDY          int16
	HasBeenPredicted bool
}

// GlobalVars mirrors CGlobalVarsBase.
type GlobalVars struct {
	RealTime            float32
	FrameCount          int32
	AbsoluteFrameTime   float32
	AbsoluteFrameStdDev float32
	CurTime             float32
	FrameTime           float32
	MaxClients          int32
	TickCount           int32
	IntervalPerTick     float32
	InterpolationAmount float32
}

// LifeState is m_lifeState.
type LifeState uint8

const (
	Alive LifeState = iota
	Dying
	Dead
)

// ObserverMode is m_iObserverMode.
type ObserverMode int32

const (
	ObserverNone ObserverMode = iota
	ObserverDeathCam
	ObserverFreezeCam
	ObserverFixed
	ObserverInEye
	ObserverChase
	ObserverRoaming
)

// Team is m_iTeamNum.
type Team int32

const (
	TeamNone Team = iota
	TeamSpectator
	TeamTerrorist
	TeamCounterTerrorist
)

// InvalidHandle is the empty entity handle.
const InvalidHandle uint32 = 0xFFFFFFFF
