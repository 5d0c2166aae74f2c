package frame

import (
	"math"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/config"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/entity"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
)

const maxMove = 450

// CreateMove lets the game fill the command, then rewrites its angles and
// movement. sendPacket points at the caller's send_packet local and is only
// valid for this call. The result is always false.
func (d *Dispatcher) CreateMove(self uintptr, sample float32, cmd uintptr, sendPacket *bool) bool {
	d.natives.CreateMove(self, sample, cmd)
	if cmd == 0 {
		return false
	}
	c := commandAt(cmd)
	if c.TickCount == 0 {
		return false
	}

	command.Store(c)
	defer command.Store(nil)

	send := true
	if sendPacket != nil {
		send = *sendPacket
	}
	for _, job := range d.commands {
		guard(job.name, func() { job.run(c, send) })
	}
	guard("command_transform", func() {
		state.WithMut(func(s *state.State) {
			send = transformCommand(s, c, send)
		})
	})
	if sendPacket != nil {
		*sendPacket = send
	}
	return false
}

// transformCommand applies fake lag and the configured angles to c and
// returns the send_packet value to use.
func transformCommand(s *state.State, c *entity.UserCommand, send bool) bool {
	cfg := s.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if cfg.FakeLag > 0 {
		if s.Tick.Choked < cfg.FakeLag {
			send = false
			s.Tick.Choked++
		} else {
			send = true
			s.Tick.Choked = 0
		}
	} else {
		s.Tick.Choked = 0
	}

	view := c.ViewAngles
	if c.Buttons&(entity.ButtonAttack|entity.ButtonAttack2|entity.ButtonUse) == 0 {
		angles := transformAngles(cfg, view, c.CommandNumber).Sanitize()
		fixMovement(c, view.Y, angles.Y)
		c.ViewAngles = angles
	}

	if send {
		s.Tick.ViewAngle = view
		s.Tick.SentAngle = c.ViewAngles
		s.Tick.HaveSent = true
	}
	return send
}

func transformAngles(cfg *config.Config, view entity.Vec3, number int32) entity.Vec3 {
	angles := view
	switch cfg.Pitch {
	case config.PitchUp:
		angles.X = -89
	case config.PitchDown:
		angles.X = 89
	case config.PitchZero:
		angles.X = 0
	case config.PitchJitter:
		if number%2 == 0 {
			angles.X = 89
		} else {
			angles.X = -89
		}
	}
	switch cfg.YawBase {
	case config.YawBaseView:
		angles.Y = view.Y + cfg.YawOffset
	case config.YawBaseFixed:
		angles.Y = cfg.YawOffset
	}
	return angles
}

// fixMovement rotates the movement vector so it keeps its world direction
// after the yaw changes from oldYaw to newYaw.
func fixMovement(c *entity.UserCommand, oldYaw, newYaw float32) {
	if oldYaw == newYaw {
		return
	}
	delta := float64(oldYaw-newYaw) * math.Pi / 180
	sin, cos := math.Sincos(delta)
	forward := float64(c.ForwardMove)
	side := float64(c.SideMove)
	c.ForwardMove = clampMove(forward*cos + side*sin)
	c.SideMove = clampMove(side*cos - forward*sin)
}

func clampMove(v float64) float32 {
	return float32(math.Max(-maxMove, math.Min(maxMove, v)))
}
