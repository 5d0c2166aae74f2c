package frame

import (
	"unsafe"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/entity"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/netvar"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
)

const (
	classFogController     = "CFogController"
	classTonemapController = "CEnvTonemapController"
	classPlayer            = "CCSPlayer"

	maxPlayers = 64
)

// Packs an RGB colour in [0, 1] as the game's color32, opaque.
func color32(rgb [3]float32) uint32 {
	var c uint32
	for i, v := range rgb {
		c |= uint32(v*255+0.5) << (8 * i)
	}
	return c | 0xFF<<24
}

func applyFog() {
	state.With(func(s *state.State) {
		if s.Entities == nil || s.Config == nil || !s.Config.Fog.Enabled {
			return
		}
		fog := s.Config.Fog
		color := color32(fog.Color)
		for _, ref := range s.Entities.OfClass(classFogController) {
			entity.SetField(ref, netvar.FogEnable, true)
			entity.SetField(ref, netvar.FogBlend, false)
			entity.SetField(ref, netvar.FogColorPrimary, color)
			entity.SetField(ref, netvar.FogColorSecondary, color)
			entity.SetField(ref, netvar.FogStart, fog.Start)
			entity.SetField(ref, netvar.FogEnd, fog.End)
			entity.SetField(ref, netvar.FogMaxDensity, fog.MaxDensity)
		}
	})
}

func applyTonemap() {
	state.With(func(s *state.State) {
		if s.Entities == nil || s.Config == nil || !s.Config.Tonemap.Enabled {
			return
		}
		tm := s.Config.Tonemap
		for _, ref := range s.Entities.OfClass(classTonemapController) {
			entity.SetField(ref, netvar.TonemapUseExposureMin, true)
			entity.SetField(ref, netvar.TonemapUseExposureMax, true)
			entity.SetField(ref, netvar.TonemapUseBloomScale, true)
			entity.SetField(ref, netvar.TonemapExposureMin, tm.ExposureMin)
			entity.SetField(ref, netvar.TonemapExposureMax, tm.ExposureMax)
			entity.SetField(ref, netvar.TonemapBloomScale, tm.BloomScale)
		}
	})
}

// applyThirdPersonAngles shows the local model with the angles the server
// last received.
func applyThirdPersonAngles() {
	state.With(func(s *state.State) {
		if s.Entities == nil || s.Config == nil || !s.Config.ThirdPerson || !s.Tick.HaveSent {
			return
		}
		local, ok := s.Entities.LocalPlayer()
		if !ok || !local.Alive() {
			return
		}
		local.SetViewAngle(s.Tick.SentAngle)
	})
}

// OverrideView puts the camera back on the player's own view and applies
// the thirdperson camera before chaining.
func (d *Dispatcher) OverrideView(self, setup uintptr) {
	guard("override_view", func() {
		state.With(func(s *state.State) { d.overrideView(s, setup) })
	})
	d.natives.OverrideView(self, setup)
}

// overrideView clears the game's thirdperson flag only on the frame
// thirdperson turns off.
func (d *Dispatcher) overrideView(s *state.State, setup uintptr) {
	off := s.Version.Offsets
	if setup != 0 && s.Tick.HaveSent {
		memory.Write(setup+off.ViewSetupAngles, s.Tick.ViewAngle)
	}
	if s.Interfaces.InputSlot == 0 || s.Config == nil {
		return
	}
	input := memory.ReadPointer(s.Interfaces.InputSlot)
	if input == 0 {
		return
	}
	third := s.Config.ThirdPerson && s.Tick.HaveSent
	switch {
	case third:
		memory.Write(input+off.InputThirdPerson, true)
		memory.Write(input+off.InputCameraOffset, entity.Vec3{
			X: s.Tick.ViewAngle.X,
			Y: s.Tick.ViewAngle.Y,
			Z: s.Config.ThirdPersonDistance,
		})
	case d.thirdPerson:
		memory.Write(input+off.InputThirdPerson, false)
	}
	d.thirdPerson = third
}

// DrawModel renders players a second time with the override material when
// one is configured.
func (d *Dispatcher) DrawModel(self, ctx, st, info, bones uintptr) {
	var material uintptr
	var chroma [4]float32
	guard("material", func() {
		state.WithMut(func(s *state.State) {
			material, chroma = d.overrideMaterial(s, info)
		})
	})

	d.natives.DrawModel(self, ctx, st, info, bones)
	if material == 0 {
		return
	}
	guard("material", func() {
		d.natives.Modulate(material, chroma)
		d.natives.ForceMaterial(self, material)
		d.natives.DrawModel(self, ctx, st, info, bones)
	})
	d.natives.ForceMaterial(self, 0)
}

func (d *Dispatcher) overrideMaterial(s *state.State, info uintptr) (uintptr, [4]float32) {
	if s.Config == nil || !s.Config.Material.Enabled || info == 0 {
		return 0, [4]float32{}
	}
	index := memory.ReadInt32(info + s.Version.Offsets.RenderInfoEntityIndex)
	if index < 1 || index > maxPlayers {
		return 0, [4]float32{}
	}
	return d.material(s), s.Config.Material.Chroma
}

func (d *Dispatcher) material(s *state.State) uintptr {
	if len(s.Version.Materials) == 0 {
		return 0
	}
	name := s.Version.Materials[0]
	if m, ok := s.Materials[name]; ok {
		return m
	}
	m := d.natives.FindMaterial(s.Interfaces.MaterialSystem, name)
	if s.Materials == nil {
		s.Materials = make(map[string]uintptr)
	}
	s.Materials[name] = m
	if m == 0 {
		log.WithField("material", name).Warn("Override material not found")
	}
	return m
}

// Query box covering the whole world.
var leafBounds = [2][3]float32{
	{-16384, -16384, -16384},
	{16384, 16384, 16384},
}

// ListLeavesInBox widens the query box for player renderables inserted by
// CClientLeafSystem::InsertIntoTree, placing them in every leaf.
func (d *Dispatcher) ListLeavesInBox(self, mins, maxs, list uintptr, limit int32, ret, frame uintptr) int32 {
	widen := false
	guard("leaf_override", func() {
		state.With(func(s *state.State) { widen = d.widenLeaves(s, ret, frame) })
	})
	if widen {
		mins = uintptr(unsafe.Pointer(&leafBounds[0]))
		maxs = uintptr(unsafe.Pointer(&leafBounds[1]))
	}
	return d.natives.ListLeavesInBox(self, mins, maxs, list, limit)
}

func (d *Dispatcher) widenLeaves(s *state.State, ret, frame uintptr) bool {
	if s.Config == nil || !s.Config.LeafOverride || s.Entities == nil {
		return false
	}
	if s.InsertIntoTree == 0 || ret != s.InsertIntoTree || frame == 0 {
		return false
	}
	info := memory.ReadPointer(frame - s.Version.Offsets.LeafRenderableInfo)
	if info == 0 {
		return false
	}
	address := d.natives.RenderableEntity(memory.ReadPointer(info))
	ref, ok := s.Entities.At(address)
	return ok && ref.Class() == classPlayer
}
