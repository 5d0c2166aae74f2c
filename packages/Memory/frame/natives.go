package frame

import (
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/utils"
)

// Hook identifiers.
const (
	HookSwapWindow       hook.ID = "sdl.swap_window"
	HookPollEvent        hook.ID = "sdl.poll_event"
	HookFrameStageNotify hook.ID = "client.frame_stage_notify"
	HookCreateMove       hook.ID = "client_mode.create_move"
	HookOverrideView     hook.ID = "client_mode.override_view"
	HookDrawModel        hook.ID = "model_render.draw_model_execute"
	HookListLeavesInBox  hook.ID = "spatial_query.list_leaves_in_box"
	HookLog              hook.ID = "tier0.logging_system_log"
	HookLogDirect        hook.ID = "tier0.logging_system_log_direct"
)

// Natives is what the interceptors need from the game: the originals of
// the hooked functions and a few direct calls.
type Natives interface {
	SwapWindow(window uintptr)
	PollEvent(event uintptr) int32
	FrameStageNotify(self uintptr, stage Stage)
	CreateMove(self uintptr, sample float32, cmd uintptr) bool
	OverrideView(self, setup uintptr)
	DrawModel(self, ctx, state, info, bones uintptr)
	ListLeavesInBox(self, mins, maxs, list uintptr, max int32) int32

	WindowTitle(window uintptr) string
	FindMaterial(system uintptr, name string) uintptr
	ForceMaterial(modelRender, material uintptr)
	Modulate(material uintptr, rgba [4]float32)
	RenderableEntity(renderable uintptr) uintptr
}

// Chain calls the originals recorded in a hook set.
type Chain struct {
	Hooks *hook.Set
	Slots utils.Slots
	// SDL_GetWindowTitle.
	GetWindowTitle uintptr
}

func (c *Chain) SwapWindow(window uintptr) {
	abi.CallSwapWindow(c.Hooks.Original(HookSwapWindow), window)
}

func (c *Chain) PollEvent(event uintptr) int32 {
	return abi.CallPollEvent(c.Hooks.Original(HookPollEvent), event)
}

func (c *Chain) FrameStageNotify(self uintptr, stage Stage) {
	abi.CallFrameStageNotify(c.Hooks.Original(HookFrameStageNotify), self, int32(stage))
}

func (c *Chain) CreateMove(self uintptr, sample float32, cmd uintptr) bool {
	return abi.CallCreateMove(c.Hooks.Original(HookCreateMove), self, sample, cmd)
}

func (c *Chain) OverrideView(self, setup uintptr) {
	abi.Call(c.Hooks.Original(HookOverrideView), self, setup)
}

func (c *Chain) DrawModel(self, ctx, state, info, bones uintptr) {
	abi.CallDrawModel(c.Hooks.Original(HookDrawModel), self, ctx, state, info, bones)
}

func (c *Chain) ListLeavesInBox(self, mins, maxs, list uintptr, max int32) int32 {
	return abi.CallListLeavesInBox(c.Hooks.Original(HookListLeavesInBox), self, mins, maxs, list, max)
}

func (c *Chain) WindowTitle(window uintptr) string {
	if c.GetWindowTitle == 0 {
		return ""
	}
	return memory.ReadString(abi.Call(c.GetWindowTitle, window), 256)
}

const textureGroupModel = "Model textures"

func (c *Chain) FindMaterial(system uintptr, name string) uintptr {
	if system == 0 {
		return 0
	}
	fn := hook.ReadSlot(system, c.Slots.FindMaterial)
	material := abi.Call(fn, system, abi.CString(name), abi.CString(textureGroupModel), 1, 0)
	if material != 0 {
		abi.Call(hook.ReadSlot(material, c.Slots.IncrementRef), material)
	}
	return material
}

func (c *Chain) ForceMaterial(modelRender, material uintptr) {
	fn := hook.ReadSlot(modelRender, c.Slots.ForcedMaterialOverride)
	// OVERRIDE_NORMAL, every material index.
	abi.Call(fn, modelRender, material, 0, ^uintptr(0))
}

func (c *Chain) Modulate(material uintptr, rgba [4]float32) {
	abi.CallFloat3(hook.ReadSlot(material, c.Slots.ColorModulate), material, rgba[0], rgba[1], rgba[2])
	abi.CallFloat1(hook.ReadSlot(material, c.Slots.AlphaModulate), material, rgba[3])
}

func (c *Chain) RenderableEntity(renderable uintptr) uintptr {
	if renderable == 0 {
		return 0
	}
	unknown := abi.Call(hook.ReadSlot(renderable, c.Slots.GetClientUnknown), renderable)
	if unknown == 0 {
		return 0
	}
	return abi.Call(hook.ReadSlot(unknown, c.Slots.GetBaseEntity), unknown)
}
