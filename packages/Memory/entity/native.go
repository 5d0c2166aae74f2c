package entity

import (
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/utils"
)

const clientClassName = 0x10

// Native reads the entity list through the game's own interfaces.
type Native struct {
	EntityList uintptr
	Engine     uintptr
	Slots      utils.Slots
	Offsets    utils.Offsets
}

func (n Native) ClientEntity(index int32) uintptr {
	if index < 0 {
		return 0
	}
	fn := hook.ReadSlot(n.EntityList, n.Slots.GetClientEntity)
	return abi.Call(fn, n.EntityList, uintptr(index))
}

func (n Native) ClientEntityFromHandle(handle uint32) uintptr {
	fn := hook.ReadSlot(n.EntityList, n.Slots.GetClientEntityFromHandle)
	return abi.Call(fn, n.EntityList, uintptr(handle))
}

func (n Native) HighestIndex() int32 {
	fn := hook.ReadSlot(n.EntityList, n.Slots.GetHighestEntityIndex)
	return int32(abi.Call(fn, n.EntityList))
}

func (n Native) LocalPlayerIndex() int32 {
	fn := hook.ReadSlot(n.Engine, n.Slots.GetLocalPlayer)
	return int32(abi.Call(fn, n.Engine))
}

func (n Native) networkable(entity uintptr) uintptr {
	return entity + n.Offsets.Networkable
}

func (n Native) Dormant(entity uintptr) bool {
	net := n.networkable(entity)
	return abi.CallBool(hook.ReadSlot(net, n.Slots.IsDormant), net)
}

// ClassName returns the network name of the entity's client class.
func (n Native) ClassName(entity uintptr) string {
	net := n.networkable(entity)
	class := abi.Call(hook.ReadSlot(net, n.Slots.GetClientClass), net)
	if class == 0 {
		return ""
	}
	return memory.ReadString(memory.ReadPointer(class+clientClassName), 256)
}

// InGame reports whether the engine has a map loaded.
func (n Native) InGame() bool {
	return abi.CallBool(hook.ReadSlot(n.Engine, n.Slots.IsInGame), n.Engine)
}

