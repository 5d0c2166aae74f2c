package hook

import (
	"fmt"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// VTableOf reads the vtable pointer stored in the first word of an Itanium
// ABI object.
func VTableOf(object uintptr) uintptr {
	return memory.ReadPointer(object)
}

func slotAddress(object uintptr, index int) uintptr {
	return VTableOf(object) + uintptr(index)*memory.PointerSize
}

// ReadSlot returns entry index of the object's vtable.
func ReadSlot(object uintptr, index int) uintptr {
	return memory.ReadPointer(slotAddress(object, index))
}

// ReplaceSlot swaps entry index of the object's vtable for fn and returns
// the previous entry. The vtable page keeps its permissions afterwards.
func ReplaceSlot(object uintptr, index int, fn uintptr) (uintptr, error) {
	if object == 0 {
		return 0, fmt.Errorf("replace slot %d: nil object", index)
	}
	slot := slotAddress(object, index)
	var old uintptr
	err := memory.WithWritable(slot, memory.PointerSize, func() {
		old = memory.ReadPointer(slot)
		memory.WritePointer(slot, fn)
	})
	if err != nil {
		return 0, fmt.Errorf("replace slot %d of %#x: %w", index, object, err)
	}
	return old, nil
}
