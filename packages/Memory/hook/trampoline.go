package hook

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/disasm"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// TrampolineSize is the length of movabs rax, imm64; jmp rax.
const TrampolineSize = 12

var (
	// ErrDisassemblyMismatch means the code at a patch site is not what the
	// hook expects.
	ErrDisassemblyMismatch = errors.New("unexpected code at patch site")

	trampolineHead = []byte{0x48, 0xB8}
	trampolineTail = []byte{0xFF, 0xE0}
)

// Trampoline encodes an absolute jump to target.
func Trampoline(target uintptr) [TrampolineSize]byte {
	var code [TrampolineSize]byte
	copy(code[0:2], trampolineHead)
	binary.LittleEndian.PutUint64(code[2:10], uint64(target))
	copy(code[10:12], trampolineTail)
	return code
}

// IsTrampoline reports whether code starts with a trampoline and returns
// its destination.
func IsTrampoline(code []byte) (uintptr, bool) {
	if len(code) < TrampolineSize ||
		!bytes.Equal(code[0:2], trampolineHead) ||
		!bytes.Equal(code[10:12], trampolineTail) {
		return 0, false
	}
	return uintptr(binary.LittleEndian.Uint64(code[2:10])), true
}

// Install overwrites the first TrampolineSize bytes at address with a jump
// to replacement and returns the bytes it displaced.
func Install(address, replacement uintptr) ([TrampolineSize]byte, error) {
	var saved [TrampolineSize]byte
	code := Trampoline(replacement)
	err := memory.WithWritable(address, TrampolineSize, func() {
		copy(saved[:], memory.View(address, TrampolineSize))
		memory.WriteBytes(address, code[:])
	})
	if err != nil {
		return saved, fmt.Errorf("install trampoline at %#x: %w", address, err)
	}
	return saved, nil
}

// ThunkTarget resolves the destination of a PLT style thunk whose body is a
// single jmp [rip+disp].
func ThunkTarget(address uintptr) (uintptr, error) {
	insts, err := disasm.DecodePrologue(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDisassemblyMismatch, err)
	}
	return thunkTarget(insts)
}

func thunkTarget(insts []disasm.Instruction) (uintptr, error) {
	if len(insts) != 1 {
		return 0, fmt.Errorf("%w: thunk has %d instructions", ErrDisassemblyMismatch, len(insts))
	}
	jmp := insts[0]
	if jmp.Inst.Op != x86asm.JMP || !jmp.Memory {
		return 0, fmt.Errorf("%w: %s is not an indirect rip-relative jump", ErrDisassemblyMismatch, jmp)
	}
	return memory.ReadPointer(jmp.Target), nil
}
