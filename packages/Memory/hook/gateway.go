package hook

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/disasm"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// resumeSize is the length of the jump a gateway ends with:
// jmp qword [rip+0] followed by the 8 byte destination.
const resumeSize = 14

var resumeHead = []byte{0xFF, 0x25, 0x00, 0x00, 0x00, 0x00}

// resumeJump encodes an absolute jump to target that leaves every register
// as the relocated prologue left it.
func resumeJump(target uintptr) [resumeSize]byte {
	var code [resumeSize]byte
	copy(code[:6], resumeHead)
	binary.LittleEndian.PutUint64(code[6:], uint64(target))
	return code
}

// resumeTarget decodes a jump written by resumeJump.
func resumeTarget(code []byte) (uintptr, bool) {
	if len(code) < resumeSize || !bytes.Equal(code[:6], resumeHead) {
		return 0, false
	}
	return uintptr(binary.LittleEndian.Uint64(code[6:resumeSize])), true
}

// gatewayArena hands out executable memory for relocated prologues. Pages
// are never returned.
type gatewayArena struct {
	mu   sync.Mutex
	page []byte
	used int
}

var gateways gatewayArena

func (a *gatewayArena) alloc(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.page == nil || a.used+size > len(a.page) {
		page, err := unix.Mmap(-1, 0, int(memory.PageSize()),
			unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC, unix.MAP_PRIVATE|unix.MAP_ANON)
		if err != nil {
			return nil, fmt.Errorf("allocate gateway page: %w", err)
		}
		a.page, a.used = page, 0
	}
	out := a.page[a.used : a.used+size : a.used+size]
	a.used += (size + 15) &^ 15
	if a.used > len(a.page) {
		a.used = len(a.page)
	}
	return out, nil
}

// relocatable decodes whole instructions at least TrampolineSize long from
// code that can be moved without fixups.
func relocatable(code []byte, ip uintptr) (int, error) {
	insts, err := disasm.DecodeLength(code, ip, TrampolineSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDisassemblyMismatch, err)
	}
	size := 0
	for _, inst := range insts {
		if inst.Target != 0 {
			return 0, fmt.Errorf("%w: %s is position dependent", ErrDisassemblyMismatch, inst)
		}
		if inst.Flow != disasm.FlowNext {
			return 0, fmt.Errorf("%w: %s leaves the prologue", ErrDisassemblyMismatch, inst)
		}
		size += inst.Len
	}
	return size, nil
}

// buildGateway lays out the displaced prologue followed by a jump back to
// the first byte after it.
func buildGateway(dst []byte, prologue []byte, resume uintptr) {
	copy(dst, prologue)
	back := resumeJump(resume)
	copy(dst[len(prologue):], back[:])
}

// Relocate copies the prologue at address into executable memory and
// returns a callable that behaves like the unpatched function. It must run
// before the prologue is overwritten.
func Relocate(address uintptr) (uintptr, error) {
	maps, err := memory.CurrentMaps()
	if err != nil {
		return 0, err
	}
	r, ok := maps.ExecutableRange(address)
	if !ok {
		return 0, fmt.Errorf("%w: %#x is not executable", ErrDisassemblyMismatch, address)
	}
	window := int(r.End - address)
	if window > 64 {
		window = 64
	}
	code := memory.View(address, window)
	size, err := relocatable(code, address)
	if err != nil {
		return 0, err
	}
	dst, err := gateways.alloc(size + resumeSize)
	if err != nil {
		return 0, err
	}
	buildGateway(dst, code[:size], address+uintptr(size))
	return memory.AddressOf(dst), nil
}
