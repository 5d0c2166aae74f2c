package disasm

import (
	"errors"
	"fmt"

	"golang.org/x/arch/x86/x86asm"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// ErrDecode is returned when the byte stream is not a valid instruction.
var ErrDecode = errors.New("cannot decode instruction")

// maxPrologue bounds how far a prologue scan may run.
const maxPrologue = 4096

// Flow classifies how control leaves an instruction.
type Flow uint8

const (
	FlowNext Flow = iota
	FlowCall
	FlowReturn
	FlowJump
	FlowConditionalJump
	FlowException
)

func (f Flow) String() string {
	switch f {
	case FlowNext:
		return "next"
	case FlowCall:
		return "call"
	case FlowReturn:
		return "return"
	case FlowJump:
		return "jump"
	case FlowConditionalJump:
		return "conditional-jump"
	case FlowException:
		return "exception"
	}
	return fmt.Sprintf("flow(%d)", uint8(f))
}

// Instruction is one decoded instruction.
type Instruction struct {
	IP       uintptr
	Len      int
	Mnemonic string
	Flow     Flow
	// Target is the absolute address referenced RIP-relatively (memory
	// operand or relative branch), zero when there is none.
	Target uintptr
	// Memory reports whether Target is a memory operand rather than a
	// branch destination.
	Memory bool

	Inst x86asm.Inst
}

func (i Instruction) String() string {
	return fmt.Sprintf("%#x: %s", i.IP, x86asm.IntelSyntax(i.Inst, uint64(i.IP), nil))
}

// Next is the address of the following instruction.
func (i Instruction) Next() uintptr {
	return i.IP + uintptr(i.Len)
}

func flowOf(op x86asm.Op) Flow {
	switch op {
	case x86asm.CALL, x86asm.LCALL, x86asm.SYSCALL:
		return FlowCall
	case x86asm.RET, x86asm.LRET, x86asm.IRET, x86asm.IRETD, x86asm.IRETQ, x86asm.SYSRET:
		return FlowReturn
	case x86asm.JMP, x86asm.LJMP:
		return FlowJump
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ, x86asm.JE, x86asm.JECXZ,
		x86asm.JG, x86asm.JGE, x86asm.JL, x86asm.JLE, x86asm.JNE, x86asm.JNO, x86asm.JNP,
		x86asm.JNS, x86asm.JO, x86asm.JP, x86asm.JRCXZ, x86asm.JS,
		x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE:
		return FlowConditionalJump
	case x86asm.UD1, x86asm.UD2, x86asm.INT, x86asm.INTO, x86asm.HLT:
		return FlowException
	}
	return FlowNext
}

func decodeAt(code []byte, ip uintptr) (Instruction, error) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("%w at %#x: %v", ErrDecode, ip, err)
	}
	out := Instruction{
		IP:       ip,
		Len:      inst.Len,
		Mnemonic: inst.Op.String(),
		Flow:     flowOf(inst.Op),
		Inst:     inst,
	}
	next := ip + uintptr(inst.Len)
	for _, arg := range inst.Args {
		switch a := arg.(type) {
		case x86asm.Mem:
			if a.Base == x86asm.RIP {
				out.Target = uintptr(int64(next) + a.Disp)
				out.Memory = true
			}
		case x86asm.Rel:
			out.Target = uintptr(int64(next) + int64(a))
		}
	}
	return out, nil
}

// DecodeBytes decodes code as if it were located at ip, stopping after the
// first instruction that does not fall through. Running out of bytes before
// that instruction is a decode error.
func DecodeBytes(code []byte, ip uintptr) ([]Instruction, error) {
	var out []Instruction
	offset := 0
	for offset < len(code) {
		inst, err := decodeAt(code[offset:], ip+uintptr(offset))
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
		if inst.Flow != FlowNext {
			return out, nil
		}
		offset += inst.Len
	}
	return nil, fmt.Errorf("%w: no terminating instruction within %d bytes at %#x", ErrDecode, len(code), ip)
}

// DecodePrologue decodes the live code at address. The scan is bounded by
// the contiguous executable range containing address.
func DecodePrologue(address uintptr) ([]Instruction, error) {
	maps, err := memory.CurrentMaps()
	if err != nil {
		return nil, err
	}
	return DecodePrologueIn(maps, address)
}

// DecodePrologueIn is DecodePrologue against a previously captured table.
func DecodePrologueIn(maps memory.Maps, address uintptr) ([]Instruction, error) {
	r, ok := maps.ExecutableRange(address)
	if !ok {
		return nil, fmt.Errorf("%w: %#x is not executable", ErrDecode, address)
	}
	size := int(r.End - address)
	if size > maxPrologue {
		size = maxPrologue
	}
	return DecodeBytes(memory.View(address, size), address)
}

// LastInstruction returns the terminating instruction of the prologue at
// address.
func LastInstruction(address uintptr) (Instruction, error) {
	insts, err := DecodePrologue(address)
	if err != nil {
		return Instruction{}, err
	}
	return insts[len(insts)-1], nil
}

// FirstMemoryReference returns the target of the first RIP-relative memory
// operand among insts.
func FirstMemoryReference(insts []Instruction) (uintptr, bool) {
	for _, inst := range insts {
		if inst.Memory && inst.Target != 0 {
			return inst.Target, true
		}
	}
	return 0, false
}

// DecodeLength decodes whole instructions from code until at least min
// bytes are covered, without regard to control flow.
func DecodeLength(code []byte, ip uintptr, min int) ([]Instruction, error) {
	var out []Instruction
	offset := 0
	for offset < min {
		if offset >= len(code) {
			return nil, fmt.Errorf("%w: %d bytes needed at %#x, %d available", ErrDecode, min, ip, len(code))
		}
		inst, err := decodeAt(code[offset:], ip+uintptr(offset))
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
		offset += inst.Len
	}
	return out, nil
}
