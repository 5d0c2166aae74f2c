package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"
)

func TestDecodeBytesStopsAtFirstNonFallthrough(t *testing.T) {
	for _, tc := range []struct {
		name      string
		code      []byte
		mnemonics []string
		flow      Flow
	}{
		{
			name: "push-mov-ret",
			// push rbp; mov rbp, rsp; pop rbp; ret; nop
			code:      []byte{0x55, 0x48, 0x89, 0xE5, 0x5D, 0xC3, 0x90},
			mnemonics: []string{"PUSH", "MOV", "POP", "RET"},
			flow:      FlowReturn,
		},
		{
			name: "call",
			// sub rsp, 8; call rel32; ret
			code:      []byte{0x48, 0x83, 0xEC, 0x08, 0xE8, 0x00, 0x00, 0x00, 0x00, 0xC3},
			mnemonics: []string{"SUB", "CALL"},
			flow:      FlowCall,
		},
		{
			name: "conditional",
			// test edi, edi; je +2; ret
			code:      []byte{0x85, 0xFF, 0x74, 0x02, 0xC3},
			mnemonics: []string{"TEST", "JE"},
			flow:      FlowConditionalJump,
		},
		{
			name:      "ud2",
			code:      []byte{0x0F, 0x0B, 0xC3},
			mnemonics: []string{"UD2"},
			flow:      FlowException,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			insts, err := DecodeBytes(tc.code, 0x1000)
			require.NoError(t, err)
			require.Len(t, insts, len(tc.mnemonics))
			for i, m := range tc.mnemonics {
				assert.Equal(t, m, insts[i].Mnemonic)
			}
			assert.Equal(t, tc.flow, insts[len(insts)-1].Flow)
			assert.Equal(t, uintptr(0x1000), insts[0].IP)
		})
	}
}

func TestDecodeBytesRipRelativeJump(t *testing.T) {
	// jmp qword ptr [rip+0x200b12]
	code := []byte{0xFF, 0x25, 0x12, 0x0B, 0x20, 0x00}
	ip := uintptr(0x7f0000401000)

	insts, err := DecodeBytes(code, ip)
	require.NoError(t, err)
	require.Len(t, insts, 1)

	jmp := insts[0]
	assert.Equal(t, FlowJump, jmp.Flow)
	assert.True(t, jmp.Memory)
	assert.Equal(t, ip+uintptr(jmp.Len)+0x200b12, jmp.Target)
	assert.Equal(t, 6, jmp.Len)
}

func TestDecodeBytesNegativeDisplacement(t *testing.T) {
	// mov rax, [rip-0x10]; ret
	code := []byte{0x48, 0x8B, 0x05, 0xF0, 0xFF, 0xFF, 0xFF, 0xC3}
	insts, err := DecodeBytes(code, 0x2000)
	require.NoError(t, err)
	require.Len(t, insts, 2)

	target, ok := FirstMemoryReference(insts)
	require.True(t, ok)
	assert.Equal(t, uintptr(0x2000+7-0x10), target)
}

func TestDecodeBytesRelativeBranch(t *testing.T) {
	// jmp rel32 +0x10
	code := []byte{0xE9, 0x10, 0x00, 0x00, 0x00}
	insts, err := DecodeBytes(code, 0x4000)
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x4000+5+0x10), insts[0].Target)
	assert.False(t, insts[0].Memory)
}

func TestDecodeBytesErrors(t *testing.T) {
	_, err := DecodeBytes([]byte{0x55, 0x48, 0x89, 0xE5}, 0)
	assert.ErrorIs(t, err, ErrDecode)

	// mov with a truncated ModRM/displacement.
	_, err = DecodeBytes([]byte{0x48, 0x8B, 0x05, 0x00}, 0)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFlowOf(t *testing.T) {
	assert.Equal(t, FlowNext, flowOf(x86asm.MOV))
	assert.Equal(t, FlowJump, flowOf(x86asm.JMP))
	assert.Equal(t, "conditional-jump", flowOf(x86asm.JNE).String())
}

func TestDecodeLength(t *testing.T) {
	// push rbp; mov rbp, rsp; sub rsp, 0x10; xor rax, rax; nop; ret
	code := []byte{0x55, 0x48, 0x89, 0xE5, 0x48, 0x83, 0xEC, 0x10, 0x48, 0x31, 0xC0, 0x90, 0xC3}

	insts, err := DecodeLength(code, 0x1000, 12)
	require.NoError(t, err)
	require.Len(t, insts, 5)
	assert.Equal(t, uintptr(0x1000+12), insts[len(insts)-1].Next())

	_, err = DecodeLength(code[:6], 0x1000, 12)
	assert.ErrorIs(t, err, ErrDecode)
}
