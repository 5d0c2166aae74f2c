package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("48 8B ?? 05 ?")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x48, 0x8B, 0, 0x05, 0}, p.Bytes)
	assert.Equal(t, []bool{true, true, false, true, false}, p.Mask)
	assert.Equal(t, "48 8B ?? 05 ??", p.String())

	p, err = ParsePattern("RenderStart")
	require.NoError(t, err)
	assert.Equal(t, []byte("RenderStart"), p.Bytes)

	_, err = ParsePattern("")
	assert.Error(t, err)
}

func TestFindPattern(t *testing.T) {
	data := []byte{0x90, 0x48, 0x8B, 0x00, 0x05, 0x48, 0x8B, 0xFF, 0x05}
	p := MustParsePattern("48 8B ?? 05")

	assert.Equal(t, 1, FindPattern(data, p))
	assert.Equal(t, []int{1, 5}, FindAllPatterns(data, p))
	assert.Equal(t, -1, FindPattern(data[:4], p))
}

func TestScanRanges(t *testing.T) {
	a := []byte{0, 0, 0xE8, 1, 2, 0}
	b := []byte{0xE8, 9, 2}
	p := MustParsePattern("E8 ?? 02")

	ra := Range{Start: AddressOf(a), End: AddressOf(a) + uintptr(len(a))}
	rb := Range{Start: AddressOf(b), End: AddressOf(b) + uintptr(len(b))}

	results := ScanRanges([]Range{ra, rb}, p, 0)
	require.Len(t, results, 2)
	assert.ElementsMatch(t, []uintptr{ra.Start + 2, rb.Start}, results)
	assert.Less(t, results[0], results[1])

	assert.Len(t, ScanRanges([]Range{ra, rb}, p, 1), 1)
}
