package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mapsFixture = `7f0000003000-7f0000004000 r-xp 00002000 08:01 42 /opt/csgo/bin/linux64/engine_client.so
7f0000000000-7f0000001000 r--p 00000000 08:01 42 /opt/csgo/bin/linux64/engine_client.so
7f0000001000-7f0000003000 r-xp 00001000 08:01 42 /opt/csgo/bin/linux64/engine_client.so
7f0000004000-7f0000005000 ---p 00000000 00:00 0
7f0000005000-7f0000006000 rw-p 00000000 00:00 0 [heap]
7f0000006000-7f0000007000 r-xp 00000000 08:01 77 /usr/lib/libSDL2-2.0.so.0
`

// fixtureMaps reads text as the maps file of pid 1 in a throwaway procfs
// tree.
func fixtureMaps(t *testing.T, text string) (Maps, error) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "1", "maps"), []byte(text), 0o644))
	return ReadMaps(root, 1)
}

func TestReadMaps(t *testing.T) {
	maps, err := fixtureMaps(t, mapsFixture)
	require.NoError(t, err)
	require.Len(t, maps, 5)

	for i := 1; i < len(maps); i++ {
		assert.Less(t, maps[i-1].Start, maps[i].Start)
	}
	assert.Equal(t, uintptr(0x7f0000000000), maps[0].Start)
	assert.Equal(t, PermRead, maps[0].Perm)
	assert.Equal(t, PermRead|PermExec, maps[1].Perm)
	assert.Equal(t, "[heap]", maps[3].Path)
	assert.Equal(t, "/usr/lib/libSDL2-2.0.so.0", maps[4].Path)
	assert.Equal(t, uint64(0x2000), maps[2].Offset)
}

func TestReadMapsMalformed(t *testing.T) {
	_, err := fixtureMaps(t, "zzzz r-xp 0 0 0\n")
	assert.Error(t, err)
}

func TestPermissionsOf(t *testing.T) {
	maps, err := fixtureMaps(t, mapsFixture)
	require.NoError(t, err)

	assert.Equal(t, PermRead|PermExec, maps.PermissionsOf(0x7f0000001234))
	assert.Equal(t, PermRead|PermWrite, maps.PermissionsOf(0x7f0000005fff))
	assert.Equal(t, Perm(0), maps.PermissionsOf(0x7f0000004000))
	assert.Equal(t, Perm(0), maps.PermissionsOf(0x1000))
	assert.Equal(t, "r-x", maps.PermissionsOf(0x7f0000001234).String())
}

func TestContiguousRanges(t *testing.T) {
	maps, err := fixtureMaps(t, mapsFixture)
	require.NoError(t, err)

	ranges := maps.ContiguousRanges()
	require.Len(t, ranges, 2)
	assert.Equal(t, Range{Start: 0x7f0000001000, End: 0x7f0000004000}, ranges[0])
	assert.Equal(t, Range{Start: 0x7f0000006000, End: 0x7f0000007000}, ranges[1])

	r, ok := maps.ExecutableRange(0x7f0000003800)
	require.True(t, ok)
	assert.Equal(t, uintptr(0x3000), r.Size())

	_, ok = maps.ExecutableRange(0x7f0000005000)
	assert.False(t, ok)
}

func TestModule(t *testing.T) {
	maps, err := fixtureMaps(t, mapsFixture)
	require.NoError(t, err)

	engine := maps.Module("engine_client.so")
	assert.Len(t, engine, 3)
	assert.Empty(t, maps.Module("client_client.so"))
}

func TestReadMapsMissingProcess(t *testing.T) {
	_, err := ReadMaps(t.TempDir(), 4242)
	assert.Error(t, err)
}

func TestCurrentMaps(t *testing.T) {
	maps, err := CurrentMaps()
	require.NoError(t, err)
	require.NotEmpty(t, maps)

	fn := AddressOf([]byte{1})
	assert.NotZero(t, maps.PermissionsOf(fn)&PermRead)
}
