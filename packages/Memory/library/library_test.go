package library

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

type fakeOpener struct {
	opened  []string
	refuse  map[string]bool
	symbols map[string]uintptr
}

func (f *fakeOpener) Open(path string) (Handle, error) {
	if f.refuse[filepath.Base(path)] {
		return 0, errors.New("wrong ELF class")
	}
	f.opened = append(f.opened, path)
	return Handle(len(f.opened)), nil
}

func (f *fakeOpener) Symbol(h Handle, name string) (uintptr, error) {
	if addr, ok := f.symbols[name]; ok {
		return addr, nil
	}
	return 0, errors.New("undefined symbol: " + name)
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}

func TestLocatePrecedence(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "bin", "linux64")
	second := filepath.Join(root, "csgo", "bin", "linux64")
	touch(t, first, "foo_client.so")
	touch(t, second, "foo_client.so")

	opener := &fakeOpener{}
	path, _, err := Locate(opener, "foo", []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, canonical(filepath.Join(first, "foo_client.so")), path)
	assert.Len(t, opener.opened, 1)
}

func TestLocateFallsThroughOnOpenFailure(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "a")
	second := filepath.Join(root, "b")
	touch(t, first, "foo_client.so")
	touch(t, second, "foo_client.so")

	opener := &fakeOpener{refuse: map[string]bool{}}
	opener.refuse["foo_client.so"] = true
	_, _, err := Locate(opener, "foo", []string{first, second})
	require.Error(t, err)

	var modErr *ModuleError
	require.ErrorAs(t, err, &modErr)
	assert.Len(t, modErr.Tried, 2)
}

func TestLocateMissing(t *testing.T) {
	root := t.TempDir()
	_, _, err := Locate(&fakeOpener{}, "foo", []string{filepath.Join(root, "a"), filepath.Join(root, "b")})
	require.ErrorIs(t, err, ErrModuleNotFound)

	var modErr *ModuleError
	require.ErrorAs(t, err, &modErr)
	assert.Equal(t, "foo", modErr.Name)
	assert.Contains(t, err.Error(), "foo")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "engine_client.so", FileName("engine"))
	assert.Equal(t, "libSDL2-2.0.so.0", FileName("libSDL2-2.0.so.0"))
}

func newGameTree(t *testing.T, names ...string) string {
	root := t.TempDir()
	dir := filepath.Join(root, "bin", "linux64")
	for _, name := range names {
		touch(t, dir, FileName(name))
	}
	return dir
}

func TestRegistryOrder(t *testing.T) {
	dir := newGameTree(t, Launcher, Tier0, "engine", "client")
	opener := &fakeOpener{symbols: map[string]uintptr{launcherMainSymbol: 0x4000}}
	r := NewRegistry(opener, dir)

	_, err := r.LauncherMain()
	assert.ErrorIs(t, err, ErrOrder)

	for _, name := range []string{Launcher, Tier0, "engine", "client"} {
		_, err := r.Load(name)
		require.NoError(t, err, name)
	}
	again, err := r.Load("engine")
	require.NoError(t, err)
	assert.Equal(t, "engine", again.Name)
	assert.Len(t, r.Libraries(), 4)
	assert.Len(t, opener.opened, 4)

	fn, err := r.LauncherMain()
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x4000), fn)
	assert.Equal(t, PhaseLaunched, r.Phase())

	_, err = r.Load("vphysics")
	assert.ErrorIs(t, err, ErrOrder)
}

func TestRegistryRejectsTier0First(t *testing.T) {
	dir := newGameTree(t, Launcher, Tier0)
	r := NewRegistry(&fakeOpener{}, dir)

	_, err := r.Load(Tier0)
	require.ErrorIs(t, err, ErrOrder)

	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, Launcher, orderErr.Expected)
	assert.Contains(t, err.Error(), "launcher must be loaded before libtier0")
	assert.Empty(t, r.Libraries())
}

func TestSequencerSkippingTier0(t *testing.T) {
	var s Sequencer
	require.NoError(t, s.Admit(Launcher))
	err := s.Admit("engine")
	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, Tier0, orderErr.Expected)

	err = s.Launch()
	assert.ErrorIs(t, err, ErrOrder)
}

func TestRegistryFailedLoadKeepsPhase(t *testing.T) {
	dir := newGameTree(t, Tier0)
	r := NewRegistry(&fakeOpener{}, dir)

	_, err := r.Load(Launcher)
	require.ErrorIs(t, err, ErrModuleNotFound)
	assert.Equal(t, PhaseLauncher, r.Phase())

	// A failed launcher load does not open the way for tier0.
	_, err = r.Load(Tier0)
	assert.ErrorIs(t, err, ErrOrder)

	touch(t, dir, FileName(Launcher))
	_, err = r.Load(Launcher)
	require.NoError(t, err)
	assert.Equal(t, PhaseTier0, r.Phase())
}

func TestSequencerCheckDoesNotAdvance(t *testing.T) {
	var s Sequencer
	require.NoError(t, s.Check(Launcher))
	require.NoError(t, s.Check(Launcher))
	assert.Equal(t, PhaseLauncher, s.Phase())
	assert.ErrorIs(t, s.Check(Tier0), ErrOrder)
}

func TestLibrarySymbol(t *testing.T) {
	lib := &Library{Name: "client", opener: &fakeOpener{symbols: map[string]uintptr{"CreateInterface": 0x10}}}
	addr, err := lib.Symbol("CreateInterface")
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x10), addr)

	_, err = lib.Symbol("s_pInterfaceRegs")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	assert.Contains(t, err.Error(), "s_pInterfaceRegs")
}

func TestWalkInterfaceRegs(t *testing.T) {
	names := [][]byte{
		append([]byte("VClient018"), 0),
		append([]byte("VClientEntityList003"), 0),
	}
	regs := make([]byte, 2*24)
	base := memory.AddressOf(regs)

	memory.WritePointer(base+0, 0x1111)
	memory.WritePointer(base+8, memory.AddressOf(names[0]))
	memory.WritePointer(base+16, base+24)
	memory.WritePointer(base+24, 0x2222)
	memory.WritePointer(base+32, memory.AddressOf(names[1]))
	memory.WritePointer(base+40, 0)

	got := walkInterfaceRegs(base)
	runtime.KeepAlive(names)
	assert.Equal(t, []InterfaceReg{
		{Name: "VClient018", Create: 0x1111},
		{Name: "VClientEntityList003", Create: 0x2222},
	}, got)
}

func TestWalkInterfaceRegsCycle(t *testing.T) {
	regs := make([]byte, 24)
	base := memory.AddressOf(regs)
	memory.WritePointer(base+16, base)
	assert.Len(t, walkInterfaceRegs(base), 1)
}

func TestSelectVersion(t *testing.T) {
	published := []string{"VClient017", "VClient018", "VClientPrediction001", "GameClientExports001"}

	name, ok := selectVersion(published, "VClient018")
	require.True(t, ok)
	assert.Equal(t, "VClient018", name)

	name, ok = selectVersion(published, "VClient020")
	require.True(t, ok)
	assert.Equal(t, "VClient018", name)

	_, ok = selectVersion(published, "VEngineClient014")
	assert.False(t, ok)
}

func TestOpenSharedBypassesOrder(t *testing.T) {
	opener := &fakeOpener{}
	r := NewRegistry(opener, "/game/bin/linux64")

	lib, err := r.OpenShared("libSDL2-2.0.so.0")
	require.NoError(t, err)
	assert.Equal(t, "libSDL2-2.0.so.0", lib.Path)
	again, err := r.OpenShared("libSDL2-2.0.so.0")
	require.NoError(t, err)
	assert.Same(t, lib, again)
	assert.Len(t, opener.opened, 1)
	assert.Equal(t, PhaseLauncher, r.Phase(), "launcher is still expected first")
}

func TestOpenSharedMissing(t *testing.T) {
	opener := &fakeOpener{refuse: map[string]bool{"libSDL2-2.0.so.0": true}}
	r := NewRegistry(opener, "/a", "/b")

	_, err := r.OpenShared("libSDL2-2.0.so.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrModuleNotFound)
	var merr *ModuleError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []string{"libSDL2-2.0.so.0", "/a/libSDL2-2.0.so.0", "/b/libSDL2-2.0.so.0"}, merr.Tried)
}
