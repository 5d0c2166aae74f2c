package bootstrap

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/config"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/disasm"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/frame"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/library"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/netvar"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/utils"
)

type fakeOpener struct {
	opened []string
}

func (f *fakeOpener) Open(path string) (library.Handle, error) {
	f.opened = append(f.opened, filepath.Base(path))
	return library.Handle(len(f.opened)), nil
}

func (f *fakeOpener) Symbol(h library.Handle, name string) (uintptr, error) {
	return 0, errors.New("undefined symbol: " + name)
}

func gameTree(t *testing.T, names ...string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "bin", "linux64")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, library.FileName(name)), nil, 0o644))
	}
	return dir
}

func mapPage(t *testing.T, prot int) []byte {
	t.Helper()
	mem, err := unix.Mmap(-1, 0, int(memory.PageSize()), prot, unix.MAP_PRIVATE|unix.MAP_ANON)
	require.NoError(t, err)
	t.Cleanup(func() { unix.Munmap(mem) })
	return mem
}

func TestLoadModulesOrder(t *testing.T) {
	modules := utils.Current.Modules
	dir := gameTree(t, append([]string{library.Launcher, library.Tier0}, modules...)...)
	opener := &fakeOpener{}
	reg := library.NewRegistry(opener, dir)

	var seen []string
	require.NoError(t, loadModules(reg, modules, func(name string) error {
		seen = append(seen, name)
		return nil
	}))

	want := append([]string{library.Launcher, library.Tier0}, modules...)
	assert.Equal(t, want, seen)
	require.Len(t, opener.opened, len(want))
	assert.Equal(t, library.FileName(library.Launcher), opener.opened[0])
	assert.Equal(t, library.FileName(library.Tier0), opener.opened[1])
	assert.Equal(t, library.PhaseModules, reg.Phase())
}

func TestLoadModulesMissing(t *testing.T) {
	dir := gameTree(t, library.Launcher, library.Tier0, "engine")
	reg := library.NewRegistry(&fakeOpener{}, dir)

	err := loadModules(reg, []string{"engine", "client"}, nil)
	require.ErrorIs(t, err, library.ErrModuleNotFound)
	assert.Contains(t, err.Error(), "client")

	_, ok := reg.Get("engine")
	assert.True(t, ok)
}

func TestLoadModulesStopsOnCallbackError(t *testing.T) {
	dir := gameTree(t, library.Launcher, library.Tier0, "engine")
	reg := library.NewRegistry(&fakeOpener{}, dir)
	boom := errors.New("boom")

	err := loadModules(reg, []string{"engine"}, func(name string) error {
		if name == library.Tier0 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	_, ok := reg.Get("engine")
	assert.False(t, ok)
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pitch": "sideways"}`), 0o644))

	cfg, got := loadConfig(path)
	assert.Equal(t, path, got)
	assert.Equal(t, config.Default(), cfg)

	require.NoError(t, os.WriteFile(path, []byte(`{"fake_lag": 3}`), 0o644))
	cfg, _ = loadConfig(path)
	assert.Equal(t, 3, cfg.FakeLag)
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elysium", "config.json")
	cfg := config.Default()
	cfg.ThirdPerson = true
	saveConfig(path, cfg)

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.ThirdPerson)

	saveConfig("", cfg)
}

func TestReferencedGlobal(t *testing.T) {
	code := mapPage(t, unix.PROT_READ|unix.PROT_WRITE)
	// push rbp; mov rax, [rip+0x100]; ret
	copy(code, []byte{0x55, 0x48, 0x8B, 0x05, 0x00, 0x01, 0x00, 0x00, 0xC3})
	// push rbp; ret
	copy(code[64:], []byte{0x55, 0xC3})
	require.NoError(t, unix.Mprotect(code, unix.PROT_READ|unix.PROT_EXEC))
	base := memory.AddressOf(code)

	got, err := referencedGlobal(base)
	require.NoError(t, err)
	assert.Equal(t, base+8+0x100, got)

	_, err = referencedGlobal(base + 64)
	assert.ErrorIs(t, err, ErrNoMemoryReference)

	data := mapPage(t, unix.PROT_READ|unix.PROT_WRITE)
	_, err = referencedGlobal(memory.AddressOf(data))
	assert.ErrorIs(t, err, disasm.ErrDecode)
}

func TestDeferredHooksWaitForClientMode(t *testing.T) {
	globals := mapPage(t, unix.PROT_READ|unix.PROT_WRITE)
	object := mapPage(t, unix.PROT_READ|unix.PROT_WRITE)
	vtable := mapPage(t, unix.PROT_READ|unix.PROT_WRITE)
	for i := 0; i < 32; i++ {
		memory.WritePointer(memory.AddressOf(vtable)+uintptr(i*8), 0x1000+uintptr(i))
	}
	memory.WritePointer(memory.AddressOf(object), memory.AddressOf(vtable))
	require.NoError(t, unix.Mprotect(vtable, unix.PROT_READ))

	v := utils.Current
	hooks := hook.NewSet()
	install := deferredHooks(hooks, state.Interfaces{ClientModeSlot: memory.AddressOf(globals)}, v)

	done, err := install()
	require.NoError(t, err)
	assert.False(t, done)
	assert.False(t, hooks.Installed(frame.HookCreateMove))

	memory.WritePointer(memory.AddressOf(globals), memory.AddressOf(object))
	done, err = install()
	require.NoError(t, err)
	assert.True(t, done)

	client := memory.AddressOf(object)
	assert.Equal(t, abi.CreateMove.Address(), hook.ReadSlot(client, v.Slots.CreateMove))
	assert.Equal(t, abi.OverrideView.Address(), hook.ReadSlot(client, v.Slots.OverrideView))
	assert.Equal(t, 0x1000+uintptr(v.Slots.CreateMove), hooks.Original(frame.HookCreateMove))
	assert.Equal(t, 0x1000+uintptr(v.Slots.OverrideView), hooks.Original(frame.HookOverrideView))

	_, err = install()
	assert.ErrorIs(t, err, hook.ErrDoubleHook)
}

func TestWriteSummary(t *testing.T) {
	s := Summary{
		Pid:     4242,
		Program: "csgo_linux64",
		RSS:     64 << 20,
		Modules: []*library.Library{
			{Name: library.Launcher, Path: "/game/bin/linux64/launcher_client.so"},
			{Name: "client", Path: "/game/csgo/bin/linux64/client_client.so"},
		},
		Interfaces: namedInterfaces(state.Interfaces{Client: 0xdead0000, SpatialQuery: 0xbeef}),
		Properties: []netvar.Property{{
			Name:   netvar.PlayerHealth,
			Key:    netvar.Key{Table: "DT_BasePlayer", Prop: "m_iHealth"},
			Path:   "m_iHealth",
			Type:   netvar.TypeInt,
			Offset: 0x138,
		}},
		Hooks: []hook.Hook{{
			ID:        frame.HookFrameStageNotify,
			Kind:      hook.KindVTable,
			Requester: requester,
			Address:   0x7000,
			Original:  0x8000,
		}},
		Schedules: []ScheduleInfo{{Name: "swap_window", Jobs: []string{"overlay"}}},
	}

	var buf bytes.Buffer
	writeSummary(&buf, s)
	out := buf.String()

	for _, want := range []string{
		"4242", "csgo_linux64", "64",
		"client_client.so",
		"0xdead0000", "0xbeef", "spatial_query",
		netvar.PlayerHealth, "0x138",
		string(frame.HookFrameStageNotify), "vtable", requester, "0x7000", "0x8000",
		"swap_window", "overlay",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRunInstallsHandlersBeforeGameLogging(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	dir := gameTree(t, append([]string{library.Launcher, library.Tier0}, utils.Current.Modules...)...)
	opts := Options{
		Opener:     &fakeOpener{},
		SearchPath: []string{dir},
		Version:    utils.Current,
		ConfigPath: filepath.Join(t.TempDir(), "config.json"),
	}

	_, err := Run(opts)
	require.ErrorIs(t, err, library.ErrSymbolNotFound)
	assert.Contains(t, err.Error(), "take over game logging")

	hook := logtest.NewLocal(logging.DefaultLogger)
	defer hook.Reset()
	abi.Call(abi.LogDirect.Address(), 4, 1, 0, abi.CString("materialsystem: shader cache miss"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "materialsystem: shader cache miss", entry.Message)
	assert.Equal(t, "game", entry.Data["subsys"])
}

type fakeFactory struct {
	published map[string]uintptr
	asked     []string
}

func (f *fakeFactory) CreateInterface(version string) (uintptr, error) {
	f.asked = append(f.asked, version)
	if ptr, ok := f.published[version]; ok {
		return ptr, nil
	}
	return 0, fmt.Errorf("%w: %s", library.ErrInterfaceNotFound, version)
}

func (f *fakeFactory) CreateInterfaceByPrefix(name string) (uintptr, string, error) {
	prefix := strings.TrimRight(name, "0123456789")
	var best string
	for version := range f.published {
		if strings.HasPrefix(version, prefix) && version > best {
			best = version
		}
	}
	if best == "" {
		return 0, "", fmt.Errorf("%w: %s", library.ErrInterfaceNotFound, name)
	}
	return f.published[best], best, nil
}

func TestCreateInterfaceExact(t *testing.T) {
	f := &fakeFactory{published: map[string]uintptr{"VClient018": 0x10, "VClient019": 0x20}}
	ptr, err := createInterface(f, "VClient018")
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x10), ptr)
	assert.Equal(t, []string{"VClient018"}, f.asked)
}

func TestCreateInterfaceFallsBackToPrefix(t *testing.T) {
	hook := logtest.NewLocal(logging.DefaultLogger)
	defer hook.Reset()

	f := &fakeFactory{published: map[string]uintptr{"VEngineClient015": 0x30}}
	ptr, err := createInterface(f, "VEngineClient014")
	require.NoError(t, err)
	assert.Equal(t, uintptr(0x30), ptr)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "VEngineClient015", entry.Data["published"])
}

func TestCreateInterfaceMissingEverywhere(t *testing.T) {
	f := &fakeFactory{published: map[string]uintptr{"VPhysics031": 0x40}}
	_, err := createInterface(f, "VEngineClient014")
	require.ErrorIs(t, err, library.ErrInterfaceNotFound)
	assert.Contains(t, err.Error(), "by prefix")
}
