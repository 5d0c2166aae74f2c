package bootstrap

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/disasm"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/frame"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/library"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/netvar"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/utils"
)

var ErrNoMemoryReference = errors.New("no rip-relative operand in prologue")

type interfaceTarget struct {
	name string
	want utils.Interface
	dst  *uintptr
}

func interfaceTargets(v utils.Version, out *state.Interfaces) []interfaceTarget {
	in := v.Interfaces
	return []interfaceTarget{
		{"client", in.Client, &out.Client},
		{"engine", in.Engine, &out.Engine},
		{"entity_list", in.EntityList, &out.EntityList},
		{"input_system", in.Input, &out.Input},
		{"physics", in.Physics, &out.Physics},
		{"material_system", in.MaterialSystem, &out.MaterialSystem},
		{"cvar", in.Cvar, &out.Cvar},
		{"surface", in.Surface, &out.Surface},
		{"model_render", in.ModelRender, &out.ModelRender},
	}
}

// resolveInterfaces asks each module's factory for the versioned interfaces
// and recovers the globals reachable from the client's prologues.
func resolveInterfaces(reg *library.Registry, v utils.Version) (state.Interfaces, error) {
	var out state.Interfaces
	for _, target := range interfaceTargets(v, &out) {
		lib, ok := reg.Get(target.want.Module)
		if !ok {
			return out, &library.ModuleError{Name: target.want.Module, Err: library.ErrModuleNotFound}
		}
		ptr, err := createInterface(lib, target.want.Version)
		if err != nil {
			return out, fmt.Errorf("resolve %s: %w", target.name, err)
		}
		*target.dst = ptr
		log.WithFields(logrus.Fields{
			logfields.Interface: target.want.Version,
			logfields.Module:    target.want.Module,
			logfields.Address:   fmt.Sprintf("%#x", ptr),
		}).Debug("Resolved interface")
	}

	out.SpatialQuery = abi.Call(hook.ReadSlot(out.Engine, v.Slots.GetBSPTreeQuery), out.Engine)
	if out.SpatialQuery == 0 {
		return out, fmt.Errorf("resolve spatial_query: %w", library.ErrInterfaceNotFound)
	}

	for _, g := range []struct {
		name string
		slot int
		dst  *uintptr
	}{
		{"client_mode", v.Slots.HudProcessInput, &out.ClientModeSlot},
		{"global_vars", v.Slots.HudUpdate, &out.GlobalVarsSlot},
		{"input", v.Slots.ActivateMouse, &out.InputSlot},
	} {
		address, err := referencedGlobal(hook.ReadSlot(out.Client, g.slot))
		if err != nil {
			return out, fmt.Errorf("resolve %s: %w", g.name, err)
		}
		*g.dst = address
	}
	return out, nil
}

type interfaceFactory interface {
	CreateInterface(version string) (uintptr, error)
	CreateInterfaceByPrefix(name string) (uintptr, string, error)
}

// createInterface asks for the exact version first. When the module does
// not publish it, the newest version sharing its prefix is used instead.
func createInterface(lib interfaceFactory, version string) (uintptr, error) {
	ptr, err := lib.CreateInterface(version)
	if err == nil || !errors.Is(err, library.ErrInterfaceNotFound) {
		return ptr, err
	}
	ptr, chosen, fallbackErr := lib.CreateInterfaceByPrefix(version)
	if fallbackErr != nil {
		return 0, fmt.Errorf("%w; by prefix: %v", err, fallbackErr)
	}
	log.WithFields(logrus.Fields{
		logfields.Interface: version,
		"published":         chosen,
	}).Warn("Interface version not published, using newest with the same prefix")
	return ptr, nil
}

// referencedGlobal returns the address read by the first RIP-relative
// operand in the prologue of fn.
func referencedGlobal(fn uintptr) (uintptr, error) {
	insts, err := disasm.DecodePrologue(fn)
	if err != nil {
		return 0, err
	}
	address, ok := disasm.FirstMemoryReference(insts)
	if !ok {
		return 0, fmt.Errorf("%w at %#x", ErrNoMemoryReference, fn)
	}
	return address, nil
}

// resolveProperties walks the client's class list and resolves the
// interest list against it.
func resolveProperties(client uintptr, v utils.Version) (*netvar.Offsets, error) {
	head := abi.Call(hook.ReadSlot(client, v.Slots.GetAllClasses), client)
	if head == 0 {
		return nil, fmt.Errorf("resolve properties: %w", netvar.ErrPropertyNotFound)
	}
	classes := netvar.ReadClasses(head)
	props, err := netvar.Resolve(classes, netvar.Interest)
	if err != nil {
		return nil, err
	}
	log.WithField("classes", len(classes)).Info("Resolved network properties")
	return props, nil
}

type sdlSymbols struct {
	swapWindow     uintptr
	pollEvent      uintptr
	getWindowTitle uintptr
}

func resolveSDL(reg *library.Registry, v utils.Version) (sdlSymbols, error) {
	var out sdlSymbols
	lib, err := reg.OpenShared(v.Symbols.SDLLibrary)
	if err != nil {
		return out, err
	}
	for _, s := range []struct {
		name string
		dst  *uintptr
	}{
		{v.Symbols.SwapWindow, &out.swapWindow},
		{v.Symbols.PollEvent, &out.pollEvent},
		{v.Symbols.GetWindowTitle, &out.getWindowTitle},
	} {
		if *s.dst, err = lib.Symbol(s.name); err != nil {
			return out, err
		}
	}
	return out, nil
}

// locateInsertIntoTree finds the return site of the leaf system's
// ListLeavesInBox call. Zero disables the leaf override.
func locateInsertIntoTree(v utils.Version) uintptr {
	pattern, err := memory.ParsePattern(v.Patterns.InsertIntoTree)
	if err != nil {
		log.WithError(err).Warn("Invalid InsertIntoTree pattern")
		return 0
	}
	maps, err := memory.CurrentMaps()
	if err != nil {
		log.WithError(err).Warn("Cannot read memory map")
		return 0
	}
	matches, err := memory.ScanModule(maps, library.FileName("client"), pattern)
	if err != nil || len(matches) == 0 {
		log.WithError(err).Warn("InsertIntoTree not found, leaf override disabled")
		return 0
	}
	if len(matches) > 1 {
		log.WithField("matches", len(matches)).Warn("InsertIntoTree pattern is ambiguous, using the first match")
	}
	return matches[0] + v.Patterns.InsertIntoTreeReturn
}

// installHooks redirects every target that exists at initialization.
func installHooks(hooks *hook.Set, ifaces state.Interfaces, syms sdlSymbols, v utils.Version) error {
	if err := hooks.InstallThunk(frame.HookSwapWindow, requester, syms.swapWindow, abi.SwapWindow.Address()); err != nil {
		return err
	}
	if err := hooks.InstallThunk(frame.HookPollEvent, requester, syms.pollEvent, abi.PollEvent.Address()); err != nil {
		return err
	}
	for _, slot := range []struct {
		id          hook.ID
		object      uintptr
		index       int
		replacement abi.Replacement
	}{
		{frame.HookFrameStageNotify, ifaces.Client, v.Slots.FrameStageNotify, abi.FrameStageNotify},
		{frame.HookDrawModel, ifaces.ModelRender, v.Slots.DrawModelExecute, abi.DrawModel},
		{frame.HookListLeavesInBox, ifaces.SpatialQuery, v.Slots.ListLeavesInBox, abi.ListLeavesInBox},
	} {
		if err := hooks.ReplaceSlot(slot.id, requester, slot.object, slot.index, slot.replacement.Address()); err != nil {
			return err
		}
	}
	return nil
}

// deferredHooks returns the installer for the client-mode hooks. The
// client-mode object is created by the game after initialization, so the
// installer waits until its global is filled in.
func deferredHooks(hooks *hook.Set, ifaces state.Interfaces, v utils.Version) frame.Deferred {
	return func() (bool, error) {
		clientMode := memory.ReadPointer(ifaces.ClientModeSlot)
		if clientMode == 0 {
			return false, nil
		}
		if err := hooks.ReplaceSlot(frame.HookCreateMove, requester, clientMode, v.Slots.CreateMove, abi.CreateMove.Address()); err != nil {
			return false, err
		}
		if err := hooks.ReplaceSlot(frame.HookOverrideView, requester, clientMode, v.Slots.OverrideView, abi.OverrideView.Address()); err != nil {
			return false, err
		}
		return true, nil
	}
}
