package library

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

const (
	createInterfaceSymbol = "CreateInterface"
	interfaceRegsSymbol   = "s_pInterfaceRegs"
	maxInterfaceRegs      = 4096
)

// Library is a loaded shared object. It is never unloaded: function
// pointers resolved from it and code patched inside it stay valid for the
// life of the process.
type Library struct {
	Name string
	Path string

	handle Handle
	opener Opener
}

func (l *Library) Handle() Handle {
	return l.handle
}

// Symbol resolves an exported symbol.
func (l *Library) Symbol(name string) (uintptr, error) {
	addr, err := l.opener.Symbol(l.handle, name)
	if err != nil || addr == 0 {
		return 0, fmt.Errorf("%w: %s in %s: %v", ErrSymbolNotFound, name, l.Name, err)
	}
	return addr, nil
}

// CreateInterface asks the module's factory for a versioned interface.
func (l *Library) CreateInterface(version string) (uintptr, error) {
	factory, err := l.Symbol(createInterfaceSymbol)
	if err != nil {
		return 0, err
	}
	ptr, status := abi.CallCreateInterface(factory, version)
	if status != 0 || ptr == 0 {
		return 0, fmt.Errorf("%w: %s in %s (status %d)", ErrInterfaceNotFound, version, l.Name, status)
	}
	return ptr, nil
}

// InterfaceReg is one entry of a module's published interface list.
type InterfaceReg struct {
	Name   string
	Create uintptr
}

// Interfaces enumerates the factories a module publishes.
func (l *Library) Interfaces() ([]InterfaceReg, error) {
	sym, err := l.Symbol(interfaceRegsSymbol)
	if err != nil {
		return nil, err
	}
	return walkInterfaceRegs(memory.ReadPointer(sym)), nil
}

// struct InterfaceReg { void *(*create)(); const char *name; InterfaceReg *next; }
func walkInterfaceRegs(head uintptr) []InterfaceReg {
	var regs []InterfaceReg
	seen := make(map[uintptr]struct{})
	for reg := head; reg != 0 && len(regs) < maxInterfaceRegs; reg = memory.ReadPointer(reg + 16) {
		if _, ok := seen[reg]; ok {
			break
		}
		seen[reg] = struct{}{}
		regs = append(regs, InterfaceReg{
			Create: memory.ReadPointer(reg),
			Name:   memory.ReadString(memory.ReadPointer(reg+8), 128),
		})
	}
	return regs
}

// CreateInterfaceByPrefix creates the interface with the exact name when
// published, otherwise the highest numbered version sharing its prefix.
func (l *Library) CreateInterfaceByPrefix(name string) (uintptr, string, error) {
	regs, err := l.Interfaces()
	if err != nil {
		return 0, "", err
	}
	names := make([]string, len(regs))
	for i, reg := range regs {
		names[i] = reg.Name
	}
	version, ok := selectVersion(names, name)
	if !ok {
		return 0, "", fmt.Errorf("%w: %s in %s", ErrInterfaceNotFound, name, l.Name)
	}
	ptr, err := l.CreateInterface(version)
	return ptr, version, err
}

func splitVersion(name string) (string, int, bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return name, 0, false
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return name, 0, false
	}
	return name[:i], n, true
}

func selectVersion(published []string, want string) (string, bool) {
	for _, name := range published {
		if name == want {
			return name, true
		}
	}
	prefix, _, _ := splitVersion(want)
	type candidate struct {
		name    string
		version int
	}
	var candidates []candidate
	for _, name := range published {
		p, v, ok := splitVersion(name)
		if ok && p == prefix && strings.HasPrefix(name, prefix) {
			candidates = append(candidates, candidate{name, v})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].version > candidates[j].version })
	return candidates[0].name, true
}
