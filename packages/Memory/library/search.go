package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Suffix is appended to game module names to form their file name.
const Suffix = "_client.so"

// SearchPath lists the directories modules are looked up in, first hit wins.
var SearchPath = []string{
	"./bin/linux64",
	"./csgo/bin/linux64",
}

var (
	ErrModuleNotFound    = errors.New("module not found")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrInterfaceNotFound = errors.New("interface not found")
)

// ModuleError names the module a lookup failed for.
type ModuleError struct {
	Name  string
	Tried []string
	Err   error
}

func (e *ModuleError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v (tried %s)", e.Name, e.Err, strings.Join(e.Tried, ", "))
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// FileName maps a module name to its file name. Names that already carry a
// shared-object extension are used verbatim.
func FileName(name string) string {
	if strings.Contains(name, ".so") {
		return name
	}
	return name + Suffix
}

// Locate opens the first candidate for name across dirs that the opener
// accepts and returns its canonical path.
func Locate(opener Opener, name string, dirs []string) (string, Handle, error) {
	file := FileName(name)
	var tried []string
	var lastErr error
	for _, dir := range dirs {
		candidate := filepath.Join(dir, file)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		path := canonical(candidate)
		tried = append(tried, path)
		h, err := opener.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		return path, h, nil
	}
	err := ErrModuleNotFound
	if lastErr != nil {
		err = fmt.Errorf("%w: %v", ErrModuleNotFound, lastErr)
	}
	return "", 0, &ModuleError{Name: name, Tried: tried, Err: err}
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
