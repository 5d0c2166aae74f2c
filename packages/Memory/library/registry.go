package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "library")

const launcherMainSymbol = "LauncherMain"

// Registry owns every module the tool maps, in the order they were mapped.
type Registry struct {
	mu     sync.Mutex
	opener Opener
	dirs   []string
	seq    Sequencer
	libs   map[string]*Library
	order  []*Library
}

func NewRegistry(opener Opener, dirs ...string) *Registry {
	if len(dirs) == 0 {
		dirs = SearchPath
	}
	return &Registry{
		opener: opener,
		dirs:   dirs,
		libs:   make(map[string]*Library),
	}
}

// Load maps the named module, running its initializers. Loading a module a
// second time returns the existing Library.
func (r *Registry) Load(name string) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lib, ok := r.libs[name]; ok {
		return lib, nil
	}
	if err := r.seq.Check(name); err != nil {
		return nil, err
	}
	path, h, err := Locate(r.opener, name, r.dirs)
	if err != nil {
		return nil, err
	}
	if err := r.seq.Admit(name); err != nil {
		return nil, err
	}
	lib := &Library{Name: name, Path: path, handle: h, opener: r.opener}
	r.libs[name] = lib
	r.order = append(r.order, lib)

	log.WithFields(logrus.Fields{
		logfields.Module: name,
		logfields.Path:   path,
	}).Info("Loaded module")
	return lib, nil
}

// Get returns an already loaded module.
func (r *Registry) Get(name string) (*Library, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lib, ok := r.libs[name]
	return lib, ok
}

// Libraries lists modules in load order.
func (r *Registry) Libraries() []*Library {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Library, len(r.order))
	copy(out, r.order)
	return out
}

// OpenShared maps a system shared object by soname, falling back to the
// search directories. It is not subject to the module load order.
func (r *Registry) OpenShared(soname string) (*Library, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lib, ok := r.libs[soname]; ok {
		return lib, nil
	}
	candidates := []string{soname}
	for _, dir := range r.dirs {
		candidates = append(candidates, filepath.Join(dir, soname))
	}
	var lastErr error
	for _, path := range candidates {
		h, err := r.opener.Open(path)
		if err != nil {
			lastErr = err
			continue
		}
		lib := &Library{Name: soname, Path: path, handle: h, opener: r.opener}
		r.libs[soname] = lib
		log.WithField(logfields.Path, path).Info("Opened shared library")
		return lib, nil
	}
	return nil, &ModuleError{Name: soname, Tried: candidates, Err: errors.Join(ErrModuleNotFound, lastErr)}
}

func (r *Registry) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq.Phase()
}

// LauncherMain checks the load order is complete and resolves the game's
// entry point. No module may be loaded afterwards.
func (r *Registry) LauncherMain() (uintptr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	launcher, ok := r.libs[Launcher]
	if !ok {
		return 0, &OrderError{Expected: Launcher, Got: launcherMainSymbol, Phase: r.seq.Phase()}
	}
	if err := r.seq.Launch(); err != nil {
		return 0, err
	}
	fn, err := launcher.Symbol(launcherMainSymbol)
	if err != nil {
		return 0, fmt.Errorf("launcher: %w", err)
	}
	return fn, nil
}
