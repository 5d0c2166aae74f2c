package bootstrap

import (
	"fmt"
	"io"
	"os"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/abi"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/config"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/entity"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/frame"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/hook"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/library"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/state"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/ui"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/utils"
	"github.com/mizz1e/snowdrop-sub000/packages/launch"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "bootstrap")

const requester = "elysium"

// Options control one initialization.
type Options struct {
	Launch launch.Options
	// InvokeLauncher runs the game's LauncherMain once hooks are in place.
	// When the tool was preloaded into a running game this is false.
	InvokeLauncher bool
	// Args replaces the argument vector built from Launch when set, so a
	// preloaded game keeps its own command line.
	Args []string

	Opener     library.Opener
	SearchPath []string
	Version    utils.Version
	ConfigPath string
	// Summary receives the initialization tables; nil disables them.
	Summary io.Writer
}

// DefaultOptions targets the current game build with the real dynamic
// loader.
func DefaultOptions() Options {
	return Options{
		Opener:     library.System,
		SearchPath: library.SearchPath,
		Version:    utils.Current,
		Summary:    os.Stderr,
	}
}

// Run performs the strict initialization sequence. Every failure is fatal
// and names the missing element. When InvokeLauncher is set the game's exit
// code is returned.
func Run(opts Options) (int32, error) {
	if opts.Opener == nil {
		opts.Opener = library.System
	}
	if err := logging.EnableFileOutput(); err != nil {
		log.WithError(err).Warn("Cannot write log file, logging to stderr only")
	}
	v := opts.Version
	abi.SetSendPacketOffset(v.Offsets.SendPacket)

	cfg, cfgPath := loadConfig(opts.ConfigPath)

	reg := library.NewRegistry(opts.Opener, opts.SearchPath...)
	hooks := hook.NewSet()

	// Handlers go in before any hook can call back, starting with tier0's
	// logger while the remaining modules load.
	chain := &frame.Chain{Hooks: hooks, Slots: v.Slots}
	dispatcher := frame.New(chain)
	abi.SetHandlers(dispatcher.Handlers())

	if err := loadModules(reg, v.Modules, func(name string) error {
		if name == library.Tier0 {
			return takeOverGameLogging(reg, hooks, v)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	ifaces, err := resolveInterfaces(reg, v)
	if err != nil {
		return 0, err
	}
	props, err := resolveProperties(ifaces.Client, v)
	if err != nil {
		return 0, err
	}
	sdlSyms, err := resolveSDL(reg, v)
	if err != nil {
		return 0, err
	}
	insertIntoTree := locateInsertIntoTree(v)

	chain.GetWindowTitle = sdlSyms.getWindowTitle

	source := entity.Native{EntityList: ifaces.EntityList, Engine: ifaces.Engine, Slots: v.Slots, Offsets: v.Offsets}
	st := &state.State{
		Version:        v,
		Interfaces:     ifaces,
		Props:          props,
		Hooks:          hooks,
		Entities:       entity.NewList(source, props),
		Program:        ui.NewProgram(nil),
		Config:         cfg,
		ConfigPath:     cfgPath,
		InsertIntoTree: insertIntoTree,
	}
	st.Program.OnToggle(func(open bool) {
		if !open {
			saveConfig(cfgPath, cfg)
		}
	})
	if err := state.Install(st); err != nil {
		return 0, err
	}

	if err := installHooks(hooks, ifaces, sdlSyms, v); err != nil {
		return 0, err
	}
	dispatcher.Defer(deferredHooks(hooks, ifaces, v))

	if opts.Summary != nil {
		writeSummary(opts.Summary, collectSummary(reg, ifaces, props, hooks, dispatcher))
	}
	log.WithField("version", v.Name).Info("Initialization complete")

	if !opts.InvokeLauncher {
		return 0, nil
	}
	return launchGame(reg, opts)
}

func loadConfig(path string) (*config.Config, string) {
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			log.WithError(err).Warn("Using default configuration")
			return config.Default(), ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).WithField(logfields.Path, path).Warn("Invalid configuration, using defaults")
		return config.Default(), path
	}
	return cfg, path
}

func saveConfig(path string, cfg *config.Config) {
	if path == "" {
		return
	}
	if err := config.Save(path, cfg); err != nil {
		log.WithError(err).WithField(logfields.Path, path).Warn("Cannot save configuration")
	}
}

// loadModules maps launcher, tier0 and then the game modules in order.
// after runs once each module is mapped.
func loadModules(reg *library.Registry, modules []string, after func(name string) error) error {
	order := append([]string{library.Launcher, library.Tier0}, modules...)
	for _, name := range order {
		if _, err := reg.Load(name); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		if after != nil {
			if err := after(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func takeOverGameLogging(reg *library.Registry, hooks *hook.Set, v utils.Version) error {
	tier0, ok := reg.Get(library.Tier0)
	if !ok {
		return fmt.Errorf("take over game logging: %s is not loaded", library.Tier0)
	}
	for _, target := range []struct {
		id          hook.ID
		symbol      string
		replacement abi.Replacement
	}{
		{frame.HookLog, v.Symbols.LogMessage, abi.Log},
		{frame.HookLogDirect, v.Symbols.LogDirect, abi.LogDirect},
	} {
		address, err := tier0.Symbol(target.symbol)
		if err != nil {
			return fmt.Errorf("take over game logging: %w", err)
		}
		if err := hooks.InstallInline(target.id, requester, address, target.replacement.Address(), false); err != nil {
			return fmt.Errorf("take over game logging: %w", err)
		}
	}
	log.Info("Game logging redirected")
	return nil
}

func launchGame(reg *library.Registry, opts Options) (int32, error) {
	fn, err := reg.LauncherMain()
	if err != nil {
		return 0, err
	}
	args := opts.Args
	if len(args) == 0 {
		args = opts.Launch.Args()
	}
	log.WithField("args", args).Info("Starting game")
	return abi.CallLauncherMain(fn, args), nil
}
