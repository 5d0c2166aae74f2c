package main

import "C"

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/bootstrap"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
	"github.com/mizz1e/snowdrop-sub000/packages/launch"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "preload")

// Programs the shared object initializes inside.
var allowedHosts = []string{launch.Program}

// elysiumPreload is called from the library constructor on the host's main
// thread. Inside the game it never returns: the game runs under
// LauncherMain from here and the process exits with its code.
//
//export elysiumPreload
func elysiumPreload() {
	name := hostName()
	if !hostAllowed(name) {
		return
	}
	runtime.LockOSThread()
	log.WithFields(logrus.Fields{
		logfields.Pid:     os.Getpid(),
		logfields.Program: name,
	}).Info("Attaching")

	os.Exit(preload(bootstrap.Run, os.Args))
}

// preload initializes synchronously and hands the host's own command line
// to LauncherMain.
func preload(run func(bootstrap.Options) (int32, error), args []string) int {
	opts := bootstrap.DefaultOptions()
	opts.InvokeLauncher = true
	opts.Args = args
	code, err := run(opts)
	if err != nil {
		log.WithError(err).Error("Initialization failed")
		return 1
	}
	return int(code)
}

func hostName() string {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err == nil {
		if name, err := p.Name(); err == nil && name != "" {
			return name
		}
	}
	return filepath.Base(os.Args[0])
}

func hostAllowed(name string) bool {
	return slices.Contains(allowedHosts, name)
}
