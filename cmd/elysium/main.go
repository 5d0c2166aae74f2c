// Command elysium hosts the game in-process with the instrumentation
// installed before its entry point runs.
package main

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
)

// initThread is the thread package initialization ran on.
var initThread int

func init() {
	// The game's SDL window and GL context belong to the process main thread.
	runtime.LockOSThread()
	initThread = unix.Gettid()
}

func main() {
	if err := newCmdRoot().Execute(); err != nil {
		logging.DefaultLogger.WithError(err).Error("elysium failed")
		os.Exit(1)
	}
	os.Exit(int(gameExit))
}
