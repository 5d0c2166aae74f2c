package abi

/*
#cgo CFLAGS: -O2 -fno-omit-frame-pointer
#include <stdbool.h>
*/
import "C"

import (
	"strings"
	"sync/atomic"
	"unsafe"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging"
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/logging/logfields"
)

var log = logging.DefaultLogger.WithField(logfields.LogSubsys, "abi")

// Handlers receive control from the C replacement functions. Every field
// must be set before the matching hook is installed.
type Handlers struct {
	SwapWindow       func(window uintptr)
	PollEvent        func(event uintptr) int32
	FrameStageNotify func(self uintptr, stage int32)
	CreateMove       func(self uintptr, sample float32, cmd uintptr, sendPacket *bool) bool
	OverrideView     func(self, setup uintptr)
	DrawModel        func(self, ctx, state, info, bones uintptr)
	ListLeavesInBox  func(self, mins, maxs, list uintptr, max int32, ret, frame uintptr) int32
	GameLog          func(channel, severity int32, message string)
}

var handlers atomic.Pointer[Handlers]

func SetHandlers(h *Handlers) {
	handlers.Store(h)
}

func current() *Handlers {
	h := handlers.Load()
	if h == nil {
		panic("abi: callback before handlers were installed")
	}
	return h
}

// recoverCallback keeps a panic from unwinding into game frames.
func recoverCallback(name string) {
	if r := recover(); r != nil {
		log.WithField(logfields.Hook, name).Errorf("callback panicked: %v", r)
	}
}

//export goSwapWindow
func goSwapWindow(window unsafe.Pointer) {
	defer recoverCallback("swap_window")
	current().SwapWindow(uintptr(window))
}

//export goPollEvent
func goPollEvent(event unsafe.Pointer) (result C.int) {
	defer recoverCallback("poll_event")
	return C.int(current().PollEvent(uintptr(event)))
}

//export goFrameStageNotify
func goFrameStageNotify(self unsafe.Pointer, stage C.int) {
	defer recoverCallback("frame_stage_notify")
	current().FrameStageNotify(uintptr(self), int32(stage))
}

//export goCreateMove
func goCreateMove(self unsafe.Pointer, sample C.float, cmd unsafe.Pointer, sendPacket unsafe.Pointer) (result C.bool) {
	defer recoverCallback("create_move")
	return C.bool(current().CreateMove(uintptr(self), float32(sample), uintptr(cmd), (*bool)(sendPacket)))
}

//export goOverrideView
func goOverrideView(self unsafe.Pointer, setup unsafe.Pointer) {
	defer recoverCallback("override_view")
	current().OverrideView(uintptr(self), uintptr(setup))
}

//export goDrawModel
func goDrawModel(self, ctx, state, info, bones unsafe.Pointer) {
	defer recoverCallback("draw_model")
	current().DrawModel(uintptr(self), uintptr(ctx), uintptr(state), uintptr(info), uintptr(bones))
}

//export goListLeavesInBox
func goListLeavesInBox(self, mins, maxs unsafe.Pointer, list *C.ushort, max C.int, ret, frame unsafe.Pointer) (result C.int) {
	defer recoverCallback("list_leaves_in_box")
	return C.int(current().ListLeavesInBox(uintptr(self), uintptr(mins), uintptr(maxs),
		uintptr(unsafe.Pointer(list)), int32(max), uintptr(ret), uintptr(frame)))
}

//export goGameLog
func goGameLog(channel, severity C.int, message *C.char) {
	defer recoverCallback("game_log")
	gameLog(int32(channel), int32(severity), C.GoString(message))
}

// gameLog forwards to the installed handler. Lines the game logs before
// handlers are installed go straight to the logger.
func gameLog(channel, severity int32, message string) {
	if h := handlers.Load(); h != nil && h.GameLog != nil {
		h.GameLog(channel, severity, message)
		return
	}
	message = strings.TrimRight(message, "\n")
	if message == "" {
		return
	}
	log.WithField(logfields.Channel, channel).
		WithField(logfields.Severity, severity).
		Info(message)
}
