package abi

/*
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>

#include "abi.h"

typedef uintptr_t (*elysium_fn6)(uintptr_t, uintptr_t, uintptr_t, uintptr_t, uintptr_t, uintptr_t);

static uintptr_t elysium_call6(uintptr_t fn, uintptr_t a, uintptr_t b, uintptr_t c,
                               uintptr_t d, uintptr_t e, uintptr_t f) {
	return ((elysium_fn6)fn)(a, b, c, d, e, f);
}

static void elysium_call_swap_window(uintptr_t fn, uintptr_t window) {
	((void (*)(void *))fn)((void *)window);
}

static int elysium_call_poll_event(uintptr_t fn, uintptr_t event) {
	return ((int (*)(void *))fn)((void *)event);
}

static void elysium_call_frame_stage_notify(uintptr_t fn, uintptr_t self, int stage) {
	((void (*)(void *, int))fn)((void *)self, stage);
}

static bool elysium_call_create_move(uintptr_t fn, uintptr_t self, float sample, uintptr_t cmd) {
	return ((bool (*)(void *, float, void *))fn)((void *)self, sample, (void *)cmd);
}

static void elysium_call_draw_model(uintptr_t fn, uintptr_t self, uintptr_t ctx, uintptr_t state,
                                    uintptr_t info, uintptr_t bones) {
	((void (*)(void *, void *, void *, void *, void *))fn)((void *)self, (void *)ctx, (void *)state,
	                                                       (void *)info, (void *)bones);
}

static int elysium_call_list_leaves_in_box(uintptr_t fn, uintptr_t self, uintptr_t mins,
                                           uintptr_t maxs, uintptr_t list, int max) {
	return ((int (*)(void *, void *, void *, void *, int))fn)((void *)self, (void *)mins,
	                                                         (void *)maxs, (void *)list, max);
}

static void elysium_call_float3(uintptr_t fn, uintptr_t self, float a, float b, float c) {
	((void (*)(void *, float, float, float))fn)((void *)self, a, b, c);
}

static void elysium_call_float1(uintptr_t fn, uintptr_t self, float a) {
	((void (*)(void *, float))fn)((void *)self, a);
}

static uintptr_t elysium_call_create_interface(uintptr_t fn, const char *name, int *status) {
	return (uintptr_t)((void *(*)(const char *, int *))fn)(name, status);
}

static int elysium_call_launcher_main(uintptr_t fn, int argc, char **argv) {
	return ((int (*)(int, char **))fn)(argc, argv);
}

static uintptr_t elysium_addr_swap_window(void) { return (uintptr_t)&elysium_swap_window; }
static uintptr_t elysium_addr_poll_event(void) { return (uintptr_t)&elysium_poll_event; }
static uintptr_t elysium_addr_frame_stage_notify(void) { return (uintptr_t)&elysium_frame_stage_notify; }
static uintptr_t elysium_addr_create_move(void) { return (uintptr_t)&elysium_create_move; }
static uintptr_t elysium_addr_override_view(void) { return (uintptr_t)&elysium_override_view; }
static uintptr_t elysium_addr_draw_model(void) { return (uintptr_t)&elysium_draw_model; }
static uintptr_t elysium_addr_list_leaves_in_box(void) { return (uintptr_t)&elysium_list_leaves_in_box; }
static uintptr_t elysium_addr_log(void) { return (uintptr_t)&elysium_log; }
static uintptr_t elysium_addr_log_direct(void) { return (uintptr_t)&elysium_log_direct; }

static void elysium_set_send_packet_offset(intptr_t offset) { elysium_send_packet_offset = offset; }
*/
import "C"

import (
	"unsafe"
)

// Replacement names a C entry point a hook can redirect to.
type Replacement uint8

const (
	SwapWindow Replacement = iota
	PollEvent
	FrameStageNotify
	CreateMove
	OverrideView
	DrawModel
	ListLeavesInBox
	Log
	LogDirect
)

// Address returns the entry point of a replacement function.
func (r Replacement) Address() uintptr {
	switch r {
	case SwapWindow:
		return uintptr(C.elysium_addr_swap_window())
	case PollEvent:
		return uintptr(C.elysium_addr_poll_event())
	case FrameStageNotify:
		return uintptr(C.elysium_addr_frame_stage_notify())
	case CreateMove:
		return uintptr(C.elysium_addr_create_move())
	case OverrideView:
		return uintptr(C.elysium_addr_override_view())
	case DrawModel:
		return uintptr(C.elysium_addr_draw_model())
	case ListLeavesInBox:
		return uintptr(C.elysium_addr_list_leaves_in_box())
	case Log:
		return uintptr(C.elysium_addr_log())
	case LogDirect:
		return uintptr(C.elysium_addr_log_direct())
	}
	panic("abi: unknown replacement")
}

// SetSendPacketOffset sets how far below the caller's frame pointer the
// create-move replacement finds the game's send_packet local.
func SetSendPacketOffset(offset uintptr) {
	C.elysium_set_send_packet_offset(C.intptr_t(offset))
}

// Call invokes fn with up to six integer or pointer arguments under the
// System V convention and returns rax.
func Call(fn uintptr, args ...uintptr) uintptr {
	if len(args) > 6 {
		panic("abi: more than six integer arguments")
	}
	var a [6]uintptr
	copy(a[:], args)
	return uintptr(C.elysium_call6(C.uintptr_t(fn), C.uintptr_t(a[0]), C.uintptr_t(a[1]),
		C.uintptr_t(a[2]), C.uintptr_t(a[3]), C.uintptr_t(a[4]), C.uintptr_t(a[5])))
}

// CallBool is Call for functions returning bool.
func CallBool(fn uintptr, args ...uintptr) bool {
	return Call(fn, args...)&0xff != 0
}

func CallSwapWindow(fn, window uintptr) {
	C.elysium_call_swap_window(C.uintptr_t(fn), C.uintptr_t(window))
}

func CallPollEvent(fn, event uintptr) int32 {
	return int32(C.elysium_call_poll_event(C.uintptr_t(fn), C.uintptr_t(event)))
}

func CallFrameStageNotify(fn, self uintptr, stage int32) {
	C.elysium_call_frame_stage_notify(C.uintptr_t(fn), C.uintptr_t(self), C.int(stage))
}

func CallCreateMove(fn, self uintptr, sample float32, cmd uintptr) bool {
	return bool(C.elysium_call_create_move(C.uintptr_t(fn), C.uintptr_t(self), C.float(sample), C.uintptr_t(cmd)))
}

func CallDrawModel(fn, self, ctx, state, info, bones uintptr) {
	C.elysium_call_draw_model(C.uintptr_t(fn), C.uintptr_t(self), C.uintptr_t(ctx),
		C.uintptr_t(state), C.uintptr_t(info), C.uintptr_t(bones))
}

func CallListLeavesInBox(fn, self, mins, maxs, list uintptr, max int32) int32 {
	return int32(C.elysium_call_list_leaves_in_box(C.uintptr_t(fn), C.uintptr_t(self),
		C.uintptr_t(mins), C.uintptr_t(maxs), C.uintptr_t(list), C.int(max)))
}

// CallFloat3 invokes a method taking three floats, such as a colour modulation.
func CallFloat3(fn, self uintptr, a, b, c float32) {
	C.elysium_call_float3(C.uintptr_t(fn), C.uintptr_t(self), C.float(a), C.float(b), C.float(c))
}

func CallFloat1(fn, self uintptr, a float32) {
	C.elysium_call_float1(C.uintptr_t(fn), C.uintptr_t(self), C.float(a))
}

// CString copies s into C memory that is never freed, for names handed to
// game lookups whose results are cached.
func CString(s string) uintptr {
	return uintptr(unsafe.Pointer(C.CString(s)))
}

// CallCreateInterface invokes a CreateInterface factory. The status is
// non-zero on failure.
func CallCreateInterface(fn uintptr, name string) (uintptr, int32) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var status C.int
	ptr := C.elysium_call_create_interface(C.uintptr_t(fn), cname, &status)
	return uintptr(ptr), int32(status)
}

// CallLauncherMain runs the game's entry point with argv. The game keeps
// pointers into argv, so the strings are never freed.
func CallLauncherMain(fn uintptr, argv []string) int32 {
	cargv := C.malloc(C.size_t(len(argv)+1) * C.size_t(unsafe.Sizeof(uintptr(0))))
	slots := unsafe.Slice((**C.char)(cargv), len(argv)+1)
	for i, arg := range argv {
		slots[i] = C.CString(arg)
	}
	slots[len(argv)] = nil
	return int32(C.elysium_call_launcher_main(C.uintptr_t(fn), C.int(len(argv)), (**C.char)(cargv)))
}
