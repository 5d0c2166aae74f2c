package library

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"unsafe"
)

// Handle is an opaque loader handle.
type Handle uintptr

// Opener maps shared objects and resolves their exports.
type Opener interface {
	Open(path string) (Handle, error)
	Symbol(h Handle, name string) (uintptr, error)
}

type dl struct{}

// System is the dynamic loader of the running process.
var System Opener = dl{}

func dlerror() error {
	msg := C.dlerror()
	if msg == nil {
		return errors.New("unknown dynamic loader error")
	}
	return errors.New(C.GoString(msg))
}

// Open maps path and runs its initializers.
func (dl) Open(path string) (Handle, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	C.dlerror()
	h := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_GLOBAL)
	if h == nil {
		return 0, dlerror()
	}
	return Handle(uintptr(h)), nil
}

func (dl) Symbol(h Handle, name string) (uintptr, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	C.dlerror()
	sym := C.dlsym(unsafe.Pointer(uintptr(h)), cname)
	if sym == nil {
		return 0, dlerror()
	}
	return uintptr(sym), nil
}
