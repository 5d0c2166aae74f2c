package memory

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrProtection is returned when the kernel refuses a protection change.
var ErrProtection = errors.New("cannot change page protection")

var pageSize = uintptr(unix.Getpagesize())

func PageSize() uintptr {
	return pageSize
}

func pageStart(address uintptr) uintptr {
	return address &^ (pageSize - 1)
}

func (p Perm) prot() int {
	prot := unix.PROT_NONE
	if p&PermRead != 0 {
		prot |= unix.PROT_READ
	}
	if p&PermWrite != 0 {
		prot |= unix.PROT_WRITE
	}
	if p&PermExec != 0 {
		prot |= unix.PROT_EXEC
	}
	return prot
}

func page(address uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(address)), pageSize)
}

// WithWritable runs f while every page overlapping [address, address+size)
// is writable. Pages that already allow writing are left alone; the others
// are raised to rwx and restored to their previous permissions when f
// returns or panics.
func WithWritable(address uintptr, size int, f func()) (err error) {
	if size <= 0 {
		size = 1
	}
	maps, err := CurrentMaps()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtection, err)
	}

	type saved struct {
		start uintptr
		perm  Perm
	}
	var raised []saved
	defer func() {
		for _, s := range raised {
			if rerr := unix.Mprotect(page(s.start), s.perm.prot()); rerr != nil && err == nil {
				err = fmt.Errorf("%w: restore %#x to %s: %v", ErrProtection, s.start, s.perm, rerr)
			}
		}
	}()

	last := pageStart(address + uintptr(size) - 1)
	for start := pageStart(address); start <= last; start += pageSize {
		m, ok := maps.Find(start)
		if !ok {
			return fmt.Errorf("%w: %#x is not mapped", ErrProtection, start)
		}
		if m.Perm&PermWrite != 0 {
			continue
		}
		if perr := unix.Mprotect(page(start), unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); perr != nil {
			return fmt.Errorf("%w: %#x: %v", ErrProtection, start, perr)
		}
		raised = append(raised, saved{start: start, perm: m.Perm})
	}

	f()
	return nil
}
