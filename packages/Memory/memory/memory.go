package memory

import (
	"bytes"
	"unsafe"
)

// PointerSize is the width of a machine word on the only supported target.
const PointerSize = 8

// Read returns the value of type T stored at address. The access is
// unaligned and performs no byte-order conversion.
func Read[T any](address uintptr) T {
	return *(*T)(unsafe.Pointer(address))
}

// Write stores value at address as an unaligned T.
func Write[T any](address uintptr, value T) {
	*(*T)(unsafe.Pointer(address)) = value
}

func ReadPointer(address uintptr) uintptr {
	return Read[uintptr](address)
}

func WritePointer(address uintptr, value uintptr) {
	Write(address, value)
}

func ReadInt32(address uintptr) int32 {
	return Read[int32](address)
}

func ReadFloat32(address uintptr) float32 {
	return Read[float32](address)
}

func ReadBool(address uintptr) bool {
	return Read[uint8](address) != 0
}

// View aliases size bytes at address without copying.
func View(address uintptr, size int) []byte {
	if address == 0 || size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(address)), size)
}

// ReadBytes copies size bytes starting at address.
func ReadBytes(address uintptr, size int) []byte {
	view := View(address, size)
	if view == nil {
		return nil
	}
	buffer := make([]byte, size)
	copy(buffer, view)
	return buffer
}

func WriteBytes(address uintptr, data []byte) {
	copy(View(address, len(data)), data)
}

// ReadString reads a NUL-terminated string of at most maxLength bytes.
func ReadString(address uintptr, maxLength int) string {
	if address == 0 {
		return ""
	}
	if maxLength > 4096 || maxLength <= 0 {
		maxLength = 256
	}
	buffer := View(address, maxLength)
	if idx := bytes.IndexByte(buffer, 0); idx != -1 {
		buffer = buffer[:idx]
	}
	return string(buffer)
}

// AddressOf returns the numeric address of the first byte of b.
func AddressOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
