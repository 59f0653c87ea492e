package syscall

import "unsafe"

func bytesPointer(b []byte) unsafe.Pointer { return unsafe.Pointer(&b[0]) }

func intPointer(p *int32) unsafe.Pointer { return unsafe.Pointer(p) }

// stringPointer returns a pointer to a NUL-terminated copy of s, since
// the kernel's sys_exec reads the path byte-by-byte until NUL rather
// than taking an explicit length.
func stringPointer(s string) unsafe.Pointer {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return unsafe.Pointer(&buf[0])
}
