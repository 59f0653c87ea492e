package syscall

import (
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/sched"
	"github.com/LiamStanDev/mini-os/kernel/trap"
	"github.com/LiamStanDev/mini-os/kernel/vmm"
)

const fdStdout = 1

// sysWrite writes len bytes starting at buf (a user-space pointer) to fd.
// Only stdout is implemented; any other fd returns -1 and the task
// continues running rather than being killed, matching every other
// recoverable error in this syscall surface.
func sysWrite(fd int, buf uintptr, length int, ctx *trap.TrapContext) int64 {
	if fd != fdStdout {
		klog.Warn("sys_write: unsupported fd %d", fd)
		return -1
	}

	satp := sched.CurrentSatp()
	chunks := vmm.TranslatedByteBuffer(satp, buf, length)
	for _, chunk := range chunks {
		klog.Printf("%s", chunk)
	}
	return int64(length)
}
