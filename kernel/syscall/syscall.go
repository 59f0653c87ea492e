// Package syscall is the kernel's syscall surface: the dispatch table
// trap.TrapHandler invokes for Exception::UserEnvCall, and the individual
// sys_* implementations. IDs follow the running application binary
// interface (a7 carries the id, a0-a2 carry up to three arguments, a0
// carries the return value).
package syscall

import (
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/sched"
	"github.com/LiamStanDev/mini-os/kernel/trap"
)

const (
	Read    = 63
	Write   = 64
	Exit    = 93
	Yield   = 124
	GetTime = 169
	Fork    = 220
	Exec    = 221
	Waitpid = 260
)

// Dispatch routes a syscall id to its handler. It is installed as trap's
// syscall hook during boot (trap.SetSyscallHandler(syscall.Dispatch)).
func Dispatch(id uintptr, args [3]uintptr, ctx *trap.TrapContext) uintptr {
	switch id {
	case Write:
		return int64ToUintptr(sysWrite(int(args[0]), args[1], int(args[2]), ctx))
	case Exit:
		sysExit(int(int32(args[0])))
		panic("syscall: unreachable after sys_exit")
	case Yield:
		return int64ToUintptr(sysYield())
	case GetTime:
		return int64ToUintptr(sysGetTime())
	case Read:
		klog.Warn("unsupported syscall READ")
		return int64ToUintptr(-1)
	case Fork:
		return int64ToUintptr(sysFork(ctx))
	case Exec:
		return int64ToUintptr(sysExec(args[0], ctx))
	case Waitpid:
		return int64ToUintptr(sysWaitpid(int(int32(args[0])), args[1], ctx))
	default:
		klog.Warn("unsupported syscall id=%d, kernel killed it", id)
		sched.ExitCurrentAndRunNext(-1)
		panic("syscall: unreachable after sys_exit")
	}
}

// int64ToUintptr reinterprets a signed return value (including negative
// error codes) as the unsigned a0 the ABI actually carries.
func int64ToUintptr(v int64) uintptr { return uintptr(v) }
