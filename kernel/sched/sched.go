// Package sched is the round-robin task scheduler: it owns the task
// table, decides which Ready task runs next, and drives the low-level
// task.Switch context-switch primitive. It also owns the hooks trap
// registers itself against (trap.SetSchedulerHooks) so a syscall or timer
// interrupt can suspend or exit the current task without trap importing
// sched directly.
package sched

import (
	"github.com/LiamStanDev/mini-os/kernel/klog"
	"github.com/LiamStanDev/mini-os/kernel/sbi"
	"github.com/LiamStanDev/mini-os/kernel/sync"
	"github.com/LiamStanDev/mini-os/kernel/task"
	"github.com/LiamStanDev/mini-os/kernel/trap"
	"github.com/LiamStanDev/mini-os/kernel/vmm"
)

type managerState struct {
	tasks       []*task.ControlBlock
	currentTask int
}

// Manager is the global round-robin task table.
type Manager struct {
	cell        *sync.Cell[managerState]
	kernelSpace *vmm.MemorySet
}

var manager *Manager

// Init installs tasks as the scheduled task table and wires the hooks
// trap.TrapHandler needs to suspend, exit, and locate the running task.
// kernelSpace is kept so Fork and Exec can extend the kernel's own
// mappings (new kernel stacks, new trap contexts) without needing a
// second way to reach it.
func Init(tasks []*task.ControlBlock, kernelSpace *vmm.MemorySet) *Manager {
	manager = &Manager{cell: sync.NewCell(managerState{tasks: tasks}), kernelSpace: kernelSpace}
	trap.SetSchedulerHooks(
		SuspendCurrentAndRunNext,
		ExitCurrentAndRunNext,
		CurrentTrapCtx,
		CurrentSatp,
	)
	return manager
}

// currentTCB returns the control block for the task presently marked
// running. Callers must already hold the manager cell.
func (st *managerState) currentTCB() *task.ControlBlock {
	return st.tasks[st.currentTask]
}

// findNextReady returns the index of the next Ready task after the
// current one, scanning round-robin, or -1 if none is Ready.
func (st *managerState) findNextReady() int {
	n := len(st.tasks)
	for offset := 1; offset <= n; offset++ {
		id := (st.currentTask + offset) % n
		if st.tasks[id].Status == task.StatusReady {
			return id
		}
	}
	return -1
}

// CurrentTrapCtx returns the TrapContext of the currently running task.
func CurrentTrapCtx() *trap.TrapContext {
	acc := manager.cell.Access()
	defer acc.Release()
	return acc.Value().currentTCB().TrapCtxMut()
}

// CurrentSatp returns the satp token of the currently running task's
// address space.
func CurrentSatp() uintptr {
	acc := manager.cell.Access()
	defer acc.Release()
	return acc.Value().currentTCB().Satp()
}

// SuspendCurrentAndRunNext marks the running task Ready (it was merely
// preempted, not finished) and switches to the next Ready task.
func SuspendCurrentAndRunNext() {
	acc := manager.cell.Access()
	st := acc.Value()
	current := st.currentTask
	klog.Trace("task %d suspended", current)
	st.tasks[current].Status = task.StatusReady
	acc.Release()

	runNext()
}

// ExitCurrentAndRunNext marks the running task Exited with exitCode and
// switches to the next Ready task.
func ExitCurrentAndRunNext(exitCode int) {
	acc := manager.cell.Access()
	st := acc.Value()
	current := st.currentTask
	klog.Trace("task %d exited with code %d", current, exitCode)
	st.tasks[current].Status = task.StatusExited
	st.tasks[current].ExitCode = exitCode
	acc.Release()

	runNext()
}

// runNext switches from the current task to the next Ready one. If none
// is Ready, every task has finished and the machine shuts down.
func runNext() {
	acc := manager.cell.Access()
	st := acc.Value()
	next := st.findNextReady()
	if next < 0 {
		acc.Release()
		klog.Info("all tasks completed, shutting down")
		sbi.Shutdown(false)
		return
	}

	current := st.currentTask
	st.tasks[next].Status = task.StatusRunning
	st.currentTask = next
	currentCtx := &st.tasks[current].Context
	nextCtx := &st.tasks[next].Context
	acc.Release()

	task.Switch(currentCtx, nextCtx)
}

// Fork duplicates the running task's address space into a brand-new task
// appended to the table and returns the child's pid.
func Fork() int {
	acc := manager.cell.Access()
	st := acc.Value()
	parent := st.tasks[st.currentTask]
	childID := len(st.tasks)

	child := task.Fork(childID, parent, manager.kernelSpace)
	child.TrapCtxMut().X[10] = 0 // fork() returns 0 in the child
	st.tasks = append(st.tasks, child)
	acc.Release()

	return childID
}

// Exec replaces the running task's address space with elfData, returning
// 0. The task's pid and kernel stack are unchanged.
func Exec(elfData []byte) int64 {
	acc := manager.cell.Access()
	st := acc.Value()
	current := st.tasks[st.currentTask]
	acc.Release()

	current.ReplaceImage(elfData, manager.kernelSpace)
	return 0
}

// Waitpid reaps pid if it has exited, returning its pid and exit code with
// status 0. status is -1 if pid names no task, or -2 if that task has not
// exited yet; the other two results are then 0. Writing the exit code back
// to user space is left to the caller.
func Waitpid(pid int) (reapedPID int, exitCode int, status int) {
	acc := manager.cell.Access()
	st := acc.Value()
	defer acc.Release()

	if pid < 0 || pid >= len(st.tasks) || st.tasks[pid] == nil {
		return 0, 0, -1
	}
	if st.tasks[pid].Status != task.StatusExited {
		return 0, 0, -2
	}
	return pid, st.tasks[pid].ExitCode, 0
}

// RunFirstTask starts task 0 running, switching away from a throwaway
// context that is never switched back to. It never returns.
func RunFirstTask() {
	acc := manager.cell.Access()
	st := acc.Value()
	st.tasks[0].Status = task.StatusRunning
	st.currentTask = 0
	nextCtx := &st.tasks[0].Context
	acc.Release()

	var dummy task.TaskContext
	task.Switch(&dummy, nextCtx)
	panic("sched: unreachable after RunFirstTask")
}
