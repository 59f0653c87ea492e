// Package timer wraps the RISC-V time CSR and the SBI timer call into the
// get_time()/set_next_trigger() pair the trap handler and GET_TIME
// syscall need.
package timer

import (
	"github.com/LiamStanDev/mini-os/kernel/config"
	"github.com/LiamStanDev/mini-os/kernel/sbi"
)

const msecPerSec = 1000

// readTime reads the 64-bit mtime counter. Implemented in
// timer_riscv64.s.
func readTime() uint64

// GetTime returns the raw mtime tick count.
func GetTime() uint64 { return readTime() }

// GetTimeMs returns elapsed time since boot in milliseconds.
func GetTimeMs() uint64 {
	return readTime() / (config.ClockFreq / msecPerSec)
}

// SetNextTrigger programs the next supervisor timer interrupt one
// scheduling quantum (config.TicksPerSec) from now.
func SetNextTrigger() {
	sbi.SetTimer(readTime() + config.ClockFreq/config.TicksPerSec)
}
