// Package sbi wraps the three SBI (Supervisor Binary Interface) calls the
// kernel needs: console output, timer programming, and system reset. The
// kernel treats SBI as infallible except that system reset never returns.
// This is the spec's own "thin external collaborator" (its contract is just
// three ecalls) so, unlike the rest of the kernel, it carries no logic of
// its own beyond the raw trap into M-mode.
package sbi

// sbi call numbers, per the legacy SBI console extension and the v0.2
// SRST (system reset) extension.
const (
	legacyConsolePutchar = 0x01
	legacySetTimer       = 0x00

	extSRST      = 0x53525354
	fidSRSTReset = 0x0

	// ResetTypeShutdown requests an orderly power-off.
	ResetTypeShutdown = 0x00
	// ResetReasonNone indicates no failure occurred.
	ResetReasonNone = 0x00
	// ResetReasonFailure indicates the shutdown follows a kernel panic.
	ResetReasonFailure = 0x01
)

// ConsolePutChar writes a single byte to the SBI console.
func ConsolePutChar(c byte) { sbiCall(legacyConsolePutchar, uintptr(c), 0, 0) }

// SetTimer programs the next supervisor timer interrupt to fire at the
// given absolute mtime value.
func SetTimer(absTime uint64) { sbiCall(legacySetTimer, uintptr(absTime), 0, 0) }

// Shutdown requests an orderly system reset. If failure is true the reset
// is reported with ResetReasonFailure. Shutdown never returns.
func Shutdown(failure bool) {
	reason := uintptr(ResetReasonNone)
	if failure {
		reason = ResetReasonFailure
	}
	sbiCallExt(extSRST, fidSRSTReset, ResetTypeShutdown, reason, 0)
	for {
	}
}

// sbiCall issues an SBI ecall using the legacy calling convention (eid in
// a7, up to three arguments in a0-a2, no distinct fid). Implemented in
// sbi_riscv64.s.
func sbiCall(eid, arg0, arg1, arg2 uintptr) uintptr

// sbiCallExt issues an SBI ecall using the v0.2+ calling convention (eid in
// a7, fid in a6, up to three arguments in a0-a2). Implemented in
// sbi_riscv64.s.
func sbiCallExt(eid, fid, arg0, arg1, arg2 uintptr) uintptr
