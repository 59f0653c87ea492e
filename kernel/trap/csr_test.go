package trap

import "testing"

func TestScauseInterruptBit(t *testing.T) {
	interruptBit := uintptr(1) << (uintptrBits - 1)

	timerInterrupt := interruptBit | InterruptSupervisorTimer
	if !scauseIsInterrupt(timerInterrupt) {
		t.Fatal("expected interrupt bit to be detected")
	}
	if scauseCode(timerInterrupt) != InterruptSupervisorTimer {
		t.Fatalf("got code %d", scauseCode(timerInterrupt))
	}

	ecall := uintptr(ExceptionUserEnvCall)
	if scauseIsInterrupt(ecall) {
		t.Fatal("expected exception, not interrupt")
	}
	if scauseCode(ecall) != ExceptionUserEnvCall {
		t.Fatalf("got code %d", scauseCode(ecall))
	}
}
