// Command yieldpair forks into two tasks that alternately print "A" and
// "B" ten times each, yielding after every character. It exercises
// spec.md's "Yield pair" scenario: the expected console output is
// exactly ABABABABABABABABABAB (interleaved by the scheduler's
// round-robin fairness) followed by whichever side's tail is longer.
package main

import (
	_ "github.com/LiamStanDev/mini-os/user/runtime"

	"github.com/LiamStanDev/mini-os/user/console"
	"github.com/LiamStanDev/mini-os/user/syscall"
)

const rounds = 10

func main() {
	pid := syscall.Fork()
	letter := "A"
	if pid == 0 {
		letter = "B"
	}

	for i := 0; i < rounds; i++ {
		console.Print(letter)
		syscall.Yield()
	}

	if pid != 0 {
		var exitCode int32
		for syscall.Waitpid(int(pid), &exitCode) == -2 {
			syscall.Yield()
		}
	}
	syscall.Exit(0)
}
