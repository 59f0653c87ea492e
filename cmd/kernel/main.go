// Command kernel is the freestanding riscv64 kernel image. It links
// against nothing but the Go standard library and kernel/boot; main is
// the only symbol the entry assembly calls into.
package main

import "github.com/LiamStanDev/mini-os/kernel/boot"

// main is a trampoline for boot.Kmain, kept separate so the Go compiler
// always sees a live call into the kernel package and never optimizes it
// away as dead code.
//
// main never returns. If boot.Kmain somehow did, there is nothing left
// for the entry assembly to do but halt.
func main() {
	boot.Kmain()
}
