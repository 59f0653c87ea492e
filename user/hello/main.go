// Command hello is the simplest bundled application: it prints a
// greeting and exits, exercising spec.md's "Hello" scenario end to end
// (task load, write syscall, exit syscall, scheduler reaping it).
package main

import (
	_ "github.com/LiamStanDev/mini-os/user/runtime"

	"github.com/LiamStanDev/mini-os/user/console"
	"github.com/LiamStanDev/mini-os/user/syscall"
)

func main() {
	console.Println("Hello, world!")
	syscall.Exit(0)
}
