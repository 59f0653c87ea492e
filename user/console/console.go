// Package console gives bundled applications a print/println pair over
// the write syscall, mirroring the original's console module.
package console

import "github.com/LiamStanDev/mini-os/user/syscall"

const stdout = 1

// Print writes s to stdout without a trailing newline.
func Print(s string) {
	syscall.Write(stdout, []byte(s))
}

// Println writes s to stdout followed by a newline.
func Println(s string) {
	syscall.Write(stdout, []byte(s+"\n"))
}
