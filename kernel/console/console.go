// Package console adapts the SBI console byte-out call to an io.Writer so
// the rest of the kernel (klog, sys_write) never calls sbi directly.
package console

import "github.com/LiamStanDev/mini-os/kernel/sbi"

// Writer sends every byte written to it to the SBI console.
type Writer struct{}

// Write implements io.Writer. It always consumes the whole buffer.
func (Writer) Write(p []byte) (int, error) {
	for _, b := range p {
		sbi.ConsolePutChar(b)
	}
	return len(p), nil
}
