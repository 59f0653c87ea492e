// Package runtime supplies the application entry trampoline
// (entry_riscv64.s) and linker script every bundled application links
// against. It has no exported API: applications import it for its side
// effect (linking in _entry) and pass runtime/linker.ld to the linker.
package runtime
