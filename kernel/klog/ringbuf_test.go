package klog

import "testing"

func TestRingBufferFIFO(t *testing.T) {
	var rb ringBuffer
	rb.Write([]byte("hello"))

	out := make([]byte, 5)
	n, _ := rb.Read(out)
	if n != 5 || string(out) != "hello" {
		t.Fatalf("got %d bytes %q", n, out[:n])
	}
}

func TestRingBufferOverwritesOldestWhenFull(t *testing.T) {
	var rb ringBuffer
	filler := make([]byte, ringBufferSize)
	for i := range filler {
		filler[i] = 'a'
	}
	rb.Write(filler)
	rb.Write([]byte("Z"))

	var got []byte
	chunk := make([]byte, 64)
	for {
		n, _ := rb.Read(chunk)
		if n == 0 {
			break
		}
		got = append(got, chunk[:n]...)
	}
	if len(got) == 0 {
		t.Fatal("expected buffered data, got none")
	}
	if got[len(got)-1] != 'Z' {
		t.Fatalf("expected last byte to be the newest write, got %q", got[len(got)-1])
	}
}
