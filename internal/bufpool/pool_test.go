package bufpool

import "testing"

func TestAcquireReturnsEmptyBuffer(t *testing.T) {
	b := Acquire()
	*b = append(*b, "voice*"...)
	Release(b)

	again := Acquire()
	defer Release(again)
	if len(*again) != 0 {
		t.Fatalf("expected empty buffer, got %q", *again)
	}
	if cap(*again) < Cap {
		t.Fatalf("expected capacity of at least %d, got %d", Cap, cap(*again))
	}
}

func TestReleaseDropsOversizedBuffers(t *testing.T) {
	big := make([]byte, 0, 16*Cap)
	Release(&big)
	Release(nil)
}
