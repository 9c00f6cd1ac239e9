package system

import "testing"

func TestAvailableSpace(t *testing.T) {
	dir := t.TempDir()
	avail, err := AvailableSpace(dir)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if avail == 0 {
		t.Fatalf("expected nonzero free space in %s", dir)
	}
}

func TestHasSpaceFor(t *testing.T) {
	dir := t.TempDir()
	ok, avail, err := HasSpaceFor(dir, 1)
	if err != nil || !ok {
		t.Fatalf("one byte should always fit: ok=%v avail=%d err=%v", ok, avail, err)
	}
	ok, _, err = HasSpaceFor(dir, ^uint64(0)/2)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatalf("absurd requirement should not fit")
	}
}

func TestDiskUsageConsistency(t *testing.T) {
	total, used, available, err := DiskUsage(t.TempDir())
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if total == 0 || used > total || available > total {
		t.Fatalf("inconsistent: total=%d used=%d available=%d", total, used, available)
	}
}
