// Package system reports local machine capacity for cache and download
// planning.
package system

import (
	"fmt"
	"syscall"
)

// AvailableSpace returns the free disk space in bytes at the given path.
func AvailableSpace(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("disk space for %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// HasSpaceFor reports whether the path can hold the required bytes, with a
// 10% buffer for filesystem overhead. It also returns the available bytes.
func HasSpaceFor(path string, requiredBytes uint64) (bool, uint64, error) {
	available, err := AvailableSpace(path)
	if err != nil {
		return false, 0, err
	}
	required := uint64(float64(requiredBytes) * 1.1)
	return available >= required, available, nil
}

// DiskUsage returns total, used, and available bytes for a path.
func DiskUsage(path string) (total, used, available uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, 0, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	total = stat.Blocks * uint64(stat.Bsize)
	available = stat.Bavail * uint64(stat.Bsize)
	used = total - stat.Bfree*uint64(stat.Bsize)
	return total, used, available, nil
}
