//go:build !linux

package workers

func hostMemory() uint64 {
	return 0
}
