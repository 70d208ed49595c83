package smallmap

import (
	"math/bits"
	"unsafe"
)

// Returns the next power of 2 for the given value `v`.
func NextPowerOf2(v uint32) uint32 {
	return uint32(1) << min(bits.Len32(v-1), 31)
}

// Estimates how many key/value pairs fit into the given memory size in bytes.
// Useful to pick a WithCapacity value from a memory budget.
func CapacityFromSize[K, V any](size uintptr) int {
	sizeOfPair := unsafe.Sizeof(Pair[K, V]{})
	if sizeOfPair == 0 {
		return 0
	}

	return int(size / sizeOfPair)
}
