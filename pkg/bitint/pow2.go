// SPDX-License-Identifier: MIT
//
// Package bitint holds the power-of-two helpers used to validate and suggest
// FFT chunk sizes. All functions are O(1), allocation free and safe to call
// from the render loop.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size.
// Non-positive sizes yield 1.
//
// The size-1 matters: without it an exact power of two would be doubled
// (bits.Len(8) is 4, bits.Len(7) is 3).
//
//	Input  Output
//	1000   1024
//	1024   1024
//	0      1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
