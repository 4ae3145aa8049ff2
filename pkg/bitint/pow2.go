// SPDX-License-Identifier: MIT

// Package bitint holds the power-of-2 helpers used to size analysis windows
// and validate the FFT size in the configuration.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size, or 1 when size is
// not positive. Powers of 2 are returned unchanged because the highest set
// bit is taken from size-1.
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
