// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"strconv"
)

const (
	testSampleRate = 44100
	testFrameSize  = 512

	lowThreshold  = int32(math.MaxInt32 / 1000)
	highThreshold = int32(math.MaxInt32 / 2)
)

var (
	quietBuffer = constantBuffer(testFrameSize, math.MaxInt32/100) // ~1% of full scale
	testBuffer  = constantBuffer(testFrameSize, math.MaxInt32/4)
	loudBuffer  = constantBuffer(testFrameSize, math.MaxInt32/10*9) // ~90% of full scale
)

// constantBuffer alternates +peak and -peak.
func constantBuffer(n int, peak int32) []int32 {
	buf := make([]int32, n)
	for i := range buf {
		if i%2 == 0 {
			buf[i] = peak
		} else {
			buf[i] = -peak
		}
	}
	return buf
}

// countingProcessor records what it is handed.
type countingProcessor struct {
	calls int
	last  []int32
}

func (c *countingProcessor) Process(in []int32) {
	c.calls++
	c.last = append(c.last[:0], in...)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func absFloat(f float64) float64 {
	return math.Abs(f)
}

// absInt32 returns the absolute value of x.
func absInt32(x int32) int32 {
	mask := x >> 31
	return (x ^ mask) - mask
}
