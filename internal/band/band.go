// SPDX-License-Identifier: MIT
/*
Package band reduces a byte magnitude spectrum to a single intensity value
for a contiguous range of bins.

The aggregation is a plain arithmetic mean of the byte values in the range.
It is not normalized: the result stays in [0, 255] and each generator decides
how to scale it. A range that is empty, inverted or outside the buffer never
fails; it degrades to intensity 0 or to the overlapping part of the buffer.
*/
package band

// Range selects spectrum bins Start up to, but not including, End.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Width returns the number of bins covered by r, or 0 when r is empty.
func (r Range) Width() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Average returns the arithmetic mean of buf[r.Start:r.End].
//
// The range is clipped to the buffer. An empty buffer, an empty or inverted
// range, or a range entirely outside the buffer yields 0. The divisor is the
// number of bins that actually fall inside the buffer.
func Average(buf []byte, r Range) float64 {
	start, end := max(r.Start, 0), min(r.End, len(buf))
	if end <= start {
		return 0
	}

	var sum int
	for _, v := range buf[start:end] {
		sum += int(v)
	}
	return float64(sum) / float64(end-start)
}

// Intensity is Average scaled into [0, 1].
func Intensity(buf []byte, r Range) float64 {
	return Average(buf, r) / 255
}
