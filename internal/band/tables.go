// SPDX-License-Identifier: MIT
package band

// TotalBins is the number of magnitude bins produced for the default
// analysis size of 2048 samples.
const TotalBins = 1024

// Six is the band table shared by the line and circle layouts, ordered from
// low to high frequency.
var Six = [6]Range{
	{0, 2},
	{4, 10},
	{13, 22},
	{40, 88},
	{100, 256},
	{280, 500},
}

// SixWide is Six with a wider top band. The solid shapes use it to pick
// their color.
var SixWide = [6]Range{
	{0, 2},
	{4, 10},
	{13, 22},
	{40, 88},
	{100, 256},
	{500, 852},
}

// Eleven is the band table used by the wire layouts.
var Eleven = [11]Range{
	{0, 2},
	{4, 10},
	{12, 16},
	{18, 22},
	{40, 60},
	{62, 80},
	{82, 100},
	{100, 140},
	{146, 190},
	{264, 542},
	{550, 852},
}

// Full covers every bin of the default spectrum.
var Full = Range{0, TotalBins}

// Linear splits total bins into n equal ranges. Range i is
// {w*i, w*i+w-1} with w = floor(total/n), so the last bin of every range is
// left out of its average. n <= 0 yields nil.
func Linear(n, total int) []Range {
	if n <= 0 {
		return nil
	}
	w := total / n
	out := make([]Range, n)
	for i := range out {
		out[i] = Range{Start: w * i, End: w*i + w - 1}
	}
	return out
}
