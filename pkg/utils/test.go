// SPDX-License-Identifier: MIT
package utils

import "math"

// MockSource is a fixed audio source for tests. It satisfies
// spectrum.Source and counts how often each buffer was read.
type MockSource struct {
	Magnitudes []byte
	TimeDomain []byte

	MagnitudeReads  int
	TimeDomainReads int
}

// NewConstantSource returns a MockSource with bins magnitude bins all set to
// level and a flat time-domain trace at 128.
func NewConstantSource(bins int, level byte) *MockSource {
	m := &MockSource{
		Magnitudes: make([]byte, bins),
		TimeDomain: make([]byte, bins),
	}
	for i := range m.Magnitudes {
		m.Magnitudes[i] = level
		m.TimeDomain[i] = 128
	}
	return m
}

func (m *MockSource) FrequencyBinCount() int {
	return len(m.Magnitudes)
}

func (m *MockSource) FrequencyMagnitudes(dst []byte) {
	m.MagnitudeReads++
	copy(dst, m.Magnitudes)
}

func (m *MockSource) TimeDomainSamples(dst []byte) {
	m.TimeDomainReads++
	copy(dst, m.TimeDomain)
}

// Fill sets every magnitude bin to level.
func (m *MockSource) Fill(level byte) {
	for i := range m.Magnitudes {
		m.Magnitudes[i] = level
	}
}

func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the first maximum of magnitudes within
// [startBin, endBin].
func FindPeakBin(magnitudes []byte, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
