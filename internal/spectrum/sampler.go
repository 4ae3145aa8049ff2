// SPDX-License-Identifier: MIT
package spectrum

// Sampler owns the per-frame magnitude and time-domain buffers.
//
// Call Begin once at the start of every frame. The first Sample (or
// SampleTimeDomain) in a frame refreshes the buffer from the Source; later
// calls in the same frame return the same snapshot without touching the
// Source. The returned slices are valid until the next frame's refresh and
// must be treated as read-only.
//
// A Sampler is not safe for concurrent use; it belongs to the frame loop.
type Sampler struct {
	src        Source
	magnitudes []byte
	timeDomain []byte

	frame     uint64
	magFrame  uint64
	waveFrame uint64
}

// NewSampler returns a Sampler reading from src. A nil src is allowed and
// yields empty buffers until Attach is called.
func NewSampler(src Source) *Sampler {
	s := &Sampler{frame: 1}
	s.Attach(src)
	return s
}

// Attach replaces the Source. Buffers are sized once here from the Source's
// bin count.
func (s *Sampler) Attach(src Source) {
	s.src = src
	s.magFrame, s.waveFrame = 0, 0
	if src == nil {
		s.magnitudes, s.timeDomain = nil, nil
		return
	}
	n := max(src.FrequencyBinCount(), 0)
	s.magnitudes = make([]byte, n)
	s.timeDomain = make([]byte, n)
}

// Attached reports whether a Source is present.
func (s *Sampler) Attached() bool {
	return s.src != nil
}

// FrequencyBinCount returns the size of the magnitude buffer, or 0 when no
// Source is attached.
func (s *Sampler) FrequencyBinCount() int {
	return len(s.magnitudes)
}

// Begin starts a new frame.
func (s *Sampler) Begin() {
	s.frame++
}

// Sample returns the magnitude buffer for the current frame, or nil when no
// Source is attached.
func (s *Sampler) Sample() []byte {
	if s.src == nil {
		return nil
	}
	if s.magFrame != s.frame {
		s.src.FrequencyMagnitudes(s.magnitudes)
		s.magFrame = s.frame
	}
	return s.magnitudes
}

// SampleTimeDomain returns the time-domain buffer for the current frame, or
// nil when no Source is attached.
func (s *Sampler) SampleTimeDomain() []byte {
	if s.src == nil {
		return nil
	}
	if s.waveFrame != s.frame {
		s.src.TimeDomainSamples(s.timeDomain)
		s.waveFrame = s.frame
	}
	return s.timeDomain
}
