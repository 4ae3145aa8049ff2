// SPDX-License-Identifier: MIT
/*
Package spectrum turns captured audio into the two byte buffers the shape
generators read every frame: a magnitude spectrum (one byte per frequency
bin) and a time-domain trace centered at 128.

Three pieces live here:
  - Source, the contract of an audio collaborator that can fill those buffers.
  - Analyser, a Source fed with raw PCM blocks from a capture engine or a file.
  - Sampler, which snapshots a Source at most once per frame so that every
    generator running in that frame observes the same audio.
*/
package spectrum

import "errors"

// ErrNoSource is returned by operations that need an attached Source.
var ErrNoSource = errors.New("spectrum: no source attached")

// Source is an audio collaborator that exposes byte spectra.
//
// FrequencyBinCount is fixed for the lifetime of the Source. The fill methods
// copy the most recent data into dst and must not block; dst shorter than the
// bin count receives a prefix, longer dst leaves the tail untouched.
type Source interface {
	FrequencyBinCount() int
	FrequencyMagnitudes(dst []byte)
	TimeDomainSamples(dst []byte)
}

// AudioProcessor consumes blocks of mono PCM samples. It is
// called from the capture callback and must not allocate.
type AudioProcessor interface {
	Process(inputBuffer []int32)
}
