// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"talkulizer/internal/log"
	"talkulizer/internal/spectrum"

	"github.com/go-audio/wav"
)

// ErrNotWAV is returned for input that is not a RIFF/WAVE file.
var ErrNotWAV = errors.New("audio: not a valid WAV file")

// WAVPlayer plays a decoded WAV file into a processor block by block,
// paced at the file's sample rate.
type WAVPlayer struct {
	samples    []int32 // Mono, scaled to the full int32 range.
	sampleRate float64
	block      []int32
	loop       bool
	pos        int
}

// OpenWAV decodes the file at path for playback in blocks of
// framesPerBuffer frames.
func OpenWAV(path string, framesPerBuffer int, loop bool) (*WAVPlayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	samples, sampleRate, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if framesPerBuffer <= 0 {
		return nil, fmt.Errorf("audio: frames per buffer must be positive, got %d", framesPerBuffer)
	}

	log.Infof("audio: loaded %s (%d samples @ %.0f Hz, loop=%v)", path, len(samples), sampleRate, loop)
	return &WAVPlayer{
		samples:    samples,
		sampleRate: sampleRate,
		block:      make([]int32, framesPerBuffer),
		loop:       loop,
	}, nil
}

// DecodeWAV reads a 16, 24 or 32-bit PCM WAV stream, downmixes it to mono
// and scales samples to the int32 range the analyser expects.
func DecodeWAV(r io.ReadSeeker) ([]int32, float64, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, ErrNotWAV
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode WAV data: %w", err)
	}

	depth := int(d.BitDepth)
	if depth != 16 && depth != 24 && depth != 32 {
		return nil, 0, fmt.Errorf("audio: unsupported WAV bit depth %d", depth)
	}
	if d.SampleRate == 0 {
		return nil, 0, fmt.Errorf("audio: WAV sample rate is zero")
	}
	channels := max(int(d.NumChans), 1)
	shift := uint(32 - depth)

	interleaved := make([]int32, len(buf.Data))
	for i, s := range buf.Data {
		interleaved[i] = int32(s) << shift
	}
	mono := make([]int32, len(interleaved)/channels)
	return downmix(mono, interleaved, channels), float64(d.SampleRate), nil
}

// SampleRate returns the file's sample rate.
func (p *WAVPlayer) SampleRate() float64 { return p.sampleRate }

// Duration returns the playing time of one pass through the file.
func (p *WAVPlayer) Duration() time.Duration {
	if p.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(p.samples)) / p.sampleRate * float64(time.Second))
}

// Next returns the next block. The final block of a pass is zero padded,
// or continues from the start when looping. It returns false once a
// non-looping file is exhausted.
func (p *WAVPlayer) Next() ([]int32, bool) {
	if len(p.samples) == 0 || (!p.loop && p.pos >= len(p.samples)) {
		return nil, false
	}
	for i := range p.block {
		if p.pos >= len(p.samples) {
			if !p.loop {
				clear(p.block[i:])
				break
			}
			p.pos = 0
		}
		p.block[i] = p.samples[p.pos]
		p.pos++
	}
	return p.block, true
}

// Rewind restarts playback from the first sample.
func (p *WAVPlayer) Rewind() { p.pos = 0 }

// Run plays the file into processor in real time until it ends or ctx is
// cancelled.
func (p *WAVPlayer) Run(ctx context.Context, processor spectrum.AudioProcessor) error {
	if processor == nil {
		return fmt.Errorf("audio: processor cannot be nil")
	}
	period := time.Duration(float64(len(p.block)) / p.sampleRate * float64(time.Second))
	ticker := time.NewTicker(max(period, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			block, ok := p.Next()
			if !ok {
				log.Infof("audio: playback finished")
				return nil
			}
			processor.Process(block)
		}
	}
}
