// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"talkulizer/internal/scene"
)

// DefaultInterval is the send period used when none is configured (~60Hz).
const DefaultInterval = 16 * time.Millisecond

// snapshot is the latest frame copied out of Render.
type snapshot struct {
	frame      uint64
	palette    uint8
	magnitudes []byte
	shapes     []ShapeState
	fresh      bool // Not yet sent.
}

// FramePublisher copies frames as the scene renders them and sends the most
// recent one over UDP on a fixed period. Frames rendered between two sends
// are coalesced; a period without a new frame sends nothing.
type FramePublisher struct {
	sender   *UDPSender    // The underlying UDP sender instance.
	interval time.Duration // The interval at which packets are sent.

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects access to ticker and doneChan during Start/Stop.

	snapMu sync.Mutex
	snap   snapshot

	sequenceNum  uint32        // Monotonically increasing sequence number for packets.
	packetBuffer *bytes.Buffer // Reusable buffer for constructing the binary packet.
}

// NewFramePublisher creates a stopped publisher. If the interval is invalid
// (<= 0), it defaults to DefaultInterval.
func NewFramePublisher(interval time.Duration, sender *UDPSender) (*FramePublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp: sender cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
		logger.Warnf("invalid interval provided, defaulting to %s", interval)
	}

	return &FramePublisher{
		sender:       sender,
		interval:     interval,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, 4096)),
	}, nil
}

// Render copies the frame's magnitudes and shape placements for the next
// send. Shapes beyond what fits in one datagram are dropped.
func (p *FramePublisher) Render(f *scene.Frame) error {
	p.snapMu.Lock()
	defer p.snapMu.Unlock()

	s := &p.snap
	s.frame = f.Seq
	s.palette = uint8(f.Palette)
	n := min(len(f.Magnitudes), 1<<16-1)
	s.magnitudes = append(s.magnitudes[:0], f.Magnitudes[:n]...)

	count := min(len(f.Shapes), maxShapes(n))
	s.shapes = s.shapes[:0]
	for _, sh := range f.Shapes[:count] {
		t := sh.Transform
		c := sh.Color.Clamped()
		s.shapes = append(s.shapes, ShapeState{
			Family:    FamilyCode(sh.Family),
			Primitive: uint8(sh.Primitive),
			Color:     [3]uint8{uint8(c.R*255 + 0.5), uint8(c.G*255 + 0.5), uint8(c.B*255 + 0.5)},
			Position:  [3]float32{float32(t.Position.X), float32(t.Position.Y), float32(t.Position.Z)},
			Rotation:  [3]float32{float32(t.Rotation.X), float32(t.Rotation.Y), float32(t.Rotation.Z)},
			Scale:     [3]float32{float32(t.Scale.X), float32(t.Scale.Y), float32(t.Scale.Z)},
		})
	}
	s.fresh = true
	return nil
}

// Start begins the periodic publishing process.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *FramePublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		logger.Warnf("start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	// Local copies avoid racing on p.ticker/p.doneChan.
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		logger.Infof("publisher started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *FramePublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		logger.Debugf("stop called but not running")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})

	p.mu.Unlock()

	p.wg.Wait()
	logger.Infof("publisher stopped")
	return nil
}

// buildAndSendPacket packs the latest unsent snapshot and sends it.
func (p *FramePublisher) buildAndSendPacket() {
	p.snapMu.Lock()
	if !p.snap.fresh {
		p.snapMu.Unlock()
		return
	}
	p.sequenceNum++
	err := p.pack(time.Now().UnixNano())
	p.snap.fresh = false
	p.snapMu.Unlock()

	if err != nil {
		logger.Errorf("error packing packet %d: %v", p.sequenceNum, err)
		return
	}

	packetBytes := p.packetBuffer.Bytes()
	if err := p.sender.Send(packetBytes); err == nil {
		logger.Debugf("sent packet %d (%d bytes)", p.sequenceNum, len(packetBytes))
	}
}

// pack writes the snapshot into packetBuffer. Caller holds snapMu.
func (p *FramePublisher) pack(timestamp int64) error {
	s := &p.snap
	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, header{
		Sequence:  p.sequenceNum,
		Timestamp: timestamp,
		Frame:     s.frame,
		Palette:   s.palette,
		Count:     uint16(len(s.magnitudes)),
	})
	if err == nil {
		_, err = p.packetBuffer.Write(s.magnitudes)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(s.shapes)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, s.shapes)
	}
	return err
}

// Close stops the publisher. The sender is owned by the caller.
func (p *FramePublisher) Close() error {
	return p.Stop()
}

var _ scene.Renderer = (*FramePublisher)(nil)
