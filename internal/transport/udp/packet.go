// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"talkulizer/internal/generator"
)

/*
UDP Packet Structure (BigEndian)

+------------------------------------------------------------------------------+
| Field            | Data Type       | Size (Bytes) | Description              |
|------------------|-----------------|--------------|--------------------------|
| Sequence Number  | uint32          | 4            | Monotonically increasing |
| Timestamp        | int64           | 8            | Nanoseconds since epoch  |
| Frame            | uint64          | 8            | Scene frame number       |
| Palette          | uint8           | 1            | Palette index            |
| Magnitude Count  | uint16          | 2            | Number of bins (N)       |
| Magnitudes       | []uint8         | N            | Byte spectrum            |
| Shape Count      | uint16          | 2            | Number of shapes (M)     |
| Shapes           | []ShapeState    | M * 41       | Per-shape placement      |
+------------------------------------------------------------------------------+

ShapeState is family (uint8, see FamilyCode), primitive (uint8), color (3 x
uint8 RGB) and position, rotation, scale (3 x float32 each). Points are not
sent; receivers that need geometry use the WebSocket stream.
*/

const (
	headerSize     = 4 + 8 + 8 + 1 + 2
	shapeStateSize = 1 + 1 + 3 + 3*4*3

	// MaxPacketSize is the largest UDP payload over IPv4.
	MaxPacketSize = 65507
)

// ErrShortPacket is returned when a packet ends before its declared length.
var ErrShortPacket = errors.New("udp: short packet")

// ShapeState is the per-shape record of a packet.
type ShapeState struct {
	Family    uint8
	Primitive uint8
	Color     [3]uint8
	Position  [3]float32
	Rotation  [3]float32
	Scale     [3]float32
}

// Packet is a decoded frame packet.
type Packet struct {
	Sequence   uint32
	Timestamp  int64
	Frame      uint64
	Palette    uint8
	Magnitudes []byte
	Shapes     []ShapeState
}

type header struct {
	Sequence  uint32
	Timestamp int64
	Frame     uint64
	Palette   uint8
	Count     uint16
}

var familyCodes = []generator.Family{
	generator.FamilyLine,
	generator.FamilyRadial,
	generator.FamilyWire,
	generator.FamilyBox,
	generator.FamilyWaveform,
	generator.FamilySolid,
	generator.FamilyOrbit,
}

// FamilyCode returns the wire code of f, starting at 1. Unknown families
// are 0.
func FamilyCode(f generator.Family) uint8 {
	for i, known := range familyCodes {
		if known == f {
			return uint8(i + 1)
		}
	}
	return 0
}

// FamilyFromCode is the inverse of FamilyCode.
func FamilyFromCode(code uint8) (generator.Family, bool) {
	if code == 0 || int(code) > len(familyCodes) {
		return "", false
	}
	return familyCodes[code-1], true
}

// maxShapes returns how many shape records fit next to n magnitudes.
func maxShapes(n int) int {
	return max((MaxPacketSize-headerSize-n-2)/shapeStateSize, 0)
}

// DecodePacket parses a frame packet.
func DecodePacket(data []byte) (Packet, error) {
	r := bytes.NewReader(data)

	var h header
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return Packet{}, fmt.Errorf("%w: header: %v", ErrShortPacket, err)
	}
	p := Packet{
		Sequence:   h.Sequence,
		Timestamp:  h.Timestamp,
		Frame:      h.Frame,
		Palette:    h.Palette,
		Magnitudes: make([]byte, h.Count),
	}
	if _, err := io.ReadFull(r, p.Magnitudes); err != nil {
		return Packet{}, fmt.Errorf("%w: magnitudes", ErrShortPacket)
	}

	var shapes uint16
	if err := binary.Read(r, binary.BigEndian, &shapes); err != nil {
		return Packet{}, fmt.Errorf("%w: shape count: %v", ErrShortPacket, err)
	}
	p.Shapes = make([]ShapeState, shapes)
	if err := binary.Read(r, binary.BigEndian, p.Shapes); err != nil {
		return Packet{}, fmt.Errorf("%w: shapes: %v", ErrShortPacket, err)
	}
	return p, nil
}
