// SPDX-License-Identifier: MIT
package generator

// Pulse limits.
const (
	PulseCeiling   = 10.0
	PulseFloor     = 0.01
	PulseDepthStep = 0.0001
)

// Pulse is the per-instance state of a shape that grows every frame and
// snaps back to PulseFloor once its scale passes PulseCeiling, moving one
// PulseDepthStep further along Z each time it does.
type Pulse struct {
	Rate  float64
	Scale float64
	Depth float64
}

// Step grows the scale by Rate and applies at most one reset. It reports
// whether the reset happened. The threshold is strict: a scale of exactly
// PulseCeiling does not reset.
func (p *Pulse) Step() bool {
	p.Scale += p.Rate
	if p.Scale > PulseCeiling {
		p.Scale = PulseFloor
		p.Depth += PulseDepthStep
		return true
	}
	return false
}
