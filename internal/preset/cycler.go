// SPDX-License-Identifier: MIT
package preset

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"talkulizer/internal/log"
)

const (
	// DefaultInterval is the cycle period when none is configured.
	DefaultInterval = 2 * time.Second
	// MinInterval is the shortest cycle period.
	MinInterval = 500 * time.Millisecond

	coarseFrom = 30 * time.Second
	coarseStep = 5 * time.Second
	fineStep   = time.Second
)

// ErrNoPresets is returned when cycling is requested without presets.
var ErrNoPresets = errors.New("no presets loaded")

var logger = log.For("preset")

// Longer returns the next cycle period up from d. Periods under a second
// jump to one second, periods from 30s step by 5s, others by 1s.
func Longer(d time.Duration) time.Duration {
	switch {
	case d < fineStep:
		return fineStep
	case d >= coarseFrom:
		return d + coarseStep
	default:
		return d + fineStep
	}
}

// Shorter returns the next cycle period down from d, never below
// MinInterval.
func Shorter(d time.Duration) time.Duration {
	switch {
	case d <= fineStep:
		return MinInterval
	case d >= coarseFrom:
		return d - coarseStep
	default:
		return d - fineStep
	}
}

// Cycler applies a uniformly random preset on a fixed period. The apply
// callback runs on the cycler's goroutine; callers hand the preset to their
// frame loop from there.
type Cycler struct {
	presets []Preset
	apply   func(Preset)

	mu       sync.Mutex
	rng      *rand.Rand
	interval time.Duration
	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
}

// NewCycler returns a stopped cycler over presets. A non-positive interval
// becomes DefaultInterval and shorter ones are raised to MinInterval.
func NewCycler(presets []Preset, interval time.Duration, seed uint64, apply func(Preset)) (*Cycler, error) {
	if len(presets) == 0 {
		return nil, ErrNoPresets
	}
	if apply == nil {
		apply = func(Preset) {}
	}
	return &Cycler{
		presets:  presets,
		apply:    apply,
		rng:      rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)),
		interval: normalizeInterval(interval),
	}, nil
}

func normalizeInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultInterval
	}
	return max(d, MinInterval)
}

// Random returns a uniformly chosen preset.
func (c *Cycler) Random() Preset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presets[c.rng.IntN(len(c.presets))]
}

// Next applies a random preset immediately and returns it.
func (c *Cycler) Next() Preset {
	p := c.Random()
	logger.Debugf("switching to %q (%s)", p.Name, p.Type)
	c.apply(p)
	return p
}

// Interval returns the current cycle period.
func (c *Cycler) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// SetInterval changes the cycle period, restarting the running timer.
func (c *Cycler) SetInterval(d time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = normalizeInterval(d)
	if c.ticker != nil {
		c.ticker.Reset(c.interval)
	}
	logger.Infof("cycle interval %s", c.interval)
	return c.interval
}

// Longer lengthens the cycle period by one step.
func (c *Cycler) Longer() time.Duration { return c.SetInterval(Longer(c.Interval())) }

// Shorter shortens the cycle period by one step.
func (c *Cycler) Shorter() time.Duration { return c.SetInterval(Shorter(c.Interval())) }

// Running reports whether the cycler is started.
func (c *Cycler) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticker != nil
}

// Start begins cycling. It is a no-op when already running.
func (c *Cycler) Start() {
	c.mu.Lock()
	if c.ticker != nil {
		c.mu.Unlock()
		logger.Warnf("start called but already running")
		return
	}
	c.ticker = time.NewTicker(c.interval)
	c.doneChan = make(chan struct{})
	ticker, done := c.ticker, c.doneChan
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ticker.C:
				c.Next()
			case <-done:
				return
			}
		}
	}()
}

// Stop halts cycling and waits for the goroutine to exit. It is safe to
// call more than once.
func (c *Cycler) Stop() {
	c.mu.Lock()
	if c.ticker == nil {
		c.mu.Unlock()
		return
	}
	c.ticker.Stop()
	close(c.doneChan)
	c.ticker = nil
	c.mu.Unlock()
	c.wg.Wait()
}

// Toggle starts a stopped cycler or stops a running one and reports whether
// it is now running.
func (c *Cycler) Toggle() bool {
	if c.Running() {
		c.Stop()
		return false
	}
	c.Start()
	return true
}
