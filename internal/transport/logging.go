// SPDX-License-Identifier: MIT
package transport

import (
	"talkulizer/internal/log"
	"talkulizer/internal/scene"
)

var logger = log.For("transport")

// LoggingPublisher logs a one-line frame summary every Every frames at
// debug level.
type LoggingPublisher struct {
	Every uint64
}

// NewLoggingPublisher creates a LoggingPublisher. every <= 0 logs once a
// second at the default frame rate.
func NewLoggingPublisher(every int) *LoggingPublisher {
	if every <= 0 {
		every = scene.DefaultFPS
	}
	logger.Debugf("using logging publisher (every %d frames)", every)
	return &LoggingPublisher{Every: uint64(every)}
}

// Render logs f when its sequence number is a multiple of Every.
func (lp *LoggingPublisher) Render(f *scene.Frame) error {
	if lp.Every == 0 || f.Seq%lp.Every != 0 {
		return nil
	}
	var peak byte
	for _, m := range f.Magnitudes {
		peak = max(peak, m)
	}
	logger.Debugf("frame %d: %s, %d shapes, peak %d", f.Seq, f.Type, len(f.Shapes), peak)
	return nil
}

// Close is a no-op.
func (lp *LoggingPublisher) Close() error {
	return nil
}

// Ensure LoggingPublisher satisfies the interface at compile time.
var _ Publisher = (*LoggingPublisher)(nil)
