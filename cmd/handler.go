// SPDX-License-Identifier: MIT
package cmd

import (
	"talkulizer/internal/log"
	"talkulizer/internal/preset"
	"talkulizer/internal/transport"
)

var logger = log.For("control")

// Controller is the part of the scene remote clients can change.
type Controller interface {
	ApplyPreset(p preset.Preset)
	SetBackground(bg string)
}

// CommandHandler returns the function that carries out client commands.
// random may be nil when no presets are loaded.
func CommandHandler(ctrl Controller, random func() preset.Preset) func(transport.Command) {
	return func(c transport.Command) {
		switch c.Action {
		case transport.ActionApply:
			logger.Debugf("apply %s", c.Type)
			ctrl.ApplyPreset(c.Preset)
		case transport.ActionBackground:
			if c.Background == "" {
				logger.Warnf("background command without bgColor")
				return
			}
			ctrl.SetBackground(c.Background)
		case transport.ActionRandom:
			if random == nil {
				logger.Warnf("random command ignored: no presets loaded")
				return
			}
			random()
		default:
			logger.Warnf("unknown command action %q", c.Action)
		}
	}
}
