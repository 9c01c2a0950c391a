package control

import (
	"math"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/util"
)

// EvaluateCurve maps a temperature to a duty value using a linear ramp
// between (tempMin, dutyMin) and (tempMax, dutyMax). Temperatures
// outside the ramp clamp to the respective end.
func EvaluateCurve(config configuration.ControlConfig, celsius float64) int {
	if config.TempMax-config.TempMin <= 0 {
		return int(config.DutyMax)
	}

	fraction := util.Coerce(util.Ratio(celsius, config.TempMin, config.TempMax), 0, 1)
	dutyRange := float64(config.DutyMax - config.DutyMin)
	duty := math.Round(float64(config.DutyMin) + fraction*dutyRange)

	return util.CoerceInt(int(duty), channels.MinDutyValue, channels.MaxDutyValue)
}

// ApplyOffset shifts a duty by the manual offset, clamped to the valid
// duty range
func ApplyOffset(duty int, offset int) int {
	return util.CoerceInt(duty+offset, channels.MinDutyValue, channels.MaxDutyValue)
}

// RampDown limits how fast a duty may fall. Increases pass through
// unchanged, spinning fans up for rising temperatures must never lag.
func RampDown(current int, target int, decreaseStep int) int {
	if target >= current || decreaseStep <= 0 {
		return target
	}
	return util.CoerceInt(current-decreaseStep, target, channels.MaxDutyValue)
}
