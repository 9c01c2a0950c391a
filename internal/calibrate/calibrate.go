// Package calibrate probes fan channels with test duty sequences to
// find out whether (and in which electrical mode) they actually react.
package calibrate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/guard"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/loislo/fan-control/internal/util"
	"go.uber.org/multierr"
)

const (
	settleWindowSize = 5
	rpmSampleCount   = 3
)

// Verdict is the outcome of a single responsiveness test
type Verdict int

const (
	// VerdictInconclusive means the channel has no usable tachometer
	VerdictInconclusive Verdict = iota
	// VerdictResponsive means the RPM followed the test duty
	VerdictResponsive
	// VerdictNotResponding means the RPM ignored the test duty
	VerdictNotResponding
)

func (v Verdict) String() string {
	switch v {
	case VerdictResponsive:
		return "responsive"
	case VerdictNotResponding:
		return "not responding"
	}
	return "inconclusive"
}

// Result is one completed (channel, mode) test, immutable once produced
type Result struct {
	ChannelId string    `json:"channelId"`
	Mode      string    `json:"mode"`
	DutyLow   int       `json:"dutyLow"`
	DutyHigh  int       `json:"dutyHigh"`
	RpmAtLow  int       `json:"rpmAtLow"`
	RpmAtHigh int       `json:"rpmAtHigh"`
	Verdict   Verdict   `json:"verdict"`
	Time      time.Time `json:"time"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s [%s]: %d rpm @ %d -> %d rpm @ %d: %s",
		r.ChannelId, r.Mode, r.RpmAtLow, r.DutyLow, r.RpmAtHigh, r.DutyHigh, r.Verdict)
}

// Recommendation is the outcome of a comprehensive test on one channel
type Recommendation struct {
	ChannelId string   `json:"channelId"`
	Results   []Result `json:"results"`

	// RecommendedMode is empty when no mode is clearly better
	RecommendedMode string `json:"recommendedMode"`
	// Functional is false when the channel responded in no mode at all
	Functional bool `json:"functional"`
}

// Classify decides the verdict for a pair of RPM readings. An
// unreadable reading is passed as ok=false. The rules are pure so the
// same readings always classify identically.
func Classify(config configuration.CalibrationConfig, rpmAtLow int, lowOk bool, rpmAtHigh int, highOk bool) Verdict {
	if !lowOk && !highOk {
		return VerdictInconclusive
	}
	if lowOk && highOk && rpmAtLow == 0 && rpmAtHigh == 0 {
		return VerdictInconclusive
	}

	low := 0
	if lowOk {
		low = rpmAtLow
	}
	high := 0
	if highOk {
		high = rpmAtHigh
	}

	delta := high - low
	if delta > config.RpmDeltaThreshold {
		return VerdictResponsive
	}
	// stall-then-spin fans report 0 at low duty, the baseline is floored
	// at 1 so any spin-up from standstill counts even below the absolute
	// threshold
	baseline := low
	if baseline < 1 {
		baseline = 1
	}
	if float64(delta)/float64(baseline)*100.0 > config.RpmDeltaPercentThreshold {
		return VerdictResponsive
	}
	return VerdictNotResponding
}

// Calibrator drives test duty sequences against guarded channels
type Calibrator struct {
	config configuration.CalibrationConfig
}

func NewCalibrator(config configuration.CalibrationConfig) *Calibrator {
	return &Calibrator{config: config}
}

// QuickTest probes each channel in its current electrical mode.
// The channels are guarded for the duration of the test and restored
// afterwards, on every exit path.
func (c *Calibrator) QuickTest(ctx context.Context, chans []channels.Channel) (results []Result, err error) {
	g, err := guard.Acquire(chans)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, g.Release())
	}()

	for _, channel := range chans {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		result := c.testChannel(ctx, channel, "current")
		ui.Info("%s", result)
		results = append(results, result)
	}
	return results, nil
}

// ComprehensiveTest probes each channel in PWM and DC mode and
// recommends the more responsive one. Channels that cannot switch
// electrical mode get a single current-mode result instead.
func (c *Calibrator) ComprehensiveTest(ctx context.Context, chans []channels.Channel) (recommendations []Recommendation, err error) {
	g, err := guard.Acquire(chans)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, g.Release())
	}()

	for _, channel := range chans {
		if ctx.Err() != nil {
			return recommendations, ctx.Err()
		}
		recommendation := c.testChannelComprehensive(ctx, channel)
		recommendations = append(recommendations, recommendation)
	}
	return recommendations, nil
}

// testChannel runs the low/high duty sequence on one channel
func (c *Calibrator) testChannel(ctx context.Context, channel channels.Channel, mode string) Result {
	result := Result{
		ChannelId: channel.GetId(),
		Mode:      mode,
		DutyLow:   int(c.config.DutyLow),
		DutyHigh:  int(c.config.DutyHigh),
		RpmAtLow:  -1,
		RpmAtHigh: -1,
		Time:      time.Now(),
	}

	rpmAtLow, lowOk := c.measureAtDuty(ctx, channel, int(c.config.DutyLow))
	if lowOk {
		result.RpmAtLow = rpmAtLow
	}

	rpmAtHigh, highOk := c.measureAtDuty(ctx, channel, int(c.config.DutyHigh))
	if highOk {
		result.RpmAtHigh = rpmAtHigh
	}

	result.Verdict = Classify(c.config, rpmAtLow, lowOk, rpmAtHigh, highOk)
	return result
}

func (c *Calibrator) testChannelComprehensive(ctx context.Context, channel channels.Channel) Recommendation {
	recommendation := Recommendation{ChannelId: channel.GetId()}

	if !channel.SupportsElectricalMode() {
		result := c.testChannel(ctx, channel, "current")
		ui.Info("%s", result)
		recommendation.Results = []Result{result}
		recommendation.Functional = result.Verdict == VerdictResponsive
		return recommendation
	}

	modes := []channels.ElectricalMode{channels.ElectricalModePWM, channels.ElectricalModeDC}
	resultsByMode := map[channels.ElectricalMode]Result{}
	for _, mode := range modes {
		if err := channel.SetElectricalMode(mode); err != nil {
			ui.Warning("Cannot switch %s to %s mode, skipping: %v", channel.GetId(), mode, err)
			continue
		}
		c.sleep(ctx, c.config.ModeSwitchSettleTime)

		result := c.testChannel(ctx, channel, mode.String())
		ui.Info("%s", result)
		resultsByMode[mode] = result
		recommendation.Results = append(recommendation.Results, result)
	}

	recommendation.RecommendedMode, recommendation.Functional = c.recommend(resultsByMode)
	return recommendation
}

// recommend compares the per-mode results. A mode wins outright when it
// is the only responsive one, otherwise the larger RPM delta wins if it
// exceeds the other by the preference factor.
func (c *Calibrator) recommend(results map[channels.ElectricalMode]Result) (string, bool) {
	pwm, hasPwm := results[channels.ElectricalModePWM]
	dc, hasDc := results[channels.ElectricalModeDC]

	pwmResponsive := hasPwm && pwm.Verdict == VerdictResponsive
	dcResponsive := hasDc && dc.Verdict == VerdictResponsive

	switch {
	case pwmResponsive && !dcResponsive:
		return channels.ElectricalModePWM.String(), true
	case dcResponsive && !pwmResponsive:
		return channels.ElectricalModeDC.String(), true
	case !pwmResponsive && !dcResponsive:
		return "", false
	}

	pwmDelta := float64(pwm.RpmAtHigh - pwm.RpmAtLow)
	dcDelta := float64(dc.RpmAtHigh - dc.RpmAtLow)
	if pwmDelta > dcDelta*c.config.ModePreferenceFactor {
		return channels.ElectricalModePWM.String(), true
	}
	if dcDelta > pwmDelta*c.config.ModePreferenceFactor {
		return channels.ElectricalModeDC.String(), true
	}
	// both usable, neither clearly better
	return "", true
}

// measureAtDuty writes a duty and reads the RPM once the fan settled.
// The result is averaged over a few samples to smooth tachometer noise.
func (c *Calibrator) measureAtDuty(ctx context.Context, channel channels.Channel, duty int) (int, bool) {
	if err := channel.SetDuty(duty); err != nil {
		ui.Warning("Cannot set test duty %d on %s: %v", duty, channel.GetId(), err)
		return -1, false
	}

	c.waitForSettle(ctx, channel)

	if !channel.SupportsRpmSensor() {
		return -1, false
	}

	var samples []float64
	for i := 0; i < rpmSampleCount; i++ {
		rpm, err := channel.GetRpm()
		if err == nil {
			samples = append(samples, float64(rpm))
		}
	}
	if len(samples) <= 0 {
		return -1, false
	}
	return int(math.Round(util.Avg(samples))), true
}

// waitForSettle waits until the RPM stops moving, bounded by the
// configured response time. Channels without a tachometer just get the
// fixed settle period.
func (c *Calibrator) waitForSettle(ctx context.Context, channel channels.Channel) {
	if !channel.SupportsRpmSensor() {
		c.sleep(ctx, c.config.SettleTime)
		return
	}

	deadline := time.Now().Add(c.config.ResponseTime)
	window := util.CreateRollingWindow(settleWindowSize)
	// primed with an impossible value so the spread stays huge until the
	// window holds only real samples
	util.FillWindow(window, settleWindowSize, math.MaxFloat64)

	for time.Now().Before(deadline) && ctx.Err() == nil {
		rpm, err := channel.GetRpm()
		if err == nil {
			window.Append(float64(rpm))
		}

		if util.GetWindowSpread(window) <= c.config.MaxRpmDiffForSettled {
			return
		}
		c.sleep(ctx, c.config.ResponseTime/(settleWindowSize*4))
	}
}

func (c *Calibrator) sleep(ctx context.Context, duration time.Duration) {
	if duration <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(duration):
	}
}

// ErrNoChannels is returned when a test is requested without channels
var ErrNoChannels = errors.New("no channels to calibrate")

// SelectChannels resolves the configured channel id subset against the
// discovered channels, empty selection means all
func SelectChannels(available []channels.Channel, ids []string) ([]channels.Channel, error) {
	if len(ids) <= 0 {
		if len(available) <= 0 {
			return nil, ErrNoChannels
		}
		return available, nil
	}

	var selected []channels.Channel
	for _, id := range ids {
		found := false
		for _, channel := range available {
			if channel.GetId() == id {
				selected = append(selected, channel)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: unknown channel %s", channels.ErrInvalidArgument, id)
		}
	}
	return selected, nil
}
