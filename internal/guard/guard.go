// Package guard takes manual control of fan channels and guarantees
// that firmware control is handed back, no matter how the program ends.
package guard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/ui"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/multierr"
)

// ErrGuardConflict is returned when a channel is already held by
// another guard in this process
var ErrGuardConflict = errors.New("channel is already guarded")

// held tracks which channel ids are currently under a guard, so two
// concurrent operations can never fight over the same fan
var held = cmap.New[bool]()

// RestoreFailure reports channels that could not be handed back to
// firmware control on release. Channels listed here were forced to a
// safe manual duty instead.
type RestoreFailure struct {
	ChannelIds []string
	Errs       error
}

func (f *RestoreFailure) Error() string {
	return fmt.Sprintf("failed to restore %d channel(s) %v: %v", len(f.ChannelIds), f.ChannelIds, f.Errs)
}

func (f *RestoreFailure) Unwrap() error {
	return f.Errs
}

// originalState is what Release puts back
type originalState struct {
	controlMode       channels.ControlMode
	duty              int
	electricalMode    channels.ElectricalMode
	hasElectricalMode bool
}

// Guard holds manual control over a set of channels
type Guard struct {
	mu       sync.Mutex
	released bool

	channels []channels.Channel
	original map[string]originalState
}

// Acquire switches the given channels to manual control, remembering
// their previous state. On any failure the channels acquired so far are
// rolled back and an error is returned, a guard is all-or-nothing.
func Acquire(chans []channels.Channel) (*Guard, error) {
	if len(chans) <= 0 {
		return nil, fmt.Errorf("%w: no channels given", channels.ErrInvalidArgument)
	}

	guard := &Guard{
		channels: chans,
		original: map[string]originalState{},
	}

	var acquired []channels.Channel
	rollback := func() {
		for _, channel := range acquired {
			guard.restoreChannel(channel)
			held.Remove(channel.GetId())
		}
	}

	for _, channel := range chans {
		id := channel.GetId()
		if !held.SetIfAbsent(id, true) {
			rollback()
			return nil, fmt.Errorf("%w: %s", ErrGuardConflict, id)
		}

		state, err := readOriginalState(channel)
		if err != nil {
			held.Remove(id)
			rollback()
			return nil, fmt.Errorf("cannot read state of %s: %w", id, err)
		}
		guard.original[id] = state

		if err := channel.SetControlMode(channels.ControlModeManual); err != nil {
			held.Remove(id)
			rollback()
			return nil, fmt.Errorf("cannot take control of %s: %w", id, err)
		}
		acquired = append(acquired, channel)
	}

	ui.Debug("Guard acquired for %d channel(s)", len(chans))
	return guard, nil
}

func readOriginalState(channel channels.Channel) (originalState, error) {
	state := originalState{}

	mode, err := channel.GetControlMode()
	if err != nil {
		return state, err
	}
	state.controlMode = mode

	duty, err := channel.GetDuty()
	if err != nil {
		return state, err
	}
	state.duty = duty

	if channel.SupportsElectricalMode() {
		electricalMode, err := channel.GetElectricalMode()
		if err != nil {
			return state, err
		}
		state.electricalMode = electricalMode
		state.hasElectricalMode = true
	}

	return state, nil
}

// Release restores every channel to its pre-guard state. It is
// best-effort per channel and safe to call more than once, only the
// first call does anything. A channel that refuses restoration is
// forced to a safe manual duty and reported via RestoreFailure.
func (g *Guard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return nil
	}
	g.released = true

	var failure RestoreFailure
	for _, channel := range g.channels {
		id := channel.GetId()
		if err := g.restoreChannel(channel); err != nil {
			ui.Warning("Restoring %s failed, forcing safe fallback: %v", id, err)
			failure.ChannelIds = append(failure.ChannelIds, id)
			failure.Errs = multierr.Append(failure.Errs, err)
			g.applySafeFallback(channel)
		}
		held.Remove(id)
	}

	if len(failure.ChannelIds) > 0 {
		return &failure
	}
	ui.Debug("Guard released for %d channel(s)", len(g.channels))
	return nil
}

// restoreChannel puts back everything recorded at acquire time.
// The duty is written before the control mode so the value is in place
// the moment the firmware stops driving the fan.
func (g *Guard) restoreChannel(channel channels.Channel) error {
	state, ok := g.original[channel.GetId()]
	if !ok {
		return nil
	}

	var err error
	if state.hasElectricalMode {
		err = multierr.Append(err, channel.SetElectricalMode(state.electricalMode))
	}
	err = multierr.Append(err, channel.SetDuty(state.duty))
	err = multierr.Append(err, channel.SetControlMode(state.controlMode))
	return err
}

// applySafeFallback pins a channel at a moderate manual duty, used
// when its original state cannot be restored
func (g *Guard) applySafeFallback(channel channels.Channel) {
	if err := channel.SetControlMode(channels.ControlModeManual); err != nil {
		ui.Error("Cannot force %s to manual control: %v", channel.GetId(), err)
	}
	if err := channel.SetDuty(channels.SafeFallbackDuty); err != nil {
		ui.Error("Cannot apply safe fallback duty to %s: %v", channel.GetId(), err)
	}
}

// Channels returns the channels held by this guard
func (g *Guard) Channels() []channels.Channel {
	return g.channels
}
