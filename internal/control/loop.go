package control

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/configuration"
	"github.com/loislo/fan-control/internal/guard"
	"github.com/loislo/fan-control/internal/hwmon"
	"github.com/loislo/fan-control/internal/sensors"
	"github.com/loislo/fan-control/internal/ui"
	"github.com/loislo/fan-control/internal/util"
	"go.uber.org/multierr"
)

// State is the lifecycle phase of the control loop
type State int32

const (
	StateIdle State = iota
	StateSampling
	StateComputing
	StateWriting
	StateSleeping
	StateStopping
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateComputing:
		return "computing"
	case StateWriting:
		return "writing"
	case StateSleeping:
		return "sleeping"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Snapshot is the result of one loop iteration, exported to the status
// file and served via the API
type Snapshot struct {
	Time       time.Time           `json:"time"`
	State      string              `json:"state"`
	Iteration  uint64              `json:"iteration"`
	MaxTemp    float64             `json:"maxTemp"`
	BaseDuty   int                 `json:"baseDuty"`
	TargetDuty int                 `json:"targetDuty"`
	Offset     int                 `json:"offset"`
	Readings   []sensors.Reading   `json:"readings"`
	Channels   []channels.Snapshot `json:"channels"`
}

// Loop periodically samples the control sensors and drives the guarded
// fan channels along the configured curve
type Loop struct {
	config         configuration.Configuration
	sensorRegistry *hwmon.SensorRegistry
	guard          *guard.Guard
	offset         *Offset

	// OnTick, if set, is invoked after every completed iteration
	OnTick func(snapshot Snapshot)

	state    atomic.Int32
	lastDuty map[string]int

	snapshotMu   sync.RWMutex
	lastSnapshot *Snapshot
}

func NewLoop(
	config configuration.Configuration,
	sensorRegistry *hwmon.SensorRegistry,
	g *guard.Guard,
	offset *Offset,
) *Loop {
	return &Loop{
		config:         config,
		sensorRegistry: sensorRegistry,
		guard:          g,
		offset:         offset,
		lastDuty:       map[string]int{},
	}
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(state State) {
	l.state.Store(int32(state))
}

// LastSnapshot returns the most recent iteration result
func (l *Loop) LastSnapshot() (Snapshot, bool) {
	l.snapshotMu.RLock()
	defer l.snapshotMu.RUnlock()
	if l.lastSnapshot == nil {
		return Snapshot{}, false
	}
	return *l.lastSnapshot, true
}

// Run executes the control loop until the context is cancelled or the
// iteration budget is exhausted. The guard is always released on exit,
// restore failures are merged into the returned error.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		l.setState(StateStopping)
		err = multierr.Append(err, l.guard.Release())
		l.setState(StateTerminated)
	}()

	interval := l.config.Control.Interval
	maxIterations := l.config.Control.MaxIterations

	ui.Info("Starting control loop for %d channel(s), interval %s", len(l.guard.Channels()), interval)

	for iteration := uint64(1); ; iteration++ {
		if ctx.Err() != nil {
			return nil
		}

		l.setState(StateSampling)
		readings := l.sensorRegistry.SampleAll()

		l.setState(StateComputing)
		offset := l.offset.Get()
		maxTemp, ok := maxControlTemp(readings)

		if !ok {
			// without a control reading there is no safe duty to compute
			return errors.New("no valid control sensor reading available")
		}

		snapshot := Snapshot{
			Time:      time.Now(),
			Iteration: iteration,
			Offset:    offset,
			Readings:  readings,
			MaxTemp:   maxTemp,
			BaseDuty:  EvaluateCurve(l.config.Control, maxTemp),
		}
		snapshot.TargetDuty = ApplyOffset(snapshot.BaseDuty, offset)

		l.setState(StateWriting)
		l.writeChannels(snapshot.TargetDuty)

		for _, channel := range l.guard.Channels() {
			snapshot.Channels = append(snapshot.Channels, channels.TakeSnapshot(channel))
		}
		snapshot.State = l.State().String()
		l.publishSnapshot(snapshot)

		if maxIterations > 0 && int(iteration) >= maxIterations {
			ui.Info("Iteration budget of %d reached, stopping", maxIterations)
			return nil
		}

		l.setState(StateSleeping)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// writeChannels applies the target duty to every guarded channel,
// limiting how fast a duty may fall. A write failure on one channel
// does not stop the others.
func (l *Loop) writeChannels(targetDuty int) {
	for _, channel := range l.guard.Channels() {
		id := channel.GetId()

		duty := targetDuty
		if lastDuty, ok := l.lastDuty[id]; ok {
			duty = RampDown(lastDuty, targetDuty, l.config.Control.DutyDecreaseStep)
		}

		if err := channel.SetDuty(duty); err != nil {
			ui.Error("Cannot set duty of %s to %d: %v", id, duty, err)
			continue
		}
		l.lastDuty[id] = duty
	}
}

func (l *Loop) publishSnapshot(snapshot Snapshot) {
	l.snapshotMu.Lock()
	l.lastSnapshot = &snapshot
	l.snapshotMu.Unlock()

	if l.OnTick != nil {
		l.OnTick(snapshot)
	}

	if len(l.config.StatusFile) > 0 {
		content, err := json.MarshalIndent(snapshot, "", "  ")
		if err == nil {
			err = util.WriteFileAtomic(content, l.config.StatusFile)
		}
		if err != nil {
			ui.Warning("Cannot write status file %s: %v", l.config.StatusFile, err)
		}
	}
}

// maxControlTemp returns the hottest control-role reading
func maxControlTemp(readings []sensors.Reading) (float64, bool) {
	maxTemp := 0.0
	found := false
	for _, reading := range readings {
		if reading.Role != sensors.RoleControl {
			continue
		}
		if !found || reading.Celsius > maxTemp {
			maxTemp = reading.Celsius
			found = true
		}
	}
	return maxTemp, found
}
