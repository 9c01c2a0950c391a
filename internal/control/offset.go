package control

import (
	"sync/atomic"

	"github.com/loislo/fan-control/internal/channels"
	"github.com/loislo/fan-control/internal/util"
)

const (
	// MaxOffset bounds the manual duty offset in both directions
	MaxOffset = channels.MaxDutyValue
	// OffsetStep is how far one keypress shifts the offset
	OffsetStep = 10
)

// Offset is a manual duty adjustment shared between the control loop
// and the keyboard listener. All methods are safe for concurrent use.
type Offset struct {
	value atomic.Int64
}

func (o *Offset) Get() int {
	return int(o.value.Load())
}

func (o *Offset) Set(value int) {
	o.value.Store(int64(util.CoerceInt(value, -MaxOffset, MaxOffset)))
}

// Adjust shifts the offset by delta and returns the new value
func (o *Offset) Adjust(delta int) int {
	for {
		current := o.value.Load()
		next := int64(util.CoerceInt(int(current)+delta, -MaxOffset, MaxOffset))
		if o.value.CompareAndSwap(current, next) {
			return int(next)
		}
	}
}

// Reset clears the offset
func (o *Offset) Reset() {
	o.value.Store(0)
}
