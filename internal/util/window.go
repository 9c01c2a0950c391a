package util

import "github.com/asecurityteam/rolling"

func CreateRollingWindow(size int) *rolling.PointPolicy {
	return rolling.NewPointPolicy(rolling.NewWindow(size))
}

// FillWindow completely fills the given window with the given value
func FillWindow(window *rolling.PointPolicy, size int, value float64) {
	for i := 0; i < size; i++ {
		window.Append(value)
	}
}

// GetWindowSpread returns the difference between the max and min
// values in the window
func GetWindowSpread(window *rolling.PointPolicy) float64 {
	return window.Reduce(rolling.Max) - window.Reduce(rolling.Min)
}
