package sensors

import "strings"

// classification rule tables. A sensor drives the fan curve when it
// measures the CPU (core or package) or a GPU, everything else is
// display-only. Matching is case-insensitive.
var (
	controlDeviceNames = []string{
		"coretemp", // Intel CPU
		"k10temp",  // AMD CPU
	}

	controlDeviceMarkers = []string{
		"nvidia",
		"amdgpu",
	}

	controlLabelMarkers = []string{
		"core",
		"package",
		"tdie",
		"tctl",
	}
)

// ClassifyRole decides whether a sensor is a control input or
// display-only, based on its hwmon device name and label. The rules are
// pure so repeated discovery on unchanged hardware always classifies
// identically.
func ClassifyRole(deviceName string, label string) Role {
	device := strings.ToLower(deviceName)
	for _, name := range controlDeviceNames {
		if device == name {
			return RoleControl
		}
	}
	for _, marker := range controlDeviceMarkers {
		if strings.Contains(device, marker) {
			return RoleControl
		}
	}

	lowerLabel := strings.ToLower(label)
	for _, marker := range controlLabelMarkers {
		if strings.Contains(lowerLabel, marker) {
			return RoleControl
		}
	}

	return RoleDisplay
}
