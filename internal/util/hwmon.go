package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GetDeviceName reads the name of a hwmon device
func GetDeviceName(devicePath string) string {
	namePath := filepath.Join(devicePath, "name")
	content, _ := os.ReadFile(namePath)
	name := string(content)
	if len(name) <= 0 {
		_, name = filepath.Split(devicePath)
	}
	return strings.TrimSpace(name)
}

// GetLabel reads the label of an in/output of a device.
// Falls back to the device directory name if no label file exists.
func GetLabel(devicePath string, input string) string {
	labelPath := strings.TrimSuffix(filepath.Join(devicePath, input), "input") + "label"

	content, _ := os.ReadFile(labelPath)
	label := string(content)
	if len(label) <= 0 {
		_, label = filepath.Split(devicePath)
	}
	return strings.TrimSpace(label)
}

// FindHwmonDevicePaths lists the device directories below the given
// hwmon root, resolving symlinks like /sys/class/hwmon/hwmon3 does
func FindHwmonDevicePaths(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "hwmon") {
			continue
		}
		devicePath := filepath.Join(basePath, entry.Name())
		resolved, err := filepath.EvalSymlinks(devicePath)
		if err != nil {
			continue
		}
		result = append(result, resolved)
	}
	sort.Strings(result)

	return result, nil
}
