package sensors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		tn         string
		deviceName string
		label      string
		expected   Role
	}{
		{
			tn:         "intel cpu device",
			deviceName: "coretemp",
			label:      "Core 0",
			expected:   RoleControl,
		},
		{
			tn:         "amd cpu device",
			deviceName: "k10temp",
			label:      "Tctl",
			expected:   RoleControl,
		},
		{
			tn:         "nvidia gpu device",
			deviceName: "nvidia_gpu",
			label:      "GPU",
			expected:   RoleControl,
		},
		{
			tn:         "amd gpu device",
			deviceName: "amdgpu",
			label:      "edge",
			expected:   RoleControl,
		},
		{
			tn:         "cpu label on unknown device",
			deviceName: "zenpower",
			label:      "Tdie",
			expected:   RoleControl,
		},
		{
			tn:         "package label on unknown device",
			deviceName: "acpitz",
			label:      "Package id 0",
			expected:   RoleControl,
		},
		{
			tn:         "case insensitive",
			deviceName: "CoreTemp",
			label:      "whatever",
			expected:   RoleControl,
		},
		{
			tn:         "nvme drive",
			deviceName: "nvme",
			label:      "Composite",
			expected:   RoleDisplay,
		},
		{
			tn:         "motherboard chip",
			deviceName: "nct6798",
			label:      "SYSTIN",
			expected:   RoleDisplay,
		},
		{
			tn:         "wifi card",
			deviceName: "iwlwifi_1",
			label:      "iwlwifi_1_temp1",
			expected:   RoleDisplay,
		},
	}

	for _, tc := range tests {
		t.Run(tc.tn, func(t *testing.T) {
			// WHEN
			role := ClassifyRole(tc.deviceName, tc.label)

			// THEN
			assert.Equal(t, tc.expected, role)
		})
	}
}

func TestClassifyRoleIsStable(t *testing.T) {
	// GIVEN
	first := ClassifyRole("k10temp", "Tctl")

	// WHEN
	second := ClassifyRole("k10temp", "Tctl")

	// THEN
	assert.Equal(t, first, second)
}
