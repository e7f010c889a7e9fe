// SPDX-License-Identifier: MPL-2.0

package platform

import "testing"

func TestIsUnix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos string
		want bool
	}{
		{Linux, true},
		{Darwin, true},
		{"freebsd", true},
		{Windows, false},
		{"plan9", false},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			if got := IsUnix(tt.goos); got != tt.want {
				t.Errorf("IsUnix(%q) = %v, want %v", tt.goos, got, tt.want)
			}
		})
	}
}
