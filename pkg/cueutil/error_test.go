// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := FormatError(originalErr, "config.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "config.cue") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
		if !errors.Is(err, originalErr) {
			t.Errorf("error should wrap the original, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{name: "empty path", path: nil, expected: ""},
		{name: "single element", path: []string{"ui"}, expected: "ui"},
		{name: "nested path", path: []string{"ui", "verbose"}, expected: "ui.verbose"},
		{name: "array index", path: []string{"installations", "0", "home"}, expected: "installations[0].home"},
		{name: "leading numeric", path: []string{"0", "name"}, expected: "0.name"},
		{name: "consecutive indices", path: []string{"nodes", "1", "2"}, expected: "nodes[1][2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "ok.cue"); err != nil {
		t.Errorf("CheckFileSize() at limit returned error: %v", err)
	}

	err := CheckFileSize(make([]byte, 11), 10, "big.cue")
	if err == nil {
		t.Fatal("CheckFileSize() over limit returned nil")
	}
	if !strings.Contains(err.Error(), "big.cue") {
		t.Errorf("error should mention the file, got: %v", err)
	}
}
