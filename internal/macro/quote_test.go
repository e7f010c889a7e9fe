// SPDX-License-Identifier: MPL-2.0

package macro

import (
	"strings"
	"testing"
)

func TestQuote(t *testing.T) {
	t.Parallel()

	t.Run("plain words unchanged", func(t *testing.T) {
		t.Parallel()

		got := Quote([]string{"nuget.exe", "install", "MyPackage", "-Version", "1.0"})
		if got != "nuget.exe install MyPackage -Version 1.0" {
			t.Errorf("Quote() = %q", got)
		}
	})

	t.Run("argument with space is quoted", func(t *testing.T) {
		t.Parallel()

		got := Quote([]string{"nuget.exe", "restore", "My App.sln"})
		if !strings.HasPrefix(got, "nuget.exe restore ") {
			t.Fatalf("Quote() = %q", got)
		}
		if strings.HasSuffix(got, " My App.sln") {
			t.Errorf("argument with a space should be quoted, got %q", got)
		}
		if !strings.Contains(got, "My App.sln") {
			t.Errorf("quoted output lost the argument text: %q", got)
		}
	})

	t.Run("empty vector", func(t *testing.T) {
		t.Parallel()

		if got := Quote(nil); got != "" {
			t.Errorf("Quote(nil) = %q, want empty", got)
		}
	})
}
