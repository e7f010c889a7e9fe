// SPDX-License-Identifier: MPL-2.0

package config

import (
	"reflect"
	"testing"
)

func TestMigrateLegacyInstallations(t *testing.T) {
	t.Parallel()

	cfg := &Config{Installations: []InstallationConfig{
		{Name: "current", Home: "/a/nuget.exe"},
		{Name: "legacy", PathToNuGet: `C:\nuget.exe`, DefaultArgs: "-NonInteractive"},
		{Name: "both", Home: "/new.exe", PathToNuGet: "/old.exe"},
	}}

	if n := migrateLegacyInstallations(cfg); n != 2 {
		t.Errorf("migrated = %d, want 2", n)
	}

	want := []InstallationConfig{
		{Name: "current", Home: "/a/nuget.exe"},
		{Name: "legacy", Home: `C:\nuget.exe`, DefaultArgs: "-NonInteractive"},
		{Name: "both", Home: "/new.exe"},
	}
	if !reflect.DeepEqual(cfg.Installations, want) {
		t.Errorf("Installations = %+v, want %+v", cfg.Installations, want)
	}

	if n := migrateLegacyInstallations(cfg); n != 0 {
		t.Errorf("second migration converted %d entries, want 0", n)
	}
}
