// SPDX-License-Identifier: MPL-2.0

package config

import "log/slog"

// migrateLegacyInstallations converts entries written with the single
// path_to_nuget field into the current {name, home, default_args} shape.
// An explicit home wins over the legacy path. It returns the number of
// converted entries.
func migrateLegacyInstallations(cfg *Config) int {
	migrated := 0
	for i := range cfg.Installations {
		inst := &cfg.Installations[i]
		if inst.PathToNuGet == "" {
			continue
		}
		if inst.Home == "" {
			inst.Home = inst.PathToNuGet
		}
		inst.PathToNuGet = ""
		migrated++
		slog.Debug("converted legacy installation entry", "installation", inst.Name)
	}
	return migrated
}
