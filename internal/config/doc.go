// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/nugetstep/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/nugetstep/config.cue on macOS, %APPDATA%\nugetstep\config.cue
// on Windows). It holds the NuGet installation list, node descriptors and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations. Entries written
// by older releases with a single path_to_nuget field are converted at load time.
package config
