// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nugetstep/nugetstep/internal/config"
	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/installer"
	"github.com/nugetstep/nugetstep/internal/testutil"
)

func TestInstallation_AddListRemove(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "nugetstep", "config.cue")

	cli := newTestCLI(t)
	if err := cli.run("installation", "add", "nuget-6",
		"--config", cfgPath,
		"--home", `C:\tools\nuget-6\nuget.exe`,
		"--default-args", "-NonInteractive"); err != nil {
		t.Fatalf("installation add error = %v", err)
	}
	if !strings.Contains(cli.stdout.String(), "Added installation nuget-6") {
		t.Errorf("add output = %q", cli.stdout)
	}

	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Installations) != 1 {
		t.Fatalf("installations = %d, want 1", len(cfg.Installations))
	}
	got := cfg.Installations[0]
	if got.Name != "nuget-6" || got.Home != `C:\tools\nuget-6\nuget.exe` || got.DefaultArgs != "-NonInteractive" {
		t.Errorf("saved installation = %+v", got)
	}

	cli = newTestCLI(t)
	if err := cli.run("installation", "list", "--config", cfgPath); err != nil {
		t.Fatalf("installation list error = %v", err)
	}
	for _, want := range []string{"nuget-6", `C:\tools\nuget-6\nuget.exe`, "-NonInteractive"} {
		if !strings.Contains(cli.stdout.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, cli.stdout)
		}
	}

	cli = newTestCLI(t)
	if err := cli.run("installation", "remove", "nuget-6", "--config", cfgPath); err != nil {
		t.Fatalf("installation remove error = %v", err)
	}

	cfg, err = config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Installations) != 0 {
		t.Errorf("installations after remove = %+v", cfg.Installations)
	}
}

func TestInstallation_AddSavesLoadedFile(t *testing.T) {
	// Not parallel: changes the working directory, config dir and environment.
	globalDir := t.TempDir()
	config.SetConfigDirOverride(globalDir)
	t.Cleanup(config.Reset)
	t.Setenv("NUGETSTEP_UI_VERBOSE", "true")

	wd := t.TempDir()
	localPath := filepath.Join(wd, "config.cue")
	testutil.MustWriteFile(t, localPath, `installations: [{name: "a", home: "/x"}]
`, 0o644)
	t.Cleanup(testutil.MustChdir(t, wd))

	cli := newTestCLI(t)
	if err := cli.run("installation", "add", "b", "--home", "/y"); err != nil {
		t.Fatalf("installation add error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(globalDir, "config.cue")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("installation add wrote to the config directory (stat error = %v)", err)
	}

	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: localPath, IgnoreEnv: true})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	names := make([]string, 0, len(cfg.Installations))
	for _, inst := range cfg.Installations {
		names = append(names, inst.Name)
	}
	if strings.Join(names, ",") != "a,b" {
		t.Errorf("installations = %v, want [a b]", names)
	}
	if cfg.UI.Verbose {
		t.Error("NUGETSTEP_UI_VERBOSE was persisted into the config file")
	}
}

func TestInstallation_AddWithInstaller(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "config.cue")
	sum := strings.Repeat("ab", 32)

	cli := newTestCLI(t)
	if err := cli.run("installation", "add", "nuget-dl",
		"--config", cfgPath,
		"--installer-url", "https://dist.nuget.org/win-x86-commandline/latest/nuget.exe",
		"--installer-sha256", sum); err != nil {
		t.Fatalf("installation add error = %v", err)
	}

	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	inst := cfg.Installations[0]
	if inst.Installer == nil || inst.Installer.SHA256 != sum {
		t.Errorf("installer not saved: %+v", inst)
	}
}

func TestInstallation_Errors(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, config.InstallationConfig{Name: "nuget-6", Home: "/opt/nuget.exe"})

	tests := []struct {
		name    string
		args    []string
		wantIs  error
		wantMsg string
	}{
		{
			name:   "duplicate name",
			args:   []string{"installation", "add", "nuget-6", "--home", "/other/nuget.exe"},
			wantIs: installation.ErrDuplicateName,
		},
		{
			name:   "reserved name",
			args:   []string{"installation", "add", "CON"},
			wantIs: installation.ErrInvalidName,
		},
		{
			name:   "invalid checksum",
			args:   []string{"installation", "add", "nuget-dl", "--installer-url", "https://example.com/nuget.exe", "--installer-sha256", "abc"},
			wantIs: installer.ErrInvalidChecksum,
		},
		{
			name:    "remove unknown",
			args:    []string{"installation", "remove", "nuget-9"},
			wantMsg: `installation "nuget-9" is not configured`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cli := newTestCLI(t)
			err := cli.run(append(tt.args, "--config", cfgPath)...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want errors.Is %v", err, tt.wantIs)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}
