// SPDX-License-Identifier: MPL-2.0

package step

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nugetstep/nugetstep/internal/installation"
	"github.com/nugetstep/nugetstep/internal/node"
	"github.com/nugetstep/nugetstep/pkg/types"
)

type (
	// fakeNode records launches and answers existence checks from maps.
	fakeNode struct {
		unix      bool
		files     map[string]bool
		paths     map[string]bool
		existsErr error
		homes     map[string]string
		cwd       string
		code      types.ExitCode
		launchErr error
		output    string
		launched  []node.LaunchSpec
	}

	failingProvisioner struct{}
)

func (n *fakeNode) Name() string     { return "fake" }
func (n *fakeNode) IsUnix() bool     { return n.unix }
func (n *fakeNode) ToolsDir() string { return "/tools" }

func (n *fakeNode) ToolHome(name string) (string, bool) {
	home, ok := n.homes[name]
	return home, ok
}

func (n *fakeNode) Exists(_ context.Context, path string) (bool, error) {
	if n.existsErr != nil {
		return false, n.existsErr
	}
	return n.files[path], nil
}

func (n *fakeNode) PathExists(_ context.Context, path string) (bool, error) {
	return n.paths[path] || n.files[path], nil
}

func (n *fakeNode) Abs(path string) (string, error) {
	if n.cwd == "" || strings.HasPrefix(path, "/") {
		return path, nil
	}
	return n.cwd + "/" + path, nil
}

func (n *fakeNode) Launch(_ context.Context, spec node.LaunchSpec) (types.ExitCode, error) {
	n.launched = append(n.launched, spec)
	if spec.Stdout != nil && n.output != "" {
		fmt.Fprint(spec.Stdout, n.output)
	}
	return n.code, n.launchErr
}

func (failingProvisioner) Provision(context.Context, installation.Installation, installation.Node) (string, error) {
	return "", errors.New("download refused")
}

func newContext(n *fakeNode, out *bytes.Buffer) *ExecutionContext {
	return &ExecutionContext{
		Env:        map[string]string{"HOME": "/home/build"},
		BuildVars:  map[string]string{},
		ModuleRoot: "/ws/module",
		Workspace:  "/ws",
		Node:       n,
		Listener:   NewStreamListener(out),
	}
}

func mustStore(t *testing.T, list ...installation.Installation) *installation.Store {
	t.Helper()
	s, err := installation.NewStore(list)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		step        Step
		defaultArgs string
		env         map[string]string
		buildVars   map[string]string
		wantArgs    []string
		wantFile    string
	}{
		{
			name:     "install package",
			step:     Step{Command: "install", Args: "MyPackage -Version 1.0"},
			wantArgs: []string{"nuget.exe", "install", "MyPackage", "-Version", "1.0"},
		},
		{
			name:     "multi-line args are normalized",
			step:     Step{Command: "restore", Args: "restore\n\t--no-cache"},
			wantArgs: []string{"nuget.exe", "restore", "restore", "--no-cache"},
		},
		{
			name:     "file is one argument",
			step:     Step{Command: "restore", File: "src/My App.sln"},
			wantArgs: []string{"nuget.exe", "restore", "src/My App.sln"},
			wantFile: "src/My App.sln",
		},
		{
			name:     "blank file is skipped",
			step:     Step{Command: "restore", File: " \t\n"},
			wantArgs: []string{"nuget.exe", "restore"},
		},
		{
			name:      "build variable beats environment",
			step:      Step{Command: "pack", File: "$SPEC", Args: "-Version ${VERSION}"},
			env:       map[string]string{"VERSION": "0.0.0", "SPEC": "env.nuspec"},
			buildVars: map[string]string{"VERSION": "2.1.0"},
			wantArgs:  []string{"nuget.exe", "pack", "env.nuspec", "-Version", "2.1.0"},
			wantFile:  "env.nuspec",
		},
		{
			name:     "windows style placeholders",
			step:     Step{Command: "push", Args: "%PKG% -Source %FEED%"},
			env:      map[string]string{"FEED": `C:\feed`},
			wantArgs: []string{"nuget.exe", "push", "%PKG%", "-Source", `C:\feed`},
		},
		{
			name:        "default args come last without deduplication",
			step:        Step{Command: "restore", Args: "-NonInteractive"},
			defaultArgs: `-NonInteractive -ConfigFile "C:\My Config\nuget.config"`,
			wantArgs: []string{
				"nuget.exe", "restore", "-NonInteractive",
				"-NonInteractive", "-ConfigFile", `C:\My Config\nuget.config`,
			},
		},
		{
			name:        "default args are not expanded",
			step:        Step{Command: "restore"},
			defaultArgs: "-Source $FEED",
			env:         map[string]string{"FEED": "expanded"},
			wantArgs:    []string{"nuget.exe", "restore", "-Source", "$FEED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotArgs, gotFile := BuildArgs(DefaultExecutable, tt.step, tt.defaultArgs, tt.env, tt.buildVars)
			if !slices.Equal(gotArgs, tt.wantArgs) {
				t.Errorf("BuildArgs() args = %q, want %q", gotArgs, tt.wantArgs)
			}
			if gotFile != tt.wantFile {
				t.Errorf("BuildArgs() file = %q, want %q", gotFile, tt.wantFile)
			}
		})
	}
}

func TestBuildArgs_DoesNotMutateEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{"A": "env"}
	BuildArgs(DefaultExecutable, Step{Command: "restore", Args: "$A"}, "", env, map[string]string{"A": "var"})
	if env["A"] != "env" {
		t.Errorf("env was modified: %v", env)
	}
}

func TestWrapWindows(t *testing.T) {
	t.Parallel()

	got := WrapWindows([]string{"nuget.exe", "install", "MyPackage", "-Version", "1.0"})
	want := []string{"cmd.exe", "/C", "nuget.exe", "install", "MyPackage", "-Version", "1.0", "&&", "exit", "%ERRORLEVEL%"}
	if !slices.Equal(got, want) {
		t.Errorf("WrapWindows() = %q, want %q", got, want)
	}
}

func TestResolveWorkDir(t *testing.T) {
	t.Parallel()

	moduleRoot := filepath.FromSlash("/ws/module")
	workspace := filepath.FromSlash("/ws")
	existing := filepath.Join(moduleRoot, "packages.config")
	absolute := filepath.Join(workspace, "other", "App.sln")

	n := &fakeNode{paths: map[string]bool{existing: true, absolute: true}}

	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "no file", file: "", want: moduleRoot},
		{name: "file under module root", file: "packages.config", want: moduleRoot},
		{name: "missing file falls back to workspace", file: "missing.sln", want: workspace},
		{name: "absolute existing file", file: absolute, want: moduleRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveWorkDir(context.Background(), n, moduleRoot, workspace, tt.file)
			if err != nil {
				t.Fatalf("ResolveWorkDir() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveWorkDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPerform_UnknownInstallationUsesPath(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: true}
	ec := newContext(n, &out)

	ok, err := NewExecutor(mustStore(t), nil).Perform(context.Background(),
		Step{Installation: "NoSuchName", Command: "install", Args: "MyPackage -Version 1.0"}, ec)
	if err != nil || !ok {
		t.Fatalf("Perform() = %v, %v; want true, nil", ok, err)
	}

	if len(n.launched) != 1 {
		t.Fatalf("launches = %d, want 1", len(n.launched))
	}
	want := []string{"nuget.exe", "install", "MyPackage", "-Version", "1.0"}
	if got := n.launched[0].Args; !slices.Equal(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
	if !strings.Contains(out.String(), "Path To NuGet.exe: nuget.exe") {
		t.Errorf("log missing executable line:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Executing the command nuget.exe install MyPackage -Version 1.0 from /ws/module") {
		t.Errorf("log missing command line:\n%s", out.String())
	}
}

func TestPerform_WindowsNodeWrapsCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: false}

	ok, err := NewExecutor(nil, nil).Perform(context.Background(),
		Step{Command: "install", Args: "MyPackage -Version 1.0"}, newContext(n, &out))
	if err != nil || !ok {
		t.Fatalf("Perform() = %v, %v; want true, nil", ok, err)
	}

	want := []string{"cmd.exe", "/C", "nuget.exe", "install", "MyPackage", "-Version", "1.0", "&&", "exit", "%ERRORLEVEL%"}
	if got := n.launched[0].Args; !slices.Equal(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
}

func TestPerform_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code types.ExitCode
		want bool
	}{
		{name: "zero", code: 0, want: true},
		{name: "one", code: 1, want: false},
		{name: "other", code: 3, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			n := &fakeNode{unix: true, code: tt.code, output: "Restoring packages...\n"}
			ec := newContext(n, &out)

			ok, err := NewExecutor(nil, nil).Perform(context.Background(), Step{Command: "restore"}, ec)
			if err != nil {
				t.Fatalf("Perform() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Perform() = %v, want %v", ok, tt.want)
			}
			if ec.Result != ResultSuccess {
				t.Errorf("Result = %s, a clean exit must not mark the build failed", ec.Result)
			}
			if ec.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", ec.ExitCode, tt.code)
			}
			if !strings.Contains(out.String(), "Restoring packages...") {
				t.Errorf("tool output not forwarded to listener:\n%s", out.String())
			}
		})
	}
}

func TestPerform_LaunchFailureMarksBuildFailed(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: true, code: 1, launchErr: errors.New("exec: no such file")}
	ec := newContext(n, &out)

	ok, err := NewExecutor(nil, nil).Perform(context.Background(), Step{Command: "restore"}, ec)
	if err != nil || ok {
		t.Fatalf("Perform() = %v, %v; want false, nil", ok, err)
	}
	if ec.Result != ResultFailure {
		t.Errorf("Result = %s, want FAILURE", ec.Result)
	}
	if !strings.Contains(out.String(), "ERROR: command execution failed: exec: no such file") {
		t.Errorf("diagnostic missing:\n%s", out.String())
	}
}

func TestPerform_Interrupted(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: true, code: 1, launchErr: fmt.Errorf("%w: %w", node.ErrInterrupted, context.Canceled)}
	ec := newContext(n, &out)

	ok, err := NewExecutor(nil, nil).Perform(context.Background(), Step{Command: "restore"}, ec)
	if ok || !errors.Is(err, node.ErrInterrupted) {
		t.Fatalf("Perform() = %v, %v; want false, ErrInterrupted", ok, err)
	}
	if ec.Result != ResultSuccess {
		t.Errorf("Result = %s, interruption is not a launch failure", ec.Result)
	}
}

func TestPerform_ResolvedInstallation(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	home := "/opt/nuget/nuget.exe"
	n := &fakeNode{unix: true, files: map[string]bool{home: true}}
	ec := newContext(n, &out)
	ec.Env["NUGET_ROOT"] = "/opt/nuget"

	store := mustStore(t, installation.New("nuget-6", "${NUGET_ROOT}/nuget.exe", "-NonInteractive"))

	ok, err := NewExecutor(store, nil).Perform(context.Background(),
		Step{Installation: "nuget-6", Command: "restore"}, ec)
	if err != nil || !ok {
		t.Fatalf("Perform() = %v, %v; want true, nil", ok, err)
	}

	want := []string{home, "restore", "-NonInteractive"}
	if got := n.launched[0].Args; !slices.Equal(got, want) {
		t.Errorf("argv = %q, want %q", got, want)
	}
	if !strings.Contains(out.String(), "Path To NuGet.exe: "+home) {
		t.Errorf("log missing resolved path:\n%s", out.String())
	}
}

func TestPerform_RelativeHomeResolvedOnNode(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: true, cwd: "/agent", files: map[string]bool{"/agent/tools/nuget.exe": true}}

	store := mustStore(t, installation.New("nuget-6", "tools/nuget.exe", ""))
	ok, err := NewExecutor(store, nil).Perform(context.Background(),
		Step{Installation: "nuget-6", Command: "restore"}, newContext(n, &out))
	if err != nil || !ok {
		t.Fatalf("Perform() = %v, %v; want true, nil\n%s", ok, err, out.String())
	}

	spec := n.launched[0]
	if spec.Args[0] != "/agent/tools/nuget.exe" {
		t.Errorf("executable = %q, want it resolved before launching from %s", spec.Args[0], spec.Dir)
	}
	if !strings.Contains(out.String(), "Path To NuGet.exe: /agent/tools/nuget.exe") {
		t.Errorf("log missing resolved path:\n%s", out.String())
	}
}

func TestPerform_NodeToolLocationOverride(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{
		unix:  true,
		homes: map[string]string{"nuget-6": "/agent/tools/nuget.exe"},
		files: map[string]bool{"/agent/tools/nuget.exe": true},
	}

	store := mustStore(t, installation.New("nuget-6", "/controller/nuget.exe", ""))
	ok, err := NewExecutor(store, nil).Perform(context.Background(),
		Step{Installation: "nuget-6", Command: "restore"}, newContext(n, &out))
	if err != nil || !ok {
		t.Fatalf("Perform() = %v, %v; want true, nil", ok, err)
	}
	if got := n.launched[0].Args[0]; got != "/agent/tools/nuget.exe" {
		t.Errorf("executable = %q, want node override", got)
	}
}

func TestPerform_MissingExecutable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		existsErr error
		wantMsg   string
	}{
		{name: "absent", wantMsg: "FATAL: /opt/nuget/nuget.exe doesn't exist"},
		{name: "check fails", existsErr: errors.New("permission denied"), wantMsg: "FATAL: Failed checking for existence of /opt/nuget/nuget.exe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			n := &fakeNode{unix: true, existsErr: tt.existsErr}
			ec := newContext(n, &out)
			store := mustStore(t, installation.New("nuget-6", "/opt/nuget/nuget.exe", ""))

			ok, err := NewExecutor(store, nil).Perform(context.Background(),
				Step{Installation: "nuget-6", Command: "restore"}, ec)
			if err != nil || ok {
				t.Fatalf("Perform() = %v, %v; want false, nil", ok, err)
			}
			if len(n.launched) != 0 {
				t.Error("nothing should be launched when the executable is missing")
			}
			if !strings.Contains(out.String(), tt.wantMsg) {
				t.Errorf("output = %q, want it to contain %q", out.String(), tt.wantMsg)
			}
		})
	}
}

func TestPerform_TranslationFailureIsReturned(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: true}
	inst := installation.New("nuget-6", "", "").
		WithInstaller(&installation.Installer{URL: "https://dist.nuget.org/win-x86-commandline/latest/nuget.exe"})

	ok, err := NewExecutor(mustStore(t, inst), failingProvisioner{}).Perform(context.Background(),
		Step{Installation: "nuget-6", Command: "restore"}, newContext(n, &out))
	if ok || !errors.Is(err, installation.ErrTranslate) {
		t.Fatalf("Perform() = %v, %v; want false, ErrTranslate", ok, err)
	}
	if len(n.launched) != 0 {
		t.Error("nothing should be launched after a translation failure")
	}
}

func TestPerform_FileFallsBackToWorkspace(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n := &fakeNode{unix: true}

	ok, err := NewExecutor(nil, nil).Perform(context.Background(),
		Step{Command: "restore", File: "App.sln"}, newContext(n, &out))
	if err != nil || !ok {
		t.Fatalf("Perform() = %v, %v", ok, err)
	}
	if got := n.launched[0].Dir; got != "/ws" {
		t.Errorf("Dir = %q, want workspace", got)
	}
}

func TestPerform_InvalidInput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	if _, err := NewExecutor(nil, nil).Perform(context.Background(), Step{}, newContext(&fakeNode{}, &out)); !errors.Is(err, ErrMissingCommand) {
		t.Errorf("Perform() without command error = %v, want ErrMissingCommand", err)
	}

	ec := newContext(&fakeNode{}, &out)
	ec.Node = nil
	if _, err := NewExecutor(nil, nil).Perform(context.Background(), Step{Command: "restore"}, ec); !errors.Is(err, ErrNoNode) {
		t.Errorf("Perform() without node error = %v, want ErrNoNode", err)
	}

	ec = newContext(&fakeNode{}, &out)
	ec.Listener = nil
	if _, err := NewExecutor(nil, nil).Perform(context.Background(), Step{Command: "restore"}, ec); !errors.Is(err, ErrNoListener) {
		t.Errorf("Perform() without listener error = %v, want ErrNoListener", err)
	}
}
