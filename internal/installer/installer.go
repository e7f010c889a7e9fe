// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/nugetstep/nugetstep/internal/installation"
)

// ExecutableName is the file name installed tools are cached under.
const ExecutableName = "nuget.exe"

// ErrNoInstaller is returned when Provision is asked to install an
// installation that has no installer configured.
var ErrNoInstaller = errors.New("installation has no installer")

type (
	// Installer downloads nuget.exe for installations that declare an
	// auto-installer. It implements installation.Provisioner.
	Installer struct {
		httpClient *http.Client
		userAgent  string
		toolsDir   string
	}

	// Option configures an Installer.
	Option func(*Installer)

	toolsDirNode interface {
		ToolsDir() string
	}
)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Installer) {
		i.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with downloads.
func WithUserAgent(ua string) Option {
	return func(i *Installer) {
		i.userAgent = ua
	}
}

// WithToolsDir sets the cache directory used when the node does not expose
// its own tools directory.
func WithToolsDir(dir string) Option {
	return func(i *Installer) {
		i.toolsDir = dir
	}
}

// New creates an Installer. Defaults: http.DefaultClient and
// userAgent "nugetstep/dev".
func New(opts ...Option) *Installer {
	i := &Installer{
		httpClient: http.DefaultClient,
		userAgent:  "nugetstep/dev",
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Provision returns the home of inst on node, downloading nuget.exe into
// <tools dir>/<installation name>/ when it is not cached yet or the cached
// copy fails verification.
func (i *Installer) Provision(ctx context.Context, inst installation.Installation, node installation.Node) (string, error) {
	spec := inst.Installer()
	if spec == nil {
		return "", fmt.Errorf("%s: %w", inst.Name(), ErrNoInstaller)
	}
	if err := ValidateChecksum(spec.SHA256); err != nil {
		return "", err
	}

	dir, err := i.installDir(inst, node)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, ExecutableName)

	if cached, err := node.Exists(ctx, target); err != nil {
		return "", err
	} else if cached {
		if spec.SHA256 == "" {
			return target, nil
		}
		if err := VerifyFile(target, spec.SHA256); err == nil {
			return target, nil
		}
		slog.Warn("cached tool failed verification, downloading again", "path", target)
	}

	slog.Info("installing tool", "installation", inst.Name(), "node", node.Name(), "url", redactURL(spec.URL))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating tools directory: %w", err)
	}

	tmpPath, err := i.downloadToTempFile(ctx, spec.URL, dir)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmpPath) }() // no-op after a successful rename

	if spec.SHA256 != "" {
		if err := VerifyFile(tmpPath, spec.SHA256); err != nil {
			return "", err
		}
	}

	if err := os.Chmod(tmpPath, 0o755); err != nil {
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("installing %s: %w", target, err)
	}

	return target, nil
}

func (i *Installer) installDir(inst installation.Installation, node installation.Node) (string, error) {
	if err := installation.ValidateName(inst.Name()); err != nil {
		return "", err
	}
	root := i.toolsDir
	if n, ok := node.(toolsDirNode); ok && n.ToolsDir() != "" {
		root = n.ToolsDir()
	}
	if root == "" {
		return "", fmt.Errorf("no tools directory for node %s", node.Name())
	}
	return filepath.Join(root, inst.Name()), nil
}

// downloadToTempFile downloads rawURL into a temporary file in dir and returns
// its path. The caller removes the file when done.
func (i *Installer) downloadToTempFile(ctx context.Context, rawURL, dir string) (_ string, err error) {
	body, err := i.download(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }() // read-only HTTP response body

	tmp, err := os.CreateTemp(dir, "nugetstep-download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing to temp file: %w", err)
	}

	return tmp.Name(), nil
}

func (i *Installer) download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", redactURL(rawURL), err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading %s: unexpected status %d", redactURL(rawURL), resp.StatusCode)
	}

	return resp.Body, nil
}

// redactURL strips credentials, query parameters and fragments from a URL for
// inclusion in logs and error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
