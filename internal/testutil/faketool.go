// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
)

// WriteFakeTool writes an executable POSIX shell script named name into dir
// and returns its path. The script prints "cwd: <dir>" followed by one
// "arg: <value>" line per argument and exits with exitCode.
//
// Tests using it are skipped on Windows.
func WriteFakeTool(t testing.TB, dir, name string, exitCode int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are POSIX shell scripts")
	}

	script := fmt.Sprintf(`#!/bin/sh
echo "cwd: $(pwd)"
for a in "$@"; do
	echo "arg: $a"
done
exit %d
`, exitCode)

	path := filepath.Join(dir, name)
	MustWriteFile(t, path, script, 0o755)
	return path
}
