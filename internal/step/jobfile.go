// SPDX-License-Identifier: MPL-2.0

package step

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidJob is wrapped by every job file decoding failure.
var ErrInvalidJob = errors.New("invalid job file")

// Job is a build step described on disk:
//
//	installation = "nuget-6"
//	command      = "restore"
//	file         = "src/App.sln"
//	args         = "-NonInteractive"
//	module_root  = "src"
//	workspace    = "."
//	node         = "local"
//	var_files    = [".build.env?"]
//
//	[variables]
//	CONFIGURATION = "Release"
type Job struct {
	Installation string            `toml:"installation"`
	Command      string            `toml:"command"`
	File         string            `toml:"file"`
	Args         string            `toml:"args"`
	ModuleRoot   string            `toml:"module_root"`
	Workspace    string            `toml:"workspace"`
	Node         string            `toml:"node"`
	VarFiles     []string          `toml:"var_files"`
	Variables    map[string]string `toml:"variables"`

	// dir is the directory of the job file; relative paths resolve against it.
	dir string
}

// LoadJob reads and decodes the job file at path.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return ParseJob(data, abs)
}

// ParseJob decodes job file content. Unknown keys are rejected. filename is
// used for error messages and to resolve relative paths. The step itself is
// not validated here; command-line flags may still complete it.
func ParseJob(data []byte, filename string) (*Job, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var job Job
	if err := dec.Decode(&job); err != nil {
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, fmt.Errorf("%w: %s:%d:%d: %s", ErrInvalidJob, filename, row, col, decErr.Error())
		}
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			keys := make([]string, 0, len(strictErr.Errors))
			for i := range strictErr.Errors {
				keys = append(keys, strings.Join(strictErr.Errors[i].Key(), "."))
			}
			return nil, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalidJob, filename, strings.Join(keys, ", "))
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidJob, filename, err)
	}

	job.dir = filepath.Dir(filename)
	job.ModuleRoot = job.resolve(job.ModuleRoot)
	job.Workspace = job.resolve(job.Workspace)

	return &job, nil
}

// Step returns the build step described by the job.
func (j *Job) Step() Step {
	return Step{
		Installation: j.Installation,
		Command:      j.Command,
		File:         j.File,
		Args:         j.Args,
	}
}

// BuildVars returns the job's build variables: var_files in order, then the
// [variables] table.
func (j *Job) BuildVars() (map[string]string, error) {
	vars := make(map[string]string)
	for _, path := range j.VarFiles {
		if err := LoadVarsFile(vars, path, j.dir); err != nil {
			return nil, err
		}
	}
	maps.Copy(vars, j.Variables)
	return vars, nil
}

func (j *Job) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(j.dir, filepath.FromSlash(path))
}
