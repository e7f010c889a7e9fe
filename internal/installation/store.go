// SPDX-License-Identifier: MPL-2.0

package installation

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateName is returned when two installations share a name.
var ErrDuplicateName = errors.New("duplicate installation name")

// Store is the installation registry. It is not safe for concurrent mutation;
// configuration commands own writes and execution only reads.
type Store struct {
	installations []Installation
}

// NewStore creates a Store from list, rejecting invalid and duplicate names.
func NewStore(list []Installation) (*Store, error) {
	s := &Store{}
	for _, inst := range list {
		if err := s.Add(inst); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Resolve returns the installation whose name equals name exactly.
// The boolean is false when name is empty or unknown; callers then fall back
// to the bare executable on PATH.
func (s *Store) Resolve(name string) (Installation, bool) {
	if s == nil || name == "" {
		return Installation{}, false
	}
	for _, inst := range s.installations {
		if inst.name == name {
			return inst, true
		}
	}
	return Installation{}, false
}

// All returns the installations in configuration order.
func (s *Store) All() []Installation {
	if s == nil {
		return nil
	}
	return slices.Clone(s.installations)
}

// Add appends inst, or fails if its name is invalid or already taken.
func (s *Store) Add(inst Installation) error {
	if err := ValidateName(inst.name); err != nil {
		return err
	}
	if _, exists := s.Resolve(inst.name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, inst.name)
	}
	s.installations = append(s.installations, inst)
	return nil
}

// Remove deletes the installation named name and reports whether it existed.
func (s *Store) Remove(name string) bool {
	idx := slices.IndexFunc(s.installations, func(inst Installation) bool {
		return inst.name == name
	})
	if idx < 0 {
		return false
	}
	s.installations = slices.Delete(s.installations, idx, idx+1)
	return true
}
