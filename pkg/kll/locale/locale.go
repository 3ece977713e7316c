// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package locale treats the locale HID dictionary as an external
// collaborator, per spec.md section 9: "Treat the locale layouts repository
// as an external collaborator with the interface lookup(name) -> uid,
// reverse(uid) -> name, compose(string, {no_clears}) -> [[HIDCode]]." The
// concrete dictionaries supplied by the layouts package are out of scope
// (spec.md section 1); this package defines the interface the core consumes
// and a minimal built-in dictionary sufficient to compile and test KLL
// sources without that external package present.
package locale

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/kll/ast"
)

// ComposedCombo is one HID-combo produced by composing a character of a
// sequence string, e.g. a shifted character composes to [Shift, c].
type ComposedCombo []*ast.HIDCode

// Dictionary is the interface a locale HID dictionary must satisfy.
type Dictionary interface {
	// Name returns the locale's declared name (the HIDMapping value).
	Name() string
	// Lookup resolves a symbolic HID name (e.g. "A", "Enter") to a HIDCode.
	// The second return is false if the name is not known in this locale.
	Lookup(name string) (*ast.HIDCode, bool)
	// Reverse resolves a HIDCode back to its symbolic name, if known.
	Reverse(code *ast.HIDCode) (string, bool)
	// Compose expands a sequence string into one ComposedCombo per
	// character.  When noClears is true, no inter-character clear/release
	// combo is inserted between repeated characters (used for the L-form,
	// left-hand side of a map expression); when false, clears are
	// inserted (used for the R-form, right-hand side).
	Compose(s string, noClears bool) ([]ComposedCombo, error)
}

// Registry holds every locale dictionary known to this compilation unit.
type Registry struct {
	dicts map[string]Dictionary
}

// NewRegistry constructs a registry pre-populated with the built-in
// dictionaries.
func NewRegistry() *Registry {
	r := &Registry{dicts: make(map[string]Dictionary)}
	r.Register(NewUSANSI())

	return r
}

// Register adds (or replaces) a dictionary under its own declared name.
func (r *Registry) Register(d Dictionary) {
	r.dicts[d.Name()] = d
}

// Get returns the dictionary for the given locale name, failing fast (per
// spec.md section 9) if the declared HIDMapping is not in the provided set.
func (r *Registry) Get(name string) (Dictionary, error) {
	if d, ok := r.dicts[name]; ok {
		return d, nil
	}

	return nil, fmt.Errorf("unknown locale %q", name)
}
