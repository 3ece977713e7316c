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

// Package context implements the context-role model of spec.md sections 3
// and 4.3 (C5): the file-role classification carried on the command line,
// the two-pass connect-id preprocessor, and locale selection. It is
// grounded on the teacher's module-scope bookkeeping
// (pkg/corset/compiler/scope.go) generalized from "one scope per module" to
// "one Context per source file, grouped by role".
package context

import (
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/kiibohd/kll/pkg/util/source"
)

// Role is one of the file-role labels assignable on the command line
// (spec.md GLOSSARY, "Context (role)"). BaseLayer and FullLayer are not
// themselves assignable but round out the seven roles named in spec.md
// section 2 (C5): they identify the two derived, multi-context layer stacks
// DataFinalization builds (`base = Configuration ⊕ Generic ⊕ BaseMap` and
// `full = default ⊕ all partials`), which behave like contexts for merge
// purposes even though no file is assigned them directly.
type Role uint8

const (
	// Generic is the default role for a bare positional source path.
	Generic Role = iota
	// Configuration is the --config role (lowest merge priority).
	Configuration
	// BaseMap is the --base role.
	BaseMap
	// DefaultMap is the --default role (layer 0 overlay).
	DefaultMap
	// PartialMap is the --partial role; LayerIndex distinguishes instances.
	PartialMap
	// BaseLayer is the derived `base` composite context.
	BaseLayer
	// FullLayer is the derived `full` composite context.
	FullLayer
)

func (r Role) String() string {
	switch r {
	case Generic:
		return "Generic"
	case Configuration:
		return "Configuration"
	case BaseMap:
		return "BaseMap"
	case DefaultMap:
		return "DefaultMap"
	case PartialMap:
		return "PartialMap"
	case BaseLayer:
		return "BaseLayer"
	default:
		return "FullLayer"
	}
}

// Context is one source file (pre-merge) or one merged group (post-merge),
// carrying the organization its expressions were routed into and the
// preprocessor-derived addressing metadata.
type Context struct {
	Role         Role
	LayerIndex   int
	File         *source.File
	ConnectID    int
	HIDMapping   string
	Organization *organization.Organization
}

// New constructs a context wrapping a single source file not yet organized.
func New(role Role, layerIndex int, file *source.File) *Context {
	return &Context{
		Role:         role,
		LayerIndex:   layerIndex,
		File:         file,
		HIDMapping:   "us-ansi",
		Organization: organization.New(),
	}
}

// IsBaseMap reports whether this context's role should be treated as a
// BaseMap source for the Organization.Merge/Cleanup BaseMap-flag rule.
func (c *Context) IsBaseMap() bool {
	return c.Role == BaseMap || c.Role == BaseLayer
}
