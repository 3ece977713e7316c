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
package emit_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/emit"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capDef(name string, args ...ast.CapArgID) *ast.NameAssociation {
	return &ast.NameAssociation{
		Name:       name,
		Capability: &ast.CapabilityDef{Name: name, Args: args},
	}
}

func reportWithCapabilities(defs ...*ast.NameAssociation) *analysis.Report {
	full := organization.New()
	for _, d := range defs {
		full.Capabilities.Add(d)
	}

	return &analysis.Report{Full: full}
}

func TestBuildCapabilityTableSortsAlphabeticallyAndIndexes(t *testing.T) {
	report := reportWithCapabilities(
		capDef("usbKeyOut", ast.CapArgID{Name: "key", Width: 1}),
		capDef("animationIndex", ast.CapArgID{Name: "idx", Width: 1}),
	)

	entries := emit.BuildCapabilityTable(report)
	require.Len(t, entries, 2)
	assert.Equal(t, "animationIndex", entries[0].FuncName)
	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, "usbKeyOut", entries[1].FuncName)
	assert.Equal(t, 1, entries[1].Index)
}

func TestBuildCapabilityTableMarksArgFreeCapabilitiesSafe(t *testing.T) {
	report := reportWithCapabilities(capDef("noneOut"))

	entries := emit.BuildCapabilityTable(report)
	require.Len(t, entries, 1)
	assert.NotZero(t, entries[0].FeatureBits)
}

func TestIndexByNameReflectsTablePositions(t *testing.T) {
	report := reportWithCapabilities(
		capDef("b_capability"),
		capDef("a_capability"),
	)

	entries := emit.BuildCapabilityTable(report)
	lookup := emit.IndexByName(entries)

	assert.Equal(t, 0, lookup["a_capability"])
	assert.Equal(t, 1, lookup["b_capability"])
}

func TestFindDefinitionLocatesByInvocationName(t *testing.T) {
	report := reportWithCapabilities(capDef("usbKeyOut", ast.CapArgID{Name: "key", Width: 1}))

	def, ok := emit.FindDefinition(report, "usbKeyOut")
	require.True(t, ok)
	assert.Equal(t, uint(1), def.TotalArgWidth())
}

func TestFindDefinitionMissesUnknownCapability(t *testing.T) {
	report := reportWithCapabilities(capDef("usbKeyOut"))

	_, ok := emit.FindDefinition(report, "doesNotExist")
	assert.False(t, ok)
}
