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
package organization_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddExpressionRoutesAssignment(t *testing.T) {
	o := organization.New()

	require.NoError(t, o.AddExpression(&ast.Assignment{Name: "x", Values: []string{"1"}}))
	assert.Len(t, o.Variables.Log, 1)
}

func TestAddExpressionRoutesCapabilityVsDefine(t *testing.T) {
	o := organization.New()

	require.NoError(t, o.AddExpression(&ast.NameAssociation{Name: "usbKeyOut", Capability: &ast.CapabilityDef{Name: "usbKeyOut"}}))
	assert.Len(t, o.Capabilities.Log, 1)
	assert.Len(t, o.Defines.Log, 0)
}

func TestAddExpressionNarrowsPixelPositionPerMember(t *testing.T) {
	o := organization.New()

	p1 := &ast.Pixel{UIDKind: ast.PixelUIDIndex, Index: 1}
	p2 := &ast.Pixel{UIDKind: ast.PixelUIDIndex, Index: 2}

	d := &ast.DataAssociation{
		DAKind:      ast.DataPixelPosition,
		Association: []ast.Identifier{p1, p2},
	}

	require.NoError(t, o.AddExpression(d))
	assert.Len(t, o.PixelPositions.Log, 2)
}

func TestMergeClearsBaseMapFlagFromNonBaseSource(t *testing.T) {
	src := organization.New()
	m := &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{ast.NewScanCode(1)}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 4, "us-ansi")}},
		BaseMap:  true,
	}
	src.Mapping.Add(m)

	dst := organization.New()
	dst.Merge(src, false)

	for _, e := range dst.Mapping.Log {
		assert.False(t, e.Expr.BaseMap)
	}
}

func TestMergePreservesBaseMapFlagFromBaseSource(t *testing.T) {
	src := organization.New()
	m := &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{ast.NewScanCode(1)}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 4, "us-ansi")}},
		BaseMap:  true,
	}
	src.Mapping.Add(m)

	dst := organization.New()
	dst.Merge(src, true)

	require.Len(t, dst.Mapping.Log, 1)
	assert.True(t, dst.Mapping.Log[0].Expr.BaseMap)
}

func TestCleanupDropsSurvivingBaseMapEntries(t *testing.T) {
	o := organization.New()
	o.Mapping.Add(&ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{ast.NewScanCode(1)}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 4, "us-ansi")}},
		BaseMap:  true,
	})

	o.Cleanup()

	data := o.Mapping.Materialize()
	assert.Empty(t, data)
}
