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
package analysis_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/context"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/kiibohd/kll/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func animationDefaultAssoc(name string, params ...ast.ScheduleParam) *ast.DataAssociation {
	return &ast.DataAssociation{
		DAKind:            ast.DataAnimation,
		Association:       []ast.Identifier{ast.NewAnimation(name)},
		AnimationSettings: ast.Schedule{Params: params},
	}
}

func TestAssignAnimationUIDsOrdersByDeclarationThenFirstUse(t *testing.T) {
	base := organization.New()
	base.Animations.Add(animationDefaultAssoc("fire"))

	fireRef := ast.NewAnimation("fire")
	sparkRef := ast.NewAnimation("spark")

	def := organization.New()
	def.Mapping.Add(mapExpr(ast.OpReplace, scanCombo(0x01), ast.Combo{fireRef}))
	def.Mapping.Add(mapExpr(ast.OpReplace, scanCombo(0x02), ast.Combo{sparkRef}))

	report, err := analysis.Analyze(analysis.Input{
		Base:    base,
		Default: def,
		Full:    organization.New(),
		Offsets: context.OffsetTable{},
	})
	require.NoError(t, err)

	assert.Equal(t, uint16(0), report.AnimationUIDs["fire"])
	assert.Equal(t, uint16(1), report.AnimationUIDs["spark"])
}

func TestFillAnimationUIDsStampsSurvivingMappings(t *testing.T) {
	base := organization.New()
	base.Animations.Add(animationDefaultAssoc("fire"))

	def := organization.New()
	def.Mapping.Add(mapExpr(ast.OpReplace, scanCombo(0x01), ast.Combo{ast.NewAnimation("fire")}))

	report, err := analysis.Analyze(analysis.Input{
		Base:    base,
		Default: def,
		Full:    organization.New(),
		Offsets: context.OffsetTable{},
	})
	require.NoError(t, err)

	require.Len(t, report.Layers[0].Mappings, 1)
	result := report.Layers[0].Mappings[0].Results[0][0].(*ast.Animation)
	require.True(t, result.UID.HasValue())
	assert.Equal(t, uint16(0), result.UID.Unwrap())
}

func TestReconcileAnimationSettingsMergesDefaultsUnderReference(t *testing.T) {
	full := organization.New()
	full.Animations.Add(animationDefaultAssoc("fire", ast.ScheduleParam{Class: ast.ClassAnimation, State: util.Some("D")}))

	ref := ast.NewAnimation("fire")
	ref.Modifiers = ast.Schedule{Params: []ast.ScheduleParam{{Class: ast.ClassAnalog, IndexState: util.Some(3)}}}

	def := organization.New()
	def.Mapping.Add(mapExpr(ast.OpReplace, scanCombo(0x01), ast.Combo{ref}))

	report, err := analysis.Analyze(analysis.Input{
		Base:    organization.New(),
		Default: def,
		Full:    full,
		Offsets: context.OffsetTable{},
	})
	require.NoError(t, err)

	var merged *analysis.AnimationSetting
	for i := range report.AnimationSettings {
		if report.AnimationSettings[i].Name == "fire" && len(report.AnimationSettings[i].Modifiers.Params) == 2 {
			merged = &report.AnimationSettings[i]
		}
	}

	require.NotNil(t, merged)
}
