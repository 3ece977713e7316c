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
	"github.com/kiibohd/kll/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScheduleTableReservesEntryZero(t *testing.T) {
	full := organization.New()
	report := &analysis.Report{Full: full}

	entries, lookup := emit.BuildScheduleTable(report)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Index)
	assert.Equal(t, 0, lookup[""])
}

func TestBuildScheduleTableComputesTicksFromCPUFrequency(t *testing.T) {
	sc := ast.NewScanCode(0x10)
	sc.SetSchedule([]ast.ScheduleParam{{Class: ast.ClassButton, Time: util.Some(ast.Time{Value: 1, Unit: ast.UnitMilliseconds})}})

	m := &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{sc}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x04, "us-ansi")}},
	}

	full := organization.New()
	report := &analysis.Report{Full: full, TriggerIndexReduced: []*ast.Map{m}}

	entries, lookup := emit.BuildScheduleTable(report)
	require.Len(t, entries, 2)
	idx := lookup[sc.Schedule.Kllify()]
	require.NotZero(t, idx)
	require.Len(t, entries[idx].Ticks, 1)
	assert.Equal(t, uint32(48000), entries[idx].Ticks[0])
}

func TestBuildScheduleTableHonorsConfiguredCPUFrequency(t *testing.T) {
	sc := ast.NewScanCode(0x10)
	sc.SetSchedule([]ast.ScheduleParam{{Class: ast.ClassButton, Time: util.Some(ast.Time{Value: 1, Unit: ast.UnitSeconds})}})

	m := &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{sc}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x04, "us-ansi")}},
	}

	full := organization.New()
	full.Variables.Add(&ast.Assignment{Name: "CPU_Frequency", Values: []string{"1000000"}})
	report := &analysis.Report{Full: full, TriggerIndexReduced: []*ast.Map{m}}

	entries, lookup := emit.BuildScheduleTable(report)
	idx := lookup[sc.Schedule.Kllify()]
	require.NotZero(t, idx)
	assert.Equal(t, uint32(1_000_000), entries[idx].Ticks[0])
}
