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

func TestStoreAddMaterializeLastWriteWins(t *testing.T) {
	s := organization.NewStore()

	s.Add(&ast.Assignment{Name: "x", Values: []string{"1"}})
	s.Add(&ast.Assignment{Name: "x", Values: []string{"2"}})

	m := s.Materialize()
	require.Contains(t, m, "=x")
	assign, ok := m["=x"].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, []string{"2"}, assign.Values)
}

func TestStoreMergeConcatenatesLog(t *testing.T) {
	a := organization.NewStore()
	a.Add(&ast.Assignment{Name: "x", Values: []string{"1"}})

	b := organization.NewStore()
	b.Add(&ast.Assignment{Name: "y", Values: []string{"2"}})

	a.Merge(b)

	m := a.Materialize()
	assert.Len(t, m, 2)
	assert.Contains(t, m, "=x")
	assert.Contains(t, m, "=y")
}

func scanCodeCombo(uid uint16) ast.Combo {
	return ast.Combo{ast.NewScanCode(uid)}
}

func hidCombo(uid uint16) ast.Combo {
	return ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, uid, "us-ansi")}
}

func simpleMap(op ast.MapOperator, trigger, result ast.Combo) *ast.Map {
	return &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: op,
		Triggers: ast.Sequence{trigger},
		Results:  ast.Sequence{result},
	}
}

func TestMappingStoreOperatorOrdering(t *testing.T) {
	s := organization.NewMappingStore()

	trig := scanCodeCombo(0x10)

	replaceMap := simpleMap(ast.OpReplace, trig, hidCombo(0x04))
	s.Add(replaceMap)

	appendMap := simpleMap(ast.OpAppend, trig, hidCombo(0x05))
	s.Add(appendMap)

	materialized := s.Materialize()
	slot, ok := materialized["S0x10"]
	require.True(t, ok)
	require.Len(t, slot, 2)
	assert.Equal(t, "U0x04", slot[0].ResultStr())
	assert.Equal(t, "U0x05", slot[1].ResultStr())
}

func TestMappingStoreRemoveDropsEarlierReplace(t *testing.T) {
	s := organization.NewMappingStore()

	trig := scanCodeCombo(0x10)

	s.Add(simpleMap(ast.OpReplace, trig, hidCombo(0x04)))
	s.Add(simpleMap(ast.OpRemove, trig, hidCombo(0x04)))

	materialized := s.Materialize()

	slot := materialized["S0x10"]
	assert.Empty(t, slot)
}
