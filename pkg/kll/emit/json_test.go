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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/emit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitJSONRoundTripsTriggerAndResultIndexes(t *testing.T) {
	m := &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{ast.NewScanCode(0x10)}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x04, "us-ansi")}},
	}

	report := &analysis.Report{
		Full:                fullCapabilitySet(),
		TriggerIndexReduced: []*ast.Map{m},
		ResultIndex:         []*ast.Map{m},
		Layers:              []*analysis.LayerResult{{Index: 0, Mappings: []*ast.Map{m}, TriggerLists: [][]int{{0}}}},
		RotationMap:         map[uint16]int{0: 3},
	}

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, emit.EmitJSON(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	triggers, ok := decoded["triggerIndexReduced"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"S0x10"}, triggers)

	rotation, ok := decoded["rotationMap"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), rotation["0"])
}
