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

// TestEncodeTriggerComboSwitch1ScanCode exercises spec.md section 8 scenario
// 1: a bare scan-code trigger with no schedule encodes as a leading
// combo-length byte followed by <TriggerTypeSwitch1>,0,<uid>.
func TestEncodeTriggerComboSwitch1ScanCode(t *testing.T) {
	combo := ast.Combo{ast.NewScanCode(0x10)}

	out, err := emit.EncodeTriggerCombo(combo, map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, byte(emit.TriggerTypeSwitch1), 0, 0x10}, out)
}

func TestEncodeTriggerComboRejectsUnencodableIdentifier(t *testing.T) {
	combo := ast.Combo{&ast.CapabilityRef{Name: "usbKeyOut"}}

	_, err := emit.EncodeTriggerCombo(combo, map[string]int{})
	assert.Error(t, err)
}

// TestEncodeResultComboUsbKeyOut exercises spec.md section 8 scenario 1:
// `U"A":U"B"` should encode the result side as a leading combo-length byte,
// a single usbKeyOut capability call, then the release pseudo-member.
func TestEncodeResultComboUsbKeyOut(t *testing.T) {
	full := organization.New()
	full.Capabilities.Add(&ast.NameAssociation{
		Name:       "usbKeyOut",
		Capability: &ast.CapabilityDef{Name: "usbKeyOut", Args: []ast.CapArgID{{Name: "key", Width: 1}}},
	})
	report := &analysis.Report{Full: full}

	entries := emit.BuildCapabilityTable(report)
	capIndex := emit.IndexByName(entries)

	combo := ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x05, "us-ansi")}

	out, err := emit.EncodeResultCombo(combo, capIndex, report, map[string]int{})
	require.NoError(t, err)

	want := []byte{1, byte(capIndex["usbKeyOut"]), 0, 0x05, 0x00}
	assert.Equal(t, want, out)
}

func TestEncodeResultComboMissingCapabilityErrors(t *testing.T) {
	report := &analysis.Report{Full: organization.New()}

	combo := ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x05, "us-ansi")}

	_, err := emit.EncodeResultCombo(combo, map[string]int{}, report, map[string]int{})
	assert.Error(t, err)
}

func TestEncodeResultComboNoneOutHasNoArgs(t *testing.T) {
	full := organization.New()
	full.Capabilities.Add(&ast.NameAssociation{Name: "noneOut", Capability: &ast.CapabilityDef{Name: "noneOut"}})
	report := &analysis.Report{Full: full}

	capIndex := emit.IndexByName(emit.BuildCapabilityTable(report))

	out, err := emit.EncodeResultCombo(ast.Combo{ast.None{}}, capIndex, report, map[string]int{})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, byte(capIndex["noneOut"]), 0, 0x00}, out)
}
