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
	"os"
	"path/filepath"
	"testing"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/emit"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitKLLWritesBaseDefaultAndFinalFiles(t *testing.T) {
	base := organization.New()
	base.Variables.Add(&ast.Assignment{Name: "CPU_Frequency", Values: []string{"48000000"}})

	def := organization.New()

	m := &ast.Map{
		MKind:    ast.MapTriggerCode,
		Operator: ast.OpReplace,
		Triggers: ast.Sequence{ast.Combo{ast.NewScanCode(0x10)}},
		Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x04, "us-ansi")}},
	}

	report := &analysis.Report{
		Base:    base,
		Default: def,
		Layers:  []*analysis.LayerResult{{Index: 0, Mappings: []*ast.Map{m}}},
	}

	dir := t.TempDir()
	err := emit.EmitKLL(report, emit.KLLOptions{Output: dir})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "base.kll"))
	assert.FileExists(t, filepath.Join(dir, "default.kll"))
	assert.FileExists(t, filepath.Join(dir, "final.kll"))

	data, err := os.ReadFile(filepath.Join(dir, "base.kll"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CPU_Frequency = 48000000;")

	final, err := os.ReadFile(filepath.Join(dir, "final.kll"))
	require.NoError(t, err)
	assert.Contains(t, string(final), "S0x10 : U0x04;")
}

func TestEmitKLLWritesOnePartialFilePerNonZeroLayer(t *testing.T) {
	report := &analysis.Report{
		Base:    organization.New(),
		Default: organization.New(),
		Layers: []*analysis.LayerResult{
			{Index: 0},
			{Index: 1, Mappings: []*ast.Map{{
				MKind:    ast.MapTriggerCode,
				Operator: ast.OpReplace,
				Triggers: ast.Sequence{ast.Combo{ast.NewScanCode(0x20)}},
				Results:  ast.Sequence{ast.Combo{ast.NewHIDCode(ast.HIDKeyboard, 0x05, "us-ansi")}},
			}}},
		},
	}

	dir := t.TempDir()
	err := emit.EmitKLL(report, emit.KLLOptions{Output: dir})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "partial-1.kll"))
	assert.NoFileExists(t, filepath.Join(dir, "partial-0.kll"))
}
