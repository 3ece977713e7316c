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

func TestEmitKiibohdFailsWithoutRequiredCapabilities(t *testing.T) {
	report := &analysis.Report{Full: organization.New()}

	err := emit.EmitKiibohd(report, emit.KiibohdOptions{Output: t.TempDir()})
	assert.Error(t, err)
}

func TestEmitKiibohdWritesAllFourTemplateOutputs(t *testing.T) {
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
		Layers:              []*analysis.LayerResult{{Index: 0, Mappings: []*ast.Map{m}, MaxScanCode: 0x10}},
	}

	dir := t.TempDir()
	require.NoError(t, emit.EmitKiibohd(report, emit.KiibohdOptions{Output: dir}))

	for _, name := range []string{"kll_defs.h", "generatedKeymap.h", "usb_hid.h", "generatedPixelmap.c"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestEmitKiibohdPrefersOverrideTemplate(t *testing.T) {
	report := &analysis.Report{Full: fullCapabilitySet()}

	tmplDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "kll_defs.h.tmpl"), []byte("CAPS=<|CapabilitiesNum|>\n"), 0o644))

	outDir := t.TempDir()
	require.NoError(t, emit.EmitKiibohd(report, emit.KiibohdOptions{Template: tmplDir, Output: outDir}))

	data, err := os.ReadFile(filepath.Join(outDir, "kll_defs.h"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "CAPS=7")
}
