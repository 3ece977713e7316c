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
package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kiibohd/kll/pkg/kll/compiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func capabilityDefs() string {
	return `
usbKeyOut => usbKeyOut_capability(key:1);
sysCtrlOut => usbKeyOut_capability(key:1);
consCtrlOut => usbKeyOut_capability(key:1);
noneOut => usbKeyOut_capability();
animationIndex => usbKeyOut_capability(key:1);
layerShift => usbKeyOut_capability(key:1);
layerLatch => usbKeyOut_capability(key:1);
layerLock => usbKeyOut_capability(key:1);
`
}

func TestControllerRunCompletesAllTenStagesWithNoneEmitter(t *testing.T) {
	dir := t.TempDir()
	base := writeFixture(t, dir, "base.kll", capabilityDefs())
	def := writeFixture(t, dir, "default.kll", `S0x10 : U"A";`+"\n")

	ctrl := compiler.New(compiler.Config{
		BaseFiles:    []string{base},
		DefaultFiles: []string{def},
		Emitter:      "none",
		Jobs:         1,
	})

	err := ctrl.Run()
	require.NoError(t, err)

	for _, stage := range []string{
		"CompilerConfiguration", "FileImport", "Preprocessor",
		"OperationClassification", "OperationSpecifics", "OperationOrganization",
		"DataOrganization", "DataFinalization", "DataAnalysis", "CodeGeneration",
	} {
		assert.Equal(t, compiler.StageCompleted, ctrl.StageStatus(stage), "stage %s", stage)
	}

	report := ctrl.Report()
	require.NotNil(t, report)
	require.Len(t, report.Layers, 1)
	assert.Equal(t, "S0x10", report.Layers[0].Mappings[0].TriggerStr())
}

func TestControllerRunWithKLLEmitterWritesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	base := writeFixture(t, dir, "base.kll", capabilityDefs())
	def := writeFixture(t, dir, "default.kll", `S0x10 : U"A";`+"\n")

	outDir := filepath.Join(dir, "out")

	ctrl := compiler.New(compiler.Config{
		BaseFiles:    []string{base},
		DefaultFiles: []string{def},
		Emitter:      "kll",
		KLLOutput:    outDir,
		Jobs:         1,
	})

	require.NoError(t, ctrl.Run())
	assert.FileExists(t, filepath.Join(outDir, "final.kll"))
}

func TestControllerRunAbortsOnParseError(t *testing.T) {
	dir := t.TempDir()
	def := writeFixture(t, dir, "default.kll", `S0x10 : U"@";`+"\n")

	ctrl := compiler.New(compiler.Config{
		DefaultFiles: []string{def},
		Emitter:      "none",
		Jobs:         1,
	})

	err := ctrl.Run()
	assert.Error(t, err)
	assert.Equal(t, compiler.StageIncomplete, ctrl.StageStatus("OperationSpecifics"))
	assert.Equal(t, compiler.StageQueued, ctrl.StageStatus("OperationOrganization"))
}

func TestControllerRunMirrorsImportedFilesToScratchDir(t *testing.T) {
	dir := t.TempDir()
	base := writeFixture(t, dir, "base.kll", capabilityDefs())
	def := writeFixture(t, dir, "default.kll", `S0x10 : U"A";`+"\n")

	scratchDir := filepath.Join(dir, "scratch")

	ctrl := compiler.New(compiler.Config{
		BaseFiles:    []string{base},
		DefaultFiles: []string{def},
		Emitter:      "none",
		Jobs:         1,
		ScratchDir:   scratchDir,
	})

	require.NoError(t, ctrl.Run())

	entries, err := os.ReadDir(scratchDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestControllerRunRejectsUnknownEmitter(t *testing.T) {
	ctrl := compiler.New(compiler.Config{Emitter: "bogus"})

	err := ctrl.Run()
	assert.Error(t, err)
	assert.Equal(t, compiler.StageIncomplete, ctrl.StageStatus("CompilerConfiguration"))
}
