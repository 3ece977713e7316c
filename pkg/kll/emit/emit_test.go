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
	"path/filepath"
	"testing"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/emit"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCapabilitySet() *organization.Organization {
	full := organization.New()
	full.Capabilities.Add(capDef("usbKeyOut", ast.CapArgID{Name: "key", Width: 1}))
	full.Capabilities.Add(capDef("sysCtrlOut", ast.CapArgID{Name: "key", Width: 1}))
	full.Capabilities.Add(capDef("consCtrlOut", ast.CapArgID{Name: "key", Width: 1}))
	full.Capabilities.Add(capDef("noneOut"))
	full.Capabilities.Add(capDef("layerShift", ast.CapArgID{Name: "index", Width: 1}))
	full.Capabilities.Add(capDef("layerLatch", ast.CapArgID{Name: "index", Width: 1}))
	full.Capabilities.Add(capDef("layerLock", ast.CapArgID{Name: "index", Width: 1}))

	return full
}

func TestEmitJSONFailsWhenRequiredCapabilityMissing(t *testing.T) {
	report := &analysis.Report{Full: organization.New()}

	err := emit.EmitJSON(report, filepath.Join(t.TempDir(), "report.json"))
	assert.Error(t, err)
}

func TestEmitJSONExemptsAnimationIndexWithoutAnimations(t *testing.T) {
	report := &analysis.Report{Full: fullCapabilitySet()}

	path := filepath.Join(t.TempDir(), "report.json")
	err := emit.EmitJSON(report, path)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
