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
)

func TestBuildGammaTableEndpointsAreFixed(t *testing.T) {
	full := organization.New()
	report := &analysis.Report{Full: full}

	table := emit.BuildGammaTable(report)
	assert.Equal(t, uint8(0), table[0])
	assert.Equal(t, uint8(255), table[255])
}

func TestBuildGammaTableHonorsConfiguredGamma(t *testing.T) {
	full := organization.New()
	full.Variables.Add(&ast.Assignment{Name: "LEDGamma", Values: []string{"1.0"}})
	report := &analysis.Report{Full: full}

	table := emit.BuildGammaTable(report)
	assert.Equal(t, uint8(128), table[128])
}

func TestBuildGammaTableFallsBackOnInvalidValue(t *testing.T) {
	full := organization.New()
	full.Variables.Add(&ast.Assignment{Name: "LEDGamma", Values: []string{"not-a-number"}})
	report := &analysis.Report{Full: full}

	table := emit.BuildGammaTable(report)
	assert.NotEqual(t, uint8(128), table[128])
}
