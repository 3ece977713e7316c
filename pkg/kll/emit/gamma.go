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
package emit

import (
	"math"
	"strconv"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
)

const defaultLEDGamma = 2.2

// BuildGammaTable implements spec.md section 4.5's gamma-correction table:
// y = 255*(x/255)^gamma, rounded, for x in [0,255], driven by the LEDGamma
// configuration variable (defaulting to 2.2, the common sRGB approximation).
func BuildGammaTable(report *analysis.Report) [256]uint8 {
	gamma := ledGamma(report)

	var table [256]uint8

	for x := 0; x < 256; x++ {
		y := 255.0 * math.Pow(float64(x)/255.0, gamma)
		table[x] = uint8(math.Round(y))
	}

	return table
}

func ledGamma(report *analysis.Report) float64 {
	data := report.Full.Variables.Materialize()

	assign, ok := data["=LEDGamma"].(*ast.Assignment)
	if !ok || len(assign.Values) == 0 {
		return defaultLEDGamma
	}

	v, err := strconv.ParseFloat(assign.Values[0], 64)
	if err != nil || v <= 0 {
		return defaultLEDGamma
	}

	return v
}
