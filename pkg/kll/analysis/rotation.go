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
package analysis

import "github.com/kiibohd/kll/pkg/kll/ast"

// buildRotationMap implements spec.md section 4.4's rotation-range
// discovery: for every GenericTrigger{idcode:21 (Rotation1), uid:U}(state:S)
// found amongst the surviving mappings, track the maximum S seen for that
// U, telling the firmware where each rotary encoder wraps (spec.md section 8
// scenario 5).
func buildRotationMap(mappings []*ast.Map) map[uint16]int {
	rotation := make(map[uint16]int)

	for _, m := range mappings {
		for _, combo := range m.Triggers {
			for _, id := range combo {
				gt, ok := id.(*ast.GenericTrigger)
				if !ok || gt.IDCode != ast.GenericRotation1 {
					continue
				}

				state, ok := rotationState(gt)
				if !ok {
					continue
				}

				if state > rotation[gt.UID] {
					rotation[gt.UID] = state
				}
			}
		}
	}

	return rotation
}

func rotationState(gt *ast.GenericTrigger) (int, bool) {
	for _, p := range gt.Schedule.Params {
		if p.IndexState.HasValue() {
			return p.IndexState.Unwrap(), true
		}
	}

	return 0, false
}
