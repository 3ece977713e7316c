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
package context

import (
	"regexp"
	"sort"
	"strconv"
)

var (
	connectIDPattern  = regexp.MustCompile(`ConnectId\s*=\s*(\d+)`)
	scanCodeOffset    = regexp.MustCompile(`ScanCodeOffset\s*=\s*(\d+)`)
	scanCodePattern   = regexp.MustCompile(`S(0[xX][0-9a-fA-F]+|\d+)`)
)

// OffsetTable maps a connect id to its cumulative scan-code offset, computed
// by Preprocess's second pass.
type OffsetTable map[int]uint16

// Preprocess implements spec.md section 4.3 stage 3's two-pass connect-id
// discovery: the first pass reads each context's raw source for ConnectId
// and ScanCodeOffset directives and every S<code> occurrence to learn the
// per-id maximum scan code; the second pass computes the cumulative offset
// table `offset[i] = sum(max_scan_code[0..i])` used by
// ast.Map.AddTriggerUIDOffset during analysis.
func Preprocess(contexts []*Context) OffsetTable {
	maxScanCode := make(map[int]uint16)
	explicitOffset := make(map[int]uint16)

	for _, c := range contexts {
		text := string(c.File.Contents())

		connectID := 0
		if m := connectIDPattern.FindStringSubmatch(text); m != nil {
			connectID, _ = strconv.Atoi(m[1])
		}

		c.ConnectID = connectID

		if m := scanCodeOffset.FindStringSubmatch(text); m != nil {
			v, _ := strconv.Atoi(m[1])
			explicitOffset[connectID] = uint16(v)
		}

		for _, m := range scanCodePattern.FindAllStringSubmatch(text, -1) {
			v := parseScanCodeLiteral(m[1])
			if v > maxScanCode[connectID] {
				maxScanCode[connectID] = v
			}
		}
	}

	ids := make([]int, 0, len(maxScanCode))
	for id := range maxScanCode {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	offsets := make(OffsetTable)

	var cumulative uint16

	for _, id := range ids {
		if explicit, ok := explicitOffset[id]; ok {
			offsets[id] = explicit
		} else {
			offsets[id] = cumulative
		}

		cumulative += maxScanCode[id]
	}

	return offsets
}

func parseScanCodeLiteral(s string) uint16 {
	if len(s) > 1 && (s[0:2] == "0x" || s[0:2] == "0X") {
		v, _ := strconv.ParseUint(s[2:], 16, 16)
		return uint16(v)
	}

	v, _ := strconv.ParseUint(s, 10, 16)

	return uint16(v)
}
