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
	"sort"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
)

// CapabilityEntry is one row of spec.md section 4.5's capability table.
type CapabilityEntry struct {
	FuncName      string
	TotalArgBytes uint
	// FeatureBits flags "safe to run outside interrupt"; every capability
	// taking no arguments is treated as safe, matching the firmware
	// convention that argument-free capabilities only toggle state rather
	// than touch a USB buffer.
	FeatureBits uint8
	Index       int
}

const featureSafeOutsideInterrupt uint8 = 1

// BuildCapabilityTable implements spec.md section 4.5's capability table:
// every capability definition surviving in the full layer stack, sorted
// alphabetically by target function name, with the stable sort position
// becoming capability_index.
func BuildCapabilityTable(report *analysis.Report) []CapabilityEntry {
	data := report.Full.Capabilities.Materialize()

	names := make([]string, 0, len(data))
	for key := range data {
		names = append(names, key)
	}

	sort.Strings(names)

	entries := make([]CapabilityEntry, 0, len(names))

	for _, key := range names {
		na, ok := data[key].(*ast.NameAssociation)
		if !ok || na.Capability == nil {
			continue
		}

		feature := uint8(0)
		if len(na.Capability.Args) == 0 {
			feature = featureSafeOutsideInterrupt
		}

		entries = append(entries, CapabilityEntry{
			FuncName:      na.Capability.Name,
			TotalArgBytes: na.Capability.TotalArgWidth(),
			FeatureBits:   feature,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].FuncName < entries[j].FuncName })

	for i := range entries {
		entries[i].Index = i
	}

	return entries
}

// IndexByName returns a funcName->capability_index lookup from the table
// BuildCapabilityTable produced.
func IndexByName(entries []CapabilityEntry) map[string]int {
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.FuncName] = e.Index
	}

	return out
}

// FindDefinition looks up a capability's formal definition by invocation
// name, used at emit time to validate argument-count shape (spec.md section
// 4.5, "Result combo encoding").
func FindDefinition(report *analysis.Report, name string) (*ast.CapabilityDef, bool) {
	data := report.Full.Capabilities.Materialize()

	na, ok := data["=>"+name].(*ast.NameAssociation)
	if !ok || na.Capability == nil {
		return nil, false
	}

	return na.Capability, true
}
