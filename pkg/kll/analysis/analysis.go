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

// Package analysis implements the DataAnalysis pipeline stage (spec.md
// section 4.3 stage 9, detailed in section 4.4): reduction (USB->ScanCode
// rewrite, lazy '::' resolution), index assignment, per-layer trigger-list
// synthesis, rotation-range discovery, pixel display-grid packing, and
// animation-settings reconciliation. It is grounded on the teacher's
// translator/allocator pass (pkg/corset/compiler/translator.go,
// pkg/ir/builder/parallel.go): walk a resolved intermediate form once and
// allocate indices/positions into plain, map-keyed tables rather than
// mutating the analyzed objects in place.
package analysis

import (
	"sort"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/context"
	"github.com/kiibohd/kll/pkg/kll/organization"
)

// Input is the set of merged, finalized organizations DataFinalization
// (spec.md section 4.3 stage 8) hands to DataAnalysis.
type Input struct {
	Base     *organization.Organization
	Default  *organization.Organization
	Partials map[int]*organization.Organization
	Full     *organization.Organization
	Offsets  context.OffsetTable
}

// LayerResult is the analyzed, reduced form of one layer: layer 0 is the
// default map, layer N>0 is partial map N.
type LayerResult struct {
	Index        int
	Mappings     []*ast.Map
	MinScanCode  uint16
	MaxScanCode  uint16
	TriggerLists [][]int
}

// Report is the complete output of DataAnalysis, consumed by the emitter.
type Report struct {
	Base    *organization.Organization
	Default *organization.Organization
	Full    *organization.Organization
	Layers  []*LayerResult

	TriggerIndex        []*ast.Map
	TriggerIndexReduced []*ast.Map
	ResultIndex         []*ast.Map

	TriggerIndexLookup map[string]int
	TriggerStrLookup   map[string]int
	ResultStrLookup    map[string]int

	RotationMap map[uint16]int

	PixelGrid *PixelGrid

	AnimationSettings []AnimationSetting
	AnimationUIDs     map[string]uint16
}

// Analyze runs every sub-pass of spec.md section 4.4 over in and assembles
// the Report the emitter needs.
func Analyze(in Input) (*Report, error) {
	layerOrgs := map[int]*organization.Organization{0: in.Default}
	for i, p := range in.Partials {
		layerOrgs[i] = p
	}

	layerNums := sortedIntKeys(layerOrgs)

	reduced := make(map[int][]*ast.Map, len(layerNums))
	for _, n := range layerNums {
		reduced[n] = offsetLayer(reduceLayer(layerOrgs[n]), in.Offsets)
	}

	animUIDs := assignAnimationUIDs(in.Base, in.Default, in.Partials, reduced)
	for _, n := range layerNums {
		for _, m := range reduced[n] {
			fillAnimationUIDs(m, animUIDs)
		}
	}

	var allSurviving []*ast.Map
	for _, n := range layerNums {
		allSurviving = append(allSurviving, reduced[n]...)
	}

	triggerIndex, triggerIndexLookup := dedupeBy(allSurviving, func(m *ast.Map) string { return m.Kllify() })
	triggerIndexReduced, triggerStrLookup := dedupeBy(triggerIndex, func(m *ast.Map) string { return m.TriggerStr() })
	resultIndex, resultStrLookup := dedupeBy(triggerIndex, func(m *ast.Map) string { return m.ResultStr() })

	layers := make([]*LayerResult, 0, len(layerNums))
	for _, n := range layerNums {
		layers = append(layers, buildLayerResult(n, reduced[n], triggerStrLookup))
	}

	grid, err := buildPixelGrid(in.Full)
	if err != nil {
		return nil, err
	}

	animSettings := reconcileAnimationSettings(in.Full, allSurviving)

	return &Report{
		Base:                in.Base,
		Default:             in.Default,
		Full:                in.Full,
		Layers:              layers,
		TriggerIndex:        triggerIndex,
		TriggerIndexReduced: triggerIndexReduced,
		ResultIndex:         resultIndex,
		TriggerIndexLookup:  triggerIndexLookup,
		TriggerStrLookup:    triggerStrLookup,
		ResultStrLookup:     resultStrLookup,
		RotationMap:         buildRotationMap(allSurviving),
		PixelGrid:           grid,
		AnimationSettings:   animSettings,
		AnimationUIDs:       animUIDs,
	}, nil
}

func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Ints(keys)

	return keys
}

// offsetLayer applies the connect-id scan-code offset (spec.md section 4.4,
// "compute the connect-id-adjusted trigger uid") to every surviving mapping
// in a layer.
func offsetLayer(mappings []*ast.Map, offsets context.OffsetTable) []*ast.Map {
	out := make([]*ast.Map, len(mappings))

	for i, m := range mappings {
		out[i] = m.AddTriggerUIDOffset(offsets[int(m.ConnectID)])
	}

	return out
}

// dedupeBy deduplicates mappings on key(m), keeping the first occurrence and
// its arrival-order position, and returns a key->index lookup alongside the
// deduplicated slice.
func dedupeBy(mappings []*ast.Map, key func(*ast.Map) string) ([]*ast.Map, map[string]int) {
	seen := make(map[string]int)

	var out []*ast.Map

	for _, m := range mappings {
		k := key(m)
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = len(out)
		out = append(out, m)
	}

	return out, seen
}

// buildLayerResult allocates the per-layer trigger lists of spec.md section
// 4.4: an array of length max_scan_code+1, where slot[uid] lists positions
// into trigger_index_reduced for every expression whose trigger touches that
// scan code.
func buildLayerResult(index int, mappings []*ast.Map, triggerStrLookup map[string]int) *LayerResult {
	var minSC, maxSC uint16

	first := true

	for _, m := range mappings {
		for _, combo := range m.Triggers {
			for _, id := range combo {
				sc, ok := id.(*ast.ScanCode)
				if !ok {
					continue
				}

				uid := sc.GetUID()
				if first || uid < minSC {
					minSC = uid
				}

				if first || uid > maxSC {
					maxSC = uid
				}

				first = false
			}
		}
	}

	lists := make([][]int, int(maxSC)+1)

	for _, m := range mappings {
		idx, ok := triggerStrLookup[m.TriggerStr()]
		if !ok {
			continue
		}

		for _, combo := range m.Triggers {
			for _, id := range combo {
				uid := triggerListSlot(id)
				if uid < 0 || uid >= len(lists) {
					continue
				}

				if !containsInt(lists[uid], idx) {
					lists[uid] = append(lists[uid], idx)
				}
			}
		}
	}

	return &LayerResult{
		Index:        index,
		Mappings:     mappings,
		MinScanCode:  minSC,
		MaxScanCode:  maxSC,
		TriggerLists: lists,
	}
}

// triggerListSlot returns the scan-code slot id occupies within a layer's
// per-scan-code trigger list, or -1 if id is not a ScanCode (the array is
// bounded to max_scan_code+1, per spec.md section 4.4; non-scan-code
// triggers such as Animation/Layer/GenericTrigger reach the firmware through
// their own type-bucketed trigger combo encoding instead, spec.md section
// 4.5).
func triggerListSlot(id ast.Identifier) int {
	if sc, ok := id.(*ast.ScanCode); ok {
		return int(sc.GetUID())
	}

	return -1
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}

	return false
}
