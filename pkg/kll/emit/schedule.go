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
	"strconv"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
)

// ScheduleEntry is one row of spec.md section 4.5's global schedule table:
// a resolved CPU-tick count per Time param, alongside the original params.
type ScheduleEntry struct {
	Index  int
	Params []ast.ScheduleParam
	Ticks  []uint32
}

const defaultCPUFrequencyHz = 48_000_000

// BuildScheduleTable implements spec.md section 4.5's schedule table: the
// global sorted set of distinct schedules encountered across the reduced
// trigger index, ordered by their Kllify rendering, with entry zero reserved
// as the "unspecified/generic" schedule. Tick counts are pre-computed from the CPU_Frequency variable
// (defaulting to 48MHz, a common Kiibohd target clock) when a param carries
// a Time qualifier.
func BuildScheduleTable(report *analysis.Report) ([]ScheduleEntry, map[string]int) {
	freq := cpuFrequency(report)

	seen := map[string]int{"": 0}
	entries := []ScheduleEntry{{Index: 0}}

	add := func(s ast.Schedule) {
		key := s.Kllify()
		if _, ok := seen[key]; ok {
			return
		}

		idx := len(entries)
		seen[key] = idx
		entries = append(entries, ScheduleEntry{Index: idx, Params: s.Params, Ticks: ticksFor(s, freq)})
	}

	for _, m := range report.TriggerIndexReduced {
		for _, combo := range m.Triggers {
			for _, id := range combo {
				add(scheduleOf(id))
			}
		}
	}

	rest := entries[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return ast.Schedule{Params: rest[i].Params}.Kllify() < ast.Schedule{Params: rest[j].Params}.Kllify()
	})

	for i := range rest {
		rest[i].Index = i + 1
		seen[ast.Schedule{Params: rest[i].Params}.Kllify()] = i + 1
	}

	return entries, seen
}

func cpuFrequency(report *analysis.Report) float64 {
	data := report.Full.Variables.Materialize()

	assign, ok := data["=CPU_Frequency"].(*ast.Assignment)
	if !ok || len(assign.Values) == 0 {
		return defaultCPUFrequencyHz
	}

	v, err := strconv.ParseFloat(assign.Values[0], 64)
	if err != nil || v <= 0 {
		return defaultCPUFrequencyHz
	}

	return v
}

func ticksFor(s ast.Schedule, freqHz float64) []uint32 {
	ticks := make([]uint32, len(s.Params))

	for i, p := range s.Params {
		if !p.Time.HasValue() {
			continue
		}

		seconds := p.Time.Unwrap().Nanoseconds() / 1e9
		ticks[i] = uint32(seconds * freqHz)
	}

	return ticks
}

// scheduleOf returns the Schedule carried by id, or the zero Schedule for
// identifier kinds that don't carry one.
func scheduleOf(id ast.Identifier) ast.Schedule {
	switch v := id.(type) {
	case *ast.ScanCode:
		return v.Schedule
	case *ast.HIDCode:
		return v.Schedule
	case *ast.Layer:
		return v.Schedule
	case *ast.Animation:
		return v.Modifiers
	case *ast.GenericTrigger:
		return v.Schedule
	case *ast.Pixel:
		return v.Schedule
	default:
		return ast.Schedule{}
	}
}
