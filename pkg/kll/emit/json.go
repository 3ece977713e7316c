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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiibohd/kll/pkg/kll/analysis"
)

type jsonCapability struct {
	FuncName      string `json:"funcName"`
	TotalArgBytes uint   `json:"totalArgBytes"`
	FeatureBits   uint8  `json:"featureBits"`
	Index         int    `json:"index"`
}

type jsonSchedule struct {
	Index int      `json:"index"`
	Text  string   `json:"text"`
	Ticks []uint32 `json:"ticks,omitempty"`
}

type jsonLayer struct {
	Index        int      `json:"index"`
	MinScanCode  uint16   `json:"minScanCode"`
	MaxScanCode  uint16   `json:"maxScanCode"`
	Mappings     []string `json:"mappings"`
	TriggerLists [][]int  `json:"triggerLists"`
}

type jsonAnimationSetting struct {
	Name      string `json:"name"`
	Modifiers string `json:"modifiers"`
}

type jsonReport struct {
	Capabilities      []jsonCapability       `json:"capabilities"`
	Schedules         []jsonSchedule         `json:"schedules"`
	Triggers          []string               `json:"triggerIndexReduced"`
	Results           []string               `json:"resultIndex"`
	Layers            []jsonLayer            `json:"layers"`
	RotationMap       map[string]int         `json:"rotationMap"`
	PixelGrid         *analysis.PixelGrid    `json:"pixelGrid,omitempty"`
	AnimationSettings []jsonAnimationSetting `json:"animationSettings"`
}

// EmitJSON implements spec.md section 4.5's JSON report backend: a plain,
// stringified dump of every analysis.Report table, suitable for tooling that
// doesn't want to re-link the ast/analysis packages.
func EmitJSON(report *analysis.Report, path string) error {
	caps := BuildCapabilityTable(report)
	schedules, _ := BuildScheduleTable(report)

	sink := &errorSink{}
	checkRequiredCapabilities(report, caps, sink)

	if err := sink.check(); err != nil {
		return err
	}

	doc := jsonReport{
		Capabilities: make([]jsonCapability, 0, len(caps)),
		Schedules:    make([]jsonSchedule, 0, len(schedules)),
		RotationMap:  make(map[string]int, len(report.RotationMap)),
	}

	for _, c := range caps {
		doc.Capabilities = append(doc.Capabilities, jsonCapability{c.FuncName, c.TotalArgBytes, c.FeatureBits, c.Index})
	}

	for _, s := range schedules {
		text := ""
		if len(s.Params) > 0 {
			text = fmt.Sprintf("%v", s.Params)
		}

		doc.Schedules = append(doc.Schedules, jsonSchedule{Index: s.Index, Text: text, Ticks: s.Ticks})
	}

	for _, m := range report.TriggerIndexReduced {
		doc.Triggers = append(doc.Triggers, m.TriggerStr())
	}

	for _, m := range report.ResultIndex {
		doc.Results = append(doc.Results, m.ResultStr())
	}

	for _, l := range report.Layers {
		jl := jsonLayer{Index: l.Index, MinScanCode: l.MinScanCode, MaxScanCode: l.MaxScanCode, TriggerLists: l.TriggerLists}
		for _, m := range l.Mappings {
			jl.Mappings = append(jl.Mappings, m.Kllify())
		}

		doc.Layers = append(doc.Layers, jl)
	}

	for uid, idx := range report.RotationMap {
		doc.RotationMap[fmt.Sprintf("%d", uid)] = idx
	}

	doc.PixelGrid = report.PixelGrid

	for _, a := range report.AnimationSettings {
		doc.AnimationSettings = append(doc.AnimationSettings, jsonAnimationSetting{Name: a.Name, Modifiers: a.Modifiers.Kllify()})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}
