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
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
)

//go:embed templates/kiibohd/kll_defs.h.tmpl
var defaultKLLDefsTemplate string

//go:embed templates/kiibohd/generatedKeymap.h.tmpl
var defaultKeymapTemplate string

//go:embed templates/kiibohd/usb_hid.h.tmpl
var defaultUSBHIDTemplate string

//go:embed templates/kiibohd/generatedPixelmap.c.tmpl
var defaultPixelmapTemplate string

// kiibohdFile pairs a generated output filename with the embedded default
// template that produces it, so overriding one file via KiibohdOptions.
// Template doesn't require supplying all four.
type kiibohdFile struct {
	name    string
	tmplSrc string
}

var kiibohdFiles = []kiibohdFile{
	{"kll_defs.h", defaultKLLDefsTemplate},
	{"generatedKeymap.h", defaultKeymapTemplate},
	{"usb_hid.h", defaultUSBHIDTemplate},
	{"generatedPixelmap.c", defaultPixelmapTemplate},
}

// kiibohdData is the template execution context for every kiibohd backend
// file, per spec.md section 4.5's firmware emission tables. The five scalar
// counts are also reachable as bare tags (<|CapabilitiesNum|>) through the
// template function map EmitKiibohd installs.
type kiibohdData struct {
	CapabilitiesNum int
	ResultMacroNum  int
	TriggerMacroNum int
	MaxScanCode     uint16
	LayerNum        int
	Capabilities    []CapabilityEntry
	Layers          []*analysis.LayerResult
	PixelGrid       *analysis.PixelGrid
	GammaTable      [256]uint8
	TriggerGuides   []comboGuide
	ResultGuides    []comboGuide
}

// comboGuide is one row of the TriggerGuide/ResultGuide tables: the encoded
// byte stream for a single entry in TriggerIndexReduced/ResultIndex,
// rendered as a C initializer list.
type comboGuide struct {
	Index    int
	HexBytes string
}

// EmitKiibohd implements spec.md section 4.5's firmware backend: it builds
// the capability, schedule and combo tables, validates the required
// capability list, then interpolates the <|TAG|>-delimited templates (the
// firmware's own convention) into opts.Output.
func EmitKiibohd(report *analysis.Report, opts KiibohdOptions) error {
	caps := BuildCapabilityTable(report)

	sink := &errorSink{}
	checkRequiredCapabilities(report, caps, sink)

	if v, ok := report.Full.Variables.Materialize()["=stateWordSize"].(*ast.Assignment); ok && len(v.Values) > 0 {
		if bits, err := strconv.Atoi(v.Values[0]); err == nil && bits >= 0 && bits < 63 && len(report.TriggerIndex) > 1<<bits {
			sink.add("trigger index has %d entries, more than stateWordSize %d allows", len(report.TriggerIndex), bits)
		}
	}

	triggerGuides, resultGuides := buildComboGuides(report, caps, sink)

	if err := sink.check(); err != nil {
		return err
	}

	var maxSC uint16
	for _, l := range report.Layers {
		if l.MaxScanCode > maxSC {
			maxSC = l.MaxScanCode
		}
	}

	data := kiibohdData{
		CapabilitiesNum: len(caps),
		ResultMacroNum:  len(report.ResultIndex),
		TriggerMacroNum: len(report.TriggerIndexReduced),
		MaxScanCode:     maxSC,
		LayerNum:        len(report.Layers),
		Capabilities:    caps,
		Layers:          report.Layers,
		PixelGrid:       report.PixelGrid,
		GammaTable:      BuildGammaTable(report),
		TriggerGuides:   triggerGuides,
		ResultGuides:    resultGuides,
	}

	dir := outputDir(opts.Output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	funcs := template.FuncMap{
		"CapabilitiesNum": func() int { return data.CapabilitiesNum },
		"ResultMacroNum":  func() int { return data.ResultMacroNum },
		"TriggerMacroNum": func() int { return data.TriggerMacroNum },
		"MaxScanCode":     func() uint16 { return data.MaxScanCode },
		"LayerNum":        func() int { return data.LayerNum },
	}

	for _, f := range kiibohdFiles {
		src, err := loadTemplateSource(opts.Template, f.name, f.tmplSrc)
		if err != nil {
			return err
		}

		tmpl, err := template.New(f.name).Delims("<|", "|>").Funcs(funcs).Parse(src)
		if err != nil {
			return err
		}

		out, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			return err
		}

		err = tmpl.Execute(out, data)
		closeErr := out.Close()

		if err != nil {
			return err
		}

		if closeErr != nil {
			return closeErr
		}
	}

	return nil
}

// loadTemplateSource prefers an override file named templateDir/name, falling
// back to the embedded default when no override directory is configured or
// the specific file isn't present there.
func loadTemplateSource(templateDir, name, fallback string) (string, error) {
	if templateDir == "" {
		return fallback, nil
	}

	path := filepath.Join(templateDir, name+".tmpl")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fallback, nil
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

// buildComboGuides encodes every trigger/result macro's combo sequence into
// the TriggerGuide/ResultGuide byte tables spec.md section 4.5 describes:
// one row per entry in TriggerIndexReduced/ResultIndex, each row the
// concatenation of its (self-length-prefixed) combos in source order.
// Malformed capability argument counts or out-of-range trigger uids are
// recorded into sink rather than surfacing as template-execution panics.
func buildComboGuides(report *analysis.Report, caps []CapabilityEntry, sink *errorSink) ([]comboGuide, []comboGuide) {
	capIndex := IndexByName(caps)
	_, scheduleLookup := BuildScheduleTable(report)

	triggerGuides := make([]comboGuide, len(report.TriggerIndexReduced))

	for i, m := range report.TriggerIndexReduced {
		var bytes []byte

		for _, combo := range m.Triggers {
			b, err := EncodeTriggerCombo(combo, scheduleLookup)
			if err != nil {
				sink.add("%s", err)
				continue
			}

			bytes = append(bytes, b...)
		}

		triggerGuides[i] = comboGuide{Index: i, HexBytes: hexBytes(bytes)}
	}

	resultGuides := make([]comboGuide, len(report.ResultIndex))

	for i, m := range report.ResultIndex {
		var bytes []byte

		for _, combo := range m.Results {
			b, err := EncodeResultCombo(combo, capIndex, report, scheduleLookup)
			if err != nil {
				sink.add("%s", err)
				continue
			}

			bytes = append(bytes, b...)
		}

		resultGuides[i] = comboGuide{Index: i, HexBytes: hexBytes(bytes)}
	}

	return triggerGuides, resultGuides
}

// hexBytes renders bs as a comma-separated C initializer list, e.g.
// "0x01, 0x00, 0x10".
func hexBytes(bs []byte) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = fmt.Sprintf("0x%02X", b)
	}

	return strings.Join(parts, ", ")
}
