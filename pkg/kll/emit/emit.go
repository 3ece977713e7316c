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

// Package emit implements the CodeGeneration pipeline stage (spec.md section
// 4.3 stage 10, detailed in section 4.5): converting an analysis.Report into
// firmware C tables plus a JSON report (the "kiibohd" backend), or a
// canonicalized .kll round-trip (the "kll" backend). It is grounded on the
// teacher's own serialize-an-analyzed-model-plus-report pattern
// (pkg/cmd/binfile.go writes a gob-encoded schema plus metadata); template
// interpolation is implemented with the standard library's text/template,
// the idiomatic choice spec.md section 4.5's "<|TAG|>" substitution style
// implies and which nothing in the pack overrides.
package emit

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/log"
)

// requiredCapabilities is the fixed list spec.md section 4.5 requires be
// present in the capability table before emission can proceed, with the
// documented exception for animation-related entries in a context that
// genuinely defines no animations.
var requiredCapabilities = []string{
	"usbKeyOut", "sysCtrlOut", "consCtrlOut", "noneOut",
	"animationIndex", "layerShift", "layerLatch", "layerLock",
}

var animationExemptCapabilities = map[string]bool{
	"animationIndex": true,
}

// errorSink accumulates emission errors so a single run can surface many
// problems instead of aborting at the first one, per spec.md section 4.5's
// "Failure semantics": "[the emitter] accumulates errors ... and reports
// them as it goes; the final check() returns failure iff any error was
// recorded."
type errorSink struct {
	errs []error
}

func (s *errorSink) add(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	s.errs = append(s.errs, err)
	log.Error(err.Error())
}

func (s *errorSink) check() error {
	if len(s.errs) == 0 {
		return nil
	}

	return fmt.Errorf("%d emission error(s), first: %w", len(s.errs), s.errs[0])
}

// checkRequiredCapabilities validates spec.md section 4.5's fixed
// required-capability list against the report's capability table, recording
// a failure into sink for anything missing that isn't exempted because this
// report has no animations at all.
func checkRequiredCapabilities(report *analysis.Report, caps []CapabilityEntry, sink *errorSink) {
	present := make(map[string]bool, len(caps))
	for _, c := range caps {
		present[c.FuncName] = true
	}

	hasAnimations := len(report.AnimationSettings) > 0

	for _, name := range requiredCapabilities {
		if present[name] {
			continue
		}

		if !hasAnimations && animationExemptCapabilities[name] {
			continue
		}

		sink.add("required capability %q is missing", name)
	}
}
