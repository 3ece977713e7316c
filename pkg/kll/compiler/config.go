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

// Package compiler wires the lexer, parser and organization packages into the
// ten-stage pipeline of spec.md section 4.3. It is grounded on the teacher's
// own top-level compiler driver (pkg/corset/compiler/compiler.go), which
// likewise threads a fixed sequence of named stages through a shared pool and
// aborts at the first stage that does not complete cleanly.
package compiler

// Config captures every compiler flag from spec.md section 6 that influences
// how the pipeline is run, as opposed to what the emitter writes out (that
// lives on Emitter-specific options passed to pkg/kll/emit).
type Config struct {
	// ConfigFiles, BaseFiles and DefaultFiles collect the --config, --base
	// and --default positional arguments, in command-line order.
	ConfigFiles  []string
	BaseFiles    []string
	DefaultFiles []string
	// PartialFiles holds one slice per --partial occurrence: files named
	// within one occurrence share a layer index, and layer indices are
	// assigned by occurrence order.
	PartialFiles [][]string
	// GenericFiles collects bare positional source paths (role Generic).
	GenericFiles []string

	// Emitter selects which backend CodeGeneration delegates to: "kiibohd",
	// "kll" or "none".
	Emitter string

	// Jobs is the requested concurrency; see pool.New for its zero-value
	// default and the parser-debug override.
	Jobs int

	// ParserDebug enables the non-thread-safe parser trace, forcing Jobs to
	// 1 regardless of the value above (spec.md section 5).
	ParserDebug bool

	// Locale names the HID dictionary to resolve symbolic HID identifiers
	// against; defaults to "us-ansi" when empty.
	Locale string

	// KiibohdTemplate/KiibohdOutput and KLLTemplate/KLLOutput override the
	// emitter's default template and output paths (spec.md section 6).
	KiibohdTemplate string
	KiibohdOutput   string
	KLLTemplate     string
	KLLOutput       string
	JSONOutput      string

	// ScratchDir, when non-empty, mirrors every imported source file's raw
	// contents under this directory via pkg/kll/cache (spec.md section 6,
	// "Persisted state"). Left empty, FileImport skips the mirror step
	// entirely.
	ScratchDir string
}

// StageStatus reports the outcome of one pipeline stage.
type StageStatus uint8

const (
	// StageQueued marks a stage not yet attempted.
	StageQueued StageStatus = iota
	// StageRunning marks a stage currently executing.
	StageRunning
	// StageCompleted marks a stage that finished without error.
	StageCompleted
	// StageIncomplete marks a stage that failed; the controller aborts
	// immediately, per spec.md section 4.3's fixed stage order.
	StageIncomplete
)

func (s StageStatus) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageRunning:
		return "running"
	case StageCompleted:
		return "completed"
	default:
		return "incomplete"
	}
}
