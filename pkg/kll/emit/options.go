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

// KiibohdOptions configures the firmware C backend.
type KiibohdOptions struct {
	// Template points at a directory of <|TAG|> template override files
	// named after their outputs (kll_defs.h.tmpl, generatedKeymap.h.tmpl,
	// usb_hid.h.tmpl, generatedPixelmap.c.tmpl). When it is empty, or a file
	// is missing from it, the embedded default template is used.
	Template string
	// Output is the directory the interpolated files are written into.
	// Defaults to the current directory when empty.
	Output string
}

// KLLOptions configures the .kll round-trip backend.
type KLLOptions struct {
	// Template points at a directory whose prefix.kll, when present, is
	// prepended verbatim ahead of the generated content of every output
	// file; no other file in it is read. Optional.
	Template string
	// Output is the directory base.kll, default.kll, partial-N.kll and
	// final.kll are written into. Defaults to the current directory when
	// empty.
	Output string
}

const (
	defaultKiibohdTemplateDir = "templates/kiibohd"
	defaultOutputDir          = "."
)

func outputDir(o string) string {
	if o == "" {
		return defaultOutputDir
	}

	return o
}
