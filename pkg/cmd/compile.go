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
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kiibohd/kll/pkg/kll/compiler"
	"github.com/kiibohd/kll/pkg/kll/log"
	"github.com/kiibohd/kll/pkg/util"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] source_file(s)",
	Short: "compile KLL sources into firmware tables or a canonicalized .kll tree.",
	Long: `Compile a layered set of KLL source files (config/base/default/partial) into
either the kiibohd firmware backend's C tables plus a JSON report, or a
canonicalized .kll round-trip tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		if GetFlag(cmd, "parser-debug") {
			log.SetDebugTrace(true)
		}

		cfg := buildConfig(cmd, args)

		runCompiler(cfg)
	},
}

// buildConfig translates the cobra flag set into a compiler.Config, per
// spec.md section 6's flag table.
func buildConfig(cmd *cobra.Command, args []string) compiler.Config {
	return compiler.Config{
		ConfigFiles:  GetStringArray(cmd, "config"),
		BaseFiles:    GetStringArray(cmd, "base"),
		DefaultFiles: GetStringArray(cmd, "default"),
		PartialFiles: splitPartialGroups(GetStringArray(cmd, "partial")),
		GenericFiles: args,

		Emitter:     GetString(cmd, "emitter"),
		Jobs:        GetInt(cmd, "jobs"),
		ParserDebug: GetFlag(cmd, "parser-debug"),
		Locale:      GetString(cmd, "locale"),

		KiibohdTemplate: GetString(cmd, "hid-template"),
		KiibohdOutput:   GetString(cmd, "hid-output"),
		KLLTemplate:     GetString(cmd, "map-template"),
		KLLOutput:       GetString(cmd, "map-output"),
		JSONOutput:      GetString(cmd, "json-output"),
		ScratchDir:      GetString(cmd, "scratch-dir"),
	}
}

// runCompiler runs the pipeline to completion, exiting with spec.md section
// 6's documented codes: 0 on success, 1 on internal stage failure, 2 on
// command-line misuse (caught earlier by cobra/GetFlag). Timing and memory
// use are logged at debug level via util.PerfStats, matching how the
// teacher's own command handlers report run cost.
func runCompiler(cfg compiler.Config) {
	stats := util.NewPerfStats()

	ctrl := compiler.New(cfg)

	if err := ctrl.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stats.Log("compile")
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringArray("config", nil, "configuration context file(s), lowest merge priority")
	compileCmd.Flags().StringArray("base", nil, "BaseMap context file(s)")
	compileCmd.Flags().StringArray("default", nil, "DefaultMap context file(s), layer 0 overlay")
	compileCmd.Flags().StringArray("partial", nil, "comma-separated partial-layer file group; repeat for each layer")

	compileCmd.Flags().String("emitter", "kiibohd", "backend: kiibohd, kll, or none")

	compileCmd.Flags().String("def-template", "", "variables/defines template fragment (accepted, not read by any emitter)")
	compileCmd.Flags().String("map-template", "", "override the .kll round-trip template directory")
	compileCmd.Flags().String("hid-template", "", "override the kiibohd backend's template directory")
	compileCmd.Flags().String("pixel-template", "", "pixel map template fragment (accepted, not read by any emitter)")

	compileCmd.Flags().String("def-output", "", "variables/defines output path (accepted, not read by any emitter)")
	compileCmd.Flags().String("map-output", "", "override the .kll round-trip output directory")
	compileCmd.Flags().String("hid-output", "", "override the kiibohd backend's output directory")
	compileCmd.Flags().String("pixel-output", "", "pixel map output path (accepted, not read by any emitter)")
	compileCmd.Flags().String("json-output", "", "write the JSON report to this path")

	compileCmd.Flags().String("scratch-dir", "", "mirror imported source files into this scratch directory")
}
