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

// Package cmd implements the command-line surface of spec.md section 6: a
// cobra command tree with a compile subcommand plus the root command's own
// version/path/layout-cache introspection flags, grounded on the teacher's
// own pkg/cmd (root command + GetFlag/GetString family + one file per
// subcommand).
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kiibohd/kll/pkg/kll/log"
)

// Version is filled in at build time via -ldflags, mirroring the teacher's
// own Version var.
var Version string

var rootCmd = &cobra.Command{
	Use:   "kll",
	Short: "A compiler for the Keyboard Layout Language.",
	Long:  "A compiler for the Keyboard Layout Language (KLL): layered keyboard mapping sources to firmware tables or a canonicalized .kll round-trip.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("kll ")
			printVersion()
			fmt.Println()

			return
		}

		if GetFlag(cmd, "path") {
			exe, err := os.Executable()
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			fmt.Println(exe)

			return
		}

		if GetFlag(cmd, "layout-cache-path") {
			fmt.Println(layoutCachePath())
			return
		}

		if GetFlag(cmd, "layout-cache-refresh") {
			if err := os.RemoveAll(layoutCachePath()); err != nil {
				fmt.Println(err)
				os.Exit(1)
			}

			return
		}

		_ = cmd.Help()
	},
}

func printVersion() {
	if Version != "" {
		fmt.Printf("%s", Version)
		return
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Printf("%s", info.Main.Version)
		return
	}

	fmt.Print("(unknown version)")
}

func layoutCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return dir + "/kll/layouts"
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main exactly once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

// resolveColor implements spec.md section 6's `--color {auto|always|never}`:
// auto defers to whether stdout is attached to a terminal, via the same
// golang.org/x/term detection the teacher's terminal widget uses.
func resolveColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func configureLogging(cmd *cobra.Command) {
	log.SetColor(resolveColor(GetString(cmd, "color")))

	switch {
	case GetFlag(cmd, "token-debug"), GetFlag(cmd, "parser-debug"), GetFlag(cmd, "parser-token-debug"),
		GetFlag(cmd, "operation-organization-display"), GetFlag(cmd, "data-organization-display"),
		GetFlag(cmd, "data-finalization-display"), GetFlag(cmd, "data-analysis-display"),
		GetFlag(cmd, "kiibohd-debug"), GetFlag(cmd, "output-debug"):
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.Flags().Bool("path", false, "report the path of this executable")
	rootCmd.Flags().Bool("layout-cache-path", false, "report the locale layout cache directory")
	rootCmd.Flags().Bool("layout-cache-refresh", false, "clear the locale layout cache directory")

	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "thread-pool size (0 selects a default based on NumCPU)")
	rootCmd.PersistentFlags().String("color", "auto", "diagnostic colorization: auto, always, never")
	rootCmd.PersistentFlags().String("locale", "us-ansi", "HID dictionary locale to resolve symbolic HID names against")

	rootCmd.PersistentFlags().Bool("token-debug", false, "trace lexer token classification")
	rootCmd.PersistentFlags().Bool("parser-debug", false, "enable trace-level logging (failed expressions are not re-parsed)")
	rootCmd.PersistentFlags().Bool("parser-token-debug", false, "trace parser token consumption")
	rootCmd.PersistentFlags().Bool("operation-organization-display", false, "print each context's organization after stage 6")
	rootCmd.PersistentFlags().Bool("data-organization-display", false, "print the grouped layer organizations after stage 7")
	rootCmd.PersistentFlags().Bool("data-finalization-display", false, "print the finalized layer stack after stage 8")
	rootCmd.PersistentFlags().Bool("data-analysis-display", false, "print the analysis report after stage 9")
	rootCmd.PersistentFlags().Bool("kiibohd-debug", false, "trace kiibohd backend emission")
	rootCmd.PersistentFlags().Bool("output-debug", false, "trace emitted file paths and sizes")
}
