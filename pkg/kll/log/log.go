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

// Package log is the single package-level logger every other package writes
// diagnostics through, mirroring the teacher's own package-level logrus
// instance (pkg/cmd/*.go).
package log

import (
	logrus "github.com/sirupsen/logrus"
)

var logger = logrus.New()

// SetLevel adjusts the global verbosity; pkg/cmd calls this from --verbose
// and the various --*-debug flags.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// SetColor toggles ANSI colorization of the text formatter, driven by
// pkg/cmd's `--color` flag (spec §6).
func SetColor(on bool) {
	logger.SetFormatter(&logrus.TextFormatter{ForceColors: on, DisableColors: !on})
}

// SetDebugTrace raises the global verbosity to trace level when on is true
// and leaves it unchanged otherwise; it attaches no fields. pkg/cmd calls it
// for --parser-debug.
func SetDebugTrace(on bool) {
	if on {
		logger.SetLevel(logrus.TraceLevel)
	}
}

// Debug logs silently-dropped merge detail (spec §7.4): unmatched ':-'
// removals, merge-log replay steps.
func Debug(args ...interface{}) { logger.Debug(args...) }

// Warn logs a non-fatal semantic lookup failure (spec §7.2): unknown HID
// name, unknown locale, unknown capability.
func Warn(args ...interface{}) { logger.Warn(args...) }

// Warnf is the formatted form of Warn.
func Warnf(format string, args ...interface{}) { logger.Warnf(format, args...) }

// Error logs a lexical/syntactic or resource error (spec §7.1, §7.5) before
// the owning stage reports Incomplete.
func Error(args ...interface{}) { logger.Error(args...) }

// Errorf is the formatted form of Error.
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// WithField attaches one structured field to a single log entry.
func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}
