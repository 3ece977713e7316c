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
package log_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/log"
	"github.com/stretchr/testify/assert"
)

func TestLoggingFunctionsDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		log.SetLevel(5) // logrus.DebugLevel
		log.SetColor(true)
		log.SetDebugTrace(true)
		log.Debug("classify dropped trigger", "S0x10")
		log.Warn("unknown HID name", "FOO")
		log.Warnf("unknown capability %q", "bar")
		log.Error("parse failed")
		log.Errorf("parse failed at %d:%d", 1, 2)
		log.WithField("trace", "alternative-1").Debug("attempted parse")
	})
}

func TestDebugAfterSetDebugTraceOffDoesNotPanic(t *testing.T) {
	log.SetLevel(4) // logrus.InfoLevel
	log.SetDebugTrace(false)

	assert.NotPanics(t, func() {
		log.Debug("no-op at info level")
	})
}
