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
package context_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/context"
	"github.com/kiibohd/kll/pkg/util/source"
	"github.com/stretchr/testify/assert"
)

func newCtx(role context.Role, text string) *context.Context {
	file := source.NewSourceFile("test.kll", []byte(text))
	return context.New(role, 0, file)
}

func TestPreprocessCumulativeOffset(t *testing.T) {
	zero := newCtx(context.Generic, "ConnectId = 0;\nS0x3F : U\"A\";\n")
	one := newCtx(context.Generic, "ConnectId = 1;\nS0x05 : U\"B\";\n")

	offsets := context.Preprocess([]*context.Context{zero, one})

	assert.Equal(t, uint16(0), offsets[0])
	assert.Equal(t, uint16(0x3F), offsets[1])
	assert.Equal(t, 0, zero.ConnectID)
	assert.Equal(t, 1, one.ConnectID)
}

func TestPreprocessExplicitOffsetOverride(t *testing.T) {
	zero := newCtx(context.Generic, "ConnectId = 0;\nS0x10 : U\"A\";\n")
	one := newCtx(context.Generic, "ConnectId = 1;\nScanCodeOffset = 100;\nS0x05 : U\"B\";\n")

	offsets := context.Preprocess([]*context.Context{zero, one})

	assert.Equal(t, uint16(100), offsets[1])
}

func TestPreprocessDefaultsConnectIDToZero(t *testing.T) {
	ctx := newCtx(context.Generic, "S0x01 : U\"A\";\n")

	context.Preprocess([]*context.Context{ctx})

	assert.Equal(t, 0, ctx.ConnectID)
}

func TestContextIsBaseMap(t *testing.T) {
	c := newCtx(context.BaseMap, "")
	assert.True(t, c.IsBaseMap())

	d := newCtx(context.DefaultMap, "")
	assert.False(t, d.IsBaseMap())
}
