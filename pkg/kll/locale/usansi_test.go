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
package locale_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUSANSILookupLettersAndDigits(t *testing.T) {
	d := locale.NewUSANSI()

	code, ok := d.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, uint16(0x04), code.UID)

	zero, ok := d.Lookup("0")
	require.True(t, ok)
	assert.Equal(t, uint16(0x27), zero.UID)

	nine, ok := d.Lookup("9")
	require.True(t, ok)
	assert.Equal(t, uint16(0x26), nine.UID)
}

func TestUSANSILookupUnknownFails(t *testing.T) {
	d := locale.NewUSANSI()

	_, ok := d.Lookup("!")
	assert.False(t, ok)
}

func TestUSANSIReverse(t *testing.T) {
	d := locale.NewUSANSI()

	code := ast.NewHIDCode(ast.HIDKeyboard, 0x04, "us-ansi")
	name, ok := d.Reverse(code)
	require.True(t, ok)
	assert.Equal(t, "A", name)
}

func TestUSANSIComposeLowercaseIsSingleCombo(t *testing.T) {
	d := locale.NewUSANSI()

	combos, err := d.Compose("a", false)
	require.NoError(t, err)
	require.Len(t, combos, 1)
	require.Len(t, combos[0], 1)
	assert.Equal(t, uint16(0x04), combos[0][0].UID)
}

func TestUSANSIComposeUppercaseAddsShift(t *testing.T) {
	d := locale.NewUSANSI()

	combos, err := d.Compose("A", false)
	require.NoError(t, err)
	require.Len(t, combos, 1)
	require.Len(t, combos[0], 2)
	assert.Equal(t, uint16(0xe1), combos[0][0].UID)
	assert.Equal(t, uint16(0x04), combos[0][1].UID)
}

func TestUSANSIComposeMultiCharSequence(t *testing.T) {
	d := locale.NewUSANSI()

	combos, err := d.Compose("Hi", false)
	require.NoError(t, err)
	require.Len(t, combos, 2)
}

func TestRegistryResolvesUSANSIByDefault(t *testing.T) {
	reg := locale.NewRegistry()

	dict, err := reg.Get("us-ansi")
	require.NoError(t, err)
	assert.Equal(t, "us-ansi", dict.Name())
}

func TestRegistryFailsFastOnUnknownLocale(t *testing.T) {
	reg := locale.NewRegistry()

	_, err := reg.Get("de-de")
	assert.Error(t, err)
}
