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
package locale

import (
	"fmt"
	"unicode"

	"github.com/kiibohd/kll/pkg/kll/ast"
)

// USANSI is a minimal built-in US ANSI keyboard dictionary, covering the
// letters, the digits and the handful of named keys KLL test fixtures rely
// on; punctuation is not covered.  A full layouts package would replace this with generated tables
// for every locale; this is enough to fail fast and round-trip sequence
// strings without that external dependency.
type USANSI struct {
	forward map[string]uint16
	reverse map[uint16]string
}

// NewUSANSI constructs the built-in US ANSI dictionary.
func NewUSANSI() *USANSI {
	d := &USANSI{forward: make(map[string]uint16), reverse: make(map[uint16]string)}

	named := map[string]uint16{
		"Enter": 0x28, "Esc": 0x29, "Backspace": 0x2a, "Tab": 0x2b, "Space": 0x2c,
		"CapsLock": 0x39, "LCtrl": 0xe0, "LShift": 0xe1, "LAlt": 0xe2, "LGUI": 0xe3,
		"RCtrl": 0xe4, "RShift": 0xe5, "RAlt": 0xe6, "RGUI": 0xe7,
	}
	for name, uid := range named {
		d.add(name, uid)
	}

	for c := '1'; c <= '9'; c++ {
		d.add(string(c), uint16(0x1e+(c-'1')))
	}

	d.add("0", 0x27)

	for c := 'a'; c <= 'z'; c++ {
		d.add(string(unicode.ToUpper(c)), uint16(0x04+(c-'a')))
	}

	return d
}

func (d *USANSI) add(name string, uid uint16) {
	d.forward[name] = uid
	d.reverse[uid] = name
}

// Name implements Dictionary.
func (*USANSI) Name() string { return "us-ansi" }

// Lookup implements Dictionary.
func (d *USANSI) Lookup(name string) (*ast.HIDCode, bool) {
	uid, ok := d.forward[name]
	if !ok {
		return nil, false
	}

	return ast.NewHIDCode(ast.HIDKeyboard, uid, d.Name()), true
}

// Reverse implements Dictionary.
func (d *USANSI) Reverse(code *ast.HIDCode) (string, bool) {
	name, ok := d.reverse[code.UID]
	return name, ok
}

// Compose implements Dictionary.  Each rune is looked up individually;
// uppercase letters compose with an implicit LShift combo member.  noClears
// is accepted for interface symmetry with the left/right-hand-side sequence
// rules (spec.md section 4.1) and is ignored: no clear combo is inserted
// between repeated characters, whichever side the string is on.
func (d *USANSI) Compose(s string, _ bool) ([]ComposedCombo, error) {
	var combos []ComposedCombo

	for _, r := range s {
		name := string(r)
		if unicode.IsUpper(r) {
			code, ok := d.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("no HID mapping for %q in locale %s", name, d.Name())
			}

			shift, _ := d.Lookup("LShift")
			combos = append(combos, ComposedCombo{shift, code})

			continue
		}

		code, ok := d.Lookup(string(unicode.ToUpper(r)))
		if !ok {
			return nil, fmt.Errorf("no HID mapping for %q in locale %s", name, d.Name())
		}

		combos = append(combos, ComposedCombo{code})
	}

	return combos, nil
}
