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

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
)

// TriggerType is the firmware-facing enumeration a trigger combo member is
// tagged with, per spec.md section 4.5's "TriggerType_* bucketing".
type TriggerType uint8

const (
	TriggerTypeSwitch1 TriggerType = iota
	TriggerTypeSwitch2
	TriggerTypeSwitch3
	TriggerTypeSwitch4
	TriggerTypeLayer1
	TriggerTypeLayer2
	TriggerTypeLayer3
	TriggerTypeLayer4
	TriggerTypeAnimation1
	TriggerTypeAnimation2
	TriggerTypeAnimation3
	TriggerTypeAnimation4
	TriggerTypeLED1
	TriggerTypeAnalog1
	TriggerTypeAnalog2
	TriggerTypeAnalog3
	TriggerTypeAnalog4
	TriggerTypeSleep1
	TriggerTypeResume1
	TriggerTypeInactive1
	TriggerTypeActive1
	TriggerTypeRotation1
	TriggerTypeDebug
)

// triggerBucketWidth is the span of uids owned by each Switch{n}/Layer{n}/
// Animation{n} bucket, per spec.md section 4.5.
const triggerBucketWidth = 256

// triggerTypeFor classifies id into its firmware TriggerType and the uid the
// firmware byte encodes (the source uid modulo the bucket width for the
// bucketed classes; the raw GenericTriggerKind-relative uid otherwise).
func triggerTypeFor(id ast.Identifier) (TriggerType, uint16, error) {
	switch v := id.(type) {
	case *ast.ScanCode:
		return bucketedType(TriggerTypeSwitch1, v.GetUID())
	case *ast.Layer:
		return bucketedType(TriggerTypeLayer1, v.UID)
	case *ast.Animation:
		uid := uint16(0)
		if v.UID.HasValue() {
			uid = v.UID.Unwrap()
		}

		return bucketedType(TriggerTypeAnimation1, uid)
	case *ast.GenericTrigger:
		return genericTriggerType(v)
	default:
		return 0, 0, fmt.Errorf("identifier %q cannot appear as a trigger combo member", id.Kllify())
	}
}

func bucketedType(base TriggerType, uid uint16) (TriggerType, uint16, error) {
	bucket := uid / triggerBucketWidth
	if bucket > 3 {
		return 0, 0, fmt.Errorf("uid %d exceeds the 4x256 trigger bucket range", uid)
	}

	return base + TriggerType(bucket), uid % triggerBucketWidth, nil
}

func genericTriggerType(g *ast.GenericTrigger) (TriggerType, uint16, error) {
	switch g.IDCode {
	case ast.GenericLED1:
		return TriggerTypeLED1, g.UID, nil
	case ast.GenericAnalog1:
		return TriggerTypeAnalog1, g.UID, nil
	case ast.GenericAnalog2:
		return TriggerTypeAnalog2, g.UID, nil
	case ast.GenericAnalog3:
		return TriggerTypeAnalog3, g.UID, nil
	case ast.GenericAnalog4:
		return TriggerTypeAnalog4, g.UID, nil
	case ast.GenericSleep1:
		return TriggerTypeSleep1, g.UID, nil
	case ast.GenericResume1:
		return TriggerTypeResume1, g.UID, nil
	case ast.GenericInactive1:
		return TriggerTypeInactive1, g.UID, nil
	case ast.GenericActive1:
		return TriggerTypeActive1, g.UID, nil
	case ast.GenericRotation1:
		return TriggerTypeRotation1, g.UID, nil
	case ast.GenericDebug:
		return TriggerTypeDebug, g.UID, nil
	default:
		return 0, 0, fmt.Errorf("generic trigger id-code %d has no firmware TriggerType", g.IDCode)
	}
}

// EncodeTriggerCombo implements spec.md section 4.5's trigger combo byte
// encoding: a leading combo-length byte, then one <type>,<state>,<uid> triple
// per member, in source order. For scan codes, layers and animations,
// bucketedType reduces uid modulo the bucket width so it fits in one byte; a
// generic trigger's uid is written as its low byte only.
func EncodeTriggerCombo(combo ast.Combo, scheduleLookup map[string]int) ([]byte, error) {
	out := make([]byte, 0, 1+len(combo)*3)
	out = append(out, byte(len(combo)))

	for _, id := range combo {
		typ, uid, err := triggerTypeFor(id)
		if err != nil {
			return nil, err
		}

		state := scheduleLookup[scheduleOf(id).Kllify()]

		out = append(out, byte(typ), byte(state), byte(uid))
	}

	return out, nil
}

// EncodeResultCombo implements spec.md section 4.5's result combo byte
// encoding: a leading combo-length byte, then <cap_idx>,<schedule_idx>,
// <cap_args...> per member, with HID codes expanded through their registered
// output capability (usbKeyOut for keyboard and indicator codes, sysCtrlOut,
// consCtrlOut) and a
// trailing zero-length "release" pseudo-member matching the firmware's USB
// release convention.
func EncodeResultCombo(combo ast.Combo, capIndex map[string]int, report *analysis.Report, scheduleLookup map[string]int) ([]byte, error) {
	out := []byte{byte(len(combo))}

	for _, id := range combo {
		name, args, err := resultCapability(id)
		if err != nil {
			return nil, err
		}

		idx, ok := capIndex[name]
		if !ok {
			return nil, fmt.Errorf("result capability %q has no entry in the capability table", name)
		}

		argBytes, err := encodeCapArgs(name, args, report)
		if err != nil {
			return nil, err
		}

		state := scheduleLookup[scheduleOf(id).Kllify()]

		out = append(out, byte(idx), byte(state))
		out = append(out, argBytes...)
	}

	out = append(out, 0x00)

	return out, nil
}

// resultCapability maps a result identifier to the named capability
// invocation the firmware dispatches, and the raw argument values (if any)
// supplied in source.
func resultCapability(id ast.Identifier) (string, []ast.CapArgValue, error) {
	switch v := id.(type) {
	case *ast.HIDCode:
		return hidCapability(v)
	case *ast.CapabilityRef:
		return v.Name, v.Args, nil
	case ast.None:
		return "noneOut", nil, nil
	case *ast.Layer:
		return layerCapability(v.LKind), []ast.CapArgValue{{IntValue: int64(v.UID)}}, nil
	case *ast.Animation:
		uid := int64(0)
		if v.UID.HasValue() {
			uid = int64(v.UID.Unwrap())
		}

		return "animationIndex", []ast.CapArgValue{{IntValue: uid}}, nil
	default:
		return "", nil, fmt.Errorf("identifier %q cannot appear as a result combo member", id.Kllify())
	}
}

func hidCapability(h *ast.HIDCode) (string, []ast.CapArgValue, error) {
	switch h.Class {
	case ast.HIDKeyboard:
		return "usbKeyOut", []ast.CapArgValue{{IntValue: int64(h.UID)}}, nil
	case ast.HIDSystem:
		return "sysCtrlOut", []ast.CapArgValue{{IntValue: int64(h.UID)}}, nil
	case ast.HIDConsumer:
		return "consCtrlOut", []ast.CapArgValue{{IntValue: int64(h.UID)}}, nil
	case ast.HIDIndicator:
		return "usbKeyOut", []ast.CapArgValue{{IntValue: int64(h.UID)}}, nil
	default:
		return "", nil, fmt.Errorf("HID code %q has unknown usage class", h.Kllify())
	}
}

func layerCapability(k ast.LayerKind) string {
	switch k {
	case ast.LayerShift:
		return "layerShift"
	case ast.LayerLatch:
		return "layerLatch"
	case ast.LayerLock:
		return "layerLock"
	default:
		return "layerShift"
	}
}

// encodeCapArgs byte-splits a capability invocation's argument values
// according to its formal definition's declared widths, little-endian, per
// spec.md section 4.5.
func encodeCapArgs(name string, args []ast.CapArgValue, report *analysis.Report) ([]byte, error) {
	def, ok := FindDefinition(report, name)
	if !ok {
		return splitLittleEndian(args, 1), nil
	}

	if len(def.Args) != len(args) {
		return nil, fmt.Errorf("capability %q expects %d argument(s), got %d", name, len(def.Args), len(args))
	}

	var out []byte

	for i, a := range args {
		width := def.Args[i].Width
		if width == 0 {
			width = 1
		}

		out = append(out, littleEndian(a.IntValue, width)...)
	}

	return out, nil
}

func splitLittleEndian(args []ast.CapArgValue, width uint) []byte {
	out := make([]byte, 0, len(args)*int(width))
	for _, a := range args {
		out = append(out, littleEndian(a.IntValue, width)...)
	}

	return out
}

func littleEndian(v int64, width uint) []byte {
	out := make([]byte, width)
	for i := uint(0); i < width; i++ {
		out[i] = byte(v >> (8 * i))
	}

	return out
}
