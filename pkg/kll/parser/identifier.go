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
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/locale"
	"github.com/kiibohd/kll/pkg/util"
)

// Side distinguishes the trigger (left) from the result (right) vocabulary,
// since a handful of atoms (None, PixelLayer, R-form sequence strings) are
// only valid on the result side and sequence-string composition is passed
// noClears on the left but not the right (spec.md section 4.1).
type Side uint8

const (
	// TriggerSide is the left-hand side of a map expression.
	TriggerSide Side = iota
	// ResultSide is the right-hand side of a map expression.
	ResultSide
)

// ParseAtomList parses a single '+'-joined vocabulary atom, expanding any
// range/list sugar into the full set of alternative identifiers it denotes
// (spec.md's "range expansion" and "option expansion" rules). A plain atom
// yields a single-element list.
func ParseAtomList(text string, side Side, dict locale.Dictionary) ([]ast.Identifier, error) {
	text = strings.TrimSpace(text)

	// Capability/define references own their trailing "(...)" as argument
	// lists, not as a schedule specifier, so they bypass the generic
	// schedule-stripping below entirely.
	if isCapabilityOrDefineAtom(text) {
		return parseCapabilityOrDefineAtom(text)
	}

	core, scheduleText, hasSchedule := splitSchedule(text)

	ids, err := parseAtomCore(core, side, dict)
	if err != nil {
		return nil, err
	}

	if hasSchedule {
		params, err := parseScheduleParams(scheduleText, classifyScheduleFor(ids))
		if err != nil {
			return nil, err
		}

		for _, id := range ids {
			if s, ok := id.(ast.Scheduled); ok {
				s.SetSchedule(params)
			}
		}
	}

	return ids, nil
}

func classifyScheduleFor(ids []ast.Identifier) ast.ScheduleParamClass {
	if len(ids) == 0 {
		return ast.ClassButton
	}

	switch ids[0].(type) {
	case *ast.GenericTrigger:
		g := ids[0].(*ast.GenericTrigger)
		switch g.IDCode {
		case ast.GenericAnalog1, ast.GenericAnalog2, ast.GenericAnalog3, ast.GenericAnalog4:
			return ast.ClassAnalog
		case ast.GenericLED1:
			return ast.ClassIndicator
		case ast.GenericLayer1, ast.GenericLayer2, ast.GenericLayer3, ast.GenericLayer4:
			return ast.ClassLayer
		case ast.GenericAnimation1, ast.GenericAnimation2, ast.GenericAnimation3, ast.GenericAnimation4:
			return ast.ClassAnimation
		default:
			return ast.ClassIndex
		}
	case *ast.Layer:
		return ast.ClassLayer
	case *ast.Animation:
		return ast.ClassAnimation
	case *ast.HIDCode:
		if ids[0].(*ast.HIDCode).Class == ast.HIDIndicator {
			return ast.ClassIndicator
		}

		return ast.ClassButton
	default:
		return ast.ClassButton
	}
}

// isCapabilityOrDefineAtom reports whether text denotes a capability
// invocation or a bare define/variable name rather than one of the built-in
// vocabulary forms, by checking it doesn't match any of their prefixes.
func isCapabilityOrDefineAtom(text string) bool {
	switch {
	case text == "None":
		return false
	case strings.HasPrefix(text, "S"),
		strings.HasPrefix(text, "U"),
		strings.HasPrefix(text, "CONS"),
		strings.HasPrefix(text, "SYS"),
		strings.HasPrefix(text, "IND"),
		strings.HasPrefix(text, "Layer"),
		strings.HasPrefix(text, "PL"),
		strings.HasPrefix(text, "A"),
		strings.HasPrefix(text, "P"),
		strings.HasPrefix(text, "T["),
		strings.HasPrefix(text, "'"),
		strings.HasPrefix(text, "\""):
		return false
	default:
		return true
	}
}

func parseAtomCore(text string, side Side, dict locale.Dictionary) ([]ast.Identifier, error) {
	text = strings.TrimSpace(text)

	switch {
	case text == "None":
		return []ast.Identifier{ast.None{}}, nil
	case strings.HasPrefix(text, "S"):
		return parseScanCodeAtom(text)
	case strings.HasPrefix(text, "U"):
		return parseHIDAtom(text, ast.HIDKeyboard, dict)
	case strings.HasPrefix(text, "CONS"):
		return parseHIDNumericAtom(text[len("CONS"):], ast.HIDConsumer, dict)
	case strings.HasPrefix(text, "SYS"):
		return parseHIDNumericAtom(text[len("SYS"):], ast.HIDSystem, dict)
	case strings.HasPrefix(text, "IND"):
		return parseHIDNumericAtom(text[len("IND"):], ast.HIDIndicator, dict)
	case strings.HasPrefix(text, "LayerShift"):
		return parseLayerAtom(text[len("LayerShift"):], ast.LayerShift)
	case strings.HasPrefix(text, "LayerLatch"):
		return parseLayerAtom(text[len("LayerLatch"):], ast.LayerLatch)
	case strings.HasPrefix(text, "LayerLock"):
		return parseLayerAtom(text[len("LayerLock"):], ast.LayerLock)
	case strings.HasPrefix(text, "Layer"):
		return parseLayerAtom(text[len("Layer"):], ast.LayerPlain)
	case strings.HasPrefix(text, "PL"):
		return parsePixelLayerAtom(text[len("PL"):])
	case strings.HasPrefix(text, "A"):
		return parseAnimationAtom(text[1:])
	case strings.HasPrefix(text, "P"):
		return parsePixelAtom(text[1:])
	case strings.HasPrefix(text, "T["):
		return parseGenericTriggerAtom(text)
	case strings.HasPrefix(text, "'") || strings.HasPrefix(text, "\""):
		return parseSequenceStringAtom(text, side, dict)
	default:
		return parseCapabilityOrDefineAtom(text)
	}
}

func parseScanCodeAtom(text string) ([]ast.Identifier, error) {
	values, err := parseBracketList(strings.TrimPrefix(text, "S"))
	if err != nil {
		return nil, fmt.Errorf("malformed scan code %q: %w", text, err)
	}

	ids := make([]ast.Identifier, len(values))
	for i, v := range values {
		ids[i] = ast.NewScanCode(uint16(v))
	}

	return ids, nil
}

func parseHIDAtom(text string, class ast.HIDClass, dict locale.Dictionary) ([]ast.Identifier, error) {
	rest := strings.TrimPrefix(text, "U")
	rest = strings.TrimSpace(rest)

	if strings.HasPrefix(rest, "\"") || strings.HasPrefix(rest, "[\"") {
		runes, err := parseQuotedStringList(rest)
		if err != nil {
			return nil, fmt.Errorf("malformed USB code %q: %w", text, err)
		}

		ids := make([]ast.Identifier, len(runes))

		for i, r := range runes {
			code, err := lookupHID(class, dict, r)
			if err != nil {
				return nil, err
			}

			ids[i] = code
		}

		return ids, nil
	}

	return parseHIDNumericAtom(rest, class, dict)
}

func parseHIDNumericAtom(rest string, class ast.HIDClass, dict locale.Dictionary) ([]ast.Identifier, error) {
	values, err := parseBracketList(rest)
	if err != nil {
		return nil, fmt.Errorf("malformed HID code %q: %w", rest, err)
	}

	ids := make([]ast.Identifier, len(values))
	for i, v := range values {
		ids[i] = ast.NewHIDCode(class, uint16(v), dict.Name())
	}

	return ids, nil
}

func parseLayerAtom(bracketed string, kind ast.LayerKind) ([]ast.Identifier, error) {
	bracketed = strings.TrimSpace(bracketed)
	if !strings.HasPrefix(bracketed, "[") {
		return nil, fmt.Errorf("expected '[N]' after Layer keyword, got %q", bracketed)
	}

	values, err := parseBracketList(bracketed)
	if err != nil {
		return nil, fmt.Errorf("malformed layer reference %q: %w", bracketed, err)
	}

	ids := make([]ast.Identifier, len(values))
	for i, v := range values {
		ids[i] = ast.NewLayer(kind, uint16(v))
	}

	return ids, nil
}

func parsePixelLayerAtom(rest string) ([]ast.Identifier, error) {
	v, err := parseIntLiteral(rest)
	if err != nil {
		return nil, fmt.Errorf("malformed pixel layer %q: %w", rest, err)
	}

	return []ast.Identifier{&ast.PixelLayer{UID: uint16(v)}}, nil
}

func parseAnimationAtom(rest string) ([]ast.Identifier, error) {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "\"") {
		name, err := parseQuotedWord(rest)
		if err != nil {
			return nil, err
		}

		return []ast.Identifier{ast.NewAnimation(name)}, nil
	}

	if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
		inner := rest[1 : len(rest)-1]
		fields := splitTopLevel(inner, ',')
		anim := ast.NewAnimation(strings.Trim(fields[0], "\""))

		if len(fields) > 1 {
			anim.State = util.Some(strings.TrimSpace(fields[1]))
		}

		return []ast.Identifier{anim}, nil
	}

	return nil, fmt.Errorf("malformed animation reference %q", rest)
}

func parsePixelAtom(rest string) ([]ast.Identifier, error) {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
		addr, err := parsePixelAddress(rest[1 : len(rest)-1])
		if err != nil {
			return nil, err
		}

		return []ast.Identifier{&ast.Pixel{UIDKind: ast.PixelUIDAddress, Address: addr}}, nil
	}

	v, err := parseIntLiteral(rest)
	if err != nil {
		return nil, fmt.Errorf("malformed pixel reference %q: %w", rest, err)
	}

	return []ast.Identifier{&ast.Pixel{UIDKind: ast.PixelUIDIndex, Index: uint32(v)}}, nil
}

func parsePixelAddress(inner string) (*ast.PixelAddress, error) {
	addr := &ast.PixelAddress{}

	for _, field := range splitTopLevel(inner, ',') {
		kv := strings.SplitN(field, ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("malformed pixel address field %q", field)
		}

		v, err := parseIntLiteral(kv[1])
		if err != nil {
			return nil, fmt.Errorf("malformed pixel address field %q: %w", field, err)
		}

		switch strings.TrimSpace(kv[0]) {
		case "i":
			addr.Index = util.Some(int(v))
		case "r":
			addr.Row = util.Some(int(v))
		case "c":
			addr.Col = util.Some(int(v))
		case "rr":
			addr.RelRow = util.Some(int(v))
		case "rc":
			addr.RelCol = util.Some(int(v))
		default:
			return nil, fmt.Errorf("unknown pixel address field %q", kv[0])
		}
	}

	return addr, nil
}

func parseGenericTriggerAtom(text string) ([]ast.Identifier, error) {
	if !strings.HasPrefix(text, "T[") || !strings.HasSuffix(text, "]") {
		return nil, fmt.Errorf("malformed generic trigger %q", text)
	}

	inner := text[2 : len(text)-1]
	fields := splitTopLevel(inner, ',')

	if len(fields) != 2 {
		return nil, fmt.Errorf("generic trigger %q requires exactly [idcode, uid]", text)
	}

	idcode, err := parseIntLiteral(fields[0])
	if err != nil {
		return nil, fmt.Errorf("malformed generic trigger idcode %q: %w", fields[0], err)
	}

	uid, err := parseIntLiteral(fields[1])
	if err != nil {
		return nil, fmt.Errorf("malformed generic trigger uid %q: %w", fields[1], err)
	}

	return []ast.Identifier{ast.NewGenericTrigger(ast.GenericTriggerKind(idcode), uint16(uid))}, nil
}

func parseSequenceStringAtom(text string, side Side, dict locale.Dictionary) ([]ast.Identifier, error) {
	word, err := parseQuotedWord(text)
	if err != nil {
		return nil, err
	}

	noClears := side == TriggerSide

	combos, err := dict.Compose(word, noClears)
	if err != nil {
		return nil, err
	}

	// A sequence string composes to a *sequence* of combos, not a single
	// identifier; callers that need the full Sequence use
	// ParseSequenceString directly. For atom-list purposes (used when a
	// sequence string appears amongst '+'-joined atoms) only single
	// character strings are valid, matching real KLL usage.
	if len(combos) != 1 {
		return nil, fmt.Errorf("sequence string %q cannot be combined with '+' unless it is a single character", word)
	}

	ids := make([]ast.Identifier, len(combos[0]))
	for i, c := range combos[0] {
		ids[i] = c
	}

	return ids, nil
}

// ParseSequenceString composes a full sequence string into a Sequence of
// Combos, one per character (spec.md section 4.1's composer rule).
func ParseSequenceString(text string, side Side, dict locale.Dictionary) (ast.Sequence, error) {
	word, err := parseQuotedWord(text)
	if err != nil {
		return nil, err
	}

	combos, err := dict.Compose(word, side == TriggerSide)
	if err != nil {
		return nil, err
	}

	seq := make(ast.Sequence, len(combos))

	for i, c := range combos {
		combo := make(ast.Combo, len(c))
		for j, code := range c {
			combo[j] = code
		}

		seq[i] = combo
	}

	return seq, nil
}

func parseCapabilityOrDefineAtom(text string) ([]ast.Identifier, error) {
	name, argText, hasArgs := splitSchedule(text)

	ref := &ast.CapabilityRef{Name: name}

	if hasArgs && strings.TrimSpace(argText) != "" {
		for _, a := range splitTopLevel(argText, ',') {
			a = strings.TrimSpace(a)

			if strings.HasPrefix(a, "\"") {
				s, err := parseQuotedWord(a)
				if err != nil {
					return nil, err
				}

				ref.Args = append(ref.Args, ast.CapArgValue{StringValue: s, IsString: true})
			} else {
				v, err := parseIntLiteral(a)
				if err != nil {
					return nil, fmt.Errorf("malformed capability argument %q: %w", a, err)
				}

				ref.Args = append(ref.Args, ast.CapArgValue{IntValue: v})
			}
		}
	}

	return []ast.Identifier{ref}, nil
}

func parseQuotedWord(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || (s[0] != '\'' && s[0] != '"') || s[len(s)-1] != s[0] {
		return "", fmt.Errorf("expected a quoted string, got %q", s)
	}

	return s[1 : len(s)-1], nil
}

// parseScheduleParams parses a "(...)" schedule specifier body into a list
// of ScheduleParam, inferring the parent identifier's semantic class.
func parseScheduleParams(body string, class ast.ScheduleParamClass) ([]ast.ScheduleParam, error) {
	var params []ast.ScheduleParam

	for _, part := range splitTopLevel(body, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		param, err := parseOneScheduleParam(part, class)
		if err != nil {
			return nil, err
		}

		params = append(params, param)
	}

	return params, nil
}

var buttonStates = map[string]bool{"P": true, "H": true, "R": true, "O": true, "UP": true, "UR": true}
var indicatorStates = map[string]bool{"A": true, "On": true, "D": true, "Off": true}
var animationStates = map[string]bool{"D": true, "R": true, "O": true}

func parseOneScheduleParam(part string, class ast.ScheduleParamClass) (ast.ScheduleParam, error) {
	if t, ok := parseTime(part); ok {
		return ast.ScheduleParam{Class: class, Time: util.Some(t)}, nil
	}

	switch class {
	case ast.ClassButton:
		if buttonStates[part] {
			return ast.ScheduleParam{Class: class, State: util.Some(part)}, nil
		}
	case ast.ClassIndicator, ast.ClassLayer:
		if indicatorStates[part] {
			return ast.ScheduleParam{Class: class, State: util.Some(part)}, nil
		}
	case ast.ClassAnimation:
		if animationStates[part] {
			return ast.ScheduleParam{Class: class, State: util.Some(part)}, nil
		}
	}

	if v, err := strconv.Atoi(part); err == nil {
		return ast.ScheduleParam{Class: class, IndexState: util.Some(v)}, nil
	}

	// Percentages (analog) are accepted as a bare integer with a trailing
	// '%' and stored as the index state.
	if strings.HasSuffix(part, "%") {
		if v, err := strconv.Atoi(strings.TrimSuffix(part, "%")); err == nil {
			return ast.ScheduleParam{Class: class, IndexState: util.Some(v)}, nil
		}
	}

	return ast.ScheduleParam{}, fmt.Errorf("unrecognized schedule specifier %q", part)
}

func parseTime(part string) (ast.Time, bool) {
	for suffix, unit := range map[string]ast.TimeUnit{
		"ms": ast.UnitMilliseconds,
		"us": ast.UnitMicroseconds,
		"ns": ast.UnitNanoseconds,
		"s":  ast.UnitSeconds,
	} {
		if strings.HasSuffix(part, suffix) {
			numeric := strings.TrimSuffix(part, suffix)

			v, err := strconv.ParseFloat(numeric, 64)
			if err == nil {
				return ast.Time{Value: v, Unit: unit}, true
			}
		}
	}

	return ast.Time{}, false
}
