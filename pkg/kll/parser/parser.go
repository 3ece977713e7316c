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
	"github.com/kiibohd/kll/pkg/kll/lexer"
	"github.com/kiibohd/kll/pkg/kll/locale"
	"github.com/kiibohd/kll/pkg/util"
)

// ParseStatement turns one classified Statement into the Expression(s) it
// denotes. Every kind but Map always yields exactly one Expression; Map may
// yield several when its trigger and/or result side uses range or list
// sugar (spec.md section 4.1's "option expansion"): each fully-expanded
// alternative becomes its own Map so that later stages never need to
// re-expand.
func ParseStatement(stmt lexer.Statement, dict locale.Dictionary) ([]ast.Expression, error) {
	switch stmt.Op.Kind {
	case lexer.KindAssignment:
		expr, err := parseAssignment(stmt)
		if err != nil {
			return nil, err
		}

		return []ast.Expression{expr}, nil
	case lexer.KindNameAssociation:
		expr, err := parseNameAssociation(stmt)
		if err != nil {
			return nil, err
		}

		return []ast.Expression{expr}, nil
	case lexer.KindDataAssociation:
		expr, err := parseDataAssociation(stmt, dict)
		if err != nil {
			return nil, err
		}

		return []ast.Expression{expr}, nil
	case lexer.KindMap:
		return parseMap(stmt, dict)
	default:
		return nil, fmt.Errorf("unrecognized operator %q", stmt.Op.Text)
	}
}

// ============================================================================
// Assignment
// ============================================================================

func parseAssignment(stmt lexer.Statement) (*ast.Assignment, error) {
	name, index, err := parseNameIndex(stmt.LHS)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0)

	for _, v := range splitTopLevel(stmt.RHS, ',') {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}

		if unquoted, err := parseQuotedWord(v); err == nil {
			values = append(values, unquoted)
		} else {
			values = append(values, v)
		}
	}

	return &ast.Assignment{Name: name, Index: index, Values: values}, nil
}

func parseNameIndex(lhs string) (string, util.Option[int], error) {
	lhs = strings.TrimSpace(lhs)

	open := strings.Index(lhs, "[")
	if open < 0 {
		return lhs, util.None[int](), nil
	}

	if !strings.HasSuffix(lhs, "]") {
		return "", util.None[int](), fmt.Errorf("malformed indexed assignment %q", lhs)
	}

	v, err := parseIntLiteral(lhs[open+1 : len(lhs)-1])
	if err != nil {
		return "", util.None[int](), fmt.Errorf("malformed assignment index %q: %w", lhs, err)
	}

	return lhs[:open], util.Some(int(v)), nil
}

// ============================================================================
// NameAssociation
// ============================================================================

func parseNameAssociation(stmt lexer.Statement) (*ast.NameAssociation, error) {
	name := strings.TrimSpace(stmt.LHS)
	rhs := strings.TrimSpace(stmt.RHS)

	if open := strings.Index(rhs, "("); open >= 0 && strings.HasSuffix(rhs, ")") {
		fn := strings.TrimSpace(rhs[:open])
		argList := rhs[open+1 : len(rhs)-1]

		var args []ast.CapArgID

		for _, a := range splitTopLevel(argList, ',') {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}

			kv := strings.SplitN(a, ":", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("malformed capability argument %q in %q", a, rhs)
			}

			width, err := strconv.Atoi(strings.TrimSpace(kv[1]))
			if err != nil {
				return nil, fmt.Errorf("malformed capability argument width %q: %w", kv[1], err)
			}

			args = append(args, ast.CapArgID{Name: strings.TrimSpace(kv[0]), Width: uint(width)})
		}

		return &ast.NameAssociation{Name: name, Capability: &ast.CapabilityDef{Name: fn, Args: args}}, nil
	}

	return &ast.NameAssociation{Name: name, Define: util.Some(rhs)}, nil
}

// ============================================================================
// DataAssociation
// ============================================================================

func parseDataAssociation(stmt lexer.Statement, dict locale.Dictionary) (*ast.DataAssociation, error) {
	members, err := parseDataAssociationMembers(stmt.LHS, dict)
	if err != nil {
		return nil, err
	}

	members, kind := classifyDataAssociation(members)

	da := &ast.DataAssociation{DAKind: kind, Association: members}

	rhs := strings.TrimSpace(stmt.RHS)

	switch kind {
	case ast.DataPixelPosition, ast.DataScanCodePosition:
		pos, err := parsePositionFields(rhs)
		if err != nil {
			return nil, err
		}

		da.Position = pos
	case ast.DataAnimation:
		params, err := parseScheduleParams(stripParens(rhs), ast.ClassAnimation)
		if err != nil {
			return nil, err
		}

		da.AnimationSettings = ast.Schedule{Params: params}
	case ast.DataAnimationFrame:
		frames, err := parseFrameContents(rhs)
		if err != nil {
			return nil, err
		}

		da.FrameContents = frames
	}

	return da, nil
}

func parseDataAssociationMembers(lhs string, dict locale.Dictionary) ([]ast.Identifier, error) {
	var members []ast.Identifier

	for _, atom := range splitTopLevel(lhs, ',') {
		atom = strings.TrimSpace(atom)
		if atom == "" {
			continue
		}

		ids, err := ParseAtomList(atom, TriggerSide, dict)
		if err != nil {
			return nil, err
		}

		members = append(members, ids...)
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("data association %q names no members", lhs)
	}

	return members, nil
}

// classifyDataAssociation determines the DataAssociation kind from its
// members, reinterpreting an animation reference with a numeric second
// bracket field (e.g. "A[name,1]") as a frame reference: spec.md's
// animation-frame association and its default-settings association share one
// surface syntax, distinguished only by whether that field is a state symbol
// or a frame index.
func classifyDataAssociation(members []ast.Identifier) ([]ast.Identifier, ast.DataAssociationKind) {
	switch first := members[0].(type) {
	case *ast.Pixel:
		return members, ast.DataPixelPosition
	case *ast.ScanCode:
		return members, ast.DataScanCodePosition
	case *ast.Animation:
		if first.State.HasValue() {
			if _, err := strconv.Atoi(first.State.Unwrap()); err == nil {
				frames := make([]ast.Identifier, len(members))

				for i, m := range members {
					anim := m.(*ast.Animation)
					frameIdx, _ := strconv.Atoi(anim.State.Unwrap())
					frames[i] = &ast.AnimationFrame{Name: anim.Name, Index: uint16(frameIdx)}
				}

				return frames, ast.DataAnimationFrame
			}
		}

		return members, ast.DataAnimation
	default:
		return members, ast.DataAnimation
	}
}

// parsePositionFields parses "x:1,y:2,rx:30" style position specifiers.
func parsePositionFields(text string) (ast.Position, error) {
	var pos ast.Position

	for _, field := range splitTopLevel(text, ',') {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		kv := strings.SplitN(field, ":", 2)
		if len(kv) != 2 {
			return pos, fmt.Errorf("malformed position field %q", field)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return pos, fmt.Errorf("malformed position value %q: %w", kv[1], err)
		}

		switch strings.TrimSpace(kv[0]) {
		case "x":
			pos.X = util.Some(v)
		case "y":
			pos.Y = util.Some(v)
		case "z":
			pos.Z = util.Some(v)
		case "rx":
			pos.RX = util.Some(v)
		case "ry":
			pos.RY = util.Some(v)
		case "rz":
			pos.RZ = util.Some(v)
		default:
			return pos, fmt.Errorf("unknown position field %q", kv[0])
		}
	}

	return pos, nil
}

// parseFrameContents parses "P[name,1]:128, P[name,2](+):4" style per-pixel
// channel changes within an animation frame declaration.
func parseFrameContents(text string) ([]ast.FrameChange, error) {
	var frames []ast.FrameChange

	for _, field := range splitTopLevel(text, ',') {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		idx := strings.LastIndex(field, ":")
		if idx < 0 {
			return nil, fmt.Errorf("malformed frame content %q", field)
		}

		lhs := strings.TrimSpace(field[:idx])
		rhs := strings.TrimSpace(field[idx+1:])

		pixelText, channel, err := splitPixelChannel(lhs)
		if err != nil {
			return nil, err
		}

		ids, err := ParseAtomList(pixelText, ResultSide, nil)
		if err != nil {
			return nil, err
		}

		if len(ids) != 1 {
			return nil, fmt.Errorf("frame content pixel %q must name exactly one pixel", pixelText)
		}

		op, value, err := parseFrameValue(rhs)
		if err != nil {
			return nil, err
		}

		frames = append(frames, ast.FrameChange{Pixel: ids[0], Channel: channel, Operator: op, Value: value})
	}

	return frames, nil
}

// splitPixelChannel separates a frame-content LHS's pixel atom from its
// trailing "@channel" channel-index suffix, e.g. "P3@2" addresses channel 2
// of pixel 3. A bare pixel atom with no suffix addresses channel 0.
func splitPixelChannel(text string) (string, uint8, error) {
	at := strings.LastIndex(text, "@")
	if at < 0 {
		return text, 0, nil
	}

	ch, err := strconv.Atoi(strings.TrimSpace(text[at+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("malformed pixel channel suffix %q: %w", text, err)
	}

	return strings.TrimSpace(text[:at]), uint8(ch), nil
}

func parseFrameValue(text string) (string, int, error) {
	for _, op := range []string{"+", "-"} {
		if strings.HasPrefix(text, op) {
			v, err := strconv.Atoi(strings.TrimSpace(text[len(op):]))
			if err != nil {
				return "", 0, fmt.Errorf("malformed frame value %q: %w", text, err)
			}

			return op, v, nil
		}
	}

	v, err := strconv.Atoi(text)
	if err != nil {
		return "", 0, fmt.Errorf("malformed frame value %q: %w", text, err)
	}

	return "=", v, nil
}

func stripParens(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		return text[1 : len(text)-1]
	}

	return text
}

// ============================================================================
// Map
// ============================================================================

func parseMap(stmt lexer.Statement, dict locale.Dictionary) ([]ast.Expression, error) {
	triggerSeqs, err := expandSequenceAlternatives(stmt.LHS, TriggerSide, dict)
	if err != nil {
		return nil, fmt.Errorf("trigger: %w", err)
	}

	resultSeqs, err := expandSequenceAlternatives(stmt.RHS, ResultSide, dict)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}

	pairs, err := pairAlternatives(triggerSeqs, resultSeqs)
	if err != nil {
		return nil, err
	}

	exprs := make([]ast.Expression, len(pairs))

	for i, p := range pairs {
		exprs[i] = &ast.Map{
			MKind:    classifyMapKind(p.trigger),
			Triggers: p.trigger,
			Operator: stmt.Op.MapOp,
			Isolated: stmt.Op.Isolated,
			Results:  p.result,
		}
	}

	return exprs, nil
}

type seqPair struct {
	trigger ast.Sequence
	result  ast.Sequence
}

// pairAlternatives implements spec.md section 4.1's option-expansion
// cardinality rule: a trigger side and result side that each expanded to the
// same number of alternatives are paired positionally (zip); a side with
// exactly one alternative is broadcast against every alternative of the
// other; any other mismatch is an ambiguous-cardinality error rather than a
// guessed pairing.
func pairAlternatives(triggers, results []ast.Sequence) ([]seqPair, error) {
	switch {
	case len(triggers) == len(results):
		pairs := make([]seqPair, len(triggers))
		for i := range triggers {
			pairs[i] = seqPair{triggers[i], results[i]}
		}

		return pairs, nil
	case len(results) == 1:
		pairs := make([]seqPair, len(triggers))
		for i := range triggers {
			pairs[i] = seqPair{triggers[i], results[0]}
		}

		return pairs, nil
	case len(triggers) == 1:
		pairs := make([]seqPair, len(results))
		for i := range results {
			pairs[i] = seqPair{triggers[0], results[i]}
		}

		return pairs, nil
	default:
		return nil, fmt.Errorf(
			"ambiguous option expansion: trigger side expands to %d alternatives, result side to %d",
			len(triggers), len(results))
	}
}

func classifyMapKind(trigger ast.Sequence) ast.MapKind {
	for _, combo := range trigger {
		for _, id := range combo {
			if _, ok := id.(*ast.Pixel); ok {
				return ast.MapPixelChannel
			}
		}
	}

	return ast.MapTriggerCode
}

// expandSequenceAlternatives parses a comma-separated chord sequence where
// each '+'-joined combo position may itself expand to several alternative
// combos (range/list sugar). The result is the cartesian product across
// positions: every element is one complete, fully-resolved Sequence.
func expandSequenceAlternatives(text string, side Side, dict locale.Dictionary) ([]ast.Sequence, error) {
	positions := splitTopLevel(text, ',')

	positionAlts := make([][]ast.Combo, 0, len(positions))

	for _, pos := range positions {
		pos = strings.TrimSpace(pos)
		if pos == "" {
			continue
		}

		combos, err := comboAlternatives(pos, side, dict)
		if err != nil {
			return nil, err
		}

		positionAlts = append(positionAlts, combos)
	}

	if len(positionAlts) == 0 {
		return nil, fmt.Errorf("empty sequence")
	}

	return cartesianSequences(positionAlts), nil
}

// comboAlternatives parses one '+'-joined combo position, expanding each
// atom's range/list sugar and cross-producting across the atoms that make up
// the combo.
func comboAlternatives(text string, side Side, dict locale.Dictionary) ([]ast.Combo, error) {
	atoms := splitTopLevel(text, '+')

	alts := make([][]ast.Identifier, 0, len(atoms))

	for _, atom := range atoms {
		atom = strings.TrimSpace(atom)
		if atom == "" {
			continue
		}

		ids, err := ParseAtomList(atom, side, dict)
		if err != nil {
			return nil, err
		}

		alts = append(alts, ids)
	}

	if len(alts) == 0 {
		return nil, fmt.Errorf("empty combo")
	}

	return cartesianCombos(alts), nil
}

func cartesianCombos(alts [][]ast.Identifier) []ast.Combo {
	combos := []ast.Combo{{}}

	for _, choices := range alts {
		next := make([]ast.Combo, 0, len(combos)*len(choices))

		for _, prefix := range combos {
			for _, choice := range choices {
				grown := make(ast.Combo, len(prefix)+1)
				copy(grown, prefix)
				grown[len(prefix)] = choice
				next = append(next, grown)
			}
		}

		combos = next
	}

	return combos
}

func cartesianSequences(positionAlts [][]ast.Combo) []ast.Sequence {
	seqs := []ast.Sequence{{}}

	for _, choices := range positionAlts {
		next := make([]ast.Sequence, 0, len(seqs)*len(choices))

		for _, prefix := range seqs {
			for _, choice := range choices {
				grown := make(ast.Sequence, len(prefix)+1)
				copy(grown, prefix)
				grown[len(prefix)] = choice
				next = append(next, grown)
			}
		}

		seqs = next
	}

	return seqs
}
