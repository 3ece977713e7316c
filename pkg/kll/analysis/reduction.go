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
package analysis

import (
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/log"
	"github.com/kiibohd/kll/pkg/kll/organization"
)

// reduceLayer implements spec.md section 4.4's MappingData.reduction: walk a
// layer's materialized mapping state (already operator-resolved by
// organization.MappingStore.Materialize, in the arrival order of the
// originating merge log) and rewrite any HID-code-triggered mapping whose
// HID code is itself the result of some scan-code-triggered mapping in this
// layer into an equivalent scan-code-triggered mapping, per the worked
// example of spec.md section 8 scenario 2. The scan-code mapping that a
// single HID trigger resolves through is dropped from the result, so
// `S0x10:U"A"; U"A":U"B";` reduces to `S0x10:U"B"` alone.
func reduceLayer(org *organization.Organization) []*ast.Map {
	materialized := org.Mapping.Materialize()
	order := orderedTriggerKeys(org.Mapping.Log)

	lookup := make(map[string]*ast.Map)

	for _, key := range order {
		for _, m := range materialized[key] {
			if isSingleScanCodeTrigger(m) {
				lookup[m.ResultStr()] = m
			}
		}
	}

	groupOrder := make([]string, 0, len(order))
	groups := make(map[string][]*ast.Map)
	consumed := make(map[*ast.Map]bool)

	for _, key := range order {
		for _, m := range materialized[key] {
			rewritten, ok := rewriteMapping(m, lookup)
			if !ok {
				continue
			}

			if id, single := soleTriggerMember(m); single {
				if h, isHID := id.(*ast.HIDCode); isHID {
					consumed[lookup[h.Kllify()]] = true
				}
			}

			newKey := triggerKeyFor(rewritten)
			if _, seen := groups[newKey]; !seen {
				groupOrder = append(groupOrder, newKey)
			}

			groups[newKey] = append(groups[newKey], rewritten)
		}
	}

	var out []*ast.Map
	for _, key := range groupOrder {
		for _, m := range groups[key] {
			if !consumed[m] {
				out = append(out, m)
			}
		}
	}

	return out
}

// orderedTriggerKeys walks a mapping store's merge log and returns every
// distinct TriggerKey in first-appearance order, so reduction can replay
// Materialize's otherwise-unordered map deterministically.
func orderedTriggerKeys(entries []organization.MappingEntry) []string {
	seen := make(map[string]bool)

	var order []string

	for _, e := range entries {
		if !seen[e.TriggerKey] {
			seen[e.TriggerKey] = true
			order = append(order, e.TriggerKey)
		}
	}

	return order
}

func isSingleScanCodeTrigger(m *ast.Map) bool {
	id, ok := soleTriggerMember(m)
	if !ok {
		return false
	}

	_, ok = id.(*ast.ScanCode)

	return ok
}

func soleTriggerMember(m *ast.Map) (ast.Identifier, bool) {
	if len(m.Triggers) != 1 || len(m.Triggers[0]) != 1 {
		return nil, false
	}

	return m.Triggers[0][0], true
}

func triggerKeyFor(m *ast.Map) string {
	prefix := ""
	if m.Isolated {
		prefix = "i"
	}

	return prefix + m.TriggerStr()
}

// rewriteMapping implements the two rewrite steps of spec.md section 4.4:
// single-element HID-code triggers are rewritten in place to the matching
// ScanCode trigger (dropped if unresolvable); multi-element combos have any
// resolvable HID-code member substituted with its scan code, other trigger
// kinds pass through unchanged, and an unresolvable/unsupported member drops
// the whole expression.
func rewriteMapping(m *ast.Map, lookup map[string]*ast.Map) (*ast.Map, bool) {
	if id, ok := soleTriggerMember(m); ok {
		switch v := id.(type) {
		case *ast.ScanCode:
			return m, true
		case *ast.HIDCode:
			target, found := lookup[v.Kllify()]
			if !found {
				log.Debug("reduction: dropping unresolvable HID trigger " + m.Kllify())
				return nil, false
			}

			rewritten := *m
			rewritten.Triggers = target.Triggers

			return &rewritten, true
		case *ast.Layer, *ast.Animation, *ast.GenericTrigger:
			return m, true
		default:
			log.Debug("reduction: dropping unsupported trigger " + m.Kllify())
			return nil, false
		}
	}

	newTriggers, ok := substituteSequence(m.Triggers, lookup)
	if !ok {
		log.Debug("reduction: dropping unresolvable combo trigger " + m.Kllify())
		return nil, false
	}

	rewritten := *m
	rewritten.Triggers = newTriggers

	return &rewritten, true
}

func substituteSequence(seq ast.Sequence, lookup map[string]*ast.Map) (ast.Sequence, bool) {
	out := make(ast.Sequence, len(seq))

	for i, combo := range seq {
		newCombo, ok := substituteCombo(combo, lookup)
		if !ok {
			return nil, false
		}

		out[i] = newCombo
	}

	return out, true
}

func substituteCombo(combo ast.Combo, lookup map[string]*ast.Map) (ast.Combo, bool) {
	out := make(ast.Combo, len(combo))

	for i, id := range combo {
		switch v := id.(type) {
		case *ast.ScanCode:
			out[i] = v
		case *ast.Layer, *ast.Animation, *ast.GenericTrigger:
			out[i] = v
		case *ast.HIDCode:
			target, ok := lookup[v.Kllify()]
			if !ok {
				return nil, false
			}

			sc, ok := soleTriggerMember(target)
			if !ok {
				return nil, false
			}

			out[i] = sc
		default:
			return nil, false
		}
	}

	return out, true
}
