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
package ast

import (
	"fmt"
	"strings"

	"github.com/kiibohd/kll/pkg/util"
)

// Expression is satisfied by each of the four concrete expression forms
// (Assignment, NameAssociation, DataAssociation, Map).  Per spec.md section
// 9's explicit redesign note, the parser constructs one of these concrete
// types directly; there is no common mutable base retagged after the fact.
type Expression interface {
	// UniqueKeys returns the set of keys identifying functionally
	// equivalent expressions across contexts, for merge deduplication.
	UniqueKeys() []string
	// Kllify renders this expression's canonical textual form.
	Kllify() string
}

// ============================================================================
// Assignment
// ============================================================================

// Assignment is a '=' expression: a scalar or array variable definition.
// Indexed writes (`name[pos] = value`) are represented with Index set;
// whole-array writes leave Index empty and populate Values directly.
type Assignment struct {
	Name   string
	Index  util.Option[int]
	Values []string
}

// UniqueKeys implements Expression.
func (a *Assignment) UniqueKeys() []string {
	return []string{"=" + a.Name}
}

// Kllify implements Expression.
func (a *Assignment) Kllify() string {
	if a.Index.HasValue() {
		return fmt.Sprintf("%s[%d] = %s;", a.Name, a.Index.Unwrap(), strings.Join(a.Values, ", "))
	}

	return fmt.Sprintf("%s = %s;", a.Name, strings.Join(a.Values, ", "))
}

// ============================================================================
// NameAssociation
// ============================================================================

// NameAssociation is a '=>' expression, binding a name to either a
// capability definition or a plain define alias.
type NameAssociation struct {
	Name       string
	Capability *CapabilityDef
	Define     util.Option[string]
}

// UniqueKeys implements Expression.
func (n *NameAssociation) UniqueKeys() []string {
	return []string{"=>" + n.Name}
}

// Kllify implements Expression.
func (n *NameAssociation) Kllify() string {
	if n.Capability != nil {
		return fmt.Sprintf("%s => %s;", n.Name, n.Capability.Kllify())
	}

	return fmt.Sprintf("%s => %s;", n.Name, n.Define.Unwrap())
}

// ============================================================================
// DataAssociation
// ============================================================================

// DataAssociationKind distinguishes the four '<=' forms.
type DataAssociationKind uint8

const (
	// DataAnimation associates default settings with an animation name.
	DataAnimation DataAssociationKind = iota
	// DataAnimationFrame associates frame contents with a frame identifier.
	DataAnimationFrame
	// DataPixelPosition associates a physical position with one or more
	// pixels.
	DataPixelPosition
	// DataScanCodePosition associates a physical position with one or more
	// scan codes.
	DataScanCodePosition
)

// DataAssociation is a '<=' expression.  Association holds every member the
// left-hand side names (plural forms expand to one member per pixel/scan
// code); Value carries the kind-specific payload.
type DataAssociation struct {
	DAKind      DataAssociationKind
	Association []Identifier
	// AnimationSettings is populated when DAKind == DataAnimation.
	AnimationSettings Schedule
	// FrameContents is populated when DAKind == DataAnimationFrame: one
	// channel-change descriptor per pixel touched by the frame.
	FrameContents []FrameChange
	// Position is populated for DataPixelPosition / DataScanCodePosition.
	Position Position
}

// FrameChange is one channel mutation within an animation frame.
type FrameChange struct {
	Pixel    Identifier
	Channel  uint8
	Operator string
	Value    int
}

// UniqueKeys implements Expression.  Per spec.md section 3, a
// DataAssociation over a multi-member list produces one key per member.
func (d *DataAssociation) UniqueKeys() []string {
	keys := make([]string, len(d.Association))
	for i, member := range d.Association {
		keys[i] = fmt.Sprintf("<=%d:%s", d.DAKind, member.Kllify())
	}

	return keys
}

// Narrow returns a shallow copy of this expression with Association reduced
// to the single given member, used when a store key is generated per
// member.
func (d *DataAssociation) Narrow(member Identifier) *DataAssociation {
	narrowed := *d
	narrowed.Association = []Identifier{member}

	return &narrowed
}

// Kllify implements Expression.
func (d *DataAssociation) Kllify() string {
	lhs := make([]string, len(d.Association))
	for i, m := range d.Association {
		lhs[i] = m.Kllify()
	}

	return fmt.Sprintf("%s <= ...;", strings.Join(lhs, ", "))
}

// ============================================================================
// Map
// ============================================================================

// MapKind distinguishes the two families of map expression.
type MapKind uint8

const (
	// MapTriggerCode is a trigger->result mapping (the common case).
	MapTriggerCode MapKind = iota
	// MapPixelChannel is a pixel->channel-list|scancode mapping.
	MapPixelChannel
)

// Combo is one "combo" within a sequence-of-combos trigger or result: a set
// of identifiers that must co-occur.
type Combo []Identifier

func (c Combo) kllify(sep string) string {
	parts := make([]string, len(c))
	for i, id := range c {
		parts[i] = id.Kllify()
	}

	return strings.Join(parts, sep)
}

// Sequence is an ordered list of Combos: a chord sequence.
type Sequence []Combo

func (s Sequence) kllify() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.kllify("+")
	}

	return strings.Join(parts, ",")
}

// Map is a trigger->result binding, one of the four operators (optionally
// isolated).  ConnectID is filled in by the preprocessor and folded into the
// expression's unique key so that otherwise-identical triggers on different
// interconnected nodes remain distinct until scan-code offsetting is
// applied.
type Map struct {
	MKind     MapKind
	Triggers  Sequence
	Operator  MapOperator
	Isolated  bool
	Results   Sequence
	ConnectID uint16
	// BaseMap records whether this expression originated from a BaseMap
	// context; cleared when merged from a non-BaseMap source (spec.md
	// section 3 invariants).
	BaseMap bool
}

// TriggerStr renders the canonical trigger-only string, used to deduplicate
// trigger_index_reduced during analysis.
func (m *Map) TriggerStr() string {
	return m.Triggers.kllify()
}

// ResultStr renders the canonical result-only string, used to deduplicate
// result_index during analysis.
func (m *Map) ResultStr() string {
	return m.Results.kllify()
}

// UniqueKeys implements Expression.  The key incorporates the operator
// prefix, connect id and trigger combination, matching the MappingData store
// key scheme of spec.md section 4.2 (":key", ":+key", "::key", ...).
func (m *Map) UniqueKeys() []string {
	prefix := ""
	if m.Isolated {
		prefix = "i"
	}

	prefix += m.Operator.String()

	return []string{fmt.Sprintf("%s%d:%s", prefix, m.ConnectID, m.TriggerStr())}
}

// Kllify implements Expression.
func (m *Map) Kllify() string {
	prefix := ""
	if m.Isolated {
		prefix = "i"
	}

	return fmt.Sprintf("%s %s%s %s;", m.Triggers.kllify(), prefix, m.Operator, m.Results.kllify())
}

// AddTriggerUIDOffset returns a new Map whose ScanCode trigger members have
// had offset added to their uid, implementing the connect-id adjustment step
// of the index-assignment pass (spec.md section 4.4).
func (m *Map) AddTriggerUIDOffset(offset uint16) *Map {
	result := *m
	result.Triggers = make(Sequence, len(m.Triggers))

	for i, combo := range m.Triggers {
		newCombo := make(Combo, len(combo))

		for j, id := range combo {
			if sc, ok := id.(*ScanCode); ok {
				shifted := *sc
				shifted.UpdatedUID = util.Some(sc.GetUID() + offset)
				newCombo[j] = &shifted
			} else {
				newCombo[j] = id
			}
		}

		result.Triggers[i] = newCombo
	}

	return &result
}
