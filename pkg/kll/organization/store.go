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

// Package organization implements the per-context symbol tables (spec.md
// section 3, "Organization") and their merge semantics (section 4.2). It is
// grounded on the teacher's scope/symbol-table design
// (pkg/corset/compiler/scope.go): a small map-backed container per concern,
// combined by an explicit merge step rather than global mutable state. The
// design note in spec.md section 9 ("keep the log authoritative, materialize
// data on demand") is followed directly: each Store's Log is the only
// mutated state; Materialize recomputes the current view on every read.
package organization

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/log"
)

// Entry is one append-only merge-log record.
type Entry struct {
	Key     string
	Expr    ast.Expression
	Enabled bool
}

// Store is the uniform non-mapping store kind (variables, defines,
// capabilities, animations, animationFrames, pixelPositions,
// scanCodePositions, pixelChannel): add inserts or replaces by unique key,
// merge replays the incoming log through add.
type Store struct {
	Log []Entry
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add inserts or replaces expr under every key it reports.
func (s *Store) Add(expr ast.Expression) {
	for _, k := range expr.UniqueKeys() {
		s.Log = append(s.Log, Entry{Key: k, Expr: expr, Enabled: true})
	}
}

// Materialize replays the log into the current key->expression view: later
// entries for the same key win, matching "add replaces by unique key".
func (s *Store) Materialize() map[string]ast.Expression {
	data := make(map[string]ast.Expression)

	for _, e := range s.Log {
		if e.Enabled {
			data[e.Key] = e.Expr
		}
	}

	return data
}

// Merge replays other's log through Add, in arrival order, so the combined
// log preserves full history for any later merge.
func (s *Store) Merge(other *Store) {
	for _, e := range other.Log {
		if e.Enabled {
			s.Add(e.Expr)
		}
	}
}

// ============================================================================
// MappingData
// ============================================================================

// MappingEntry is one merge-log record for the mapping store. TriggerKey
// omits the operator so that ':', '::', ':+', ':-' entries against the same
// trigger can be recognized as acting on one logical slot during merge,
// while Key (ast.Map.UniqueKeys()[0]) retains the operator for duplicate
// detection within a single context, per spec.md section 4.2.
type MappingEntry struct {
	Key        string
	TriggerKey string
	Expr       *ast.Map
	Enabled    bool
}

// MappingStore implements spec.md section 4.2's richer, operator-dispatching
// merge for the `mapping` store.
type MappingStore struct {
	Log []MappingEntry
}

// NewMappingStore constructs an empty mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{}
}

func triggerKey(m *ast.Map) string {
	prefix := ""
	if m.Isolated {
		prefix = "i"
	}

	return fmt.Sprintf("%s%s", prefix, m.TriggerStr())
}

// Add appends m to the log, skipping an exact duplicate (same operator, same
// trigger key, identical Kllify rendering) already present.
func (s *MappingStore) Add(m *ast.Map) {
	key := m.UniqueKeys()[0]
	text := m.Kllify()

	for _, e := range s.Log {
		if e.Enabled && e.Key == key && e.Expr.Kllify() == text {
			log.Debug("skipping duplicate mapping " + text)
			return
		}
	}

	s.Log = append(s.Log, MappingEntry{Key: key, TriggerKey: triggerKey(m), Expr: m, Enabled: true})
}

// Materialize replays the log into the current {triggerKey -> []*Map} view.
// Per spec.md section 4.2, entries are partitioned by operator class and
// applied lazy-then-replace-then-append-then-remove (arrival order preserved
// within each class) rather than strictly in raw arrival order; this keeps
// the log the sole authoritative state (spec.md section 9's design note)
// across any number of concatenated merges, since the same replay algorithm
// produces the correct result whether the log came from one context or many.
func (s *MappingStore) Materialize() map[string][]*ast.Map {
	data := make(map[string][]*ast.Map)

	var lazy, replace, append_, remove []MappingEntry

	for _, e := range s.Log {
		if !e.Enabled {
			continue
		}

		switch e.Expr.Operator {
		case ast.OpLazy:
			lazy = append(lazy, e)
		case ast.OpReplace:
			replace = append(replace, e)
		case ast.OpAppend:
			append_ = append(append_, e)
		case ast.OpRemove:
			remove = append(remove, e)
		}
	}

	for _, bucket := range [][]MappingEntry{lazy, replace, append_, remove} {
		for _, e := range bucket {
			applyOperator(data, e.TriggerKey, e.Expr)
		}
	}

	return data
}

// applyOperator implements the four-operator dispatch of spec.md section
// 4.2 against an accumulated {triggerKey -> []*Map} view: ':'/'::' replace
// the slot outright (the lazy flag is preserved on the expression itself and
// resolved later during reduction), ':+' appends, ':-' removes by
// stringified match.
func applyOperator(data map[string][]*ast.Map, key string, m *ast.Map) {
	switch m.Operator {
	case ast.OpReplace, ast.OpLazy:
		data[key] = []*ast.Map{m}
	case ast.OpAppend:
		data[key] = append(data[key], m)
	case ast.OpRemove:
		removeByString(data, key, m)
	}
}

func removeByString(data map[string][]*ast.Map, key string, m *ast.Map) {
	existing, ok := data[key]
	if !ok {
		log.Debug("dropping unmatched removal for " + m.Kllify())
		return
	}

	text := m.ResultStr()

	kept := existing[:0]

	removed := false

	for _, e := range existing {
		if e.ResultStr() == text {
			removed = true
			continue
		}

		kept = append(kept, e)
	}

	if !removed {
		log.Debug("dropping unmatched removal for " + m.Kllify())
	}

	data[key] = kept
}

// Merge concatenates other's log onto s's, in arrival order, so a later
// merge sees full history (spec.md section 4.2). The operator dispatch
// itself lives in Materialize, which is re-run on demand.
func (s *MappingStore) Merge(other *MappingStore) {
	s.Log = append(s.Log, other.Log...)
}
