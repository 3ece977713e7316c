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
package organization

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/kll/ast"
)

// Organization holds the nine typed stores of spec.md section 3, scoped to
// one context (or, after DataOrganization/DataFinalization, one merged
// group of contexts).
type Organization struct {
	Variables         *Store
	Defines           *Store
	Capabilities      *Store
	Animations        *Store
	AnimationFrames   *Store
	PixelPositions    *Store
	ScanCodePositions *Store
	Mapping           *MappingStore
	PixelChannel      *Store
}

// New constructs an empty Organization.
func New() *Organization {
	return &Organization{
		Variables:         NewStore(),
		Defines:           NewStore(),
		Capabilities:      NewStore(),
		Animations:        NewStore(),
		AnimationFrames:   NewStore(),
		PixelPositions:    NewStore(),
		ScanCodePositions: NewStore(),
		Mapping:           NewMappingStore(),
		PixelChannel:      NewStore(),
	}
}

// AddExpression routes expr to the store matching its
// (expression_class, expression_subtype) pair, per the OperationOrganization
// pipeline stage (spec.md section 4.3).
func (o *Organization) AddExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.Assignment:
		o.Variables.Add(e)
	case *ast.NameAssociation:
		if e.Capability != nil {
			o.Capabilities.Add(e)
		} else {
			o.Defines.Add(e)
		}
	case *ast.DataAssociation:
		o.addDataAssociation(e)
	case *ast.Map:
		if e.MKind == ast.MapPixelChannel {
			o.PixelChannel.Add(e)
		} else {
			o.Mapping.Add(e)
		}
	default:
		return fmt.Errorf("unrecognized expression type %T", expr)
	}

	return nil
}

func (o *Organization) addDataAssociation(d *ast.DataAssociation) {
	switch d.DAKind {
	case ast.DataAnimation:
		o.Animations.Add(d)
	case ast.DataAnimationFrame:
		o.AnimationFrames.Add(d)
	case ast.DataPixelPosition:
		for _, member := range d.Association {
			o.PixelPositions.Add(d.Narrow(member))
		}
	case ast.DataScanCodePosition:
		for _, member := range d.Association {
			o.ScanCodePositions.Add(d.Narrow(member))
		}
	}
}

// Merge combines other into o. sourceIsBaseMap indicates whether other
// originated from a BaseMap context; when it did not, every incoming Map's
// BaseMap flag is cleared before merging in, per spec.md section 3's
// invariant ("the flag is cleared when merged from a non-BaseMap source").
func (o *Organization) Merge(other *Organization, sourceIsBaseMap bool) {
	o.Variables.Merge(other.Variables)
	o.Defines.Merge(other.Defines)
	o.Capabilities.Merge(other.Capabilities)
	o.Animations.Merge(other.Animations)
	o.AnimationFrames.Merge(other.AnimationFrames)
	o.PixelPositions.Merge(other.PixelPositions)
	o.ScanCodePositions.Merge(other.ScanCodePositions)
	o.PixelChannel.Merge(other.PixelChannel)

	if sourceIsBaseMap {
		o.Mapping.Merge(other.Mapping)
		return
	}

	cleared := NewMappingStore()

	for _, e := range other.Mapping.Log {
		m := *e.Expr
		m.BaseMap = false
		cleared.Log = append(cleared.Log, MappingEntry{Key: e.Key, TriggerKey: e.TriggerKey, Expr: &m, Enabled: e.Enabled})
	}

	o.Mapping.Merge(cleared)
}

// Cleanup drops every Map still flagged BaseMap==true, per spec.md section
// 3's invariant: DataFinalization calls this when overlaying a non-BaseMap
// context group onto the base layer stack, since a surviving BaseMap flag at
// that point means the expression was never legitimately carried over.
func (o *Organization) Cleanup() {
	data := o.Mapping.Materialize()
	cleaned := NewMappingStore()

	for key, maps := range data {
		for _, m := range maps {
			if m.BaseMap {
				continue
			}

			cleaned.Log = append(cleaned.Log, MappingEntry{
				Key: m.UniqueKeys()[0], TriggerKey: key, Expr: m, Enabled: true,
			})
		}
	}

	o.Mapping = cleaned
}
