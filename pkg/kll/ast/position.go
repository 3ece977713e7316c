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

import "github.com/kiibohd/kll/pkg/util"

// Position is the physical placement of a pixel or scan code: (x,y,z) plus,
// for scan codes, a rotation (rx,ry,rz).  Axes are independently optional so
// that a partial specifier can be layered on top of an earlier one.
type Position struct {
	X, Y, Z    util.Option[float64]
	RX, RY, RZ util.Option[float64]
}

// SetPosition assigns any axis not already set (first-write-wins per axis),
// matching spec.md section 3's lifecycle rule.
func (p *Position) SetPosition(other Position) {
	setIfEmpty(&p.X, other.X)
	setIfEmpty(&p.Y, other.Y)
	setIfEmpty(&p.Z, other.Z)
	setIfEmpty(&p.RX, other.RX)
	setIfEmpty(&p.RY, other.RY)
	setIfEmpty(&p.RZ, other.RZ)
}

// UpdatePositions overwrites any axis present in other, even if already set.
// This is destructive by design: a later, fresher DataAssociation assignment
// for the same uid is expected to win outright.  See DESIGN.md's Open
// Question decision on destructive position merges.
func (p *Position) UpdatePositions(other Position) {
	overwriteIfPresent(&p.X, other.X)
	overwriteIfPresent(&p.Y, other.Y)
	overwriteIfPresent(&p.Z, other.Z)
	overwriteIfPresent(&p.RX, other.RX)
	overwriteIfPresent(&p.RY, other.RY)
	overwriteIfPresent(&p.RZ, other.RZ)
}

func setIfEmpty(dst *util.Option[float64], src util.Option[float64]) {
	if dst.IsEmpty() && src.HasValue() {
		*dst = src
	}
}

func overwriteIfPresent(dst *util.Option[float64], src util.Option[float64]) {
	if src.HasValue() {
		*dst = src
	}
}
