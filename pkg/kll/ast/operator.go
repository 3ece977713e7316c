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

// MapOperator is one of the four map-expression operators, independent of
// isolation.  Isolation is tracked separately on the Map expression itself
// since it is orthogonal to the replace/append/remove/lazy semantics.
type MapOperator uint8

const (
	// OpReplace is ':'.
	OpReplace MapOperator = iota
	// OpLazy is '::'; applied only if a later pass can resolve the trigger
	// to a scan code (spec.md section 4.2).
	OpLazy
	// OpAppend is ':+'.
	OpAppend
	// OpRemove is ':-'.
	OpRemove
)

// String renders the non-isolated textual form of this operator.
func (o MapOperator) String() string {
	switch o {
	case OpLazy:
		return "::"
	case OpAppend:
		return ":+"
	case OpRemove:
		return ":-"
	default:
		return ":"
	}
}
