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

// ScheduleParamClass is the semantic class a ScheduleParam's state symbol is
// drawn from.  The source language retypes ScheduleParam into one of several
// concrete classes based on the parent identifier; here a single type
// carries a Class field instead of relying on runtime type identity (see
// DESIGN.md, "ScheduleParam class morphing").
type ScheduleParamClass uint8

const (
	// ClassButton covers ScanCode/HIDCode-keyboard triggers: states are
	// symbolic (P, H, R, O, UP, UR).
	ClassButton ScheduleParamClass = iota
	// ClassIndicator covers LED/indicator triggers: states are symbolic (A,
	// On, D, Off).
	ClassIndicator
	// ClassLayer covers layer triggers: states share the indicator
	// vocabulary (A, On, D, Off).
	ClassLayer
	// ClassAnimation covers animation triggers: states are symbolic (D, R,
	// O).
	ClassAnimation
	// ClassAnalog covers analog (slider/encoder) triggers: the state is an
	// integer.
	ClassAnalog
	// ClassIndex covers generic index-valued triggers: the state is an
	// integer.
	ClassIndex
)

// TimeUnit is the unit a Time value is expressed in.
type TimeUnit uint8

const (
	// UnitSeconds is 's'.
	UnitSeconds TimeUnit = iota
	// UnitMilliseconds is 'ms'.
	UnitMilliseconds
	// UnitMicroseconds is 'us'.
	UnitMicroseconds
	// UnitNanoseconds is 'ns'.
	UnitNanoseconds
)

func (u TimeUnit) String() string {
	switch u {
	case UnitSeconds:
		return "s"
	case UnitMilliseconds:
		return "ms"
	case UnitMicroseconds:
		return "us"
	default:
		return "ns"
	}
}

// Nanoseconds converts this unit's multiplier into nanoseconds.
func (u TimeUnit) Nanoseconds() float64 {
	switch u {
	case UnitSeconds:
		return 1e9
	case UnitMilliseconds:
		return 1e6
	case UnitMicroseconds:
		return 1e3
	default:
		return 1
	}
}

// Time is a timing qualifier attached to a ScheduleParam, e.g. "200ms".
type Time struct {
	Value float64
	Unit  TimeUnit
}

// Nanoseconds returns this time value normalized to nanoseconds, the
// smallest unit the grammar accepts.
func (t Time) Nanoseconds() float64 {
	return t.Value * t.Unit.Nanoseconds()
}

func (t Time) String() string {
	return fmt.Sprintf("%g%s", t.Value, t.Unit)
}

// ScheduleParam is one qualifier within a Schedule: an optional symbolic or
// integer state, and/or an optional timing value.
type ScheduleParam struct {
	Class      ScheduleParamClass
	State      util.Option[string]
	IndexState util.Option[int]
	Time       util.Option[Time]
}

func (p ScheduleParam) String() string {
	var parts []string

	if p.State.HasValue() {
		parts = append(parts, p.State.Unwrap())
	}

	if p.IndexState.HasValue() {
		parts = append(parts, fmt.Sprintf("%d", p.IndexState.Unwrap()))
	}

	if p.Time.HasValue() {
		parts = append(parts, p.Time.Unwrap().String())
	}

	return strings.Join(parts, ":")
}

// Schedule is an ordered list of ScheduleParam qualifiers attached to a
// trigger/result identifier.  Setting a schedule is idempotent: once
// non-empty, SetSchedule is a no-op, matching the "inner-to-outer
// evaluation wins" rule of spec.md section 3.
type Schedule struct {
	Params []ScheduleParam
}

// IsSet reports whether this schedule has already been assigned.
func (s Schedule) IsSet() bool {
	return len(s.Params) > 0
}

// SetSchedule assigns params to this schedule the first time it is called;
// subsequent calls are silently ignored so that the inner-most specifier in
// a nested group wins.
func (s *Schedule) SetSchedule(params []ScheduleParam) {
	if !s.IsSet() {
		s.Params = params
	}
}

// Kllify renders the schedule's "(...)" suffix, or the empty string when
// unset.
func (s Schedule) Kllify() string {
	if !s.IsSet() {
		return ""
	}

	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}

	return "(" + strings.Join(parts, ",") + ")"
}
