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

// Package ast defines the typed leaf values ("identifiers") and expression
// forms of the KLL language.  Unlike the source language's own
// implementation, every concrete form here is a distinct Go type constructed
// directly by the parser; there is no common mutable base class retagged in
// place after construction.
package ast

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/util"
)

// IdentifierKind enumerates the concrete leaf-value variants of the KLL
// identifier model (spec.md section 3).
type IdentifierKind uint8

const (
	// KindScanCode identifies a ScanCode value.
	KindScanCode IdentifierKind = iota
	// KindHIDCode identifies a HIDCode value.
	KindHIDCode
	// KindLayer identifies a Layer value.
	KindLayer
	// KindAnimation identifies an Animation value.
	KindAnimation
	// KindAnimationFrame identifies an AnimationFrame value.
	KindAnimationFrame
	// KindPixel identifies a Pixel value.
	KindPixel
	// KindPixelAddress identifies a PixelAddress value.
	KindPixelAddress
	// KindPixelLayer identifies a PixelLayer value.
	KindPixelLayer
	// KindGenericTrigger identifies a GenericTrigger value.
	KindGenericTrigger
	// KindCapabilityRef identifies a capability invocation.
	KindCapabilityRef
	// KindCapabilityDef identifies a capability definition.
	KindCapabilityDef
	// KindNone identifies the sentinel "no action" capability.
	KindNone
	// KindUTF8String identifies an interned UTF-8 string.
	KindUTF8String
)

// Identifier is satisfied by every leaf value that can appear as (part of) a
// trigger, a result, or a data-association target.
type Identifier interface {
	// Kind reports which concrete variant this value is.
	Kind() IdentifierKind
	// Kllify renders the canonical textual form of this identifier, as used
	// both for round-tripping (.kll emission) and as the substring
	// incorporated into unique keys and trigger/result strings.
	Kllify() string
}

// Scheduled is satisfied by every identifier kind that carries its own
// Schedule field. The "specifier unrolling" parser rule (spec.md section
// 4.1) applies a parsed schedule to every member of a group by type-asserting
// to this interface and calling SetSchedule, rather than reflecting over the
// concrete identifier type.
type Scheduled interface {
	SetSchedule(params []ScheduleParam)
}

// HIDClass distinguishes the four HID usage pages a HIDCode may belong to.
type HIDClass uint8

const (
	// HIDKeyboard is the standard keyboard usage page (1 byte wide).
	HIDKeyboard HIDClass = iota
	// HIDSystem is the system-control usage page (1 byte wide).
	HIDSystem
	// HIDConsumer is the consumer-control usage page (2 bytes wide).
	HIDConsumer
	// HIDIndicator is the keyboard LED/indicator usage page (1 byte wide).
	HIDIndicator
)

// Width returns the byte width of codes belonging to this usage page.
func (c HIDClass) Width() uint {
	if c == HIDConsumer {
		return 2
	}

	return 1
}

func (c HIDClass) String() string {
	switch c {
	case HIDKeyboard:
		return "U"
	case HIDSystem:
		return "SYS"
	case HIDConsumer:
		return "CONS"
	case HIDIndicator:
		return "IND"
	default:
		return "?"
	}
}

// LayerKind distinguishes the four ways a layer identifier can be triggered
// or referenced.
type LayerKind uint8

const (
	// LayerShift activates a layer only whilst held.
	LayerShift LayerKind = iota
	// LayerLatch activates a layer until the next key press on another
	// layer.
	LayerLatch
	// LayerLock toggles a layer on/off.
	LayerLock
	// LayerPlain refers to the bare layer index (e.g. in a partial map
	// declaration header), carrying no activation semantics of its own.
	LayerPlain
)

func (k LayerKind) String() string {
	switch k {
	case LayerShift:
		return "LayerShift"
	case LayerLatch:
		return "LayerLatch"
	case LayerLock:
		return "LayerLock"
	default:
		return "Layer"
	}
}

// GenericTriggerKind enumerates the closed set of non-scan-code,
// non-HID-code trigger sources (spec.md section 3).
type GenericTriggerKind uint8

// The id-code values below match the firmware's own enumeration; Debug is
// pinned to 0xFF as called out in spec.md.
const (
	GenericSwitch1    GenericTriggerKind = 0
	GenericSwitch2    GenericTriggerKind = 1
	GenericSwitch3    GenericTriggerKind = 2
	GenericSwitch4    GenericTriggerKind = 3
	GenericLED1       GenericTriggerKind = 4
	GenericAnalog1    GenericTriggerKind = 5
	GenericAnalog2    GenericTriggerKind = 6
	GenericAnalog3    GenericTriggerKind = 7
	GenericAnalog4    GenericTriggerKind = 8
	GenericLayer1     GenericTriggerKind = 9
	GenericLayer2     GenericTriggerKind = 10
	GenericLayer3     GenericTriggerKind = 11
	GenericLayer4     GenericTriggerKind = 12
	GenericAnimation1 GenericTriggerKind = 13
	GenericAnimation2 GenericTriggerKind = 14
	GenericAnimation3 GenericTriggerKind = 15
	GenericAnimation4 GenericTriggerKind = 16
	GenericSleep1     GenericTriggerKind = 17
	GenericResume1    GenericTriggerKind = 18
	GenericInactive1  GenericTriggerKind = 19
	GenericActive1    GenericTriggerKind = 20
	GenericRotation1  GenericTriggerKind = 21
	GenericDebug      GenericTriggerKind = 0xFF
)

// ============================================================================
// ScanCode
// ============================================================================

// ScanCode is the keyboard matrix position identifier.  uid is the value as
// written in source; UpdatedUID caches the post-preprocessing (connect-id
// offset adjusted) value, and GetUID prefers it once set.
type ScanCode struct {
	UID        uint16
	UpdatedUID util.Option[uint16]
	Schedule   Schedule
	Position   Position
}

// NewScanCode constructs a scan code with no schedule or position set yet.
func NewScanCode(uid uint16) *ScanCode {
	return &ScanCode{UID: uid}
}

// Kind implements Identifier.
func (*ScanCode) Kind() IdentifierKind { return KindScanCode }

// SetSchedule implements Scheduled.
func (s *ScanCode) SetSchedule(params []ScheduleParam) { s.Schedule.SetSchedule(params) }

// GetUID returns UpdatedUID if set, otherwise the original source UID.
func (s *ScanCode) GetUID() uint16 {
	if s.UpdatedUID.HasValue() {
		return s.UpdatedUID.Unwrap()
	}

	return s.UID
}

// Kllify implements Identifier.
func (s *ScanCode) Kllify() string {
	return fmt.Sprintf("S0x%02X%s", s.GetUID(), s.Schedule.Kllify())
}

// ============================================================================
// HIDCode
// ============================================================================

// HIDCode is a USB HID usage identifier in one of four usage-page classes.
// It must resolve against the forward dictionary of the locale selected for
// the enclosing context (spec.md section 3).
type HIDCode struct {
	Class    HIDClass
	UID      uint16
	Locale   string
	Schedule Schedule
}

// NewHIDCode constructs a HID code identifier for the given class/uid in the
// given locale.
func NewHIDCode(class HIDClass, uid uint16, locale string) *HIDCode {
	return &HIDCode{class, uid, locale, Schedule{}}
}

// Kind implements Identifier.
func (*HIDCode) Kind() IdentifierKind { return KindHIDCode }

// SetSchedule implements Scheduled.
func (h *HIDCode) SetSchedule(params []ScheduleParam) { h.Schedule.SetSchedule(params) }

// Kllify implements Identifier.
func (h *HIDCode) Kllify() string {
	return fmt.Sprintf("%s0x%02X%s", h.Class.String(), h.UID, h.Schedule.Kllify())
}

// ============================================================================
// Layer
// ============================================================================

// Layer refers to a logical layer transition (shift/latch/lock) or, in its
// plain form, a bare layer index.
type Layer struct {
	LKind    LayerKind
	UID      uint16
	Schedule Schedule
}

// NewLayer constructs a layer identifier.
func NewLayer(kind LayerKind, uid uint16) *Layer {
	return &Layer{kind, uid, Schedule{}}
}

// Kind implements Identifier.
func (*Layer) Kind() IdentifierKind { return KindLayer }

// SetSchedule implements Scheduled.
func (l *Layer) SetSchedule(params []ScheduleParam) { l.Schedule.SetSchedule(params) }

// Kllify implements Identifier.
func (l *Layer) Kllify() string {
	return fmt.Sprintf("%s[%d]%s", l.LKind.String(), l.UID, l.Schedule.Kllify())
}

// ============================================================================
// Animation / AnimationFrame
// ============================================================================

// Animation is a named animation trigger or result.  Its numeric UID is not
// known until analysis assigns it via the name-to-index table built across
// all discovered animations.
type Animation struct {
	Name      string
	State     util.Option[string]
	Modifiers Schedule
	UID       util.Option[uint16]
}

// NewAnimation constructs an animation reference by name.
func NewAnimation(name string) *Animation {
	return &Animation{Name: name}
}

// Kind implements Identifier.
func (*Animation) Kind() IdentifierKind { return KindAnimation }

// SetSchedule implements Scheduled.
func (a *Animation) SetSchedule(params []ScheduleParam) { a.Modifiers.SetSchedule(params) }

// Kllify implements Identifier.
func (a *Animation) Kllify() string {
	if a.State.HasValue() {
		return fmt.Sprintf("A[%s](%s)%s", a.Name, a.State.Unwrap(), a.Modifiers.Kllify())
	}

	return fmt.Sprintf("A[%s]%s", a.Name, a.Modifiers.Kllify())
}

// AnimationFrame identifies one member of an animation's frame set.  It is
// never usable as a trigger, only as a DataAssociation target.
type AnimationFrame struct {
	Name  string
	Index uint16
}

// Kind implements Identifier.
func (*AnimationFrame) Kind() IdentifierKind { return KindAnimationFrame }

// Kllify implements Identifier.
func (f *AnimationFrame) Kllify() string {
	return fmt.Sprintf("A[%s, %d]", f.Name, f.Index)
}

// ============================================================================
// Pixel / PixelAddress / PixelLayer
// ============================================================================

// PixelUIDKind distinguishes how a Pixel's physical source is addressed.
type PixelUIDKind uint8

const (
	// PixelUIDIndex addresses the pixel by a raw numeric index.
	PixelUIDIndex PixelUIDKind = iota
	// PixelUIDScanCode addresses the pixel via a scan code.
	PixelUIDScanCode
	// PixelUIDHID addresses the pixel via a HID code.
	PixelUIDHID
	// PixelUIDAddress addresses the pixel via a PixelAddress.
	PixelUIDAddress
)

// Pixel is a channel-addressable LED.  Its source (uid) is one of a raw
// index, a scan code, a HID code, or a PixelAddress.
type Pixel struct {
	UIDKind  PixelUIDKind
	Index    uint32
	ScanCode *ScanCode
	HID      *HIDCode
	Address  *PixelAddress
	Channels []uint8
	Schedule Schedule
	Position Position
}

// Kind implements Identifier.
func (*Pixel) Kind() IdentifierKind { return KindPixel }

// SetSchedule implements Scheduled.
func (p *Pixel) SetSchedule(params []ScheduleParam) { p.Schedule.SetSchedule(params) }

// Kllify implements Identifier.
func (p *Pixel) Kllify() string {
	switch p.UIDKind {
	case PixelUIDScanCode:
		return fmt.Sprintf("P[%s]", p.ScanCode.Kllify())
	case PixelUIDHID:
		return fmt.Sprintf("P[%s]", p.HID.Kllify())
	case PixelUIDAddress:
		return fmt.Sprintf("P[%s]", p.Address.Kllify())
	default:
		return fmt.Sprintf("P%d", p.Index)
	}
}

// PixelAddress is a mutually-constrained set of optional addressing fields;
// merging two addresses that both define the same non-null field is
// rejected (spec.md section 3).
type PixelAddress struct {
	Index  util.Option[int]
	Row    util.Option[int]
	Col    util.Option[int]
	RelRow util.Option[int]
	RelCol util.Option[int]
}

// Kind implements Identifier.
func (*PixelAddress) Kind() IdentifierKind { return KindPixelAddress }

// Kllify implements Identifier.
func (a *PixelAddress) Kllify() string {
	parts := []string{}
	if a.Index.HasValue() {
		parts = append(parts, fmt.Sprintf("i:%d", a.Index.Unwrap()))
	}

	if a.Row.HasValue() {
		parts = append(parts, fmt.Sprintf("r:%d", a.Row.Unwrap()))
	}

	if a.Col.HasValue() {
		parts = append(parts, fmt.Sprintf("c:%d", a.Col.Unwrap()))
	}

	if a.RelRow.HasValue() {
		parts = append(parts, fmt.Sprintf("rr:%d", a.RelRow.Unwrap()))
	}

	if a.RelCol.HasValue() {
		parts = append(parts, fmt.Sprintf("rc:%d", a.RelCol.Unwrap()))
	}

	out := ""

	for i, p := range parts {
		if i != 0 {
			out += ","
		}

		out += p
	}

	return out
}

// Merge combines this address with another, returning an error if both
// define the same non-null field (the merge is otherwise a simple union).
func (a *PixelAddress) Merge(other *PixelAddress) (*PixelAddress, error) {
	result := *a

	for _, conflict := range []struct {
		name        string
		dst         *util.Option[int]
		src         util.Option[int]
	}{
		{"index", &result.Index, other.Index},
		{"row", &result.Row, other.Row},
		{"col", &result.Col, other.Col},
		{"relRow", &result.RelRow, other.RelRow},
		{"relCol", &result.RelCol, other.RelCol},
	} {
		if conflict.dst.HasValue() && conflict.src.HasValue() {
			return nil, fmt.Errorf("conflicting pixel address field %q", conflict.name)
		}

		if conflict.src.HasValue() {
			*conflict.dst = conflict.src
		}
	}

	return &result, nil
}

// PixelLayer refers to a pixel-channel layer result (PL<N> in source).
type PixelLayer struct {
	UID uint16
}

// Kind implements Identifier.
func (*PixelLayer) Kind() IdentifierKind { return KindPixelLayer }

// Kllify implements Identifier.
func (p *PixelLayer) Kllify() string {
	return fmt.Sprintf("PL%d", p.UID)
}

// ============================================================================
// GenericTrigger
// ============================================================================

// GenericTrigger is a non-scan-code, non-HID trigger source: rotary
// encoders, analog sliders, LEDs exposed as triggers, layer/animation state
// changes, sleep/resume/active transitions, and the debug channel.
type GenericTrigger struct {
	IDCode   GenericTriggerKind
	UID      uint16
	Schedule Schedule
}

// NewGenericTrigger constructs a generic trigger identifier.
func NewGenericTrigger(idcode GenericTriggerKind, uid uint16) *GenericTrigger {
	return &GenericTrigger{idcode, uid, Schedule{}}
}

// Kind implements Identifier.
func (*GenericTrigger) Kind() IdentifierKind { return KindGenericTrigger }

// SetSchedule implements Scheduled.
func (g *GenericTrigger) SetSchedule(params []ScheduleParam) { g.Schedule.SetSchedule(params) }

// Kllify implements Identifier.
func (g *GenericTrigger) Kllify() string {
	return fmt.Sprintf("T[%d,%d]%s", g.IDCode, g.UID, g.Schedule.Kllify())
}

// ============================================================================
// Capability
// ============================================================================

// CapArgValue is an argument value passed to a capability invocation.
type CapArgValue struct {
	// IntValue is used when the argument is a plain (possibly negative)
	// integer literal.
	IntValue int64
	// StringValue is used when the argument is a bracketed/associative
	// value the emitter byte-splits per the definition's declared width.
	StringValue string
	IsString    bool
}

// CapArgID is one formal parameter of a capability definition: a name and
// its byte width.
type CapArgID struct {
	Name  string
	Width uint
}

// CapabilityRef is an invocation of a named capability with concrete
// argument values; it appears only on the result side of a Map expression.
type CapabilityRef struct {
	Name string
	Args []CapArgValue
}

// Kind implements Identifier.
func (*CapabilityRef) Kind() IdentifierKind { return KindCapabilityRef }

// Kllify implements Identifier.
func (c *CapabilityRef) Kllify() string {
	s := c.Name + "("

	for i, a := range c.Args {
		if i != 0 {
			s += ","
		}

		if a.IsString {
			s += a.StringValue
		} else {
			s += fmt.Sprintf("%d", a.IntValue)
		}
	}

	return s + ")"
}

// CapabilityDef is the formal definition of a capability: its target
// function name and the widths of its arguments.
type CapabilityDef struct {
	Name string
	Args []CapArgID
}

// Kind implements Identifier.
func (*CapabilityDef) Kind() IdentifierKind { return KindCapabilityDef }

// Kllify implements Identifier.
func (c *CapabilityDef) Kllify() string {
	s := c.Name + "("

	for i, a := range c.Args {
		if i != 0 {
			s += ","
		}

		s += fmt.Sprintf("%s:%d", a.Name, a.Width)
	}

	return s + ")"
}

// TotalArgWidth returns the total byte width of this definition's argument
// list, used to validate capability invocations at emit time.
func (c *CapabilityDef) TotalArgWidth() uint {
	var total uint
	for _, a := range c.Args {
		total += a.Width
	}

	return total
}

// None is the sentinel capability denoting an explicit no-op result.
type None struct{}

// Kind implements Identifier.
func (None) Kind() IdentifierKind { return KindNone }

// Kllify implements Identifier.
func (None) Kllify() string { return "None" }

// ============================================================================
// UTF8String
// ============================================================================

// UTF8String is an interned string; UID is its index into the emitter's
// shared string table.
type UTF8String struct {
	UID uint32
}

// Kind implements Identifier.
func (*UTF8String) Kind() IdentifierKind { return KindUTF8String }

// Kllify implements Identifier.
func (s *UTF8String) Kllify() string {
	return fmt.Sprintf("UTF8String(%d)", s.UID)
}
