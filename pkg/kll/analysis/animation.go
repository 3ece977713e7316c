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
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/kiibohd/kll/pkg/util"
)

// AnimationSetting is one reconciled entry of spec.md section 4.4's
// "Animation settings reconciliation": either an animation's seeded
// defaults, or one reference's modifiers merged underneath those defaults.
type AnimationSetting struct {
	Name      string
	Modifiers ast.Schedule
}

// assignAnimationUIDs builds the name->index table of spec.md section 3's
// Animation.UID note ("assigned during analysis via a name→index table"):
// discovery order is every DataAssociation{Animation} default-settings
// declaration (base, then default, then partials by layer index), followed
// by any animation name first seen as a map trigger/result that was not
// already declared.
func assignAnimationUIDs(base, def *organization.Organization, partials map[int]*organization.Organization, reduced map[int][]*ast.Map) map[string]uint16 {
	uids := make(map[string]uint16)

	var next uint16

	assign := func(name string) {
		if _, ok := uids[name]; !ok {
			uids[name] = next
			next++
		}
	}

	orgs := []*organization.Organization{base, def}
	for _, i := range sortedIntKeys(partials) {
		orgs = append(orgs, partials[i])
	}

	for _, org := range orgs {
		if org == nil {
			continue
		}

		for _, name := range animationDefaultNames(org) {
			assign(name)
		}
	}

	for _, n := range sortedIntKeys(reduced) {
		for _, m := range reduced[n] {
			forEachAnimation(m, func(a *ast.Animation) { assign(a.Name) })
		}
	}

	return uids
}

// animationDefaultNames walks an Organization's Animations store in its
// merge-log arrival order, returning the distinct animation names named by
// DataAssociation{Animation} declarations.
func animationDefaultNames(org *organization.Organization) []string {
	seen := make(map[string]bool)

	var names []string

	for _, e := range org.Animations.Log {
		if !e.Enabled {
			continue
		}

		da, ok := e.Expr.(*ast.DataAssociation)
		if !ok {
			continue
		}

		for _, member := range da.Association {
			a, ok := member.(*ast.Animation)
			if !ok || seen[a.Name] {
				continue
			}

			seen[a.Name] = true
			names = append(names, a.Name)
		}
	}

	return names
}

func forEachAnimation(m *ast.Map, fn func(*ast.Animation)) {
	for _, seq := range []ast.Sequence{m.Triggers, m.Results} {
		for _, combo := range seq {
			for _, id := range combo {
				if a, ok := id.(*ast.Animation); ok {
					fn(a)
				}
			}
		}
	}
}

// fillAnimationUIDs assigns the analysis-discovered uid to every Animation
// identifier referenced by m, per spec.md section 4.4's "Animation triggers
// have their uid filled from the animation name→uid table built earlier."
func fillAnimationUIDs(m *ast.Map, uids map[string]uint16) {
	for _, seq := range []ast.Sequence{m.Triggers, m.Results} {
		for _, combo := range seq {
			for _, id := range combo {
				if a, ok := id.(*ast.Animation); ok {
					if uid, found := uids[a.Name]; found {
						a.UID = util.Some(uid)
					}
				}
			}
		}
	}
}

// reconcileAnimationSettings implements spec.md section 4.4's reconciliation
// pass: seed defaults from every DataAssociation{Animation} in the full
// layer stack, then for every Animation reference found in a map result,
// merge the default modifier list underneath the reference's own modifiers
// (reference wins, defaults fill gaps). Results are deduplicated by
// stringification and returned in discovery order.
func reconcileAnimationSettings(full *organization.Organization, allSurviving []*ast.Map) []AnimationSetting {
	defaultNames := animationDefaultNames(full)
	defaults := orderedDefaults(full)

	seen := make(map[string]bool)

	var out []AnimationSetting

	addSetting := func(name string, modifiers ast.Schedule) {
		text := name + modifiers.Kllify()
		if seen[text] {
			return
		}

		seen[text] = true
		out = append(out, AnimationSetting{Name: name, Modifiers: modifiers})
	}

	for _, name := range defaultNames {
		addSetting(name, defaults[name])
	}

	for _, m := range allSurviving {
		for _, combo := range m.Results {
			for _, id := range combo {
				a, ok := id.(*ast.Animation)
				if !ok {
					continue
				}

				merged := mergeAnimationModifiers(a.Modifiers, defaults[a.Name])
				addSetting(a.Name, merged)
			}
		}
	}

	return out
}

// orderedDefaults returns the seeded animation->defaults map in the
// Animations store's merge-log arrival order, since Go map iteration order
// is not stable and spec.md requires discovery-order output.
func orderedDefaults(full *organization.Organization) map[string]ast.Schedule {
	names := animationDefaultNames(full)
	defaults := make(map[string]ast.Schedule, len(names))

	for _, e := range full.Animations.Log {
		if !e.Enabled {
			continue
		}

		da, ok := e.Expr.(*ast.DataAssociation)
		if !ok {
			continue
		}

		for _, member := range da.Association {
			if a, ok := member.(*ast.Animation); ok {
				defaults[a.Name] = da.AnimationSettings
			}
		}
	}

	ordered := make(map[string]ast.Schedule, len(names))
	for _, n := range names {
		ordered[n] = defaults[n]
	}

	return ordered
}

// mergeAnimationModifiers fills any parameter class missing from reference
// with the matching class from defaults, leaving reference's own parameters
// untouched (reference wins, defaults fill gaps).
func mergeAnimationModifiers(reference, defaults ast.Schedule) ast.Schedule {
	have := make(map[ast.ScheduleParamClass]bool)
	for _, p := range reference.Params {
		have[p.Class] = true
	}

	merged := ast.Schedule{Params: append([]ast.ScheduleParam{}, reference.Params...)}

	for _, p := range defaults.Params {
		if !have[p.Class] {
			merged.Params = append(merged.Params, p)
		}
	}

	return merged
}
