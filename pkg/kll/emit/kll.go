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
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/organization"
)

// EmitKLL implements spec.md section 4.5's .kll round-trip backend:
// canonicalized base.kll, default.kll, partial-N.kll (one per analyzed
// layer) and a final.kll that concatenates the fully reduced, offset-applied
// mapping set, each rendered through every expression's own Kllify.
func EmitKLL(report *analysis.Report, opts KLLOptions) error {
	dir := outputDir(opts.Output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	prefix, err := templatePrefix(opts.Template)
	if err != nil {
		return err
	}

	if err := writeKllFile(filepath.Join(dir, "base.kll"), prefix, kllifyOrganization(report.Base)); err != nil {
		return err
	}

	if err := writeKllFile(filepath.Join(dir, "default.kll"), prefix, kllifyOrganization(report.Default)); err != nil {
		return err
	}

	for _, l := range report.Layers {
		if l.Index == 0 {
			continue
		}

		name := fmt.Sprintf("partial-%d.kll", l.Index)
		if err := writeKllFile(filepath.Join(dir, name), prefix, kllifyMappings(l.Mappings)); err != nil {
			return err
		}
	}

	var final []*ast.Map
	for _, l := range report.Layers {
		final = append(final, l.Mappings...)
	}

	return writeKllFile(filepath.Join(dir, "final.kll"), prefix, kllifyMappings(final))
}

func templatePrefix(templateDir string) (string, error) {
	if templateDir == "" {
		return "", nil
	}

	data, err := os.ReadFile(filepath.Join(templateDir, "prefix.kll"))
	if os.IsNotExist(err) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

func writeKllFile(path, prefix, body string) error {
	var sb strings.Builder

	sb.WriteString("# Generated by the KLL compiler. Do not edit by hand.\n")

	if prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString("\n")
	}

	sb.WriteString(body)

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// kllifyOrganization renders every surviving expression across an
// Organization's stores in store-then-arrival order, skipping the Mapping
// store (callers that need mappings pass an already-reduced/offset slice
// instead, since Organization.Mapping.Materialize groups by trigger key
// rather than preserving a renderable order).
func kllifyOrganization(org *organization.Organization) string {
	var sb strings.Builder

	for _, store := range []*organization.Store{org.Variables, org.Defines, org.Capabilities, org.Animations, org.AnimationFrames, org.PixelPositions, org.ScanCodePositions, org.PixelChannel} {
		for _, e := range store.Log {
			if !e.Enabled {
				continue
			}

			sb.WriteString(e.Expr.Kllify())
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func kllifyMappings(mappings []*ast.Map) string {
	var sb strings.Builder

	for _, m := range mappings {
		sb.WriteString(m.Kllify())
		sb.WriteString("\n")
	}

	return sb.String()
}
