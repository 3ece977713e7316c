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

// Package cache is a thin wrapper around the preprocessor's scratch
// directory (spec.md section 6, "Persisted state"): it is deliberately kept
// small, per spec.md section 1's framing of file I/O and preprocessor
// caching as unremarkable plumbing.
package cache

import (
	"os"
	"path/filepath"
	"strings"
)

// Scratch mirrors source files to a scratch directory. It only writes: no
// code reads the mirrored files back. Concurrent runs against the same path
// are unsupported, matching spec.md section 5.
type Scratch struct {
	dir string
}

// New constructs a Scratch rooted at dir, creating it if necessary.
func New(dir string) (*Scratch, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Scratch{dir: dir}, nil
}

// Write mirrors one file's contents, as given, under
// "<path-encoded>@<base>_processed.<ext>", per spec.md section 6.
func (s *Scratch) Write(originalPath string, contents []byte) (string, error) {
	encoded := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(filepath.Dir(originalPath))
	base := strings.TrimSuffix(filepath.Base(originalPath), filepath.Ext(originalPath))
	ext := strings.TrimPrefix(filepath.Ext(originalPath), ".")

	target := filepath.Join(s.dir, encoded+"@"+base+"_processed."+ext)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	if err := os.WriteFile(target, contents, 0o644); err != nil {
		return "", err
	}

	return target, nil
}
