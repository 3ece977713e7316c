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
package analysis_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/context"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/kiibohd/kll/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixelPositionAssoc(idx uint32, x, y float64) *ast.DataAssociation {
	return &ast.DataAssociation{
		DAKind:      ast.DataPixelPosition,
		Association: []ast.Identifier{&ast.Pixel{UIDKind: ast.PixelUIDIndex, Index: idx}},
		Position:    ast.Position{X: util.Some(x), Y: util.Some(y)},
	}
}

func TestBuildPixelGridEmptyWhenNoPositions(t *testing.T) {
	report, err := analysis.Analyze(analysis.Input{
		Base:    organization.New(),
		Default: organization.New(),
		Full:    organization.New(),
		Offsets: context.OffsetTable{},
	})
	require.NoError(t, err)

	require.NotNil(t, report.PixelGrid)
	assert.Equal(t, 0, report.PixelGrid.Rows)
	assert.Equal(t, 0, report.PixelGrid.Cols)
}

func TestBuildPixelGridPlacesDistinctPositions(t *testing.T) {
	full := organization.New()
	full.PixelPositions.Add(pixelPositionAssoc(1, 0, 0))
	full.PixelPositions.Add(pixelPositionAssoc(2, 1, 0))

	report, err := analysis.Analyze(analysis.Input{
		Base:    organization.New(),
		Default: organization.New(),
		Full:    full,
		Offsets: context.OffsetTable{},
	})
	require.NoError(t, err)

	grid := report.PixelGrid
	require.NotNil(t, grid)
	assert.Len(t, grid.Entries, 2)
	assert.Equal(t, 2, grid.Cols)
}

func TestBuildPixelGridCollisionKeepsEarlierEntry(t *testing.T) {
	full := organization.New()
	full.PixelPositions.Add(pixelPositionAssoc(1, 0, 0))
	full.PixelPositions.Add(pixelPositionAssoc(2, 0, 0))

	report, err := analysis.Analyze(analysis.Input{
		Base:    organization.New(),
		Default: organization.New(),
		Full:    full,
		Offsets: context.OffsetTable{},
	})
	require.NoError(t, err)

	grid := report.PixelGrid
	require.NotNil(t, grid)
	require.Len(t, grid.Entries, 1)
	assert.Equal(t, "P1", grid.Entries[0].Key)
}
