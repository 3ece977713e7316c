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
	"math"
	"sort"
	"strconv"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/log"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/kiibohd/kll/pkg/util"
)

// PixelGridEntry places one pixel (identified by its canonical Kllify key)
// into a cell of the display grid.
type PixelGridEntry struct {
	Key string
	Row int
	Col int
}

// PixelGrid is the result of spec.md section 4.4's "Pixel display grid"
// pass: the configured grid geometry plus the row/column cell each
// discovered pixel/scan-code position was placed into.
type PixelGrid struct {
	UnitSize        int
	ColumnSize      int
	RowSize         int
	ColumnDirection int
	RowDirection    int
	Rows            int
	Cols            int
	Cells           [][]string // Cells[row][col] holds a placed entry's Key, or "" when empty.
	Entries         []PixelGridEntry
}

// buildPixelGrid reads the Pixel_DisplayMapping_* configuration defines,
// merges pixelPositions and scanCodePositions into one placement table, and
// packs each into a 2D grid cell, per spec.md section 4.4. Collisions keep
// the earlier placement and log a warning for the dropped one, matching
// spec.md's "the later pixel is dropped from the grid."
func buildPixelGrid(full *organization.Organization) (*PixelGrid, error) {
	unitSize := intVariable(full, "Pixel_DisplayMapping_UnitSize", 1)
	colSize := intVariable(full, "Pixel_DisplayMapping_ColumnSize", 1)
	rowSize := intVariable(full, "Pixel_DisplayMapping_RowSize", 1)
	colDir := intVariable(full, "Pixel_DisplayMapping_ColumnDirection", 1)
	rowDir := intVariable(full, "Pixel_DisplayMapping_RowDirection", 1)

	positions := mergedPositions(full)
	if len(positions) == 0 {
		return &PixelGrid{
			UnitSize: unitSize, ColumnSize: colSize, RowSize: rowSize,
			ColumnDirection: colDir, RowDirection: rowDir,
		}, nil
	}

	minX, maxX, minY, maxY := positionBounds(positions)

	cols := gridExtent(minX, maxX, unitSize, colSize)
	rows := gridExtent(minY, maxY, unitSize, rowSize)

	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}

	var entries []PixelGridEntry

	occupied := make(map[[2]int]string)

	for _, key := range positionOrder(positions) {
		pos := positions[key]

		col := placeCell(pos.X, minX, unitSize, colSize, colDir, cols)
		row := placeCell(pos.Y, minY, unitSize, rowSize, rowDir, rows)

		cellKey := [2]int{row, col}

		if existing, taken := occupied[cellKey]; taken {
			log.Warnf("pixel grid collision at (%d,%d): keeping %q, dropping %q", row, col, existing, key)
			continue
		}

		occupied[cellKey] = key
		cells[row][col] = key
		entries = append(entries, PixelGridEntry{Key: key, Row: row, Col: col})
	}

	return &PixelGrid{
		UnitSize: unitSize, ColumnSize: colSize, RowSize: rowSize,
		ColumnDirection: colDir, RowDirection: rowDir,
		Rows: rows, Cols: cols, Cells: cells, Entries: entries,
	}, nil
}

func intVariable(org *organization.Organization, name string, fallback int) int {
	data := org.Variables.Materialize()

	assign, ok := data["="+name].(*ast.Assignment)
	if !ok || len(assign.Values) == 0 {
		return fallback
	}

	v, err := strconv.Atoi(assign.Values[0])
	if err != nil {
		return fallback
	}

	return v
}

// mergedPositions implements "merge into a single {uid -> {x,y,z}} table":
// pixelPositions and scanCodePositions are merged by their canonical Kllify
// text, which stands in for the shared-uid concept since both stores narrow
// every DataAssociation to a single member (see organization.Organization's
// addDataAssociation).
func mergedPositions(full *organization.Organization) map[string]ast.Position {
	out := make(map[string]ast.Position)

	for _, store := range []*organization.Store{full.PixelPositions, full.ScanCodePositions} {
		for _, e := range store.Log {
			if !e.Enabled {
				continue
			}

			da, ok := e.Expr.(*ast.DataAssociation)
			if !ok || len(da.Association) != 1 {
				continue
			}

			key := da.Association[0].Kllify()

			existing := out[key]
			existing.UpdatePositions(da.Position)
			out[key] = existing
		}
	}

	return out
}

func positionOrder(positions map[string]ast.Position) []string {
	keys := make([]string, 0, len(positions))
	for k := range positions {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func positionBounds(positions map[string]ast.Position) (minX, maxX, minY, maxY float64) {
	first := true

	for _, pos := range positions {
		x := axisOrZero(pos.X)
		y := axisOrZero(pos.Y)

		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false

			continue
		}

		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)
	}

	return
}

func axisOrZero(opt util.Option[float64]) float64 {
	if opt.HasValue() {
		return opt.Unwrap()
	}

	return 0
}

func gridExtent(min, max float64, unitSize, cellSize int) int {
	if unitSize <= 0 {
		unitSize = 1
	}

	span := (max - min) / float64(unitSize) * float64(cellSize)

	return int(math.Round(span)) + cellSize
}

func placeCell(axis util.Option[float64], min float64, unitSize, cellSize, direction, extent int) int {
	if unitSize <= 0 {
		unitSize = 1
	}

	v := axisOrZero(axis)
	cell := int(math.Round((v - min) / float64(unitSize) * float64(cellSize)))

	if direction < 0 {
		cell = extent - 1 - cell
	}

	if cell < 0 {
		cell = 0
	}

	if cell >= extent {
		cell = extent - 1
	}

	return cell
}
