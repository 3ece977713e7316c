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
package lexer_test

import (
	"testing"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/lexer"
	"github.com/kiibohd/kll/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, text string) []lexer.Statement {
	t.Helper()

	file := source.NewSourceFile("test.kll", []byte(text))
	stmts, errs := lexer.Classify(file)
	require.Empty(t, errs)

	return stmts
}

func TestClassifySimpleAssignment(t *testing.T) {
	stmts := classify(t, `x = 1;`)
	require.Len(t, stmts, 1)
	assert.Equal(t, "x ", stmts[0].LHS)
	assert.Equal(t, ast.OpReplace, stmts[0].Op.MapOp)
	assert.Equal(t, lexer.KindAssignment, stmts[0].Op.Kind)
	assert.Equal(t, " 1", stmts[0].RHS)
}

func TestClassifyLongestMatchFirst(t *testing.T) {
	stmts := classify(t, `S0x10 i:+ U"A";`)
	require.Len(t, stmts, 1)
	assert.Equal(t, "i:+", stmts[0].Op.Text)
	assert.True(t, stmts[0].Op.Isolated)
	assert.Equal(t, ast.OpAppend, stmts[0].Op.MapOp)
}

func TestClassifyDistinguishesLazyFromReplace(t *testing.T) {
	stmts := classify(t, `S0x10 :: U"A"; S0x11 : U"B";`)
	require.Len(t, stmts, 2)
	assert.Equal(t, ast.OpLazy, stmts[0].Op.MapOp)
	assert.Equal(t, ast.OpReplace, stmts[1].Op.MapOp)
}

func TestClassifyIgnoresOperatorInsideQuotes(t *testing.T) {
	stmts := classify(t, `S0x10 : U"A:B";`)
	require.Len(t, stmts, 1)
	assert.Equal(t, ` U"A:B"`, stmts[0].RHS)
}

func TestClassifySkipsComments(t *testing.T) {
	stmts := classify(t, "# a comment\nx = 1;")
	require.Len(t, stmts, 1)
	assert.Equal(t, "x ", stmts[0].LHS)
}

func TestClassifyNameAssociationAndDataAssociation(t *testing.T) {
	stmts := classify(t, `usbKeyOut => capability(arg:1); A[fire] <= state(P);`)
	require.Len(t, stmts, 2)
	assert.Equal(t, lexer.KindNameAssociation, stmts[0].Op.Kind)
	assert.Equal(t, lexer.KindDataAssociation, stmts[1].Op.Kind)
}

func TestClassifyMissingTerminatorReportsError(t *testing.T) {
	file := source.NewSourceFile("test.kll", []byte(`x = 1`))
	_, errs := lexer.Classify(file)
	require.NotEmpty(t, errs)
}
