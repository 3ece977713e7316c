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

// Package lexer implements the first stage of spec.md section 4.1's
// tokenizer: a classifier which splits a file into LOperatorData / Operator /
// ROperatorData / EndOfLine spans. There is no separate per-operator second
// stage here; pkg/kll/parser scans each side's raw text directly. The
// classifier is a hand-rolled rune scanner built on source.Span, source.File
// and source.SyntaxError: it tries the recognized operators as an ordered
// list of alternatives while tracking string/paren/bracket nesting.
package lexer

import (
	"fmt"

	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/util/source"
)

// Operator identifies which of the classifier's recognized operators
// terminated a statement's left-hand side.
type Operator struct {
	// Text is the literal operator text, e.g. "i:+".
	Text string
	// MapOp is populated when this is a map-family operator.
	MapOp ast.MapOperator
	// Isolated is true when the operator carried the 'i' isolation prefix.
	Isolated bool
	// Kind classifies which Expression form this operator introduces.
	Kind OperatorKind
}

// OperatorKind distinguishes the four Expression forms by their classifying
// operator.
type OperatorKind uint8

const (
	// KindAssignment is '='.
	KindAssignment OperatorKind = iota
	// KindNameAssociation is '=>'.
	KindNameAssociation
	// KindDataAssociation is '<='.
	KindDataAssociation
	// KindMap is one of ':', '::', ':+', ':-' (optionally 'i'-prefixed).
	KindMap
)

// operatorSpecs lists every recognized operator, longest-match-first so that
// e.g. "i:+" is preferred over "i:" followed by stray "+". This mirrors the
// classifier spec's ordered-alternative requirement.
var operatorSpecs = []Operator{
	{"i:+", ast.OpAppend, true, KindMap},
	{"i:-", ast.OpRemove, true, KindMap},
	{"i::", ast.OpLazy, true, KindMap},
	{"i:", ast.OpReplace, true, KindMap},
	{":+", ast.OpAppend, false, KindMap},
	{":-", ast.OpRemove, false, KindMap},
	{"::", ast.OpLazy, false, KindMap},
	{":", ast.OpReplace, false, KindMap},
	{"=>", ast.OpReplace, false, KindNameAssociation},
	{"<=", ast.OpReplace, false, KindDataAssociation},
	{"=", ast.OpReplace, false, KindAssignment},
}

// Statement is one classified ';'-terminated expression: the raw text either
// side of its operator, plus the operator itself and the overall span for
// error reporting.
type Statement struct {
	LHS  string
	Op   Operator
	RHS  string
	Span source.Span
}

// Classify splits a source file into classified statements.  Comments (from
// '#' to end of line) and insignificant whitespace are discarded. Strings,
// parenthesized groups, bracketed groups, and repeated statement-internal
// operator occurrences are not split on: only the first operator found
// outside any such nesting, before the next unnested ';', classifies the
// statement. Misplaced operators (a second occurrence before ';') are
// demoted and remain literal text within the RHS, per spec.md section 4.1.
func Classify(file *source.File) ([]Statement, []source.SyntaxError) {
	var (
		statements []Statement
		errs       []source.SyntaxError
		contents   = file.Contents()
		n          = len(contents)
		i          = 0
	)

	for i < n {
		i = skipInsignificant(contents, i)
		if i >= n {
			break
		}

		start := i
		opStart, op, ok := findOperator(contents, i, n)

		if !ok {
			span := source.NewSpan(start, n)
			errs = append(errs, *file.SyntaxError(span, "expected an operator before end of file"))
			break
		}

		lhs := string(contents[start:opStart])
		rhsStart := opStart + len([]rune(op.Text))
		end := findStatementEnd(contents, rhsStart, n)

		if end < 0 {
			span := source.NewSpan(rhsStart, n)
			errs = append(errs, *file.SyntaxError(span, "missing terminating ';'"))
			break
		}

		rhs := string(contents[rhsStart:end])
		statements = append(statements, Statement{
			LHS:  lhs,
			Op:   op,
			RHS:  rhs,
			Span: source.NewSpan(start, end+1),
		})
		i = end + 1
	}

	return statements, errs
}

// skipInsignificant advances past whitespace and '#' comments.
func skipInsignificant(contents []rune, i int) int {
	n := len(contents)
	for i < n {
		switch {
		case contents[i] == '#':
			for i < n && contents[i] != '\n' {
				i++
			}
		case contents[i] == ' ' || contents[i] == '\t' || contents[i] == '\r' || contents[i] == '\n':
			i++
		default:
			return i
		}
	}

	return i
}

// findOperator scans forward from i looking for the first recognized
// operator that occurs outside string/paren/bracket nesting.
func findOperator(contents []rune, i, n int) (int, Operator, bool) {
	depth := 0

	for i < n {
		switch contents[i] {
		case '\'', '"':
			i = skipQuoted(contents, i, n)
			continue
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}

		if depth == 0 {
			if op, matched := matchOperator(contents, i, n); matched {
				return i, op, true
			}
		}

		i++
	}

	return 0, Operator{}, false
}

// matchOperator tries every operator spec (longest first) at position i.
func matchOperator(contents []rune, i, n int) (Operator, bool) {
	for _, spec := range operatorSpecs {
		runes := []rune(spec.Text)
		if i+len(runes) > n {
			continue
		}

		if string(contents[i:i+len(runes)]) == spec.Text {
			return spec, true
		}
	}

	return Operator{}, false
}

// findStatementEnd finds the unnested ';' terminating a statement, folding
// any misplaced operator occurrences (and nested quotes/parens/brackets)
// into the right-hand-side text as plain data.
func findStatementEnd(contents []rune, i, n int) int {
	depth := 0

	for i < n {
		switch contents[i] {
		case '\'', '"':
			i = skipQuoted(contents, i, n)
			continue
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ';':
			if depth == 0 {
				return i
			}
		}

		i++
	}

	return -1
}

// skipQuoted returns the index just past a quoted string starting at i,
// honoring backslash escapes.
func skipQuoted(contents []rune, i, n int) int {
	quote := contents[i]
	i++

	for i < n {
		if contents[i] == '\\' && i+1 < n {
			i += 2
			continue
		}

		if contents[i] == quote {
			return i + 1
		}

		i++
	}

	return i
}

// String renders a Statement for diagnostics.
func (s Statement) String() string {
	return fmt.Sprintf("%q %s %q", s.LHS, s.Op.Text, s.RHS)
}
