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
package compiler

import (
	"fmt"
	"os"
	"sort"

	"github.com/kiibohd/kll/pkg/kll/analysis"
	"github.com/kiibohd/kll/pkg/kll/ast"
	"github.com/kiibohd/kll/pkg/kll/cache"
	"github.com/kiibohd/kll/pkg/kll/context"
	"github.com/kiibohd/kll/pkg/kll/emit"
	"github.com/kiibohd/kll/pkg/kll/lexer"
	"github.com/kiibohd/kll/pkg/kll/locale"
	"github.com/kiibohd/kll/pkg/kll/log"
	"github.com/kiibohd/kll/pkg/kll/organization"
	"github.com/kiibohd/kll/pkg/kll/parser"
	"github.com/kiibohd/kll/pkg/kll/pool"
	"github.com/kiibohd/kll/pkg/util/source"
)

// Controller drives the ten named stages of spec.md section 4.3 in fixed
// order, recording each stage's outcome and aborting at the first one that
// does not reach StageCompleted.
type Controller struct {
	Config Config

	pool     *pool.Pool
	registry *locale.Registry
	contexts []*context.Context
	offsets  context.OffsetTable
	base     *organization.Organization
	default_ *organization.Organization
	partials map[int]*organization.Organization
	full     *organization.Organization
	report   *analysis.Report

	classifiedByContext []classified
	parsedByContext     []parsedContext

	stages    map[string]StageStatus
	stageList []string
}

// New constructs a controller from cfg, ready to Run.
func New(cfg Config) *Controller {
	return &Controller{
		Config:   cfg,
		registry: locale.NewRegistry(),
		partials: make(map[int]*organization.Organization),
		stages:   make(map[string]StageStatus),
		stageList: []string{
			"CompilerConfiguration", "FileImport", "Preprocessor",
			"OperationClassification", "OperationSpecifics", "OperationOrganization",
			"DataOrganization", "DataFinalization", "DataAnalysis", "CodeGeneration",
		},
	}
}

// StageStatus reports the outcome of one named stage after Run has been
// called, or StageQueued if Run has not reached it.
func (c *Controller) StageStatus(name string) StageStatus {
	return c.stages[name]
}

// Run executes every stage in spec.md section 4.3's fixed order, returning
// the first stage's error if one does not complete.
func (c *Controller) Run() error {
	stages := []func() error{
		c.stageCompilerConfiguration,
		c.stageFileImport,
		c.stagePreprocessor,
		c.stageOperationClassification,
		c.stageOperationSpecifics,
		c.stageOperationOrganization,
		c.stageDataOrganization,
		c.stageDataFinalization,
		c.stageDataAnalysis,
		c.stageCodeGeneration,
	}

	for i, stage := range stages {
		name := c.stageList[i]
		c.stages[name] = StageRunning

		if err := stage(); err != nil {
			c.stages[name] = StageIncomplete
			return fmt.Errorf("%s: %w", name, err)
		}

		c.stages[name] = StageCompleted
		log.Debug(fmt.Sprintf("stage %s completed", name))
	}

	return nil
}

// stageCompilerConfiguration builds the worker pool and validates the
// requested emitter name, per spec.md section 4.3 stage 1.
func (c *Controller) stageCompilerConfiguration() error {
	jobs := c.Config.Jobs
	if c.Config.ParserDebug {
		jobs = 1
	}

	c.pool = pool.New(jobs)

	switch c.Config.Emitter {
	case "", "kiibohd", "kll", "none":
	default:
		return fmt.Errorf("unrecognized emitter %q", c.Config.Emitter)
	}

	if c.Config.Locale == "" {
		c.Config.Locale = "us-ansi"
	}

	if _, err := c.registry.Get(c.Config.Locale); err != nil {
		return err
	}

	return nil
}

type fileTask struct {
	role  context.Role
	layer int
	path  string
}

// stageFileImport reads every source file and wraps it in a Context tagged
// with its command-line role, per spec.md section 4.3 stage 2. Reads are
// parallelized across the worker pool when jobs > 1. When Config.ScratchDir
// is set, each file's raw contents are mirrored into it through pkg/kll/cache
// before parsing; the mirror is not read back by any stage.
func (c *Controller) stageFileImport() error {
	var scratch *cache.Scratch

	if c.Config.ScratchDir != "" {
		s, err := cache.New(c.Config.ScratchDir)
		if err != nil {
			return err
		}

		scratch = s
	}

	var tasks []fileTask

	for _, p := range c.Config.ConfigFiles {
		tasks = append(tasks, fileTask{context.Configuration, 0, p})
	}

	for _, p := range c.Config.GenericFiles {
		tasks = append(tasks, fileTask{context.Generic, 0, p})
	}

	for _, p := range c.Config.BaseFiles {
		tasks = append(tasks, fileTask{context.BaseMap, 0, p})
	}

	for _, p := range c.Config.DefaultFiles {
		tasks = append(tasks, fileTask{context.DefaultMap, 0, p})
	}

	for i, paths := range c.Config.PartialFiles {
		// Partial occurrences are 1-indexed: layer 0 is reserved for the
		// default map (analysis.LayerResult's "layer 0 is the default map,
		// layer N>0 is partial map N").
		layer := i + 1
		for _, p := range paths {
			tasks = append(tasks, fileTask{context.PartialMap, layer, p})
		}
	}

	contexts, err := pool.Map(c.pool, tasks, func(t fileTask) (*context.Context, error) {
		bytes, err := os.ReadFile(t.path)
		if err != nil {
			return nil, err
		}

		if scratch != nil {
			if _, err := scratch.Write(t.path, bytes); err != nil {
				return nil, err
			}
		}

		file := source.NewSourceFile(t.path, bytes)
		ctx := context.New(t.role, t.layer, file)
		ctx.HIDMapping = c.Config.Locale

		return ctx, nil
	})
	if err != nil {
		return err
	}

	c.contexts = contexts

	return nil
}

// stagePreprocessor runs the two-pass connect-id scan over every imported
// context, per spec.md section 4.3 stage 3.
func (c *Controller) stagePreprocessor() error {
	c.offsets = context.Preprocess(c.contexts)
	return nil
}

type classified struct {
	ctx   *context.Context
	stmts []lexer.Statement
}

// stageOperationClassification runs the classifier over every context's
// source text, per spec.md section 4.3 stage 4.
func (c *Controller) stageOperationClassification() error {
	results, err := pool.Map(c.pool, c.contexts, func(ctx *context.Context) (classified, error) {
		stmts, errs := lexer.Classify(ctx.File)
		if len(errs) > 0 {
			return classified{}, fmt.Errorf("%s", errs[0].Error())
		}

		return classified{ctx, stmts}, nil
	})
	if err != nil {
		return err
	}

	c.classifiedByContext = results

	return nil
}

// stageOperationSpecifics runs the operator-specific parser over every
// classified statement, per spec.md section 4.3 stage 5. Per spec.md section
// 5, this stage serializes to one worker whenever parser-debug tracing is
// enabled since the trace buffer is not safe for concurrent use; the pool
// was already sized to 1 job in that case by stageCompilerConfiguration, so
// pool.Map's existing concurrency bound handles this without special-casing
// here.
func (c *Controller) stageOperationSpecifics() error {
	dict, err := c.registry.Get(c.Config.Locale)
	if err != nil {
		return err
	}

	results, err := pool.Map(c.pool, c.classifiedByContext, func(cl classified) (parsedContext, error) {
		var exprs []ast.Expression

		for _, stmt := range cl.stmts {
			es, err := parser.ParseStatement(stmt, dict)
			if err != nil {
				return parsedContext{}, fmt.Errorf("%s: %w", cl.ctx.File.Filename(), err)
			}

			exprs = append(exprs, es...)
		}

		return parsedContext{cl.ctx, exprs}, nil
	})
	if err != nil {
		return err
	}

	c.parsedByContext = results

	return nil
}

type parsedContext struct {
	ctx   *context.Context
	exprs []ast.Expression
}

// stageOperationOrganization routes every parsed expression into its
// context's Organization, per spec.md section 4.3 stage 6. Map expressions
// are stamped with their source context's connect id first, so later stages
// (DataAnalysis's scan-code offsetting) can look up the right offset per
// expression regardless of which context it was merged in from.
func (c *Controller) stageOperationOrganization() error {
	for _, pc := range c.parsedByContext {
		for _, expr := range pc.exprs {
			if m, ok := expr.(*ast.Map); ok {
				m.ConnectID = uint16(pc.ctx.ConnectID)
			}

			if err := pc.ctx.Organization.AddExpression(expr); err != nil {
				return err
			}
		}
	}

	return nil
}

// stageDataOrganization groups contexts by role (partials additionally by
// layer index) and merges within each group in command-line order, per
// spec.md section 4.3 stage 7.
func (c *Controller) stageDataOrganization() error {
	c.base = organization.New()
	c.default_ = organization.New()

	layers := make(map[int]bool)

	for _, ctx := range c.contexts {
		switch ctx.Role {
		case context.Configuration, context.Generic, context.BaseMap:
			c.base.Merge(ctx.Organization, ctx.Role == context.BaseMap)
		case context.DefaultMap:
			c.default_.Merge(ctx.Organization, false)
		case context.PartialMap:
			layers[ctx.LayerIndex] = true

			if _, ok := c.partials[ctx.LayerIndex]; !ok {
				c.partials[ctx.LayerIndex] = organization.New()
			}

			c.partials[ctx.LayerIndex].Merge(ctx.Organization, false)
		}
	}

	return nil
}

// stageDataFinalization builds the base/default/partial/full layer stacks of
// spec.md section 4.3 stage 8: `base = Configuration ⊕ Generic ⊕ BaseMap`,
// `default = base ⊕ DefaultMap`, `partial[i] = base ⊕ PartialMap[i]`,
// `full = default ⊕ all partials`. Cleanup runs whenever a non-BaseMap group
// is overlaid, dropping any Map expression still flagged BaseMap==true.
func (c *Controller) stageDataFinalization() error {
	defaultOrg := organization.New()
	defaultOrg.Merge(c.base, true)
	defaultOrg.Merge(c.default_, false)
	defaultOrg.Cleanup()
	c.default_ = defaultOrg

	c.full = organization.New()
	c.full.Merge(c.default_, true)

	layerIdx := make([]int, 0, len(c.partials))
	for i := range c.partials {
		layerIdx = append(layerIdx, i)
	}

	sort.Ints(layerIdx)

	finalPartials := make(map[int]*organization.Organization, len(c.partials))

	for _, i := range layerIdx {
		p := organization.New()
		p.Merge(c.base, true)
		p.Merge(c.partials[i], false)
		p.Cleanup()
		finalPartials[i] = p

		c.full.Merge(p, false)
	}

	c.partials = finalPartials
	c.full.Cleanup()

	return nil
}

// stageDataAnalysis delegates to pkg/kll/analysis, per spec.md section 4.3
// stage 9.
func (c *Controller) stageDataAnalysis() error {
	report, err := analysis.Analyze(analysis.Input{
		Base:     c.base,
		Default:  c.default_,
		Partials: c.partials,
		Full:     c.full,
		Offsets:  c.offsets,
	})
	if err != nil {
		return err
	}

	c.report = report

	return nil
}

// stageCodeGeneration delegates to pkg/kll/emit, per spec.md section 4.3
// stage 10.
func (c *Controller) stageCodeGeneration() error {
	switch c.Config.Emitter {
	case "none":
		return nil
	case "kll":
		return emit.EmitKLL(c.report, emit.KLLOptions{
			Template: c.Config.KLLTemplate,
			Output:   c.Config.KLLOutput,
		})
	default:
		if err := emit.EmitKiibohd(c.report, emit.KiibohdOptions{
			Template: c.Config.KiibohdTemplate,
			Output:   c.Config.KiibohdOutput,
		}); err != nil {
			return err
		}
	}

	if c.Config.JSONOutput != "" {
		return emit.EmitJSON(c.report, c.Config.JSONOutput)
	}

	return nil
}

// Report returns the analysis report computed by the DataAnalysis stage.
func (c *Controller) Report() *analysis.Report {
	return c.report
}
