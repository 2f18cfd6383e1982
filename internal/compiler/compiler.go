package compiler

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/blueprint-graph/compiler/internal/blueprint"
	"github.com/blueprint-graph/compiler/internal/dependency"
	"github.com/blueprint-graph/compiler/internal/document"
	"github.com/blueprint-graph/compiler/internal/layout"
	"github.com/blueprint-graph/compiler/internal/logger"
	"github.com/blueprint-graph/compiler/internal/registry"
	"github.com/blueprint-graph/compiler/internal/result"
	"github.com/blueprint-graph/compiler/internal/validate"
)

// Compiler turns blueprint documents into a laid-out dependency graph and a
// list of diagnostics. It holds no per-document state and is safe for
// concurrent use.
type Compiler struct {
	opts   Options
	reg    *registry.Registry
	engine *layout.Engine
	log    *zap.Logger
}

// GraphResult is the graph view of a document. On a parse failure Nodes and
// Edges are empty and Error holds the message.
type GraphResult struct {
	Nodes []layout.Node     `json:"nodes"`
	Edges []dependency.Edge `json:"edges"`
	Error string            `json:"error,omitempty"`
}

// Result is the full compilation of one document.
type Result struct {
	Name        string              `json:"name,omitempty"`
	Success     bool                `json:"success"`
	Graph       GraphResult         `json:"graph"`
	Diagnostics []result.Diagnostic `json:"diagnostics"`
	// Order lists resources prerequisites first and Waves groups them into
	// provisioning rounds; both are empty when the graph has a cycle.
	Order []string   `json:"order,omitempty"`
	Waves [][]string `json:"waves,omitempty"`
	Error string     `json:"error,omitempty"`
}

// Source is a named document for CompileAll.
type Source struct {
	Name string
	Text string
}

// New returns a new compiler with the given options.
func New(opts Options) *Compiler {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}
	c := &Compiler{
		opts:   opts,
		reg:    opts.Registry,
		engine: layout.New(opts.Layout),
		log:    opts.Logger,
	}
	if c.reg == nil {
		c.reg = registry.Default
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	return c
}

// Registry returns the type registry in use.
func (c *Compiler) Registry() *registry.Registry { return c.reg }

// Graph parses text and returns its laid-out dependency graph.
func (c *Compiler) Graph(text string) (out GraphResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("graph stage panicked", zap.Any("panic", r))
			out = emptyGraph(fmt.Sprint(r))
		}
	}()

	bp, err := c.extract(text)
	if err != nil {
		return emptyGraph(err.Error())
	}
	return c.graph(bp)
}

// Validate parses text and returns every diagnostic. Parse failures are
// returned as the error.
func (c *Compiler) Validate(text string) ([]result.Diagnostic, error) {
	bp, err := c.extract(text)
	if err != nil {
		return nil, err
	}
	return c.validate(bp), nil
}

// Compile produces the graph, diagnostics and provisioning order of a
// document from a single extraction. A parse failure is reported both as
// Error and as a single parse_error diagnostic.
func (c *Compiler) Compile(text string) *Result {
	bp, err := c.extract(text)
	if err != nil {
		return &Result{
			Graph: emptyGraph(err.Error()),
			Diagnostics: []result.Diagnostic{{
				Type: result.TypeParse, Severity: result.SeverityError,
				Message: err.Error(), Suggestion: "Fix the document syntax",
			}},
			Error: err.Error(),
		}
	}

	out := &Result{
		Graph:       c.graph(bp),
		Diagnostics: c.validate(bp),
	}
	out.Success = !result.HasErrors(out.Diagnostics)
	if ordered, waves, err := dependency.Resolve(bp.Names(), out.Graph.Edges); err == nil {
		out.Order, out.Waves = ordered, waves
	}
	return out
}

// CompileAll compiles independent documents concurrently, at most
// MaxParallel at a time. Results are in input order. Documents not started
// before ctx is done get ctx's error.
func (c *Compiler) CompileAll(ctx context.Context, sources []Source) []*Result {
	results := make([]*Result, len(sources))
	sem := make(chan struct{}, c.opts.MaxParallel)
	var wg sync.WaitGroup

	for i, src := range sources {
		select {
		case <-ctx.Done():
			results[i] = &Result{Name: src.Name, Graph: emptyGraph(ctx.Err().Error()), Diagnostics: []result.Diagnostic{}, Error: ctx.Err().Error()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			defer func() { <-sem }()
			res := c.Compile(src.Text)
			res.Name = src.Name
			results[i] = res
		}(i, src)
	}
	wg.Wait()
	return results
}

func (c *Compiler) extract(text string) (*blueprint.Blueprint, error) {
	doc, err := document.Load(text)
	if err != nil {
		c.log.Warn("failed to parse blueprint", zap.Error(err))
		return nil, err
	}
	return blueprint.Extract(doc), nil
}

func (c *Compiler) graph(bp *blueprint.Blueprint) GraphResult {
	edges := dependency.Build(bp)
	if edges == nil {
		edges = []dependency.Edge{}
	}
	nodes := c.engine.Layout(layout.Nodes(bp), edges)
	c.log.Debug("graph built",
		zap.Int("resources", len(nodes)),
		zap.Int("edges", len(edges)))
	return GraphResult{Nodes: nodes, Edges: edges}
}

func (c *Compiler) validate(bp *blueprint.Blueprint) []result.Diagnostic {
	diags := validate.Validate(bp, c.reg)
	if diags == nil {
		diags = []result.Diagnostic{}
	}
	c.log.Debug("blueprint validated",
		zap.Int("resources", len(bp.Resources)),
		zap.Int("errors", result.Count(diags, result.SeverityError)),
		zap.Int("warnings", result.Count(diags, result.SeverityWarning)))
	return diags
}

func emptyGraph(msg string) GraphResult {
	return GraphResult{Nodes: []layout.Node{}, Edges: []dependency.Edge{}, Error: msg}
}
