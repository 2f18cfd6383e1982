package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/blueprint-graph/compiler/internal/compiler"
	"github.com/blueprint-graph/compiler/internal/config"
	"github.com/blueprint-graph/compiler/internal/layout"
	"github.com/blueprint-graph/compiler/internal/logger"
	"github.com/blueprint-graph/compiler/internal/registry"
	"github.com/blueprint-graph/compiler/internal/result"
)

const usage = "usage: blueprint -input <file|-> [-schema types.json] [-validate | -graph | -order] [-parallel N] [-json] [more files...]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.LoadOrDefault()

	fs := flag.NewFlagSet("blueprint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	input := fs.String("input", "", "Path to blueprint YAML file (or - for stdin)")
	schema := fs.String("schema", cfg.SchemaPath, "Path to a resource type schema JSON file (default: embedded Cloud.* types)")
	validateOnly := fs.Bool("validate", false, "Only report diagnostics")
	graphOnly := fs.Bool("graph", false, "Only print the laid-out graph as JSON")
	order := fs.Bool("order", false, "Print the provisioning order")
	parallel := fs.Int("parallel", cfg.MaxParallel, "Max documents compiled in parallel (0 = auto)")
	jsonOut := fs.Bool("json", false, "Output results as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	paths := fs.Args()
	if *input != "" {
		paths = append([]string{*input}, paths...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
		return 1
	}

	log, err := logger.New(logger.Config{Level: cfg.Level, Development: cfg.Development})
	if err != nil {
		log = logger.NewDefault()
	}
	defer log.Sync()

	reg := registry.Default
	if *schema != "" {
		data, err := os.ReadFile(*schema)
		if err != nil {
			fmt.Fprintf(stderr, "read schema: %v\n", err)
			return 1
		}
		if reg, err = registry.Load(data); err != nil {
			fmt.Fprintf(stderr, "load schema: %v\n", err)
			return 1
		}
		log.Debug("loaded type schema", zap.String("path", *schema), zap.Int("types", reg.Len()))
	}

	sources := make([]compiler.Source, 0, len(paths))
	for _, p := range paths {
		var data []byte
		if p == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(p)
		}
		if err != nil {
			fmt.Fprintf(stderr, "read input: %v\n", err)
			return 1
		}
		sources = append(sources, compiler.Source{Name: p, Text: string(data)})
	}

	c := compiler.New(compiler.Options{
		Registry: reg,
		Layout: layout.Options{
			NodeWidth:   cfg.NodeWidth,
			NodeHeight:  cfg.NodeHeight,
			NodeSep:     cfg.NodeSep,
			RankSep:     cfg.RankSep,
			TierSpacing: cfg.TierSpacing,
			BaseOffset:  cfg.BaseOffset,
		},
		Logger:      log,
		MaxParallel: *parallel,
	})
	results := c.CompileAll(context.Background(), sources)

	failed := false
	for _, res := range results {
		if !res.Success {
			failed = true
		}
	}

	var out any = results
	switch {
	case *graphOnly:
		graphs := make([]compiler.GraphResult, len(results))
		for i, res := range results {
			graphs[i] = res.Graph
		}
		out = graphs
	case *validateOnly && *jsonOut:
		diags := make(map[string][]result.Diagnostic, len(results))
		for _, res := range results {
			diags[res.Name] = res.Diagnostics
		}
		out = diags
	case *jsonOut:
	default:
		multi := len(results) > 1
		for _, res := range results {
			printText(stdout, stderr, res, multi, *validateOnly, *order)
		}
		if failed {
			return 1
		}
		return 0
	}

	if *graphOnly && len(results) == 1 {
		out = results[0].Graph
	}
	data, err := sonic.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(data))
	if failed {
		return 1
	}
	return 0
}

func printText(stdout, stderr io.Writer, res *compiler.Result, multi, validateOnly, order bool) {
	prefix := ""
	if multi {
		prefix = res.Name + ": "
	}
	for _, d := range res.Diagnostics {
		level := "WARN"
		if d.IsError() {
			level = "ERROR"
		}
		fmt.Fprintf(stderr, "%s%s [%s] %s\n", prefix, level, d.Resource, d.Message)
		if d.Suggestion != "" {
			fmt.Fprintf(stderr, "%s  suggestion: %s\n", prefix, d.Suggestion)
		}
	}
	if res.Error != "" {
		return
	}
	errs := result.Count(res.Diagnostics, result.SeverityError)
	warns := result.Count(res.Diagnostics, result.SeverityWarning)
	if validateOnly {
		fmt.Fprintf(stdout, "%s%d errors, %d warnings\n", prefix, errs, warns)
		return
	}
	fmt.Fprintf(stdout, "%s%d resources, %d edges, %d errors, %d warnings\n", prefix,
		len(res.Graph.Nodes), len(res.Graph.Edges), errs, warns)
	if order {
		for i, wave := range res.Waves {
			fmt.Fprintf(stdout, "%swave %d: %s\n", prefix, i, strings.Join(wave, ", "))
		}
	}
}
