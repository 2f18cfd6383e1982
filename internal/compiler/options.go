package compiler

import (
	"go.uber.org/zap"

	"github.com/blueprint-graph/compiler/internal/layout"
	"github.com/blueprint-graph/compiler/internal/registry"
)

// Options configures the compiler behavior.
type Options struct {
	// Registry resolves resource types; nil means registry.Default.
	Registry *registry.Registry
	// Layout sets node size and spacing.
	Layout layout.Options
	// Logger receives stage summaries; nil discards them.
	Logger *zap.Logger
	// MaxParallel is the max number of documents compiled at once by CompileAll (0 = default).
	MaxParallel int
}

// DefaultOptions returns default compiler options.
func DefaultOptions() Options {
	return Options{
		Layout:      layout.DefaultOptions(),
		MaxParallel: 0, // use runtime.NumCPU in compiler
	}
}
