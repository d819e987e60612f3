package ports

import (
	"cogentcore.org/core/math32"

	"github.com/armech/armature/pkg/spatial"
)

// Evaluator is a compiled batch of transform expressions. Compilation is
// expensive and happens once per structural change; evaluation is cheap and
// happens every control cycle.
type Evaluator interface {
	// Params returns the free-variable names in the order Eval expects them.
	Params() []string

	// Eval computes one matrix per compiled expression for the given
	// variable values, which must match Params in length and order.
	Eval(values []float32) []math32.Matrix4
}

// Compiler turns transform expressions into numeric evaluators. It is an
// injected capability: the world tree owns only the cache of compiled
// evaluators, never the compilation strategy.
type Compiler interface {
	// Compile builds an evaluator for exprs over the given free variables.
	// It fails when an expression references a variable outside free.
	Compile(exprs []spatial.Expr, free []string) (Evaluator, error)
}
