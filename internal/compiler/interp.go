// Package compiler provides the default implementation of the expression
// compiler port: a tree-walking interpreter over spatial expressions.
// Compilation resolves variable references to parameter indices and
// normalizes axes once, so per-cycle evaluation is allocation-light.
package compiler

import (
	"fmt"
	"slices"

	"cogentcore.org/core/math32"

	"github.com/armech/armature/pkg/ports"
	"github.com/armech/armature/pkg/spatial"
)

// Compiler is a stateless ports.Compiler.
type Compiler struct{}

var _ ports.Compiler = (*Compiler)(nil)

// New returns the interpreting compiler.
func New() *Compiler {
	return &Compiler{}
}

// Compile builds one program per expression over the shared parameter list.
func (c *Compiler) Compile(exprs []spatial.Expr, free []string) (ports.Evaluator, error) {
	index := make(map[string]int, len(free))
	for i, name := range free {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("compile: duplicate free variable %q", name)
		}
		index[name] = i
	}
	progs := make([]program, len(exprs))
	for i, e := range exprs {
		p, err := compileExpr(e, index)
		if err != nil {
			return nil, err
		}
		progs[i] = p
	}
	return &evaluator{params: slices.Clone(free), progs: progs}, nil
}

// program computes one transform from the parameter values.
type program func(values []float32) math32.Matrix4

type evaluator struct {
	params []string
	progs  []program
}

func (e *evaluator) Params() []string {
	return e.params
}

func (e *evaluator) Eval(values []float32) []math32.Matrix4 {
	out := make([]math32.Matrix4, len(e.progs))
	for i, p := range e.progs {
		out[i] = p(values)
	}
	return out
}

func compileExpr(e spatial.Expr, index map[string]int) (program, error) {
	one := math32.Vec3(1, 1, 1)
	switch e := e.(type) {
	case spatial.Const:
		m := e.M
		return func([]float32) math32.Matrix4 { return m }, nil
	case spatial.Translate:
		axis := e.Axis.Normal()
		v, err := resolveVar(e.Var, index)
		if err != nil {
			return nil, err
		}
		var ident math32.Quat
		ident.SetIdentity()
		return func(values []float32) math32.Matrix4 {
			q := v.Multiplier*values[v.index] + v.Offset
			var m math32.Matrix4
			m.SetTransform(axis.MulScalar(q), ident, one)
			return m
		}, nil
	case spatial.Rotate:
		axis := e.Axis.Normal()
		v, err := resolveVar(e.Var, index)
		if err != nil {
			return nil, err
		}
		zero := math32.Vector3{}
		return func(values []float32) math32.Matrix4 {
			q := v.Multiplier*values[v.index] + v.Offset
			var m math32.Matrix4
			m.SetTransform(zero, math32.NewQuatAxisAngle(axis, q), one)
			return m
		}, nil
	case spatial.Product:
		if len(e.Factors) == 0 {
			return nil, fmt.Errorf("compile: empty product")
		}
		factors := make([]program, len(e.Factors))
		for i, f := range e.Factors {
			p, err := compileExpr(f, index)
			if err != nil {
				return nil, err
			}
			factors[i] = p
		}
		return func(values []float32) math32.Matrix4 {
			acc := factors[0](values)
			for _, f := range factors[1:] {
				m := f(values)
				var r math32.Matrix4
				r.MulMatrices(&acc, &m)
				acc = r
			}
			return acc
		}, nil
	case spatial.Inverse:
		inner, err := compileExpr(e.X, index)
		if err != nil {
			return nil, err
		}
		return func(values []float32) math32.Matrix4 {
			m := inner(values)
			// Rigid transforms are always invertible.
			inv, _ := m.Inverse()
			return *inv
		}, nil
	case nil:
		return nil, fmt.Errorf("compile: nil expression")
	default:
		return nil, fmt.Errorf("compile: unsupported expression %T", e)
	}
}

type boundVar struct {
	index      int
	Multiplier float32
	Offset     float32
}

func resolveVar(v spatial.Var, index map[string]int) (boundVar, error) {
	i, ok := index[v.Name]
	if !ok {
		return boundVar{}, fmt.Errorf("compile: variable %q is not among the free variables", v.Name)
	}
	return boundVar{index: i, Multiplier: v.Multiplier, Offset: v.Offset}, nil
}
