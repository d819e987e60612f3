package spatial

import (
	"sort"

	"cogentcore.org/core/math32"
)

// Var is a reference to a named scalar degree of freedom inside an
// expression. The effective value is Multiplier*q + Offset, which lets mimic
// joints reuse another joint's variable.
type Var struct {
	Name       string
	Multiplier float32
	Offset     float32
}

// NewVar returns a plain variable reference (multiplier 1, offset 0).
func NewVar(name string) Var {
	return Var{Name: name, Multiplier: 1}
}

// Expr is a symbolic rigid transform. The variant set is closed: Const,
// Translate, Rotate, Product and Inverse.
type Expr interface {
	// collectVars appends variable names in first-appearance order.
	collectVars(seen map[string]bool, order *[]string)
}

// Const is a fixed transform.
type Const struct {
	M math32.Matrix4
}

// Translate is a translation along Axis by a variable amount.
type Translate struct {
	Axis math32.Vector3
	Var  Var
}

// Rotate is a rotation about Axis by a variable angle.
type Rotate struct {
	Axis math32.Vector3
	Var  Var
}

// Product composes transforms left to right.
type Product struct {
	Factors []Expr
}

// Inverse inverts a transform.
type Inverse struct {
	X Expr
}

func (c Const) collectVars(map[string]bool, *[]string) {}

func (t Translate) collectVars(seen map[string]bool, order *[]string) {
	collectVar(t.Var, seen, order)
}

func (r Rotate) collectVars(seen map[string]bool, order *[]string) {
	collectVar(r.Var, seen, order)
}

func (p Product) collectVars(seen map[string]bool, order *[]string) {
	for _, f := range p.Factors {
		f.collectVars(seen, order)
	}
}

func (i Inverse) collectVars(seen map[string]bool, order *[]string) {
	i.X.collectVars(seen, order)
}

func collectVar(v Var, seen map[string]bool, order *[]string) {
	if v.Name == "" || seen[v.Name] {
		return
	}
	seen[v.Name] = true
	*order = append(*order, v.Name)
}

// FreeVars returns the sorted set of variable names appearing in the given
// expressions. Sorting keeps compiled parameter order deterministic.
func FreeVars(exprs ...Expr) []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range exprs {
		e.collectVars(seen, &names)
	}
	sort.Strings(names)
	return names
}

// Mul is a convenience constructor flattening nested products.
func Mul(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if p, ok := f.(Product); ok {
			flat = append(flat, p.Factors...)
			continue
		}
		flat = append(flat, f)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Product{Factors: flat}
}
