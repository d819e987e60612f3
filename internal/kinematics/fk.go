package kinematics

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/ports"
	"github.com/armech/armature/pkg/spatial"
)

type fkPair struct {
	root, tip domain.LinkName
}

// batchFKs is the compiled all-links evaluator: one expression per
// collision-bearing link, including its first collision geometry's local
// offset, all sharing one parameter vector.
type batchFKs struct {
	eval  ports.Evaluator
	order []domain.LinkName
}

// ComposeFK builds the symbolic transform between two links as a product of
// joint expressions: inverted transforms ascending from root to the lowest
// common ancestor, then direct transforms descending to tip.
func (t *Tree) ComposeFK(root, tip domain.LinkName) (spatial.Expr, error) {
	up, _, down, err := t.ComputeSplitChain(root, tip, true, false, true, true)
	if err != nil {
		return nil, err
	}
	var factors []spatial.Expr
	for _, name := range up {
		expr, err := t.jointExpr(domain.JointName(name))
		if err != nil {
			return nil, err
		}
		factors = append(factors, spatial.Inverse{X: expr})
	}
	for _, name := range down {
		expr, err := t.jointExpr(domain.JointName(name))
		if err != nil {
			return nil, err
		}
		factors = append(factors, expr)
	}
	if len(factors) == 0 {
		return spatial.Const{M: spatial.IdentityMatrix()}, nil
	}
	return spatial.Mul(factors...), nil
}

// jointExpr is the parent-to-child transform of one joint: the fixed origin
// composed with the joint's motion about its axis, when it has one.
func (t *Tree) jointExpr(name domain.JointName) (spatial.Expr, error) {
	j, err := t.Joint(name)
	if err != nil {
		return nil, err
	}
	origin := spatial.Const{M: j.Origin}
	switch j.Kind {
	case domain.JointFixed:
		return origin, nil
	case domain.JointPrismatic:
		return spatial.Mul(origin, spatial.Translate{Axis: j.Axis, Var: spatial.NewVar(string(name))}), nil
	case domain.JointRevolute, domain.JointContinuous:
		return spatial.Mul(origin, spatial.Rotate{Axis: j.Axis, Var: spatial.NewVar(string(name))}), nil
	case domain.JointMimic:
		v := spatial.Var{Name: string(j.Mimic.Of), Multiplier: j.Mimic.Multiplier, Offset: j.Mimic.Offset}
		if j.Mimic.Rotational {
			return spatial.Mul(origin, spatial.Rotate{Axis: j.Axis, Var: v}), nil
		}
		return spatial.Mul(origin, spatial.Translate{Axis: j.Axis, Var: v}), nil
	default:
		return nil, fmt.Errorf("joint %q: unsupported kind %s", name, j.Kind)
	}
}

// evaluatorFor returns the compiled evaluator for one (root, tip) pair,
// compiling and caching it on first use. The cache empties on every
// structural version bump.
func (t *Tree) evaluatorFor(root, tip domain.LinkName) (ports.Evaluator, error) {
	key := fkPair{root, tip}
	if eval, ok := t.fkEvals[key]; ok {
		t.stats.FKCacheHits++
		return eval, nil
	}
	t.stats.FKCacheMisses++

	expr, err := t.ComposeFK(root, tip)
	if err != nil {
		return nil, err
	}
	eval, err := t.compiler.Compile([]spatial.Expr{expr}, spatial.FreeVars(expr))
	if err != nil {
		return nil, fmt.Errorf("compile fk %q -> %q: %w", root, tip, err)
	}
	t.stats.Compiles++
	t.fkEvals[key] = eval
	return eval, nil
}

func (t *Tree) fkMatrix(root, tip domain.LinkName) (math32.Matrix4, error) {
	eval, err := t.evaluatorFor(root, tip)
	if err != nil {
		return math32.Matrix4{}, err
	}
	return eval.Eval(t.valuesFor(eval.Params()))[0], nil
}

// ComputeFK evaluates the pose of tip expressed in root's frame at the
// current joint state.
func (t *Tree) ComputeFK(root, tip domain.LinkName) (spatial.Pose, error) {
	m, err := t.fkMatrix(root, tip)
	if err != nil {
		return spatial.Pose{}, err
	}
	return spatial.PoseFromMatrix(&m), nil
}

// ComputeAllFKs evaluates the world pose of every collision-bearing link's
// first collision geometry in a single batched pass. The batch evaluator is
// compiled once per structural version.
func (t *Tree) ComputeAllFKs() (map[domain.LinkName]spatial.Pose, error) {
	if t.allFKs == nil {
		if err := t.compileAllFKs(); err != nil {
			return nil, err
		}
	}
	values := t.valuesFor(t.allFKs.eval.Params())
	matrices := t.allFKs.eval.Eval(values)
	out := make(map[domain.LinkName]spatial.Pose, len(t.allFKs.order))
	for i, name := range t.allFKs.order {
		out[name] = spatial.PoseFromMatrix(&matrices[i])
	}
	return out, nil
}

func (t *Tree) compileAllFKs() error {
	order := t.LinkNamesWithCollisions()
	exprs := make([]spatial.Expr, 0, len(order))
	for _, name := range order {
		expr, err := t.ComposeFK(t.root, name)
		if err != nil {
			return err
		}
		local := t.links[name].Collisions[0].Local
		exprs = append(exprs, spatial.Mul(expr, spatial.Const{M: local}))
	}
	eval, err := t.compiler.Compile(exprs, spatial.FreeVars(exprs...))
	if err != nil {
		return fmt.Errorf("compile all fks: %w", err)
	}
	t.stats.Compiles++
	t.allFKs = &batchFKs{eval: eval, order: order}
	return nil
}
