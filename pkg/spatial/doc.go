/*
Package spatial provides rigid transforms and the closed transform-expression
vocabulary the kinematic tree hands to an expression compiler.

A [Pose] is a position plus orientation; an [Expr] is a symbolic parent→child
transform, possibly parametrized by named scalar variables (joint degrees of
freedom). Expressions stay inert here; evaluation is the job of a
ports.Compiler implementation.
*/
package spatial
