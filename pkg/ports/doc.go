/*
Package ports defines the driven ports (interfaces) for the armature world.

These interfaces decouple the kinematic core from external implementations,
most importantly the symbolic-expression backend that turns transform
expressions into fast numeric evaluators.

# Key Interfaces

  - Compiler: Compiles a batch of transform expressions over named free
    variables into an Evaluator.
  - Evaluator: Evaluates the compiled batch for concrete variable values,
    once per control cycle.
*/
package ports
