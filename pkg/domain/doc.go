/*
Package domain contains the core domain models for the armature world tree.

It defines the fundamental entities of the kinematic model: Links, Joints,
Geometries and the collision-request vocabulary. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Link: A rigid body node holding collision and visual geometry.
  - Joint: A tree edge carrying a parent→child transform, classified by a
    closed set of kinds (fixed, prismatic, revolute, continuous, mimic).
  - Geometry: A closed set of shape variants (box, cylinder, sphere, mesh)
    with a significance predicate that gates collision checking.
  - CollisionRequest / DistanceTable: The sparse avoidance vocabulary and the
    fully expanded per-pair minimum-distance table the resolver produces.
*/
package domain
