package domain

import (
	"fmt"
	"sort"
)

// All is the wildcard marker in collision requests. It matches every robot
// link, every body or every body link depending on the field it appears in.
const All = "ALL"

// AllLink is the wildcard as a link name, for set membership tests.
const AllLink = LinkName(All)

// RequestKind classifies a collision request.
type RequestKind string

const (
	// AvoidCollision sets a minimum distance for the addressed pairs.
	AvoidCollision RequestKind = "avoid"
	// AllowCollision removes any constraint for the addressed pairs.
	AllowCollision RequestKind = "allow"

	// AvoidAllCollisions and AllowAllCollisions are the legacy catch-all
	// kinds; the resolver normalizes them to avoid/allow with ALL markers.
	AvoidAllCollisions RequestKind = "avoid-all"
	AllowAllCollisions RequestKind = "allow-all"
)

// CollisionRequest is one entry of a user-supplied collision-avoidance list.
// Empty RobotLinks or LinkBs sets default to ALL.
type CollisionRequest struct {
	Kind       RequestKind `yaml:"kind" json:"kind" mapstructure:"kind"`
	RobotLinks []LinkName  `yaml:"robot_links,omitempty" json:"robot_links,omitempty" mapstructure:"robot_links"`
	BodyB      string      `yaml:"body_b,omitempty" json:"body_b,omitempty" mapstructure:"body_b"`
	LinkBs     []LinkName  `yaml:"link_bs,omitempty" json:"link_bs,omitempty" mapstructure:"link_bs"`
	MinDist    float32     `yaml:"min_dist" json:"min_dist" mapstructure:"min_dist"`
}

// CollisionTriple addresses one resolved pair: a robot link against one link
// of some body (possibly the robot itself).
type CollisionTriple struct {
	RobotLink LinkName
	Body      string
	LinkB     LinkName
}

func (t CollisionTriple) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.RobotLink, t.Body, t.LinkB)
}

// ResolvedConstraint is one row of the resolver output in serializable form.
type ResolvedConstraint struct {
	RobotLink LinkName `yaml:"robot_link" json:"robot_link"`
	Body      string   `yaml:"body_b" json:"body_b"`
	LinkB     LinkName `yaml:"link_b" json:"link_b"`
	MinDist   float32  `yaml:"min_dist" json:"min_dist"`
}

// DistanceTable is the canonical resolver output: no wildcards, no
// duplicates, later request entries having won.
type DistanceTable map[CollisionTriple]float32

// Entries returns the table as sorted rows, for stable serialization.
func (t DistanceTable) Entries() []ResolvedConstraint {
	rows := make([]ResolvedConstraint, 0, len(t))
	for k, d := range t {
		rows = append(rows, ResolvedConstraint{RobotLink: k.RobotLink, Body: k.Body, LinkB: k.LinkB, MinDist: d})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.RobotLink != b.RobotLink {
			return a.RobotLink < b.RobotLink
		}
		if a.Body != b.Body {
			return a.Body < b.Body
		}
		return a.LinkB < b.LinkB
	})
	return rows
}

// LinkPair is an unordered pair of robot links from the self-collision
// matrix, stored in canonical order.
type LinkPair struct {
	A, B LinkName
}
