package armature

import (
	"log/slog"

	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/ports"
)

type config struct {
	rootLink         domain.LinkName
	compiler         ports.Compiler
	logger           *slog.Logger
	description      []byte
	controlled       []domain.JointName
	selfIgnored      []domain.LinkPair
	selfAdded        []domain.LinkPair
	volumeThreshold  float32
	surfaceThreshold float32
}

// Option defines a functional option for configuring the World.
type Option func(*config)

// WithLogger sets a custom structured logger for the world.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCompiler injects a custom expression compiler, replacing the built-in
// interpreter.
func WithCompiler(cp ports.Compiler) Option {
	return func(c *config) {
		c.compiler = cp
	}
}

// WithRootLink names the fixed root frame (default: "map").
func WithRootLink(name domain.LinkName) Option {
	return func(c *config) {
		c.rootLink = name
	}
}

// WithRobotDescription loads a robot description at construction time.
func WithRobotDescription(doc []byte) Option {
	return func(c *config) {
		c.description = doc
	}
}

// WithControlledJoints declares the actively commanded joints. Without it,
// every joint with a free variable counts as controlled.
func WithControlledJoints(names ...domain.JointName) Option {
	return func(c *config) {
		c.controlled = names
	}
}

// WithIgnoredSelfCollisions removes pairs from the derived self-collision
// matrix.
func WithIgnoredSelfCollisions(pairs ...domain.LinkPair) Option {
	return func(c *config) {
		c.selfIgnored = pairs
	}
}

// WithAddedSelfCollisions forces pairs into the derived self-collision
// matrix.
func WithAddedSelfCollisions(pairs ...domain.LinkPair) Option {
	return func(c *config) {
		c.selfAdded = pairs
	}
}

// WithSignificanceThresholds overrides the geometry volume and surface
// thresholds deciding which links count for collision checking.
func WithSignificanceThresholds(volume, surface float32) Option {
	return func(c *config) {
		c.volumeThreshold = volume
		c.surfaceThreshold = surface
	}
}
