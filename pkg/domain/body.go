package domain

// BodyKind selects how an add-body request is interpreted.
type BodyKind string

const (
	BodyDescription BodyKind = "description"
	BodyBox         BodyKind = "box"
	BodyCylinder    BodyKind = "cylinder"
	BodySphere      BodyKind = "sphere"
	BodyMesh        BodyKind = "mesh"
)

// BodySpec describes a free-standing body to attach to the world: either a
// nested description document or a single primitive/mesh link. The field set
// is flat so loose payloads decode with mapstructure.
type BodySpec struct {
	Name string   `yaml:"name" json:"name" mapstructure:"name"`
	Kind BodyKind `yaml:"kind" json:"kind" mapstructure:"kind"`

	// Description document, for Kind == BodyDescription.
	Description string `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description"`

	// Primitive dimensions.
	Depth  float32 `yaml:"depth,omitempty" json:"depth,omitempty" mapstructure:"depth"`
	Width  float32 `yaml:"width,omitempty" json:"width,omitempty" mapstructure:"width"`
	Height float32 `yaml:"height,omitempty" json:"height,omitempty" mapstructure:"height"`
	Radius float32 `yaml:"radius,omitempty" json:"radius,omitempty" mapstructure:"radius"`

	// Mesh resource.
	Mesh  string    `yaml:"mesh,omitempty" json:"mesh,omitempty" mapstructure:"mesh"`
	Scale []float32 `yaml:"scale,omitempty" json:"scale,omitempty" mapstructure:"scale"`
}
