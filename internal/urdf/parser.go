// Package urdf parses XML robot description documents into domain links and
// joints. Only the subset the world tree consumes is modeled: links with
// visual/collision geometry, and fixed/prismatic/revolute/continuous joints
// with optional mimic coupling and per-order limits.
package urdf

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"

	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

// Document is a parsed robot description.
type Document struct {
	Name   string
	links  map[string]*xmlLink
	joints []*xmlJoint
	// children maps a link name to its child joints, in declaration order.
	children map[string][]*xmlJoint
	root     string
}

// Parse decodes a description document. It fails on malformed XML, on a
// document without a unique root link, and on unsupported joint kinds.
func Parse(doc []byte) (*Document, error) {
	var robot xmlRobot
	if err := xml.Unmarshal(doc, &robot); err != nil {
		return nil, fmt.Errorf("parse description: %w: %v", domain.ErrMalformedRequest, err)
	}
	if robot.Name == "" {
		return nil, fmt.Errorf("parse description: %w: robot has no name", domain.ErrMalformedRequest)
	}
	d := &Document{
		Name:     robot.Name,
		links:    make(map[string]*xmlLink, len(robot.Links)),
		joints:   robot.Joints,
		children: make(map[string][]*xmlJoint),
	}
	for _, l := range robot.Links {
		if _, dup := d.links[l.Name]; dup {
			return nil, fmt.Errorf("parse description: %w: link %q", domain.ErrDuplicateName, l.Name)
		}
		d.links[l.Name] = l
	}
	hasParent := make(map[string]bool)
	jointNames := make(map[string]bool, len(robot.Joints))
	for _, j := range robot.Joints {
		if jointNames[j.Name] {
			return nil, fmt.Errorf("parse description: %w: joint %q", domain.ErrDuplicateName, j.Name)
		}
		jointNames[j.Name] = true
		if _, ok := d.links[j.Parent.Link]; !ok {
			return nil, fmt.Errorf("parse description: joint %q: %w: parent link %q", j.Name, domain.ErrUnknownBody, j.Parent.Link)
		}
		if _, ok := d.links[j.Child.Link]; !ok {
			return nil, fmt.Errorf("parse description: joint %q: %w: child link %q", j.Name, domain.ErrUnknownBody, j.Child.Link)
		}
		if hasParent[j.Child.Link] {
			return nil, fmt.Errorf("parse description: link %q has more than one parent joint", j.Child.Link)
		}
		hasParent[j.Child.Link] = true
		d.children[j.Parent.Link] = append(d.children[j.Parent.Link], j)
	}
	for name := range d.links {
		if !hasParent[name] {
			if d.root != "" {
				return nil, fmt.Errorf("parse description: more than one root link (%q, %q)", d.root, name)
			}
			d.root = name
		}
	}
	if d.root == "" {
		return nil, fmt.Errorf("parse description: no root link")
	}
	return d, nil
}

// Root returns the name of the unique link without a parent joint.
func (d *Document) Root() string {
	return d.root
}

// LinkNames returns all link names in the document.
func (d *Document) LinkNames() []string {
	names := make([]string, 0, len(d.links))
	for name := range d.links {
		names = append(names, name)
	}
	return names
}

// JointNames returns all joint names in the document, in declaration order.
func (d *Document) JointNames() []string {
	names := make([]string, 0, len(d.joints))
	for _, j := range d.joints {
		names = append(names, j.Name)
	}
	return names
}

// ChildLinks returns the document-level names of the named link's children,
// in declaration order, parallel to [Document.ChildJoints].
func (d *Document) ChildLinks(link string) []string {
	var names []string
	for _, j := range d.children[link] {
		names = append(names, j.Child.Link)
	}
	return names
}

// Link converts the named link to its domain form, applying the prefix.
func (d *Document) Link(name, prefix string) (*domain.Link, error) {
	xl, ok := d.links[name]
	if !ok {
		return nil, fmt.Errorf("description: %w: link %q", domain.ErrUnknownBody, name)
	}
	link := domain.NewLink(domain.PrefixedLink(name, prefix))
	for _, g := range xl.Collisions {
		geom, err := convertGeometry(g)
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", name, err)
		}
		link.Collisions = append(link.Collisions, geom)
	}
	for _, g := range xl.Visuals {
		geom, err := convertGeometry(g)
		if err != nil {
			return nil, fmt.Errorf("link %q: %w", name, err)
		}
		link.Visuals = append(link.Visuals, geom)
	}
	return link, nil
}

// ChildJoints converts the child joints of the named link, in declaration
// order, applying the prefix to joint and link names.
func (d *Document) ChildJoints(link, prefix string) ([]*domain.Joint, error) {
	var joints []*domain.Joint
	for _, xj := range d.children[link] {
		j, err := convertJoint(xj, prefix)
		if err != nil {
			return nil, err
		}
		joints = append(joints, j)
	}
	return joints, nil
}

func convertJoint(xj *xmlJoint, prefix string) (*domain.Joint, error) {
	origin, err := originMatrix(xj.Origin)
	if err != nil {
		return nil, fmt.Errorf("joint %q: %w", xj.Name, err)
	}
	j := &domain.Joint{
		Name:   domain.PrefixedJoint(xj.Name, prefix),
		Parent: domain.PrefixedLink(xj.Parent.Link, prefix),
		Child:  domain.PrefixedLink(xj.Child.Link, prefix),
		Origin: origin,
	}
	rotational := false
	switch xj.Type {
	case "fixed":
		j.Kind = domain.JointFixed
		return j, nil
	case "prismatic":
		j.Kind = domain.JointPrismatic
	case "revolute":
		j.Kind = domain.JointRevolute
		rotational = true
	case "continuous":
		j.Kind = domain.JointContinuous
		rotational = true
	default:
		return nil, fmt.Errorf("joint %q: unsupported joint type %q", xj.Name, xj.Type)
	}
	j.Axis = math32.Vec3(1, 0, 0)
	if xj.Axis != nil {
		axis, err := parseTriple(xj.Axis.XYZ)
		if err != nil {
			return nil, fmt.Errorf("joint %q: axis: %w", xj.Name, err)
		}
		j.Axis = axis
	}
	if xj.Mimic != nil {
		multiplier := float32(1)
		if xj.Mimic.Multiplier != nil {
			multiplier = *xj.Mimic.Multiplier
		}
		j.Kind = domain.JointMimic
		j.Mimic = &domain.Mimic{
			Of:         domain.PrefixedJoint(xj.Mimic.Joint, prefix),
			Multiplier: multiplier,
			Offset:     xj.Mimic.Offset,
			Rotational: rotational,
		}
	}
	if xj.Limit != nil {
		if j.Kind != domain.JointContinuous {
			j.SetLimit(domain.OrderPosition, domain.Float32(xj.Limit.Lower), domain.Float32(xj.Limit.Upper))
		}
		if xj.Limit.Velocity > 0 {
			j.SetLimit(domain.OrderVelocity, domain.Float32(-xj.Limit.Velocity), domain.Float32(xj.Limit.Velocity))
		}
	}
	return j, nil
}

func convertGeometry(xg *xmlGeometryHolder) (*domain.Geometry, error) {
	local := spatial.IdentityMatrix()
	if xg.Origin != nil {
		m, err := originMatrix(xg.Origin)
		if err != nil {
			return nil, err
		}
		local = m
	}
	g := xg.Geometry
	switch {
	case g.Box != nil:
		size, err := parseTriple(g.Box.Size)
		if err != nil {
			return nil, fmt.Errorf("box size: %w", err)
		}
		return domain.NewBox(local, size.X, size.Y, size.Z), nil
	case g.Cylinder != nil:
		return domain.NewCylinder(local, g.Cylinder.Length, g.Cylinder.Radius), nil
	case g.Sphere != nil:
		return domain.NewSphere(local, g.Sphere.Radius), nil
	case g.Mesh != nil:
		scale := math32.Vec3(1, 1, 1)
		if g.Mesh.Scale != "" {
			s, err := parseTriple(g.Mesh.Scale)
			if err != nil {
				return nil, fmt.Errorf("mesh scale: %w", err)
			}
			scale = s
		}
		return domain.NewMesh(local, g.Mesh.Filename, scale)
	default:
		return nil, fmt.Errorf("%w: geometry has no recognized shape", domain.ErrCorruptShape)
	}
}

func originMatrix(o *xmlOrigin) (math32.Matrix4, error) {
	if o == nil {
		return spatial.IdentityMatrix(), nil
	}
	pos := math32.Vector3{}
	rpy := math32.Vector3{}
	var err error
	if o.XYZ != "" {
		if pos, err = parseTriple(o.XYZ); err != nil {
			return math32.Matrix4{}, fmt.Errorf("origin xyz: %w", err)
		}
	}
	if o.RPY != "" {
		if rpy, err = parseTriple(o.RPY); err != nil {
			return math32.Matrix4{}, fmt.Errorf("origin rpy: %w", err)
		}
	}
	return spatial.EulerPose(pos.X, pos.Y, pos.Z, rpy.X, rpy.Y, rpy.Z).Matrix(), nil
}

func parseTriple(s string) (math32.Vector3, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return math32.Vector3{}, fmt.Errorf("expected 3 values, got %q", s)
	}
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math32.Vector3{}, fmt.Errorf("bad number %q", f)
		}
		out[i] = float32(v)
	}
	return math32.Vec3(out[0], out[1], out[2]), nil
}

// XML schema.

type xmlRobot struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []*xmlLink  `xml:"link"`
	Joints  []*xmlJoint `xml:"joint"`
}

type xmlLink struct {
	Name       string               `xml:"name,attr"`
	Visuals    []*xmlGeometryHolder `xml:"visual"`
	Collisions []*xmlGeometryHolder `xml:"collision"`
}

type xmlGeometryHolder struct {
	Origin   *xmlOrigin  `xml:"origin"`
	Geometry xmlGeometry `xml:"geometry"`
}

type xmlGeometry struct {
	Box      *xmlBox      `xml:"box"`
	Cylinder *xmlCylinder `xml:"cylinder"`
	Sphere   *xmlSphere   `xml:"sphere"`
	Mesh     *xmlMesh     `xml:"mesh"`
}

type xmlBox struct {
	Size string `xml:"size,attr"`
}

type xmlCylinder struct {
	Radius float32 `xml:"radius,attr"`
	Length float32 `xml:"length,attr"`
}

type xmlSphere struct {
	Radius float32 `xml:"radius,attr"`
}

type xmlMesh struct {
	Filename string `xml:"filename,attr"`
	Scale    string `xml:"scale,attr"`
}

type xmlOrigin struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

type xmlJoint struct {
	Name   string     `xml:"name,attr"`
	Type   string     `xml:"type,attr"`
	Origin *xmlOrigin `xml:"origin"`
	Parent xmlParent  `xml:"parent"`
	Child  xmlChild   `xml:"child"`
	Axis   *xmlAxis   `xml:"axis"`
	Limit  *xmlLimit  `xml:"limit"`
	Mimic  *xmlMimic  `xml:"mimic"`
}

type xmlParent struct {
	Link string `xml:"link,attr"`
}

type xmlChild struct {
	Link string `xml:"link,attr"`
}

type xmlAxis struct {
	XYZ string `xml:"xyz,attr"`
}

type xmlLimit struct {
	Lower    float32 `xml:"lower,attr"`
	Upper    float32 `xml:"upper,attr"`
	Effort   float32 `xml:"effort,attr"`
	Velocity float32 `xml:"velocity,attr"`
}

type xmlMimic struct {
	Joint      string   `xml:"joint,attr"`
	Multiplier *float32 `xml:"multiplier,attr"`
	Offset     float32  `xml:"offset,attr"`
}
