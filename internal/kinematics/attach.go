package kinematics

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/armech/armature/internal/urdf"
	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

// AddDescription parses a robot description document and attaches its whole
// tree under parentLink (the tree root when empty) via a synthesized fixed
// connecting joint placed at origin. When groupName is non-empty the new
// subtree is registered as a group.
//
// Every name introduced by the document is validated against the tree and
// the whole document is converted, geometry included, before the first
// insert, so a rejected document leaves the tree untouched.
func (t *Tree) AddDescription(doc []byte, prefix string, parentLink domain.LinkName, groupName string, origin spatial.Pose) error {
	d, err := urdf.Parse(doc)
	if err != nil {
		return err
	}
	if parentLink == "" {
		parentLink = t.root
	}
	if !t.HasLink(parentLink) {
		return fmt.Errorf("%w: link %q", domain.ErrUnknownBody, parentLink)
	}
	if groupName != "" {
		if _, dup := t.groups[groupName]; dup {
			return fmt.Errorf("%w: group %q", domain.ErrDuplicateName, groupName)
		}
	}

	connecting := domain.JointName(string(domain.PrefixedLink(d.Name, prefix)) + "/" + connectionSuffix)
	if err := t.checkDescriptionNames(d, prefix, connecting); err != nil {
		return err
	}

	grafts, err := stageDescription(d, prefix, connecting, parentLink, origin)
	if err != nil {
		return err
	}
	for _, g := range grafts {
		if err := t.linkJointToLinks(g.joint, g.link); err != nil {
			return err
		}
	}
	if groupName != "" {
		t.groups[groupName] = &Group{name: groupName, rootLink: grafts[0].link.Name, tree: t}
	}
	t.bumpVersion()
	t.logger.Info("attached description",
		"name", d.Name, "prefix", prefix, "parent", parentLink, "group", groupName)
	return nil
}

// checkDescriptionNames rejects the document when any prefixed link, joint,
// or the connecting joint would collide with an existing name, or when a
// document joint shadows the connecting joint itself.
func (t *Tree) checkDescriptionNames(d *urdf.Document, prefix string, connecting domain.JointName) error {
	if _, dup := t.joints[connecting]; dup {
		return fmt.Errorf("%w: joint %q", domain.ErrDuplicateName, connecting)
	}
	for _, name := range d.LinkNames() {
		prefixed := domain.PrefixedLink(name, prefix)
		if _, dup := t.links[prefixed]; dup {
			return fmt.Errorf("%w: link %q", domain.ErrDuplicateName, prefixed)
		}
	}
	for _, name := range d.JointNames() {
		prefixed := domain.PrefixedJoint(name, prefix)
		if prefixed == connecting {
			return fmt.Errorf("%w: joint %q", domain.ErrDuplicateName, prefixed)
		}
		if _, dup := t.joints[prefixed]; dup {
			return fmt.Errorf("%w: joint %q", domain.ErrDuplicateName, prefixed)
		}
	}
	return nil
}

// graft pairs a converted joint with the child link it introduces, in
// insertion order.
type graft struct {
	joint *domain.Joint
	link  *domain.Link
}

// stageDescription converts the whole document into grafts without touching
// the tree. A conversion failure, such as a missing mesh file deep in the
// document, therefore leaves no partial state behind.
func stageDescription(d *urdf.Document, prefix string, connecting domain.JointName, parentLink domain.LinkName, origin spatial.Pose) ([]graft, error) {
	rootName := d.Root()
	rootLink, err := d.Link(rootName, prefix)
	if err != nil {
		return nil, err
	}
	grafts := []graft{{domain.NewFixedJoint(connecting, parentLink, rootLink.Name, origin.Matrix()), rootLink}}
	return stageChildren(d, rootName, prefix, grafts)
}

func stageChildren(d *urdf.Document, docLink, prefix string, grafts []graft) ([]graft, error) {
	joints, err := d.ChildJoints(docLink, prefix)
	if err != nil {
		return nil, err
	}
	childNames := d.ChildLinks(docLink)
	for i, j := range joints {
		child, err := d.Link(childNames[i], prefix)
		if err != nil {
			return nil, err
		}
		grafts = append(grafts, graft{j, child})
		if grafts, err = stageChildren(d, childNames[i], prefix, grafts); err != nil {
			return nil, err
		}
	}
	return grafts, nil
}

// AddBody attaches a single body to the tree at pose under parentLink (the
// tree root when empty) and registers it as a one-link group named after the
// spec. Description-kind bodies attach their whole nested tree instead.
func (t *Tree) AddBody(spec domain.BodySpec, pose spatial.Pose, parentLink domain.LinkName) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: body name must not be empty", domain.ErrMalformedRequest)
	}
	if _, dup := t.groups[spec.Name]; dup {
		return fmt.Errorf("%w: group %q", domain.ErrDuplicateName, spec.Name)
	}
	if spec.Kind == domain.BodyDescription {
		return t.AddDescription([]byte(spec.Description), "", parentLink, spec.Name, pose)
	}

	if parentLink == "" {
		parentLink = t.root
	}
	geom, err := bodyGeometry(spec)
	if err != nil {
		return err
	}
	link := domain.NewLink(domain.LinkName(spec.Name))
	link.Collisions = []*domain.Geometry{geom}
	link.Visuals = []*domain.Geometry{geom}
	joint := domain.NewFixedJoint(
		domain.JointName(spec.Name+"/"+connectionSuffix), parentLink, link.Name, pose.Matrix())
	if err := t.linkJointToLinks(joint, link); err != nil {
		return err
	}
	t.groups[spec.Name] = &Group{name: spec.Name, rootLink: link.Name, tree: t}
	t.bumpVersion()
	t.logger.Info("attached body", "name", spec.Name, "kind", spec.Kind, "parent", parentLink)
	return nil
}

func bodyGeometry(spec domain.BodySpec) (*domain.Geometry, error) {
	local := *math32.Identity4()
	switch spec.Kind {
	case domain.BodyBox:
		return domain.NewBox(local, spec.Depth, spec.Width, spec.Height), nil
	case domain.BodyCylinder:
		return domain.NewCylinder(local, spec.Height, spec.Radius), nil
	case domain.BodySphere:
		return domain.NewSphere(local, spec.Radius), nil
	case domain.BodyMesh:
		return domain.NewMesh(local, spec.Mesh, meshScale(spec.Scale))
	default:
		return nil, fmt.Errorf("%w: unsupported body kind %q", domain.ErrCorruptShape, spec.Kind)
	}
}

func meshScale(s []float32) math32.Vector3 {
	switch len(s) {
	case 0:
		return math32.Vec3(1, 1, 1)
	case 1:
		return math32.Vec3(s[0], s[0], s[0])
	default:
		v := math32.Vec3(1, 1, 1)
		v.X = s[0]
		if len(s) > 1 {
			v.Y = s[1]
		}
		if len(s) > 2 {
			v.Z = s[2]
		}
		return v
	}
}
