package domain

// LinkName identifies a link uniquely within a world tree.
type LinkName string

// JointName identifies a joint uniquely within a world tree.
type JointName string

// PrefixedLink returns name qualified by prefix, or name unchanged when the
// prefix is empty. Prefixing keeps identifiers unique when the same
// description document is attached more than once.
func PrefixedLink(name, prefix string) LinkName {
	return LinkName(prefixed(name, prefix))
}

// PrefixedJoint is the joint counterpart of [PrefixedLink].
func PrefixedJoint(name, prefix string) JointName {
	return JointName(prefixed(name, prefix))
}

func prefixed(name, prefix string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
