package domain

import "errors"

// ErrDuplicateName is returned when a structural add would reuse an existing
// link, joint or group name.
var ErrDuplicateName = errors.New("duplicate name")

// ErrUnknownBody is returned when a request references a link, joint, body or
// group that does not exist.
var ErrUnknownBody = errors.New("unknown body")

// ErrMalformedRequest is returned when a collision request combines the ALL
// wildcard illegally with named entries.
var ErrMalformedRequest = errors.New("malformed collision request")

// ErrCorruptShape is returned when a geometry resource is missing or the
// shape kind is unsupported.
var ErrCorruptShape = errors.New("corrupt or unsupported shape")

// ErrNoPath is returned when forward kinematics or a chain is requested
// between links that are not connected.
var ErrNoPath = errors.New("no path between links")

// ErrUnknownRequestKind is returned when a collision request carries an
// unhandled kind.
var ErrUnknownRequestKind = errors.New("unknown collision request kind")
