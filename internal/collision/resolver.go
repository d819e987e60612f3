// Package collision turns loosely specified collision-avoidance requests
// into an exact table of link pairs with minimum distances. Resolution is a
// fixed pipeline over the request list: normalize, validate, default,
// truncate, expand, reduce. Validation runs to completion before anything
// is expanded, so a rejected request list never produces a partial table.
package collision

import (
	"fmt"
	"log/slog"

	"github.com/armech/armature/pkg/domain"
)

// WorldView is the read-only slice of the world the resolver needs: name
// membership, per-body collision links, and the robot's self-collision
// matrix.
type WorldView interface {
	RobotName() string
	ObjectNames() []string
	HasBody(name string) bool
	BodyLinkNames(body string) ([]domain.LinkName, error)
	BodyCollisionLinks(body string) ([]domain.LinkName, error)
	ControlledRobotLinks() ([]domain.LinkName, error)
	PossibleSelfCollisions(link domain.LinkName) ([]domain.LinkName, error)
	SelfCollisionPairs() ([]domain.LinkPair, error)
}

// Resolver resolves collision requests against one world view.
type Resolver struct {
	view   WorldView
	logger *slog.Logger
}

// New returns a resolver bound to the given world view.
func New(view WorldView, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{view: view, logger: logger}
}

// Resolve runs the full pipeline and returns the resulting distance table.
// The input slice is never modified.
func (r *Resolver) Resolve(requests []domain.CollisionRequest) (domain.DistanceTable, error) {
	entries := normalize(requests)
	if err := r.validate(entries); err != nil {
		return nil, err
	}
	entries = defaultEmptySelectors(entries)
	entries = truncateAtCatchAll(entries)
	entries, err := r.expandBodies(entries)
	if err != nil {
		return nil, err
	}
	entries, err = r.expandRobotLinks(entries)
	if err != nil {
		return nil, err
	}
	entries, err = r.expandLinkBs(entries)
	if err != nil {
		return nil, err
	}
	return r.reduce(entries)
}

// normalize deep-copies the requests and rewrites legacy catch-all kinds
// into the plain kinds with ALL selectors.
func normalize(requests []domain.CollisionRequest) []domain.CollisionRequest {
	entries := make([]domain.CollisionRequest, 0, len(requests))
	for _, req := range requests {
		e := req
		e.RobotLinks = append([]domain.LinkName(nil), req.RobotLinks...)
		e.LinkBs = append([]domain.LinkName(nil), req.LinkBs...)
		switch e.Kind {
		case domain.AvoidAllCollisions:
			e.Kind = domain.AvoidCollision
			e.RobotLinks = []domain.LinkName{domain.AllLink}
			e.BodyB = domain.All
			e.LinkBs = []domain.LinkName{domain.AllLink}
		case domain.AllowAllCollisions:
			e.Kind = domain.AllowCollision
			e.RobotLinks = []domain.LinkName{domain.AllLink}
			e.BodyB = domain.All
			e.LinkBs = []domain.LinkName{domain.AllLink}
		}
		entries = append(entries, e)
	}
	return entries
}

// validate checks every entry before any expansion: ALL must stand alone in
// a selector list, a catch-all body must not pin specific links, and every
// named body and link must exist.
func (r *Resolver) validate(entries []domain.CollisionRequest) error {
	for i, e := range entries {
		if e.Kind != domain.AvoidCollision && e.Kind != domain.AllowCollision {
			return fmt.Errorf("%w: entry %d: kind %q", domain.ErrUnknownRequestKind, i, e.Kind)
		}
		if containsAll(e.RobotLinks) && len(e.RobotLinks) != 1 {
			return fmt.Errorf("%w: entry %d: robot links mix %q with named links", domain.ErrMalformedRequest, i, domain.All)
		}
		if containsAll(e.LinkBs) && len(e.LinkBs) != 1 {
			return fmt.Errorf("%w: entry %d: link bs mix %q with named links", domain.ErrMalformedRequest, i, domain.All)
		}
		if e.BodyB == domain.All && !allLinkBs(e) {
			return fmt.Errorf("%w: entry %d: body %q cannot pin specific links", domain.ErrMalformedRequest, i, domain.All)
		}
	}
	return r.validateNames(entries)
}

func (r *Resolver) validateNames(entries []domain.CollisionRequest) error {
	robot := r.view.RobotName()
	for i, e := range entries {
		if e.BodyB != domain.All && !r.view.HasBody(e.BodyB) {
			return fmt.Errorf("%w: entry %d: body %q", domain.ErrUnknownBody, i, e.BodyB)
		}
		if !allRobotLinks(e) {
			robotLinks, err := r.view.BodyLinkNames(robot)
			if err != nil {
				return err
			}
			for _, l := range e.RobotLinks {
				if !containsLink(robotLinks, l) {
					return fmt.Errorf("%w: entry %d: robot link %q", domain.ErrUnknownBody, i, l)
				}
			}
		}
		if !allLinkBs(e) && e.BodyB != domain.All {
			bodyLinks, err := r.view.BodyLinkNames(e.BodyB)
			if err != nil {
				return err
			}
			for _, l := range e.LinkBs {
				if !containsLink(bodyLinks, l) {
					return fmt.Errorf("%w: entry %d: link %q of body %q", domain.ErrUnknownBody, i, l, e.BodyB)
				}
			}
		}
	}
	return nil
}

// defaultEmptySelectors turns empty selector lists into explicit ALLs.
func defaultEmptySelectors(entries []domain.CollisionRequest) []domain.CollisionRequest {
	for i := range entries {
		if len(entries[i].RobotLinks) == 0 {
			entries[i].RobotLinks = []domain.LinkName{domain.AllLink}
		}
		if len(entries[i].LinkBs) == 0 {
			entries[i].LinkBs = []domain.LinkName{domain.AllLink}
		}
	}
	return entries
}

// truncateAtCatchAll drops everything before the last catch-all entry: an
// avoid-all keeps itself as the new baseline, an allow-all wipes the slate
// so only later entries survive. Without any catch-all, a default avoid-all
// baseline is prepended.
func truncateAtCatchAll(entries []domain.CollisionRequest) []domain.CollisionRequest {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !allRobotLinks(e) || e.BodyB != domain.All || !allLinkBs(e) {
			continue
		}
		if e.Kind == domain.AvoidCollision {
			return entries[i:]
		}
		return entries[i+1:]
	}
	baseline := domain.CollisionRequest{
		Kind:       domain.AvoidCollision,
		RobotLinks: []domain.LinkName{domain.AllLink},
		BodyB:      domain.All,
		LinkBs:     []domain.LinkName{domain.AllLink},
		MinDist:    -1,
	}
	return append([]domain.CollisionRequest{baseline}, entries...)
}

// expandBodies replaces each catch-all body with one entry per body: the
// robot first, then every object in registration order.
func (r *Resolver) expandBodies(entries []domain.CollisionRequest) ([]domain.CollisionRequest, error) {
	bodies := append([]string{r.view.RobotName()}, r.view.ObjectNames()...)
	var out []domain.CollisionRequest
	for _, e := range entries {
		if e.BodyB != domain.All {
			out = append(out, e)
			continue
		}
		for _, body := range bodies {
			c := e
			c.BodyB = body
			c.RobotLinks = append([]domain.LinkName(nil), e.RobotLinks...)
			c.LinkBs = append([]domain.LinkName(nil), e.LinkBs...)
			out = append(out, c)
		}
	}
	return out, nil
}

// expandRobotLinks replaces catch-all robot link selectors with one entry
// per controlled collision-bearing robot link, and splits multi-link
// selectors into singletons. Avoid-all-self-collision entries pass through
// untouched; they reduce in bulk against the self-collision matrix.
func (r *Resolver) expandRobotLinks(entries []domain.CollisionRequest) ([]domain.CollisionRequest, error) {
	var out []domain.CollisionRequest
	for _, e := range entries {
		if r.isAvoidAllSelf(e) {
			out = append(out, e)
			continue
		}
		links := e.RobotLinks
		if allRobotLinks(e) {
			controlled, err := r.view.ControlledRobotLinks()
			if err != nil {
				return nil, err
			}
			links = controlled
		}
		for _, l := range links {
			c := e
			c.RobotLinks = []domain.LinkName{l}
			c.LinkBs = append([]domain.LinkName(nil), e.LinkBs...)
			out = append(out, c)
		}
	}
	return out, nil
}

// expandLinkBs replaces catch-all link selectors on the B side: against the
// robot itself the candidates come from the self-collision matrix, against
// an object from its collision-bearing links. Multi-link selectors split
// into singletons.
func (r *Resolver) expandLinkBs(entries []domain.CollisionRequest) ([]domain.CollisionRequest, error) {
	robot := r.view.RobotName()
	var out []domain.CollisionRequest
	for _, e := range entries {
		if r.isAvoidAllSelf(e) {
			out = append(out, e)
			continue
		}
		links := e.LinkBs
		if allLinkBs(e) {
			var err error
			if e.BodyB == robot {
				links, err = r.view.PossibleSelfCollisions(e.RobotLinks[0])
			} else {
				links, err = r.view.BodyCollisionLinks(e.BodyB)
			}
			if err != nil {
				return nil, err
			}
		}
		for _, l := range links {
			c := e
			c.RobotLinks = append([]domain.LinkName(nil), e.RobotLinks...)
			c.LinkBs = []domain.LinkName{l}
			out = append(out, c)
		}
	}
	return out, nil
}

// reduce folds the fully expanded entry list into the distance table in
// order: avoids set, allows delete in both pair orientations, and an
// avoid-all-self installs the whole self-collision matrix at once.
func (r *Resolver) reduce(entries []domain.CollisionRequest) (domain.DistanceTable, error) {
	robot := r.view.RobotName()
	table := make(domain.DistanceTable)
	for _, e := range entries {
		switch {
		case r.isAvoidAllSelf(e):
			pairs, err := r.view.SelfCollisionPairs()
			if err != nil {
				return nil, err
			}
			for _, p := range pairs {
				table[domain.CollisionTriple{RobotLink: p.A, Body: robot, LinkB: p.B}] = e.MinDist
			}
		case e.Kind == domain.AllowCollision:
			triple := domain.CollisionTriple{RobotLink: e.RobotLinks[0], Body: e.BodyB, LinkB: e.LinkBs[0]}
			delete(table, triple)
			delete(table, domain.CollisionTriple{RobotLink: triple.LinkB, Body: e.BodyB, LinkB: triple.RobotLink})
		default:
			table[domain.CollisionTriple{RobotLink: e.RobotLinks[0], Body: e.BodyB, LinkB: e.LinkBs[0]}] = e.MinDist
		}
	}
	r.logger.Debug("resolved collision requests", "entries", len(entries), "pairs", len(table))
	return table, nil
}

// isAvoidAllSelf recognizes "avoid all self collisions": every robot link
// against every link of the robot itself.
func (r *Resolver) isAvoidAllSelf(e domain.CollisionRequest) bool {
	return e.Kind == domain.AvoidCollision &&
		allRobotLinks(e) &&
		e.BodyB == r.view.RobotName() &&
		allLinkBs(e)
}

func allRobotLinks(e domain.CollisionRequest) bool {
	return len(e.RobotLinks) == 0 || containsAll(e.RobotLinks)
}

func allLinkBs(e domain.CollisionRequest) bool {
	return len(e.LinkBs) == 0 || containsAll(e.LinkBs)
}

func containsAll(links []domain.LinkName) bool {
	for _, l := range links {
		if l == domain.AllLink {
			return true
		}
	}
	return false
}

func containsLink(links []domain.LinkName, name domain.LinkName) bool {
	for _, l := range links {
		if l == name {
			return true
		}
	}
	return false
}
