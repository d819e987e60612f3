// Package httpapi exposes a world over HTTP. Mutations and queries map to
// routes one-to-one; errors map to status codes by their domain sentinel.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"cogentcore.org/core/math32"
	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/armech/armature/pkg/domain"
	"github.com/armech/armature/pkg/spatial"
)

// World defines the world operations the HTTP surface needs.
type World interface {
	AddRobot(doc []byte) error
	AddDescription(doc []byte, prefix string, parentLink domain.LinkName, groupName string) error
	AddBody(spec domain.BodySpec, pose spatial.Pose, parentLink domain.LinkName) error
	DeleteGroup(name string) error
	GroupNames() []string
	SetJointPositions(positions map[domain.JointName]float32) error
	ComputeFK(root, tip domain.LinkName) (spatial.Pose, error)
	ComputeAllFKs() (map[domain.LinkName]spatial.Pose, error)
	ResolveCollisionGoals(requests []domain.CollisionRequest) (domain.DistanceTable, error)
	AllJointPositionLimits() map[domain.JointName]domain.LimitPair
	JointLimits(name domain.JointName, order int) (lower, upper *float32, err error)
	Version() uint64
	RobotName() string
}

// Server routes HTTP requests to a world.
type Server struct {
	world  World
	logger *slog.Logger
}

// NewHandler creates the HTTP handler for a world. A non-nil registry also
// mounts /metrics.
func NewHandler(world World, logger *slog.Logger, registry *prometheus.Registry) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{world: world, logger: logger}

	r := chi.NewRouter()
	r.Post("/robot", s.AddRobot)
	r.Post("/description", s.AddDescription)
	r.Post("/bodies", s.AddBody)
	r.Delete("/groups/{name}", s.DeleteGroup)
	r.Get("/groups", s.GetGroups)
	r.Put("/state", s.PutState)
	r.Get("/fk", s.GetFK)
	r.Get("/fk/all", s.GetAllFKs)
	r.Post("/collisions/resolve", s.ResolveCollisions)
	r.Get("/limits", s.GetLimits)
	r.Get("/health", s.GetHealth)
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return r
}

type poseDTO struct {
	// Position is [x, y, z]; Orientation is a quaternion [x, y, z, w].
	Position    []float32 `json:"position,omitempty"`
	Orientation []float32 `json:"orientation,omitempty"`
}

func (p poseDTO) toPose() spatial.Pose {
	pose := spatial.Identity()
	if len(p.Position) == 3 {
		pose.Pos = math32.Vec3(p.Position[0], p.Position[1], p.Position[2])
	}
	if len(p.Orientation) == 4 {
		pose.Quat = math32.Quat{X: p.Orientation[0], Y: p.Orientation[1], Z: p.Orientation[2], W: p.Orientation[3]}
	}
	return pose
}

func poseToDTO(p spatial.Pose) poseDTO {
	return poseDTO{
		Position:    []float32{p.Pos.X, p.Pos.Y, p.Pos.Z},
		Orientation: []float32{p.Quat.X, p.Quat.Y, p.Quat.Z, p.Quat.W},
	}
}

// AddRobot handles POST /robot.
func (s *Server) AddRobot(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Document string `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("AddRobot: invalid request body", "error", err)
		return
	}
	if err := s.world.AddRobot([]byte(body.Document)); err != nil {
		s.writeError(w, "AddRobot", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"robot":   s.world.RobotName(),
		"version": s.world.Version(),
	})
}

// AddDescription handles POST /description.
func (s *Server) AddDescription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Document   string `json:"document"`
		Prefix     string `json:"prefix,omitempty"`
		ParentLink string `json:"parent_link,omitempty"`
		GroupName  string `json:"group_name,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("AddDescription: invalid request body", "error", err)
		return
	}
	err := s.world.AddDescription([]byte(body.Document), body.Prefix, domain.LinkName(body.ParentLink), body.GroupName)
	if err != nil {
		s.writeError(w, "AddDescription", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"version": s.world.Version()})
}

// AddBody handles POST /bodies. The spec is decoded loosely and mapped with
// mapstructure so clients can omit fields irrelevant to the body kind.
func (s *Server) AddBody(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Spec       map[string]any `json:"spec"`
		Pose       poseDTO        `json:"pose"`
		ParentLink string         `json:"parent_link,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("AddBody: invalid request body", "error", err)
		return
	}
	var spec domain.BodySpec
	if err := mapstructure.WeakDecode(body.Spec, &spec); err != nil {
		http.Error(w, fmt.Sprintf("Invalid body spec: %v", err), http.StatusBadRequest)
		s.logger.Warn("AddBody: invalid spec", "error", err)
		return
	}
	if err := s.world.AddBody(spec, body.Pose.toPose(), domain.LinkName(body.ParentLink)); err != nil {
		s.writeError(w, "AddBody", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"version": s.world.Version()})
}

// DeleteGroup handles DELETE /groups/{name}.
func (s *Server) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.world.DeleteGroup(name); err != nil {
		s.writeError(w, "DeleteGroup", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"version": s.world.Version()})
}

// GetGroups handles GET /groups.
func (s *Server) GetGroups(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"groups": s.world.GroupNames()})
}

// PutState handles PUT /state.
func (s *Server) PutState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Positions map[domain.JointName]float32 `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PutState: invalid request body", "error", err)
		return
	}
	if err := s.world.SetJointPositions(body.Positions); err != nil {
		s.writeError(w, "PutState", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"version": s.world.Version()})
}

// GetFK handles GET /fk?root=...&tip=...
func (s *Server) GetFK(w http.ResponseWriter, r *http.Request) {
	root := r.URL.Query().Get("root")
	tip := r.URL.Query().Get("tip")
	if root == "" || tip == "" {
		http.Error(w, "root and tip query parameters are required", http.StatusBadRequest)
		return
	}
	pose, err := s.world.ComputeFK(domain.LinkName(root), domain.LinkName(tip))
	if err != nil {
		s.writeError(w, "GetFK", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"root": root,
		"tip":  tip,
		"pose": poseToDTO(pose),
	})
}

// GetAllFKs handles GET /fk/all.
func (s *Server) GetAllFKs(w http.ResponseWriter, r *http.Request) {
	poses, err := s.world.ComputeAllFKs()
	if err != nil {
		s.writeError(w, "GetAllFKs", err)
		return
	}
	out := make(map[string]poseDTO, len(poses))
	for name, pose := range poses {
		out[string(name)] = poseToDTO(pose)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"poses": out})
}

// ResolveCollisions handles POST /collisions/resolve.
func (s *Server) ResolveCollisions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Requests []domain.CollisionRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("ResolveCollisions: invalid request body", "error", err)
		return
	}
	table, err := s.world.ResolveCollisionGoals(body.Requests)
	if err != nil {
		s.writeError(w, "ResolveCollisions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"constraints": table.Entries()})
}

type limitDTO struct {
	Lower *float32 `json:"lower"`
	Upper *float32 `json:"upper"`
}

// GetLimits handles GET /limits?joint=...&order=N. Without a joint it
// returns the position limits of every free joint.
func (s *Server) GetLimits(w http.ResponseWriter, r *http.Request) {
	joint := r.URL.Query().Get("joint")
	if joint == "" {
		limits := s.world.AllJointPositionLimits()
		out := make(map[string]limitDTO, len(limits))
		for name, pair := range limits {
			out[string(name)] = limitDTO{Lower: pair.Lower, Upper: pair.Upper}
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"limits": out})
		return
	}
	order := domain.OrderPosition
	if raw := r.URL.Query().Get("order"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid order parameter", http.StatusBadRequest)
			return
		}
		order = parsed
	}
	lower, upper, err := s.world.JointLimits(domain.JointName(joint), order)
	if err != nil {
		s.writeError(w, "GetLimits", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"joint": joint,
		"order": order,
		"limit": limitDTO{Lower: lower, Upper: upper},
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownBody), errors.Is(err, domain.ErrNoPath):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrMalformedRequest), errors.Is(err, domain.ErrCorruptShape),
		errors.Is(err, domain.ErrUnknownRequestKind):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Warn(op+" rejected", "error", err)
	}
	http.Error(w, err.Error(), status)
}
