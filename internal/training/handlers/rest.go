package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gartstein/ehs/internal/training/auth"
	"github.com/gartstein/ehs/internal/training/models"
	"github.com/gartstein/ehs/internal/training/query"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// maxBodyBytes caps REST request bodies.
const maxBodyBytes = 1 << 20

// RESTHandler exposes the lifecycle engine as a JSON API under /v1.
type RESTHandler struct {
	service LifecycleController
	logger  *zap.Logger
	metrics http.Handler
	ready   func(context.Context) error
}

// NewRESTHandler constructs a RESTHandler. metrics is served on /metrics and
// ready backs /healthz; either may be nil.
func NewRESTHandler(service LifecycleController, logger *zap.Logger, metrics http.Handler, ready func(context.Context) error) *RESTHandler {
	return &RESTHandler{
		service: service,
		logger:  logger.Named("rest_handler"),
		metrics: metrics,
		ready:   ready,
	}
}

type route struct {
	method  string
	pattern string
	handle  runtime.HandlerFunc
}

func (h *RESTHandler) routes() []route {
	return []route{
		{http.MethodGet, "/healthz", h.healthz},

		{http.MethodPost, "/v1/trainings", h.createTraining},
		{http.MethodGet, "/v1/trainings", h.listTrainings},
		{http.MethodGet, "/v1/trainings/{id}", h.getTraining},
		{http.MethodPatch, "/v1/trainings/{id}", h.updateTraining},
		{http.MethodDelete, "/v1/trainings/{id}", h.deleteTraining},

		{http.MethodPost, "/v1/opportunities", h.createOpportunity},
		{http.MethodGet, "/v1/opportunities", h.listOpportunities},
		{http.MethodGet, "/v1/opportunities/{id}", h.getOpportunity},
		{http.MethodPost, "/v1/opportunities/{id}/close", h.closeOpportunity},
		{http.MethodPost, "/v1/opportunities/{id}/proposals", h.submitProposal},
		{http.MethodGet, "/v1/opportunities/{id}/proposals", h.listProposals},
		{http.MethodPost, "/v1/opportunities/{id}/sessions", h.scheduleSession},
		{http.MethodGet, "/v1/proposals/{id}", h.getProposal},
		{http.MethodPost, "/v1/proposals/{id}/decision", h.decideProposal},

		{http.MethodGet, "/v1/sessions", h.listSessions},
		{http.MethodGet, "/v1/sessions/{id}", h.getSession},
		{http.MethodPost, "/v1/sessions/{id}/status", h.advanceSession},
		{http.MethodPost, "/v1/sessions/{id}/materials", h.addMaterial},

		{http.MethodPost, "/v1/vendors", h.registerVendor},
		{http.MethodGet, "/v1/vendors", h.listVendors},
		{http.MethodGet, "/v1/vendors/{id}", h.getVendor},
		{http.MethodGet, "/v1/vendors/summary", h.vendorSummary},
		{http.MethodPost, "/v1/vendors/{id}/approve", h.approveVendor},
		{http.MethodPost, "/v1/vendors/{id}/reject", h.rejectVendor},

		{http.MethodGet, "/v1/calendar", h.calendar},
	}
}

// Handler builds the HTTP handler: authentication first, then per-caller
// rate limiting, then routing.
func (h *RESTHandler) Handler(jwtSecret string, limiter *RateLimiter) (http.Handler, error) {
	mux := runtime.NewServeMux()
	for _, r := range h.routes() {
		if err := mux.HandlePath(r.method, r.pattern, r.handle); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", r.method, r.pattern, err)
		}
	}
	if h.metrics != nil {
		if err := mux.HandlePath(http.MethodGet, "/metrics", func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
			h.metrics.ServeHTTP(w, r)
		}); err != nil {
			return nil, err
		}
	}
	var handler http.Handler = mux
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	return auth.HTTPMiddleware(handler, jwtSecret), nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (h *RESTHandler) fail(w http.ResponseWriter, err error) {
	code, body := httpError(h.logger, err)
	writeJSON(w, code, body)
}

func (h *RESTHandler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Kind: "validation"})
}

func (h *RESTHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *RESTHandler) pathID(w http.ResponseWriter, params map[string]string) (uuid.UUID, bool) {
	id, err := uuid.Parse(params["id"])
	if err != nil {
		h.badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *RESTHandler) healthz(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Trainings

func (h *RESTHandler) createTraining(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req TrainingRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.service.CreateTraining(r.Context(), req.toModel())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *RESTHandler) listTrainings(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	list, err := h.service.ListTrainings(r.Context(), query.TrainingFilter{
		SearchText: q.Get("search"),
		Category:   q.Get("category"),
		Format:     q.Get("format"),
		Status:     q.Get("status"),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RESTHandler) getTraining(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	t, err := h.service.GetTraining(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *RESTHandler) updateTraining(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	var req TrainingRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.service.UpdateTraining(r.Context(), req.toUpdate(id))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *RESTHandler) deleteTraining(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	if err := h.service.DeleteTraining(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Opportunities

func (h *RESTHandler) createOpportunity(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req OpportunityRequest
	if !h.decode(w, r, &req) {
		return
	}
	o, err := req.toModel()
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	created, err := h.service.CreateOpportunity(r.Context(), o)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *RESTHandler) listOpportunities(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	list, err := h.service.ListOpportunities(r.Context(), query.OpportunityFilter{
		SearchText: q.Get("search"),
		Category:   q.Get("category"),
		Format:     q.Get("format"),
		Status:     q.Get("status"),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RESTHandler) getOpportunity(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	o, err := h.service.GetOpportunity(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *RESTHandler) closeOpportunity(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	o, err := h.service.CloseOpportunity(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Proposals

func (h *RESTHandler) submitProposal(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	var req SubmitProposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	vendorID, err := optionalID("vendor ID", req.VendorID)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	p, err := h.service.SubmitProposal(r.Context(), id, vendorID, req.Fees, req.Trainers, req.Notes)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProposalResponse{Proposal: p})
}

func (h *RESTHandler) listProposals(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	list, err := h.service.ListProposals(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RESTHandler) getProposal(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	p, err := h.service.GetProposal(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ProposalResponse{Proposal: p})
}

func (h *RESTHandler) decideProposal(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	var req DecideProposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	decision, known := models.ParseProposalStatus(req.Decision)
	if !known {
		h.badRequest(w, fmt.Sprintf("unknown decision %q", req.Decision))
		return
	}
	d, err := h.service.DecideProposal(r.Context(), id, decision)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Sessions

func (h *RESTHandler) scheduleSession(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	var req ScheduleSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.service.ScheduleSession(r.Context(), id, req.toModel())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Session: s})
}

func (h *RESTHandler) listSessions(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	list, err := h.service.ListSessions(r.Context(), query.SessionFilter{
		SearchText: q.Get("search"),
		Status:     q.Get("status"),
		Format:     q.Get("format"),
		EmployeeID: q.Get("employee"),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RESTHandler) getSession(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	s, err := h.service.GetSession(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Session: s})
}

func (h *RESTHandler) advanceSession(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	var req AdvanceSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.service.AdvanceSession(r.Context(), id, models.SessionStatus(req.Status), req.Rating)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Session: s})
}

func (h *RESTHandler) addMaterial(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	var req MaterialRequest
	if !h.decode(w, r, &req) {
		return
	}
	s, err := h.service.AddSessionMaterial(r.Context(), id, req.Name, req.Ref)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Session: s})
}

// Vendors

func (h *RESTHandler) registerVendor(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req VendorRequest
	if !h.decode(w, r, &req) {
		return
	}
	v, err := h.service.RegisterVendor(r.Context(), req.toModel())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, VendorResponse{Vendor: v})
}

func (h *RESTHandler) listVendors(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	list, err := h.service.ListVendors(r.Context(), query.VendorFilter{
		SearchText:     q.Get("search"),
		Status:         q.Get("status"),
		Specialization: q.Get("specialization"),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *RESTHandler) getVendor(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if params["id"] == "summary" {
		h.vendorSummary(w, r, params)
		return
	}
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	v, err := h.service.GetVendor(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VendorResponse{Vendor: v})
}

func (h *RESTHandler) vendorSummary(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	s, err := h.service.VendorSummary(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *RESTHandler) approveVendor(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.reviewVendor(w, r, params, h.service.ApproveVendor)
}

func (h *RESTHandler) rejectVendor(w http.ResponseWriter, r *http.Request, params map[string]string) {
	h.reviewVendor(w, r, params, h.service.RejectVendor)
}

func (h *RESTHandler) reviewVendor(w http.ResponseWriter, r *http.Request, params map[string]string,
	review func(context.Context, uuid.UUID) (*models.Vendor, error)) {
	id, ok := h.pathID(w, params)
	if !ok {
		return
	}
	v, err := review(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VendorResponse{Vendor: v})
}

// Calendar

func (h *RESTHandler) calendar(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	q := r.URL.Query()
	month := time.Now().UTC()
	if m := q.Get("month"); m != "" {
		parsed, err := time.Parse("2006-01", m)
		if err != nil {
			h.badRequest(w, "month must look like 2025-05")
			return
		}
		month = parsed
	}
	cal, err := h.service.Calendar(r.Context(), month, q.Get("filter"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}
