package handler

import (
	"context"
	"net/http"

	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/httpkit"
	"lead_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeadService is the CRUD surface the handler drives.
type LeadService interface {
	Create(ctx context.Context, req transport.CreateLeadRequest, actorID *uuid.UUID) (transport.LeadResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error)
	Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error)
	Stats(ctx context.Context) (transport.LeadStatsResponse, error)
	BulkUpdate(ctx context.Context, req transport.BulkUpdateRequest) (transport.BulkResponse, error)
	BulkDelete(ctx context.Context, req transport.BulkIDsRequest) (transport.BulkResponse, error)
}

// ScoringService is the scoring surface the handler drives.
type ScoringService interface {
	Scoring(ctx context.Context, id uuid.UUID) (transport.ScoringResponse, error)
	Recommendations(ctx context.Context, id uuid.UUID) (transport.RecommendationsResponse, error)
	Score(ctx context.Context, id uuid.UUID) (transport.ScoreLeadResponse, error)
	BulkScore(ctx context.Context, ids []uuid.UUID) (transport.BulkScoreResponse, error)
	RequestRescore(ctx context.Context) (transport.RescoreResponse, error)
}

type Handler struct {
	leads   LeadService
	scoring ScoringService
	val     *validator.Validator
}

const (
	msgInvalidRequest = "invalid request"
	msgInvalidLeadID  = "invalid lead id"
)

func New(leads LeadService, scoring ScoringService, val *validator.Validator) *Handler {
	return &Handler{leads: leads, scoring: scoring, val: val}
}

// RegisterRoutes mounts the lead routes. Static paths are registered next
// to /:id; gin resolves them before the parameter. adminOnly guards the
// full rescore.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/stats", h.Stats)
	rg.POST("/bulk/update", h.BulkUpdate)
	rg.POST("/bulk/delete", h.BulkDelete)
	rg.POST("/bulk/score", h.BulkScore)
	rg.POST("/rescore", adminOnly, h.Rescore)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.DELETE("/:id/hard", h.HardDelete)
	rg.GET("/:id/scoring", h.Scoring)
	rg.GET("/:id/recommendations", h.Recommendations)
	rg.POST("/:id/score", h.Score)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leads.Create(c.Request.Context(), req, httpkit.ActorID(c))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, err := h.leads.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leads.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.leads.SoftDelete(c.Request.Context(), id)) {
		return
	}

	httpkit.OK(c, gin.H{"id": id, "deleted": true})
}

func (h *Handler) HardDelete(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.leads.HardDelete(c.Request.Context(), id)) {
		return
	}

	httpkit.OK(c, gin.H{"id": id, "deleted": true, "permanent": true})
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if httpkit.HandleError(c, h.val.Struct(req)) {
		return
	}

	result, err := h.leads.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.leads.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, stats)
}

func (h *Handler) BulkUpdate(c *gin.Context) {
	var req transport.BulkUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leads.BulkUpdate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) BulkDelete(c *gin.Context) {
	var req transport.BulkIDsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.leads.BulkDelete(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// bindJSON decodes and validates the body. It writes the error response
// itself and reports whether the handler may continue.
func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return false
	}
	return !httpkit.HandleError(c, h.val.Struct(req))
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}
