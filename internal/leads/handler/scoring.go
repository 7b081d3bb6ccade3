package handler

import (
	"lead_portal_backend/internal/leads/transport"
	"lead_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Scoring(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.scoring.Scoring(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Recommendations(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.scoring.Recommendations(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Score(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.scoring.Score(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) BulkScore(c *gin.Context) {
	var req transport.BulkIDsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.scoring.BulkScore(c.Request.Context(), req.LeadIDs)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Rescore(c *gin.Context) {
	result, err := h.scoring.RequestRescore(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Accepted(c, result)
}
