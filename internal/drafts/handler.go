package drafts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casedesk/internal/cases"
	"casedesk/internal/shared/server/middleware"
	"casedesk/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the drafts service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches draft routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/drafts", h.list)
	rg.POST("/drafts", h.create)
	rg.GET("/drafts/:draftId", h.get)
	rg.PUT("/drafts/:draftId", h.save)
	rg.POST("/drafts/:draftId/complete", h.complete)
	rg.DELETE("/drafts/:draftId", h.remove)
}

type saveDraftRequest struct {
	Step int             `json:"step"`
	Form cases.FormState `json:"form"`
}

func (h *Handler) list(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	out, err := h.Svc.List(c.Request.Context(), tenantID, userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, cases.ErrorCodeInternal, "failed to list drafts", nil)
		return
	}
	if out == nil {
		out = []Draft{}
	}
	respond.OK(c, gin.H{"drafts": out})
}

func (h *Handler) create(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	draft, err := h.Svc.Create(c.Request.Context(), tenantID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, cases.ErrorCodeInternal, "failed to create draft", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, draft)
}

func (h *Handler) get(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	draft, err := h.Svc.Get(c.Request.Context(), tenantID, userID, c.Param("draftId"))
	if err != nil {
		h.fail(c, err, "failed to fetch draft")
		return
	}
	respond.OK(c, draft)
}

func (h *Handler) save(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, cases.ErrorCodeValidation, "invalid request body", nil)
		return
	}

	draft, err := h.Svc.Save(c.Request.Context(), tenantID, userID, c.Param("draftId"), req.Step, req.Form)
	if err != nil {
		h.fail(c, err, "failed to save draft")
		return
	}
	respond.OK(c, draft)
}

func (h *Handler) complete(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	draft, record, err := h.Svc.Complete(c.Request.Context(), tenantID, userID, c.Param("draftId"))
	if err != nil {
		h.fail(c, err, "failed to complete draft")
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"draft": draft,
		"case":  record,
	})
}

func (h *Handler) remove(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Delete(c.Request.Context(), tenantID, userID, c.Param("draftId")); err != nil {
		h.fail(c, err, "failed to delete draft")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "NOT_FOUND", "draft not found", nil)
	case errors.Is(err, ErrCompleted):
		respond.Error(c, http.StatusConflict, "DRAFT_COMPLETED", "draft already completed", nil)
	case errors.Is(err, cases.ErrUnexpectedShape):
		respond.Error(c, http.StatusBadGateway, cases.ErrorCodeUpstreamShape, "upstream answered with an unrecognizable case payload", nil)
	default:
		respond.Error(c, http.StatusBadGateway, cases.ErrorCodeUpstream, message, err.Error())
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
