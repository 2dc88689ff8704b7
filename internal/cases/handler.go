package cases

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casedesk/internal/shared/server/middleware"
	"casedesk/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches case routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cases", h.list)
	rg.POST("/cases", h.create)
	rg.GET("/cases/:caseId", h.get)
	rg.GET("/cases/:caseId/form", h.getForm)
	rg.PUT("/cases/:caseId/form", h.saveForm)
	rg.POST("/cases/:caseId/borrowers", h.addBorrower)
	rg.DELETE("/cases/:caseId/borrowers/:borrowerId", h.removeBorrower)
	rg.POST("/cases/:caseId/borrowers/:borrowerId/primary", h.setPrimaryBorrower)
	rg.GET("/cases/:caseId/outcome", h.getOutcome)
	rg.POST("/cases/:caseId/outcome", h.saveOutcome)
	rg.POST("/cases/:caseId/calculate", h.calculate)
	rg.POST("/cases/:caseId/guidelines/query", h.guidelinesQuery)
	rg.POST("/cases/:caseId/snapshot", h.snapshot)
}

func (h *Handler) list(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	records, err := h.Svc.List(c.Request.Context(), tenantID, userID, c.Query("status"))
	if err != nil {
		h.fail(c, err, "failed to list cases")
		return
	}
	respond.OK(c, gin.H{"cases": records})
}

func (h *Handler) create(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	var form *FormState
	if c.Request.ContentLength > 0 {
		var body FormState
		if err := c.ShouldBindJSON(&body); err != nil {
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
			return
		}
		form = &body
	}

	record, err := h.Svc.Create(c.Request.Context(), tenantID, userID, form)
	if err != nil {
		h.fail(c, err, "failed to create case")
		return
	}
	respond.JSON(c, http.StatusCreated, record)
}

func (h *Handler) get(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	record, err := h.Svc.Get(c.Request.Context(), tenantID, userID, caseIDParam(c))
	if err != nil {
		h.fail(c, err, "failed to fetch case")
		return
	}
	respond.OK(c, record)
}

func (h *Handler) getForm(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	form, err := h.Svc.GetForm(c.Request.Context(), tenantID, userID, caseIDParam(c))
	if err != nil {
		h.fail(c, err, "failed to fetch case form")
		return
	}
	respond.OK(c, form)
}

func (h *Handler) saveForm(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	var form FormState
	if err := c.ShouldBindJSON(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	if err := validateForm(form); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
		return
	}

	record, err := h.Svc.SaveForm(c.Request.Context(), tenantID, userID, caseIDParam(c), form)
	if err != nil {
		h.fail(c, err, "failed to save case")
		return
	}
	respond.OK(c, record)
}

func (h *Handler) addBorrower(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	record, err := h.Svc.AddBorrower(c.Request.Context(), tenantID, userID, caseIDParam(c))
	if err != nil {
		h.fail(c, err, "failed to add borrower")
		return
	}
	respond.OK(c, record)
}

func (h *Handler) removeBorrower(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	record, err := h.Svc.RemoveBorrower(c.Request.Context(), tenantID, userID, caseIDParam(c), c.Param("borrowerId"))
	if err != nil {
		h.fail(c, err, "failed to remove borrower")
		return
	}
	respond.OK(c, record)
}

func (h *Handler) setPrimaryBorrower(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	record, err := h.Svc.SetPrimaryBorrower(c.Request.Context(), tenantID, userID, caseIDParam(c), c.Param("borrowerId"))
	if err != nil {
		h.fail(c, err, "failed to set primary borrower")
		return
	}
	respond.OK(c, record)
}

func (h *Handler) getOutcome(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	record, err := h.Svc.Get(c.Request.Context(), tenantID, userID, caseIDParam(c))
	if err != nil {
		h.fail(c, err, "failed to fetch case")
		return
	}
	respond.OK(c, ToOutcomeForm(record.Outcome))
}

func (h *Handler) saveOutcome(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	var form OutcomeForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}

	raw, err := h.Svc.SaveOutcome(c.Request.Context(), tenantID, userID, caseIDParam(c), form)
	if err != nil {
		h.fail(c, err, "failed to update outcome")
		return
	}
	respond.Raw(c, http.StatusOK, raw)
}

func (h *Handler) calculate(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	raw, err := h.Svc.Calculate(c.Request.Context(), tenantID, userID, caseIDParam(c))
	if err != nil {
		h.fail(c, err, "failed to calculate")
		return
	}
	respond.Raw(c, http.StatusOK, raw)
}

func (h *Handler) guidelinesQuery(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	var input GuidelinesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(input.Question) == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "question is required", nil)
		return
	}

	raw, err := h.Svc.GuidelinesQuery(c.Request.Context(), tenantID, userID, caseIDParam(c), input)
	if err != nil {
		h.fail(c, err, "failed to query guidelines")
		return
	}
	respond.Raw(c, http.StatusOK, raw)
}

func (h *Handler) snapshot(c *gin.Context) {
	tenantID := middleware.TenantIDFromContext(c)
	userID := middleware.UserIDFromContext(c)

	raw, err := h.Svc.Snapshot(c.Request.Context(), tenantID, userID, caseIDParam(c))
	if err != nil {
		h.fail(c, err, "failed to snapshot case")
		return
	}
	respond.Raw(c, http.StatusOK, raw)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrUnexpectedShape):
		respond.Error(c, http.StatusBadGateway, ErrorCodeUpstreamShape, "upstream answered with an unrecognizable case payload", nil)
	default:
		respond.Error(c, http.StatusBadGateway, ErrorCodeUpstream, message, err.Error())
	}
}

func caseIDParam(c *gin.Context) string {
	return c.Param("caseId")
}

// validateForm checks the structural rules the mapper cannot repair.
// Numeric fields are not validated here; malformed text maps to Unknown.
func validateForm(f FormState) error {
	if len(strings.TrimSpace(f.Deal.State)) != 2 {
		return errors.New("deal.state must be a 2-letter code")
	}
	if len(f.Borrowers) == 0 {
		return errors.New("at least one borrower is required")
	}
	return nil
}
