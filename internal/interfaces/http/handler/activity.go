package handler

import (
	activityapp "github.com/commerce/backoffice/internal/application/activity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler exposes the audit trail endpoints
type ActivityHandler struct {
	BaseHandler
	recorder *activityapp.Recorder
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(recorder *activityapp.Recorder) *ActivityHandler {
	return &ActivityHandler{recorder: recorder}
}

// RegisterRoutes registers activity routes on the authenticated API group
func (h *ActivityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	activities := rg.Group("/activities")
	{
		activities.GET("", h.List)
		activities.GET("/subject/:subjectId", h.ListBySubject)
	}
}

func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}
	if entryType := c.Query("type"); entryType != "" {
		filter.Filters["entry_type"] = entryType
	}

	page, err := h.recorder.List(c.Request.Context(), actor.TenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *ActivityHandler) ListBySubject(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	subjectID, err := uuid.Parse(c.Param("subjectId"))
	if err != nil {
		h.BadRequest(c, "Invalid subject ID format")
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.recorder.ListBySubject(c.Request.Context(), actor.TenantID, subjectID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
