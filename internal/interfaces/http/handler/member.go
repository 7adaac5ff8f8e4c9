package handler

import (
	identityapp "github.com/commerce/backoffice/internal/application/identity"
	"github.com/commerce/backoffice/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MemberHandler exposes tenant membership and permission endpoints
type MemberHandler struct {
	BaseHandler
	members *identityapp.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(members *identityapp.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// RegisterRoutes registers membership routes on the authenticated API group
func (h *MemberHandler) RegisterRoutes(rg *gin.RouterGroup) {
	members := rg.Group("/members")
	{
		members.GET("", h.List)
		members.POST("", h.Add)
		members.GET("/:userId", h.Get)
		members.PUT("/:userId/role", h.UpdateRole)
		members.PUT("/:userId/permissions", h.UpdatePermissions)
		members.PUT("/:userId/template", h.ApplyTemplate)
	}

	rg.GET("/role-templates", h.ListTemplates)
}

// AddMemberRequest adds a user to the actor's tenant
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"required"`
}

// UpdateRoleRequest changes a member's role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdatePermissionsRequest replaces a member's granular permission set
type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// ApplyTemplateRequest applies a named role template to a member
type ApplyTemplateRequest struct {
	Template string `json:"template" binding:"required"`
}

func (h *MemberHandler) Add(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		h.BadRequest(c, "Invalid role")
		return
	}

	member, err := h.members.AddMember(c.Request.Context(), actor, req.UserID, role)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, member)
}

func (h *MemberHandler) UpdateRole(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	role, err := identity.ParseRole(req.Role)
	if err != nil {
		h.BadRequest(c, "Invalid role")
		return
	}

	member, err := h.members.UpdateMemberRole(c.Request.Context(), actor, userID, role)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

func (h *MemberHandler) UpdatePermissions(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req UpdatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	keys := make([]identity.PermissionKey, len(req.Permissions))
	for i, p := range req.Permissions {
		keys[i] = identity.PermissionKey(p)
	}

	member, err := h.members.UpdatePermissions(c.Request.Context(), actor, userID, keys)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

func (h *MemberHandler) ApplyTemplate(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	var req ApplyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	member, err := h.members.ApplyRoleTemplate(c.Request.Context(), actor, userID, req.Template)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

func (h *MemberHandler) Get(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID format")
		return
	}

	member, err := h.members.GetMember(c.Request.Context(), actor, userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, member)
}

func (h *MemberHandler) List(c *gin.Context) {
	actor, ok := h.requireActor(c)
	if !ok {
		return
	}

	filter, err := bindListFilter(c)
	if err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.members.ListMembers(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

func (h *MemberHandler) ListTemplates(c *gin.Context) {
	if _, ok := h.requireActor(c); !ok {
		return
	}

	h.Success(c, identityapp.ListTemplates())
}
