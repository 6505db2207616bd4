package handler

import (
	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/gin-gonic/gin"
)

// CollaborationHandler handles project membership HTTP requests
type CollaborationHandler struct {
	BaseHandler
	collabService *workspaceapp.CollaborationService
}

// NewCollaborationHandler creates a new collaboration handler
func NewCollaborationHandler(collabService *workspaceapp.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{
		collabService: collabService,
	}
}

// AddCollaboratorRequest represents the request body for adding a collaborator
type AddCollaboratorRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=editor viewer"`
}

// ChangeCollaboratorRoleRequest represents the request body for a role change
type ChangeCollaboratorRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=editor viewer"`
}

// List godoc
// @ID           listCollaborators
// @Summary      List project collaborators
// @Description  List the members of a project; any member may call this
// @Tags         collaborations
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[[]workspaceapp.CollaboratorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/collaborators [get]
func (h *CollaborationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	collaborators, err := h.collabService.List(c.Request.Context(), projectID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, collaborators)
}

// Add godoc
// @ID           addCollaborator
// @Summary      Add a collaborator
// @Description  Invite a user by email as editor or viewer; owner only
// @Tags         collaborations
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body AddCollaboratorRequest true "Collaborator to add"
// @Success      201 {object} APIResponse[workspaceapp.CollaboratorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/collaborators [post]
func (h *CollaborationHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	var req AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	collaborator, err := h.collabService.Add(c.Request.Context(), workspaceapp.AddCollaboratorInput{
		ProjectID: projectID,
		CallerID:  userID,
		Email:     req.Email,
		Role:      workspace.CollaborationRole(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, collaborator)
}

// ChangeRole godoc
// @ID           changeCollaboratorRole
// @Summary      Change a collaborator's role
// @Description  Switch a member between editor and viewer; owner only, owner row immutable
// @Tags         collaborations
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        userId path string true "Collaborator user ID" format(uuid)
// @Param        request body ChangeCollaboratorRoleRequest true "New role"
// @Success      200 {object} APIResponse[workspaceapp.CollaboratorDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/collaborators/{userId} [patch]
func (h *CollaborationHandler) ChangeRole(c *gin.Context) {
	callerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	targetID, err := parseUUIDParam(c, "userId")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req ChangeCollaboratorRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	collaborator, err := h.collabService.ChangeRole(c.Request.Context(), workspaceapp.ChangeCollaboratorRoleInput{
		ProjectID: projectID,
		CallerID:  callerID,
		UserID:    targetID,
		Role:      workspace.CollaborationRole(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, collaborator)
}

// Remove godoc
// @ID           removeCollaborator
// @Summary      Remove a collaborator
// @Description  Remove a member; owners remove anyone but themselves, members may leave
// @Tags         collaborations
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        userId path string true "Collaborator user ID" format(uuid)
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/collaborators/{userId} [delete]
func (h *CollaborationHandler) Remove(c *gin.Context) {
	callerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	projectID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid project ID")
		return
	}

	targetID, err := parseUUIDParam(c, "userId")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	err = h.collabService.Remove(c.Request.Context(), workspaceapp.RemoveCollaboratorInput{
		ProjectID: projectID,
		CallerID:  callerID,
		UserID:    targetID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Collaborator removed"})
}
