package handler

import (
	"context"

	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProjectHandler handles project CRUD HTTP requests
type ProjectHandler struct {
	BaseHandler
	projectService *workspaceapp.ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService *workspaceapp.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProjectRequest represents the request body for project creation
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
}

// UpdateProjectRequest represents the request body for project updates
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ProjectListQuery represents query parameters for listing projects
type ProjectListQuery struct {
	Keyword  string `form:"keyword"`
	Status   string `form:"status" binding:"omitempty,oneof=active archived"`
	Owned    bool   `form:"owned"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create godoc
// @ID           createProject
// @Summary      Create a project
// @Description  Create a new project owned by the caller
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project to create"
// @Success      201 {object} APIResponse[workspaceapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), workspaceapp.CreateProjectInput{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, project)
}

// Get godoc
// @ID           getProjectById
// @Summary      Get a project
// @Description  Retrieve a project the caller owns or collaborates on
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[workspaceapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
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

	project, err := h.projectService.Get(c.Request.Context(), projectID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// List godoc
// @ID           listProjects
// @Summary      List projects
// @Description  Get a paginated list of projects the caller can access; owned=true restricts to owned projects
// @Tags         projects
// @Produce      json
// @Param        keyword query string false "Search keyword"
// @Param        status query string false "Project status" Enums(active, archived)
// @Param        owned query bool false "Only owned projects"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Success      200 {object} APIResponse[workspaceapp.ProjectListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query ProjectListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := workspace.NewProjectFilter()
	filter.Keyword = query.Keyword
	if query.Status != "" {
		status := workspace.ProjectStatus(query.Status)
		filter.Status = &status
	}
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	var result *workspaceapp.ProjectListResult
	if query.Owned {
		result, err = h.projectService.ListOwned(c.Request.Context(), userID, filter)
	} else {
		result, err = h.projectService.List(c.Request.Context(), userID, filter)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Projects, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateProject
// @Summary      Update a project
// @Description  Update name or description; owner only
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        request body UpdateProjectRequest true "Fields to update"
// @Success      200 {object} APIResponse[workspaceapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
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

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), workspaceapp.UpdateProjectInput{
		ProjectID:   projectID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}

// Archive godoc
// @ID           archiveProject
// @Summary      Archive a project
// @Description  Mark a project read-only; owner only
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[workspaceapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/archive [post]
func (h *ProjectHandler) Archive(c *gin.Context) {
	h.transition(c, h.projectService.Archive)
}

// Unarchive godoc
// @ID           unarchiveProject
// @Summary      Unarchive a project
// @Description  Restore a project to active; owner only
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[workspaceapp.ProjectDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/unarchive [post]
func (h *ProjectHandler) Unarchive(c *gin.Context) {
	h.transition(c, h.projectService.Unarchive)
}

// Delete godoc
// @ID           deleteProject
// @Summary      Delete a project
// @Description  Delete a project, its collaborations and its sandbox; owner only
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
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

	if err := h.projectService.Delete(c.Request.Context(), projectID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Project deleted successfully"})
}

type projectTransition func(ctx context.Context, projectID, userID uuid.UUID) (*workspaceapp.ProjectDTO, error)

func (h *ProjectHandler) transition(c *gin.Context, fn projectTransition) {
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

	project, err := fn(c.Request.Context(), projectID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, project)
}
