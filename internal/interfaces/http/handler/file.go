package handler

import (
	"io"
	"net/http"
	"strings"

	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/gin-gonic/gin"
)

// maxFileUploadSize caps how much of a PUT body is read for a single file
const maxFileUploadSize = 10 << 20 // 10 MiB

// FileHandler handles sandbox file HTTP requests
type FileHandler struct {
	BaseHandler
	fileService *workspaceapp.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *workspaceapp.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// List godoc
// @ID           listProjectFiles
// @Summary      List project files
// @Description  Recursive listing of the project sandbox
// @Tags         files
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[[]workspaceapp.FileEntry]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
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

	files, err := h.fileService.List(c.Request.Context(), workspaceapp.ListFilesInput{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, files)
}

// Read godoc
// @ID           readProjectFile
// @Summary      Read a project file
// @Description  Return the raw content of a sandbox file
// @Tags         files
// @Produce      octet-stream
// @Param        id path string true "Project ID" format(uuid)
// @Param        path path string true "File path inside the sandbox"
// @Success      200 {string} binary "File content"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files/{path} [get]
func (h *FileHandler) Read(c *gin.Context) {
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

	path := filePathParam(c)
	if path == "" {
		h.BadRequest(c, "File path is required")
		return
	}

	content, err := h.fileService.Read(c.Request.Context(), workspaceapp.ReadFileInput{
		ProjectID: projectID,
		UserID:    userID,
		Path:      path,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", content.Content)
}

// Write godoc
// @ID           writeProjectFile
// @Summary      Write a project file
// @Description  Create or overwrite a sandbox file, creating parent directories; editors and owners only
// @Tags         files
// @Accept       octet-stream
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        path path string true "File path inside the sandbox"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files/{path} [put]
func (h *FileHandler) Write(c *gin.Context) {
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

	path := filePathParam(c)
	if path == "" {
		h.BadRequest(c, "File path is required")
		return
	}

	content, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFileUploadSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if len(content) > maxFileUploadSize {
		h.ErrorWithCode(c, "FILE_TOO_LARGE", "File exceeds the allowed size")
		return
	}

	err = h.fileService.Write(c.Request.Context(), workspaceapp.WriteFileInput{
		ProjectID: projectID,
		UserID:    userID,
		Path:      path,
		Content:   content,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "File saved"})
}

// Delete godoc
// @ID           deleteProjectFile
// @Summary      Delete a project file
// @Description  Remove a sandbox file; editors and owners only
// @Tags         files
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Param        path path string true "File path inside the sandbox"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/files/{path} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
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

	path := filePathParam(c)
	if path == "" {
		h.BadRequest(c, "File path is required")
		return
	}

	err = h.fileService.Delete(c.Request.Context(), workspaceapp.DeleteFileInput{
		ProjectID: projectID,
		UserID:    userID,
		Path:      path,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "File deleted"})
}

// Export godoc
// @ID           exportProject
// @Summary      Export a project archive
// @Description  Zip the sandbox, upload it to object storage and return a download URL
// @Tags         files
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} APIResponse[workspaceapp.ExportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id}/export [post]
func (h *FileHandler) Export(c *gin.Context) {
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

	result, err := h.fileService.Export(c.Request.Context(), workspaceapp.ExportProjectInput{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// filePathParam extracts the wildcard file path, trimming the leading
// slash gin leaves on *path parameters
func filePathParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("path"), "/")
}
