package ws

import (
	"errors"
	"net/http"

	"github.com/codeforge/backend/internal/application/generation"
	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/interfaces/http/dto"
	"github.com/codeforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades project WebSocket connections. Authentication runs
// in the JWT middleware before this handler; the project-access check
// happens here, before the upgrade, so rejections are plain HTTP
// responses.
type Handler struct {
	hub      *Hub
	projects *workspaceapp.ProjectService
	gen      *generation.Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler creates a WebSocket handler
func NewHandler(hub *Hub, projects *workspaceapp.ProjectService, gen *generation.Service, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		projects: projects,
		gen:      gen,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// browser clients connect from the frontend origin; CORS
			// policy is enforced at the HTTP layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeProject handles GET /ws/projects/:id
func (h *Handler) ServeProject(c *gin.Context) {
	userIDStr := middleware.GetJWTUserID(c)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid project ID"))
		return
	}

	if _, err := h.projects.Access(c.Request.Context(), projectID, userID); err != nil {
		h.accessDenied(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("project_id", projectID.String()),
			zap.Error(err))
		return
	}

	session := NewSession(projectID, h.hub, h.gen, h.logger)
	client := NewClient(h.hub, conn, projectID, userID, session, h.logger)
	h.welcome(client, session)
	client.Run()
}

// welcome queues the connect-time frames for a new client: a connected
// status followed by the current sandbox listing. The write pump drains
// them once the client starts running.
func (h *Handler) welcome(client *Client, session *Session) {
	client.deliver(StatusFrame("connected"))

	files, err := h.gen.ListFiles(session.sandbox)
	if err != nil {
		h.logger.Warn("Failed to list sandbox on connect",
			zap.String("sandbox", session.sandbox),
			zap.Error(err))
		return
	}
	client.deliver(ProjectInfoFrame(files))
}

func (h *Handler) accessDenied(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred"))
}
