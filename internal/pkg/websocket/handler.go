package websocket

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
)

// Handler upgrades authenticated requests to websocket connections
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	// onConnect runs after registration, typically to push the current state
	onConnect func(userID int64)
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins accepts
// any origin.
func NewHandler(hub *Hub, allowedOrigins []string, onConnect func(userID int64), logger zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		onConnect: onConnect,
		logger:    logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// HandleConnection godoc
// @Summary Stream selection snapshots
// @Description Upgrades to a websocket that receives a "snapshot" message after every selection change.
// @Description Clients may send {"type":"selectCourse","payload":{"courseId":"CS"}},
// @Description {"type":"selectSemester","payload":{"semester":1}} or {"type":"deselectCourse"}.
// @Tags selection
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Success 101 {string} string "Switching Protocols"
// @Failure 401 {object} dto.ErrorResponse
// @Router /selection/ws [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		logger: h.logger,
	}
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	if h.onConnect != nil {
		h.onConnect(userID)
	}

	h.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
