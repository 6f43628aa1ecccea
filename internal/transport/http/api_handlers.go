package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/auth"
	"github.com/kolejker/OsaltServer/internal/core"
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	engine      *core.Engine
	authService *auth.Service
	log         *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(engine *core.Engine, authService *auth.Service, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		engine:      engine,
		authService: authService,
		log:         logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// NotifyRequest represents the notification request body.
type NotifyRequest struct {
	Message string `json:"message" binding:"required"`
}

// UserResponse represents a registered user in API responses.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse represents an online session in API responses.
type SessionResponse struct {
	UserID     int32     `json:"user_id"`
	Username   string    `json:"username"`
	Status     uint8     `json:"status"`
	StatusText string    `json:"status_text"`
	Mode       uint8     `json:"mode"`
	BeatmapID  int32     `json:"beatmap_id"`
	Since      time.Time `json:"since"`
}

// KickResponse reports how many sessions were removed.
type KickResponse struct {
	Removed int `json:"removed"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles user registration.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user already exists"})
		case errors.Is(err, auth.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username must be 3-15 letters, digits, underscores or hyphens"})
		case errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "password must be 6-128 characters"})
		default:
			h.log.Error().Err(err).Str("username", req.Username).Msg("failed to register user")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user.ID, user.Username, user.CreatedAt))
}

// ListUsers returns every registered user.
// GET /api/users
func (h *APIHandlers) ListUsers(c *gin.Context) {
	users, err := h.authService.Users(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u.ID, u.Username, u.CreatedAt))
	}
	c.JSON(http.StatusOK, response)
}

// ListSessions returns every online session in login order.
// GET /api/sessions
func (h *APIHandlers) ListSessions(c *gin.Context) {
	sessions := h.engine.Registry().Sessions()
	response := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		st := s.State()
		response = append(response, SessionResponse{
			UserID:     s.UserID,
			Username:   s.Username,
			Status:     uint8(st.Status),
			StatusText: st.StatusText,
			Mode:       uint8(st.Mode),
			BeatmapID:  st.BeatmapID,
			Since:      s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Kick logs out every session of a user.
// DELETE /api/sessions/:user_id
func (h *APIHandlers) Kick(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	removed := h.engine.LogoutUser(int32(userID))
	if removed == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not online"})
		return
	}

	h.log.Info().Int64("user_id", userID).Int("removed", removed).Msg("user kicked")
	c.JSON(http.StatusOK, KickResponse{Removed: removed})
}

// Notify broadcasts a notification to every online session.
// POST /api/notify
func (h *APIHandlers) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	h.engine.Notify(req.Message)
	c.Status(http.StatusAccepted)
}

func toUserResponse(id int64, username string, createdAt time.Time) UserResponse {
	return UserResponse{ID: id, Username: username, CreatedAt: createdAt}
}
