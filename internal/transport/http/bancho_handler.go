package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/auth"
	"github.com/kolejker/OsaltServer/internal/core"
)

const (
	// HeaderClientToken carries the session token on authenticated exchanges.
	HeaderClientToken = "osu-token"
	// HeaderServerToken returns a freshly minted session token after login.
	HeaderServerToken = "cho-token"

	contentTypeBinary = "application/octet-stream"
)

// BanchoHandler serves the binary game protocol over POST /.
type BanchoHandler struct {
	engine  *core.Engine
	auth    *auth.Service
	maxBody int64
	log     *zerolog.Logger
}

// NewBanchoHandler creates a handler. maxBody caps the request body;
// zero disables the cap.
func NewBanchoHandler(engine *core.Engine, authService *auth.Service, maxBody int64, logger *zerolog.Logger) *BanchoHandler {
	return &BanchoHandler{
		engine:  engine,
		auth:    authService,
		maxBody: maxBody,
		log:     logger,
	}
}

// Exchange handles one request/response cycle. Requests without a token
// header are logins.
// POST /
func (h *BanchoHandler) Exchange(c *gin.Context) {
	body, err := h.readBody(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Warn().Err(err).Msg("failed to read request body")
		c.Status(http.StatusBadRequest)
		return
	}

	token := c.GetHeader(HeaderClientToken)
	if token == "" {
		h.login(c, body)
		return
	}
	h.exchange(c, token, body)
}

// Index answers browsers poking at the server.
// GET /
func (h *BanchoHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, "osalt bancho: %d online", h.engine.Registry().Len())
}

func (h *BanchoHandler) login(c *gin.Context, body []byte) {
	response, token := h.auth.HandleLogin(c.Request.Context(), body)
	if token != "" {
		c.Header(HeaderServerToken, token)
	}
	c.Data(http.StatusOK, contentTypeBinary, response)
}

func (h *BanchoHandler) exchange(c *gin.Context, token string, body []byte) {
	if _, err := h.auth.ValidateToken(token); err != nil {
		h.log.Debug().Err(err).Msg("rejected session token")
		c.Status(http.StatusUnauthorized)
		return
	}

	response, found := h.engine.HandleAuthenticated(token, body)
	if !found {
		h.log.Debug().Msg("unknown session token")
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Data(http.StatusOK, contentTypeBinary, response)
}

func (h *BanchoHandler) readBody(c *gin.Context) ([]byte, error) {
	r := c.Request.Body
	if h.maxBody > 0 {
		r = http.MaxBytesReader(c.Writer, r, h.maxBody)
	}
	return io.ReadAll(r)
}
