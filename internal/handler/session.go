package handler

import (
	"net/http"

	"cinecity-client/internal/middleware"
	"cinecity-client/internal/model"
	"cinecity-client/internal/service"
	"cinecity-client/internal/session"
	"cinecity-client/internal/view"
	"cinecity-client/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles the browser login round trips.
// Tokens stay in the session cookie and are never returned in a body.
type SessionHandler struct {
	client *httpclient.Client
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(client *httpclient.Client) *SessionHandler {
	return &SessionHandler{client: client}
}

type sessionData struct {
	State session.State `json:"state"`
	User  *model.User   `json:"user,omitempty"`
}

func badBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, model.APIResponse{
		Code:  http.StatusBadRequest,
		Error: "invalid request body",
	})
}

// Login exchanges credentials for tokens and stores them in the cookie
// POST /session/login
func (h *SessionHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sess := middleware.SessionFrom(c)
	cred, err := service.New(h.client, sess).Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		status := statusOf(err)
		msg := sess.LastError()
		if msg == "" {
			msg = view.Classify(err).Message
		}
		c.JSON(status, model.APIResponse{
			Code:  status,
			Error: msg,
		})
		return
	}

	replyOK(c, http.StatusOK, sessionData{State: sess.State(), User: cred.User})
}

// Register creates an account. The caller still has to log in.
// POST /session/register
func (h *SessionHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := apiFor(h.client, c).Auth.Register(ctx, req)
	if err != nil {
		status := statusOf(err)
		c.JSON(status, model.APIResponse{
			Code:  status,
			Error: view.Classify(err).Message,
		})
		return
	}

	replyOK(c, http.StatusCreated, user)
}

// Logout clears the cookie whatever the backend answers
// POST /session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	sess := middleware.SessionFrom(c)
	service.New(h.client, sess).Auth.Logout(ctx)

	c.JSON(http.StatusOK, model.APIResponse{
		Code:    200,
		Message: "logged out",
		Data:    sessionData{State: sess.State()},
	})
}

// Me validates the cookie against the backend and returns its user
// GET /session/me
func (h *SessionHandler) Me(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess.Token() == "" {
		replyExpired(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := service.New(h.client, sess).Auth.Restore(ctx); err != nil {
		log.Debug().Err(err).Msg("Session restore failed")
		replyExpired(c)
		return
	}

	replyOK(c, http.StatusOK, sessionData{State: sess.State(), User: sess.User()})
}
