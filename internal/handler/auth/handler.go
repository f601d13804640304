package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/doctaba/telehealth-api/internal/handler"
	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/service/auth"
	"github.com/doctaba/telehealth-api/internal/session"
)

type Handler struct {
	svc      *auth.Service
	sessions *session.Manager
}

func NewHandler(svc *auth.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes mounts the endpoints that work without a session
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/login/external", h.ExternalLogin)
	r.POST("/logout", h.Logout)
}

// RegisterProtectedRoutes mounts the endpoints behind the session gate
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/user", h.CurrentUser)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req, "registration") {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.startSession(c, http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req, "login") {
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.startSession(c, http.StatusOK, user)
}

func (h *Handler) ExternalLogin(c *gin.Context) {
	var req model.ExternalLoginRequest
	if !handler.BindJSON(c, &req, "login") {
		return
	}

	user, err := h.svc.ExternalLogin(c.Request.Context(), req.Token)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.startSession(c, http.StatusOK, user)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Revoke(c); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.SuccessResponse{Success: true})
}

func (h *Handler) CurrentUser(c *gin.Context) {
	user, err := h.svc.CurrentUser(c.Request.Context(), handler.CurrentUserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

// startSession issues the session for an already persisted user. When that
// fails the user row stays; the client recovers by logging in.
func (h *Handler) startSession(c *gin.Context, status int, user *model.User) {
	if err := h.sessions.Issue(c, user.ID); err != nil {
		log.Error().
			Err(err).
			Int64("user_id", user.ID).
			Str("request_id", c.GetString("request_id")).
			Msg("failed to issue session")
		handler.RespondError(c, err)
		return
	}
	c.JSON(status, user.Public())
}
