package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/M0chiIron/ProjetL3/pkg/apierr"
)

type Handler struct {
	Repo     *Repo
	Sessions *SessionStore
	Log      *zap.Logger
}

func NewHandler(repo *Repo, sessions *SessionStore, log *zap.Logger) *Handler {
	return &Handler{Repo: repo, Sessions: sessions, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.GET("/check-auth", h.checkAuth)
	rg.POST("/logout", RequireSession(h.Sessions), h.logout)
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.Validation("invalid json"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		apierr.Respond(c, apierr.Validation("invalid email"))
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 72 {
		apierr.Respond(c, apierr.Validation("password must be 8-72 chars"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierr.Respond(c, apierr.Storage("hash failed", err))
		return
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := h.Repo.CreateUser(c.Request.Context(), u); err != nil {
		if err == ErrDuplicateEmail {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "email already registered"})
			return
		}
		h.Log.Error("create user failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("create user failed", err))
		return
	}

	sess, err := h.Sessions.Create(c.Request.Context(), u.ID)
	if err != nil {
		h.Log.Error("create session failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("create session failed", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "token": sess.Token})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.Validation("invalid json"))
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		apierr.Respond(c, apierr.Validation("email and password required"))
		return
	}

	u, err := h.Repo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		h.Log.Error("login lookup failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("login failed", err))
		return
	}
	if u == nil {
		// don't reveal which part failed
		apierr.Respond(c, apierr.Auth("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		apierr.Respond(c, apierr.Auth("invalid credentials"))
		return
	}

	sess, err := h.Sessions.Create(c.Request.Context(), u.ID)
	if err != nil {
		h.Log.Error("create session failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("create session failed", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": sess.Token})
}

// checkAuth is a pure lookup and never fails: any trouble resolving the
// token just reads as logged out.
func (h *Handler) checkAuth(c *gin.Context) {
	token := TokenFromRequest(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"isLoggedIn": false})
		return
	}

	sess, err := h.Sessions.Get(c.Request.Context(), token)
	if err != nil {
		h.Log.Warn("check-auth lookup failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"isLoggedIn": sess != nil})
}

func (h *Handler) logout(c *gin.Context) {
	token := currentToken(c)
	if err := h.Sessions.Delete(c.Request.Context(), token); err != nil {
		h.Log.Error("logout failed", zap.Error(err))
		apierr.Respond(c, apierr.Storage("failed to log out", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
