package handler

import (
	"net/http"
	"strings"
	"time"

	"rentexpress/internal/middleware"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and session probing.
type AuthHandler struct {
	Accounts     *service.AccountService
	JWTSecret    string
	Issuer       string
	TokenTTL     time.Duration
	CookieSecure bool
}

func NewAuthHandler(accounts *service.AccountService, secret, issuer string, ttl time.Duration, cookieSecure bool) *AuthHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthHandler{
		Accounts:     accounts,
		JWTSecret:    secret,
		Issuer:       issuer,
		TokenTTL:     ttl,
		CookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bind(c, &req) {
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		util.Fail(c, "register", err)
		return
	}
	util.Created(c, util.Response{"user": user})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if !bind(c, &req) {
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		util.Fail(c, "login", err)
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, string(user.Role), h.TokenTTL)
	if err != nil {
		util.Fail(c, "sign token", err)
		return
	}
	h.setCookie(c, token, int(h.TokenTTL.Seconds()))

	util.Success(c, util.Response{
		"token":     token,
		"expiresIn": int(h.TokenTTL.Seconds()),
		"user":      user,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	util.Success(c, util.Response{"loggedOut": true})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", h.CookieSecure, true)
}

func (h *AuthHandler) CheckUsername(c *gin.Context) {
	name := strings.TrimSpace(c.Query("username"))
	ok, err := h.Accounts.UsernameAvailable(c.Request.Context(), name)
	if err != nil {
		util.Fail(c, "check username", err)
		return
	}
	util.Success(c, util.Response{"available": ok})
}

// Me reports the session state; it never fails for anonymous callers.
func (h *AuthHandler) Me(c *gin.Context) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		util.Success(c, util.Response{"authenticated": false})
		return
	}
	user, err := h.Accounts.Me(c.Request.Context(), a)
	if err != nil {
		util.Success(c, util.Response{"authenticated": false})
		return
	}
	util.Success(c, util.Response{
		"authenticated": true,
		"user":          user,
		"role":          user.Role,
	})
}
