package handler

import (
	"rentexpress/internal/models"
	"rentexpress/internal/service"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	Accounts *service.AccountService
}

func NewProfileHandler(accounts *service.AccountService) *ProfileHandler {
	return &ProfileHandler{Accounts: accounts}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	user, err := h.Accounts.Me(c.Request.Context(), a)
	if err != nil {
		util.Fail(c, "get profile", err)
		return
	}
	util.Success(c, util.Response{"user": user})
}

type profileReq struct {
	Profile models.Profile `json:"profile" binding:"required"`
}

// Update merges the given keys into the profile; a null value removes a key.
func (h *ProfileHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req profileReq
	if !bind(c, &req) {
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), a, req.Profile)
	if err != nil {
		util.Fail(c, "update profile", err)
		return
	}
	util.Success(c, util.Response{"user": user})
}

type passwordReq struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req passwordReq
	if !bind(c, &req) {
		return
	}
	if err := h.Accounts.ChangePassword(c.Request.Context(), a, req.OldPassword, req.NewPassword); err != nil {
		util.Fail(c, "change password", err)
		return
	}
	util.Success(c, util.Response{"changed": true})
}
