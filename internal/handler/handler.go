package handler

import (
	"strconv"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/middleware"
	"rentexpress/internal/util"

	"github.com/gin-gonic/gin"
)

// actor returns the authenticated actor, or writes 401 and reports false.
func actor(c *gin.Context) (access.Actor, bool) {
	a, ok := middleware.CurrentActor(c)
	if !ok {
		util.Fail(c, "authenticate", apperr.Authentication("not authenticated"))
		return access.Actor{}, false
	}
	return a, true
}

// bind decodes the JSON body into dst, writing 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.Fail(c, "bind", apperr.Validation("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}
