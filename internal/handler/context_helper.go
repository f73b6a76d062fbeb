package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sciportal/sciportal-api/internal/middleware"
	"github.com/sciportal/sciportal-api/internal/models"
)

// userFromContext extracts the authenticated user set by the JWT
// middleware, or nil on public routes.
func userFromContext(c *gin.Context) *models.User {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
