package audit

import (
	"go-leavetrack/internal/auth"
	"go-leavetrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	// Kept under /leaves for compatibility with external references.
	r.GET("/leaves/audit-logs",
		middleware.AuthMiddleware(),
		middleware.RoleMiddleware(auth.RoleAdmin),
		handler.List,
	)
}
