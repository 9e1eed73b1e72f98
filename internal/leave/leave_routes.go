package leave

import (
	"go-leavetrack/internal/auth"
	"go-leavetrack/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("", middleware.Idempotency(rdb), handler.Create)
		leaves.GET("", handler.GetMine)
		leaves.GET("/all", middleware.RoleMiddleware(auth.RoleAdmin), handler.GetAll)
		leaves.PUT("/:id/approve", middleware.RoleMiddleware(auth.RoleAdmin), handler.Approve)
		leaves.PUT("/:id/reject", middleware.RoleMiddleware(auth.RoleAdmin), handler.Reject)
	}
}
