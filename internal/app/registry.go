package app

import (
	"database/sql"

	"go-leavetrack/internal/audit"
	"go-leavetrack/internal/auth"
	"go-leavetrack/internal/leave"
	"go-leavetrack/internal/messaging/kafka"
	"go-leavetrack/internal/sequence"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	seqRepo := sequence.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	authService := auth.NewService(authRepo)
	auditService := audit.NewService(auditRepo, rdb)
	leaveService := leave.NewServiceWithOutbox(db, leaveRepo, seqRepo, auditService, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	leaveHandler := leave.NewHandler(leaveService)
	auditHandler := audit.NewHandler(auditService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		leave.RegisterRoutes(api, leaveHandler, rdb)
		audit.RegisterRoutes(api, auditHandler)
	}

	return nil
}
