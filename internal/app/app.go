package app

import (
	"os"

	"go-leavetrack/internal/audit"
	"go-leavetrack/internal/auth"
	"go-leavetrack/internal/leave"
	"go-leavetrack/internal/middleware"
	"go-leavetrack/internal/sequence"
	"go-leavetrack/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	rdb, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	if err := migrate(gormDB); err != nil {
		return err
	}

	router.Use(middleware.ContextLogger(zap.L()))

	return registerModules(router, sqlDB, gormDB, rdb)
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&auth.User{},
		&leave.Leave{},
		&audit.AuditLog{},
		&sequence.Counter{},
	); err != nil {
		return err
	}

	// Outbox schema is managed with raw SQL since the repository is raw
	// SQL as well.
	return db.Exec(`
		CREATE TABLE IF NOT EXISTS outbox_events (
			id uuid PRIMARY KEY,
			request_id varchar(64),
			aggregate_type varchar(50) NOT NULL,
			aggregate_id uuid NOT NULL,
			event_type varchar(100) NOT NULL,
			topic varchar(200) NOT NULL,
			payload jsonb NOT NULL,
			status varchar(20) NOT NULL DEFAULT 'pending',
			retry_count int NOT NULL DEFAULT 0,
			error_message text,
			next_retry_at timestamptz,
			processed_at timestamptz,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`).Error
}
