package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultListLimit caps how many entries a single listing returns.
	DefaultListLimit = 50

	recentCacheKey = "audit:recent"
	recentCacheTTL = 30 * time.Second
)

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	// RecordDecision appends exactly one entry for a completed leave
	// decision. Satisfies leave.DecisionRecorder.
	RecordDecision(ctx context.Context, action, actorID, actorName, leaveID, leaveRef string) error
	List(ctx context.Context, limit int) ([]AuditResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) RecordDecision(ctx context.Context, action, actorID, actorName, leaveID, leaveRef string) error {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return fmt.Errorf("invalid actor id %q: %w", actorID, err)
	}
	leaveUUID, err := uuid.Parse(leaveID)
	if err != nil {
		return fmt.Errorf("invalid leave id %q: %w", leaveID, err)
	}

	now := time.Now().UTC()
	entry := &AuditLog{
		ID:      uuid.New(),
		Action:  action,
		ActorID: actorUUID,
		LeaveID: leaveUUID,
		Details: buildNarrative(actorName, action, leaveRef, now),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.String("action", action),
			zap.String("leave_id", leaveID),
			zap.Error(err),
		)
		return err
	}

	if s.rdb != nil {
		// Non-default limits age out with the TTL.
		key := fmt.Sprintf("%s:%d", recentCacheKey, DefaultListLimit)
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			s.logger.Error("invalidate audit cache failed", zap.Error(err))
		}
	}

	s.logger.Info("audit entry recorded",
		zap.String("audit_id", entry.ID.String()),
		zap.String("action", action),
		zap.String("leave_ref", leaveRef),
	)

	return nil
}

func (s *service) List(ctx context.Context, limit int) ([]AuditResponse, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	cacheKey := fmt.Sprintf("%s:%d", recentCacheKey, limit)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []AuditResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		entries, err := s.repo.FindRecent(ctx, limit)
		if err != nil {
			return nil, err
		}

		resp := mapToListResponse(entries)

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, data, recentCacheTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		s.logger.Error("list audit entries failed", zap.Error(err))
		return nil, err
	}

	return v.([]AuditResponse), nil
}

// buildNarrative reproduces the externally visible audit sentence, e.g.
// `Admin Jane Doe approved leave request "LV-0001" at 2024-03-01T09:00:00Z`.
func buildNarrative(actorName, action, leaveRef string, at time.Time) string {
	return fmt.Sprintf("Admin %s %s leave request %q at %s",
		actorName, action, leaveRef, at.Format(time.RFC3339))
}

func mapToResponse(entry AuditLog) AuditResponse {
	resp := AuditResponse{
		ID:        entry.ID.String(),
		Action:    entry.Action,
		ActorID:   entry.ActorID.String(),
		LeaveID:   entry.LeaveID.String(),
		Details:   entry.Details,
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.Actor != nil {
		resp.ActorName = entry.Actor.Name
	}
	return resp
}

func mapToListResponse(entries []AuditLog) []AuditResponse {
	resp := make([]AuditResponse, len(entries))
	for i, entry := range entries {
		resp[i] = mapToResponse(entry)
	}
	return resp
}
