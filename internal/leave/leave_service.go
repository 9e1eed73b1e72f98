package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-leavetrack/internal/events"
	leaveerrors "go-leavetrack/internal/leave/errors"
	"go-leavetrack/internal/messaging/kafka"
	"go-leavetrack/internal/sequence"
	"go-leavetrack/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const minReasonLength = 10

// DecisionRecorder appends one immutable audit entry per completed
// transition. Implemented by the audit service; the lifecycle only sees
// this narrow surface.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, action, actorID, actorName, leaveID, leaveRef string) error
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetMine(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetAll(ctx context.Context, statusFilter string) ([]LeaveResponse, error)
	Decide(ctx context.Context, id, actorID, actorName, outcome, comment string) (LeaveResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	seq      sequence.Repository
	recorder DecisionRecorder
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, seq sequence.Repository, recorder DecisionRecorder, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, seq, recorder, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	seq sequence.Repository,
	recorder DecisionRecorder,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		seq:      seq,
		recorder: recorder,
		outbox:   outboxRepo,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, employeeID string, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	// Validation and derived fields are a pure step: nothing is persisted
	// until the request is known to be well formed.
	employeeUUID, startDate, endDate, err := validateCreateRequest(employeeID, req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	totalDays := wholeDays(startDate, endDate) + 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Allocate the reference before persisting. If allocation fails the
	// creation fails: no request ever exists without a leave ref. A value
	// discarded by a later failure leaves a gap in the sequence, which is
	// acceptable.
	seqVal, err := s.seq.Next(ctx, sequence.LeaveRefCounter)
	if err != nil {
		s.logger.Error("create leave ref allocation failed", zap.Error(err))
		return LeaveResponse{}, leaveerrors.ErrLeaveRefAllocation
	}

	l := &Leave{
		ID:         uuid.New(),
		LeaveRef:   sequence.FormatLeaveRef(seqVal),
		EmployeeID: employeeUUID,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusPending,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if s.outbox != nil {
		event := events.LeaveRequestedEvent{
			EventType:  "leave_requested",
			RequestID:  rid,
			LeaveID:    l.ID.String(),
			LeaveRef:   l.LeaveRef,
			EmployeeID: employeeID,
			TotalDays:  totalDays,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.enqueueOutbox(ctx, tx, rid, l.ID.String(), event.EventType, events.LeaveRequestedTopic, event); err != nil {
			s.logger.Error("create leave outbox persist failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("leave_ref", l.LeaveRef),
	)

	return mapToResponse(*l), nil
}

func (s *service) GetMine(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	leaves, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("get my leaves failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) GetAll(ctx context.Context, statusFilter string) ([]LeaveResponse, error) {
	switch statusFilter {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, leaveerrors.ErrInvalidStatusFilter
	}

	leaves, err := s.repo.FindAll(ctx, statusFilter)
	if err != nil {
		s.logger.Error("get all leaves failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func (s *service) Decide(ctx context.Context, id, actorID, actorName, outcome, comment string) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("outcome", outcome),
	)

	if outcome != StatusApproved && outcome != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrInvalidDecision
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("decide leave lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		s.logger.Warn("decide leave already processed",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	rows, err := qtx.UpdateDecision(ctx, id, outcome, actorUUID, now, comment)
	if err != nil {
		s.logger.Error("decide leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if rows == 0 {
		// A concurrent decision got there first.
		s.logger.Warn("decide leave lost conditional update",
			zap.String("leave_id", id),
		)
		return LeaveResponse{}, leaveerrors.ErrAlreadyDecided
	}

	if s.outbox != nil {
		event := events.LeaveDecidedEvent{
			EventType:  "leave_decided",
			RequestID:  rid,
			LeaveID:    l.ID.String(),
			LeaveRef:   l.LeaveRef,
			EmployeeID: l.EmployeeID.String(),
			Action:     outcome,
			DecidedBy:  actorID,
			OccurredAt: now,
		}
		if err := s.enqueueOutbox(ctx, tx, rid, l.ID.String(), event.EventType, events.LeaveDecidedTopic, event); err != nil {
			s.logger.Error("decide leave outbox persist failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	// The decision is durable at this point. The audit append is
	// best-effort: a failure is logged, never rolled back or re-failed.
	if err := s.recorder.RecordDecision(ctx, outcome, actorID, actorName, l.ID.String(), l.LeaveRef); err != nil {
		s.logger.Error("decide leave audit append failed",
			zap.String("leave_id", l.ID.String()),
			zap.String("action", outcome),
			zap.Error(err),
		)
	}

	s.logger.Info("decide leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("leave_ref", l.LeaveRef),
		zap.String("status", outcome),
	)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// Read-side resolution only; fall back to what we already know.
		s.logger.Error("decide leave reload failed", zap.Error(err))
		l.Status = outcome
		l.DecidedBy = &actorUUID
		l.DecidedAt = &now
		l.DecisionComment = &comment
		return mapToResponse(*l), nil
	}
	return mapToResponse(*updated), nil
}

func (s *service) enqueueOutbox(ctx context.Context, tx *sql.Tx, rid, aggregateID, eventType, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         topic,
		Payload:       data,
		Status:        kafka.OutboxStatusPending,
	})
}

func validateCreateRequest(employeeID string, req CreateLeaveRequest) (uuid.UUID, time.Time, time.Time, error) {
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidEmployeeID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return uuid.Nil, time.Time{}, time.Time{}, err
	}
	if endDate.Before(startDate) {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	if len(strings.TrimSpace(req.Reason)) < minReasonLength {
		return uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidReason
	}
	return employeeUUID, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

// wholeDays counts calendar days between two date-only values. Both come
// from parseDate so there is no time-of-day component to skew the count.
func wholeDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		LeaveRef:   l.LeaveRef,
		EmployeeID: l.EmployeeID.String(),
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.Name
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.Decider != nil {
		v := l.Decider.Name
		resp.DeciderName = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	resp.DecisionComment = l.DecisionComment
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
