package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-leavetrack/internal/audit"
	"go-leavetrack/internal/auth"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeAuditRepository struct {
	createFn     func(ctx context.Context, entry *audit.AuditLog) error
	findRecentFn func(ctx context.Context, limit int) ([]audit.AuditLog, error)

	created []audit.AuditLog
}

func (f *fakeAuditRepository) Create(ctx context.Context, entry *audit.AuditLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	f.created = append(f.created, *entry)
	return nil
}

func (f *fakeAuditRepository) FindRecent(ctx context.Context, limit int) ([]audit.AuditLog, error) {
	if f.findRecentFn != nil {
		return f.findRecentFn(ctx, limit)
	}
	return nil, nil
}

func TestAuditService_RecordDecision(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	leaveID := uuid.New().String()

	t.Run("appends one entry with narrative", func(t *testing.T) {
		repo := &fakeAuditRepository{}
		svc := audit.NewService(repo, nil)

		err := svc.RecordDecision(ctx, "approved", actorID, "Jane Doe", leaveID, "LV-0042")
		assert.NoError(t, err)
		assert.Len(t, repo.created, 1)

		entry := repo.created[0]
		assert.Equal(t, "approved", entry.Action)
		assert.Equal(t, actorID, entry.ActorID.String())
		assert.Equal(t, leaveID, entry.LeaveID.String())

		expectedPrefix := `Admin Jane Doe approved leave request "LV-0042" at `
		assert.Contains(t, entry.Details, expectedPrefix)
		ts := entry.Details[len(expectedPrefix):]
		_, err = time.Parse(time.RFC3339, ts)
		assert.NoError(t, err)
	})

	t.Run("rejected narrative", func(t *testing.T) {
		repo := &fakeAuditRepository{}
		svc := audit.NewService(repo, nil)

		err := svc.RecordDecision(ctx, "rejected", actorID, "Jane Doe", leaveID, "LV-0007")
		assert.NoError(t, err)
		assert.Contains(t, repo.created[0].Details, `Admin Jane Doe rejected leave request "LV-0007" at `)
	})

	t.Run("invalid actor id rejected", func(t *testing.T) {
		repo := &fakeAuditRepository{}
		svc := audit.NewService(repo, nil)

		err := svc.RecordDecision(ctx, "approved", "nope", "Jane Doe", leaveID, "LV-0001")
		assert.Error(t, err)
		assert.Empty(t, repo.created)
	})

	t.Run("store failure surfaces to caller", func(t *testing.T) {
		repo := &fakeAuditRepository{
			createFn: func(ctx context.Context, entry *audit.AuditLog) error {
				return errors.New("insert failed")
			},
		}
		svc := audit.NewService(repo, nil)

		err := svc.RecordDecision(ctx, "approved", actorID, "Jane Doe", leaveID, "LV-0001")
		assert.Error(t, err)
	})

	t.Run("invalidates recent cache", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectDel(fmt.Sprintf("audit:recent:%d", audit.DefaultListLimit)).SetVal(1)

		repo := &fakeAuditRepository{}
		svc := audit.NewService(repo, rdb)

		err := svc.RecordDecision(ctx, "approved", actorID, "Jane Doe", leaveID, "LV-0001")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuditService_List(t *testing.T) {
	ctx := context.Background()

	entries := func(n int) []audit.AuditLog {
		out := make([]audit.AuditLog, n)
		base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		for i := range out {
			out[i] = audit.AuditLog{
				ID:        uuid.New(),
				Action:    "approved",
				ActorID:   uuid.New(),
				LeaveID:   uuid.New(),
				Details:   fmt.Sprintf("entry %d", i),
				CreatedAt: base.Add(-time.Duration(i) * time.Minute),
				Actor:     &auth.User{Name: "Jane Doe"},
			}
		}
		return out
	}

	t.Run("defaults and caps the limit", func(t *testing.T) {
		var gotLimit int
		repo := &fakeAuditRepository{
			findRecentFn: func(ctx context.Context, limit int) ([]audit.AuditLog, error) {
				gotLimit = limit
				return entries(2), nil
			},
		}
		svc := audit.NewService(repo, nil)

		_, err := svc.List(ctx, 0)
		assert.NoError(t, err)
		assert.Equal(t, audit.DefaultListLimit, gotLimit)

		_, err = svc.List(ctx, 500)
		assert.NoError(t, err)
		assert.Equal(t, audit.DefaultListLimit, gotLimit)

		_, err = svc.List(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, 10, gotLimit)
	})

	t.Run("maps entries newest first", func(t *testing.T) {
		repo := &fakeAuditRepository{
			findRecentFn: func(ctx context.Context, limit int) ([]audit.AuditLog, error) {
				return entries(3), nil
			},
		}
		svc := audit.NewService(repo, nil)

		resp, err := svc.List(ctx, 3)
		assert.NoError(t, err)
		assert.Len(t, resp, 3)
		assert.Equal(t, "entry 0", resp[0].Details)
		assert.Equal(t, "Jane Doe", resp[0].ActorName)
	})

	t.Run("serves from cache when warm", func(t *testing.T) {
		cached := []audit.AuditResponse{{Details: "cached entry"}}
		data, _ := json.Marshal(cached)

		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("audit:recent:10").SetVal(string(data))

		repoHit := false
		repo := &fakeAuditRepository{
			findRecentFn: func(ctx context.Context, limit int) ([]audit.AuditLog, error) {
				repoHit = true
				return nil, nil
			},
		}
		svc := audit.NewService(repo, rdb)

		resp, err := svc.List(ctx, 10)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "cached entry", resp[0].Details)
		assert.False(t, repoHit)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fills cache on miss", func(t *testing.T) {
		repo := &fakeAuditRepository{
			findRecentFn: func(ctx context.Context, limit int) ([]audit.AuditLog, error) {
				return entries(1), nil
			},
		}

		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("audit:recent:5").RedisNil()
		mock.Regexp().ExpectSet("audit:recent:5", `.*`, 30*time.Second).SetVal("OK")

		svc := audit.NewService(repo, rdb)

		resp, err := svc.List(ctx, 5)
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := &fakeAuditRepository{
			findRecentFn: func(ctx context.Context, limit int) ([]audit.AuditLog, error) {
				return nil, errors.New("query failed")
			},
		}
		svc := audit.NewService(repo, nil)

		_, err := svc.List(ctx, 10)
		assert.Error(t, err)
	})
}
