package auth_test

import (
	"context"
	"testing"

	"go-leavetrack/internal/auth"
	autherrors "go-leavetrack/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	createFn     func(ctx context.Context, user *auth.User) error
	getByEmailFn func(ctx context.Context, email string) (*auth.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

func (f *fakeUserRepository) Create(ctx context.Context, user *auth.User) error {
	return f.createFn(ctx, user)
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return f.getByIDFn(ctx, id)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and defaults role", func(t *testing.T) {
		var saved *auth.User
		repo := &fakeUserRepository{
			createFn: func(ctx context.Context, user *auth.User) error {
				saved = user
				return nil
			},
		}
		svc := auth.NewService(repo)

		resp, err := svc.Register(ctx, auth.RegisterRequest{
			Name:     "Alice A",
			Email:    "alice@example.com",
			Password: "s3cret-pw",
		})
		assert.NoError(t, err)
		assert.Equal(t, "Alice A", resp.Name)
		assert.Equal(t, auth.RoleEmployee, resp.Role)

		assert.NotEqual(t, "s3cret-pw", saved.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("s3cret-pw")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := &fakeUserRepository{
			createFn: func(ctx context.Context, user *auth.User) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}
		svc := auth.NewService(repo)

		_, err := svc.Register(ctx, auth.RegisterRequest{
			Name:     "Alice A",
			Email:    "alice@example.com",
			Password: "s3cret-pw",
		})
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	t.Setenv("JWT_SECRET", "test-secret")

	hashed, _ := bcrypt.GenerateFromPassword([]byte("s3cret-pw"), bcrypt.MinCost)
	user := &auth.User{
		ID:       uuid.New(),
		Name:     "Alice A",
		Email:    "alice@example.com",
		Password: string(hashed),
		Role:     auth.RoleAdmin,
	}

	t.Run("success returns signed token with identity claims", func(t *testing.T) {
		repo := &fakeUserRepository{
			getByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
				assert.Equal(t, "alice@example.com", email)
				return user, nil
			},
		}
		svc := auth.NewService(repo)

		token, resp, err := svc.Login(ctx, "alice@example.com", "s3cret-pw")
		assert.NoError(t, err)
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.Equal(t, auth.RoleAdmin, resp.Role)

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, user.ID.String(), claims["user_id"])
		assert.Equal(t, "Alice A", claims["name"])
		assert.Equal(t, auth.RoleAdmin, claims["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &fakeUserRepository{
			getByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
				return user, nil
			},
		}
		svc := auth.NewService(repo)

		_, _, err := svc.Login(ctx, "alice@example.com", "wrong")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		repo := &fakeUserRepository{
			getByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := auth.NewService(repo)

		_, _, err := svc.Login(ctx, "nobody@example.com", "s3cret-pw")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_GetMe(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		user := &auth.User{ID: uuid.New(), Name: "Alice A", Email: "alice@example.com", Role: auth.RoleEmployee}
		repo := &fakeUserRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*auth.User, error) {
				assert.Equal(t, user.ID, id)
				return user, nil
			},
		}
		svc := auth.NewService(repo)

		resp, err := svc.GetMe(ctx, user.ID.String())
		assert.NoError(t, err)
		assert.Equal(t, "Alice A", resp.Name)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeUserRepository{
			getByIDFn: func(ctx context.Context, id uuid.UUID) (*auth.User, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := auth.NewService(repo)

		_, err := svc.GetMe(ctx, uuid.New().String())
		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := auth.NewService(&fakeUserRepository{})

		_, err := svc.GetMe(ctx, "nope")
		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})
}
