package ports

import (
	"context"

	"github.com/backoffice/users-api/internal/core/domain"
)

// CreateUserInput is the validated-at-the-service payload for user creation.
// Active defaults to true when nil.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Active   *bool
	RoleID   int
}

// UpdateUserInput carries a partial update: nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Active   *bool
	RoleID   *int
}

// LoginInput carries the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// UserService is the domain service orchestrating validation, hashing and
// persistence for users.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int) error
	// Authenticate returns the matched user and a signed access token.
	Authenticate(ctx context.Context, in LoginInput) (*domain.User, string, error)
}
