package ports

import (
	"context"

	"github.com/backoffice/users-api/internal/core/domain"
)

// UserPatch carries the fields of a partial update. Nil pointers mean "leave
// untouched"; the repository only writes columns whose pointer is set.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Active       *bool
	RoleID       *int
}

// Empty reports whether the patch would change nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PasswordHash == nil &&
		p.Active == nil && p.RoleID == nil
}

// UserRepository is the persistence gateway for user rows. It performs no
// business validation: reads return (nil, nil) when no row matches, writes
// surface storage failures (including constraint violations) unchanged.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id int, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
