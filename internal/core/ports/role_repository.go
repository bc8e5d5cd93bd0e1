package ports

import (
	"context"

	"github.com/backoffice/users-api/internal/core/domain"
)

// RoleRepository reads the static roles lookup table. Roles are seeded by
// migration and never mutated through the API.
type RoleRepository interface {
	FindAll(ctx context.Context) ([]domain.Role, error)
	FindByID(ctx context.Context, id int) (*domain.Role, error)
}
