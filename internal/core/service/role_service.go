package service

import (
	"context"

	"github.com/backoffice/users-api/internal/core/domain"
	"github.com/backoffice/users-api/internal/core/ports"
)

// RoleService exposes the static roles lookup table.
type RoleService struct {
	repo ports.RoleRepository
}

func NewRoleService(repo ports.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.repo.FindAll(ctx)
}

func (s *RoleService) GetByID(ctx context.Context, id int) (*domain.Role, error) {
	if id <= 0 {
		return nil, domain.Invalid("invalid role id", "id")
	}
	return s.repo.FindByID(ctx, id)
}
