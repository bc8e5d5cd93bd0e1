package handler

import (
	"github.com/backoffice/users-api/internal/core/ports"
)

// toCreateInput maps the HTTP payload to the service input.
func toCreateInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Active:   req.Active,
		RoleID:   req.RoleID,
	}
}

// toUpdateInput preserves partial-update semantics: nil stays nil.
func toUpdateInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Active:   req.Active,
		RoleID:   req.RoleID,
	}
}
