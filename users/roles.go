package users

import (
	"context"
	"fmt"

	"github.com/smartsales365/admin-console/apiclient"
)

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// RoleService reads the roles a user can be assigned.
type RoleService struct {
	api apiclient.API
}

func NewRoleService(api apiclient.API) *RoleService {
	return &RoleService{api: api}
}

// List returns the roles offered in the user forms.
func (s *RoleService) List(ctx context.Context) ([]Role, error) {
	var roles apiclient.List[Role]
	if err := s.api.Get(ctx, pathRolesSelect, nil, &roles); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *RoleService) Get(ctx context.Context, id int) (*Role, error) {
	var role Role
	if err := s.api.Get(ctx, fmt.Sprintf("%s%d/", pathRoles, id), nil, &role); err != nil {
		return nil, fmt.Errorf("get role %d: %w", id, err)
	}
	return &role, nil
}
