package users

import (
	"context"
	"fmt"

	"github.com/smartsales365/admin-console/apiclient"
)

const (
	pathUsers       = "/administracion/usuarios/"
	pathMe          = "/administracion/usuarios/me/"
	pathRolesSelect = "/administracion/roles-select/"
	pathRoles       = "/administracion/roles/"
)

// ListParams selects a page of users. Filters are passed to the backend as
// query parameters (for example tipo_usuario or activo).
type ListParams struct {
	Page    int
	Search  string
	Filters map[string]string
}

// Service wraps the users endpoints. It holds no state of its own.
type Service struct {
	api apiclient.API
}

func NewService(api apiclient.API) *Service {
	return &Service{api: api}
}

func userPath(id int) string {
	return fmt.Sprintf("%s%d/", pathUsers, id)
}

func (s *Service) List(ctx context.Context, params ListParams) (apiclient.Page[UserProfile], error) {
	var page apiclient.Page[UserProfile]
	if err := s.api.Get(ctx, pathUsers, apiclient.PageQuery(params.Page, params.Search, params.Filters), &page); err != nil {
		return apiclient.Page[UserProfile]{}, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

func (s *Service) Get(ctx context.Context, id int) (*UserProfile, error) {
	var u UserProfile
	if err := s.api.Get(ctx, userPath(id), nil, &u); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// Me fetches the profile of the logged in user.
func (s *Service) Me(ctx context.Context) (*UserProfile, error) {
	var u UserProfile
	if err := s.api.Get(ctx, pathMe, nil, &u); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &u, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*UserProfile, error) {
	var u UserProfile
	if err := s.api.Post(ctx, pathUsers, in, &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

// Update replaces a user. The password is left unchanged unless set.
func (s *Service) Update(ctx context.Context, id int, in Input) (*UserProfile, error) {
	var u UserProfile
	if err := s.api.Put(ctx, userPath(id), in, &u); err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return &u, nil
}

func (s *Service) ChangePassword(ctx context.Context, id int, password string) error {
	if err := s.api.Patch(ctx, userPath(id), map[string]string{"password": password}, nil); err != nil {
		return fmt.Errorf("change password for user %d: %w", id, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, userPath(id), nil); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// SetActive activates or deactivates a user.
func (s *Service) SetActive(ctx context.Context, id int, active bool) (*UserProfile, error) {
	var u UserProfile
	if err := s.api.Patch(ctx, userPath(id), map[string]bool{"activo": active}, &u); err != nil {
		return nil, fmt.Errorf("set user %d active=%t: %w", id, active, err)
	}
	return &u, nil
}
