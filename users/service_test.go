package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/smartsales365/admin-console/apiclient/apifake"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/users"
	"github.com/stretchr/testify/require"
)

func TestListBuildsQuery(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodGet, "/administracion/usuarios/",
		`{"count":1,"next":null,"previous":null,"results":[{"id":1,"email":"a@b.co"}]}`)
	svc := users.NewService(api)

	page, err := svc.List(context.Background(), users.ListParams{Page: 2, Search: "ana", Filters: map[string]string{"tipo_usuario": "1"}})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)

	call := api.LastCall()
	require.Equal(t, "2", call.Query.Get("page"))
	require.Equal(t, "ana", call.Query.Get("search"))
	require.Equal(t, "1", call.Query.Get("tipo_usuario"))
}

func TestCrudPaths(t *testing.T) {
	api := apifake.NewFakeAPI().
		On(http.MethodGet, "/administracion/usuarios/7/", `{"id":7,"email":"x@y.co"}`).
		On(http.MethodPost, "/administracion/usuarios/", `{"id":8,"email":"n@y.co"}`).
		On(http.MethodPut, "/administracion/usuarios/7/", `{"id":7,"email":"x2@y.co"}`).
		On(http.MethodPatch, "/administracion/usuarios/7/", `{"id":7,"activo":false}`).
		On(http.MethodDelete, "/administracion/usuarios/7/", "")
	svc := users.NewService(api)
	ctx := context.Background()

	u, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 7, u.ID)

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.Equal(t, 8, created.ID)

	updated, err := svc.Update(ctx, 7, validInput())
	require.NoError(t, err)
	require.Equal(t, "x2@y.co", updated.Email)

	toggled, err := svc.SetActive(ctx, 7, false)
	require.NoError(t, err)
	require.False(t, *toggled.Active)
	require.JSONEq(t, `{"activo":false}`, string(api.LastCall().Body))

	require.NoError(t, svc.ChangePassword(ctx, 7, "secreto1"))
	require.JSONEq(t, `{"password":"secreto1"}`, string(api.LastCall().Body))

	require.NoError(t, svc.Delete(ctx, 7))
	require.Equal(t, 1, api.CallCount(http.MethodDelete, "/administracion/usuarios/7/"))
}

func TestCreateSendsOnlySetPassword(t *testing.T) {
	api := apifake.NewFakeAPI().On(http.MethodPost, "/administracion/usuarios/", `{"id":1}`)
	_, err := users.NewService(api).Create(context.Background(), validInput())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(api.LastCall().Body, &body))
	require.NotContains(t, body, "password")
	require.Equal(t, "Ana", body["nombre"])
}

func TestErrorsAreWrapped(t *testing.T) {
	api := apifake.NewFakeAPI().OnError(http.MethodGet, "/administracion/usuarios/me/", &apperrors.APIError{Status: 401})

	_, err := users.NewService(api).Me(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.Contains(t, err.Error(), "get profile")
}

func TestRolesAcceptBareList(t *testing.T) {
	api := apifake.NewFakeAPI().
		On(http.MethodGet, "/administracion/roles-select/", `[{"id":1,"nombre":"Administrador"},{"id":2,"nombre":"Vendedor"}]`).
		On(http.MethodGet, "/administracion/roles/2/", `{"id":2,"nombre":"Vendedor"}`)
	svc := users.NewRoleService(api)

	roles, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, "Vendedor", roles[1].Name)

	role, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, 2, role.ID)
}
