package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/smartsales365/admin-console/apiclient"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/internal/utils"
	"github.com/smartsales365/admin-console/users"
)

type userRow struct {
	ID          int
	Name        string
	Email       string
	Phone       string
	Type        string
	Gender      string
	Role        string
	Status      string
	StatusClass string
	ToggleTo    string
	ToggleLabel string
	EditURL     string
	ToggleURL   string
	DeleteURL   string
}

func newUserRow(u users.UserProfile) userRow {
	row := userRow{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Email:     u.Email,
		Phone:     u.Phone,
		Type:      u.UserType.Label(),
		Gender:    u.Gender.Label(),
		Role:      u.RoleName,
		Status:    u.ActiveLabel(),
		EditURL:   routeUserEditPrefix + strconv.Itoa(u.ID),
		ToggleURL: routeUserTogglePrefix + strconv.Itoa(u.ID),
		DeleteURL: routeUserDeletePrefix + strconv.Itoa(u.ID),
	}
	switch {
	case u.Active == nil:
		row.StatusClass, row.ToggleTo, row.ToggleLabel = "unknown", "true", "Activar"
	case *u.Active:
		row.StatusClass, row.ToggleTo, row.ToggleLabel = "active", "false", "Desactivar"
	default:
		row.StatusClass, row.ToggleTo, row.ToggleLabel = "inactive", "true", "Activar"
	}
	return row
}

type usersListData struct {
	Search    string
	Roles     []option
	Genders   []option
	States    []option
	Rows      []userRow
	Pager     pager
	ExportURL string
	ReturnURL string
	Warning   string
}

// userFilterKeys are the list filters forwarded to the backend as is.
var userFilterKeys = []string{"rol", "genero", "activo"}

func usersListParams(query url.Values) users.ListParams {
	filters := map[string]string{}
	for _, key := range userFilterKeys {
		if v := strings.TrimSpace(query.Get(key)); v != "" {
			filters[key] = v
		}
	}
	return users.ListParams{
		Page:    queryPage(query),
		Search:  strings.TrimSpace(query.Get("search")),
		Filters: filters,
	}
}

func genderOptions(value string) []option {
	opts := make([]option, 0, len(users.Genders))
	for _, g := range users.Genders {
		opts = append(opts, option{Value: string(g), Label: g.Label()})
	}
	return markSelected(opts, value)
}

// roleOptions loads the role select. A failure leaves the select empty and
// returns the message to show, except a 401, which ends the session and is
// returned as an error.
func (s *Server) roleOptions(ctx context.Context, value string) ([]option, string, error) {
	roles, err := s.roles.List(ctx)
	if apperrors.Is(err, apperrors.ErrUnauthorized) {
		return nil, "", err
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to load roles")
		return nil, "Error al cargar los roles", nil
	}
	opts := make([]option, 0, len(roles))
	for _, role := range roles {
		opts = append(opts, option{Value: strconv.Itoa(role.ID), Label: role.Name})
	}
	return markSelected(opts, value), "", nil
}

// UsersListHandler renders the paginated, filterable users table.
func (s *Server) UsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := usersListParams(query)

		page, err := s.users.List(r.Context(), params)
		if err != nil {
			s.renderBackendError(w, r, err, "users", "Error al cargar los usuarios")
			return
		}

		roles, warning, err := s.roleOptions(r.Context(), params.Filters["rol"])
		if err != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		data := usersListData{
			Search:    params.Search,
			Roles:     roles,
			Genders:   genderOptions(params.Filters["genero"]),
			States:    statusOptions(params.Filters["activo"]),
			Pager:     newPager(RouteUsers, query, params.Page, page.Count, page.HasPrevious(), page.HasNext()),
			ExportURL: exportURL(RouteUsersExport, query),
			ReturnURL: r.URL.RequestURI(),
			Warning:   warning,
		}
		for _, u := range page.Results {
			data.Rows = append(data.Rows, newUserRow(u))
		}
		s.renderAdminPage(w, r, http.StatusOK, "users", "Usuarios", pageUsers, data)
	}
}

// UsersExportHandler downloads the current page of users as CSV.
func (s *Server) UsersExportHandler() http.HandlerFunc {
	header := []string{"ID", "Nombre", "Apellido", "Nombre Completo", "Email", "Teléfono", "Tipo", "Género", "Estado", "Rol"}

	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.users.List(r.Context(), usersListParams(r.URL.Query()))
		if err != nil {
			s.renderBackendError(w, r, err, "users", "Error al exportar los usuarios")
			return
		}

		rows := make([][]string, 0, len(page.Results))
		for _, u := range page.Results {
			rows = append(rows, []string{
				strconv.Itoa(u.ID), u.FirstName, u.LastName, u.DisplayName(), u.Email, u.Phone,
				u.UserType.Label(), u.Gender.Label(), u.ActiveLabel(), u.RoleName,
			})
		}
		if err := writeCSV(w, "usuarios", header, rows); err != nil {
			log.Error().Err(err).Msg("failed to write users export")
		}
	}
}

type userFormData struct {
	Title          string
	Action         string
	PasswordAction string
	IsEdit         bool
	Input          users.Input
	Role           string
	Roles          []option
	Genders        []option
	States         []option
	ActiveChecked  bool
	Errors         map[string]string
	General        string
}

func (s *Server) newUserForm(ctx context.Context, in users.Input) (userFormData, error) {
	role := ""
	if in.Role > 0 {
		role = strconv.Itoa(in.Role)
	}
	roles, warning, err := s.roleOptions(ctx, role)
	if err != nil {
		return userFormData{}, err
	}
	return userFormData{
		Input:         in,
		Role:          role,
		Roles:         roles,
		Genders:       genderOptions(string(in.Gender)),
		ActiveChecked: utils.Value(in.Active),
		Errors:        map[string]string{},
		General:       warning,
	}, nil
}

// userInputFromForm reads the fields shared by the create and edit forms.
func userInputFromForm(r *http.Request) users.Input {
	role, _ := strconv.Atoi(r.FormValue("rol"))
	return users.Input{
		Email:     strings.TrimSpace(r.FormValue("email")),
		FirstName: strings.TrimSpace(r.FormValue("nombre")),
		LastName:  strings.TrimSpace(r.FormValue("apellido")),
		Phone:     strings.TrimSpace(r.FormValue("telefono")),
		Address:   strings.TrimSpace(r.FormValue("direccion")),
		BirthDate: strings.TrimSpace(r.FormValue("fecha_nacimiento")),
		Gender:    users.Gender(r.FormValue("genero")),
		Role:      role,
	}
}

// applyFormError fills the form from a validation or backend error. It
// reports false when err is not something the form can show.
func applyFormError(form *userFormData, err error) bool {
	var invalid users.ValidationError
	if apperrors.As(err, &invalid) {
		for field, msg := range invalid {
			form.Errors[field] = msg
		}
		return true
	}
	if !apperrors.Is(err, apperrors.ErrBadRequest) {
		return false
	}
	for field, msg := range apiclient.FieldErrors(err) {
		switch field {
		case "detail", "non_field_errors", "error", "message":
			form.General = msg
		default:
			form.Errors[field] = msg
		}
	}
	return true
}

func (s *Server) UserCreatePageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := s.newUserForm(r.Context(), users.Input{Active: utils.Ptr(true)})
		if err != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		s.renderUserForm(w, r, http.StatusOK, form, false, 0)
	}
}

func (s *Server) UserCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		in := userInputFromForm(r)
		in.Password = r.FormValue("password")
		in.Active = utils.Ptr(r.FormValue("activo") == "on")

		err := in.ValidateCreate(r.FormValue("confirmPassword"))
		if err == nil {
			_, err = s.users.Create(r.Context(), in)
		}
		if err == nil {
			redirectWithMessage(w, r, RouteUsers, "Usuario creado correctamente")
			return
		}
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		in.Password = ""
		form, formErr := s.newUserForm(r.Context(), in)
		if formErr != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		if !applyFormError(&form, err) {
			log.Error().Err(err).Msg("failed to create user")
			form.General = "Error al crear el usuario"
		}
		s.renderUserForm(w, r, http.StatusUnprocessableEntity, form, false, 0)
	}
}

func (s *Server) UserEditPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		user, err := s.users.Get(r.Context(), id)
		if err != nil {
			s.renderBackendError(w, r, err, "users", "Error al cargar el usuario")
			return
		}

		form, err := s.newUserForm(r.Context(), users.InputFromProfile(*user))
		if err != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		s.renderUserForm(w, r, http.StatusOK, form, true, id)
	}
}

func (s *Server) UserUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		in := userInputFromForm(r)
		in.Active = parseTriState(r.FormValue("activo"))

		err := in.Validate()
		if err == nil {
			_, err = s.users.Update(r.Context(), id, in)
		}
		if err == nil {
			redirectWithMessage(w, r, RouteUsers, "Usuario actualizado correctamente")
			return
		}
		switch {
		case apperrors.Is(err, apperrors.ErrUnauthorized):
			redirectSuccess(w, r, RouteLogin)
			return
		case apperrors.Is(err, apperrors.ErrNotFound):
			s.renderNotFound(w, r)
			return
		}

		form, formErr := s.newUserForm(r.Context(), in)
		if formErr != nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		if !applyFormError(&form, err) {
			log.Error().Err(err).Int("user_id", id).Msg("failed to update user")
			form.General = "Error al actualizar el usuario"
		}
		s.renderUserForm(w, r, http.StatusUnprocessableEntity, form, true, id)
	}
}

// UserPasswordHandler sets a new password from the edit screen.
func (s *Server) UserPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		editPath := routeUserEditPrefix + strconv.Itoa(id)
		password := r.FormValue("password")
		if errs := users.ValidatePassword(password, r.FormValue("confirmPassword"), true); errs != nil {
			redirectWithError(w, r, editPath, firstMessage(errs))
			return
		}
		if err := s.users.ChangePassword(r.Context(), id, password); err != nil {
			s.handleBackendError(w, r, err, editPath, "Error al cambiar la contraseña")
			return
		}
		redirectWithMessage(w, r, editPath, "Contraseña actualizada correctamente")
	}
}

func (s *Server) UserToggleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		back := returnPath(r, RouteUsers)
		active := parseTriState(r.FormValue("activo"))
		if active == nil {
			redirectWithError(w, r, back, "Estado inválido")
			return
		}
		if _, err := s.users.SetActive(r.Context(), id, *active); err != nil {
			s.handleBackendError(w, r, err, back, "Error al cambiar el estado del usuario")
			return
		}
		msg := "Usuario desactivado"
		if *active {
			msg = "Usuario activado"
		}
		redirectWithMessage(w, r, back, msg)
	}
}

func (s *Server) UserDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			s.renderNotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		back := returnPath(r, RouteUsers)
		if err := s.users.Delete(r.Context(), id); err != nil {
			s.handleBackendError(w, r, err, back, "Error al eliminar el usuario")
			return
		}
		redirectWithMessage(w, r, back, "Usuario eliminado")
	}
}

func (s *Server) renderUserForm(w http.ResponseWriter, r *http.Request, status int, form userFormData, isEdit bool, id int) {
	form.IsEdit = isEdit
	if isEdit {
		form.Title = "Editar usuario"
		form.Action = routeUserEditPrefix + strconv.Itoa(id)
		form.PasswordAction = routeUserPasswordPrefix + strconv.Itoa(id)
		active := ""
		if form.Input.Active != nil {
			active = strconv.FormatBool(*form.Input.Active)
		}
		form.States = statusOptions(active)
	} else {
		form.Title = "Crear usuario"
		form.Action = RouteUserCreate
	}
	s.renderAdminPage(w, r, status, "users", form.Title, pageUserForm, form)
}

// returnPath is the list URL a row action came from. Only paths under
// fallback are accepted.
func returnPath(r *http.Request, fallback string) string {
	back := r.FormValue("return")
	if back == fallback || strings.HasPrefix(back, fallback+"?") {
		return back
	}
	return fallback
}

// firstMessage picks one message in a stable order.
func firstMessage(errs users.ValidationError) string {
	for _, field := range []string{"password", "confirmPassword"} {
		if msg, ok := errs[field]; ok {
			return msg
		}
	}
	return errs.Error()
}
