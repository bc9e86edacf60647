package users

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	apperrors "github.com/smartsales365/admin-console/internal/errors"
)

// UserType is the backend's tipo_usuario.
type UserType int

const (
	UserTypeAdmin    UserType = 1
	UserTypeEmployee UserType = 2
	UserTypeCustomer UserType = 3
)

// UserTypes lists the selectable user types in display order.
var UserTypes = []UserType{UserTypeAdmin, UserTypeEmployee, UserTypeCustomer}

func (t UserType) Label() string {
	switch t {
	case UserTypeAdmin:
		return "Administrador"
	case UserTypeEmployee:
		return "Empleado"
	case UserTypeCustomer:
		return "Cliente"
	default:
		return ""
	}
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

var Genders = []Gender{GenderMale, GenderFemale}

func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Masculino"
	case GenderFemale:
		return "Femenino"
	default:
		return ""
	}
}

// UserProfile is a user as the backend returns it. The profile cached at
// login is an immutable snapshot of this type.
type UserProfile struct {
	ID        int      `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"nombre_completo,omitempty"`
	UserType  UserType `json:"tipo_usuario,omitempty"`
	FirstName string   `json:"nombre,omitempty"`
	LastName  string   `json:"apellido,omitempty"`
	Phone     string   `json:"telefono,omitempty"`
	Address   string   `json:"direccion,omitempty"`
	BirthDate string   `json:"fecha_nacimiento,omitempty"`
	Gender    Gender   `json:"genero,omitempty"`
	Role      *int     `json:"rol,omitempty"`
	RoleName  string   `json:"rol_nombre,omitempty"`

	// Active is nil when the backend did not say. Nil is not the same as
	// active.
	Active *bool `json:"activo,omitempty"`
}

// DisplayName prefers the backend's full name, then first and last name,
// then the email.
func (u UserProfile) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Email
}

func (u UserProfile) ActiveLabel() string {
	switch {
	case u.Active == nil:
		return "Desconocido"
	case *u.Active:
		return "Activo"
	default:
		return "Inactivo"
	}
}

// BirthDay returns the date part of BirthDate, which the backend may send
// as a date or a timestamp.
func (u UserProfile) BirthDay() string {
	if i := strings.IndexByte(u.BirthDate, 'T'); i >= 0 {
		return u.BirthDate[:i]
	}
	return u.BirthDate
}

// Input is the payload for creating or updating a user.
type Input struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono,omitempty"`
	Address   string `json:"direccion,omitempty"`
	BirthDate string `json:"fecha_nacimiento,omitempty"`
	Gender    Gender `json:"genero,omitempty"`
	Role      int    `json:"rol"`
	Active    *bool  `json:"activo,omitempty"`
}

// ValidationError maps form fields to messages.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", "))
}

func (v ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

const minPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
)

// NowFunc returns the current time. It can be overridden in tests.
var NowFunc = time.Now

// Validate checks the fields shared by create and update.
func (in Input) Validate() error {
	errs := ValidationError{}

	switch {
	case in.Email == "":
		errs["email"] = "El email es requerido"
	case !emailPattern.MatchString(in.Email):
		errs["email"] = "Email inválido"
	}
	if in.FirstName == "" {
		errs["nombre"] = "El nombre es requerido"
	}
	if in.LastName == "" {
		errs["apellido"] = "El apellido es requerido"
	}
	if in.Role == 0 {
		errs["rol"] = "El rol es requerido"
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		errs["telefono"] = "Teléfono inválido"
	}
	if in.BirthDate != "" {
		birth, err := time.Parse(time.DateOnly, in.BirthDate)
		switch {
		case err != nil:
			errs["fecha_nacimiento"] = "Fecha de nacimiento inválida"
		case birth.After(NowFunc()):
			errs["fecha_nacimiento"] = "La fecha de nacimiento no puede ser futura"
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCreate also requires a password and its confirmation.
func (in Input) ValidateCreate(confirmPassword string) error {
	errs := ValidationError{}
	if err := in.Validate(); err != nil {
		errs = err.(ValidationError)
	}
	for field, msg := range ValidatePassword(in.Password, confirmPassword, true) {
		errs[field] = msg
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidatePassword checks a new password. An empty password is only an
// error when required is set.
func ValidatePassword(password, confirm string, required bool) ValidationError {
	errs := ValidationError{}
	switch {
	case password == "" && required:
		errs["password"] = "La contraseña es requerida"
	case password != "" && len(password) < minPasswordLength:
		errs["password"] = "La contraseña debe tener al menos 6 caracteres"
	}
	switch {
	case required && confirm == "":
		errs["confirmPassword"] = "Confirma la contraseña"
	case password != confirm:
		errs["confirmPassword"] = "Las contraseñas no coinciden"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// InputFromProfile pre-fills an edit form. Active is copied as is, so an
// unknown state stays unknown.
func InputFromProfile(u UserProfile) Input {
	in := Input{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Address:   u.Address,
		BirthDate: u.BirthDay(),
		Gender:    u.Gender,
		Active:    u.Active,
	}
	if u.Role != nil {
		in.Role = *u.Role
	}
	return in
}
