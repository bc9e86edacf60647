package users_test

import (
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/internal/utils"
	"github.com/smartsales365/admin-console/users"
	"github.com/stretchr/testify/require"
)

func validInput() users.Input {
	return users.Input{
		Email:     "ana.perez@smartsales.bo",
		FirstName: "Ana",
		LastName:  "Pérez",
		Phone:     "+591 (3) 333-4444",
		BirthDate: "1990-05-14",
		Gender:    users.GenderFemale,
		Role:      2,
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	require.NoError(t, validInput().Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	err := users.Input{Email: "no-at-sign", Phone: "abc"}.Validate()
	require.ErrorIs(t, err, apperrors.ErrValidation)

	var verr users.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Email inválido", verr["email"])
	require.Equal(t, "El nombre es requerido", verr["nombre"])
	require.Equal(t, "El apellido es requerido", verr["apellido"])
	require.Equal(t, "El rol es requerido", verr["rol"])
	require.Equal(t, "Teléfono inválido", verr["telefono"])
}

func TestValidateRejectsFutureBirthDate(t *testing.T) {
	orig := users.NowFunc
	users.NowFunc = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { users.NowFunc = orig })

	in := validInput()
	in.BirthDate = "2026-03-01"

	var verr users.ValidationError
	require.ErrorAs(t, in.Validate(), &verr)
	require.Equal(t, "La fecha de nacimiento no puede ser futura", verr["fecha_nacimiento"])
}

func TestValidateCreateRequiresPassword(t *testing.T) {
	in := validInput()

	var verr users.ValidationError
	require.ErrorAs(t, in.ValidateCreate(""), &verr)
	require.Equal(t, "La contraseña es requerida", verr["password"])

	in.Password = "abc"
	require.ErrorAs(t, in.ValidateCreate("abd"), &verr)
	require.Equal(t, "La contraseña debe tener al menos 6 caracteres", verr["password"])
	require.Equal(t, "Las contraseñas no coinciden", verr["confirmPassword"])

	in.Password = "secreto1"
	require.NoError(t, in.ValidateCreate("secreto1"))
}

func TestValidatePasswordOptional(t *testing.T) {
	require.Nil(t, users.ValidatePassword("", "", false))
	require.NotNil(t, users.ValidatePassword("abcdefg", "", false))
}

func TestProfileDecodesBackendPayload(t *testing.T) {
	payload := `{"id":5,"email":"ana@smartsales.bo","nombre_completo":"Ana Pérez","tipo_usuario":1,"rol":3,"fecha_nacimiento":"1990-05-14T00:00:00Z","activo":false}`

	var u users.UserProfile
	require.NoError(t, json.Unmarshal([]byte(payload), &u))
	require.Equal(t, users.UserTypeAdmin, u.UserType)
	require.Equal(t, "Administrador", u.UserType.Label())
	require.Equal(t, "Ana Pérez", u.DisplayName())
	require.Equal(t, "1990-05-14", u.BirthDay())
	require.Equal(t, "Inactivo", u.ActiveLabel())

	in := users.InputFromProfile(u)
	require.Equal(t, 3, in.Role)
	require.NotNil(t, in.Active)
	require.False(t, *in.Active)
}

func TestUnknownActiveStaysUnknown(t *testing.T) {
	var u users.UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"email":"x@y.z","nombre":"X","apellido":"Y"}`), &u))
	require.Nil(t, u.Active)
	require.Equal(t, "Desconocido", u.ActiveLabel())
	require.Equal(t, "X Y", u.DisplayName())
	require.Nil(t, users.InputFromProfile(u).Active)

	u.Active = utils.Ptr(true)
	require.Equal(t, "Activo", u.ActiveLabel())
}

func TestLabels(t *testing.T) {
	require.Equal(t, "Empleado", users.UserTypeEmployee.Label())
	require.Equal(t, "Cliente", users.UserTypeCustomer.Label())
	require.Equal(t, "", users.UserType(9).Label())
	require.Equal(t, "Masculino", users.GenderMale.Label())
}
