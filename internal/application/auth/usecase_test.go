package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrasoft/gestion-api/internal/application/apptest"
	"github.com/obrasoft/gestion-api/internal/application/auth"
	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/pkg/config"
	pkgjwt "github.com/obrasoft/gestion-api/pkg/jwt"
)

const (
	testSecret   = "test-secret-key-for-unit-tests"
	testPassword = "contraseña-segura-1"
)

type fixture struct {
	store *apptest.Store
	uc    *auth.UseCase
	clock *fakeClock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := apptest.NewStore()
	store.RolePerms[entity.RoleVentas] = []string{"clientes.create", "ventas.create"}

	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	uc := auth.NewUseCase(store.UserRepo(),
		config.JWTConfig{Secret: testSecret, Expiration: 60, Issuer: "gestion-obras-test"},
		config.AuthConfig{MaxLoginAttempts: 5, LockoutMinutes: 15},
	).WithClock(clock.Now)
	return &fixture{store: store, uc: uc, clock: clock}
}

// seedUser crea un usuario vía el caso de uso y apaga MustChangePw para los
// tests que no lo ejercitan.
func (f *fixture) seedUser(t *testing.T, username string, roles ...string) *dto.UserResponse {
	t.Helper()
	user, err := f.uc.CreateUser(dto.CreateUserRequest{
		Username: username,
		Password: testPassword,
		Roles:    roles,
	})
	require.NoError(t, err)
	f.store.Users[user.ID].MustChangePw = false
	return user
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

// El token emitido lleva roles y permisos resueltos, así los middlewares
// autorizan sin consultar la DB.
func TestLogin_TokenConRolesYPermisos(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "vendedor1", entity.RoleVentas)

	resp, err := f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: testPassword})
	require.NoError(t, err)
	assert.False(t, resp.MustChangePw)

	claims, err := pkgjwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "vendedor1", claims.Username)
	assert.Equal(t, []string{entity.RoleVentas}, claims.Roles)
	assert.Equal(t, []string{"clientes.create", "ventas.create"}, claims.Permissions)
}

// Username inexistente y password incorrecta responden igual.
func TestLogin_NoFiltraUsuariosExistentes(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "vendedor1")

	_, errInexistente := f.uc.Login(dto.LoginRequest{Username: "fantasma", Password: testPassword})
	_, errPassword := f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: "incorrecta-123"})

	assert.ErrorIs(t, errInexistente, domain.ErrUnauthorized)
	assert.ErrorIs(t, errPassword, domain.ErrUnauthorized)
}

// Al quinto intento fallido consecutivo la cuenta queda bloqueada 15 minutos;
// pasada la ventana el login vuelve a funcionar.
func TestLogin_BloqueoPorIntentosFallidos(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "vendedor1")

	for i := 0; i < 4; i++ {
		_, err := f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: "mala"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}

	_, err := f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUserLocked, "el quinto intento bloquea")

	// Bloqueada incluso con la password correcta.
	_, err = f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrUserLocked)

	// Pasada la ventana, el login correcto entra y resetea el contador.
	f.clock.Advance(16 * time.Minute)
	_, err = f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: testPassword})
	require.NoError(t, err)
}

// Un login correcto resetea el contador de intentos fallidos.
func TestLogin_ExitoReseteaContador(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "vendedor1")

	for i := 0; i < 4; i++ {
		_, _ = f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: "mala"})
	}
	_, err := f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: testPassword})
	require.NoError(t, err)

	// Cuatro fallos nuevos no bloquean: el contador arrancó de cero.
	for i := 0; i < 4; i++ {
		_, err = f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: "mala"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
}

func TestLogin_CuentaInactiva(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "vendedor1")
	require.NoError(t, f.uc.SetActive(user.ID, false))

	_, err := f.uc.Login(dto.LoginRequest{Username: "vendedor1", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Usuarios
// ──────────────────────────────────────────────────────────────────────────────

// El usuario nuevo nace con password temporal: MustChangePw viaja en la
// respuesta de login hasta que la cambie.
func TestCreateUser_PasswordTemporal(t *testing.T) {
	f := newFixture(t)

	user, err := f.uc.CreateUser(dto.CreateUserRequest{
		Username: "Obrero1",
		Password: testPassword,
		Roles:    []string{entity.RoleObras},
	})
	require.NoError(t, err)
	assert.Equal(t, "obrero1", user.Username, "el username se normaliza a minúsculas")

	resp, err := f.uc.Login(dto.LoginRequest{Username: "obrero1", Password: testPassword})
	require.NoError(t, err)
	assert.True(t, resp.MustChangePw)

	require.NoError(t, f.uc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "otra-contraseña-larga",
	}))

	resp, err = f.uc.Login(dto.LoginRequest{Username: "obrero1", Password: "otra-contraseña-larga"})
	require.NoError(t, err)
	assert.False(t, resp.MustChangePw)
}

func TestCreateUser_Valida(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "vendedor1")

	_, err := f.uc.CreateUser(dto.CreateUserRequest{Username: "vendedor1", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.uc.CreateUser(dto.CreateUserRequest{Username: "nuevo", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "password mínima de 8 caracteres")
}

func TestChangePassword_VerificaLaActual(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "vendedor1")

	err := f.uc.ChangePassword(user.ID, dto.ChangePasswordRequest{
		CurrentPassword: "incorrecta-999",
		NewPassword:     "nueva-contraseña-larga",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRoles_AsignarYQuitar(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "vendedor1", entity.RoleVentas)

	require.NoError(t, f.uc.AssignRole(user.ID, entity.RoleObras))
	got, err := f.uc.GetUser(user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{entity.RoleVentas, entity.RoleObras}, got.Roles)

	require.NoError(t, f.uc.RemoveRole(user.ID, entity.RoleVentas))
	got, err = f.uc.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleObras}, got.Roles)
}
