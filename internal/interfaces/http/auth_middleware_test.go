package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/obrasoft/gestion-api/internal/interfaces/http"
	pkgjwt "github.com/obrasoft/gestion-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testUsername  = "mcardozo"
	testIssuer    = "gestion-obras-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - Los middlewares RBAC que reciba como extra
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apphttp.AuthMiddleware(testJWTSecret)}
	handlers = append(handlers, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":       true,
			"user_id":  apphttp.GetUserID(c),
			"username": apphttp.GetUsername(c),
			"roles":    apphttp.GetRoles(c),
		})
	})
	app.Get("/protected", handlers...)
	return app
}

// tokenFor genera un JWT con los roles y permisos indicados.
func tokenFor(t *testing.T, roles, permissions []string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testUsername, roles, permissions, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValidoCargaLocals(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, tokenFor(t, []string{"ventas"}, []string{"ventas.create"}))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, testUserID, body["user_id"], "el user_id del token debe llegar al handler")
	assert.Equal(t, testUsername, body["username"])
}

func TestAuthMiddleware_SinHeaderRechaza(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAuthMiddleware_FormatoInvalidoRechaza(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "Token abc123")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "INVALID_TOKEN", body["code"])
}

func TestAuthMiddleware_FirmaIncorrectaRechaza(t *testing.T) {
	app := buildTestApp()
	tok, err := pkgjwt.Generate("otro-secreto", testUserID, testUsername, nil, nil, testIssuer, testExpMin)
	require.NoError(t, err)
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenExpiradoRechaza(t *testing.T) {
	app := buildTestApp()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testUsername, nil, nil, testIssuer, -5)
	require.NoError(t, err)
	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole / RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_RolPresentePasa(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole("almacen"))
	resp := doRequest(t, app, tokenFor(t, []string{"almacen"}, nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_RolAusenteRechaza(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole("almacen"))
	resp := doRequest(t, app, tokenFor(t, []string{"ventas"}, nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestRequireRole_AdminPasaSiempre(t *testing.T) {
	app := buildTestApp(apphttp.RequireRole("almacen"))
	resp := doRequest(t, app, tokenFor(t, []string{"admin"}, nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin debe pasar cualquier verificación de rol")
}

func TestRequirePermission_PermisoPresentePasa(t *testing.T) {
	app := buildTestApp(apphttp.RequirePermission("ventas.create"))
	resp := doRequest(t, app, tokenFor(t, []string{"ventas"}, []string{"ventas.create", "clientes.create"}))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequirePermission_PermisoAusenteRechaza(t *testing.T) {
	app := buildTestApp(apphttp.RequirePermission("compras.delete"))
	resp := doRequest(t, app, tokenFor(t, []string{"ventas"}, []string{"ventas.create"}))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequirePermission_AdminPasaSinPermisoExplicito(t *testing.T) {
	app := buildTestApp(apphttp.RequirePermission("compras.delete"))
	resp := doRequest(t, app, tokenFor(t, []string{"admin"}, nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
