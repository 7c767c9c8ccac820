package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const (
	testJWTSecret = "clave-de-pruebas-stock-ledger"
	testUserID    = "7b0c3a52-1f7e-4c1b-9a55-2f4d2b8e6c10"
	testIssuer    = "stock-ledger"
)

// tokenForRole devuelve el header Authorization de un usuario con el rol dado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

func signed(t *testing.T, method gojwt.SigningMethod, key any, claims gojwt.Claims) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func withHeader(t *testing.T, method, path, body, authorization string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos por ruta
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_PermisosPorRol(t *testing.T) {
	const (
		sale    = `{"source": {"type": "warehouse", "id": "W1"}, "items": [{"product_id": "P1", "quantity": 1}]}`
		refresh = `{"date": "2024-06-30"}`
	)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status map[string]int
	}{
		{"compra", http.MethodPost, "/api/transfers/purchase", purchaseBody, map[string]int{
			"admin": http.StatusCreated, "bodeguero": http.StatusCreated, "vendedor": http.StatusForbidden,
		}},
		{"venta", http.MethodPost, "/api/transfers/sale", sale, map[string]int{
			"admin": http.StatusCreated, "bodeguero": http.StatusCreated, "vendedor": http.StatusForbidden,
		}},
		{"recalcular resumen", http.MethodPost, "/api/reports/daily-summary/refresh", refresh, map[string]int{
			"admin": http.StatusOK, "bodeguero": http.StatusForbidden, "vendedor": http.StatusForbidden,
		}},
		{"saldo", http.MethodGet, "/api/stock/warehouse/W1/P1", "", map[string]int{
			"admin": http.StatusOK, "bodeguero": http.StatusOK, "vendedor": http.StatusOK,
		}},
		{"alertas", http.MethodGet, "/api/reports/alerts", "", map[string]int{
			"admin": http.StatusOK, "bodeguero": http.StatusOK, "vendedor": http.StatusOK,
		}},
		{"resumen diario", http.MethodGet, "/api/reports/daily-summary", "", map[string]int{
			"admin": http.StatusOK, "bodeguero": http.StatusOK, "vendedor": http.StatusOK,
		}},
	}
	for _, tt := range tests {
		for role, want := range tt.status {
			t.Run(tt.name+"/"+role, func(t *testing.T) {
				poster := &fakePoster{}
				app := newAPI(poster, fakeBalances{}, &fakeReports{})
				resp, body := call(t, app, tt.method, tt.path, role, tt.body)
				assert.Equal(t, want, resp.StatusCode)
				if want == http.StatusForbidden {
					assert.Equal(t, "FORBIDDEN", body["code"])
					assert.Nil(t, poster.got, "un rol rechazado no llega al orquestador")
				}
			})
		}
	}
}

func TestRouter_TokenSinRolNoRegistraMovimientos(t *testing.T) {
	poster := &fakePoster{}
	app := newAPI(poster, fakeBalances{}, &fakeReports{})

	resp, body := call(t, app, http.MethodPost, "/api/transfers/purchase", "", purchaseBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", body["code"])
	assert.Nil(t, poster.got)

	resp, body = call(t, app, http.MethodPost, "/api/reports/daily-summary/refresh", "", `{"date": "2024-06-30"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", body["code"])
}

func TestRouter_RolDesconocidoEsRechazado(t *testing.T) {
	app := newAPI(&fakePoster{}, fakeBalances{}, &fakeReports{})
	resp, _ := call(t, app, http.MethodPost, "/api/transfers/purchase", "Admin", purchaseBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "los roles distinguen mayúsculas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Credenciales
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_CredencialesRechazadas(t *testing.T) {
	now := time.Now()
	valid := func(exp time.Time) pkgjwt.Claims {
		return pkgjwt.Claims{
			RegisteredClaims: gojwt.RegisteredClaims{Subject: testUserID, ExpiresAt: gojwt.NewNumericDate(exp)},
			UserID:           testUserID,
			Role:             "admin",
		}
	}

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema basic", "Basic YWRtaW46YWRtaW4=", "INVALID_TOKEN"},
		{"token malformado", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"expirado", "Bearer " + signed(t, gojwt.SigningMethodHS256, []byte(testJWTSecret), valid(now.Add(-time.Minute))), "INVALID_TOKEN"},
		{"otra clave", "Bearer " + signed(t, gojwt.SigningMethodHS256, []byte("otra-clave"), valid(now.Add(time.Hour))), "INVALID_TOKEN"},
		{"sin firma", "Bearer " + signed(t, gojwt.SigningMethodNone, gojwt.UnsafeAllowNoneSignatureType, valid(now.Add(time.Hour))), "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := withHeader(t, http.MethodGet, "/api/stock/warehouse/W1/P1", "", tt.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tt.code, body["code"])

			resp, _ = withHeader(t, http.MethodPost, "/api/transfers/purchase", purchaseBody, tt.header)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "la autenticación precede al control de rol")
		})
	}
}

func TestAuth_EsquemaBearerSinDistinguirMayusculas(t *testing.T) {
	header := strings.Replace(tokenForRole(t, "vendedor"), "Bearer", "bearer", 1)
	resp, _ := withHeader(t, http.MethodGet, "/api/reports/alerts", "", header)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Identidad del usuario
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_CreadorTomadoDelSubject(t *testing.T) {
	const subject = "c1d2e3f4-0000-4000-8000-000000000042"
	tok := signed(t, gojwt.SigningMethodHS256, []byte(testJWTSecret), pkgjwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: subject, ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "bodeguero",
	})

	poster := &fakePoster{}
	app := newAPI(poster, fakeBalances{}, &fakeReports{})
	req := httptest.NewRequest(http.MethodPost, "/api/transfers/purchase", strings.NewReader(purchaseBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, poster.got)
	assert.Equal(t, subject, poster.got.CreatedBy, "sin user_id se usa el subject del token")
}

func TestJWT_GenerarYLeer(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "bodeguero", testIssuer, 5)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, "bodeguero", role)

	_, err = pkgjwt.Generate("", testUserID, "admin", testIssuer, 5)
	assert.Error(t, err, "sin clave no se firma")
	_, _, err = pkgjwt.Parse("", tok)
	assert.Error(t, err)
}
