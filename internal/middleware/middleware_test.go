package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func signToken(t *testing.T, rol, tipo string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": uuid.New().String(), "email": "ana@3g.mx", "nombre": "Ana", "rol": rol, "tipo": tipo,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func ginTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		claims := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "rol": claims.Rol})
	})
	r.GET("/admin", RequireRole("administrador"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := ginTestRouter()
	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"sin token", "", http.StatusUnauthorized},
		{"token valido", signToken(t, "almacen", service.TokenAcceso, time.Hour), http.StatusOK},
		{"token expirado", signToken(t, "almacen", service.TokenAcceso, -time.Second), http.StatusUnauthorized},
		{"token de refresco", signToken(t, "almacen", service.TokenRefresco, time.Hour), http.StatusUnauthorized},
		{"basura", "this.is.garbage", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, get(r, "/protected", tc.token).Code)
		})
	}
}

func TestJWTAuth_OtroSecreto(t *testing.T) {
	claims := jwt.MapClaims{"user_id": uuid.New().String(), "rol": "administrador", "tipo": "access", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("otro"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(ginTestRouter(), "/protected", tok).Code)
}

func TestRequireRole(t *testing.T) {
	r := ginTestRouter()
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", signToken(t, "compras", service.TokenAcceso, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/admin", signToken(t, "administrador", service.TokenAcceso, time.Hour)).Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	n := 0
	r := gin.New()
	r.Use(RequestID(func() string { n++; return fmt.Sprintf("req-%d", n) }))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/", "")
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-1", w.Body.String())

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := get(r, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error interno del servidor"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://inventario.3g.mx"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://inventario.3g.mx")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://inventario.3g.mx", w.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://otro.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodOptions, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestVentanaIP(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	v := newVentanaIP(2, time.Minute)
	v.now = func() time.Time { return now }

	ok, _ := v.permitir("1.1.1.1")
	assert.True(t, ok)
	ok, _ = v.permitir("1.1.1.1")
	assert.True(t, ok)
	ok, _ = v.permitir("1.1.1.1")
	assert.False(t, ok)
	ok, _ = v.permitir("2.2.2.2")
	assert.True(t, ok, "limits are per IP")

	now = now.Add(61 * time.Second)
	ok, _ = v.permitir("1.1.1.1")
	assert.True(t, ok, "new window")

	now = now.Add(10 * time.Minute)
	v.permitir("3.3.3.3")
	assert.Len(t, v.entries, 1, "expired entries purged")
}

func TestLoginRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/login", LoginRateLimiter(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, get(r, "/login", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/login", "").Code)
}
