package service_test

import (
	"context"
	"testing"

	"inventario3g/internal/config"
	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-pruebas"

func testConfig() *config.Config {
	return &config.Config{JWTSecret: testSecret, JWTExpirationHours: 8, JWTRefreshHours: 72}
}

func seedUsuario(t *testing.T, db *memDB, email, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	u := &model.Usuario{ID: uuid.New(), Nombre: "Ana Almacen", Email: email, PasswordHash: hash, Rol: rol, Activo: true}
	db.usuarios[u.ID] = u
	return u
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	return parsed.Claims.(jwt.MapClaims)
}

func TestAuth_LoginEmiteTokens(t *testing.T) {
	db := newMemDB()
	u := seedUsuario(t, db, "ana@3g.mx", "Secreta123", model.RolAlmacen)
	svc := service.NewAuthService(&stubUsuarioRepo{db: db}, testConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ana@3g.mx", Password: "Secreta123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, u.ID.String(), resp.Usuario.ID)

	access := parseClaims(t, resp.AccessToken)
	assert.Equal(t, service.TokenAcceso, access["tipo"])
	assert.Equal(t, model.RolAlmacen, access["rol"])
	assert.Equal(t, u.ID.String(), access["user_id"])
	assert.Equal(t, service.TokenRefresco, parseClaims(t, resp.RefreshToken)["tipo"])
}

func TestAuth_LoginCredencialesInvalidas(t *testing.T) {
	db := newMemDB()
	u := seedUsuario(t, db, "ana@3g.mx", "Secreta123", model.RolAlmacen)
	svc := service.NewAuthService(&stubUsuarioRepo{db: db}, testConfig())
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Email: "ana@3g.mx", Password: "otra"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nadie@3g.mx", Password: "Secreta123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	u.Activo = false
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@3g.mx", Password: "Secreta123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestAuth_RefreshSoloConTokenDeRefresco(t *testing.T) {
	db := newMemDB()
	seedUsuario(t, db, "ana@3g.mx", "Secreta123", model.RolAlmacen)
	svc := service.NewAuthService(&stubUsuarioRepo{db: db}, testConfig())
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "ana@3g.mx", Password: "Secreta123"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Refresh(ctx, "no.es.jwt")
	assert.ErrorIs(t, err, service.ErrCredenciales)

	renovado, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renovado.AccessToken)
}

func TestAuth_RefreshOtroSecreto(t *testing.T) {
	db := newMemDB()
	seedUsuario(t, db, "ana@3g.mx", "Secreta123", model.RolAlmacen)
	otro := service.NewAuthService(&stubUsuarioRepo{db: db}, &config.Config{JWTSecret: "otro", JWTExpirationHours: 1, JWTRefreshHours: 1})
	login, err := otro.Login(context.Background(), dto.LoginRequest{Email: "ana@3g.mx", Password: "Secreta123"})
	require.NoError(t, err)

	svc := service.NewAuthService(&stubUsuarioRepo{db: db}, testConfig())
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestUsuario_CrearYDesactivar(t *testing.T) {
	db := newMemDB()
	svc := service.NewUsuarioService(&stubUsuarioRepo{db: db})
	ctx := context.Background()

	u, err := svc.Crear(ctx, dto.CrearUsuarioRequest{Nombre: "Pedro", Email: " Pedro@3G.mx ", Password: "Secreta123", Rol: model.RolCompras})
	require.NoError(t, err)
	assert.Equal(t, "pedro@3g.mx", u.Email)
	assert.True(t, u.Activo)

	_, err = svc.Crear(ctx, dto.CrearUsuarioRequest{Nombre: "Otro", Email: "pedro@3g.mx", Password: "Secreta123", Rol: model.RolCompras})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	id := uuid.MustParse(u.ID)
	assert.ErrorIs(t, svc.Desactivar(ctx, id, id), service.ErrConflicto)
	require.NoError(t, svc.Desactivar(ctx, uuid.New(), id))
	assert.False(t, db.usuarios[id].Activo)
	require.NoError(t, svc.Reactivar(ctx, id))
	assert.True(t, db.usuarios[id].Activo)

	assert.ErrorIs(t, svc.Reactivar(ctx, uuid.New()), service.ErrNoEncontrado)
}

func TestUsuario_ActualizarPassword(t *testing.T) {
	db := newMemDB()
	u := seedUsuario(t, db, "ana@3g.mx", "Secreta123", model.RolAlmacen)
	svc := service.NewUsuarioService(&stubUsuarioRepo{db: db})
	auth := service.NewAuthService(&stubUsuarioRepo{db: db}, testConfig())

	nueva := "NuevaClave99"
	_, err := svc.Actualizar(context.Background(), u.ID, dto.ActualizarUsuarioRequest{Password: &nueva})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "ana@3g.mx", Password: "Secreta123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
	_, err = auth.Login(context.Background(), dto.LoginRequest{Email: "ana@3g.mx", Password: nueva})
	assert.NoError(t, err)
}
