package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario3g/internal/config"
	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Token kinds carried in the "tipo" claim.
const (
	TokenAcceso   = "access"
	TokenRefresco = "refresh"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil || !user.Activo {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	return s.emitir(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: refresh token invalido o expirado", ErrCredenciales)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["tipo"] != TokenRefresco {
		return nil, fmt.Errorf("%w: token mal formado", ErrCredenciales)
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: token mal formado", ErrCredenciales)
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, fmt.Errorf("%w: usuario no encontrado o inactivo", ErrCredenciales)
	}
	return s.emitir(user)
}

func (s *authService) Me(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "usuario")
	}
	resp := mapUsuario(*user)
	return &resp, nil
}

func (s *authService) emitir(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAcceso, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresco, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Usuario:      mapUsuario(*user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, tipo string, duration time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", errors.New("JWT_SECRET no configurado")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"email":   user.Email,
		"nombre":  user.Nombre,
		"rol":     user.Rol,
		"tipo":    tipo,
		"exp":     now.Add(duration).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
