// Package auth implementa autenticación y administración de usuarios:
// login con bloqueo temporal por intentos fallidos, emisión de JWT con roles
// y permisos embebidos, y el ABM de usuarios reservado al administrador.
package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/obrasoft/gestion-api/internal/application/dto"
	"github.com/obrasoft/gestion-api/internal/domain"
	"github.com/obrasoft/gestion-api/internal/domain/entity"
	"github.com/obrasoft/gestion-api/internal/domain/repository"
	"github.com/obrasoft/gestion-api/pkg/config"
	"github.com/obrasoft/gestion-api/pkg/jwt"
)

const minPasswordLen = 8

// UseCase casos de uso de autenticación y usuarios.
type UseCase struct {
	users   repository.UserRepository
	jwtCfg  config.JWTConfig
	authCfg config.AuthConfig
	now     func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(users repository.UserRepository, jwtCfg config.JWTConfig, authCfg config.AuthConfig) *UseCase {
	return &UseCase{users: users, jwtCfg: jwtCfg, authCfg: authCfg, now: time.Now}
}

// WithClock reemplaza el reloj del caso de uso (tests de bloqueo temporal).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Login verifica credenciales y devuelve un JWT. Credenciales incorrectas
// incrementan el contador de intentos; al llegar al máximo la cuenta queda
// bloqueada por la ventana configurada. Un login correcto resetea el
// contador. Username inexistente y password incorrecta responden igual
// (ErrUnauthorized) para no filtrar qué usuarios existen.
func (uc *UseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := uc.users.GetByUsername(strings.ToLower(strings.TrimSpace(in.Username)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	now := uc.now()
	if user.Locked(now) {
		return nil, domain.ErrUserLocked
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(in.Password)); err != nil {
		return nil, uc.registerFailure(user, now)
	}

	// Login correcto: limpiar contador y bloqueo residual.
	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.FailedAttempts = 0
		user.LockedUntil = nil
		user.UpdatedAt = now
		if err := uc.users.Update(user); err != nil {
			return nil, err
		}
	}

	permissions, err := uc.users.PermissionsForRoles(user.Roles)
	if err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Roles, permissions, uc.jwtCfg.Issuer, uc.jwtCfg.Expiration)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:        token,
		MustChangePw: user.MustChangePw,
		User:         toUserResponse(user),
	}, nil
}

// registerFailure suma un intento fallido y bloquea la cuenta al llegar al
// máximo configurado.
func (uc *UseCase) registerFailure(user *entity.User, now time.Time) error {
	user.FailedAttempts++
	if user.FailedAttempts >= uc.authCfg.MaxLoginAttempts {
		until := now.Add(time.Duration(uc.authCfg.LockoutMinutes) * time.Minute)
		user.LockedUntil = &until
		user.FailedAttempts = 0
	}
	user.UpdatedAt = now
	if err := uc.users.Update(user); err != nil {
		return err
	}
	if user.LockedUntil != nil {
		return domain.ErrUserLocked
	}
	return domain.ErrUnauthorized
}

// CreateUser registra un usuario nuevo con password hasheada y sus roles.
// El usuario nace con MustChangePw activo: la password asignada por el
// administrador es temporal.
func (uc *UseCase) CreateUser(in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" || len(in.Password) < minPasswordLen {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PassHash:     string(hash),
		FullName:     in.FullName,
		Phone:        in.Phone,
		IsActive:     true,
		MustChangePw: true,
		Roles:        in.Roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(user); err != nil {
		return nil, err
	}
	for _, role := range in.Roles {
		if err := uc.users.AssignRole(user.ID, role); err != nil {
			return nil, err
		}
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ChangePassword cambia la password del usuario autenticado, verificando
// antes la actual. Apaga MustChangePw.
func (uc *UseCase) ChangePassword(userID string, in dto.ChangePasswordRequest) error {
	if len(in.NewPassword) < minPasswordLen {
		return domain.ErrInvalidInput
	}
	user, err := uc.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(in.CurrentPassword)); err != nil {
		return domain.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PassHash = string(hash)
	user.MustChangePw = false
	user.UpdatedAt = uc.now()
	return uc.users.Update(user)
}

// GetUser devuelve un usuario por id.
func (uc *UseCase) GetUser(id string) (*dto.UserResponse, error) {
	user, err := uc.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// ListUsers lista usuarios.
func (uc *UseCase) ListUsers(limit, offset int) ([]*dto.UserResponse, error) {
	users, err := uc.users.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp := toUserResponse(u)
		out = append(out, &resp)
	}
	return out, nil
}

// SetActive activa o desactiva una cuenta. Desactivar también despeja el
// bloqueo temporal: el estado manda sobre el contador.
func (uc *UseCase) SetActive(id string, active bool) error {
	user, err := uc.users.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return uc.users.SetActive(id, active)
}

// AssignRole agrega un rol a un usuario.
func (uc *UseCase) AssignRole(userID, roleCode string) error {
	user, err := uc.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return uc.users.AssignRole(userID, roleCode)
}

// RemoveRole quita un rol de un usuario.
func (uc *UseCase) RemoveRole(userID, roleCode string) error {
	user, err := uc.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return uc.users.RemoveRole(userID, roleCode)
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
}
