package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
	"github.com/jhoicas/rechnungsverwaltung/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login, gestión de usuarios y consulta de permisos.
type AuthUseCase struct {
	userRepo          repository.UserRepository
	jwtCfg            JWTConfig
	minPasswordLength int
	log               zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, minPasswordLength int, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo:          userRepo,
		jwtCfg:            jwtCfg,
		minPasswordLength: minPasswordLength,
		log:               log.With().Str("component", "auth").Logger(),
	}
}

// Login verifica usuario/contraseña y devuelve un JWT con los permisos del usuario.
// Usuario inexistente y contraseña incorrecta dan el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Permissions, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("username", user.Username).Msg("login correcto")
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// ListUsers todos los usuarios con sus permisos.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]*dto.UserResponse, error) {
	list, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

// AddUser crea un usuario: hashea password con bcrypt y asigna permisos.
func (uc *AuthUseCase) AddUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username requerido", domain.ErrInvalidInput)
	}
	if err := uc.checkPassword(in.Password); err != nil {
		return nil, err
	}
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
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
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Permissions:  perms,
		CreatedAt:    time.Now(),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("username", username).Strs("permissions", perms).Msg("usuario creado")
	return toUserResponse(user), nil
}

// UpdateUser cambia username y permisos; la contraseña solo si viene informada.
func (uc *AuthUseCase) UpdateUser(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if username := strings.TrimSpace(in.Username); username != "" {
		user.Username = username
	}
	perms, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	user.Permissions = perms

	updatePassword := in.Password != ""
	if updatePassword {
		if err := uc.checkPassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := uc.userRepo.Update(ctx, user, updatePassword); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// DeleteUser borra permisos y usuario.
func (uc *AuthUseCase) DeleteUser(ctx context.Context, id string) error {
	return uc.userRepo.Delete(ctx, id)
}

// ListPermissions permisos asignables.
func (uc *AuthUseCase) ListPermissions(ctx context.Context) ([]dto.PermissionResponse, error) {
	list, err := uc.userRepo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.PermissionResponse{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

// HasPermission consulta la base de datos (no el token).
func (uc *AuthUseCase) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	return uc.userRepo.HasPermission(ctx, userID, permission)
}

// EnsureAdmin registra los permisos conocidos y, si no hay usuarios, crea el
// administrador inicial con todos ellos. Sin contraseña configurada no crea nada.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, username, password string) error {
	for _, p := range entity.AllPermissions {
		if err := uc.userRepo.EnsurePermission(ctx, p); err != nil {
			return err
		}
	}
	n, err := uc.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if password == "" {
		uc.log.Warn().Msg("sin usuarios y sin ADMIN_PASSWORD: no se crea administrador")
		return nil
	}
	_, err = uc.AddUser(ctx, dto.CreateUserRequest{
		Username:    username,
		Password:    password,
		Permissions: entity.AllPermissions,
	})
	return err
}

func (uc *AuthUseCase) checkPassword(pw string) error {
	if len([]rune(pw)) < uc.minPasswordLength {
		return fmt.Errorf("%w: mínimo %d caracteres", domain.ErrWeakPassword, uc.minPasswordLength)
	}
	return nil
}

// normalizePermissions elimina duplicados y rechaza nombres desconocidos.
func normalizePermissions(in []string) ([]string, error) {
	known := make(map[string]bool, len(entity.AllPermissions))
	for _, p := range entity.AllPermissions {
		known[p] = true
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if !known[p] {
			return nil, fmt.Errorf("%w: permiso desconocido %q", domain.ErrInvalidInput, p)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Permissions: perms,
		CreatedAt:   u.CreatedAt,
	}
}
