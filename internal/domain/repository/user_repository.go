package repository

import (
	"context"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// UserRepository puerto de persistencia para usuarios y permisos.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User, updatePassword bool) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)

	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	EnsurePermission(ctx context.Context, name string) error
	HasPermission(ctx context.Context, userID, permission string) (bool, error)
}
