package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Los permisos viven en permissions/ref_user_permissions y se cargan junto al usuario.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create persiste un nuevo usuario con sus permisos en una sola transacción.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1::uuid, $2, $3, $4)`,
		user.ID, user.Username, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if err := replacePermissions(ctx, tx, user.ID, user.Permissions); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID. nil, nil si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE id = $1::uuid`, id)
}

// GetByUsername obtiene un usuario por nombre de login. nil, nil si no existe.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `WHERE username = $1`, username)
}

func (r *UserRepo) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	var u entity.User
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, username, password_hash, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	perms, err := userPermissions(ctx, r.pool, u.ID)
	if err != nil {
		return nil, err
	}
	u.Permissions = perms
	return &u, nil
}

// List todos los usuarios ordenados por username, con permisos.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, username, password_hash, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, u := range list {
		perms, err := userPermissions(ctx, r.pool, u.ID)
		if err != nil {
			return nil, err
		}
		u.Permissions = perms
	}
	return list, nil
}

// Update cambia username y permisos; el hash solo si updatePassword.
func (r *UserRepo) Update(ctx context.Context, user *entity.User, updatePassword bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `UPDATE users SET username = $2 WHERE id = $1::uuid`
	args := []any{user.ID, user.Username}
	if updatePassword {
		query = `UPDATE users SET username = $2, password_hash = $3 WHERE id = $1::uuid`
		args = append(args, user.PasswordHash)
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	if err := replacePermissions(ctx, tx, user.ID, user.Permissions); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM ref_user_permissions WHERE user_id = $1::uuid`, id); err != nil {
		return fmt.Errorf("delete user permissions: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepo) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, app_perm FROM permissions ORDER BY app_perm`)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()
	list := []entity.Permission{}
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *UserRepo) EnsurePermission(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO permissions (app_perm) VALUES ($1) ON CONFLICT (app_perm) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("ensure permission: %w", err)
	}
	return nil
}

func (r *UserRepo) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ref_user_permissions ref
			JOIN permissions p ON p.id = ref.permission_id
			WHERE ref.user_id = $1::uuid AND p.app_perm = $2
		)`, userID, permission).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("has permission: %w", err)
	}
	return ok, nil
}

func userPermissions(ctx context.Context, q Querier, userID string) ([]string, error) {
	rows, err := q.Query(ctx, `
		SELECT p.app_perm FROM ref_user_permissions ref
		JOIN permissions p ON p.id = ref.permission_id
		WHERE ref.user_id = $1::uuid
		ORDER BY p.app_perm`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user permissions: %w", err)
	}
	defer rows.Close()
	perms := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan user permission: %w", err)
		}
		perms = append(perms, name)
	}
	return perms, rows.Err()
}

// replacePermissions borra las filas de ref_user_permissions del usuario y vuelve a insertar.
// Un permiso desconocido (no presente en permissions) es ErrInvalidInput.
func replacePermissions(ctx context.Context, q Querier, userID string, perms []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM ref_user_permissions WHERE user_id = $1::uuid`, userID); err != nil {
		return fmt.Errorf("clear user permissions: %w", err)
	}
	for _, name := range perms {
		tag, err := q.Exec(ctx, `
			INSERT INTO ref_user_permissions (user_id, permission_id)
			SELECT $1::uuid, id FROM permissions WHERE app_perm = $2
			ON CONFLICT DO NOTHING`, userID, name)
		if err != nil {
			return fmt.Errorf("insert user permission: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM permissions WHERE app_perm = $1)`, name).Scan(&exists); err != nil {
				return fmt.Errorf("check permission: %w", err)
			}
			if !exists {
				return fmt.Errorf("%w: permiso desconocido %q", domain.ErrInvalidInput, name)
			}
		}
	}
	return nil
}
