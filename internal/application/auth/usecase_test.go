package auth_test

import (
	"context"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rechnungsverwaltung/internal/application/auth"
	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	pkgjwt "github.com/jhoicas/rechnungsverwaltung/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

type fakeUserRepo struct {
	users map[string]*entity.User
	perms []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}
func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}
func (r *fakeUserRepo) GetByUsername(_ context.Context, name string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}
func (r *fakeUserRepo) List(context.Context) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
func (r *fakeUserRepo) Update(_ context.Context, u *entity.User, updatePassword bool) error {
	old, ok := r.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	if !updatePassword {
		cp.PasswordHash = old.PasswordHash
	}
	r.users[u.ID] = &cp
	return nil
}
func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
func (r *fakeUserRepo) Count(context.Context) (int, error) { return len(r.users), nil }
func (r *fakeUserRepo) ListPermissions(context.Context) ([]entity.Permission, error) {
	out := make([]entity.Permission, len(r.perms))
	for i, p := range r.perms {
		out[i] = entity.Permission{ID: int64(i + 1), Name: p}
	}
	return out, nil
}
func (r *fakeUserRepo) EnsurePermission(_ context.Context, name string) error {
	for _, p := range r.perms {
		if p == name {
			return nil
		}
	}
	r.perms = append(r.perms, name)
	return nil
}
func (r *fakeUserRepo) HasPermission(_ context.Context, userID, perm string) (bool, error) {
	u, ok := r.users[userID]
	if !ok {
		return false, nil
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true, nil
		}
	}
	return false, nil
}

var ctx = context.Background()

func newUseCase(repo *fakeUserRepo) *auth.AuthUseCase {
	return auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "rv-test"}, 8, zerolog.Nop())
}

func TestAddUserYLogin(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newUseCase(repo)

	u, err := uc.AddUser(ctx, dto.CreateUserRequest{
		Username: "buchhaltung", Password: "sehrgeheim",
		Permissions: []string{entity.PermInvoicesRead, entity.PermInvoicesRead, entity.PermInvoicesExport},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices.read", "invoices.export"}, u.Permissions, "sin duplicados")
	assert.NotEqual(t, "sehrgeheim", repo.users[u.ID].PasswordHash)

	out, err := uc.Login(ctx, dto.LoginRequest{Username: "buchhaltung", Password: "sehrgeheim"})
	require.NoError(t, err)
	claims, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.True(t, claims.Has(entity.PermInvoicesExport))
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newUseCase(repo)
	_, err := uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "12345678"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "a", Password: "falsch123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAddUser_Validaciones(t *testing.T) {
	uc := newUseCase(newFakeUserRepo())

	_, err := uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "kurz"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "12345678", Permissions: []string{"root"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddUser(ctx, dto.CreateUserRequest{Username: "  ", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "12345678"})
	require.NoError(t, err)
	_, err = uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUpdateUser_PasswordOpcional(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newUseCase(repo)
	u, err := uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "12345678"})
	require.NoError(t, err)
	hash := repo.users[u.ID].PasswordHash

	out, err := uc.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{Permissions: []string{entity.PermUsersManage}})
	require.NoError(t, err)
	assert.Equal(t, "a", out.Username)
	assert.Equal(t, []string{entity.PermUsersManage}, out.Permissions)
	assert.Equal(t, hash, repo.users[u.ID].PasswordHash, "sin password se conserva el hash")

	_, err = uc.UpdateUser(ctx, u.ID, dto.UpdateUserRequest{Password: "neuespasswort"})
	require.NoError(t, err)
	assert.NotEqual(t, hash, repo.users[u.ID].PasswordHash)

	ok, err := uc.HasPermission(ctx, u.ID, entity.PermUsersManage)
	require.NoError(t, err)
	assert.False(t, ok, "la lista de permisos se reemplaza completa")

	_, err = uc.UpdateUser(ctx, "no-existe", dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newUseCase(repo)

	require.NoError(t, uc.EnsureAdmin(ctx, "admin", ""))
	assert.Len(t, repo.perms, len(entity.AllPermissions))
	assert.Empty(t, repo.users, "sin contraseña no se crea el admin")

	require.NoError(t, uc.EnsureAdmin(ctx, "admin", "adminadmin"))
	require.Len(t, repo.users, 1)

	require.NoError(t, uc.EnsureAdmin(ctx, "otro", "adminadmin"))
	assert.Len(t, repo.users, 1, "con usuarios existentes no hace nada")

	perms, err := uc.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(entity.AllPermissions))
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeUserRepo()
	uc := newUseCase(repo)
	u, err := uc.AddUser(ctx, dto.CreateUserRequest{Username: "a", Password: "12345678"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, uc.DeleteUser(ctx, u.ID), domain.ErrUserNotFound)
}
