package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/gmz-api/internal/application/auth"
	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/pkg/jwt"
)

const secret = "test-secret"

type userRepo struct{ byEmail map[string]*entity.User }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

func newAuth() (*auth.AuthUseCase, *userRepo) {
	repo := &userRepo{byEmail: map[string]*entity.User{}}
	uc := auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "gmz-test"}).
		WithBcryptCost(bcrypt.MinCost)
	return uc, repo
}

func TestCreateUserYLogin(t *testing.T) {
	ctx := context.Background()
	uc, repo := newAuth()

	u, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: " Ana@GMZ.com ", Password: "secreto123", Role: entity.RoleSalesAdmin})
	require.NoError(t, err)
	assert.Equal(t, "ana@gmz.com", u.Email)
	assert.Equal(t, "ana@gmz.com", u.Name, "sin nombre se usa el email")
	assert.NotEqual(t, "secreto123", repo.byEmail["ana@gmz.com"].PasswordHash)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@gmz.com", Password: "secreto123"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleSalesAdmin, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@gmz.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@gmz.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateUser_Validacion(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuth()
	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "a@b.c", Password: "12345678", Role: entity.RoleSystemAdmin})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   dto.CreateUserRequest
		want error
	}{
		{"email repetido", dto.CreateUserRequest{Email: "A@b.c", Password: "12345678", Role: entity.RoleSystemAdmin}, domain.ErrEmailAlreadyExists},
		{"password corto", dto.CreateUserRequest{Email: "x@b.c", Password: "123", Role: entity.RoleSystemAdmin}, domain.ErrInvalidInput},
		{"rol desconocido", dto.CreateUserRequest{Email: "x@b.c", Password: "12345678", Role: "admin"}, domain.ErrInvalidInput},
		{"email inválido", dto.CreateUserRequest{Email: "sin-arroba", Password: "12345678", Role: entity.RoleSalesAdmin}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateUser(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	ctx := context.Background()
	uc, repo := newAuth()
	_, err := uc.CreateUser(ctx, dto.CreateUserRequest{Email: "b@gmz.com", Password: "12345678", Role: entity.RoleSalesAdmin})
	require.NoError(t, err)
	repo.byEmail["b@gmz.com"].Status = "inactive"

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "b@gmz.com", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
