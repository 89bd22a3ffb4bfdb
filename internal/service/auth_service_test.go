package service

import (
	"context"
	"testing"

	"blogfeed/internal/middleware"
	"blogfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-with-enough-length-for-hs256"

func memoryUsers() *userRepoStub {
	byName := map[string]*models.User{}
	next := uint(1)
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return nil, models.NewNotFoundError("User", id) },
		getByEmailFn: func(_ context.Context, e string) (*models.User, error) { return nil, models.NewNotFoundError("User", e) },
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			if u, ok := byName[name]; ok {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", name)
		},
		createFn: func(_ context.Context, u *models.User) error {
			if _, ok := byName[u.Username]; ok {
				return models.NewAlreadyExistsError("User")
			}
			u.ID = next
			next++
			byName[u.Username] = u
			return nil
		},
		listFn: func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

func TestAuthService_SignupThenLogin(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(memoryUsers(), testSecret, 0, bcrypt.MinCost)
	ctx := context.Background()

	res, err := svc.Signup(ctx, SignupInput{Username: "leo", Email: "Leo@Example.com", Password: "SecurePass12!@"})
	require.NoError(t, err)
	assert.NotEqual(t, "SecurePass12!@", res.User.Password, "password must be hashed")

	id, err := middleware.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)

	login, err := svc.Login(ctx, LoginInput{Username: "leo", Password: "SecurePass12!@"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestAuthService_Signup_Rejects(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(memoryUsers(), testSecret, 0, bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "x", Email: "x@example.com", Password: "SecurePass12!@"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Signup(ctx, SignupInput{Username: "leo", Email: "leo@example.com", Password: "weak"})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Signup(ctx, SignupInput{Username: "leo", Email: "leo@example.com", Password: "SecurePass12!@"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, SignupInput{Username: "leo", Email: "leo2@example.com", Password: "SecurePass12!@"})
	assertCode(t, err, models.CodeAlreadyExists)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()
	svc := NewAuthService(memoryUsers(), testSecret, 0, bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "leo", Email: "leo@example.com", Password: "SecurePass12!@"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "leo", Password: "WrongPass12!@"})
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "SecurePass12!@"})
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.Login(ctx, LoginInput{})
	assertCode(t, err, models.CodeValidation)
}
