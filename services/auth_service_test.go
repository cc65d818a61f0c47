package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/myckhel/turfHub-sub002/models"
	"github.com/myckhel/turfHub-sub002/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[int]*models.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[int]*models.User),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return repositories.ErrUserEmailConflict
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.byEmail[user.Email] = &stored
	r.byID[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

const testJWTSecret = "test-secret"

func registerInput() RegisterInput {
	return RegisterInput{
		FirstName: "Ada",
		LastName:  "Okafor",
		Email:     "ada@example.com",
		Password:  "correct-horse",
	}
}

func TestRegister(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTSecret, time.Hour)

	user, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RolePlayer, user.Role)
	assert.Empty(t, user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTSecret, time.Hour)

	input := registerInput()
	input.Email = ""
	_, err := svc.Register(context.Background(), input)
	require.ErrorIs(t, err, ErrValidationFailed)

	input = registerInput()
	input.Password = "short"
	_, err = svc.Register(context.Background(), input)
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterEmailConflict(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTSecret, time.Hour)

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), registerInput())
	require.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testJWTSecret, time.Hour)
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), models.Credentials{
		Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	require.NotEmpty(t, token)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, float64(user.ID), claims["user_id"])
	assert.Equal(t, string(models.RolePlayer), claims["role"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTSecret, time.Hour)
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), models.Credentials{Email: "ada@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), models.Credentials{Email: "nobody@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testJWTSecret, time.Hour)
	_, err := svc.GetUser(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}
