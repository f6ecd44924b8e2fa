package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"astromatch/internal/calendar"
	"astromatch/internal/models"
	"astromatch/internal/repositories"
	"astromatch/internal/services"
	"astromatch/internal/session"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	events := &recordingPublisher{}
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), events, testJWTSecret, time.Hour)
	ctx := context.Background()

	in := services.RegisterInput{Username: "ayse", Password: "1234", Birthday: "1995-03-21", Instagram: "@ayse"}

	mockRepo.On("GetByUsername", mock.Anything, "ayse").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		u := args.Get(1).(*models.User)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("1234")))
		u.ID = "user-1"
	}).Return(nil).Once()

	user, err := authService.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "Aries", user.Zodiac)
	assert.Empty(t, user.Password)
	assert.Equal(t, []string{services.EventUserRegistered}, events.keys())
	mockRepo.AssertExpectations(t)

	// Username already taken
	mockRepo.On("GetByUsername", mock.Anything, "ayse").Return(&models.User{ID: "user-1"}, nil).Once()
	_, err = authService.Register(ctx, in)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)

	// Lost race on the unique index
	mockRepo.On("GetByUsername", mock.Anything, "ayse").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("username ayse: %w", repositories.ErrDuplicate)).Once()
	_, err = authService.Register(ctx, in)
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	mockRepo.AssertExpectations(t)

	// Malformed birthday never reaches the store
	bad := in
	bad.Birthday = "21/03/1995"
	_, err = authService.Register(ctx, bad)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	mockRepo.AssertExpectations(t)

	// 72 runes but 144 bytes: too long for bcrypt, rejected before the store
	long := in
	long.Password = strings.Repeat("ş", 72)
	_, err = authService.Register(ctx, long)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	store := repositories.NewMemoryStore()
	authService := services.NewAuthService(store.Users(), session.NewMemoryStore(), nil, testJWTSecret, time.Hour)
	ctx := context.Background()

	_, err := authService.Register(ctx, services.RegisterInput{Username: "ayse", Password: "1234", Birthday: "1995-07-15"})
	require.NoError(t, err)

	res, err := authService.Login(ctx, "ayse", "1234")
	require.NoError(t, err)
	assert.Equal(t, "ayse", res.User.Username)
	assert.Equal(t, "Cancer", res.User.Zodiac)
	assert.Equal(t, time.July, res.View.Month)

	raw, err := json.Marshal(res.User)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "1234")

	_, err = authService.Login(ctx, "ayse", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = authService.Login(ctx, "Ayse", "1234")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = authService.Login(ctx, "nobody", "1234")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, session.NewMemoryStore(), nil, testJWTSecret, time.Hour)

	mockRepo.On("GetByUsername", mock.Anything, "ayse").Return(nil, errors.New("connection refused")).Once()
	_, err := authService.Login(context.Background(), "ayse", "1234")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	store := repositories.NewMemoryStore()
	authService := services.NewAuthService(store.Users(), session.NewMemoryStore(), nil, testJWTSecret, time.Hour)
	ctx := context.Background()

	_, err := authService.Register(ctx, services.RegisterInput{Username: "ayse", Password: "1234", Birthday: "1995-07-15"})
	require.NoError(t, err)
	res, err := authService.Login(ctx, "ayse", "1234")
	require.NoError(t, err)

	claims, err := authService.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "ayse", claims.Username)
	assert.NotEmpty(t, claims.SessionID)

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Wrong secret
	other := services.NewAuthService(store.Users(), session.NewMemoryStore(), nil, "another_secret", time.Hour)
	_, err = other.ValidateToken(res.Token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"sid":     "sid-1",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Token without a session id
	noSID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	noSIDString, _ := noSID.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(noSIDString)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_SessionLifecycle(t *testing.T) {
	store := repositories.NewMemoryStore()
	sessions := session.NewMemoryStore()
	authService := services.NewAuthService(store.Users(), sessions, nil, testJWTSecret, time.Hour)
	ctx := context.Background()

	_, err := authService.Register(ctx, services.RegisterInput{Username: "ayse", Password: "1234", Birthday: "1995-07-15"})
	require.NoError(t, err)
	res, err := authService.Login(ctx, "ayse", "1234")
	require.NoError(t, err)
	claims, err := authService.ValidateToken(res.Token)
	require.NoError(t, err)

	snap, err := authService.Resume(ctx, claims.SessionID, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ayse", snap.User.Username)
	assert.Equal(t, res.View, snap.View)

	view := calendar.MonthKey{Year: 2031, Month: time.December}
	_, err = authService.SaveView(ctx, claims.SessionID, claims.UserID, view)
	require.NoError(t, err)
	snap, err = authService.Resume(ctx, claims.SessionID, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, view, snap.View)

	_, err = authService.SaveView(ctx, claims.SessionID, claims.UserID, calendar.MonthKey{Year: 2031, Month: 13})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	// Another user's id never resumes this session.
	_, err = authService.Resume(ctx, claims.SessionID, "someone-else")
	assert.ErrorIs(t, err, services.ErrNoSession)

	require.NoError(t, authService.Logout(ctx, claims.SessionID))
	_, err = authService.Resume(ctx, claims.SessionID, claims.UserID)
	assert.ErrorIs(t, err, services.ErrNoSession)
}

func TestAuthService_ResumeCorruptOrDeleted(t *testing.T) {
	store := repositories.NewMemoryStore()
	sessions := session.NewMemoryStore()
	authService := services.NewAuthService(store.Users(), sessions, nil, testJWTSecret, time.Hour)
	ctx := context.Background()

	require.NoError(t, sessions.Save(ctx, "garbled", []byte("{not json"), time.Hour))
	_, err := authService.Resume(ctx, "garbled", "user-1")
	assert.ErrorIs(t, err, services.ErrNoSession)
	_, err = sessions.Load(ctx, "garbled")
	assert.ErrorIs(t, err, session.ErrNotFound, "unreadable sessions are dropped")

	_, err = authService.Register(ctx, services.RegisterInput{Username: "ayse", Password: "1234", Birthday: "1995-07-15"})
	require.NoError(t, err)
	res, err := authService.Login(ctx, "ayse", "1234")
	require.NoError(t, err)
	claims, err := authService.ValidateToken(res.Token)
	require.NoError(t, err)

	require.NoError(t, store.Users().Delete(ctx, claims.UserID))
	_, err = authService.Resume(ctx, claims.SessionID, claims.UserID)
	assert.ErrorIs(t, err, services.ErrNoSession)
}

func TestAuthService_AuthenticateFollowsSession(t *testing.T) {
	store := repositories.NewMemoryStore()
	authService := services.NewAuthService(store.Users(), session.NewMemoryStore(), nil, testJWTSecret, time.Hour)
	ctx := context.Background()

	_, err := authService.Register(ctx, services.RegisterInput{Username: "ayse", Password: "1234", Birthday: "1995-07-15"})
	require.NoError(t, err)
	res, err := authService.Login(ctx, "ayse", "1234")
	require.NoError(t, err)

	claims, err := authService.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = authService.Authenticate(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	require.NoError(t, authService.Logout(ctx, claims.SessionID))
	_, err = authService.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, services.ErrNoSession)
}
