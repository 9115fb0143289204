package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/entity"
	"github.com/taskvault/taskvault/internal/port/repository"
	"github.com/taskvault/taskvault/internal/token"
)

func newAuthForTest(users *MockUserRepository, mail *MockMailer) (*AuthUsecase, *token.Service) {
	tokens := token.NewService("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	auth := NewAuthUsecase(users, tokens, mail, nil, 24*time.Hour, time.Hour, 24*time.Hour, zap.NewNop())
	return auth, tokens
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	assert.NoError(t, err)
	return string(hash)
}

func verifiedUser(t *testing.T, email, password string) *entity.User {
	return &entity.User{
		Username:        "tester",
		Email:           email,
		Password:        hashPassword(t, password),
		IsEmailVerified: true,
	}
}

func TestLogin_Success(t *testing.T) {
	users := new(MockUserRepository)
	auth, tokens := newAuthForTest(users, new(MockMailer))

	user := verifiedUser(t, "alice@example.com", "secret123")
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	users.On("SetRefreshToken", mock.Anything, "alice@example.com", mock.Anything).Return(nil)
	users.On("CacheRefreshToken", mock.Anything, mock.Anything, "alice@example.com", mock.Anything).Return(nil)

	session, err := auth.Login(context.Background(), "alice@example.com", "secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "alice@example.com", session.User.Email)

	// Both tokens must carry the identity and verify under their own class.
	id, err := tokens.Verify(session.AccessToken, token.ClassAccess)
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "tester", id.Username)
	_, err = tokens.Verify(session.RefreshToken, token.ClassRefresh)
	assert.NoError(t, err)

	users.AssertExpectations(t)
}

func TestLogin_LowercasesEmail(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	user := verifiedUser(t, "alice@example.com", "secret123")
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	users.On("SetRefreshToken", mock.Anything, "alice@example.com", mock.Anything).Return(nil)
	users.On("CacheRefreshToken", mock.Anything, mock.Anything, "alice@example.com", mock.Anything).Return(nil)

	_, err := auth.Login(context.Background(), "Alice@Example.com", "secret123")
	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestLogin_InvalidInput(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret123"},
		{"empty password", "alice@example.com", ""},
		{"short password", "alice@example.com", "abc"},
		{"malformed email", "not-an-email", "secret123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Login(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	users.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
}

func TestLogin_UnknownUser(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := auth.Login(context.Background(), "ghost@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_UnverifiedGateBeforePassword(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	user := verifiedUser(t, "bob@example.com", "secret123")
	user.IsEmailVerified = false
	users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(user, nil)

	// Even the wrong password reports the verification gate, not the
	// password failure.
	_, err := auth.Login(context.Background(), "bob@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = auth.Login(context.Background(), "bob@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	user := verifiedUser(t, "alice@example.com", "secret123")
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)

	_, err := auth.Login(context.Background(), "alice@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_EmptyToken(t *testing.T) {
	auth, _ := newAuthForTest(new(MockUserRepository), new(MockMailer))

	_, err := auth.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh_Success(t *testing.T) {
	users := new(MockUserRepository)
	auth, tokens := newAuthForTest(users, new(MockMailer))

	user := verifiedUser(t, "alice@example.com", "secret123")
	refreshToken, err := tokens.IssueRefresh(token.Identity{Email: user.Email, Username: user.Username})
	assert.NoError(t, err)
	user.RefreshToken = refreshToken

	users.On("GetCachedRefreshEmail", mock.Anything, refreshToken).Return("", nil)
	users.On("GetUserByRefreshToken", mock.Anything, refreshToken).Return(user, nil)

	session, err := auth.Refresh(context.Background(), refreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Empty(t, session.RefreshToken, "refresh must not rotate the refresh token")

	id, err := tokens.Verify(session.AccessToken, token.ClassAccess)
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", id.Email)
}

func TestRefresh_CacheHitSkipsTokenLookup(t *testing.T) {
	users := new(MockUserRepository)
	auth, tokens := newAuthForTest(users, new(MockMailer))

	user := verifiedUser(t, "alice@example.com", "secret123")
	refreshToken, _ := tokens.IssueRefresh(token.Identity{Email: user.Email, Username: user.Username})
	user.RefreshToken = refreshToken

	users.On("GetCachedRefreshEmail", mock.Anything, refreshToken).Return("alice@example.com", nil)
	users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)

	_, err := auth.Refresh(context.Background(), refreshToken)
	assert.NoError(t, err)
	users.AssertNotCalled(t, "GetUserByRefreshToken", mock.Anything, mock.Anything)
}

func TestRefresh_SupersededTokenRejected(t *testing.T) {
	users := new(MockUserRepository)
	auth, tokens := newAuthForTest(users, new(MockMailer))

	// Cryptographically valid, but no user holds it anymore: a later login
	// overwrote it.
	staleToken, _ := tokens.IssueRefresh(token.Identity{Email: "alice@example.com", Username: "tester"})

	users.On("GetCachedRefreshEmail", mock.Anything, staleToken).Return("", nil)
	users.On("GetUserByRefreshToken", mock.Anything, staleToken).Return(nil, repository.ErrUserNotFound)

	_, err := auth.Refresh(context.Background(), staleToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRefresh_TamperedTokenRejected(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	other := token.NewService("other-access", "other-refresh", 15*time.Minute, 24*time.Hour)
	forged, _ := other.IssueRefresh(token.Identity{Email: "alice@example.com", Username: "tester"})

	user := verifiedUser(t, "alice@example.com", "secret123")
	user.RefreshToken = forged
	users.On("GetCachedRefreshEmail", mock.Anything, forged).Return("", nil)
	users.On("GetUserByRefreshToken", mock.Anything, forged).Return(user, nil)

	_, err := auth.Refresh(context.Background(), forged)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRefresh_EmailMismatchRejected(t *testing.T) {
	users := new(MockUserRepository)
	auth, tokens := newAuthForTest(users, new(MockMailer))

	// Valid signature but the token claims a different identity than the
	// row holding it.
	crossToken, _ := tokens.IssueRefresh(token.Identity{Email: "mallory@example.com", Username: "mallory"})
	user := verifiedUser(t, "alice@example.com", "secret123")
	user.RefreshToken = crossToken

	users.On("GetCachedRefreshEmail", mock.Anything, crossToken).Return("", nil)
	users.On("GetUserByRefreshToken", mock.Anything, crossToken).Return(user, nil)

	_, err := auth.Refresh(context.Background(), crossToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLogout_EmptyTokenIsNoop(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	assert.NoError(t, auth.Logout(context.Background(), ""))
	users.AssertNotCalled(t, "ClearRefreshTokenByValue", mock.Anything, mock.Anything)
}

func TestLogout_ClearsStoreAndCache(t *testing.T) {
	users := new(MockUserRepository)
	auth, _ := newAuthForTest(users, new(MockMailer))

	users.On("ClearRefreshTokenByValue", mock.Anything, "some-token").Return(nil)
	users.On("InvalidateRefreshToken", mock.Anything, "some-token").Return(nil)

	assert.NoError(t, auth.Logout(context.Background(), "some-token"))
	users.AssertExpectations(t)
}
