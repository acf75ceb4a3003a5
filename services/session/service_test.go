package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"showlog/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	loginErr error
	user     models.User
	token    string
	profile  func() (models.User, error)
}

func (f *fakeAuth) Login(context.Context, string, string) (models.User, string, error) {
	if f.loginErr != nil {
		return models.User{}, "", f.loginErr
	}
	return f.user, f.token, nil
}

func (f *fakeAuth) Profile(context.Context) (models.User, error) {
	if f.profile != nil {
		return f.profile()
	}
	return f.user, nil
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSignInPersistsSession(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuth{
		user:  models.User{ID: 1, Username: "frank"},
		token: signedToken(t, time.Now().Add(time.Hour)),
	}

	svc, err := NewService(dir, auth)
	require.NoError(t, err)

	sess, err := svc.SignIn(context.Background(), "frank@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "frank", sess.User.Username)
	assert.False(t, sess.ExpiresAt.IsZero(), "expiry should be read from the token")

	_, err = os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuth{
		user:  models.User{ID: 1, Username: "frank"},
		token: signedToken(t, time.Now().Add(time.Hour)),
	}

	first, err := NewService(dir, auth)
	require.NoError(t, err)
	_, err = first.SignIn(context.Background(), "frank@example.com", "hunter2")
	require.NoError(t, err)

	second, err := NewService(dir, auth)
	require.NoError(t, err)
	require.NoError(t, second.Load(context.Background()))

	assert.Equal(t, auth.token, second.Token())
	current, err := second.Current()
	require.NoError(t, err)
	assert.Equal(t, "frank", current.User.Username)
}

func TestLoadRejectsExpiredToken(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuth{
		user:  models.User{ID: 1, Username: "frank"},
		token: signedToken(t, time.Now().Add(-time.Hour)),
	}

	first, err := NewService(dir, auth)
	require.NoError(t, err)
	_, err = first.SignIn(context.Background(), "frank@example.com", "hunter2")
	require.NoError(t, err)

	second, err := NewService(dir, auth)
	require.NoError(t, err)
	err = second.Load(context.Background())
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.Empty(t, second.Token())

	// The dead token file is gone; the next load starts clean.
	require.NoError(t, second.Load(context.Background()))
}

func TestLoadKeepsStoredProfileWhenRefreshFails(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuth{
		user:  models.User{ID: 1, Username: "frank"},
		token: signedToken(t, time.Now().Add(time.Hour)),
	}

	first, err := NewService(dir, auth)
	require.NoError(t, err)
	_, err = first.SignIn(context.Background(), "frank@example.com", "hunter2")
	require.NoError(t, err)

	auth.profile = func() (models.User, error) {
		return models.User{}, errors.New("backend down")
	}

	second, err := NewService(dir, auth)
	require.NoError(t, err)
	require.NoError(t, second.Load(context.Background()))

	current, err := second.Current()
	require.NoError(t, err)
	assert.Equal(t, "frank", current.User.Username)
}

func TestClearSignsOut(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuth{
		user:  models.User{ID: 1, Username: "frank"},
		token: signedToken(t, time.Now().Add(time.Hour)),
	}

	svc, err := NewService(dir, auth)
	require.NoError(t, err)
	_, err = svc.SignIn(context.Background(), "frank@example.com", "hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Clear())
	assert.Empty(t, svc.Token())
	_, err = svc.Current()
	require.ErrorIs(t, err, ErrNotSignedIn)

	_, statErr := os.Stat(filepath.Join(dir, "session.json"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	// Clearing twice is fine.
	require.NoError(t, svc.Clear())
}
