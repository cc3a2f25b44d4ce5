package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAdminByEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	admin, err := env.users.Register(ctx, RegisterInput{Email: "Admin@Example.com", Username: "boss", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, admin.Admin)
	assert.Equal(t, testAdminEmail, admin.Email)

	reader, err := env.users.Register(ctx, RegisterInput{Email: "reader@example.com", Username: "reader", Password: "secret"})
	require.NoError(t, err)
	assert.False(t, reader.Admin)

	_, err = env.users.Register(ctx, RegisterInput{Email: "reader@example.com", Username: "someone", Password: "secret"})
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = env.users.Register(ctx, RegisterInput{Email: "x@example.com", Username: "reader", Password: "secret"})
	assert.ErrorIs(t, err, ErrUserExists)

	about, err := env.users.About(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, about.ID)
}

func TestUserService_Login(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	u, err := env.users.Register(ctx, RegisterInput{Email: "reader@example.com", Username: "reader", Password: "secret"})
	require.NoError(t, err)

	token, got, err := env.users.Login(ctx, "reader@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, got.ID)

	_, _, err = env.users.Login(ctx, "reader@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.users.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Profiles(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	a, err := env.users.Register(ctx, RegisterInput{Email: "a@example.com", Username: "a", Password: "pw"})
	require.NoError(t, err)
	_, err = env.users.Register(ctx, RegisterInput{Email: "b@example.com", Username: "b", Password: "pw"})
	require.NoError(t, err)

	updated, err := env.users.UpdateProfile(ctx, a.ID, ProfileInput{Name: "Ann", Location: "Lisbon", AboutMe: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Name)

	byName, err := env.users.GetByUsername(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", byName.Location)

	_, err = env.users.AdminUpdate(ctx, a.ID, AdminProfileInput{Email: "b@example.com", Username: "a"})
	assert.ErrorIs(t, err, ErrUserExists)

	promoted, err := env.users.AdminUpdate(ctx, a.ID, AdminProfileInput{Email: "a@example.com", Username: "ann", Admin: true})
	require.NoError(t, err)
	assert.True(t, promoted.Admin)

	_, err = env.users.GetByUsername(ctx, "a")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = env.users.UpdateProfile(ctx, "missing", ProfileInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
