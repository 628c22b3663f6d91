package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentormind/internal/repository"
	"mentormind/internal/validation"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.deps)

	user, err := svc.Register(ctx, " ana ", "Ana@Example.com", "correct horse", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.Equal(t, 1, user.Level)

	goal, err := repository.NewGoalRepository(f.db).Get(ctx, user.ID, f.today())
	require.NoError(t, err)
	assert.Equal(t, 0, goal.FocusAchievedMinutes)

	_, err = svc.Register(ctx, "ana", "other@example.com", "correct horse", "Ana")
	assert.ErrorIs(t, err, ErrUserExists)
	_, err = svc.Register(ctx, "other", "ANA@example.com", "correct horse", "Ana")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.deps)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		field    string
	}{
		{"short username", "ab", "a@example.com", "password1", "username"},
		{"bad email", "valid_name", "not-an-email", "password1", "email"},
		{"short password", "valid_name", "a@example.com", "short", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password, "Name")
			var verr validation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.deps)

	user, err := svc.Register(ctx, "bo", "bo@example.com", "s3cret-pass", "Bo")
	require.NoError(t, err)

	got, err := svc.Authenticate(ctx, "bo", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got, err = svc.Authenticate(ctx, "BO@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "bo", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.deps)
	user := f.createUser(t, "cy")

	for _, ref := range []string{"cy", "cy@example.com"} {
		got, err := svc.Resolve(ctx, ref)
		require.NoError(t, err, ref)
		assert.Equal(t, user.ID, got.ID)
	}
	got, err := svc.Resolve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Resolve(ctx, "1abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = svc.Resolve(ctx, "99")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewUserService(f.deps)
	user := f.createUser(t, "di")
	assert.True(t, user.RemindersEnabled)

	require.NoError(t, svc.SetTelegramChat(ctx, user.ID, 4242))
	require.NoError(t, svc.SetReminders(ctx, user.ID, false))

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), got.TelegramChatID)
	assert.False(t, got.RemindersEnabled)
}
