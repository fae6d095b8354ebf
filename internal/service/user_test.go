package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiknowledgehub/hub-server/internal/domain"
	"github.com/aiknowledgehub/hub-server/internal/errors"
)

func TestUserService_Register(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	u, err := env.users.Register(ctx, " Ada@Example.com ", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email())

	got, err := env.users.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.ID())

	byID, err := env.users.Get(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, u.Record(), byID.Record())
}

func TestUserService_Register_Errors(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()
	_, err := env.users.Register(ctx, "ada@example.com", "Ada")
	require.NoError(t, err)

	_, err = env.users.Register(ctx, "ADA@example.com", "Another Ada")
	require.Error(t, err)
	assert.Equal(t, KindEmailAlreadyRegistered, errors.KindOf(err))
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)

	_, err = env.users.Register(ctx, "not-an-email", "Bob")
	assert.Equal(t, domain.KindUserValidation, errors.KindOf(err))
}

func TestUserService_Get_NotFound(t *testing.T) {
	env := newTestEnv(t, 0)

	_, err := env.users.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUserService_Get_NotFoundKinds(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	_, err := env.users.Get(ctx, "missing")
	assert.Equal(t, domain.KindUserNotFound, errors.KindOf(err))

	_, err = env.users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Equal(t, domain.KindUserNotFound, errors.KindOf(err))
}

func TestUserService_Import(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	u, err := env.users.Register(ctx, "ada@example.com", "Ada")
	require.NoError(t, err)

	sameID := u.Record()
	sameID.Email = "grace@example.com"
	clash, err := env.factory.RestoreUser(sameID)
	require.NoError(t, err)
	err = env.users.Import(ctx, clash)
	assert.Equal(t, domain.KindDuplicateRecordID, errors.KindOf(err))

	sameEmail := u.Record()
	sameEmail.ID = "user-other"
	clash, err = env.factory.RestoreUser(sameEmail)
	require.NoError(t, err)
	err = env.users.Import(ctx, clash)
	assert.Equal(t, KindEmailAlreadyRegistered, errors.KindOf(err))
}
