package models

import (
	"context"
	"testing"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func newUserService(t *testing.T) (*resource.Service, *resource.Schema, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	catalog := NewCatalog(fakeHash)
	schema, ok := catalog.Get(UsersResource)
	require.True(t, ok)
	return resource.NewService(st, catalog, zerolog.Nop()), schema, st
}

func TestUserCreateHashesAndHidesPassword(t *testing.T) {
	svc, schema, st := newUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, schema, map[string]any{
		"name":     "Asha Admin",
		"email":    "  Asha@Example.COM ",
		"password": "correct-horse",
	})
	require.NoError(t, err)

	assert.NotContains(t, user, "password")
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, RoleEditor, user["role"])

	stored, err := st.FindByID(ctx, UsersCollection, user.ID())
	require.NoError(t, err)
	assert.Equal(t, "hashed:correct-horse", stored["password"])
}

func TestUserDuplicateEmailConflicts(t *testing.T) {
	svc, schema, _ := newUserService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, schema, map[string]any{"name": "A", "email": "a@example.com", "password": "password1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, schema, map[string]any{"name": "B", "email": "A@example.com", "password": "password2"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// re-saving your own email is not a conflict
	_, err = svc.Update(ctx, schema, first.ID(), map[string]any{"email": "a@example.com", "name": "A2"})
	require.NoError(t, err)
}

func TestUserUpdateKeepsPasswordUnlessSupplied(t *testing.T) {
	svc, schema, st := newUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, schema, map[string]any{"name": "A", "email": "a@example.com", "password": "password1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, schema, user.ID(), map[string]any{"name": "Renamed", "password": ""})
	require.NoError(t, err)
	stored, err := st.FindByID(ctx, UsersCollection, user.ID())
	require.NoError(t, err)
	assert.Equal(t, "hashed:password1", stored["password"])

	_, err = svc.Update(ctx, schema, user.ID(), map[string]any{"password": "short"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, schema, user.ID(), map[string]any{"password": "password2"})
	require.NoError(t, err)
	stored, err = st.FindByID(ctx, UsersCollection, user.ID())
	require.NoError(t, err)
	assert.Equal(t, "hashed:password2", stored["password"])
}

func TestUserRoleMustBeKnown(t *testing.T) {
	svc, schema, _ := newUserService(t)

	_, err := svc.Create(context.Background(), schema, map[string]any{
		"name": "A", "email": "a@example.com", "password": "password1", "role": "superuser",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
