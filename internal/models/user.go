package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/store"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

var Roles = []string{RoleAdmin, RoleEditor}

// UsersCollection is where staff accounts live.
const UsersCollection = "users"

// PasswordHasher turns a plaintext password into a one-way hash.
type PasswordHasher func(password string) (string, error)

// User describes staff accounts. Only admins manage them; the password is hashed by the
// write hook and never leaves the service.
func User(hash PasswordHasher) *resource.Schema {
	return &resource.Schema{
		Name:       UsersResource,
		Collection: UsersCollection,
		Label:      "User",
		Update:     resource.Merge,
		AdminOnly:  true,
		Fields: []resource.Field{
			{Name: "name", Kind: resource.String, Required: true, MaxLength: 100, Searchable: true},
			{Name: "email", Kind: resource.Email, Required: true, MaxLength: 200, Searchable: true, Lowercase: true},
			{Name: "password", Kind: resource.Password, Required: true, MaxLength: 72},
			{Name: "role", Kind: resource.Enum, Values: Roles, Default: RoleEditor, Filterable: true},
		},
		BeforeWrite: userHook(hash),
	}
}

func userHook(hash PasswordHasher) resource.Hook {
	return func(ctx context.Context, st store.Store, w *resource.Write) error {
		if email, ok := w.Set["email"].(string); ok {
			existing, err := st.FindOne(ctx, w.Schema.Collection, map[string]any{"email": email})
			switch {
			case err == nil && existing.ID() != w.ID:
				return apperr.Conflict("email already in use")
			case err != nil && !errors.Is(err, store.ErrNotFound):
				return fmt.Errorf("check email: %w", err)
			}
		}

		if password, ok := w.Set["password"].(string); ok {
			if len(password) < 8 {
				return apperr.Validation("password must be at least 8 characters")
			}
			hashed, err := hash(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			w.Set["password"] = hashed
		}
		return nil
	}
}
