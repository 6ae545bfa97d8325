package models

import (
	"github.com/arzan03/ConsultCMS/internal/db"
	"github.com/arzan03/ConsultCMS/internal/resource"
	"github.com/arzan03/ConsultCMS/internal/store"
)

// NewCatalog registers every resource served under /api.
func NewCatalog(hash PasswordHasher) *resource.Registry {
	return resource.NewRegistry(
		Blog(),
		Category(),
		Training(),
		TrainingType(),
		Event(),
		Notice(),
		Contact(),
		Gallery(),
		Director(),
		User(hash),
		Report(),
	)
}

// Indexes lists the MongoDB indexes the catalog relies on.
func Indexes(registry *resource.Registry) []db.Index {
	indexes := []db.Index{
		{Collection: UsersCollection, Field: "email", Unique: true},
	}
	for _, s := range registry.All() {
		indexes = append(indexes, db.Index{Collection: s.Collection, Field: store.CreatedAtField, Descending: true})
	}
	return indexes
}
