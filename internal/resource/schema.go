// Package resource implements the generic CRUD contract shared by every content type.
// A Schema describes one resource; Service applies create/read/update/delete to it.
package resource

import (
	"context"

	"github.com/arzan03/ConsultCMS/internal/store"
)

// Kind is the type of a schema field.
type Kind int

const (
	String Kind = iota
	Text
	Email
	Enum
	Date
	Bool
	Number
	StringList
	// Ref holds the identifier of a record in another resource.
	Ref
	// File holds a public URL; multipart payloads may carry the file itself.
	File
	// Password is hashed on write and never returned.
	Password
)

// Field describes one document field.
type Field struct {
	Name      string
	Kind      Kind
	Required  bool
	MaxLength int
	// Values is the closed set of an Enum field.
	Values  []string
	Default any
	// Ref names the referenced resource.
	Ref        string
	Searchable bool
	Filterable bool
	// KeepWhenOmitted leaves the stored value alone when a replace update omits the field.
	KeepWhenOmitted bool
	// Markdown fields expose a rendered <name>Html field on reads.
	Markdown  bool
	Lowercase bool
}

// UpdatePolicy decides what happens to fields an update payload omits.
type UpdatePolicy int

const (
	// Merge changes only the supplied fields.
	Merge UpdatePolicy = iota
	// Replace validates the payload like a create and clears omitted optional fields.
	Replace
)

func (p UpdatePolicy) String() string {
	if p == Replace {
		return "replace"
	}
	return "merge"
}

// Write is the state handed to a BeforeWrite hook.
type Write struct {
	Schema *Schema
	// ID is empty on create.
	ID string
	// Set holds the validated fields about to be written; hooks may change it.
	Set store.Document
}

// Hook runs after validation and before the store call.
type Hook func(ctx context.Context, st store.Store, w *Write) error

// Schema describes a resource: its route name, collection, fields and access rules.
type Schema struct {
	Name       string
	Collection string
	Label      string
	Fields     []Field
	Update     UpdatePolicy
	// Populate lists Ref fields joined into read results.
	Populate []string
	// PublicRead allows anonymous GET; PublicCreate allows anonymous POST.
	PublicRead   bool
	PublicCreate bool
	// AdminOnly restricts every operation to the admin role.
	AdminOnly bool
	// PublishedField, when set, hides unpublished records from anonymous lists.
	PublishedField string
	BeforeWrite    Hook
}

// Field returns the named field.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// SearchFields returns the fields matched by a free-text search.
func (s *Schema) SearchFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// Project returns the client view of a stored document: hidden fields are removed and
// markdown fields gain their rendered HTML.
func (s *Schema) Project(doc store.Document) store.Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	for _, f := range s.Fields {
		switch {
		case f.Kind == Password:
			delete(out, f.Name)
		case f.Markdown:
			if src, ok := out[f.Name].(string); ok {
				out[f.Name+"Html"] = renderMarkdown(src)
			}
		}
	}
	return out
}

// Registry holds the schemas served by the application, in registration order.
type Registry struct {
	order   []*Schema
	schemas map[string]*Schema
}

// NewRegistry registers the given schemas.
func NewRegistry(schemas ...*Schema) *Registry {
	r := &Registry{schemas: make(map[string]*Schema)}
	for _, s := range schemas {
		r.order = append(r.order, s)
		r.schemas[s.Name] = s
	}
	return r
}

// Get returns the schema with the given route name.
func (r *Registry) Get(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// All returns the schemas in registration order.
func (r *Registry) All() []*Schema {
	return r.order
}
