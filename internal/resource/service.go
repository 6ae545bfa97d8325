package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/store"
	"github.com/arzan03/ConsultCMS/internal/utils"
	"github.com/rs/zerolog"
)

// populateConcurrency bounds parallel reference lookups for one read.
const populateConcurrency = 8

// Service runs the CRUD contract for every registered schema against one store.
type Service struct {
	store    store.Store
	registry *Registry
	log      zerolog.Logger
}

// NewService creates a Service.
func NewService(st store.Store, registry *Registry, log zerolog.Logger) *Service {
	return &Service{store: st, registry: registry, log: log.With().Str("component", "resource").Logger()}
}

// Registry returns the schemas served by the service.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Get returns one record with its references populated.
func (s *Service) Get(ctx context.Context, schema *Schema, id string) (store.Document, error) {
	doc, err := s.store.FindByID(ctx, schema.Collection, id)
	if err != nil {
		return nil, s.storeError(schema, id, err)
	}

	docs, err := s.populate(ctx, schema, []store.Document{doc})
	if err != nil {
		return nil, err
	}
	return schema.Project(docs[0]), nil
}

// List returns the records matching params, newest first.
func (s *Service) List(ctx context.Context, schema *Schema, params ListParams) (*ListResult, error) {
	q, err := schema.buildQuery(params)
	if err != nil {
		return nil, err
	}

	docs, total, err := s.store.Find(ctx, schema.Collection, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", schema.Name, err)
	}

	docs, err = s.populate(ctx, schema, docs)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: make([]store.Document, 0, len(docs))}
	for _, doc := range docs {
		result.Items = append(result.Items, schema.Project(doc))
	}
	if params.Paginated() {
		pg := NewPagination(params.Page, params.Limit, total)
		result.Pagination = &pg
	}
	return result, nil
}

// Count returns the number of records of every registered schema, keyed by name.
func (s *Service) Count(ctx context.Context) (map[string]int64, error) {
	schemas := s.registry.All()
	totals, err := utils.RunParallel(ctx, schemas, populateConcurrency, func(ctx context.Context, schema *Schema) (int64, error) {
		_, total, err := s.store.Find(ctx, schema.Collection, store.Query{Limit: 1})
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", schema.Name, err)
		}
		return total, nil
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(schemas))
	for i, schema := range schemas {
		counts[schema.Name] = totals[i]
	}
	return counts, nil
}

// Create validates input and persists a new record.
func (s *Service) Create(ctx context.Context, schema *Schema, input map[string]any) (store.Document, error) {
	set, _, err := schema.prepare(input, modeCreate)
	if err != nil {
		return nil, err
	}

	if err := s.runHook(ctx, schema, "", set); err != nil {
		return nil, err
	}

	doc, err := s.store.Insert(ctx, schema.Collection, set)
	if err != nil {
		return nil, s.storeError(schema, "", err)
	}

	s.log.Info().Str("resource", schema.Name).Str("id", doc.ID()).Msg("record created")
	return schema.Project(doc), nil
}

// Update applies input to an existing record following the schema's update policy.
func (s *Service) Update(ctx context.Context, schema *Schema, id string, input map[string]any) (store.Document, error) {
	mode := modeMerge
	if schema.Update == Replace {
		mode = modeReplace
	}

	set, unset, err := schema.prepare(input, mode)
	if err != nil {
		return nil, err
	}

	// hooks may hash or check uniqueness; an unknown id must be a 404 first
	if _, err := s.store.FindByID(ctx, schema.Collection, id); err != nil {
		return nil, s.storeError(schema, id, err)
	}

	if err := s.runHook(ctx, schema, id, set); err != nil {
		return nil, err
	}

	doc, err := s.store.Update(ctx, schema.Collection, id, set, unset)
	if err != nil {
		return nil, s.storeError(schema, id, err)
	}

	s.log.Info().Str("resource", schema.Name).Str("id", id).Str("policy", schema.Update.String()).Msg("record updated")
	return schema.Project(doc), nil
}

// Delete removes a record. Records referencing it are left untouched.
func (s *Service) Delete(ctx context.Context, schema *Schema, id string) error {
	if err := s.store.Delete(ctx, schema.Collection, id); err != nil {
		return s.storeError(schema, id, err)
	}

	s.log.Info().Str("resource", schema.Name).Str("id", id).Msg("record deleted")
	return nil
}

func (s *Service) runHook(ctx context.Context, schema *Schema, id string, set store.Document) error {
	if schema.BeforeWrite == nil {
		return nil
	}
	return schema.BeforeWrite(ctx, s.store, &Write{Schema: schema, ID: id, Set: set})
}

func (s *Service) storeError(schema *Schema, id string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(schema.Label, id)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict(fmt.Sprintf("%s already exists", schema.Label))
	default:
		return fmt.Errorf("%s store call: %w", schema.Name, err)
	}
}

type refKey struct {
	resource string
	id       string
}

// populate replaces reference identifiers with the referenced records. A dangling
// reference keeps its identifier.
func (s *Service) populate(ctx context.Context, schema *Schema, docs []store.Document) ([]store.Document, error) {
	if len(schema.Populate) == 0 || len(docs) == 0 {
		return docs, nil
	}

	seen := map[refKey]bool{}
	var keys []refKey
	for _, name := range schema.Populate {
		f, ok := schema.Field(name)
		if !ok || f.Kind != Ref {
			continue
		}
		for _, doc := range docs {
			id, _ := doc[name].(string)
			key := refKey{resource: f.Ref, id: id}
			if id == "" || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}

	found, err := utils.RunParallel(ctx, keys, populateConcurrency, func(ctx context.Context, key refKey) (store.Document, error) {
		ref, ok := s.registry.Get(key.resource)
		if !ok {
			return nil, nil
		}
		doc, err := s.store.FindByID(ctx, ref.Collection, key.id)
		if errors.Is(err, store.ErrNotFound) {
			s.log.Debug().Str("resource", key.resource).Str("id", key.id).Msg("dangling reference")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("populate %s: %w", key.resource, err)
		}
		return ref.Project(doc), nil
	})
	if err != nil {
		return nil, err
	}

	byKey := make(map[refKey]store.Document, len(keys))
	for i, key := range keys {
		if found[i] != nil {
			byKey[key] = found[i]
		}
	}

	out := make([]store.Document, 0, len(docs))
	for _, doc := range docs {
		populated := doc.Clone()
		for _, name := range schema.Populate {
			f, _ := schema.Field(name)
			id, _ := doc[name].(string)
			if ref, ok := byKey[refKey{resource: f.Ref, id: id}]; ok {
				populated[name] = ref
			}
		}
		out = append(out, populated)
	}
	return out, nil
}
