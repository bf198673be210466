package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	tsclient "github.com/smileworks/clinic-backend/internal/infrastructure/clients/typesense"
)

const (
	peopleCollection     = "people"
	proceduresCollection = "procedures"
)

// TypesenseAdapter implements the directory index using Typesense. It is
// optional; directory lookups fall back to gateway substring matching when
// the index is not configured.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements DirectorySearchProvider
var _ providers.DirectorySearchProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures both directory collections exist
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	if err := a.ensureCollection(ctx, &api.CollectionSchema{
		Name: peopleCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "full_name", Type: "string"},
			{Name: "role", Type: "string", Facet: pointer.True()},
		},
	}); err != nil {
		return err
	}

	return a.ensureCollection(ctx, &api.CollectionSchema{
		Name: proceduresCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "procedure_name", Type: "string"},
			{Name: "duration_minutes", Type: "int32"},
		},
	})
}

func (a *TypesenseAdapter) ensureCollection(ctx context.Context, schema *api.CollectionSchema) error {
	_, err := a.client.Client().Collection(schema.Name).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection %s: %w", schema.Name, err)
	}
	return nil
}

// Suggest returns candidates whose display name matches the query
func (a *TypesenseAdapter) Suggest(ctx context.Context, category providers.DirectoryCategory, query string, limit int) ([]providers.DirectoryCandidate, error) {
	collection, queryBy, filterBy := a.searchTarget(category)

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String(queryBy),
		PerPage: pointer.Int(limit),
	}
	if filterBy != "" {
		searchParams.FilterBy = pointer.String(filterBy)
	}

	result, err := a.client.Client().Collection(collection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", collection, err)
	}

	candidates := []providers.DirectoryCandidate{}
	if result.Hits == nil {
		return candidates, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document
		candidate := providers.DirectoryCandidate{
			ID: asString(doc["id"]),
		}
		if collection == proceduresCollection {
			candidate.DisplayName = asString(doc["procedure_name"])
			if v, ok := doc["duration_minutes"].(float64); ok {
				candidate.DurationMinutes = int(v)
			}
		} else {
			candidate.DisplayName = asString(doc["full_name"])
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// Index upserts one directory document
func (a *TypesenseAdapter) Index(ctx context.Context, category providers.DirectoryCategory, candidate providers.DirectoryCandidate) error {
	collection, _, _ := a.searchTarget(category)

	var document map[string]interface{}
	if collection == proceduresCollection {
		document = map[string]interface{}{
			"id":               candidate.ID,
			"procedure_name":   candidate.DisplayName,
			"duration_minutes": candidate.DurationMinutes,
		}
	} else {
		document = map[string]interface{}{
			"id":        candidate.ID,
			"full_name": candidate.DisplayName,
			"role":      string(categoryRole(category)),
		}
	}

	_, err := a.client.Client().Collection(collection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index document in %s: %w", collection, err)
	}

	return nil
}

// Delete removes one directory document
func (a *TypesenseAdapter) Delete(ctx context.Context, category providers.DirectoryCategory, id string) error {
	collection, _, _ := a.searchTarget(category)

	_, err := a.client.Client().Collection(collection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete document from %s: %w", collection, err)
	}
	return nil
}

func (a *TypesenseAdapter) searchTarget(category providers.DirectoryCategory) (collection, queryBy, filterBy string) {
	switch category {
	case providers.DirectoryCategoryProcedures:
		return proceduresCollection, "procedure_name", ""
	case providers.DirectoryCategoryDentists:
		return peopleCollection, "full_name", "role:=doctor"
	default:
		return peopleCollection, "full_name", "role:=patient"
	}
}

func categoryRole(category providers.DirectoryCategory) entities.Role {
	if category == providers.DirectoryCategoryDentists {
		return entities.RoleDoctor
	}
	return entities.RolePatient
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
