package schema

import (
	"context"
	"fmt"
	"sync"

	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
	"github.com/SirClappington/cf-graphql-demo/internal/services"
)

// Source is where resolvers read entries and assets from.
type Source interface {
	GetEntries(ctx context.Context, q services.EntryQuery) (*models.EntryCollection, error)
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
}

// loader wraps a Source for a single request. Entries and assets already seen
// in the request, including the includes of collection responses, are not
// fetched twice.
type loader struct {
	src Source

	mu      sync.Mutex
	entries map[string]*models.Entry
	assets  map[string]*models.Asset
}

type loaderKey struct{}

// WithSource attaches a per-request loader over src to ctx.
func WithSource(ctx context.Context, src Source) context.Context {
	return context.WithValue(ctx, loaderKey{}, &loader{
		src:     src,
		entries: make(map[string]*models.Entry),
		assets:  make(map[string]*models.Asset),
	})
}

func loaderFrom(ctx context.Context) (*loader, error) {
	if ctx != nil {
		if l, ok := ctx.Value(loaderKey{}).(*loader); ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("no content source attached to the request")
}

func (l *loader) query(ctx context.Context, q services.EntryQuery) (*models.EntryCollection, error) {
	collection, err := l.src.GetEntries(ctx, q)
	if err != nil {
		return nil, resolverError(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range collection.Items {
		l.entries[collection.Items[i].Sys.ID] = &collection.Items[i]
	}
	for i := range collection.Includes.Entry {
		l.entries[collection.Includes.Entry[i].Sys.ID] = &collection.Includes.Entry[i]
	}
	for i := range collection.Includes.Asset {
		l.assets[collection.Includes.Asset[i].Sys.ID] = &collection.Includes.Asset[i]
	}
	return collection, nil
}

// entry returns nil when the entry does not exist; misses are remembered too.
func (l *loader) entry(ctx context.Context, id string) (*models.Entry, error) {
	l.mu.Lock()
	e, seen := l.entries[id]
	l.mu.Unlock()
	if seen {
		return e, nil
	}

	e, err := l.src.GetEntry(ctx, id)
	if err != nil {
		return nil, resolverError(err)
	}

	l.mu.Lock()
	l.entries[id] = e
	l.mu.Unlock()
	return e, nil
}

func (l *loader) asset(ctx context.Context, id string) (*models.Asset, error) {
	l.mu.Lock()
	a, seen := l.assets[id]
	l.mu.Unlock()
	if seen {
		return a, nil
	}

	a, err := l.src.GetAsset(ctx, id)
	if err != nil {
		return nil, resolverError(err)
	}

	l.mu.Lock()
	l.assets[id] = a
	l.mu.Unlock()
	return a, nil
}

func (l *loader) count(ctx context.Context, contentType, q string) (*models.EntryCollection, error) {
	collection, err := l.src.GetEntries(ctx, services.EntryQuery{ContentType: contentType, Query: q, Limit: 0})
	if err != nil {
		return nil, resolverError(err)
	}
	return collection, nil
}

// fieldError is what resolvers hand to graphql-go. graphql-go reads
// Extensions from the returned error itself, not from wrapped errors.
type fieldError struct {
	api *errors.APIError
}

func (e *fieldError) Error() string {
	return e.api.Message
}

func (e *fieldError) Extensions() map[string]interface{} {
	return e.api.Extensions()
}

func resolverError(err error) error {
	if apiErr, ok := errors.As(err); ok {
		return &fieldError{api: apiErr}
	}
	return err
}
