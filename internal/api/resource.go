package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

// maxPages bounds All so a misbehaving next link cannot loop forever.
const maxPages = 100

// Resource is the CRUD surface of one collection endpoint.
type Resource[T any] struct {
	client *Client
	name   string
	path   string
}

// NewResource binds a collection path (e.g. "projects/") to a record type.
// name is used in validation errors.
func NewResource[T any](client *Client, name, path string) *Resource[T] {
	return &Resource[T]{client: client, name: name, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

// ItemPath returns the path of a single record.
func (r *Resource[T]) ItemPath(id string) string {
	return itemPath(r.path, id)
}

// Page fetches one page of the collection.
func (r *Resource[T]) Page(ctx context.Context, params url.Values) (*Page[T], error) {
	return r.pageAt(ctx, r.path, params)
}

// List fetches the first page and returns its results.
func (r *Resource[T]) List(ctx context.Context, params url.Values) ([]T, error) {
	page, err := r.Page(ctx, params)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// All follows next links and returns every result.
func (r *Resource[T]) All(ctx context.Context, params url.Values) ([]T, error) {
	page, err := r.Page(ctx, params)
	if err != nil {
		return nil, err
	}

	results := page.Results
	for i := 1; page.HasNext() && i < maxPages; i++ {
		page, err = r.pageAt(ctx, *page.Next, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, page.Results...)
	}
	return results, nil
}

// Get fetches a single record.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodGet, r.ItemPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new record and returns the stored version.
func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodPost, r.path, nil, body, &out); err != nil {
		return nil, r.mutationError(err)
	}
	return &out, nil
}

// Update patches a record.
func (r *Resource[T]) Update(ctx context.Context, id string, patch any) (*T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodPatch, r.ItemPath(id), nil, patch, &out); err != nil {
		return nil, r.mutationError(err)
	}
	return &out, nil
}

// Delete removes a record.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.Do(ctx, http.MethodDelete, r.ItemPath(id), nil, nil, nil); err != nil {
		return r.mutationError(err)
	}
	return nil
}

func (r *Resource[T]) pageAt(ctx context.Context, path string, params url.Values) (*Page[T], error) {
	raw, err := r.client.DoRaw(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	return decodePage[T](raw)
}

// mutationError turns a rejected 4xx mutation into a validation error. The
// StatusError stays reachable through errors.As.
func (r *Resource[T]) mutationError(err error) error {
	if statusErr, ok := AsStatus(err); ok && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 &&
		statusErr.StatusCode != http.StatusUnauthorized {
		return errors.NewValidationError(r.name, err)
	}
	return err
}
