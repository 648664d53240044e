// Package portfolio is the REST module for the portfolio showcase.
package portfolio

import (
	"context"
	"net/http"

	"github.com/felixgeelhaar/nvms/internal/api"
)

// Endpoints.
const (
	Path       = "portfolio/"
	PublicPath = "portfolio/public/"
)

// Item is one portfolio entry.
type Item struct {
	ID           api.ID   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category     *string  `json:"category" yaml:"category"`
	Client       *string  `json:"client" yaml:"client"`
	Technologies []string `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	URL          string   `json:"url,omitempty" yaml:"url,omitempty"`
	IsPublic     bool     `json:"is_public" yaml:"is_public"`
	Featured     bool     `json:"featured" yaml:"featured"`
	Order        *int     `json:"order" yaml:"order"`
	CompletedAt  *string  `json:"completed_at" yaml:"completed_at"`
}

// Field returns a field by its API name.
func (i Item) Field(name string) any {
	switch name {
	case "id":
		return i.ID
	case "title":
		return i.Title
	case "category":
		return i.Category
	case "client":
		return i.Client
	case "order":
		return i.Order
	case "completed_at":
		return i.CompletedAt
	case "featured":
		return i.Featured
	case "is_public":
		return i.IsPublic
	}
	return nil
}

// Option returns the item as a select option.
func (i Item) Option() api.Option {
	return api.Option{ID: i.ID.String(), Label: i.Title}
}

// Input is the body for create and update.
type Input struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	Client       string   `json:"client,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	URL          string   `json:"url,omitempty"`
	IsPublic     *bool    `json:"is_public,omitempty"`
	Featured     *bool    `json:"featured,omitempty"`
}

// Service wraps the portfolio endpoints.
type Service struct {
	client   *api.Client
	resource *api.Resource[Item]
}

// New creates the service.
func New(client *api.Client) *Service {
	return &Service{client: client, resource: api.NewResource[Item](client, "portfolio item", Path)}
}

// List returns every item, public or not. Requires a portfolio editor.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.resource.All(ctx, nil)
}

// Public returns the published showcase. No login is needed.
func (s *Service) Public(ctx context.Context) ([]Item, error) {
	raw, err := s.client.DoRaw(ctx, http.MethodGet, PublicPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return api.DecodeList[Item](raw)
}

// Get returns one item.
func (s *Service) Get(ctx context.Context, id string) (*Item, error) {
	return s.resource.Get(ctx, id)
}

// Create adds an item.
func (s *Service) Create(ctx context.Context, in Input) (*Item, error) {
	return s.resource.Create(ctx, in)
}

// Update patches an item.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Item, error) {
	return s.resource.Update(ctx, id, in)
}

// Delete removes an item.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}
