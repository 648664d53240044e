// Package projects is the REST module for project tracking.
package projects

import (
	"context"
	"net/url"

	"github.com/felixgeelhaar/nvms/internal/api"
)

// Path is the collection endpoint.
const Path = "projects/"

// Status values, in workflow order.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Priority values, most urgent first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Statuses lists every status in workflow order.
var Statuses = []string{StatusPlanning, StatusInProgress, StatusReview, StatusOnHold, StatusCompleted, StatusCancelled}

// Priorities lists every priority, most urgent first.
var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

// Project is a tracked project.
type Project struct {
	ID          api.ID       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Status      *string      `json:"status" yaml:"status"`
	Priority    *string      `json:"priority" yaml:"priority"`
	StartDate   *string      `json:"start_date" yaml:"start_date"`
	EndDate     *string      `json:"end_date" yaml:"end_date"`
	Budget      *api.Decimal `json:"budget" yaml:"budget"`
	Progress    *int         `json:"progress" yaml:"progress"`
	Manager     *api.ID      `json:"manager" yaml:"manager"`
	CreatedAt   string       `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Field returns a field by its API name; nil pointers mean missing.
func (p Project) Field(name string) any {
	switch name {
	case "id":
		return p.ID
	case "title":
		return p.Title
	case "status":
		return p.Status
	case "priority":
		return p.Priority
	case "start_date":
		return p.StartDate
	case "end_date":
		return p.EndDate
	case "budget":
		return p.Budget
	case "progress":
		return p.Progress
	case "created_at":
		if p.CreatedAt == "" {
			return nil
		}
		return p.CreatedAt
	}
	return nil
}

// Option returns the project as a select option.
func (p Project) Option() api.Option {
	return api.Option{ID: p.ID.String(), Label: p.Title}
}

// Input is the body for create and update. Empty fields are omitted.
type Input struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	StartDate   string       `json:"start_date,omitempty"`
	EndDate     string       `json:"end_date,omitempty"`
	Budget      *api.Decimal `json:"budget,omitempty"`
}

// Filter narrows a listing.
type Filter struct {
	Status   string
	Priority string
	Search   string
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.Priority != "" {
		v.Set("priority", f.Priority)
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	return v
}

// Service wraps the projects endpoint.
type Service struct {
	resource *api.Resource[Project]
}

// New creates the service.
func New(client *api.Client) *Service {
	return &Service{resource: api.NewResource[Project](client, "project", Path)}
}

// List returns every project matching f.
func (s *Service) List(ctx context.Context, f Filter) ([]Project, error) {
	return s.resource.All(ctx, f.values())
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.resource.Get(ctx, id)
}

// Create adds a project.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	return s.resource.Create(ctx, in)
}

// Update patches a project.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Project, error) {
	return s.resource.Update(ctx, id, in)
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.resource.Delete(ctx, id)
}
