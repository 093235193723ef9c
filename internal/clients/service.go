package clients

import (
	"context"

	"github.com/logistiga/logistiga/internal/shared"
)

// Service handles client business logic.
type Service struct {
	repo *Repository
}

// NewService builds Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new client.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	id, err := s.repo.Insert(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// Update rewrites a client's mutable fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	if err := s.repo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete archives a client. Documents keep referencing it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// List returns clients matching the filters.
func (s *Service) List(ctx context.Context, f shared.ListFilters) ([]Client, int, error) {
	return s.repo.List(ctx, f)
}
