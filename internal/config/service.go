package config

import (
	"context"
)

// Service exposes typed access to the configuration store.
type Service struct {
	repo *Repository
}

// NewService builds Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// TaxRates returns the current tax rate configuration.
func (s *Service) TaxRates(ctx context.Context) (TaxRates, error) {
	cfg, err := s.repo.Get(ctx, KeyTaxRates)
	if err != nil {
		return TaxRates{}, err
	}
	return ParseTaxRates(cfg.Data), nil
}

// UpdateTaxRates persists new tax rates.
func (s *Service) UpdateTaxRates(ctx context.Context, rates TaxRates) error {
	return s.repo.Update(ctx, KeyTaxRates, rates.Raw())
}
