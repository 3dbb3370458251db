package customer

import (
	"context"
	"fmt"
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain"
	"stockerp/internal/domain/audit"
	"stockerp/pkg/numerator"
)

// Service provides business logic for Customer catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Customer service.
func NewService(repo Repository, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  num,
		Audit:      rec,
		EntityName: "customer",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkTaxIDUnique)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, cust *Customer) error {
	if cust.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CUS"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		cust.Code = code
	}

	return s.checkTaxIDUnique(ctx, cust)
}

func (s *Service) checkTaxIDUnique(ctx context.Context, cust *Customer) error {
	if cust.TaxID == nil || *cust.TaxID == "" {
		return nil
	}

	exists, err := s.checkTaxIDExists(ctx, *cust.TaxID, cust.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("customer with this tax ID already exists").
			WithDetail("tax_id", cust.TaxID)
	}
	return nil
}

// FindByTaxID retrieves customer by tax identification number.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Customer, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
