package supplier

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

// Service provides business logic for Supplier catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Supplier service.
func NewService(repo Repository, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  num,
		Audit:      rec,
		EntityName: "supplier",
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
func (s *Service) prepareForCreate(ctx context.Context, sup *Supplier) error {
	if sup.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SUP"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		sup.Code = code
	}

	return s.checkTaxIDUnique(ctx, sup)
}

func (s *Service) checkTaxIDUnique(ctx context.Context, sup *Supplier) error {
	if sup.TaxID == nil || *sup.TaxID == "" {
		return nil
	}

	exists, err := s.checkTaxIDExists(ctx, *sup.TaxID, sup.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("supplier with this tax ID already exists").
			WithDetail("tax_id", sup.TaxID)
	}
	return nil
}

// FindByTaxID retrieves supplier by tax identification number.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Supplier, error) {
	return s.repo.FindByTaxID(ctx, taxID)
}

func (s *Service) checkTaxIDExists(ctx context.Context, taxID string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		// Not found is fine; propagate real errors (DB failures, timeouts).
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
