package goods

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

// Service provides business logic for Goods catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Goods]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Goods service.
func NewService(repo Repository, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Goods]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  num,
		Audit:      rec,
		EntityName: "goods",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, item *Goods) error {
	if item.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("GD"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		item.Code = code
	}

	return s.checkUniqueness(ctx, item)
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, item *Goods) error {
	return s.checkUniqueness(ctx, item)
}

func (s *Service) checkUniqueness(ctx context.Context, item *Goods) error {
	if item.SKU != nil && *item.SKU != "" {
		if exists, _ := s.checkSKUExists(ctx, *item.SKU, item.ID); exists {
			return apperror.NewConflict("goods with this SKU already exists").
				WithDetail("sku", item.SKU)
		}
	}

	if item.Barcode != nil && *item.Barcode != "" {
		if exists, _ := s.checkBarcodeExists(ctx, *item.Barcode, item.ID); exists {
			return apperror.NewConflict("goods with this barcode already exists").
				WithDetail("barcode", item.Barcode)
		}
	}

	return nil
}

// FindBySKU retrieves goods by SKU.
func (s *Service) FindBySKU(ctx context.Context, sku string) (*Goods, error) {
	return s.repo.FindBySKU(ctx, sku)
}

// FindByBarcode retrieves goods by barcode.
func (s *Service) FindByBarcode(ctx context.Context, barcode string) (*Goods, error) {
	return s.repo.FindByBarcode(ctx, barcode)
}

// FindByCategory retrieves goods inside a category.
func (s *Service) FindByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Goods], error) {
	return s.repo.FindByCategory(ctx, categoryID, filter)
}

func (s *Service) checkSKUExists(ctx context.Context, sku string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}

func (s *Service) checkBarcodeExists(ctx context.Context, barcode string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}
