package unit

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

// Service provides business logic for the Unit catalog. CRUD comes from
// the embedded CatalogService; the unit-specific rules (code generation,
// symbol uniqueness) hang off its hooks.
type Service struct {
	*domain.CatalogService[*Unit]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Unit service.
func NewService(repo Repository, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  num,
		Audit:      rec,
		EntityName: "unit",
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

func (s *Service) prepareForCreate(ctx context.Context, unit *Unit) error {
	if unit.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("UN"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		unit.Code = code
	}

	return s.guardSymbolUnique(ctx, unit)
}

func (s *Service) prepareForUpdate(ctx context.Context, unit *Unit) error {
	return s.guardSymbolUnique(ctx, unit)
}

// guardSymbolUnique rejects a second unit carrying the same symbol. The
// unit itself is excluded so updates do not collide with their own row.
func (s *Service) guardSymbolUnique(ctx context.Context, unit *Unit) error {
	if unit.Symbol == "" {
		return nil
	}
	if exists, _ := s.symbolTakenBy(ctx, unit.Symbol, unit.ID); exists {
		return apperror.NewConflict("unit with this symbol already exists").
			WithDetail("symbol", unit.Symbol)
	}
	return nil
}

func (s *Service) symbolTakenBy(ctx context.Context, symbol string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindBySymbol(ctx, symbol)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}

// FindBySymbol retrieves unit by symbol.
func (s *Service) FindBySymbol(ctx context.Context, symbol string) (*Unit, error) {
	return s.repo.FindBySymbol(ctx, symbol)
}
