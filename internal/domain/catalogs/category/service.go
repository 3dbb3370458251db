package category

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

// Service provides business logic for the Category tree.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Category]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Category service.
func NewService(repo Repository, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txm,
		Numerator:  num,
		Audit:      rec,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      num,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.checkParentCycle)
	base.Hooks().OnBeforeDelete(svc.checkDeletable)

	return svc
}

// prepareForCreate handles code generation.
func (s *Service) prepareForCreate(ctx context.Context, cat *Category) error {
	if cat.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CAT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		cat.Code = code
	}
	return s.checkParentCycle(ctx, cat)
}

// checkParentCycle rejects a parent that sits below the category itself.
func (s *Service) checkParentCycle(ctx context.Context, cat *Category) error {
	if cat.ParentID == nil || *cat.ParentID == "" {
		return nil
	}

	parentID, err := id.Parse(*cat.ParentID)
	if err != nil {
		return apperror.NewValidation("invalid parent id").
			WithDetail("field", "parentId")
	}

	path, err := s.repo.GetPath(ctx, parentID)
	if err != nil {
		return fmt.Errorf("resolve parent path: %w", err)
	}
	for _, node := range path {
		if node.ID == cat.ID {
			return apperror.NewValidation("moving category under its own descendant creates a cycle").
				WithDetail("field", "parentId")
		}
	}
	return nil
}

// checkDeletable blocks deleting categories that still hold anything.
func (s *Service) checkDeletable(ctx context.Context, cat *Category) error {
	hasChildren, err := s.repo.HasChildren(ctx, cat.ID)
	if err != nil {
		return err
	}
	if hasChildren {
		return apperror.NewConflict("category has subcategories").
			WithDetail("category_id", cat.ID.String())
	}

	hasGoods, err := s.repo.HasGoods(ctx, cat.ID)
	if err != nil {
		return err
	}
	if hasGoods {
		return apperror.NewConflict("category still contains goods").
			WithDetail("category_id", cat.ID.String())
	}
	return nil
}
