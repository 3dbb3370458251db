// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"
	"fmt"

	"stockerp/internal/core/apperror"
	appctx "stockerp/internal/core/context"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain/audit"
	"stockerp/pkg/numerator"
)

// CatalogService provides business logic for catalog entities.
// Entity-specific services embed it and register hooks for their own rules.
type CatalogService[T entity.Validatable] struct {
	repo      CatalogRepository[T]
	txManager tx.Manager
	numerator *numerator.Service
	audit     audit.Recorder
	hooks     *HookRegistry[T]

	// entityName for error messages, audit entries and numerator prefix
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	Numerator  *numerator.Service
	Audit      audit.Recorder
	EntityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		numerator:  cfg.Numerator,
		audit:      cfg.Audit,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Numerator returns the shared number generator, may be nil in tests.
func (s *CatalogService[T]) Numerator() *numerator.Service {
	return s.numerator
}

// Create validates and stores a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, ent T) error {
	return s.save(ctx, ent, BeforeCreate, AfterCreate, audit.ActionCreate,
		func(ctx context.Context) error {
			if err := s.repo.Create(ctx, ent); err != nil {
				return fmt.Errorf("create %s: %w", s.entityName, err)
			}
			return nil
		})
}

// Update validates and stores changes to an existing entity.
func (s *CatalogService[T]) Update(ctx context.Context, ent T) error {
	return s.save(ctx, ent, BeforeUpdate, AfterUpdate, audit.ActionUpdate,
		func(ctx context.Context) error {
			if err := s.repo.Update(ctx, ent); err != nil {
				return fmt.Errorf("update %s: %w", s.entityName, err)
			}
			return nil
		})
}

// save is the shared write path: validate, before-hooks, write plus audit
// inside one transaction, then after-hooks outside it. After-hook failures
// never undo the committed write.
func (s *CatalogService[T]) save(
	ctx context.Context,
	ent T,
	before, after HookEvent,
	action audit.Action,
	write func(context.Context) error,
) error {
	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, before, ent); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := write(ctx); err != nil {
			return err
		}
		return s.recordAudit(ctx, ent, action)
	})
	if err != nil {
		return err
	}

	_ = s.hooks.Run(ctx, after, ent)
	return nil
}

// Delete performs a soft delete. The entity is loaded first so delete hooks
// can inspect it.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	ent, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	if err := s.hooks.Run(ctx, BeforeDelete, ent); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDeletionMark(ctx, entityID, true); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return s.recordAudit(ctx, ent, audit.ActionDelete)
	})
	if err != nil {
		return err
	}

	_ = s.hooks.Run(ctx, AfterDelete, ent)
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent, err := s.repo.GetByID(ctx, entityID)
	return ent, s.normalizeGetErr(err, entityID.String())
}

// GetByCode retrieves entity by code.
func (s *CatalogService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	ent, err := s.repo.GetByCode(ctx, code)
	return ent, s.normalizeGetErr(err, code)
}

func (s *CatalogService[T]) SetDeletionMark(ctx context.Context, entityID id.ID, marked bool) error {
	return s.repo.SetDeletionMark(ctx, entityID, marked)
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter)
}

// Exists checks if entity exists.
func (s *CatalogService[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return s.repo.Exists(ctx, entityID)
}

// GetTree retrieves hierarchical structure.
func (s *CatalogService[T]) GetTree(ctx context.Context, rootID *id.ID) ([]T, error) {
	return s.repo.GetTree(ctx, rootID)
}

// recordAudit writes an audit entry for entities that expose an ID. The
// actor is the authenticated user from the request context.
func (s *CatalogService[T]) recordAudit(ctx context.Context, ent T, action audit.Action) error {
	if s.audit == nil {
		return nil
	}
	ident, ok := any(ent).(interface{ GetID() id.ID })
	if !ok {
		return nil
	}
	return s.audit.Record(ctx, audit.Entry{
		EntityType: s.entityName,
		EntityID:   ident.GetID(),
		Action:     action,
		Actor:      appctx.GetUserID(ctx),
	})
}

func (s *CatalogService[T]) normalizeValidationErr(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// normalizeGetErr maps repository lookup failures onto this service's
// entity name so callers see "goods not found", not a table name.
func (s *CatalogService[T]) normalizeGetErr(err error, idOrCode any) error {
	switch {
	case err == nil:
		return nil
	case apperror.IsNotFound(err):
		return apperror.NewNotFound(s.entityName, idOrCode)
	case apperror.IsAppError(err):
		return err
	default:
		return apperror.NewInternal(err).
			WithDetail("entity", s.entityName).
			WithDetail("id", idOrCode)
	}
}
