package adjustment

import (
	"context"
	"fmt"
	"time"

	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain"
	"stockerp/internal/domain/audit"
	"stockerp/internal/domain/documents"
	"stockerp/internal/domain/inventory"
	"stockerp/pkg/logger"
	"stockerp/pkg/numerator"
)

// Service provides business operations for stock adjustments.
type Service struct {
	repo      Repository
	mover     documents.StockMover
	numerator *numerator.Service
	txm       tx.Manager
	rec       audit.Recorder
}

// NewService creates a new stock adjustment service.
func NewService(repo Repository, mover documents.StockMover, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		mover:     mover,
		numerator: num,
		txm:       txm,
		rec:       rec,
	}
}

// Create creates a new draft adjustment.
func (s *Service) Create(ctx context.Context, doc *StockAdjustment) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock adjustment created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves an adjustment with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*StockAdjustment, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines
	return doc, nil
}

// Update updates a draft adjustment.
func (s *Service) Update(ctx context.Context, doc *StockAdjustment) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete soft-deletes a draft adjustment.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if err := doc.CanModify(); err != nil {
		return err
	}
	return s.repo.Delete(ctx, docID)
}

// Cancel moves a draft adjustment to the cancelled terminal state.
func (s *Service) Cancel(ctx context.Context, docID id.ID, actor string) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanCancel(documents.TypeStockAdjustment); err != nil {
			return err
		}
		doc.MarkCancelled()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.record(ctx, doc, audit.ActionCancel, actor); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
		logger.Info(ctx, "stock adjustment cancelled", "id", doc.ID, "number", doc.Number, "actor", actor)
		return nil
	})
}

// Confirm applies every correction line in one transaction. Adjustments
// confirm from draft only and always complete in full; before/after balance
// snapshots are recorded on the lines.
func (s *Service) Confirm(ctx context.Context, docID id.ID, actor string) (*StockAdjustment, error) {
	var result *StockAdjustment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanConfirm(documents.TypeStockAdjustment, false); err != nil {
			return err
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines
		if err := doc.Validate(ctx); err != nil {
			return err
		}

		ref := entity.DocRef{Type: documents.TypeStockAdjustment, ID: doc.ID}
		for i := range doc.Lines {
			line := &doc.Lines[i]
			mutation := inventory.Mutation{
				GoodsID:     line.GoodsID,
				WarehouseID: doc.WarehouseID,
				Quantity:    line.Quantity,
				Ref:         ref,
				Note:        fmt.Sprintf("stock adjustment %s: %s", doc.Number, doc.Reason),
				Actor:       actor,
			}

			var balance entity.StockBalance
			switch line.Direction {
			case DirectionIncrease:
				balance, err = s.mover.AdjustIncrease(ctx, mutation)
			default:
				balance, err = s.mover.AdjustDecrease(ctx, mutation)
			}
			if err != nil {
				return err
			}

			line.AfterQuantity = balance.Quantity
			if line.Direction == DirectionIncrease {
				line.BeforeQuantity = balance.Quantity - line.Quantity
			} else {
				line.BeforeQuantity = balance.Quantity + line.Quantity
			}
		}

		doc.MarkConfirmed(actor, true)
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.record(ctx, doc, audit.ActionConfirm, actor); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjustment confirmed",
		"id", result.ID,
		"number", result.Number,
		"lines", len(result.Lines),
		"actor", actor,
	)
	return result, nil
}

// record writes the audit trail entry for a lifecycle change.
func (s *Service) record(ctx context.Context, doc *StockAdjustment, action audit.Action, actor string) error {
	if s.rec == nil {
		return nil
	}
	return s.rec.Record(ctx, audit.Entry{
		EntityType: "stock_adjustment",
		EntityID:   doc.ID,
		Action:     action,
		Actor:      actor,
		Changes: map[string]any{
			"number": doc.Number,
			"status": string(doc.Status),
		},
	})
}

// List retrieves adjustments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockAdjustment], error) {
	return s.repo.List(ctx, filter)
}
