package transfer

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

// Service provides business operations for stock transfers.
type Service struct {
	repo      Repository
	mover     documents.StockMover
	numerator *numerator.Service
	txm       tx.Manager
	rec       audit.Recorder
}

// NewService creates a new stock transfer service.
func NewService(repo Repository, mover documents.StockMover, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		mover:     mover,
		numerator: num,
		txm:       txm,
		rec:       rec,
	}
}

// Create creates a new draft transfer.
func (s *Service) Create(ctx context.Context, doc *StockTransfer) error {
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

	logger.Info(ctx, "stock transfer created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a transfer with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*StockTransfer, error) {
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

// Update updates a draft transfer.
func (s *Service) Update(ctx context.Context, doc *StockTransfer) error {
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

// Delete soft-deletes a draft transfer.
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

// Cancel moves a draft transfer to the cancelled terminal state.
func (s *Service) Cancel(ctx context.Context, docID id.ID, actor string) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanCancel(documents.TypeStockTransfer); err != nil {
			return err
		}
		doc.MarkCancelled()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.record(ctx, doc, audit.ActionCancel, actor); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
		logger.Info(ctx, "stock transfer cancelled", "id", doc.ID, "number", doc.Number, "actor", actor)
		return nil
	})
}

// Confirm moves every line from source to destination. Each line produces
// two ledger entries; a failed inbound leg rolls back the outbound leg and
// every previously processed line.
func (s *Service) Confirm(ctx context.Context, docID id.ID, actor string) (*StockTransfer, error) {
	var result *StockTransfer
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanConfirm(documents.TypeStockTransfer, false); err != nil {
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

		ref := entity.DocRef{Type: documents.TypeStockTransfer, ID: doc.ID}
		for _, line := range doc.Lines {
			if err := s.mover.Transfer(ctx, inventory.TransferRequest{
				GoodsID:       line.GoodsID,
				SourceID:      doc.SourceWarehouseID,
				DestinationID: doc.DestWarehouseID,
				Quantity:      line.Quantity,
				Ref:           ref,
				Note:          fmt.Sprintf("stock transfer %s", doc.Number),
				Actor:         actor,
			}); err != nil {
				return err
			}
		}

		doc.MarkConfirmed(actor, true)
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

	logger.Info(ctx, "stock transfer confirmed",
		"id", result.ID,
		"number", result.Number,
		"lines", len(result.Lines),
		"actor", actor,
	)
	return result, nil
}

// record writes the audit trail entry for a lifecycle change.
func (s *Service) record(ctx context.Context, doc *StockTransfer, action audit.Action, actor string) error {
	if s.rec == nil {
		return nil
	}
	return s.rec.Record(ctx, audit.Entry{
		EntityType: "stock_transfer",
		EntityID:   doc.ID,
		Action:     action,
		Actor:      actor,
		Changes: map[string]any{
			"number": doc.Number,
			"status": string(doc.Status),
		},
	})
}

// List retrieves transfers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockTransfer], error) {
	return s.repo.List(ctx, filter)
}
