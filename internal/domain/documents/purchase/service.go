package purchase

import (
	"context"
	"fmt"
	"time"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/core/types"
	"stockerp/internal/domain"
	"stockerp/internal/domain/audit"
	"stockerp/internal/domain/documents"
	"stockerp/internal/domain/inventory"
	"stockerp/pkg/logger"
	"stockerp/pkg/numerator"
)

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	mover     documents.StockMover
	numerator *numerator.Service
	txm       tx.Manager
	rec       audit.Recorder
}

// NewService creates a new purchase order service.
func NewService(repo Repository, mover documents.StockMover, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		mover:     mover,
		numerator: num,
		txm:       txm,
		rec:       rec,
	}
}

// Create creates a new draft purchase order.
func (s *Service) Create(ctx context.Context, doc *PurchaseOrder) error {
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

	logger.Info(ctx, "purchase order created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a purchase order with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
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

// Update updates a draft purchase order.
func (s *Service) Update(ctx context.Context, doc *PurchaseOrder) error {
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

// Delete soft-deletes a draft purchase order.
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

// Cancel moves a draft order to the cancelled terminal state.
func (s *Service) Cancel(ctx context.Context, docID id.ID, actor string) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanCancel(documents.TypePurchaseOrder); err != nil {
			return err
		}
		doc.MarkCancelled()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.record(ctx, doc, audit.ActionCancel, actor); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
		logger.Info(ctx, "purchase order cancelled", "id", doc.ID, "number", doc.Number, "actor", actor)
		return nil
	})
}

// Receipt specifies how much of one line to receive during a confirm.
type Receipt struct {
	LineID   id.ID
	Quantity types.Quantity
}

// Confirm receives ordered goods into stock. receipts narrows the confirm to
// specific lines and quantities; nil receives every unresolved quantity in
// full. The whole run is one transaction: any mutation failure rolls back
// every line and the status change.
func (s *Service) Confirm(ctx context.Context, docID id.ID, actor string, receipts []Receipt) (*PurchaseOrder, error) {
	var result *PurchaseOrder
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanConfirm(documents.TypePurchaseOrder, true); err != nil {
			return err
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		requested, err := receiptPlan(doc.Lines, receipts)
		if err != nil {
			return err
		}

		ref := entity.DocRef{Type: documents.TypePurchaseOrder, ID: doc.ID}
		moved := false
		for i := range doc.Lines {
			line := &doc.Lines[i]
			qty, ok := requested[line.LineID]
			if !ok || !qty.IsPositive() {
				continue
			}
			if qty > line.Unresolved() {
				return apperror.NewValidation("received quantity exceeds unresolved quantity").
					WithDetail("lineNo", line.LineNo).
					WithDetail("unresolved", line.Unresolved().String())
			}

			if _, err := s.mover.StockIn(ctx, inventory.Mutation{
				GoodsID:     line.GoodsID,
				WarehouseID: doc.WarehouseID,
				Quantity:    qty,
				Ref:         ref,
				Note:        fmt.Sprintf("purchase receipt %s", doc.Number),
				Actor:       actor,
			}); err != nil {
				return err
			}
			line.ReceivedQuantity += qty
			moved = true
		}

		if !moved {
			return apperror.NewValidation("nothing to receive: all lines are resolved")
		}

		doc.MarkConfirmed(actor, doc.IsFullyReceived())
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

	logger.Info(ctx, "purchase order confirmed",
		"id", result.ID,
		"number", result.Number,
		"status", result.Status,
		"actor", actor,
	)
	return result, nil
}

// receiptPlan maps each line to the quantity to receive. With no explicit
// receipts every unresolved quantity is taken in full.
func receiptPlan(lines []PurchaseLine, receipts []Receipt) (map[id.ID]types.Quantity, error) {
	plan := make(map[id.ID]types.Quantity, len(lines))
	if receipts == nil {
		for _, line := range lines {
			plan[line.LineID] = line.Unresolved()
		}
		return plan, nil
	}

	known := make(map[id.ID]bool, len(lines))
	for _, line := range lines {
		known[line.LineID] = true
	}
	for _, r := range receipts {
		if !known[r.LineID] {
			return nil, apperror.NewNotFound("purchase order line", r.LineID)
		}
		if !r.Quantity.IsPositive() {
			return nil, apperror.NewInvalidQuantity(r.Quantity.String())
		}
		plan[r.LineID] = r.Quantity
	}
	return plan, nil
}

// record writes the audit trail entry for a lifecycle change.
func (s *Service) record(ctx context.Context, doc *PurchaseOrder, action audit.Action, actor string) error {
	if s.rec == nil {
		return nil
	}
	return s.rec.Record(ctx, audit.Entry{
		EntityType: "purchase_order",
		EntityID:   doc.ID,
		Action:     action,
		Actor:      actor,
		Changes: map[string]any{
			"number": doc.Number,
			"status": string(doc.Status),
		},
	})
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}
