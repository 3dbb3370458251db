package payment

import (
	"context"
	"fmt"
	"time"

	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/domain"
	"stockerp/internal/domain/audit"
	"stockerp/pkg/logger"
	"stockerp/pkg/numerator"
)

// Service provides business operations for payments.
type Service struct {
	repo      Repository
	numerator *numerator.Service
	txm       tx.Manager
	rec       audit.Recorder
}

// NewService creates a new payment service.
func NewService(repo Repository, num *numerator.Service, txm tx.Manager, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		numerator: num,
		txm:       txm,
		rec:       rec,
	}
}

// Create creates a new draft payment. The number prefix depends on the kind,
// so receipts and payments count in separate sequences.
func (s *Service) Create(ctx context.Context, doc *Payment) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix(doc.Kind)), &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	logger.Info(ctx, "payment created", "id", doc.ID, "number", doc.Number, "kind", doc.Kind)
	return nil
}

// GetByID retrieves a payment.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update updates a draft payment.
func (s *Service) Update(ctx context.Context, doc *Payment) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)

	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// Delete soft-deletes a draft payment.
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

// Cancel moves a draft payment to the cancelled terminal state.
func (s *Service) Cancel(ctx context.Context, docID id.ID, actor string) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanCancel(DocumentType); err != nil {
			return err
		}
		doc.MarkCancelled()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.record(ctx, doc, audit.ActionCancel, actor); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}
		logger.Info(ctx, "payment cancelled", "id", doc.ID, "number", doc.Number, "actor", actor)
		return nil
	})
}

// Confirm fixes the payment. Nothing moves in the stock ledger; confirm
// validates once more, stamps the confirmation and makes the record final.
func (s *Service) Confirm(ctx context.Context, docID id.ID, actor string) (*Payment, error) {
	var result *Payment
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if err := doc.CanConfirm(DocumentType, false); err != nil {
			return err
		}
		if err := doc.Validate(ctx); err != nil {
			return err
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

	logger.Info(ctx, "payment confirmed",
		"id", result.ID,
		"number", result.Number,
		"kind", result.Kind,
		"actor", actor,
	)
	return result, nil
}

// record writes the audit trail entry for a lifecycle change.
func (s *Service) record(ctx context.Context, doc *Payment, action audit.Action, actor string) error {
	if s.rec == nil {
		return nil
	}
	return s.rec.Record(ctx, audit.Entry{
		EntityType: "payment",
		EntityID:   doc.ID,
		Action:     action,
		Actor:      actor,
		Changes: map[string]any{
			"number": doc.Number,
			"status": string(doc.Status),
			"kind":   string(doc.Kind),
			"amount": doc.Amount.String(),
		},
	})
}

// List retrieves payments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	return s.repo.List(ctx, filter)
}
