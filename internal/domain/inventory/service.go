package inventory

import (
	"context"
	"fmt"

	"stockerp/internal/core/apperror"
	"stockerp/internal/core/entity"
	"stockerp/internal/core/id"
	"stockerp/internal/core/tx"
	"stockerp/internal/core/types"
	"stockerp/pkg/logger"
)

// MovementPublisher receives every applied movement, inside the mutation
// transaction. The postgres outbox implements it.
type MovementPublisher interface {
	PublishMovement(ctx context.Context, m entity.StockMovement) error
}

// Service is the mutation service: the only path allowed to change a stock
// balance. Every mutation appends exactly one ledger entry and updates the
// balance under a row lock, both within one transaction.
type Service struct {
	txm    tx.Manager
	repo   Repository
	events MovementPublisher
}

// NewService creates a new inventory mutation service. events may be nil
// when no movement event sink is configured.
func NewService(txm tx.Manager, repo Repository, events MovementPublisher) *Service {
	return &Service{txm: txm, repo: repo, events: events}
}

// Mutation describes one stock change request. Quantity is always positive;
// the operation determines the direction. Actor is required: attribution is
// explicit, never read from ambient state.
type Mutation struct {
	GoodsID     id.ID
	WarehouseID id.ID
	Quantity    types.Quantity
	Ref         entity.DocRef
	Note        string
	Actor       string
}

func (m Mutation) validate() error {
	if !m.Quantity.IsPositive() {
		return apperror.NewInvalidQuantity(m.Quantity.String())
	}
	if id.IsNil(m.GoodsID) {
		return apperror.NewValidation("goods is required").WithDetail("field", "goodsId")
	}
	if id.IsNil(m.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouseId")
	}
	return nil
}

// StockIn receives goods into a warehouse. The balance row is created on
// first receipt (get-or-create with lock). Returns the updated balance.
func (s *Service) StockIn(ctx context.Context, m Mutation) (entity.StockBalance, error) {
	return s.increase(ctx, m, entity.MovementInbound)
}

// StockOut ships goods out of a warehouse. Fails with NO_SUCH_BALANCE when
// the pair was never tracked and with INSUFFICIENT_STOCK when the available
// quantity is below the requested one. Returns the updated balance.
func (s *Service) StockOut(ctx context.Context, m Mutation) (entity.StockBalance, error) {
	return s.decrease(ctx, m, entity.MovementOutbound)
}

// AdjustIncrease applies a manual upward correction.
func (s *Service) AdjustIncrease(ctx context.Context, m Mutation) (entity.StockBalance, error) {
	return s.increase(ctx, m, entity.MovementAdjust)
}

// AdjustDecrease applies a manual downward correction with the same
// sufficiency guarantees as StockOut.
func (s *Service) AdjustDecrease(ctx context.Context, m Mutation) (entity.StockBalance, error) {
	return s.decrease(ctx, m, entity.MovementAdjust)
}

// TransferRequest moves goods between two warehouses of the same pair.
type TransferRequest struct {
	GoodsID       id.ID
	SourceID      id.ID
	DestinationID id.ID
	Quantity      types.Quantity
	Ref           entity.DocRef
	Note          string
	Actor         string
}

// Transfer performs both legs atomically: outbound at the source, inbound at
// the destination. If either leg fails the whole transfer rolls back.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) error {
	if req.SourceID == req.DestinationID {
		return apperror.NewValidation("source and destination warehouses must differ")
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		out := Mutation{
			GoodsID:     req.GoodsID,
			WarehouseID: req.SourceID,
			Quantity:    req.Quantity,
			Ref:         req.Ref,
			Note:        req.Note,
			Actor:       req.Actor,
		}
		if _, err := s.decrease(ctx, out, entity.MovementTransfer); err != nil {
			return err
		}

		in := out
		in.WarehouseID = req.DestinationID
		if _, err := s.increase(ctx, in, entity.MovementTransfer); err != nil {
			return err
		}
		return nil
	})
}

// increase is the shared inbound path: upsert-with-lock, append ledger entry,
// apply new quantity.
func (s *Service) increase(ctx context.Context, m Mutation, kind entity.MovementKind) (entity.StockBalance, error) {
	if err := m.validate(); err != nil {
		return entity.StockBalance{}, err
	}

	var result entity.StockBalance
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.repo.UpsertBalanceForUpdate(ctx, m.GoodsID, m.WarehouseID)
		if err != nil {
			return fmt.Errorf("upsert balance: %w", err)
		}

		movement := entity.NewStockMovement(
			m.GoodsID, m.WarehouseID, kind,
			m.Quantity, balance.Quantity,
			m.Ref, m.Note, m.Actor,
		)
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		if err := s.repo.ApplyBalance(ctx, m.GoodsID, m.WarehouseID, movement.AfterQuantity); err != nil {
			return fmt.Errorf("apply balance: %w", err)
		}
		if err := s.publish(ctx, movement); err != nil {
			return err
		}

		balance.Quantity = movement.AfterQuantity
		result = balance
		return nil
	})
	if err != nil {
		return entity.StockBalance{}, err
	}

	logger.Info(ctx, "stock increased",
		"goods_id", m.GoodsID,
		"warehouse_id", m.WarehouseID,
		"kind", kind,
		"quantity", m.Quantity.String(),
		"balance", result.Quantity.String(),
		"actor", m.Actor,
	)
	return result, nil
}

// decrease is the shared outbound path. The sufficiency check runs against
// the row held FOR UPDATE, so concurrent decreases serialize and can never
// both pass against a stale balance.
func (s *Service) decrease(ctx context.Context, m Mutation, kind entity.MovementKind) (entity.StockBalance, error) {
	if err := m.validate(); err != nil {
		return entity.StockBalance{}, err
	}

	var result entity.StockBalance
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, found, err := s.repo.LockBalanceForUpdate(ctx, m.GoodsID, m.WarehouseID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		if !found {
			return apperror.NewNoSuchBalance(m.GoodsID.String(), m.WarehouseID.String())
		}
		if balance.Quantity < m.Quantity {
			return apperror.NewInsufficientStock(
				m.GoodsID.String(),
				m.Quantity.String(),
				balance.Quantity.String(),
			)
		}

		movement := entity.NewStockMovement(
			m.GoodsID, m.WarehouseID, kind,
			m.Quantity.Neg(), balance.Quantity,
			m.Ref, m.Note, m.Actor,
		)
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}
		if err := s.repo.ApplyBalance(ctx, m.GoodsID, m.WarehouseID, movement.AfterQuantity); err != nil {
			return fmt.Errorf("apply balance: %w", err)
		}
		if err := s.publish(ctx, movement); err != nil {
			return err
		}

		balance.Quantity = movement.AfterQuantity
		result = balance
		return nil
	})
	if err != nil {
		return entity.StockBalance{}, err
	}

	logger.Info(ctx, "stock decreased",
		"goods_id", m.GoodsID,
		"warehouse_id", m.WarehouseID,
		"kind", kind,
		"quantity", m.Quantity.String(),
		"balance", result.Quantity.String(),
		"actor", m.Actor,
	)
	return result, nil
}

// publish hands the movement to the configured event sink. A sink failure
// aborts the mutation: the event and the ledger entry commit together.
func (s *Service) publish(ctx context.Context, m entity.StockMovement) error {
	if s.events == nil {
		return nil
	}
	if err := s.events.PublishMovement(ctx, m); err != nil {
		return fmt.Errorf("publish movement event: %w", err)
	}
	return nil
}

// GetBalance returns the stored balance for a pair, zero when untracked.
func (s *Service) GetBalance(ctx context.Context, goodsID, warehouseID id.ID) (entity.StockBalance, error) {
	balance, found, err := s.repo.GetBalance(ctx, goodsID, warehouseID)
	if err != nil {
		return entity.StockBalance{}, fmt.Errorf("get balance: %w", err)
	}
	if !found {
		return entity.StockBalance{GoodsID: goodsID, WarehouseID: warehouseID}, nil
	}
	return balance, nil
}

// GetTotalQuantity sums balances for one goods across all warehouses.
func (s *Service) GetTotalQuantity(ctx context.Context, goodsID id.ID) (types.Quantity, error) {
	balances, err := s.repo.ListBalances(ctx, BalanceFilter{GoodsIDs: []id.ID{goodsID}})
	if err != nil {
		return 0, fmt.Errorf("list balances: %w", err)
	}
	var total types.Quantity
	for _, b := range balances {
		total += b.Quantity
	}
	return total, nil
}

// ListBalances exposes stored balances for reporting.
func (s *Service) ListBalances(ctx context.Context, filter BalanceFilter) ([]entity.StockBalance, error) {
	return s.repo.ListBalances(ctx, filter)
}

// GetMovementHistory returns ledger entries for audit screens.
func (s *Service) GetMovementHistory(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// GetMovementsByRef returns the ledger trail of one document.
func (s *Service) GetMovementsByRef(ctx context.Context, refType string, refID id.ID) ([]entity.StockMovement, error) {
	return s.repo.ListMovementsByRef(ctx, refType, refID)
}

// DeleteBalance removes an untracked pair. Only zero balances may go.
func (s *Service) DeleteBalance(ctx context.Context, goodsID, warehouseID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, found, err := s.repo.LockBalanceForUpdate(ctx, goodsID, warehouseID)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}
		if !found {
			return apperror.NewNoSuchBalance(goodsID.String(), warehouseID.String())
		}
		if !balance.Quantity.IsZero() {
			return apperror.NewBusinessRule(
				apperror.CodeBusinessRule,
				"Only zero balances can be deleted",
			).WithDetail("quantity", balance.Quantity.String())
		}
		return s.repo.DeleteBalance(ctx, goodsID, warehouseID)
	})
}
