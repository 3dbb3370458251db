package postgres

import (
	"fmt"

	"stockerp/internal/core/tx"
)

// AsTxManager downcasts a tx.Manager to the concrete *TxManager.
// It is meant for infrastructure code that needs GetQuerier()/GetTx();
// domain code should depend only on internal/core/tx.Manager.
func AsTxManager(txm tx.Manager) *TxManager {
	m, ok := txm.(*TxManager)
	if !ok || m == nil {
		panic(fmt.Sprintf("tx.Manager has unexpected type: %T", txm))
	}
	return m
}
