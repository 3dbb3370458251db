package payment

import "stockerp/pkg/numerator"

const (
	// Prefixes yield numbers like PR202602180001 (receive) and
	// PY202602180001 (pay).
	ReceivePrefix = "PR"
	PayPrefix     = "PY"

	// NumeratorStrategy: payments are primary accounting documents,
	// so numbering is strict (no gaps).
	NumeratorStrategy = numerator.StrategyStrict
)

// NumberPrefix returns the number prefix for a payment kind.
func NumberPrefix(kind Kind) string {
	if kind == KindPay {
		return PayPrefix
	}
	return ReceivePrefix
}
