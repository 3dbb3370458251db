package purchase

import "stockerp/pkg/numerator"

const (
	// NumberPrefix yields numbers like PO202602180001.
	NumberPrefix = "PO"

	// NumeratorStrategy: purchase orders are primary accounting documents,
	// so numbering is strict (no gaps).
	NumeratorStrategy = numerator.StrategyStrict
)
