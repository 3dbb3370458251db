package sale

import "stockerp/pkg/numerator"

const (
	// NumberPrefix yields numbers like SO202602180001.
	NumberPrefix = "SO"

	// NumeratorStrategy: shipments feed accounting, numbering is strict.
	NumeratorStrategy = numerator.StrategyStrict
)
