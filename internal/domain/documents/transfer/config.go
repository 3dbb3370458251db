package transfer

import "stockerp/pkg/numerator"

const (
	// NumberPrefix yields numbers like TRF202602180001.
	NumberPrefix = "TRF"

	// NumeratorStrategy: transfers are internal documents, gaps are fine.
	NumeratorStrategy = numerator.StrategyCached
)
