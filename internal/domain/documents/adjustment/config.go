package adjustment

import "stockerp/pkg/numerator"

const (
	// NumberPrefix yields numbers like ADJ202602180001.
	NumberPrefix = "ADJ"

	// NumeratorStrategy: adjustments are internal documents, gaps are fine.
	NumeratorStrategy = numerator.StrategyCached
)
