package pipeline

import "runtime"

const (
	// FanOut is the number of concurrent comparisons allowed per core.
	FanOut = 4

	// ResultBuffer is the capacity of the result channel.
	ResultBuffer = 32
)

// ConcurrencyBudget returns the maximum number of records compared at once:
// min(cores, override) * FanOut, where an override of zero means no override.
func ConcurrencyBudget(override int) int {
	return budgetFor(runtime.NumCPU(), override)
}

func budgetFor(cores, override int) int {
	if cores < 1 {
		cores = 1
	}
	threads := cores
	if override > 0 && override < cores {
		threads = override
	}
	return threads * FanOut
}
