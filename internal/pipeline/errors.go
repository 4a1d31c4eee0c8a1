package pipeline

import (
	"errors"
	"fmt"
)

// Fault categorizes a fatal pipeline error.
type Fault string

const (
	// FaultInput indicates the input stream could not be read.
	FaultInput Fault = "INPUT"

	// FaultComparison indicates the comparison engine returned an error.
	FaultComparison Fault = "COMPARISON"

	// FaultWorker indicates a comparison panicked.
	FaultWorker Fault = "WORKER"

	// FaultDelivery indicates a finding could not be delivered to the output.
	FaultDelivery Fault = "DELIVERY"
)

// FatalError is an error that ends the run.
type FatalError struct {
	// Fault identifies the error category.
	Fault Fault

	// Line is the input line being processed, or zero when not tied to one.
	Line int64

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %v", e.Fault, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Fault, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func faultOf(err error) (Fault, bool) {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Fault, true
	}
	return "", false
}

// IsInputFault returns true if the run failed reading input.
func IsInputFault(err error) bool {
	f, ok := faultOf(err)
	return ok && f == FaultInput
}

// IsComparisonFault returns true if the run failed in the comparison engine,
// by error or by panic.
func IsComparisonFault(err error) bool {
	f, ok := faultOf(err)
	return ok && (f == FaultComparison || f == FaultWorker)
}

// IsDeliveryFault returns true if the run failed writing output.
func IsDeliveryFault(err error) bool {
	f, ok := faultOf(err)
	return ok && f == FaultDelivery
}
