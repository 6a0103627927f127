package driver

import (
	"errors"
	"fmt"
)

// AnomalousModuleError wraps an anomalous-pass search failure with the
// hardware description that produced it, so the coordinator can dump the
// offending module before aborting.
type AnomalousModuleError struct {
	Op         string
	ModuleText string
	Err        error
}

// Error implements the error interface.
func (e *AnomalousModuleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AnomalousModuleError) Unwrap() error {
	return e.Err
}

// AsAnomalousModule extracts an AnomalousModuleError from an error chain.
func AsAnomalousModule(err error) (*AnomalousModuleError, bool) {
	var ame *AnomalousModuleError
	ok := errors.As(err, &ame)
	return ame, ok
}
