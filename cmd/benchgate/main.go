package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Gate passed (or no gate ran)
	ExitGateFailed = 1 // Benchmark ran, but the gate failed
	ExitError      = 2 // Configuration or runtime error
)

// GateFailureError indicates that the benchmark ran successfully, but the
// regression gate or cost budget failed.
type GateFailureError struct {
	Message string
}

func (e *GateFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var gateErr *GateFailureError
		if errors.As(err, &gateErr) {
			os.Exit(ExitGateFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
