package cmd

import (
	"errors"

	"github.com/spigell/o1-assessor/internal/assessment"
	"github.com/spigell/o1-assessor/internal/document"
)

const (
	exitFailure          = 1
	exitUnsupportedInput = 2
	// exitDeadline matches the status timeout(1) uses.
	exitDeadline = 124
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, assessment.ErrDeadlineExceeded):
		return exitDeadline
	case errors.Is(err, document.ErrUnsupportedInput),
		errors.Is(err, document.ErrEmptyDocument),
		errors.Is(err, document.ErrInvalidEncoding):
		return exitUnsupportedInput
	default:
		return exitFailure
	}
}
