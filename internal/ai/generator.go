package ai

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelUnavailable marks transport and authentication failures reaching the
// model service. Response content is never interpreted at this layer.
var ErrModelUnavailable = errors.New("model unavailable")

// Generator sends a single prompt to a model and returns its raw text reply.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Unavailable wraps err with ErrModelUnavailable unless it already carries it.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrModelUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
}
